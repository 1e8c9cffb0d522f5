// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package match

import "strings"

const objectKey = "$:"

// ⚖️ BalancedMatcher finds `$:` followed by a brace-delimited object and
// follows nested braces to the one that closes it. Braces inside string
// literals or comments are counted like any other; the scanner does not parse
// the host language.
type BalancedMatcher struct {
	keywords []string
}

// NewBalancedMatcher returns a matcher that accepts objects containing any of keywords.
func NewBalancedMatcher(keywords []string) *BalancedMatcher {
	return &BalancedMatcher{keywords: keywords}
}

// Find implements Matcher. An object with no closing brace is not a match.
func (m *BalancedMatcher) Find(text string) []Span {
	var spans []Span
	i := 0
	for i < len(text) {
		idx := strings.Index(text[i:], objectKey)
		if idx < 0 {
			break
		}
		start := i + idx
		next := start + len(objectKey)

		open := next
		for open < len(text) && isSpace(text[open]) {
			open++
		}
		if open >= len(text) || text[open] != '{' {
			i = next
			continue
		}

		end := closeBrace(text, open)
		if end < 0 || !m.hasKeyword(text[open:end]) {
			i = next
			continue
		}

		spans = append(spans, Span{Start: start, End: end, Text: text[start:end]})
		i = end
	}
	return spans
}

func (m *BalancedMatcher) hasKeyword(body string) bool {
	for _, kw := range m.keywords {
		if strings.Contains(body, kw) {
			return true
		}
	}
	return false
}

// closeBrace returns the offset just past the brace closing text[open], or -1.
func closeBrace(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
