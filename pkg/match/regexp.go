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

import (
	"regexp"
	"strings"
)

// 🧩 RegexpMatcher is the matcher of the original script:
//
//	\$:\s*\{[^}]*(?:where|order|limit)[^}]*\}
//
// `\s` is widened with `\v`, which Python's class includes and RE2's lacks.
// The object body is "everything up to the next }", so for
// `$: { where: { a: 1 } }` the span is `$: { where: { a: 1 }`.
type RegexpMatcher struct {
	re *regexp.Regexp
}

// NewRegexpMatcher builds the expression for the given keywords. Keywords are
// matched literally.
func NewRegexpMatcher(keywords []string) *RegexpMatcher {
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	expr := `(?s)\$:[\s\v]*\{[^}]*(?:` + strings.Join(quoted, "|") + `)[^}]*\}`
	return &RegexpMatcher{re: regexp.MustCompile(expr)}
}

// Find implements Matcher.
func (m *RegexpMatcher) Find(text string) []Span {
	locs := m.re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	spans := make([]Span, 0, len(locs))
	for _, loc := range locs {
		spans = append(spans, Span{Start: loc[0], End: loc[1], Text: text[loc[0]:loc[1]]})
	}
	return spans
}

// String returns the underlying expression.
func (m *RegexpMatcher) String() string {
	return m.re.String()
}
