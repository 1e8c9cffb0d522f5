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

// Package match finds `$:` object literals in source text and appends a
// type-cast suffix after the ones that carry a query keyword.
//
// Two matchers are provided. RegexpMatcher is the expression the original
// script used; its span always ends at the first `}` after `$:`, so objects
// with nested braces are cut short. BalancedMatcher counts brace depth and
// ends the span at the brace that closes the object.
//
// Annotate is pure: it never touches the filesystem and every skip decision
// reads the original text, never the partially rewritten output.
package match

import (
	"strings"
	"unicode/utf8"
)

// 📍 Span is one located `$:` object inside a document. Start and End are byte
// offsets into the original text; Text is text[Start:End].
type Span struct {
	Start int
	End   int
	Text  string
}

// 🔍 Matcher locates candidate spans in a document, in order and without overlap.
type Matcher interface {
	Find(text string) []Span
}

// 🔧 Options controls how spans are annotated.
type Options struct {
	Marker string // already-cast indicator, e.g. "as any"
	Suffix string // appended after the span, e.g. " as any"
	Window int    // runes after the span searched for Marker
}

// 📊 Result is the outcome of annotating one document.
type Result struct {
	Text      string // rewritten document
	Spans     []Span // every span the matcher found
	Annotated int    // spans that received the suffix
	Skipped   int    // spans left alone because they were already cast
}

// Changed reports whether the rewritten text differs from original.
func (r Result) Changed(original string) bool {
	return r.Text != original
}

// ✏️ Annotate appends opts.Suffix after every span that is not already cast.
func Annotate(text string, m Matcher, opts Options) Result {
	spans := m.Find(text)
	res := Result{Spans: spans}
	if len(spans) == 0 {
		res.Text = text
		return res
	}

	var b strings.Builder
	b.Grow(len(text) + len(spans)*len(opts.Suffix))

	last := 0
	for _, s := range spans {
		b.WriteString(text[last:s.End])
		last = s.End

		if AlreadyCast(text, s, opts.Marker, opts.Window) {
			res.Skipped++
			continue
		}
		b.WriteString(opts.Suffix)
		res.Annotated++
	}
	b.WriteString(text[last:])

	res.Text = b.String()
	return res
}

// AlreadyCast reports whether the span contains marker, or marker appears in
// the first window runes of text after the span.
func AlreadyCast(text string, s Span, marker string, window int) bool {
	if strings.Contains(s.Text, marker) {
		return true
	}
	return strings.Contains(runesAfter(text, s.End, window), marker)
}

// runesAfter returns up to n runes of text starting at byte offset off.
func runesAfter(text string, off, n int) string {
	if off >= len(text) || n <= 0 {
		return ""
	}
	rest := text[off:]
	end := 0
	for i := 0; i < n && end < len(rest); i++ {
		_, size := utf8.DecodeRuneInString(rest[end:])
		end += size
	}
	return rest[:end]
}

// isSpace matches `[\s\v]`, the ASCII whitespace the original expression
// allowed between `$:` and `{`. Both matchers use the same set.
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
