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

package log

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/walteh/castfix/pkg/patch"
)

var _ patch.Reporter = (*Reporter)(nil)

// 🎯 Reporter prints user-facing run output to the console and mirrors it to
// the zerolog logger carried in the context.
//
// The plain lines (`Fixed: <path>`, `Fixed <n> files`) are uncolored so
// scripts that grep the output keep working; only diffs are colored.
type Reporter struct {
	console  io.Writer
	mu       sync.Mutex
	showDiff bool
}

// 🏭 New creates a reporter writing to console
func New(console io.Writer, showDiff bool) *Reporter {
	return &Reporter{
		console:  console,
		showDiff: showDiff,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the reporter from context
func FromContext(ctx context.Context) *Reporter {
	r, ok := ctx.Value(contextKey{}).(*Reporter)
	if !ok {
		panic("reporter not found in context")
	}
	return r
}

// 🎯 NewContext adds the reporter to context
func NewContext(ctx context.Context, r *Reporter) context.Context {
	return context.WithValue(ctx, contextKey{}, r)
}

// 📝 FileFixed reports a file that was (or in a dry run, would be) rewritten
func (r *Reporter) FileFixed(ctx context.Context, res patch.Result, dryRun bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	verb := "Fixed"
	if dryRun {
		verb = "Would fix"
	}
	fmt.Fprintf(r.console, "%s: %s\n", verb, res.Path)
	if r.showDiff {
		fmt.Fprint(r.console, FormatDiff(res.Old, res.New))
	}

	zerolog.Ctx(ctx).Info().
		Str("path", res.Path).
		Int("annotated", res.Annotated).
		Int("skipped", res.Skipped).
		Bool("dry_run", dryRun).
		Msg("file fixed")
}

// 📝 Finished prints the blank line and summary that end a run
func (r *Reporter) Finished(ctx context.Context, sum patch.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	verb := "Fixed"
	if sum.DryRun {
		verb = "Would fix"
	}
	fmt.Fprintf(r.console, "\n%s %d files\n", verb, sum.Changed)

	zerolog.Ctx(ctx).Info().
		Int("candidates", sum.Candidates).
		Int("changed", sum.Changed).
		Bool("dry_run", sum.DryRun).
		Msg("run finished")
}

// 📝 NeedsFix reports a file that check found unpatched
func (r *Reporter) NeedsFix(ctx context.Context, res patch.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.console, "Needs fix: %s\n", res.Path)
	if r.showDiff {
		fmt.Fprint(r.console, FormatDiff(res.Old, res.New))
	}
	zerolog.Ctx(ctx).Debug().Str("path", res.Path).Int("annotated", res.Annotated).Msg("needs fix")
}

// 📝 CheckFinished prints the check summary
func (r *Reporter) CheckFinished(ctx context.Context, pending int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.console, "\n%d files need fixing\n", pending)
	zerolog.Ctx(ctx).Info().Int("pending", pending).Msg("check finished")
}

// FormatDiff renders a line diff of old and new: removed lines prefixed with
// "-" in red, added lines with "+" in green, unchanged lines omitted.
func FormatDiff(old, new string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(old, new)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)

	var sb strings.Builder
	for _, d := range diffs {
		var prefix string
		var c *color.Color
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix, c = "-", removed
		case diffmatchpatch.DiffInsert:
			prefix, c = "+", added
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(c.Sprint("    " + prefix + " " + strings.TrimSuffix(line, "\n")))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// 📝 Error prints a fatal error to w with pterm's error prefix
func Error(w io.Writer, msg string, err error) {
	printer := pterm.Error.WithWriter(w)
	if err == nil {
		printer.Println(msg)
		return
	}
	printer.Printfln("%s: %v", msg, err)
}
