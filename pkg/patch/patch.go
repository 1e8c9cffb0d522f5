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

// Package patch applies the `as any` cast to every candidate file under a root.
//
//	root ─▶ scan.Candidates ─▶ read ─▶ match.Annotate ─▶ changed? ─▶ write ─▶ report
//
// Plan and Apply split the pure rewrite from the writes. Run keeps the
// per-file read/rewrite/write order so an error on one file leaves the files
// before it patched.
package patch

import (
	"context"
	"iter"

	"github.com/rs/zerolog"
	"github.com/walteh/castfix/pkg/config"
	"github.com/walteh/castfix/pkg/fileio"
	"github.com/walteh/castfix/pkg/match"
	"github.com/walteh/castfix/pkg/scan"
	"gitlab.com/tozd/go/errors"
)

// 📄 Result describes one candidate file after rewriting
type Result struct {
	Path      string
	Old       string
	New       string
	Changed   bool
	Annotated int // objects that received the suffix
	Skipped   int // objects already cast
}

// 📊 Summary is the outcome of a run
type Summary struct {
	Candidates int  // files that passed the candidate filter
	Changed    int  // files modified, or that would be in a dry run
	DryRun     bool // nothing was written
}

// 📢 Reporter receives user-facing progress
type Reporter interface {
	FileFixed(ctx context.Context, res Result, dryRun bool)
	Finished(ctx context.Context, sum Summary)
}

// 🔧 Options contains configuration for the patcher
type Options struct {
	// Config is required
	Config *config.Config
	// Files defaults to an os-backed manager honoring Config.DirectWrite
	Files fileio.FileManager
	// Reporter defaults to discarding output
	Reporter Reporter
	// DryRun rewrites in memory only
	DryRun bool
}

// 🩹 Patcher rewrites candidate files
type Patcher struct {
	cfg      *config.Config
	matcher  match.Matcher
	annotate match.Options
	files    fileio.FileManager
	scanner  *scan.Scanner
	reporter Reporter
	dryRun   bool
}

// 🏭 New creates a patcher with the given options
func New(opts Options) (*Patcher, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	files := opts.Files
	if files == nil {
		files = fileio.New(opts.Config.DirectWrite)
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = discard{}
	}

	return &Patcher{
		cfg:     opts.Config,
		matcher: NewMatcher(opts.Config),
		annotate: match.Options{
			Marker: opts.Config.Marker,
			Suffix: opts.Config.Suffix,
			Window: opts.Config.Window,
		},
		files:    files,
		scanner:  scan.New(opts.Config, files),
		reporter: reporter,
		dryRun:   opts.DryRun,
	}, nil
}

// NewMatcher returns the matcher selected by cfg.Mode.
func NewMatcher(cfg *config.Config) match.Matcher {
	if cfg.Mode == config.ModeLegacy {
		return match.NewRegexpMatcher(cfg.Keywords)
	}
	return match.NewBalancedMatcher(cfg.Keywords)
}

// Candidates yields candidate file paths under the configured root.
func (p *Patcher) Candidates(ctx context.Context) iter.Seq2[string, error] {
	return p.scanner.Candidates(ctx)
}

// Rewrite annotates text without touching the filesystem.
func (p *Patcher) Rewrite(text string) match.Result {
	return match.Annotate(text, p.matcher, p.annotate)
}

// RewriteFile rewrites one file in place and reports whether it changed.
// A dry-run patcher never writes.
func (p *Patcher) RewriteFile(ctx context.Context, path string) (bool, error) {
	res, err := p.rewriteFile(ctx, path)
	if err != nil {
		return false, err
	}
	return res.Changed, nil
}

func (p *Patcher) rewriteFile(ctx context.Context, path string) (Result, error) {
	res, err := p.planFile(ctx, path)
	if err != nil {
		return res, err
	}
	if !res.Changed || p.dryRun {
		return res, nil
	}
	if err := p.files.WriteFile(ctx, path, []byte(res.New)); err != nil {
		return res, errors.Errorf("writing %s: %w", path, err)
	}
	return res, nil
}

func (p *Patcher) planFile(ctx context.Context, path string) (Result, error) {
	logger := zerolog.Ctx(ctx)

	content, err := p.files.ReadFile(ctx, path)
	if err != nil {
		return Result{Path: path}, errors.Errorf("reading %s: %w", path, err)
	}

	old := string(content)
	annotated := p.Rewrite(old)

	res := Result{
		Path:      path,
		Old:       old,
		New:       annotated.Text,
		Changed:   annotated.Changed(old),
		Annotated: annotated.Annotated,
		Skipped:   annotated.Skipped,
	}

	logger.Debug().
		Str("path", path).
		Int("spans", len(annotated.Spans)).
		Int("annotated", res.Annotated).
		Int("skipped", res.Skipped).
		Bool("changed", res.Changed).
		Msg("rewrote file")

	return res, nil
}

// Plan rewrites every candidate in memory and returns the results without
// writing anything.
func (p *Patcher) Plan(ctx context.Context) ([]Result, error) {
	var results []Result
	for path, err := range p.Candidates(ctx) {
		if err != nil {
			return results, errors.Errorf("locating candidates: %w", err)
		}
		res, err := p.planFile(ctx, path)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Apply writes every changed result and returns how many were written. It
// stops at the first failure; results before it stay written.
func (p *Patcher) Apply(ctx context.Context, results []Result) (int, error) {
	written := 0
	for _, res := range results {
		if !res.Changed {
			continue
		}
		if p.dryRun {
			written++
			continue
		}
		if err := p.files.WriteFile(ctx, res.Path, []byte(res.New)); err != nil {
			return written, errors.Errorf("writing %s: %w", res.Path, err)
		}
		written++
	}
	return written, nil
}

// 🏃 Run locates candidates and rewrites them one at a time, reporting each
// changed file and a final summary. The first error aborts the run and no
// summary is reported.
func (p *Patcher) Run(ctx context.Context) (Summary, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("config", p.cfg.String()).Bool("dry_run", p.dryRun).Msg("starting run")

	sum := Summary{DryRun: p.dryRun}
	for path, err := range p.Candidates(ctx) {
		if err != nil {
			return sum, errors.Errorf("locating candidates: %w", err)
		}
		sum.Candidates++

		res, err := p.rewriteFile(ctx, path)
		if err != nil {
			return sum, err
		}
		if !res.Changed {
			continue
		}
		sum.Changed++
		p.reporter.FileFixed(ctx, res, p.dryRun)
	}

	p.reporter.Finished(ctx, sum)

	logger.Debug().Int("candidates", sum.Candidates).Int("changed", sum.Changed).Msg("run complete")
	return sum, nil
}

type discard struct{}

func (discard) FileFixed(context.Context, Result, bool) {}
func (discard) Finished(context.Context, Summary)       {}
