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

// Package scan enumerates the files a run should look at.
package scan

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/castfix/pkg/config"
	"github.com/walteh/castfix/pkg/fileio"
	"gitlab.com/tozd/go/errors"
)

// 🔎 Scanner walks a root directory looking for candidate files
type Scanner struct {
	root      string
	include   []string
	ignore    []string
	candidate string
	files     fileio.FileManager
}

// 🏭 New creates a scanner for cfg that reads through files
func New(cfg *config.Config, files fileio.FileManager) *Scanner {
	return &Scanner{
		root:      cfg.Root,
		include:   cfg.Include,
		ignore:    cfg.Ignore,
		candidate: cfg.Candidate,
		files:     files,
	}
}

// Candidates walks the root and yields the path of every included file whose
// text contains the candidate substring. Paths are root-joined, so a root of
// src/app/api yields src/app/api/users/route.ts.
//
// The sequence is lazy and single-pass; ranging over it again walks the tree
// again. The first error is yielded once and ends the sequence.
func (s *Scanner) Candidates(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		logger := zerolog.Ctx(ctx)

		stopped := false
		emit := func(path string, err error) error {
			if !yield(path, err) {
				stopped = true
				return filepath.SkipAll
			}
			if err != nil {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		}

		err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return emit("", errors.Errorf("walking %s: %w", path, err))
			}
			if err := ctx.Err(); err != nil {
				return emit("", err)
			}

			rel, err := s.relative(path)
			if err != nil {
				return emit("", err)
			}

			if d.IsDir() {
				if rel != "." && s.Ignored(rel) {
					logger.Debug().Str("dir", path).Msg("skipping ignored directory")
					return filepath.SkipDir
				}
				return nil
			}

			if !s.Included(rel) || s.Ignored(rel) {
				return nil
			}

			regular, err := isRegular(path, d)
			if err != nil {
				return emit("", err)
			}
			if !regular {
				return nil
			}

			content, err := s.files.ReadFile(ctx, path)
			if err != nil {
				return emit("", err)
			}

			if !strings.Contains(string(content), s.candidate) {
				logger.Debug().Str("path", path).Msg("not a candidate")
				return nil
			}

			return emit(path, nil)
		})

		if err != nil && !stopped {
			yield("", errors.Errorf("walking %s: %w", s.root, err))
		}
	}
}

// Included reports whether the slash-separated path relative to the root
// matches an include pattern.
func (s *Scanner) Included(rel string) bool {
	return matchAny(s.include, rel)
}

// Ignored reports whether the slash-separated path relative to the root
// matches an ignore pattern.
func (s *Scanner) Ignored(rel string) bool {
	return matchAny(s.ignore, rel)
}

func (s *Scanner) relative(path string) (string, error) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return "", errors.Errorf("relativizing %s: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}

func matchAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		// patterns are validated by config, so the error is unreachable
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// isRegular follows symlinks, as the walk itself does not.
func isRegular(path string, d fs.DirEntry) (bool, error) {
	if d.Type().IsRegular() {
		return true, nil
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, errors.Errorf("resolving symlink %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}
