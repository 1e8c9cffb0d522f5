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

// Package config holds the settings that drive a castfix run.
//
// A zero-argument run uses Defaults, which mirror the constants of the
// original one-shot script: scan src/app/api for *.ts files that mention
// admin.query and cast `$:` objects carrying where/order/limit to any.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Match modes
const (
	// ModeBalanced follows nested braces to the closing brace of the `$:` object.
	ModeBalanced = "balanced"
	// ModeLegacy reproduces the original regular expression, which stops at the first `}`.
	ModeLegacy = "legacy"
)

// 📚 Config represents the complete configuration
type Config struct {
	Root        string   // Directory searched recursively
	Include     []string // doublestar globs, relative to Root, selecting source files
	Ignore      []string // doublestar globs, relative to Root, excluded from the walk
	Candidate   string   // Substring a file must contain to be considered
	Keywords    []string // At least one must appear inside a `$:` object
	Marker      string   // Text that marks an object as already cast
	Suffix      string   // Text appended after a qualifying object
	Window      int      // Runes after a match inspected for Marker
	Mode        string   // ModeBalanced or ModeLegacy
	DirectWrite bool     // Overwrite files in place instead of temp file + rename
}

// 🏭 Defaults returns the configuration of the original script
func Defaults() *Config {
	return &Config{
		Root:      "src/app/api",
		Include:   []string{"**/*.ts"},
		Candidate: "admin.query",
		Keywords:  []string{"where", "order", "limit"},
		Marker:    "as any",
		Suffix:    " as any",
		Window:    20,
		Mode:      ModeBalanced,
	}
}

// 🎯 Load loads the configuration from a file layered over Defaults.
// An empty path returns the validated defaults.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, cfg.Validate()
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	file, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	file.ApplyTo(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid
func (cfg *Config) Validate() error {
	if cfg.Root == "" {
		return errors.Errorf("root is required")
	}
	if cfg.Candidate == "" {
		return errors.Errorf("candidate is required")
	}
	if cfg.Marker == "" {
		return errors.Errorf("marker is required")
	}
	if cfg.Suffix == "" {
		return errors.Errorf("suffix is required")
	}
	// a suffix without the marker would be appended again on every run
	if !strings.Contains(cfg.Suffix, cfg.Marker) {
		return errors.Errorf("suffix %q must contain marker %q", cfg.Suffix, cfg.Marker)
	}
	if len(cfg.Keywords) == 0 {
		return errors.Errorf("at least one keyword is required")
	}
	for i, kw := range cfg.Keywords {
		if kw == "" {
			return errors.Errorf("keyword %d is empty", i)
		}
	}
	if cfg.Window < 0 {
		return errors.Errorf("window must not be negative, got %d", cfg.Window)
	}
	if len(cfg.Include) == 0 {
		return errors.Errorf("at least one include pattern is required")
	}
	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Ignore...) {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid glob pattern %q", pattern)
		}
	}
	switch cfg.Mode {
	case ModeBalanced, ModeLegacy:
	default:
		return errors.Errorf("unknown mode %q, want %q or %q", cfg.Mode, ModeBalanced, ModeLegacy)
	}

	cfg.Root = filepath.Clean(cfg.Root)

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	return fmt.Sprintf("%s [%s] %q -> %q (%s)", cfg.Root, strings.Join(cfg.Include, ","), cfg.Candidate, cfg.Suffix, cfg.Mode)
}
