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

package config

import (
	"context"
	"strings"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*File, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	name := strings.ToLower(strings.TrimSpace(filename))
	for _, p := range parsers {
		if p.CanParse(name) {
			return p
		}
	}
	return nil
}

// 📄 File is the on-disk shape of a config file. Every field is optional;
// unset fields keep their default.
type File struct {
	Root        *string  `json:"root,omitempty" yaml:"root,omitempty" hcl:"root,optional"`
	Include     []string `json:"include,omitempty" yaml:"include,omitempty" hcl:"include,optional"`
	Ignore      []string `json:"ignore,omitempty" yaml:"ignore,omitempty" hcl:"ignore,optional"`
	Candidate   *string  `json:"candidate,omitempty" yaml:"candidate,omitempty" hcl:"candidate,optional"`
	Keywords    []string `json:"keywords,omitempty" yaml:"keywords,omitempty" hcl:"keywords,optional"`
	Marker      *string  `json:"marker,omitempty" yaml:"marker,omitempty" hcl:"marker,optional"`
	Suffix      *string  `json:"suffix,omitempty" yaml:"suffix,omitempty" hcl:"suffix,optional"`
	Window      *int     `json:"window,omitempty" yaml:"window,omitempty" hcl:"window,optional"`
	Mode        *string  `json:"mode,omitempty" yaml:"mode,omitempty" hcl:"mode,optional"`
	DirectWrite *bool    `json:"direct_write,omitempty" yaml:"direct_write,omitempty" hcl:"direct_write,optional"`
}

// ApplyTo copies every set field onto cfg.
func (f *File) ApplyTo(cfg *Config) {
	if f.Root != nil {
		cfg.Root = *f.Root
	}
	if f.Include != nil {
		cfg.Include = f.Include
	}
	if f.Ignore != nil {
		cfg.Ignore = f.Ignore
	}
	if f.Candidate != nil {
		cfg.Candidate = *f.Candidate
	}
	if f.Keywords != nil {
		cfg.Keywords = f.Keywords
	}
	if f.Marker != nil {
		cfg.Marker = *f.Marker
	}
	if f.Suffix != nil {
		cfg.Suffix = *f.Suffix
	}
	if f.Window != nil {
		cfg.Window = *f.Window
	}
	if f.Mode != nil {
		cfg.Mode = *f.Mode
	}
	if f.DirectWrite != nil {
		cfg.DirectWrite = *f.DirectWrite
	}
}
