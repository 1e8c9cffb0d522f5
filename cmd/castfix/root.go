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

package main

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/castfix/cmd/castfix/commands"
	"github.com/walteh/castfix/cmd/castfix/opts"
	"github.com/walteh/castfix/pkg/config"
	"github.com/walteh/castfix/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// overrides holds the config flags; a flag only wins over the config file
// when it was set on the command line.
type overrides struct {
	root        string
	include     []string
	ignore      []string
	candidate   string
	legacy      bool
	directWrite bool
}

// newRootCmd builds the command tree writing to stdout and stderr
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &opts.RootOpts{Stdout: stdout, Stderr: stderr}
	ov := &overrides{}

	rootCmd := &cobra.Command{
		Use:   "castfix",
		Short: "Cast admin.query objects to any",
		Long: `castfix appends an "as any" cast after $: objects in admin.query calls
that carry where, order or limit, silencing the type checker.

Run without a subcommand it fixes every candidate under src/app/api.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd, o, ov)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.Fix(cmd.Context(), o)
		},
	}

	addRootFlags(rootCmd, o, ov)

	rootCmd.AddCommand(
		commands.NewFixCmd(o),
		commands.NewCheckCmd(o),
		commands.NewVersionCmd(o),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts, ov *overrides) {
	f := cmd.PersistentFlags()
	f.StringVarP(&o.ConfigFile, "config", "c", "", "config file path (.yaml, .yml, .hcl or .json)")
	f.BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	f.BoolVarP(&o.Verbose, "verbose", "v", false, "log each fixed file to stderr")
	f.BoolVar(&o.DryRun, "dry-run", false, "report what would change without writing")
	f.BoolVar(&o.Diff, "diff", false, "print a line diff for each changed file")

	f.StringVarP(&ov.root, "root", "r", "", "directory to scan (default src/app/api)")
	f.StringSliceVar(&ov.include, "include", nil, "glob of files to scan, relative to root (default **/*.ts)")
	f.StringSliceVar(&ov.ignore, "ignore", nil, "glob of files to skip, relative to root")
	f.StringVar(&ov.candidate, "candidate", "", "text a file must contain to be scanned (default admin.query)")
	f.BoolVar(&ov.legacy, "legacy", false, "stop objects at the first } like the original script; trees already patched by the script need it to stay byte-compatible")
	f.BoolVar(&ov.directWrite, "direct-write", false, "overwrite files in place instead of writing a temp file and renaming")
}

// setup configures logging, loads config and builds the reporter
func setup(cmd *cobra.Command, o *opts.RootOpts, ov *overrides) error {
	ctx := setupLogging(cmd, o)

	cfg, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("root") {
		cfg.Root = ov.root
	}
	if flags.Changed("include") {
		cfg.Include = ov.include
	}
	if flags.Changed("ignore") {
		cfg.Ignore = ov.ignore
	}
	if flags.Changed("candidate") {
		cfg.Candidate = ov.candidate
	}
	if flags.Changed("legacy") {
		cfg.Mode = config.ModeBalanced
		if ov.legacy {
			cfg.Mode = config.ModeLegacy
		}
	}
	if flags.Changed("direct-write") {
		cfg.DirectWrite = ov.directWrite
	}

	if err := cfg.Validate(); err != nil {
		return errors.Errorf("validating flags: %w", err)
	}

	o.Config = cfg
	cmd.SetContext(log.NewContext(ctx, log.New(o.Stdout, o.Diff)))

	zerolog.Ctx(ctx).Debug().Str("config", cfg.String()).Msg("configuration loaded")
	return nil
}

// setupLogging attaches a stderr console logger with a run id to the command context
func setupLogging(cmd *cobra.Command, o *opts.RootOpts) context.Context {
	level := zerolog.WarnLevel
	switch {
	case o.Debug:
		level = zerolog.DebugLevel
	case o.Verbose:
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: o.Stderr}).
		Level(level).
		With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()

	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	ctx := logger.WithContext(base)
	cmd.SetContext(ctx)
	return ctx
}
