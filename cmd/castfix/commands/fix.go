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

package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/walteh/castfix/cmd/castfix/opts"
	"github.com/walteh/castfix/pkg/log"
	"github.com/walteh/castfix/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// NewFixCmd creates the fix command. The root command runs it when invoked
// without a subcommand.
func NewFixCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "fix",
		Short: "Cast query objects in candidate files to any",
		Long: `Fix walks the root directory and rewrites every candidate file.
It will:
1. Find files matching the include globs that mention the candidate text
2. Append the cast after each $: object carrying a query keyword
3. Write back only the files whose text changed
4. Print each fixed file and a final count`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Fix(cmd.Context(), o)
		},
	}
}

// Fix runs the patcher with the resolved options, reporting through the
// reporter carried in ctx.
func Fix(ctx context.Context, o *opts.RootOpts) error {
	p, err := patch.New(patch.Options{
		Config:   o.Config,
		Reporter: log.FromContext(ctx),
		DryRun:   o.DryRun,
	})
	if err != nil {
		return errors.Errorf("creating patcher: %w", err)
	}

	if _, err := p.Run(ctx); err != nil {
		return errors.Errorf("fixing files: %w", err)
	}

	return nil
}
