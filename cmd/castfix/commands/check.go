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
	"github.com/spf13/cobra"
	"github.com/walteh/castfix/cmd/castfix/opts"
	"github.com/walteh/castfix/pkg/log"
	"github.com/walteh/castfix/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// ErrPendingFixes is returned by check when at least one file needs fixing.
var ErrPendingFixes = errors.Base("files need fixing")

// NewCheckCmd creates a new check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report files that still need the cast",
		Long: `Check rewrites every candidate in memory and lists the ones that would change.
Nothing is written. The command fails when any file needs fixing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reporter := log.FromContext(ctx)

			p, err := patch.New(patch.Options{
				Config:   o.Config,
				Reporter: reporter,
				DryRun:   true,
			})
			if err != nil {
				return errors.Errorf("creating patcher: %w", err)
			}

			results, err := p.Plan(ctx)
			if err != nil {
				return errors.Errorf("planning: %w", err)
			}

			pending := 0
			for _, res := range results {
				if !res.Changed {
					continue
				}
				pending++
				reporter.NeedsFix(ctx, res)
			}
			reporter.CheckFinished(ctx, pending)

			if pending > 0 {
				return errors.WithStack(ErrPendingFixes)
			}
			return nil
		},
	}
}
