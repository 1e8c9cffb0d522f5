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
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/walteh/castfix/pkg/patch"
)

func TestReporter(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name string
		diff bool
		op   func(ctx context.Context, r *Reporter)
		want string
	}{
		{
			name: "run_output",
			op: func(ctx context.Context, r *Reporter) {
				r.FileFixed(ctx, patch.Result{Path: "src/app/api/users/route.ts"}, false)
				r.FileFixed(ctx, patch.Result{Path: "src/app/api/posts/route.ts"}, false)
				r.Finished(ctx, patch.Summary{Candidates: 5, Changed: 2})
			},
			want: "Fixed: src/app/api/users/route.ts\nFixed: src/app/api/posts/route.ts\n\nFixed 2 files\n",
		},
		{
			name: "nothing_fixed",
			op: func(ctx context.Context, r *Reporter) {
				r.Finished(ctx, patch.Summary{Candidates: 3})
			},
			want: "\nFixed 0 files\n",
		},
		{
			name: "dry_run",
			op: func(ctx context.Context, r *Reporter) {
				r.FileFixed(ctx, patch.Result{Path: "a.ts"}, true)
				r.Finished(ctx, patch.Summary{Changed: 1, DryRun: true})
			},
			want: "Would fix: a.ts\n\nWould fix 1 files\n",
		},
		{
			name: "with_diff",
			diff: true,
			op: func(ctx context.Context, r *Reporter) {
				r.FileFixed(ctx, patch.Result{
					Path: "a.ts",
					Old:  "import x\nq({ $: { limit: 1 } })\n",
					New:  "import x\nq({ $: { limit: 1 } as any })\n",
				}, false)
			},
			want: "Fixed: a.ts\n    - q({ $: { limit: 1 } })\n    + q({ $: { limit: 1 } as any })\n",
		},
		{
			name: "check_output",
			op: func(ctx context.Context, r *Reporter) {
				r.NeedsFix(ctx, patch.Result{Path: "a.ts"})
				r.CheckFinished(ctx, 1)
			},
			want: "Needs fix: a.ts\n\n1 files need fixing\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
			buf := &bytes.Buffer{}
			r := New(buf, tt.diff)

			tt.op(ctx, r)

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatDiff(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	assert.Empty(t, FormatDiff("same\n", "same\n"))
	assert.Equal(t, "    - a\n    + b\n", FormatDiff("a\nkeep\n", "b\nkeep\n"))
	assert.Equal(t, "    - no newline\n    + no newline as any\n", FormatDiff("no newline", "no newline as any"))
}

func TestReporterContext(t *testing.T) {
	r := New(io.Discard, false)

	ctx := NewContext(context.Background(), r)
	assert.Same(t, r, FromContext(ctx), "reporter from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when reporter is missing")
}

func TestError(t *testing.T) {
	buf := &bytes.Buffer{}
	Error(buf, "command failed", errors.New("boom"))
	assert.Contains(t, buf.String(), "command failed: boom")

	buf.Reset()
	Error(buf, "just a message", nil)
	assert.Contains(t, buf.String(), "just a message")
}
