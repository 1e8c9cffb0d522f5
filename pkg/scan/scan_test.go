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

package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/castfix/pkg/config"
	"github.com/walteh/castfix/pkg/fileio"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func collect(t *testing.T, ctx context.Context, s *Scanner) ([]string, error) {
	t.Helper()
	var paths []string
	for path, err := range s.Candidates(ctx) {
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func TestScanner_Candidates(t *testing.T) {
	tests := []struct {
		name   string
		files  map[string]string
		mutate func(cfg *config.Config)
		want   []string
	}{
		{
			name: "filters_by_suffix_and_substring",
			files: map[string]string{
				"users/route.ts":    "await admin.query({ users: {} })",
				"posts/route.ts":    "await db.select()",
				"posts/helper.js":   "admin.query({})",
				"deep/a/b/route.ts": "admin.query",
			},
			want: []string{"deep/a/b/route.ts", "users/route.ts"},
		},
		{
			name: "ignore_patterns",
			files: map[string]string{
				"users/route.ts":        "admin.query",
				"generated/schema.ts":   "admin.query",
				"users/route.test.ts":   "admin.query",
				"users/nested/route.ts": "admin.query",
			},
			mutate: func(cfg *config.Config) {
				cfg.Ignore = []string{"generated/**", "**/*.test.ts"}
			},
			want: []string{"users/nested/route.ts", "users/route.ts"},
		},
		{
			name: "custom_include_and_candidate",
			files: map[string]string{
				"a.tsx": "db.query",
				"b.ts":  "db.query",
				"c.tsx": "admin.query",
			},
			mutate: func(cfg *config.Config) {
				cfg.Include = []string{"**/*.tsx"}
				cfg.Candidate = "db.query"
			},
			want: []string{"a.tsx"},
		},
		{
			name:  "empty_root",
			files: map[string]string{},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
			root := t.TempDir()
			writeTree(t, root, tt.files)

			cfg := config.Defaults()
			cfg.Root = root
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			require.NoError(t, cfg.Validate())

			got, err := collect(t, ctx, New(cfg, fileio.New(false)))
			require.NoError(t, err)

			var want []string
			for _, rel := range tt.want {
				want = append(want, filepath.Join(root, filepath.FromSlash(rel)))
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestScanner_Candidates_MissingRoot(t *testing.T) {
	cfg := config.Defaults()
	cfg.Root = filepath.Join(t.TempDir(), "src", "app", "api")

	got, err := collect(t, context.Background(), New(cfg, fileio.New(false)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "walking")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, got)
}

func TestScanner_Candidates_StopsEarly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.ts": "admin.query",
		"b.ts": "admin.query",
		"c.ts": "admin.query",
	})
	cfg := config.Defaults()
	cfg.Root = root

	count := 0
	for _, err := range New(cfg, fileio.New(false)).Candidates(context.Background()) {
		require.NoError(t, err)
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestScanner_Candidates_Restartable(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.ts": "admin.query"})
	cfg := config.Defaults()
	cfg.Root = root

	s := New(cfg, fileio.New(false))
	first, err := collect(t, context.Background(), s)
	require.NoError(t, err)

	writeTree(t, root, map[string]string{"b.ts": "admin.query"})
	second, err := collect(t, context.Background(), s)
	require.NoError(t, err)

	assert.Len(t, first, 1)
	assert.Len(t, second, 2, "a fresh range should re-walk the tree")
}

func TestScanner_Candidates_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.ts": "admin.query"})
	cfg := config.Defaults()
	cfg.Root = root

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := collect(t, ctx, New(cfg, fileio.New(false)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanner_Matchers(t *testing.T) {
	cfg := config.Defaults()
	cfg.Ignore = []string{"**/node_modules/**"}
	s := New(cfg, fileio.New(false))

	assert.True(t, s.Included("route.ts"))
	assert.True(t, s.Included("a/b/route.ts"))
	assert.False(t, s.Included("route.tsx"))
	assert.True(t, s.Ignored("x/node_modules/y.ts"))
	assert.False(t, s.Ignored("x/y.ts"))
}
