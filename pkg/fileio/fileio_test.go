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

package fileio

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_WriteFile(t *testing.T) {
	tests := []struct {
		name   string
		direct bool
	}{
		{name: "atomic", direct: false},
		{name: "direct", direct: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
			dir := t.TempDir()
			path := filepath.Join(dir, "route.ts")
			require.NoError(t, os.WriteFile(path, []byte("before"), 0600))

			m := New(tt.direct)
			require.NoError(t, m.WriteFile(ctx, path, []byte("after")))

			got, err := m.ReadFile(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, "after", string(got))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "mode should be preserved")

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "no temp files should be left behind")
		})
	}
}

func TestManager_WriteFileAtomic_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.ts")

	require.NoError(t, New(false).WriteFileAtomic(context.Background(), path, []byte("x")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestManager_WriteFileAtomic_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "route.ts")

	err := New(false).WriteFileAtomic(context.Background(), path, []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating temp file")
}

func TestManager_ReadFile_Missing(t *testing.T) {
	_, err := New(false).ReadFile(context.Background(), filepath.Join(t.TempDir(), "gone.ts"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading file")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestManager_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "route.ts")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	m := New(false)
	_, err := m.ReadFile(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, m.WriteFile(ctx, path, []byte("y")), context.Canceled)
}

func TestManager_WriteFileAtomic_Symlink(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	dir := t.TempDir()
	target := filepath.Join(dir, "shared.ts")
	link := filepath.Join(dir, "route.ts")
	require.NoError(t, os.WriteFile(target, []byte("before"), 0600))
	require.NoError(t, os.Symlink(target, link))

	require.NoError(t, New(false).WriteFileAtomic(ctx, link, []byte("after")))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "after", string(got))

	info, err := os.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "link should still be a symlink")

	info, err = os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "target mode should be preserved")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files should be left behind")
}
