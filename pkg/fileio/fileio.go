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

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 💾 FileManager reads and writes whole files
type FileManager interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, content []byte) error
}

var _ FileManager = (*Manager)(nil)

// 🔧 Manager is the os-backed FileManager
type Manager struct {
	direct bool
}

// 🏭 New creates a manager. With direct set, WriteFile overwrites in place
// instead of going through a temp file and rename.
func New(direct bool) *Manager {
	return &Manager{direct: direct}
}

func (m *Manager) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading file: %w", err)
	}
	return content, nil
}

func (m *Manager) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.direct {
		return m.WriteFileDirect(ctx, path, content)
	}
	return m.WriteFileAtomic(ctx, path, content)
}

// WriteFileDirect truncates and rewrites the file, keeping its mode.
func (m *Manager) WriteFileDirect(ctx context.Context, path string, content []byte) error {
	mode, err := fileMode(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return errors.Errorf("writing file: %w", err)
	}
	return nil
}

// WriteFileAtomic writes to a temp file next to path and renames it over
// path, so a failed write never leaves a half-written source file. A symlink
// is written through: the temp file lands next to its target and replaces it.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) (err error) {
	path, err = resolveTarget(path)
	if err != nil {
		return err
	}

	mode, err := fileMode(path)
	if err != nil {
		return err
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".castfix-*")
	if err != nil {
		return errors.Errorf("creating temp file for %s: %w", path, err)
	}
	tempPath := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			if rmErr := os.Remove(tempPath); rmErr != nil && !os.IsNotExist(rmErr) {
				zerolog.Ctx(ctx).Warn().Err(rmErr).Str("path", tempPath).Msg("removing temp file")
			}
		}
	}()

	if _, err = tmp.Write(content); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err = os.Rename(tempPath, path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// resolveTarget follows symlinks in path. A path that does not exist yet is
// returned unchanged.
func resolveTarget(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if os.IsNotExist(err) {
		return path, nil
	}
	if err != nil {
		return "", errors.Errorf("resolving %s: %w", path, err)
	}
	return resolved, nil
}

// fileMode returns the permission bits of an existing file, or 0644.
func fileMode(path string) (os.FileMode, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0644, nil
	}
	if err != nil {
		return 0, errors.Errorf("checking file %s: %w", path, err)
	}
	return info.Mode().Perm(), nil
}
