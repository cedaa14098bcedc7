package authstate

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStorage persists the state snapshot to a single file, created with
// 0600 permissions. Writes go through a temp file in the same directory and
// a rename, so a crash mid-write leaves the previous snapshot intact.
type FileStorage struct {
	path string
}

// NewFileStorage creates a [FileStorage] rooted at path. The parent
// directory must exist.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Load implements [Storage].
func (f *FileStorage) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrNoState
	}
	return data, nil
}

// Save implements [Storage].
func (f *FileStorage) Save(_ context.Context, snapshot []byte) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".hubauth-state-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(snapshot); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, f.path)
}

// Clear implements [Storage]. Removing an already-absent file is not an
// error.
func (f *FileStorage) Clear(_ context.Context) error {
	err := os.Remove(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
