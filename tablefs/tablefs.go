// Package tablefs stores generated tables as one file per table number.
package tablefs

import (
	"context"
	"os"
	"path/filepath"

	"mmlcd"
)

// const
const (
	DefaultPrefix = "mm_table"
	_permFile     = 0o644
	_permDir      = 0o755
)

// FS writes tables into Dir as <Prefix>_<hex id>.bin.
type FS struct {
	Dir    string
	Prefix string
}

var _ mmlcd.Sink = (*FS)(nil)

// New ...
func New(dir, prefix string) *FS {
	if dir == "" {
		dir = "."
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &FS{Dir: dir, Prefix: prefix}
}

// Path ...
func (w *FS) Path(id int) string {
	return filepath.Join(w.Dir, mmlcd.TableFileName(w.Prefix, id))
}

// Persist writes data next to its destination and renames it into place, so
// firmware tooling never picks up a short table. Errors are the os errors as-is.
func (w *FS) Persist(ctx context.Context, id int, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.Dir, _permDir); err != nil {
		return err
	}
	dest := w.Path(id)
	tmp, err := os.CreateTemp(w.Dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, _permFile); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
