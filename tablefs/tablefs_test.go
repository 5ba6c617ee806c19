package tablefs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mmlcd"
)

func TestPersist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w := New(dir, "")
	require.NoError(t, w.Persist(context.Background(), 136, []byte{0x40, 0x8e}))

	data, err := os.ReadFile(filepath.Join(dir, "mm_table_88.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40, 0x8e}, data)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestPersistOverwrites(t *testing.T) {
	w := New(t.TempDir(), "lcd")
	require.NoError(t, w.Persist(context.Background(), 74, []byte{1, 2, 3}))
	require.NoError(t, w.Persist(context.Background(), 74, []byte{4}))
	data, err := os.ReadFile(w.Path(74))
	require.NoError(t, err)
	assert.Equal(t, []byte{4}, data)
	assert.Equal(t, "lcd_4a.bin", filepath.Base(w.Path(74)))
}

func TestPersistError(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	w := New(blocker, "")
	err := w.Persist(context.Background(), 101, []byte{0})
	require.Error(t, err)
	var pe *fs.PathError
	assert.True(t, errors.As(err, &pe))
}

func TestPersistCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(t.TempDir(), "").Persist(ctx, 101, []byte{0})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateToDisk(t *testing.T) {
	dir := t.TempDir()
	m := mmlcd.Map{}
	m.Set(408, 535, mmlcd.CodeLocal)
	report, err := mmlcd.GenerateAll(context.Background(), m, []int{408}, New(dir, ""))
	require.NoError(t, err)
	assert.Equal(t, mmlcd.Success, report.Status)

	for name, size := range map[string]int{
		"mm_table_88.bin": 202,
		"mm_table_65.bin": 402,
		"mm_table_4a.bin": 818,
	} {
		st, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.EqualValues(t, size, st.Size(), name)
	}
}
