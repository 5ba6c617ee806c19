package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mmlcd"
	"mmlcd/config"
)

const caCSV = "NPA,CO Code (NXX),Status,Exchange Area,Province\n" +
	"613,562,In Service,Ottawa-Hull,ON\n" +
	"613,563,Available,Ottawa-Hull,ON\n" +
	"343,200,In Service,Ottawa-Hull,ON\n" +
	"819,204,In Service,Gatineau,QC\n"

func TestNanpaCommand(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "codes.csv")
	require.NoError(t, os.WriteFile(data, []byte(caCSV), 0o644))
	outDir := filepath.Join(dir, "tables")

	rootCmd.SetArgs([]string{
		"nanpa", "--npa", "613", "--nxx", "562", "--country", "CA",
		"--ratecenters", "Ottawa-Hull", "--datafile", data,
		"--out", outDir, "--prefix", "lcd", "--fetch=false",
	})
	require.NoError(t, rootCmd.Execute())

	for _, id := range []int{0x88, 0x89, 0x65, 0x66, 0x4a, 0x4b} {
		b, err := os.ReadFile(filepath.Join(outDir, mmlcd.TableFileName("lcd", id)))
		require.NoError(t, err, id)
		assert.NotEmpty(t, b)
	}
	b, err := os.ReadFile(filepath.Join(outDir, "lcd_88.bin"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x61, 0x3e}, b[:2])
	assert.Len(t, b, mmlcd.DoubleCompressed.Size())
	assert.NoFileExists(t, filepath.Join(outDir, "lcd_8a.bin"))
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "mmlcd.yaml")
	rootCmd.SetArgs([]string{"config", "init", path})
	require.NoError(t, rootCmd.Execute())

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 408, got.Terminal.NPA)
	assert.Equal(t, config.DefaultConfig().Data.LCGURL, got.Data.LCGURL)
	require.NoError(t, got.Validate())
}

func TestSelectedTiers(t *testing.T) {
	ts, err := selectedTiers(nil)
	require.NoError(t, err)
	assert.Nil(t, ts)

	ts, err = selectedTiers([]string{"compressed", "Uncompressed"})
	require.NoError(t, err)
	assert.Equal(t, []mmlcd.Tier{mmlcd.Compressed, mmlcd.Uncompressed}, ts)

	_, err = selectedTiers([]string{"triple"})
	assert.ErrorContains(t, err, "triple")
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("warn")
	require.NoError(t, err)
	assert.NotNil(t, l)
	_, err = newLogger("loud")
	assert.Error(t, err)
}

func TestJoinInts(t *testing.T) {
	assert.Equal(t, "613, 343", joinInts([]int{613, 343}))
	assert.Equal(t, "", joinInts(nil))
}
