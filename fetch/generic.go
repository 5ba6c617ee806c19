// package fetch ...
package fetch

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// isReadable ...
func isReadable(filename string) bool {
	f, err := os.Open(filename)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

// getEnv ...
func getEnv(in string) (string, bool) {
	if env, ok := syscall.Getenv(in); ok && env != "" {
		return env, true
	}
	return "", false
}

// IsOlderThan reports whether file was modified more than days ago. A missing
// file counts as old.
func IsOlderThan(file string, days int) bool {
	st, err := os.Stat(file)
	if err != nil {
		return true
	}
	return time.Since(st.ModTime()) > time.Duration(days)*24*time.Hour
}

// unzipFirst returns the first data entry (.txt, .tsv, .csv) of a zip archive.
func unzipFirst(name string) ([]byte, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, errors.New("fetch: unable to open archive [" + name + "] [" + err.Error() + "]")
	}
	defer zr.Close()
	for _, f := range zr.File {
		switch strings.ToLower(filepath.Ext(f.Name)) {
		case ".txt", ".tsv", ".csv":
		default:
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, errors.New("fetch: unable to read [" + f.Name + "] [" + err.Error() + "]")
		}
		defer r.Close()
		return io.ReadAll(r)
	}
	return nil, errors.New("fetch: no data entry in archive [" + name + "]")
}

// Compress ...
func Compress(algo string, level int, data []byte) ([]byte, error) {
	if algo == "" || level == 0 {
		return data, nil
	}
	switch algo {
	case "ZSTD":
		if level > 19 {
			level = 19
		}
		w, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
			zstd.WithEncoderCRC(false),
			zstd.WithZeroFrames(false),
			zstd.WithSingleSegment(true),
			zstd.WithLowerEncoderMem(false),
			zstd.WithAllLitEntropyCompression(true),
			zstd.WithNoEntropyCompression(false))
		if err != nil {
			return nil, errors.New("fetch: unable to create new zstd writer [" + err.Error() + "]")
		}
		out := w.EncodeAll(data, nil)
		w.Close()
		return out, nil
	}
	return nil, errors.New("fetch: unsupported compression algo [requested:" + algo + "]")
}

// Decompress ...
func Decompress(algo string, data []byte) ([]byte, error) {
	if algo == "" {
		return data, nil
	}
	var err error
	var r io.Reader
	br := bytes.NewReader(data)
	switch algo {
	case "ZSTD":
		d, derr := zstd.NewReader(br)
		if derr == nil {
			defer d.Close()
		}
		r, err = d, derr
	default:
		return nil, errors.New("fetch: unsupported de-compress algo [" + algo + "]")
	}
	if err != nil {
		return nil, errors.New("fetch: unable to create new de-compress reader [" + algo + "] [" + err.Error() + "]")
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New("fetch: [decompress] [" + algo + "] [" + err.Error() + "]")
	}
	return out, nil
}

// verifyCache decodes the zstd cache file in full.
func verifyCache(name string) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("fetch: empty cache file [" + name + "]")
	}
	_, err = Decompress("ZSTD", data)
	return err
}
