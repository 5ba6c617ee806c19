package nanpa

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// ErrUnsupportedFormat ...
var ErrUnsupportedFormat = errors.New("nanpa: unsupported source file format")

// readCloser closes the decoder first, then the file beneath it.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() (err error) {
	for _, c := range r.closers {
		if cerr := c(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open returns a reader for a numbering plan source file, decompressing
// .zst, .gz and .zip (first text entry) on the fly.
func Open(name string) (io.ReadCloser, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".zip":
		return openZip(name)
	case ".zst", ".gz", ".txt", ".tsv", ".csv":
	default:
		return nil, errors.Join(ErrUnsupportedFormat, errors.New("["+name+"]"))
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	switch ext {
	case ".zst":
		d, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.New("nanpa: unable to read [" + name + "] [" + err.Error() + "]")
		}
		return &readCloser{Reader: d, closers: []func() error{func() error { d.Close(); return nil }, f.Close}}, nil
	case ".gz":
		z, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.New("nanpa: unable to read [" + name + "] [" + err.Error() + "]")
		}
		return &readCloser{Reader: z, closers: []func() error{z.Close, f.Close}}, nil
	}
	return f, nil
}

func openZip(name string) (io.ReadCloser, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, err
	}
	var entry *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(f.Name)) {
		case ".txt", ".tsv", ".csv":
			entry = f
		}
		if entry != nil {
			break
		}
	}
	if entry == nil {
		zr.Close()
		return nil, errors.Join(ErrUnsupportedFormat, errors.New("["+name+"] [no data entry in archive]"))
	}
	r, err := entry.Open()
	if err != nil {
		zr.Close()
		return nil, err
	}
	return &readCloser{Reader: r, closers: []func() error{r.Close, zr.Close}}, nil
}

// EntryName is the data file name inside a .zip source, "" otherwise.
func EntryName(name string) string {
	if strings.ToLower(filepath.Ext(name)) != ".zip" {
		return ""
	}
	zr, err := zip.OpenReader(name)
	if err != nil {
		return ""
	}
	defer zr.Close()
	for _, f := range zr.File {
		switch strings.ToLower(filepath.Ext(f.Name)) {
		case ".txt", ".tsv", ".csv":
			return f.Name
		}
	}
	return ""
}
