package dataset

import (
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4"
)

// openDataset opens filePath and, for .zip, .gz and .lz4 archives, returns a
// reader over the decompressed content together with the inner file name used
// to pick a parser. Plain files are returned as is.
func openDataset(filePath string) (io.ReadCloser, string, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".zip":
		return openZipArchive(filePath)
	case ".gz":
		return openStreamArchive(filePath, ".gz", func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		})
	case ".lz4":
		return openStreamArchive(filePath, ".lz4", func(r io.Reader) (io.Reader, error) {
			return lz4.NewReader(r), nil
		})
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, "", err
	}
	return file, filepath.Base(filePath), nil
}

type archiveReader struct {
	io.Reader
	closers []io.Closer
}

func (a *archiveReader) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func openStreamArchive(filePath, ext string, wrap func(io.Reader) (io.Reader, error)) (io.ReadCloser, string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, "", err
	}
	r, err := wrap(file)
	if err != nil {
		file.Close()
		return nil, "", fmt.Errorf("error opening %s archive: %w", ext, err)
	}

	ar := &archiveReader{Reader: r, closers: []io.Closer{file}}
	if c, ok := r.(io.Closer); ok {
		ar.closers = append(ar.closers, c)
	}
	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return ar, name, nil
}

// openZipArchive picks the largest file in the archive, the way uploads are
// usually a single export plus some readme files.
func openZipArchive(filePath string) (io.ReadCloser, string, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, "", err
	}

	var largestFile *zip.File
	var largestSize uint64
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if largestFile == nil || f.UncompressedSize64 > largestSize {
			largestFile = f
			largestSize = f.UncompressedSize64
		}
	}
	if largestFile == nil {
		zr.Close()
		return nil, "", fmt.Errorf("zip archive %s is empty", filepath.Base(filePath))
	}

	rc, err := largestFile.Open()
	if err != nil {
		zr.Close()
		return nil, "", err
	}
	return &archiveReader{Reader: rc, closers: []io.Closer{zr, rc}}, filepath.Base(largestFile.Name), nil
}
