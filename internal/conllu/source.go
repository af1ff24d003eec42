// Package conllu implements the CoNLL-U decoder and tree builder: turning
// a byte stream into a sequence of sentence blocks and then into indexed
// model.Tree values (spec §4.1).
package conllu

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

var gzipMagic = [2]byte{0x1F, 0x8B}

// OpenFile opens path transparently, detecting gzip compression from its
// magic bytes rather than from the file extension. The returned closer
// closes the underlying file (and, for gzip, the decompressor).
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("conllu: open %s: %w", path, err)
	}
	return wrapGzipIfNeeded(f, path)
}

// wrapGzipIfNeeded peeks at the first two bytes of f to decide whether to
// wrap it in a gzip reader. On any peek error the raw file is returned
// unwrapped so the caller's own read reports the real failure.
func wrapGzipIfNeeded(f *os.File, path string) (io.ReadCloser, error) {
	br := bufio.NewReader(f)
	magic, err := br.Peek(2)
	if err != nil {
		return &readerCloser{Reader: br, closer: f}, nil
	}
	if magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("conllu: %s: invalid gzip stream: %w", path, err)
		}
		return &gzipCloser{Reader: gz, gz: gz, file: f}, nil
	}
	return &readerCloser{Reader: br, closer: f}, nil
}

// readerCloser pairs a buffered Reader with the *os.File it wraps so
// Close releases the file descriptor.
type readerCloser struct {
	io.Reader
	closer io.Closer
}

func (r *readerCloser) Close() error { return r.closer.Close() }

// gzipCloser closes both the gzip stream and the backing file.
type gzipCloser struct {
	io.Reader
	gz   *gzip.Reader
	file *os.File
}

func (g *gzipCloser) Close() error {
	gzErr := g.gz.Close()
	fileErr := g.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}
