package tcase

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Open opens a test-case file for reading, decoding it transparently
// when it is zstd-compressed. The caller owns the returned reader.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !Compressed(path) {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to open zstd reader for %s: %w", path, err)
	}
	return &zstReader{dec: dec, f: f}, nil
}

// ReadFile reads a whole test-case file, decompressing if needed.
func ReadFile(path string) ([]byte, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}

type zstReader struct {
	dec *zstd.Decoder
	f   *os.File
}

func (z *zstReader) Read(p []byte) (int, error) { return z.dec.Read(p) }

func (z *zstReader) Close() error {
	z.dec.Close()
	return z.f.Close()
}
