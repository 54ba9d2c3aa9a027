package fileio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression identifies how a file on disk is encoded.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGZ
	CompressionZSTD
	CompressionXZ
)

func (c Compression) String() string {
	switch c {
	case CompressionGZ:
		return "gzip"
	case CompressionZSTD:
		return "zstd"
	case CompressionXZ:
		return "xz"
	default:
		return "none"
	}
}

// DetectCompression picks the encoding from the path's extension.
func DetectCompression(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".gzip":
		return CompressionGZ
	case ".zst", ".zstd":
		return CompressionZSTD
	case ".xz":
		return CompressionXZ
	default:
		return CompressionNone
	}
}

// NewReader wraps r with a decompressor. The returned close func releases
// decompressor resources only, not r.
func (c Compression) NewReader(r io.Reader) (io.Reader, func() error, error) {
	switch c {
	case CompressionNone:
		return r, func() error { return nil }, nil
	case CompressionGZ:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return gz, gz.Close, nil
	case CompressionZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		return dec, func() error {
			dec.Close()
			return nil
		}, nil
	case CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		return xr, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported compression: %v", c)
	}
}

// NewWriter wraps w with a compressor. The close func must be called to
// flush the compressed stream; it does not close w.
func (c Compression) NewWriter(w io.Writer) (io.Writer, func() error, error) {
	switch c {
	case CompressionNone:
		return w, func() error { return nil }, nil
	case CompressionGZ:
		gz := gzip.NewWriter(w)
		return gz, gz.Close, nil
	case CompressionZSTD:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return enc, enc.Close, nil
	case CompressionXZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xw, xw.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported compression: %v", c)
	}
}
