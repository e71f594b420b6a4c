package archive

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ralt/brewpack/internal/models"
	"github.com/ulikunitz/xz"
)

// DetectCompression picks the codec from the archive filename
func DetectCompression(path string) (models.Compression, error) {
	switch {
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		return models.CompressionGzip, nil
	case strings.HasSuffix(path, ".tar.xz"):
		return models.CompressionXZ, nil
	case strings.HasSuffix(path, ".tar.zst"):
		return models.CompressionZstd, nil
	default:
		return "", fmt.Errorf("unknown archive extension: %s", path)
	}
}

func newCompressor(w io.Writer, c models.Compression) (io.WriteCloser, error) {
	switch c {
	case models.CompressionGzip, "":
		return gzip.NewWriter(w), nil
	case models.CompressionXZ:
		return xz.NewWriter(w)
	case models.CompressionZstd:
		return zstd.NewWriter(w)
	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r *readCloser) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

func newDecompressor(r io.Reader, c models.Compression) (io.ReadCloser, error) {
	switch c {
	case models.CompressionGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return gr, nil
	case models.CompressionXZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &readCloser{Reader: xr}, nil
	case models.CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &readCloser{Reader: zr, close: func() error {
			zr.Close()
			return nil
		}}, nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}
