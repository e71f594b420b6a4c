package models

import "fmt"

// Compression names the codec used for the release tarball
type Compression string

const (
	CompressionGzip Compression = "gzip"
	CompressionXZ   Compression = "xz"
	CompressionZstd Compression = "zstd"
)

// Extension returns the tarball suffix for the codec
func (c Compression) Extension() string {
	switch c {
	case CompressionXZ:
		return ".tar.xz"
	case CompressionZstd:
		return ".tar.zst"
	default:
		return ".tar.gz"
	}
}

// ParseCompression maps a config value to a Compression. Empty means gzip.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case "", CompressionGzip:
		return CompressionGzip, nil
	case CompressionXZ:
		return CompressionXZ, nil
	case CompressionZstd:
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("unsupported compression %q (want gzip, xz or zstd)", s)
	}
}

// PackageConfig describes one package build. It is loaded once and not
// modified afterwards.
type PackageConfig struct {
	// Core metadata
	Name        string
	Version     string
	Description string
	Homepage    string
	GitHubRepo  string // owner/repo, used for the derived URL and the tap

	// Paths
	FilesDir  string
	OutputDir string

	// Formula options
	DownloadURL string // empty means the GitHub release URL is derived
	Codesign    bool
	Commands    []string
	Caveat      string

	Compression Compression
}

// TarballName returns the archive filename, e.g. foo-1.0.tar.gz
func (c *PackageConfig) TarballName() string {
	return fmt.Sprintf("%s-%s%s", c.Name, c.Version, c.Compression.Extension())
}
