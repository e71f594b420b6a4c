package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// DefaultChunkSize is the read size used when streaming files through a hash
const DefaultChunkSize = 4096

// Checksum contains the digest and size of a file
type Checksum struct {
	SHA256 string
	Size   int64
}

// CalculateChecksum hashes a file and records its size
func CalculateChecksum(path string) (*Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	sum, err := hashReader(f, DefaultChunkSize)
	if err != nil {
		return nil, err
	}

	return &Checksum{
		SHA256: sum,
		Size:   info.Size(),
	}, nil
}

// CalculateSHA256 returns the hex SHA-256 digest of a file
func CalculateSHA256(path string) (string, error) {
	return CalculateSHA256WithChunkSize(path, DefaultChunkSize)
}

// CalculateSHA256WithChunkSize streams the file chunkSize bytes at a time.
// The digest does not depend on chunkSize.
func CalculateSHA256WithChunkSize(path string, chunkSize int) (string, error) {
	if chunkSize <= 0 {
		return "", fmt.Errorf("invalid chunk size %d", chunkSize)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return hashReader(f, chunkSize)
}

func hashReader(r io.Reader, chunkSize int) (string, error) {
	h := sha256.New()
	buf := make([]byte, chunkSize)

	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
