package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// Checksum contains the digest and size of a file
type Checksum struct {
	SHA256 string
	Size   int64
}

// CalculateChecksums calculates the checksum of a file in a single pass
func CalculateChecksums(path string) (*Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, err
	}

	return &Checksum{
		SHA256: hex.EncodeToString(h.Sum(nil)),
		Size:   n,
	}, nil
}
