package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// FileHash is the SHA-256 digest of one file
type FileHash struct {
	Path string
	Hash string
}

// HashFile returns the hex SHA-256 digest of a file
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFiles hashes every path, stopping at the first failure
func HashFiles(paths []string) ([]FileHash, error) {
	out := make([]FileHash, 0, len(paths))
	for _, p := range paths {
		sum, err := HashFile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, FileHash{Path: p, Hash: sum})
	}
	return out, nil
}
