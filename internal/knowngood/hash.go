package knowngood

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
)

// HashFile streams path through SHA-256 and returns the base64 digest.
func HashFile(path string) (Hash, error) {
	file, err := os.Open(path)
	if err != nil {
		return Hash{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	return HashReader(file)
}

// HashReader hashes the full contents of r.
func HashReader(r io.Reader) (Hash, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return Hash{}, fmt.Errorf("hash content: %w", err)
	}
	return Hash{
		Algorithm: AlgorithmSHA256,
		Digest:    base64.StdEncoding.EncodeToString(hasher.Sum(nil)),
	}, nil
}
