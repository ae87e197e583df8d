// Package fileutil holds file copy helpers shared by the pipeline.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrDestinationExists is returned when dst exists and overwrite is false.
var ErrDestinationExists = errors.New("destination exists")

// CopyFileVerified copies src to dst through a temp file in dst's directory,
// re-reads the copy to confirm size and SHA-256, and only then moves it into
// place. Without overwrite an existing dst is left untouched and
// ErrDestinationExists is returned.
func CopyFileVerified(src, dst string, overwrite bool) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !overwrite {
		if _, err := os.Lstat(dst); err == nil {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat destination: %w", err)
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*.part")
	if err != nil {
		return fmt.Errorf("create temp copy: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	srcHasher := sha256.New()
	written, err := io.Copy(tmp, io.TeeReader(in, srcHasher))
	if err != nil {
		tmp.Close()
		return fmt.Errorf("copy: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp copy: %w", err)
	}
	if written != srcInfo.Size() {
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}

	copied, err := hashFile(tmpPath)
	if err != nil {
		return err
	}
	if !bytes.Equal(srcHasher.Sum(nil), copied) {
		return errors.New("copy hash mismatch: file corrupted during copy")
	}
	if err := os.Chmod(tmpPath, srcInfo.Mode().Perm()|0o600); err != nil {
		return fmt.Errorf("chmod copy: %w", err)
	}

	if overwrite {
		return os.Rename(tmpPath, dst)
	}
	// Link fails if dst appeared since the check above.
	if err := os.Link(tmpPath, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
		}
		return fmt.Errorf("place copy: %w", err)
	}
	return nil
}

func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}
	return h.Sum(nil), nil
}
