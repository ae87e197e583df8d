package songconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"songpatch/internal/logging"
	"songpatch/internal/registrar"
	"songpatch/internal/services"
)

// File names inside a song directory.
const (
	DocumentFile    = "audio.json"
	FingerprintFile = "fingerprint.bin"
	lockFile        = ".songpatch.lock"
)

const lockRetryDelay = 50 * time.Millisecond

// Store reads and writes the song configuration in one directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore returns a store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	if dir == "" {
		dir = "."
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return &Store{dir: dir, logger: logging.NewComponentLogger(logger, "songconfig")}
}

// Dir returns the song directory.
func (s *Store) Dir() string { return s.dir }

// DocumentPath returns the audio.json location.
func (s *Store) DocumentPath() string { return filepath.Join(s.dir, DocumentFile) }

// FingerprintPath returns the fingerprint.bin location.
func (s *Store) FingerprintPath() string { return filepath.Join(s.dir, FingerprintFile) }

// Load reads audio.json. A missing file yields DefaultDocument and exists=false.
func (s *Store) Load(ctx context.Context) (Document, bool, error) {
	path := s.DocumentPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logging.WithContext(ctx, s.logger).Debug("no song config found; using defaults", logging.String("path", path))
		return DefaultDocument(), false, nil
	}
	if err != nil {
		return Document{}, false, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Document{}, true, services.Wrap(services.ErrConfiguration, "songconfig", "load", path, err)
	}
	return doc, true, nil
}

// Require is Load for operations that cannot run without an existing document.
func (s *Store) Require(ctx context.Context) (Document, error) {
	doc, exists, err := s.Load(ctx)
	if err != nil {
		return Document{}, err
	}
	if !exists {
		return Document{}, services.Wrap(services.ErrNotFound, "songconfig", "load",
			fmt.Sprintf("no %s in %s; register a master with 'songpatch fingerprint' first", DocumentFile, s.dir), nil)
	}
	return doc, nil
}

// LoadFingerprint reads fingerprint.bin.
func (s *Store) LoadFingerprint(context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.FingerprintPath())
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", FingerprintFile, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", s.FingerprintPath())
	}
	return data, nil
}

// Commit persists a registration on top of base and returns the document that
// is now on disk. The fingerprint is always replaced; audio.json is rewritten
// only when the registration changed the profile. Either both files are
// updated or neither is.
func (s *Store) Commit(ctx context.Context, base Document, reg registrar.Registration) (Document, error) {
	logger := logging.WithContext(ctx, s.logger)
	doc := base.WithProfile(reg.Profile)
	if err := doc.Validate(); err != nil {
		return Document{}, services.Wrap(services.ErrValidation, "songconfig", "commit", "", err)
	}
	if len(reg.Artifact.Data) == 0 {
		return Document{}, services.Wrap(services.ErrArtifact, "songconfig", "commit", "empty fingerprint artifact", nil)
	}

	var docData []byte
	if reg.Changed {
		encoded, err := doc.Encode()
		if err != nil {
			return Document{}, err
		}
		docData = encoded
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Document{}, fmt.Errorf("create song dir: %w", err)
	}
	lock := flock.New(filepath.Join(s.dir, lockFile))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return Document{}, fmt.Errorf("acquire song config lock: %w", err)
	}
	if !locked {
		return Document{}, errors.New("acquire song config lock: busy")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release song config lock", logging.Error(err))
		}
	}()

	fpTemp, err := writeTemp(s.dir, FingerprintFile, reg.Artifact.Data)
	if err != nil {
		return Document{}, err
	}
	defer os.Remove(fpTemp)

	var docTemp string
	if docData != nil {
		docTemp, err = writeTemp(s.dir, DocumentFile, docData)
		if err != nil {
			return Document{}, err
		}
		defer os.Remove(docTemp)
	}

	previous, hadPrevious, err := readOptional(s.FingerprintPath())
	if err != nil {
		return Document{}, err
	}

	if err := os.Rename(fpTemp, s.FingerprintPath()); err != nil {
		return Document{}, fmt.Errorf("replace %s: %w", FingerprintFile, err)
	}
	if docTemp != "" {
		if err := os.Rename(docTemp, s.DocumentPath()); err != nil {
			if rbErr := s.restoreFingerprint(previous, hadPrevious); rbErr != nil {
				logging.ErrorWithContext(logger, "fingerprint rollback failed; song config may be inconsistent", "commit_rollback_failed",
					logging.String(logging.FieldErrorHint, "re-run songpatch fingerprint"),
					logging.Error(rbErr))
			}
			return Document{}, fmt.Errorf("replace %s: %w", DocumentFile, err)
		}
		logger.Info("song config saved", logging.String("path", s.DocumentPath()))
	} else {
		logger.Debug("song config unchanged", logging.String("path", s.DocumentPath()))
	}
	logger.Info("fingerprint saved", logging.String("path", s.FingerprintPath()), logging.Int("bytes", len(reg.Artifact.Data)))
	return doc, nil
}

func (s *Store) restoreFingerprint(previous []byte, hadPrevious bool) error {
	if !hadPrevious {
		return os.Remove(s.FingerprintPath())
	}
	tmp, err := writeTemp(s.dir, FingerprintFile, previous)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, s.FingerprintPath()); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func writeTemp(dir, name string, data []byte) (string, error) {
	file, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp %s: %w", name, err)
	}
	path := file.Name()
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("write temp %s: %w", name, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("sync temp %s: %w", name, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp %s: %w", name, err)
	}
	if err := os.Chmod(path, 0o644); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("chmod temp %s: %w", name, err)
	}
	return path, nil
}

func readOptional(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	return data, true, nil
}
