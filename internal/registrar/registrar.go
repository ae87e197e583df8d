package registrar

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"

	"songpatch/internal/fingerprint"
	"songpatch/internal/knowngood"
	"songpatch/internal/logging"
	"songpatch/internal/profile"
	"songpatch/internal/services"
)

// Fingerprinter computes the full-track fingerprint of a master file.
type Fingerprinter interface {
	Fingerprint(ctx context.Context, path string) (fingerprint.Artifact, error)
}

// Registration is everything a master registration produces. Persisting it is
// the caller's job; nothing is written here.
type Registration struct {
	Hash       knowngood.Hash
	Artifact   fingerprint.Artifact
	DurationMs int64
	// Profile is the updated profile. The input profile is never modified.
	Profile profile.MasterProfile
	// Changed reports whether Profile differs from the input profile.
	Changed bool
}

// Registrar produces Registrations.
type Registrar struct {
	fingerprinter Fingerprinter
	hashFile      func(string) (knowngood.Hash, error)
	logger        *slog.Logger
}

// New builds a Registrar.
func New(fp Fingerprinter, logger *slog.Logger) *Registrar {
	return &Registrar{
		fingerprinter: fp,
		hashFile:      knowngood.HashFile,
		logger:        logging.NewComponentLogger(logger, "registrar"),
	}
}

// Register hashes and fingerprints the master at path. Any failure returns an
// error and no Registration.
func (r *Registrar) Register(ctx context.Context, path string, current profile.MasterProfile) (Registration, error) {
	logger := logging.WithContext(ctx, r.logger)

	hash, err := r.hashFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Registration{}, services.Wrap(services.ErrNotFound, "register", "hash master", path, err)
		}
		return Registration{}, fmt.Errorf("register: hash master %s: %w", path, err)
	}

	artifact, err := r.fingerprinter.Fingerprint(ctx, path)
	if err != nil {
		return Registration{}, err
	}
	durationMs := int64(math.Round(artifact.DurationSeconds * 1000))

	next := current
	next.KnownGoodHashes = current.KnownGoodHashes.Clone()
	added := next.KnownGoodHashes.Add(hash)
	next.DeclaredLengthMs = durationMs
	changed := added || durationMs != current.DeclaredLengthMs

	logger.Info("master registered",
		logging.String("path", path),
		logging.String("digest", hash.Digest),
		logging.Bool("new_hash", added),
		logging.Int64("duration_ms", durationMs),
		logging.Int("fingerprint_bytes", len(artifact.Data)))

	return Registration{
		Hash:       hash,
		Artifact:   artifact,
		DurationMs: durationMs,
		Profile:    next,
		Changed:    changed,
	}, nil
}
