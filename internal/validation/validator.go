package validation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"songpatch/internal/fingerprint"
	"songpatch/internal/knowngood"
	"songpatch/internal/logging"
	"songpatch/internal/profile"
	"songpatch/internal/services"
)

const (
	// LengthToleranceMs is the largest duration difference still considered
	// the same recording.
	LengthToleranceMs = 3500
	// AnalysisWindowSeconds is the length of the fingerprint query window.
	AnalysisWindowSeconds = 10.0
)

// Stage names used in logs and context.
const (
	StageHash        = "hash"
	StageLength      = "length"
	StageFingerprint = "fingerprint"
)

// DurationProber measures media duration.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// Matcher compares a window of a candidate with the master fingerprint.
type Matcher interface {
	Match(ctx context.Context, req fingerprint.MatchRequest) (fingerprint.MatchResult, error)
}

// ArtifactLoader supplies the master fingerprint blob. It is only called
// when the fingerprint stage runs.
type ArtifactLoader interface {
	LoadFingerprint(ctx context.Context) ([]byte, error)
}

// StaticArtifact is an ArtifactLoader over an in-memory blob.
type StaticArtifact []byte

// LoadFingerprint returns the blob.
func (a StaticArtifact) LoadFingerprint(context.Context) ([]byte, error) {
	return a, nil
}

// Validator sequences the hash, length, and fingerprint stages.
type Validator struct {
	prober  DurationProber
	matcher Matcher
	policy  Policy
	logger  *slog.Logger
}

// New builds a Validator using DefaultPolicy.
func New(prober DurationProber, matcher Matcher, logger *slog.Logger) *Validator {
	return &Validator{
		prober:  prober,
		matcher: matcher,
		policy:  DefaultPolicy(),
		logger:  logging.NewComponentLogger(logger, "validation"),
	}
}

// Validate classifies the candidate at path against master. A rejection is
// reported through the Outcome; errors are reserved for failures that stop
// validation (probe failures, missing or unreadable fingerprint artifacts,
// fingerprint service failures).
func (v *Validator) Validate(ctx context.Context, path string, master profile.MasterProfile, artifacts ArtifactLoader) (Outcome, error) {
	if outcome, ok := v.hashStage(ctx, path, master); ok {
		return outcome, nil
	}

	if master.LengthCheckEnabled() {
		outcome, decided, err := v.lengthStage(ctx, path, master)
		if err != nil {
			return Outcome{}, err
		}
		if decided {
			return outcome, nil
		}
	}

	return v.fingerprintStage(ctx, path, master, artifacts)
}

func (v *Validator) hashStage(ctx context.Context, path string, master profile.MasterProfile) (Outcome, bool) {
	if master.KnownGoodHashes.Empty() {
		return Outcome{}, false
	}
	logger := logging.WithContext(services.WithStage(ctx, StageHash), v.logger)

	hash, err := knowngood.HashFile(path)
	if err != nil {
		logging.WarnWithContext(logger, "hash check inconclusive; continuing with content checks", "hash_io_failed",
			logging.String("path", path),
			logging.Alert("hash_unreadable"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the file is readable"),
			logging.String(logging.FieldImpact, "validation falls back to length and fingerprint checks"),
		)
		return Outcome{}, false
	}

	if master.KnownGoodHashes.Contains(hash.Digest) {
		logger.Info("known-good hash matched",
			logging.Args(append(logging.DecisionAttrs(StageHash, "accepted", "digest in known-good set"),
				logging.String("digest", hash.Digest))...)...)
		return Outcome{Kind: KindHashAccepted, Digest: hash.Digest}, true
	}
	logger.Debug("hash not in known-good set",
		logging.String("digest", hash.Digest),
		logging.Int("known_hashes", master.KnownGoodHashes.Len()))
	return Outcome{}, false
}

func (v *Validator) lengthStage(ctx context.Context, path string, master profile.MasterProfile) (Outcome, bool, error) {
	logger := logging.WithContext(services.WithStage(ctx, StageLength), v.logger)

	duration, err := v.prober.ProbeDuration(ctx, path)
	if err != nil {
		return Outcome{}, false, services.Wrap(services.ErrExternalTool, StageLength, "probe duration", path, err)
	}
	actualMs := duration.Round(time.Millisecond).Milliseconds()
	diff := actualMs - master.DeclaredLengthMs
	if diff < 0 {
		diff = -diff
	}

	if diff > LengthToleranceMs {
		logger.Info("length check rejected candidate",
			logging.Args(append(logging.DecisionAttrs(StageLength, "rejected", "duration outside tolerance"),
				logging.Int64("expected_ms", master.DeclaredLengthMs),
				logging.Int64("actual_ms", actualMs),
				logging.Int64("diff_ms", diff))...)...)
		return Outcome{Kind: KindLengthRejected, ExpectedMs: master.DeclaredLengthMs, ActualMs: actualMs}, true, nil
	}
	logger.Debug("length within tolerance",
		logging.Int64("expected_ms", master.DeclaredLengthMs),
		logging.Int64("actual_ms", actualMs))
	return Outcome{}, false, nil
}

func (v *Validator) fingerprintStage(ctx context.Context, path string, master profile.MasterProfile, artifacts ArtifactLoader) (Outcome, error) {
	ctx = services.WithStage(ctx, StageFingerprint)
	logger := logging.WithContext(ctx, v.logger)

	if artifacts == nil {
		return Outcome{}, services.Wrap(services.ErrArtifact, StageFingerprint, "load artifact", "no fingerprint artifact available", nil)
	}
	blob, err := artifacts.LoadFingerprint(ctx)
	if err != nil {
		return Outcome{}, services.Wrap(services.ErrArtifact, StageFingerprint, "load artifact", "", err)
	}

	match, err := v.matcher.Match(ctx, fingerprint.MatchRequest{
		AudioPath:          path,
		Artifact:           blob,
		WindowSeconds:      AnalysisWindowSeconds,
		StartOffsetSeconds: master.FingerprintStartOffsetSec,
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("fingerprint stage: %w", err)
	}

	decision := v.policy.Evaluate(match, master.FingerprintStartOffsetSec)
	kind := KindFingerprintRejected
	result := "rejected"
	if decision.Accepted {
		kind = KindFingerprintAccepted
		result = "accepted"
	}
	logger.Info("fingerprint decision",
		logging.Args(append(logging.DecisionAttrs(StageFingerprint, result, decision.Reason()),
			logging.Bool("found", match.Found),
			logging.Float64("confidence", round3(match.Confidence)),
			logging.Float64("coverage_seconds", round3(match.CoverageLength)),
			logging.Float64("query_seconds", round3(match.QueryLength)),
			logging.Float64("track_starts_at", round3(match.TrackStartsAt)))...)...)

	return Outcome{Kind: kind, Match: &match, Decision: &decision}, nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
