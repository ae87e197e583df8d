package fingerprint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"songpatch/internal/logging"
	"songpatch/internal/services"
)

// DurationProber measures media duration.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// Options configures the Chromaprint service.
type Options struct {
	FFmpegBinary string
	FPcalcBinary string
	// TempDir holds extracted query windows; empty uses the OS default.
	TempDir string
	Prober  DurationProber
}

// Service fingerprints and matches audio with fpcalc and ffmpeg.
type Service struct {
	ffmpeg  string
	fpcalc  string
	tempDir string
	prober  DurationProber
	logger  *slog.Logger
}

// NewService builds a Service. A nil logger is replaced with a no-op logger.
func NewService(opts Options, logger *slog.Logger) *Service {
	ffmpeg := strings.TrimSpace(opts.FFmpegBinary)
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	fpcalc := strings.TrimSpace(opts.FPcalcBinary)
	if fpcalc == "" {
		fpcalc = "fpcalc"
	}
	return &Service{
		ffmpeg:  ffmpeg,
		fpcalc:  fpcalc,
		tempDir: opts.TempDir,
		prober:  opts.Prober,
		logger:  logging.NewComponentLogger(logger, "fingerprint"),
	}
}

// Fingerprint computes the full-track fingerprint of the master at path.
func (s *Service) Fingerprint(ctx context.Context, path string) (Artifact, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("resolve master path: %w", err)
	}

	output, err := s.runFPcalc(ctx, absPath, 0)
	if err != nil {
		return Artifact{}, err
	}

	duration := output.durationSeconds
	if s.prober != nil {
		probed, err := s.prober.ProbeDuration(ctx, absPath)
		if err != nil {
			return Artifact{}, services.Wrap(services.ErrExternalTool, "fingerprint", "ffprobe", "measure master duration", err)
		}
		duration = probed.Seconds()
	}
	if duration <= 0 {
		return Artifact{}, services.Wrap(services.ErrExternalTool, "fingerprint", "fpcalc", "master duration unavailable", nil)
	}

	fp := rawFingerprint{
		ItemSeconds:     itemSeconds,
		DurationSeconds: duration,
		Values:          output.values,
	}
	s.logger.Debug("master fingerprint computed",
		logging.String("path", absPath),
		logging.Int("items", len(fp.Values)),
		logging.Float64("duration_seconds", duration))

	return Artifact{Data: fp.encode(), DurationSeconds: duration}, nil
}

// Match fingerprints a window of the candidate and aligns it with the master.
func (s *Service) Match(ctx context.Context, req MatchRequest) (MatchResult, error) {
	master, err := decodeArtifact(req.Artifact)
	if err != nil {
		return MatchResult{}, services.Wrap(services.ErrArtifact, "fingerprint", "decode", "", err)
	}
	if req.WindowSeconds <= 0 {
		return MatchResult{}, fmt.Errorf("fingerprint match: window must be positive, got %v", req.WindowSeconds)
	}
	if req.StartOffsetSeconds < 0 {
		return MatchResult{}, fmt.Errorf("fingerprint match: start offset must be >= 0, got %v", req.StartOffsetSeconds)
	}

	absPath, err := filepath.Abs(req.AudioPath)
	if err != nil {
		return MatchResult{}, fmt.Errorf("resolve candidate path: %w", err)
	}

	workDir, err := os.MkdirTemp(s.tempDir, "songpatch-query-")
	if err != nil {
		return MatchResult{}, fmt.Errorf("fingerprint match: temp dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	windowPath := filepath.Join(workDir, "query.wav")
	if err := s.extractWindow(ctx, absPath, req.StartOffsetSeconds, req.WindowSeconds, windowPath); err != nil {
		return MatchResult{}, err
	}

	output, err := s.runFPcalc(ctx, windowPath, int(req.WindowSeconds+0.5))
	if err != nil {
		return MatchResult{}, err
	}

	result := align(master.Values, output.values, master.ItemSeconds)
	s.logger.Debug("query window aligned",
		logging.String("path", absPath),
		logging.Bool("found", result.Found),
		logging.Float64("confidence", result.Confidence),
		logging.Float64("coverage_seconds", result.CoverageLength),
		logging.Float64("query_seconds", result.QueryLength),
		logging.Float64("track_starts_at", result.TrackStartsAt))
	return result, nil
}

func (s *Service) extractWindow(ctx context.Context, path string, start, length float64, outputPath string) error {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-ss", strconv.FormatFloat(start, 'f', 3, 64),
		"-t", strconv.FormatFloat(length, 'f', 3, 64),
		"-i", path,
		"-vn",
		"-ac", "1",
		"-ar", "11025",
		"-c:a", "pcm_s16le",
		outputPath,
	}
	cmd := exec.CommandContext(ctx, s.ffmpeg, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return services.Wrap(services.ErrExternalTool, "fingerprint", "ffmpeg", "extract query window: "+strings.TrimSpace(stderr.String()), err)
	}
	return nil
}

type fpcalcOutput struct {
	durationSeconds float64
	values          []uint32
}

// runFPcalc fingerprints path; length 0 processes the whole file.
func (s *Service) runFPcalc(ctx context.Context, path string, length int) (fpcalcOutput, error) {
	cmd := exec.CommandContext(ctx, s.fpcalc, "-raw", "-length", strconv.Itoa(length), path) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.Output()
	if err != nil {
		hint := strings.TrimSpace(stderr.String())
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			hint = "fpcalc not found; install chromaprint"
		}
		return fpcalcOutput{}, services.Wrap(services.ErrExternalTool, "fingerprint", "fpcalc", hint, err)
	}
	output, err := parseFPcalc(stdout)
	if err != nil {
		return fpcalcOutput{}, services.Wrap(services.ErrExternalTool, "fingerprint", "fpcalc", "parse output", err)
	}
	return output, nil
}

func parseFPcalc(data []byte) (fpcalcOutput, error) {
	var out fpcalcOutput
	found := false
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "DURATION="):
			if v, err := strconv.ParseFloat(strings.TrimPrefix(line, "DURATION="), 64); err == nil {
				out.durationSeconds = v
			}
		case strings.HasPrefix(line, "FINGERPRINT="):
			values, err := parseRawValues(strings.TrimPrefix(line, "FINGERPRINT="))
			if err != nil {
				return fpcalcOutput{}, err
			}
			out.values = values
			found = true
		}
	}
	if !found {
		return fpcalcOutput{}, errors.New("fingerprint missing")
	}
	if len(out.values) == 0 {
		return fpcalcOutput{}, errors.New("fingerprint empty")
	}
	return out, nil
}

// parseRawValues accepts signed or unsigned 32-bit values; older fpcalc
// builds print raw items as signed integers.
func parseRawValues(value string) ([]uint32, error) {
	parts := strings.Split(value, ",")
	out := make([]uint32, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("raw value %q: %w", part, err)
		}
		if v < -(1<<31) || v > (1<<32)-1 {
			return nil, fmt.Errorf("raw value %q out of range", part)
		}
		out = append(out, uint32(v))
	}
	return out, nil
}
