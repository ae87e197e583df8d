package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"songpatch/internal/logging"
	"songpatch/internal/patch"
	"songpatch/internal/services"
)

// Options configures the encoder.
type Options struct {
	Binary    string
	Codec     string
	Quality   float64
	Overwrite bool
}

// Request describes one transcode. A nil Graph re-encodes without filtering.
type Request struct {
	Input  string
	Output string
	Graph  *patch.Graph
}

// Transcoder wraps the ffmpeg binary.
type Transcoder struct {
	opts   Options
	logger *slog.Logger
}

// New builds a Transcoder; empty Binary and Codec fall back to ffmpeg and libvorbis.
func New(opts Options, logger *slog.Logger) *Transcoder {
	opts.Binary = strings.TrimSpace(opts.Binary)
	if opts.Binary == "" {
		opts.Binary = "ffmpeg"
	}
	opts.Codec = strings.TrimSpace(opts.Codec)
	if opts.Codec == "" {
		opts.Codec = "libvorbis"
	}
	return &Transcoder{opts: opts, logger: logging.NewComponentLogger(logger, "transcode")}
}

// Transcode runs ffmpeg for req and waits for it to finish.
func (t *Transcoder) Transcode(ctx context.Context, req Request) error {
	args, err := t.Args(req)
	if err != nil {
		return err
	}
	logger := logging.WithContext(ctx, t.logger)
	logger.Debug("running ffmpeg", logging.String("args", strings.Join(args, " ")))

	cmd := exec.CommandContext(ctx, t.opts.Binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		hint := strings.TrimSpace(stderr.String())
		if errors.Is(err, exec.ErrNotFound) {
			hint = "ffmpeg not found; install ffmpeg or set tools.ffmpeg"
		}
		return services.Wrap(services.ErrExternalTool, "transcode", "ffmpeg", hint, err)
	}

	logger.Info("audio written",
		logging.String("output", args[len(args)-1]),
		logging.Int("filters", req.Graph.Len()))
	return nil
}

// Args returns the ffmpeg argument list for req. Paths are made absolute so
// the command does not depend on the working directory.
func (t *Transcoder) Args(req Request) ([]string, error) {
	if strings.TrimSpace(req.Input) == "" || strings.TrimSpace(req.Output) == "" {
		return nil, services.Wrap(services.ErrValidation, "transcode", "args", "input and output are required", nil)
	}
	input, err := filepath.Abs(req.Input)
	if err != nil {
		return nil, fmt.Errorf("resolve input path: %w", err)
	}
	output, err := filepath.Abs(req.Output)
	if err != nil {
		return nil, fmt.Errorf("resolve output path: %w", err)
	}
	if input == output {
		return nil, services.Wrap(services.ErrValidation, "transcode", "args", "output would overwrite the input", nil)
	}

	overwrite := "-n"
	if t.opts.Overwrite {
		overwrite = "-y"
	}
	args := []string{"-hide_banner", "-loglevel", "error", overwrite, "-i", input, "-vn"}
	if req.Graph.Len() > 0 {
		args = append(args, "-af", req.Graph.String())
	}
	args = append(args, "-c:a", t.opts.Codec, "-q:a", strconv.FormatFloat(t.opts.Quality, 'f', -1, 64))
	if strings.EqualFold(filepath.Ext(output), ".egg") {
		// Beat Saber's .egg is an Ogg container under another name.
		args = append(args, "-f", "ogg")
	}
	args = append(args, output)
	return args, nil
}
