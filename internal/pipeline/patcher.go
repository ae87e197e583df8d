package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"songpatch/internal/config"
	"songpatch/internal/fingerprint"
	"songpatch/internal/history"
	"songpatch/internal/logging"
	"songpatch/internal/media/ffprobe"
	"songpatch/internal/media/tags"
	"songpatch/internal/media/transcode"
	"songpatch/internal/profile"
	"songpatch/internal/registrar"
	"songpatch/internal/services"
	"songpatch/internal/songconfig"
	"songpatch/internal/validation"
)

// Validator classifies a candidate file against a master profile.
type Validator interface {
	Validate(ctx context.Context, path string, master profile.MasterProfile, artifacts validation.ArtifactLoader) (validation.Outcome, error)
}

// Registrar builds a registration for a master file.
type Registrar interface {
	Register(ctx context.Context, path string, current profile.MasterProfile) (registrar.Registration, error)
}

// Transcoder writes the patched output.
type Transcoder interface {
	Transcode(ctx context.Context, req transcode.Request) error
}

// Recorder persists run history.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (history.Entry, error)
}

// Deps are the components a Patcher drives. History may be nil.
type Deps struct {
	Store      *songconfig.Store
	Validator  Validator
	Registrar  Registrar
	Transcoder Transcoder
	History    Recorder
}

// Options control output naming and overwrite behavior.
type Options struct {
	// Extension is the output extension including the dot, e.g. ".ogg".
	Extension string
	Overwrite bool
}

// Patcher runs patch, verify, and register operations for one song directory.
type Patcher struct {
	store      *songconfig.Store
	validator  Validator
	registrar  Registrar
	transcoder Transcoder
	history    Recorder
	opts       Options
	logger     *slog.Logger
	newRunID   func() string
	readTags   func(string) (tags.Info, error)
}

// New builds a Patcher from explicit components.
func New(deps Deps, opts Options, logger *slog.Logger) *Patcher {
	if strings.TrimSpace(opts.Extension) == "" {
		opts.Extension = ".ogg"
	}
	return &Patcher{
		store:      deps.Store,
		validator:  deps.Validator,
		registrar:  deps.Registrar,
		transcoder: deps.Transcoder,
		history:    deps.History,
		opts:       opts,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		newRunID:   func() string { return uuid.NewString() },
		readTags:   tags.Read,
	}
}

// NewFromConfig wires the ffprobe, fpcalc, and ffmpeg adapters described by
// cfg for the song directory songDir.
func NewFromConfig(cfg *config.Config, songDir string, recorder Recorder, logger *slog.Logger) *Patcher {
	prober := ffprobe.Prober{Binary: cfg.FFprobeBinary()}
	fp := fingerprint.NewService(fingerprint.Options{
		FFmpegBinary: cfg.FFmpegBinary(),
		FPcalcBinary: cfg.FPcalcBinary(),
		Prober:       prober,
	}, logger)
	return New(Deps{
		Store:     songconfig.NewStore(songDir, logger),
		Validator: validation.New(prober, fp, logger),
		Registrar: registrar.New(fp, logger),
		Transcoder: transcode.New(transcode.Options{
			Binary:    cfg.FFmpegBinary(),
			Codec:     cfg.Output.Codec,
			Quality:   cfg.Output.Quality,
			Overwrite: cfg.Output.Overwrite,
		}, logger),
		History: recorder,
	}, Options{Extension: cfg.Output.Extension, Overwrite: cfg.Output.Overwrite}, logger)
}

// Store returns the song configuration store.
func (p *Patcher) Store() *songconfig.Store { return p.store }

func (p *Patcher) begin(ctx context.Context, kind history.Kind) (context.Context, string) {
	runID := p.newRunID()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithKind(ctx, string(kind))
	return ctx, runID
}

// record writes a history entry. Failures are logged and never change the
// run's result.
func (p *Patcher) record(ctx context.Context, entry history.Entry, started time.Time, runErr error) {
	if p.history == nil {
		return
	}
	entry.RunID, _ = services.RunIDFromContext(ctx)
	entry.Elapsed = time.Since(started)
	if runErr != nil && !errors.Is(runErr, services.ErrRejected) {
		entry.Outcome = "error"
		entry.Detail = runErr.Error()
	}
	if _, err := p.history.Record(context.WithoutCancel(ctx), entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "failed to record run history", "history_write_failed",
			logging.String(logging.FieldErrorHint, "check state_dir permissions or set history.enabled = false"),
			logging.String(logging.FieldImpact, "run is missing from songpatch history"),
			logging.Error(err))
	}
}
