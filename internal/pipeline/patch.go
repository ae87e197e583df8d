package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"songpatch/internal/fileutil"
	"songpatch/internal/history"
	"songpatch/internal/logging"
	"songpatch/internal/media/transcode"
	"songpatch/internal/patch"
	"songpatch/internal/preflight"
	"songpatch/internal/services"
	"songpatch/internal/validation"
)

// Action describes what a successful patch run did to produce the output.
type Action string

const (
	ActionTranscoded Action = "transcoded"
	ActionCopied     Action = "copied"
	// ActionUnchanged means the input already is the output.
	ActionUnchanged Action = "unchanged"
)

// PatchRequest names the candidate and, optionally, the output path.
type PatchRequest struct {
	Input  string
	Output string
}

// PatchResult reports a patch run.
type PatchResult struct {
	RunID   string             `json:"run_id"`
	Input   string             `json:"input"`
	Output  string             `json:"output"`
	Outcome validation.Outcome `json:"outcome"`
	Filter  string             `json:"filter,omitempty"`
	Action  Action             `json:"action,omitempty"`
}

// Patch validates the candidate and writes the patched output. Rejected
// candidates produce no output and an error wrapping services.ErrRejected.
func (p *Patcher) Patch(ctx context.Context, req PatchRequest) (result PatchResult, err error) {
	ctx, runID := p.begin(ctx, history.KindPatch)
	started := time.Now()
	result = PatchResult{RunID: runID, Input: req.Input}
	defer func() {
		detail := result.Outcome.Summary()
		if result.Action != "" {
			detail = fmt.Sprintf("%s; %s %s", detail, result.Action, result.Output)
		}
		p.record(ctx, history.Entry{
			Kind:    history.KindPatch,
			File:    result.Input,
			Digest:  result.Outcome.Digest,
			Outcome: string(result.Outcome.Kind),
			Detail:  detail,
		}, started, err)
	}()
	logger := logging.WithContext(ctx, p.logger)

	if result.Input, err = absPath(req.Input); err != nil {
		return result, err
	}
	if check := preflight.CheckReadable("Input", result.Input); !check.Passed {
		return result, services.Wrap(services.ErrNotFound, "patch", "open input", check.Detail, nil)
	}

	doc, err := p.store.Require(ctx)
	if err != nil {
		return result, err
	}
	spec := doc.PatchSpec()

	if result.Output, err = p.resolveOutput(result.Input, req.Output); err != nil {
		return result, err
	}
	passthrough := spec.IsEmpty() && strings.EqualFold(filepath.Ext(result.Input), p.opts.Extension)
	if err := p.checkOutput(result.Input, result.Output, passthrough); err != nil {
		return result, err
	}

	outcome, err := p.validator.Validate(ctx, result.Input, doc.Profile(), p.store)
	if err != nil {
		return result, err
	}
	result.Outcome = outcome
	if !outcome.Accepted() {
		logger.Info("candidate rejected; no output written",
			logging.String("input", result.Input),
			logging.String("outcome", string(outcome.Kind)),
			logging.String("reason", outcome.Summary()))
		return result, services.Wrap(services.ErrRejected, "patch", "", outcome.Summary(), nil)
	}

	graph := patch.Compile(spec)
	result.Filter = graph.String()

	switch {
	case passthrough && result.Output == result.Input:
		result.Action = ActionUnchanged
		logger.Info("input already matches the target format; nothing to write",
			logging.String("input", result.Input))
	case passthrough:
		if err := fileutil.CopyFileVerified(result.Input, result.Output, p.opts.Overwrite); err != nil {
			if errors.Is(err, fileutil.ErrDestinationExists) {
				return result, services.Wrap(services.ErrValidation, "patch", "copy", "output exists; enable output.overwrite to replace it", err)
			}
			return result, fmt.Errorf("copy %s: %w", result.Input, err)
		}
		result.Action = ActionCopied
		logger.Info("input copied without re-encoding",
			logging.String("input", result.Input),
			logging.String("output", result.Output))
	default:
		if err := p.transcoder.Transcode(ctx, transcode.Request{Input: result.Input, Output: result.Output, Graph: graph}); err != nil {
			return result, err
		}
		result.Action = ActionTranscoded
	}

	logger.Info("patch complete",
		logging.String(logging.FieldEventType, "patch_complete"),
		logging.String("output", result.Output),
		logging.String("action", string(result.Action)),
		logging.Int("filters", graph.Len()),
		logging.Duration("elapsed", time.Since(started)))
	return result, nil
}

func (p *Patcher) resolveOutput(input, output string) (string, error) {
	if strings.TrimSpace(output) == "" {
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		output = filepath.Join(filepath.Dir(input), base+p.opts.Extension)
	}
	return absPath(output)
}

// checkOutput rejects outputs that would clobber the input or an existing
// file, and output directories that cannot be written.
func (p *Patcher) checkOutput(input, output string, passthrough bool) error {
	if output == input {
		if passthrough {
			return nil
		}
		return services.Wrap(services.ErrValidation, "patch", "output", "output would overwrite the input; pass a different output path", nil)
	}
	if check := preflight.CheckDirectoryAccess("Output directory", filepath.Dir(output)); !check.Passed {
		return services.Wrap(services.ErrValidation, "patch", "output", check.Detail, nil)
	}
	if p.opts.Overwrite {
		return nil
	}
	if _, err := os.Stat(output); err == nil {
		return services.Wrap(services.ErrValidation, "patch", "output",
			fmt.Sprintf("%s exists; enable output.overwrite to replace it", output), nil)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat output: %w", err)
	}
	return nil
}

func absPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", services.Wrap(services.ErrValidation, "", "", "path is required", nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}
