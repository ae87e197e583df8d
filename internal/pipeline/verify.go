package pipeline

import (
	"context"
	"time"

	"songpatch/internal/history"
	"songpatch/internal/logging"
	"songpatch/internal/preflight"
	"songpatch/internal/services"
	"songpatch/internal/validation"
)

// VerifyResult reports a validation-only run.
type VerifyResult struct {
	RunID   string             `json:"run_id"`
	Input   string             `json:"input"`
	Outcome validation.Outcome `json:"outcome"`
	Summary string             `json:"summary"`
}

// Verify validates input against the registered master without writing
// anything. A rejected candidate returns the result together with an error
// wrapping services.ErrRejected.
func (p *Patcher) Verify(ctx context.Context, input string) (result VerifyResult, err error) {
	ctx, runID := p.begin(ctx, history.KindVerify)
	started := time.Now()
	result = VerifyResult{RunID: runID, Input: input}
	defer func() {
		p.record(ctx, history.Entry{
			Kind:    history.KindVerify,
			File:    result.Input,
			Digest:  result.Outcome.Digest,
			Outcome: string(result.Outcome.Kind),
			Detail:  result.Summary,
		}, started, err)
	}()

	result.Input, err = absPath(input)
	if err != nil {
		return result, err
	}
	if check := preflight.CheckReadable("Input", result.Input); !check.Passed {
		return result, services.Wrap(services.ErrNotFound, "verify", "open input", check.Detail, nil)
	}

	doc, err := p.store.Require(ctx)
	if err != nil {
		return result, err
	}

	outcome, err := p.validator.Validate(ctx, result.Input, doc.Profile(), p.store)
	if err != nil {
		return result, err
	}
	result.Outcome = outcome
	result.Summary = outcome.Summary()

	logger := logging.WithContext(ctx, p.logger)
	if !outcome.Accepted() {
		logger.Info("candidate rejected",
			logging.String("input", result.Input),
			logging.String("outcome", string(outcome.Kind)),
			logging.String("reason", result.Summary))
		return result, services.Wrap(services.ErrRejected, "verify", "", result.Summary, nil)
	}
	logger.Info("candidate accepted",
		logging.String("input", result.Input),
		logging.String("outcome", string(outcome.Kind)))
	return result, nil
}
