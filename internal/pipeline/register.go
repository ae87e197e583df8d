package pipeline

import (
	"context"
	"time"

	"songpatch/internal/history"
	"songpatch/internal/logging"
	"songpatch/internal/media/tags"
	"songpatch/internal/preflight"
	"songpatch/internal/services"
)

// RegisterResult reports a master registration.
type RegisterResult struct {
	RunID           string `json:"run_id"`
	Master          string `json:"master"`
	Digest          string `json:"digest"`
	DurationMs      int64  `json:"duration_ms"`
	KnownGoodHashes int    `json:"known_good_hashes"`
	Changed         bool   `json:"changed"`
	DocumentPath    string `json:"document_path"`
	FingerprintPath string `json:"fingerprint_path"`
	// Tags is nil when the master carries no readable metadata.
	Tags *tags.Info `json:"tags,omitempty"`
}

// Register fingerprints master and stores it as the reference for the song
// directory. A missing audio.json starts from defaults; the fingerprint and
// document are committed together.
func (p *Patcher) Register(ctx context.Context, master string) (result RegisterResult, err error) {
	ctx, runID := p.begin(ctx, history.KindRegister)
	started := time.Now()
	result = RegisterResult{RunID: runID, Master: master}
	defer func() {
		detail := ""
		if err == nil {
			detail = "registered"
			if !result.Changed {
				detail = "fingerprint refreshed; audio.json unchanged"
			}
		}
		p.record(ctx, history.Entry{
			Kind:    history.KindRegister,
			File:    result.Master,
			Digest:  result.Digest,
			Outcome: "registered",
			Detail:  detail,
		}, started, err)
	}()

	if result.Master, err = absPath(master); err != nil {
		return result, err
	}
	if check := preflight.CheckReadable("Master", result.Master); !check.Passed {
		return result, services.Wrap(services.ErrNotFound, "register", "open master", check.Detail, nil)
	}
	if check := preflight.CheckDirectoryAccess("Song directory", p.store.Dir()); !check.Passed {
		return result, services.Wrap(services.ErrConfiguration, "register", "song directory", check.Detail, nil)
	}

	base, exists, err := p.store.Load(ctx)
	if err != nil {
		return result, err
	}

	reg, err := p.registrar.Register(ctx, result.Master, base.Profile())
	if err != nil {
		return result, err
	}
	doc, err := p.store.Commit(ctx, base, reg)
	if err != nil {
		return result, err
	}

	result.Digest = reg.Hash.Digest
	result.DurationMs = reg.DurationMs
	result.KnownGoodHashes = len(doc.KnownGoodHashes)
	result.Changed = reg.Changed
	result.DocumentPath = p.store.DocumentPath()
	result.FingerprintPath = p.store.FingerprintPath()
	result.Tags = p.masterTags(ctx, result.Master)

	logging.WithContext(ctx, p.logger).Info("master registered",
		logging.String(logging.FieldEventType, "register_complete"),
		logging.String("master", result.Master),
		logging.Bool("created", !exists),
		logging.Bool("changed", result.Changed),
		logging.Int("known_good_hashes", result.KnownGoodHashes))
	return result, nil
}

func (p *Patcher) masterTags(ctx context.Context, path string) *tags.Info {
	info, err := p.readTags(path)
	if err != nil {
		logging.WithContext(ctx, p.logger).Debug("master tags unavailable", logging.Error(err))
		return nil
	}
	if info.Empty() {
		return nil
	}
	return &info
}
