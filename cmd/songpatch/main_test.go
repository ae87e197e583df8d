package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"songpatch/internal/history"
	"songpatch/internal/knowngood"
	"songpatch/internal/patch"
	"songpatch/internal/services"
	"songpatch/internal/songconfig"
	"songpatch/internal/testsupport"
)

func (e *cliTestEnv) writeCandidate(t *testing.T, name, content string) (string, knowngood.Hash) {
	t.Helper()
	path := filepath.Join(e.workDir, name)
	testsupport.WriteContent(t, path, content)
	hash, err := knowngood.HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	return path, hash
}

func (e *cliTestEnv) writeSong(t *testing.T, lengthMs int64, spec *patch.Spec, hashes ...knowngood.Hash) {
	t.Helper()
	doc := songconfig.DefaultDocument()
	doc.LengthMs = lengthMs
	doc.Patches = spec
	for _, h := range hashes {
		doc.KnownGoodHashes = append(doc.KnownGoodHashes, songconfig.KnownGoodHash{Type: h.Algorithm, Hash: h.Digest})
	}
	testsupport.WriteSongDir(t, e.songDir, doc, []byte("unused"))
}

func TestVerifyKnownGoodHash(t *testing.T) {
	env := setupCLITestEnv(t)
	input, hash := env.writeCandidate(t, "song.mp3", "the master")
	env.writeSong(t, 180000, nil, hash)

	out, err := env.run(t, "verify", "-i", input)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	requireContains(t, out, "ACCEPTED")
	requireContains(t, out, "known-good hash")
}

func TestVerifyLengthRejected(t *testing.T) {
	env := setupCLITestEnv(t)
	input, _ := env.writeCandidate(t, "song.mp3", "some other file")
	env.writeSong(t, 180000, nil)

	out, err := env.run(t, "verify", "-i", input)
	if !errors.Is(err, services.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if code := services.ExitCode(err); code != services.ExitRejected {
		t.Fatalf("exit code = %d, want %d", code, services.ExitRejected)
	}
	requireContains(t, out, "REJECTED")
	requireContains(t, out, "100.0s")
}

func TestPatchTranscodesWithFilter(t *testing.T) {
	env := setupCLITestEnv(t)
	input, hash := env.writeCandidate(t, "song.mp3", "the master")
	env.writeSong(t, 0, &patch.Spec{Trim: &patch.Trim{StartMs: patch.Ms(500)}}, hash)

	out, err := env.run(t, "patch", "-i", input)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	requireContains(t, out, "Filter: atrim=start=500ms")

	data, err := os.ReadFile(filepath.Join(env.workDir, "song.ogg"))
	if err != nil || string(data) != "encoded" {
		t.Fatalf("output = %q, %v", data, err)
	}
}

func TestPatchJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	input, hash := env.writeCandidate(t, "song.ogg", "the master")
	env.writeSong(t, 0, nil, hash)
	output := filepath.Join(env.workDir, "copy.ogg")

	out, err := env.run(t, "--json", "patch", "-i", input, "-o", output)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	var result struct {
		Output  string `json:"output"`
		Action  string `json:"action"`
		Outcome struct {
			Kind string `json:"kind"`
		} `json:"outcome"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if result.Output != output || result.Action != "copied" || result.Outcome.Kind != "hash_accepted" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestPatchRequiresInput(t *testing.T) {
	env := setupCLITestEnv(t)
	_, err := env.run(t, "patch")
	if services.ExitCode(err) != services.ExitUsage {
		t.Fatalf("expected usage exit code, got %v (%d)", err, services.ExitCode(err))
	}
}

func TestPatchWithoutSongConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	input, _ := env.writeCandidate(t, "song.mp3", "x")
	_, err := env.run(t, "patch", "-i", input)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFingerprintRegistersMaster(t *testing.T) {
	env := setupCLITestEnv(t)
	master, hash := env.writeCandidate(t, "master.ogg", "the master")

	out, err := env.run(t, "fingerprint", "-m", master)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	requireContains(t, out, hash.Digest)
	requireContains(t, out, "100.000s")

	doc, err := songconfig.NewStore(env.songDir, nil).Require(t.Context())
	if err != nil {
		t.Fatalf("Require: %v", err)
	}
	if doc.LengthMs != 100000 || len(doc.KnownGoodHashes) != 1 || doc.KnownGoodHashes[0].Hash != hash.Digest {
		t.Fatalf("unexpected document %+v", doc)
	}
	if _, err := os.Stat(filepath.Join(env.songDir, songconfig.FingerprintFile)); err != nil {
		t.Fatalf("fingerprint.bin missing: %v", err)
	}
}

func TestCompilePrintsFilterGraph(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeSong(t, 0, &patch.Spec{
		FadeIn:   &patch.Fade{StartMs: 0, DurationMs: 1000},
		PadEndMs: patch.Ms(2000),
	})

	out, err := env.run(t, "compile")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	requireContains(t, out, "afade=t=in:st=0ms:d=1000ms,apad=pad_dur=2000ms")
}

func TestCompileWithoutPatches(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeSong(t, 0, nil)

	out, err := env.run(t, "compile")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	requireContains(t, out, "no patches")
}

func TestHashReportsKnownGood(t *testing.T) {
	env := setupCLITestEnv(t)
	input, hash := env.writeCandidate(t, "song.ogg", "the master")
	env.writeSong(t, 0, nil, hash)

	out, err := env.run(t, "hash", input)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	requireContains(t, out, hash.Digest)
	requireContains(t, out, "Known-good: yes")
}

func TestHistoryListsRuns(t *testing.T) {
	env := setupCLITestEnv(t)
	input, hash := env.writeCandidate(t, "song.mp3", "the master")
	env.writeSong(t, 0, nil, hash)

	out, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	if _, err := env.run(t, "verify", "-i", input); err != nil {
		t.Fatalf("verify: %v", err)
	}
	out, err = env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "verify")
	requireContains(t, out, "hash_accepted")
	requireContains(t, out, "song.mp3")
}

func TestDoctorWithStubbedTools(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeSong(t, 0, nil)

	out, err := env.run(t, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	requireContains(t, out, "FFmpeg")
	requireContains(t, out, "ffmpeg version stub")
	requireContains(t, out, "Song config")
}

func TestDoctorReportsMissingTool(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Tools.FPcalc = filepath.Join(env.workDir, "no-such-fpcalc")
	writeTestConfig(t, env.configPath, env.cfg)

	out, err := env.run(t, "doctor")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	requireContains(t, out, "missing")
}

func TestVerifyMissingFPcalcIsFailureNotRejection(t *testing.T) {
	env := setupCLITestEnv(t)
	master, _ := env.writeCandidate(t, "master.ogg", "the master")
	if _, err := env.run(t, "fingerprint", "-m", master); err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	env.cfg.Tools.FPcalc = filepath.Join(env.workDir, "no-such-fpcalc")
	writeTestConfig(t, env.configPath, env.cfg)
	input, _ := env.writeCandidate(t, "song.mp3", "a different rip")

	_, err := env.run(t, "verify", "-i", input)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if errors.Is(err, services.ErrRejected) {
		t.Fatalf("tool failure must not read as a rejection: %v", err)
	}
	if code := services.ExitCode(err); code != services.ExitFailure {
		t.Fatalf("exit code = %d, want %d", code, services.ExitFailure)
	}
}

func TestHistoryDropsRunsPastRetention(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenHistory(t, env.cfg)
	ctx := context.Background()
	old := time.Now().AddDate(0, 0, -(env.cfg.History.RetentionDays + 1))
	if _, err := store.Record(ctx, history.Entry{Kind: history.KindVerify, File: "/old/ancient.mp3", Outcome: "hash_accepted", CreatedAt: old}); err != nil {
		t.Fatalf("Record old: %v", err)
	}
	if _, err := store.Record(ctx, history.Entry{Kind: history.KindVerify, File: "/new/recent.mp3", Outcome: "hash_accepted"}); err != nil {
		t.Fatalf("Record recent: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "recent.mp3")
	if strings.Contains(out, "ancient.mp3") {
		t.Fatalf("expected expired run to be pruned, got %q", out)
	}
}
