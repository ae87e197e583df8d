// Package testsupport holds helpers shared by package tests: configs rooted
// in temp directories, stub tool binaries, and seeded song directories.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"songpatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// History is disabled unless WithHistory is passed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.History.Enabled = false
	cfgVal.Logging.ToFile = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithHistory enables the run history database.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// points the tool paths at them. If names is empty, ffmpeg, ffprobe, and
// fpcalc are stubbed with scripts that succeed without output.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe", "fpcalc"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			path := WriteScript(b.t, binDir, name, "exit 0\n")
			switch name {
			case "ffmpeg":
				b.cfg.Tools.FFmpeg = path
			case "ffprobe":
				b.cfg.Tools.FFprobe = path
			case "fpcalc":
				b.cfg.Tools.FPcalc = path
			}
		}
	}
}

// WriteScript writes an executable shell script named name into dir and
// returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
