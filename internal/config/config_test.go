package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"songpatch/internal/config"
)

func clearToolEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SONGPATCH_FFMPEG", "SONGPATCH_FFPROBE", "SONGPATCH_FPCALC"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearToolEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "songpatch")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.Output.Extension != ".ogg" || cfg.Output.Codec != "libvorbis" {
		t.Fatalf("unexpected output defaults: %+v", cfg.Output)
	}
	if cfg.Output.Overwrite {
		t.Fatal("expected overwrite disabled by default")
	}
	if !cfg.History.Enabled || cfg.History.RetentionDays != 90 {
		t.Fatalf("unexpected history defaults: %+v", cfg.History)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" || cfg.FPcalcBinary() != "fpcalc" {
		t.Fatalf("unexpected binaries: %q %q %q", cfg.FFmpegBinary(), cfg.FFprobeBinary(), cfg.FPcalcBinary())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	info, err := os.Stat(cfg.Paths.StateDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected state dir to exist: %v", err)
	}
	if _, err := os.Stat(cfg.Paths.LogDir); !os.IsNotExist(err) {
		t.Fatalf("log dir should only be created when logging.to_file is set, stat err %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearToolEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "songpatch.toml")

	type payload struct {
		Paths struct {
			StateDir string `toml:"state_dir"`
		} `toml:"paths"`
		Tools struct {
			FPcalc string `toml:"fpcalc"`
		} `toml:"tools"`
		Output struct {
			Extension string  `toml:"extension"`
			Quality   float64 `toml:"quality"`
			Overwrite bool    `toml:"overwrite"`
		} `toml:"output"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.StateDir = filepath.Join(tempDir, "state")
	custom.Tools.FPcalc = "/opt/chromaprint/fpcalc"
	custom.Output.Extension = "EGG"
	custom.Output.Quality = 4
	custom.Output.Overwrite = true
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "Debug"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.StateDir != filepath.Join(tempDir, "state") {
		t.Fatalf("unexpected state dir %q", cfg.Paths.StateDir)
	}
	if cfg.FPcalcBinary() != "/opt/chromaprint/fpcalc" {
		t.Fatalf("unexpected fpcalc %q", cfg.FPcalcBinary())
	}
	if cfg.Output.Extension != ".egg" {
		t.Fatalf("expected normalized extension .egg, got %q", cfg.Output.Extension)
	}
	if cfg.Output.Quality != 4 || !cfg.Output.Overwrite {
		t.Fatalf("unexpected output section: %+v", cfg.Output)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging section: %+v", cfg.Logging)
	}
}

func TestToolEnvFallback(t *testing.T) {
	clearToolEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SONGPATCH_FFMPEG", "/usr/local/bin/ffmpeg7")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpegBinary() != "/usr/local/bin/ffmpeg7" {
		t.Fatalf("expected ffmpeg from env, got %q", cfg.FFmpegBinary())
	}
}

func TestConfigFileWinsOverToolEnv(t *testing.T) {
	clearToolEnv(t)
	configPath := filepath.Join(t.TempDir(), "songpatch.toml")
	if err := os.WriteFile(configPath, []byte("[tools]\nffprobe = \"/srv/ffprobe\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SONGPATCH_FFPROBE", "/env/ffprobe")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFprobeBinary() != "/srv/ffprobe" {
		t.Fatalf("expected file value, got %q", cfg.FFprobeBinary())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	clearToolEnv(t)
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown key", content: "[output]\nbitrate = 320\n", want: "bitrate"},
		{name: "bad extension", content: "[output]\nextension = \"tar.gz\"\n", want: "output.extension"},
		{name: "quality range", content: "[output]\nquality = 11.0\n", want: "output.quality"},
		{name: "level", content: "[logging]\nlevel = \"loud\"\n", want: "logging.level"},
		{name: "syntax", content: "[output\n", want: "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "songpatch.toml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(configPath)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSampleLoadsCleanly(t *testing.T) {
	clearToolEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	defaults := config.Default()
	if cfg.Output.Codec != defaults.Output.Codec || cfg.Logging.RetentionDays != defaults.Logging.RetentionDays {
		t.Fatalf("sample diverges from defaults: %+v", cfg)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	got, err := config.ExpandPath("~/songs")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "songs") {
		t.Fatalf("got %q", got)
	}
	if got, _ := config.ExpandPath(""); got != "" {
		t.Fatalf("empty path should stay empty, got %q", got)
	}
}
