package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"songpatch/internal/config"
	"songpatch/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	songDir    string
	workDir    string
}

const (
	stubFFmpeg = `if [ "$1" = "-version" ]; then echo "ffmpeg version stub"; exit 0; fi
for last; do :; done
printf encoded > "$last"
`
	stubFFprobe = `if [ "$1" = "-version" ]; then echo "ffprobe version stub"; exit 0; fi
echo '{"streams":[{"codec_type":"audio"}],"format":{"duration":"100.0"}}'
`
	stubFPcalc = `if [ "$1" = "-version" ]; then echo "fpcalc version stub"; exit 0; fi
echo "DURATION=100"
echo "FINGERPRINT=11,22,33,44,55,66"
`
)

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithHistory())
	base := testsupport.BaseDir(cfg)
	t.Setenv("HOME", filepath.Join(base, "home"))

	binDir := filepath.Join(base, "bin")
	cfg.Tools.FFmpeg = testsupport.WriteScript(t, binDir, "ffmpeg", stubFFmpeg)
	cfg.Tools.FFprobe = testsupport.WriteScript(t, binDir, "ffprobe", stubFFprobe)
	cfg.Tools.FPcalc = testsupport.WriteScript(t, binDir, "fpcalc", stubFPcalc)

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "songpatch.toml"),
		songDir:    filepath.Join(base, "song"),
		workDir:    filepath.Join(base, "work"),
	}
	for _, dir := range []string{env.songDir, env.workDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	writeTestConfig(t, env.configPath, cfg)
	return env
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLI(t, append([]string{"--config", e.configPath, "--song-dir", e.songDir, "--silent"}, args...))
}

func runCLI(t *testing.T, args []string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q

[tools]
ffmpeg = %q
ffprobe = %q
fpcalc = %q

[history]
enabled = %t

[logging]
to_file = false
`,
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Tools.FFmpeg,
		cfg.Tools.FFprobe,
		cfg.Tools.FPcalc,
		cfg.History.Enabled,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
