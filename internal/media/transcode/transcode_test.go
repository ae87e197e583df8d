package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"songpatch/internal/patch"
	"songpatch/internal/services"
)

func TestArgsWithGraph(t *testing.T) {
	tr := New(Options{Quality: 6}, nil)
	graph := patch.Compile(patch.Spec{Trim: &patch.Trim{StartMs: patch.Ms(1000)}, PadEndMs: patch.Ms(2000)})

	args, err := tr.Args(Request{Input: "/songs/in.mp3", Output: "/songs/in.ogg", Graph: graph})
	if err != nil {
		t.Fatalf("Args: %v", err)
	}
	want := []string{
		"-hide_banner", "-loglevel", "error", "-n",
		"-i", "/songs/in.mp3", "-vn",
		"-af", "atrim=start=1000ms,apad=pad_dur=2000ms",
		"-c:a", "libvorbis", "-q:a", "6",
		"/songs/in.ogg",
	}
	if !slices.Equal(args, want) {
		t.Fatalf("args = %q\nwant   %q", args, want)
	}
}

func TestArgsWithoutGraphIsPlainReencode(t *testing.T) {
	tr := New(Options{Codec: "libopus", Quality: 4.5, Overwrite: true}, nil)
	args, err := tr.Args(Request{Input: "/a/in.flac", Output: "/a/song.egg"})
	if err != nil {
		t.Fatalf("Args: %v", err)
	}
	if slices.Contains(args, "-af") {
		t.Fatalf("unexpected filter in %q", args)
	}
	if !slices.Contains(args, "-y") || slices.Contains(args, "-n") {
		t.Fatalf("expected overwrite flag in %q", args)
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-c:a libopus -q:a 4.5 -f ogg /a/song.egg") {
		t.Fatalf("unexpected tail %q", joined)
	}
}

func TestArgsUsesAbsolutePaths(t *testing.T) {
	args, err := New(Options{}, nil).Args(Request{Input: "in.mp3", Output: "out.ogg"})
	if err != nil {
		t.Fatalf("Args: %v", err)
	}
	if !filepath.IsAbs(args[5]) || !filepath.IsAbs(args[len(args)-1]) {
		t.Fatalf("expected absolute paths, got %q", args)
	}
}

func TestArgsRejectsSameInputAndOutput(t *testing.T) {
	_, err := New(Options{}, nil).Args(Request{Input: "/a/song.ogg", Output: "/a/../a/song.ogg"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestTranscodeRunsBinary(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	script := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + argsFile + "\nfor last; do :; done\n: > \"$last\"\n"
	binary := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(binary, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	output := filepath.Join(dir, "out.ogg")

	tr := New(Options{Binary: binary, Quality: 6}, nil)
	if err := tr.Transcode(context.Background(), Request{Input: filepath.Join(dir, "in.wav"), Output: output}); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output: %v", err)
	}
	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	if !strings.Contains(string(recorded), "libvorbis") {
		t.Fatalf("unexpected args %q", recorded)
	}
}

func TestTranscodeFailureIsExternalToolError(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\necho 'Unknown encoder' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	err := New(Options{Binary: binary}, nil).Transcode(context.Background(), Request{Input: "in.wav", Output: "out.ogg"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unknown encoder") {
		t.Fatalf("stderr should be surfaced: %v", err)
	}
}
