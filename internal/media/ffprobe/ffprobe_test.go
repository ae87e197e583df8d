package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
			{CodecType: "audio"},
		},
		Format: Format{Duration: "123.45"},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestDurationFallsBackToAudioStream(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "audio", Duration: "60.5"}}}
	if result.DurationSeconds() != 60.5 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestDurationInvalid(t *testing.T) {
	result := Result{Format: Format{Duration: "bad"}}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
}

func writeStub(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestProberProbeDuration(t *testing.T) {
	stub := writeStub(t, `echo '{"streams":[{"index":0,"codec_type":"audio"}],"format":{"duration":"180.0004"}}'`)
	got, err := Prober{Binary: stub}.ProbeDuration(context.Background(), "song.ogg")
	if err != nil {
		t.Fatalf("ProbeDuration: %v", err)
	}
	if got != 180000400*time.Microsecond {
		t.Fatalf("duration = %v", got)
	}
}

func TestProberRejectsFileWithoutAudio(t *testing.T) {
	stub := writeStub(t, `echo '{"streams":[{"index":0,"codec_type":"video"}],"format":{"duration":"10"}}'`)
	_, err := Prober{Binary: stub}.ProbeDuration(context.Background(), "clip.mkv")
	if err == nil || !strings.Contains(err.Error(), "no audio stream") {
		t.Fatalf("expected no audio stream error, got %v", err)
	}
}

func TestInspectSurfacesStderr(t *testing.T) {
	stub := writeStub(t, "echo 'Invalid data found' >&2\nexit 1")
	_, err := Inspect(context.Background(), stub, "broken.mp3")
	if err == nil || !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestInspectEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "", "  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
