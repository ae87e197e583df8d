package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"songpatch/internal/config"
	"songpatch/internal/history"
	"songpatch/internal/songconfig"
)

// MustOpenHistory opens the history database for cfg and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(context.Background(), cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// WriteSongDir writes doc as audio.json into dir. A non-nil fingerprint is
// written as fingerprint.bin.
func WriteSongDir(t testing.TB, dir string, doc songconfig.Document, fingerprint []byte) {
	t.Helper()

	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("encode document: %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, songconfig.DocumentFile), data, 0o644); err != nil {
		t.Fatalf("write %s: %v", songconfig.DocumentFile, err)
	}
	if fingerprint != nil {
		if err := os.WriteFile(filepath.Join(dir, songconfig.FingerprintFile), fingerprint, 0o644); err != nil {
			t.Fatalf("write %s: %v", songconfig.FingerprintFile, err)
		}
	}
}
