package songconfig

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"songpatch/internal/fingerprint"
	"songpatch/internal/knowngood"
	"songpatch/internal/profile"
	"songpatch/internal/registrar"
	"songpatch/internal/services"
)

const sampleDocument = `{
  "schemaVersion": 1,
  "lengthMs": 183250,
  "notes": "Use the album version",
  "downloadUrls": ["https://example.invalid/song"],
  "fingerprint": {"startAtSecond": 2.5},
  "knownGoodHashes": [
    {"type": "sha256", "hash": "LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ="}
  ],
  "patches": {
    "padEndMs": 2000,
    "trim": {"startMs": 1000}
  },
  "editorOnly": true
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadAbsentDocument(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	doc, exists, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected absent document")
	}
	if doc.SchemaVersion != SchemaVersion || doc.LengthMs != 0 || len(doc.KnownGoodHashes) != 0 {
		t.Fatalf("expected defaults, got %+v", doc)
	}

	if _, err := store.Require(context.Background()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("Require should report ErrNotFound, got %v", err)
	}
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DocumentFile), sampleDocument)

	doc, err := NewStore(dir, nil).Require(context.Background())
	if err != nil {
		t.Fatalf("Require: %v", err)
	}
	if doc.Notes != "Use the album version" || len(doc.DownloadURLs) != 1 {
		t.Fatalf("unexpected document %+v", doc)
	}

	p := doc.Profile()
	if p.DeclaredLengthMs != 183250 || p.FingerprintStartOffsetSec != 2.5 {
		t.Fatalf("unexpected profile %+v", p)
	}
	if !p.KnownGoodHashes.Contains("LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ=") {
		t.Fatal("expected known-good hash")
	}

	spec := doc.PatchSpec()
	if spec.Trim == nil || *spec.Trim.StartMs != 1000 || spec.Trim.EndMs != nil || *spec.PadEndMs != 2000 {
		t.Fatalf("unexpected patch spec %+v", spec)
	}
}

func TestLoadRejectsInvalidDocuments(t *testing.T) {
	tests := map[string]string{
		"syntax":         `{"schemaVersion": 1,`,
		"schema":         `{"schemaVersion": 2}`,
		"negative":       `{"schemaVersion": 1, "lengthMs": -5}`,
		"empty hash":     `{"schemaVersion": 1, "knownGoodHashes": [{"type": "sha256", "hash": ""}]}`,
		"negative patch": `{"schemaVersion": 1, "patches": {"delayStartMs": -10}}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, DocumentFile), content)
			_, exists, err := NewStore(dir, nil).Load(context.Background())
			if !errors.Is(err, services.ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
			if !exists {
				t.Fatal("a malformed document still exists")
			}
		})
	}
}

func TestEmptyTrimIsDropped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DocumentFile), `{"schemaVersion": 1, "patches": {"trim": {}}}`)
	doc, _, err := NewStore(dir, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Patches != nil || !doc.PatchSpec().IsEmpty() {
		t.Fatalf("expected empty patches, got %+v", doc.Patches)
	}
}

func TestWithProfileKeepsUserFields(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DocumentFile), sampleDocument)
	doc, _, err := NewStore(dir, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p := doc.Profile()
	p.KnownGoodHashes.Add(knowngood.Hash{Algorithm: knowngood.AlgorithmSHA256, Digest: "second"})
	p.DeclaredLengthMs = 1000
	updated := doc.WithProfile(p)

	if updated.Notes != doc.Notes || updated.Patches == nil {
		t.Fatalf("user fields lost: %+v", updated)
	}
	if len(updated.KnownGoodHashes) != 2 || updated.KnownGoodHashes[1].Hash != "second" || updated.KnownGoodHashes[1].Type != "sha256" {
		t.Fatalf("unexpected hashes %+v", updated.KnownGoodHashes)
	}
	if len(doc.KnownGoodHashes) != 1 {
		t.Fatal("original document was modified")
	}
}

func registration(data string, changed bool, p profile.MasterProfile) registrar.Registration {
	return registrar.Registration{
		Artifact: fingerprint.Artifact{Data: []byte(data), DurationSeconds: 1},
		Profile:  p,
		Changed:  changed,
	}
}

func TestCommitWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, nil)
	p := profile.MasterProfile{
		KnownGoodHashes:  knowngood.NewSet(knowngood.Hash{Algorithm: "sha256", Digest: "abc="}),
		DeclaredLengthMs: 61000,
	}

	doc, err := store.Commit(context.Background(), DefaultDocument(), registration("fp-v1", true, p))
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if doc.LengthMs != 61000 {
		t.Fatalf("unexpected committed doc %+v", doc)
	}

	blob, err := store.LoadFingerprint(context.Background())
	if err != nil || string(blob) != "fp-v1" {
		t.Fatalf("fingerprint = %q, %v", blob, err)
	}
	reloaded, exists, err := store.Load(context.Background())
	if err != nil || !exists {
		t.Fatalf("reload: exists=%v err=%v", exists, err)
	}
	if reloaded.LengthMs != 61000 || len(reloaded.KnownGoodHashes) != 1 || reloaded.KnownGoodHashes[0].Hash != "abc=" {
		t.Fatalf("unexpected reloaded doc %+v", reloaded)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestCommitUnchangedLeavesDocumentAlone(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, DocumentFile)
	writeFile(t, docPath, sampleDocument)
	store := NewStore(dir, nil)
	doc, _, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := store.Commit(context.Background(), doc, registration("fp-v2", false, doc.Profile())); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	data, err := os.ReadFile(docPath)
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	if string(data) != sampleDocument {
		t.Fatal("unchanged document was rewritten")
	}
	if blob, _ := store.LoadFingerprint(context.Background()); string(blob) != "fp-v2" {
		t.Fatalf("fingerprint should always be replaced, got %q", blob)
	}
}

func TestCommitRestoresFingerprintWhenDocumentWriteFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FingerprintFile), "fp-old")
	// A non-empty directory where audio.json should be makes the final rename fail.
	blocker := filepath.Join(dir, DocumentFile)
	if err := os.MkdirAll(filepath.Join(blocker, "keep"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	store := NewStore(dir, nil)
	p := profile.MasterProfile{KnownGoodHashes: knowngood.NewSet(knowngood.Hash{Digest: "abc="})}

	if _, err := store.Commit(context.Background(), DefaultDocument(), registration("fp-new", true, p)); err == nil {
		t.Fatal("expected commit failure")
	}
	blob, err := store.LoadFingerprint(context.Background())
	if err != nil || string(blob) != "fp-old" {
		t.Fatalf("expected previous fingerprint restored, got %q (%v)", blob, err)
	}
}

func TestCommitRejectsEmptyArtifact(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	_, err := store.Commit(context.Background(), DefaultDocument(), registration("", true, profile.MasterProfile{}))
	if !errors.Is(err, services.ErrArtifact) {
		t.Fatalf("expected ErrArtifact, got %v", err)
	}
	if _, err := os.Stat(store.FingerprintPath()); !os.IsNotExist(err) {
		t.Fatal("nothing should be written")
	}
}

func TestLoadFingerprintMissing(t *testing.T) {
	_, err := NewStore(t.TempDir(), nil).LoadFingerprint(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
