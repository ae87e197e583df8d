package songconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"songpatch/internal/knowngood"
	"songpatch/internal/patch"
	"songpatch/internal/profile"
)

// SchemaVersion is the only audio.json layout this package understands.
const SchemaVersion = 1

// KnownGoodHash is the serialized form of a trusted hash.
type KnownGoodHash struct {
	Type string `json:"type"`
	Hash string `json:"hash"`
}

// FingerprintSettings controls where the fingerprint query window starts.
type FingerprintSettings struct {
	StartAtSecond float64 `json:"startAtSecond"`
}

// Document is the audio.json schema.
type Document struct {
	SchemaVersion   int                 `json:"schemaVersion"`
	LengthMs        int64               `json:"lengthMs"`
	Notes           string              `json:"notes,omitempty"`
	DownloadURLs    []string            `json:"downloadUrls,omitempty"`
	Fingerprint     FingerprintSettings `json:"fingerprint"`
	KnownGoodHashes []KnownGoodHash     `json:"knownGoodHashes"`
	Patches         *patch.Spec         `json:"patches,omitempty"`
}

// DefaultDocument returns the document used when a map has no audio.json yet.
func DefaultDocument() Document {
	return Document{SchemaVersion: SchemaVersion, KnownGoodHashes: []KnownGoodHash{}}
}

// Decode parses and validates a document. Unknown fields are ignored so
// hand-edited files with extra keys still load.
func Decode(r io.Reader) (Document, error) {
	doc := DefaultDocument()
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", DocumentFile, err)
	}
	doc = doc.normalized()
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Encode renders the document as indented JSON with a trailing newline.
func (d Document) Encode() ([]byte, error) {
	d = d.normalized()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode %s: %w", DocumentFile, err)
	}
	return buf.Bytes(), nil
}

// Validate reports every problem found in the document.
func (d Document) Validate() error {
	var errs []error
	if d.SchemaVersion != SchemaVersion {
		errs = append(errs, fmt.Errorf("schemaVersion %d is not supported (want %d)", d.SchemaVersion, SchemaVersion))
	}
	if d.LengthMs < 0 {
		errs = append(errs, errors.New("lengthMs must be >= 0"))
	}
	if d.Fingerprint.StartAtSecond < 0 {
		errs = append(errs, errors.New("fingerprint.startAtSecond must be >= 0"))
	}
	for i, h := range d.KnownGoodHashes {
		if strings.TrimSpace(h.Hash) == "" {
			errs = append(errs, fmt.Errorf("knownGoodHashes[%d].hash is empty", i))
		}
	}
	if d.Patches != nil {
		if err := d.Patches.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("patches: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Profile returns the master profile described by the document.
func (d Document) Profile() profile.MasterProfile {
	hashes := make([]knowngood.Hash, 0, len(d.KnownGoodHashes))
	for _, h := range d.KnownGoodHashes {
		hashes = append(hashes, knowngood.Hash{Algorithm: h.Type, Digest: h.Hash})
	}
	return profile.MasterProfile{
		KnownGoodHashes:           knowngood.NewSet(hashes...),
		DeclaredLengthMs:          d.LengthMs,
		FingerprintStartOffsetSec: d.Fingerprint.StartAtSecond,
	}
}

// WithProfile returns a copy of the document carrying p's hashes, length,
// and fingerprint offset. Notes, download URLs, and patches are kept.
func (d Document) WithProfile(p profile.MasterProfile) Document {
	entries := p.KnownGoodHashes.Entries()
	d.KnownGoodHashes = make([]KnownGoodHash, 0, len(entries))
	for _, h := range entries {
		d.KnownGoodHashes = append(d.KnownGoodHashes, KnownGoodHash{Type: h.Algorithm, Hash: h.Digest})
	}
	d.LengthMs = p.DeclaredLengthMs
	d.Fingerprint.StartAtSecond = p.FingerprintStartOffsetSec
	return d
}

// PatchSpec returns the configured edits, or an empty spec.
func (d Document) PatchSpec() patch.Spec {
	if d.Patches == nil {
		return patch.Spec{}
	}
	return d.Patches.Normalized()
}

func (d Document) normalized() Document {
	if d.KnownGoodHashes == nil {
		d.KnownGoodHashes = []KnownGoodHash{}
	}
	if d.Patches != nil {
		spec := d.Patches.Normalized()
		if spec.IsEmpty() {
			d.Patches = nil
		} else {
			d.Patches = &spec
		}
	}
	return d
}
