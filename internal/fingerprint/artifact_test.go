package fingerprint

import (
	"errors"
	"testing"
)

func TestArtifactEncodeDecode(t *testing.T) {
	fp := rawFingerprint{ItemSeconds: itemSeconds, DurationSeconds: 183.25, Values: []uint32{0, 1, 0xFFFFFFFF, 42}}
	decoded, err := decodeArtifact(fp.encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.DurationSeconds != fp.DurationSeconds || decoded.ItemSeconds != fp.ItemSeconds {
		t.Fatalf("header mismatch: %+v", decoded)
	}
	if len(decoded.Values) != 4 || decoded.Values[2] != 0xFFFFFFFF || decoded.Values[3] != 42 {
		t.Fatalf("values mismatch: %v", decoded.Values)
	}
}

func TestDecodeArtifactRejectsCorruptData(t *testing.T) {
	valid := rawFingerprint{ItemSeconds: itemSeconds, DurationSeconds: 1, Values: []uint32{1, 2}}.encode()

	badMagic := append([]byte(nil), valid...)
	badMagic[0] = 'X'

	truncated := valid[:len(valid)-2]

	badVersion := append([]byte(nil), valid...)
	badVersion[4] = 9

	cases := map[string][]byte{
		"empty":     nil,
		"short":     valid[:10],
		"magic":     badMagic,
		"truncated": truncated,
		"version":   badVersion,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := decodeArtifact(data); !errors.Is(err, ErrCorruptArtifact) {
				t.Fatalf("expected ErrCorruptArtifact, got %v", err)
			}
		})
	}
}
