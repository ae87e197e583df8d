package fingerprint

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var artifactMagic = [4]byte{'S', 'P', 'F', 'P'}

const artifactVersion uint16 = 1

// headerSize covers magic, version, item seconds, duration, and count.
const headerSize = 4 + 2 + 8 + 8 + 4

// ErrCorruptArtifact reports a blob that cannot be decoded.
var ErrCorruptArtifact = errors.New("corrupt fingerprint artifact")

// rawFingerprint is the decoded form of an artifact blob.
type rawFingerprint struct {
	ItemSeconds     float64
	DurationSeconds float64
	Values          []uint32
}

func (f rawFingerprint) encode() []byte {
	var buf bytes.Buffer
	buf.Grow(headerSize + 4*len(f.Values))
	buf.Write(artifactMagic[:])
	_ = binary.Write(&buf, binary.LittleEndian, artifactVersion)
	_ = binary.Write(&buf, binary.LittleEndian, math.Float64bits(f.ItemSeconds))
	_ = binary.Write(&buf, binary.LittleEndian, math.Float64bits(f.DurationSeconds))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(f.Values)))
	_ = binary.Write(&buf, binary.LittleEndian, f.Values)
	return buf.Bytes()
}

func decodeArtifact(data []byte) (rawFingerprint, error) {
	if len(data) < headerSize {
		return rawFingerprint{}, fmt.Errorf("%w: %d bytes is shorter than the header", ErrCorruptArtifact, len(data))
	}
	if !bytes.Equal(data[:4], artifactMagic[:]) {
		return rawFingerprint{}, fmt.Errorf("%w: bad magic", ErrCorruptArtifact)
	}
	le := binary.LittleEndian
	if version := le.Uint16(data[4:6]); version != artifactVersion {
		return rawFingerprint{}, fmt.Errorf("%w: unsupported version %d", ErrCorruptArtifact, version)
	}
	fp := rawFingerprint{
		ItemSeconds:     math.Float64frombits(le.Uint64(data[6:14])),
		DurationSeconds: math.Float64frombits(le.Uint64(data[14:22])),
	}
	count := int(le.Uint32(data[22:26]))
	body := data[headerSize:]
	if len(body) != count*4 {
		return rawFingerprint{}, fmt.Errorf("%w: expected %d values, found %d bytes", ErrCorruptArtifact, count, len(body))
	}
	if fp.ItemSeconds <= 0 || math.IsNaN(fp.ItemSeconds) {
		return rawFingerprint{}, fmt.Errorf("%w: invalid item duration", ErrCorruptArtifact)
	}
	fp.Values = make([]uint32, count)
	for i := range fp.Values {
		fp.Values[i] = le.Uint32(body[i*4:])
	}
	return fp, nil
}
