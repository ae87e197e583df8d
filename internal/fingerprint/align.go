package fingerprint

import "math/bits"

const (
	// itemSeconds is the spacing of Chromaprint sub-fingerprints at the
	// default 11025 Hz sample rate with a 4096-sample frame and 2/3 overlap.
	itemSeconds = 4096.0 / 3.0 / 11025.0

	// maxFoundBER is the bit-error rate above which the best alignment is
	// indistinguishable from unrelated audio (random bits sit near 0.5).
	maxFoundBER = 0.35

	// frameBitTolerance is the per-item bit error count still counted as
	// covered.
	frameBitTolerance = 10
)

// align slides query across master and reports the alignment with the lowest
// bit-error rate.
func align(master, query []uint32, item float64) MatchResult {
	result := MatchResult{QueryLength: float64(len(query)) * item}
	if len(master) == 0 || len(query) == 0 {
		return result
	}

	minOverlap := len(query) / 2
	if minOverlap < 1 {
		minOverlap = 1
	}

	bestOffset := 0
	bestBER := 1.0
	matched := false
	for offset := minOverlap - len(query); offset <= len(master)-minOverlap; offset++ {
		errBits, frames := 0, 0
		for i, q := range query {
			j := i + offset
			if j < 0 || j >= len(master) {
				continue
			}
			errBits += bits.OnesCount32(q ^ master[j])
			frames++
		}
		if frames < minOverlap {
			continue
		}
		ber := float64(errBits) / float64(32*frames)
		if ber < bestBER {
			bestBER = ber
			bestOffset = offset
			matched = true
		}
	}
	if !matched || bestBER > maxFoundBER {
		return result
	}

	covered := 0
	for i, q := range query {
		j := i + bestOffset
		if j < 0 || j >= len(master) {
			continue
		}
		if bits.OnesCount32(q^master[j]) <= frameBitTolerance {
			covered++
		}
	}

	result.Found = true
	result.Confidence = clamp01(1 - 2*bestBER)
	result.CoverageLength = float64(covered) * item
	// Master time zero relative to the start of the query window.
	result.TrackStartsAt = -float64(bestOffset) * item
	return result
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
