package validation

import (
	"fmt"

	"songpatch/internal/fingerprint"
)

// Kind identifies which stage decided an Outcome.
type Kind string

const (
	KindHashAccepted        Kind = "hash_accepted"
	KindLengthRejected      Kind = "length_rejected"
	KindFingerprintAccepted Kind = "fingerprint_accepted"
	KindFingerprintRejected Kind = "fingerprint_rejected"
)

// Outcome is the result of a validation run. Only the fields relevant to
// Kind are set: Digest for hash acceptance, ExpectedMs/ActualMs for a length
// rejection, Match and Decision for fingerprint outcomes.
type Outcome struct {
	Kind       Kind                     `json:"kind"`
	Digest     string                   `json:"digest,omitempty"`
	ExpectedMs int64                    `json:"expected_ms,omitempty"`
	ActualMs   int64                    `json:"actual_ms,omitempty"`
	Match      *fingerprint.MatchResult `json:"match,omitempty"`
	Decision   *Decision                `json:"decision,omitempty"`
}

// Accepted reports whether the candidate may be used.
func (o Outcome) Accepted() bool {
	return o.Kind == KindHashAccepted || o.Kind == KindFingerprintAccepted
}

// Summary renders a one-line description for logs and the CLI.
func (o Outcome) Summary() string {
	switch o.Kind {
	case KindHashAccepted:
		return "matches a known-good hash"
	case KindLengthRejected:
		return fmt.Sprintf("length %s differs from expected %s by more than %s",
			formatMs(o.ActualMs), formatMs(o.ExpectedMs), formatMs(LengthToleranceMs))
	case KindFingerprintAccepted:
		if o.Match != nil {
			return fmt.Sprintf("fingerprint matches (confidence %.2f)", o.Match.Confidence)
		}
		return "fingerprint matches"
	case KindFingerprintRejected:
		if o.Decision != nil {
			return "fingerprint does not match: " + o.Decision.Reason()
		}
		return "fingerprint does not match"
	default:
		return string(o.Kind)
	}
}

func formatMs(ms int64) string {
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}
