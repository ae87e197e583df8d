package validation

import (
	"math"
	"strings"

	"songpatch/internal/fingerprint"
)

// Policy thresholds. These are compiled in and not read from configuration.
const (
	ConfidenceThreshold    = 0.75
	CoverageSlackSeconds   = 2.0
	StartOffsetFuzzSeconds = 0.1
)

// Condition names a policy check that failed.
type Condition string

const (
	ConditionNotFound    Condition = "not_found"
	ConditionConfidence  Condition = "confidence"
	ConditionCoverage    Condition = "coverage"
	ConditionStartOffset Condition = "start_offset"
)

// Policy judges a fingerprint match.
type Policy struct {
	ConfidenceThreshold    float64
	CoverageSlackSeconds   float64
	StartOffsetFuzzSeconds float64
}

// DefaultPolicy returns the policy used by the validator.
func DefaultPolicy() Policy {
	return Policy{
		ConfidenceThreshold:    ConfidenceThreshold,
		CoverageSlackSeconds:   CoverageSlackSeconds,
		StartOffsetFuzzSeconds: StartOffsetFuzzSeconds,
	}
}

// Decision is the verdict of Evaluate. Failed lists every condition that did
// not hold, in evaluation order.
type Decision struct {
	Accepted bool        `json:"accepted"`
	Failed   []Condition `json:"failed,omitempty"`
}

// Reason joins the failed conditions, or returns "accepted".
func (d Decision) Reason() string {
	if d.Accepted {
		return "accepted"
	}
	if len(d.Failed) == 0 {
		return "rejected"
	}
	parts := make([]string, len(d.Failed))
	for i, c := range d.Failed {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}

// Evaluate accepts the match when it was found, its confidence reaches the
// threshold, its coverage is within the slack of the query length, and the
// master start lines up with expectedStartOffsetSec. A match that was not
// found is rejected without looking at the other fields.
func (p Policy) Evaluate(match fingerprint.MatchResult, expectedStartOffsetSec float64) Decision {
	if !match.Found {
		return Decision{Failed: []Condition{ConditionNotFound}}
	}

	var failed []Condition
	if match.Confidence < p.ConfidenceThreshold {
		failed = append(failed, ConditionConfidence)
	}
	if match.CoverageLength < match.QueryLength-p.CoverageSlackSeconds {
		failed = append(failed, ConditionCoverage)
	}
	if math.Abs(match.TrackStartsAt)-expectedStartOffsetSec > p.StartOffsetFuzzSeconds {
		failed = append(failed, ConditionStartOffset)
	}
	return Decision{Accepted: len(failed) == 0, Failed: failed}
}
