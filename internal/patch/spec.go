package patch

import (
	"errors"
	"fmt"
)

// Trim cuts audio before StartMs and after EndMs. Either bound may be unset.
type Trim struct {
	StartMs *int `json:"startMs,omitempty"`
	EndMs   *int `json:"endMs,omitempty"`
}

// Fade ramps volume over DurationMs beginning at StartMs.
type Fade struct {
	StartMs    int `json:"startMs"`
	DurationMs int `json:"durationMs"`
}

// Spec is the declarative set of edits applied to an accepted input.
type Spec struct {
	Trim         *Trim `json:"trim,omitempty"`
	FadeIn       *Fade `json:"fadeIn,omitempty"`
	FadeOut      *Fade `json:"fadeOut,omitempty"`
	DelayStartMs *int  `json:"delayStartMs,omitempty"`
	PadEndMs     *int  `json:"padEndMs,omitempty"`
}

// IsEmpty reports whether no edit is present.
func (s Spec) IsEmpty() bool {
	return s.Trim == nil && s.FadeIn == nil && s.FadeOut == nil && s.DelayStartMs == nil && s.PadEndMs == nil
}

// Normalized drops a trim that sets neither bound.
func (s Spec) Normalized() Spec {
	if s.Trim != nil && s.Trim.StartMs == nil && s.Trim.EndMs == nil {
		s.Trim = nil
	}
	return s
}

// Validate rejects negative offsets and durations and an inverted trim.
func (s Spec) Validate() error {
	var errs []error
	if s.Trim != nil {
		errs = append(errs, nonNegative("trim.startMs", s.Trim.StartMs), nonNegative("trim.endMs", s.Trim.EndMs))
		if s.Trim.StartMs != nil && s.Trim.EndMs != nil && *s.Trim.EndMs <= *s.Trim.StartMs {
			errs = append(errs, fmt.Errorf("trim.endMs (%d) must be greater than trim.startMs (%d)", *s.Trim.EndMs, *s.Trim.StartMs))
		}
	}
	if s.FadeIn != nil {
		errs = append(errs, s.FadeIn.validate("fadeIn"))
	}
	if s.FadeOut != nil {
		errs = append(errs, s.FadeOut.validate("fadeOut"))
	}
	errs = append(errs, nonNegative("delayStartMs", s.DelayStartMs), nonNegative("padEndMs", s.PadEndMs))
	return errors.Join(errs...)
}

func (f Fade) validate(field string) error {
	if f.StartMs < 0 {
		return fmt.Errorf("%s.startMs must be >= 0", field)
	}
	if f.DurationMs < 0 {
		return fmt.Errorf("%s.durationMs must be >= 0", field)
	}
	return nil
}

func nonNegative(field string, value *int) error {
	if value != nil && *value < 0 {
		return fmt.Errorf("%s must be >= 0", field)
	}
	return nil
}

// Ms returns a pointer to v, for building specs in code.
func Ms(v int) *int {
	return &v
}
