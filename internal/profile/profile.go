// Package profile describes the master track a candidate file is checked
// against.
package profile

import (
	"errors"

	"songpatch/internal/knowngood"
)

// MasterProfile is the trusted description of the master track. Only the
// registrar produces new values; every other component treats it as
// read-only.
type MasterProfile struct {
	KnownGoodHashes knowngood.Set
	// DeclaredLengthMs is the master duration; 0 disables the length check.
	DeclaredLengthMs int64
	// FingerprintStartOffsetSec is where the fingerprint query window starts.
	FingerprintStartOffsetSec float64
}

// LengthCheckEnabled reports whether a declared length is available.
func (p MasterProfile) LengthCheckEnabled() bool {
	return p.DeclaredLengthMs > 0
}

// Validate ensures numeric fields are within range.
func (p MasterProfile) Validate() error {
	if p.DeclaredLengthMs < 0 {
		return errors.New("declared length must be >= 0")
	}
	if p.FingerprintStartOffsetSec < 0 {
		return errors.New("fingerprint start offset must be >= 0")
	}
	return nil
}
