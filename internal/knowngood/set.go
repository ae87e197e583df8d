package knowngood

// AlgorithmSHA256 labels digests produced by HashFile.
const AlgorithmSHA256 = "sha256"

// Hash is a trusted content hash for the master track.
type Hash struct {
	Algorithm string
	Digest    string
}

// Equal reports whether both hashes carry the same digest.
func (h Hash) Equal(other Hash) bool {
	return h.Digest == other.Digest
}

// Set is an ordered, digest-deduplicated collection of hashes.
// The zero value is an empty set ready for use.
type Set struct {
	entries []Hash
}

// NewSet builds a set from hashes, dropping later duplicates.
func NewSet(hashes ...Hash) Set {
	var s Set
	for _, h := range hashes {
		s.Add(h)
	}
	return s
}

// Contains reports whether a hash with exactly this digest is present.
// Comparison is case-sensitive with no normalization.
func (s Set) Contains(digest string) bool {
	for _, entry := range s.entries {
		if entry.Digest == digest {
			return true
		}
	}
	return false
}

// Add appends h unless an entry with the same digest already exists.
// It returns true when the set changed.
func (s *Set) Add(h Hash) bool {
	for _, entry := range s.entries {
		if entry.Equal(h) {
			return false
		}
	}
	s.entries = append(s.entries, h)
	return true
}

// Len returns the number of entries.
func (s Set) Len() int {
	return len(s.entries)
}

// Empty reports whether the set has no entries.
func (s Set) Empty() bool {
	return len(s.entries) == 0
}

// Entries returns a copy of the entries in insertion order.
func (s Set) Entries() []Hash {
	out := make([]Hash, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clone returns an independent copy, so callers can extend a set without
// mutating one that is shared.
func (s Set) Clone() Set {
	return Set{entries: s.Entries()}
}
