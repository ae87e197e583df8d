// Package songconfig reads and writes the per-map song configuration: the
// audio.json document distributed with a map and the fingerprint.bin
// artifact stored next to it.
//
// Loading distinguishes an absent document (a valid state before the first
// registration) from a malformed one. Commit persists a registration
// all-or-nothing under an exclusive file lock so the document never points at
// a missing or stale fingerprint.
package songconfig
