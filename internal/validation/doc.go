// Package validation decides whether a candidate audio file is the master
// track a map was authored against.
//
// Validator runs three stages in order and stops at the first decisive one:
// a known-good hash lookup, a duration check against the declared length,
// and an acoustic fingerprint match judged by Policy. Hash misses and hash
// I/O failures are inconclusive; only the length and fingerprint stages can
// reject. Collaborators (duration probe, fingerprint matcher, artifact
// loader) are injected as interfaces so each stage can be exercised with
// fakes.
package validation
