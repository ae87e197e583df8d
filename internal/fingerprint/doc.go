// Package fingerprint adapts Chromaprint's fpcalc tool into the fingerprint
// service used for master registration and candidate matching.
//
// Fingerprint produces an opaque Artifact for a master track: the raw
// Chromaprint sub-fingerprints packed into a small versioned binary blob,
// plus the track duration. Match extracts a short query window from a
// candidate with ffmpeg, fingerprints it with fpcalc, and slides it across
// the master fingerprint to find the alignment with the lowest bit-error rate.
// The result is reported as a MatchResult (found, confidence, coverage,
// query length, track start) for the caller's acceptance policy.
//
// The acoustic fingerprinting itself is fpcalc's job; this package only runs
// the tools, stores their output, and compares integer sequences.
//
// External binaries are invoked by absolute path arguments only. The process
// working directory is never changed.
package fingerprint
