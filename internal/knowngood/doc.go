// Package knowngood holds the trusted content hashes of a master audio track.
//
// A Set is append-only and deduplicated by digest; the algorithm label is kept
// for the on-disk document but never participates in equality. HashFile
// computes the SHA-256 digest in the same base64 form used by audio.json.
package knowngood
