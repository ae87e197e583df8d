// Package services defines shared utilities consumed by the validation,
// registration, and patch pipelines and their external tool adapters.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, command kinds, and stage names for
//     logging and history records.
//   - Structured error markers plus the Wrap helper that classify failures
//     (rejected input, external tool failures, configuration problems) so the
//     CLI can map them to stable exit codes.
//
// Use these helpers when wiring new pipeline logic so error handling and
// observability stay uniform across commands.
package services
