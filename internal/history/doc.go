// Package history records patch, verify, and register runs in a small SQLite
// database under the configured state directory.
//
// The schema is managed by embedded, versioned migrations applied on Open.
// Recording is best effort from the pipeline's point of view: a failed
// insert is logged there and never changes a run's outcome.
package history
