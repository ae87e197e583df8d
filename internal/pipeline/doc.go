// Package pipeline runs the user-facing operations: patch a candidate file,
// verify it without writing output, and register a new master.
//
// Each run gets a uuid run id that is attached to the context, every log line,
// and the history entry written when the run ends. Components are injected
// through Deps so tests can replace the external tools with fakes.
package pipeline
