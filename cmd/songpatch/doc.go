// Package main hosts the songpatch CLI entrypoint and command graph.
//
// The Cobra command tree resolves the tool configuration, builds the logger,
// and hands each invocation to the pipeline package. Commands stay thin:
// validation, patch compilation, registration, and history live in internal
// packages and are only rendered here.
package main
