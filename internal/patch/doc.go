// Package patch compiles declarative audio edits into an ffmpeg filter graph.
//
// A Spec describes up to five optional edits (trim, fade in, fade out, start
// delay, end padding). Compile turns a non-empty Spec into a Graph whose
// filters always run in the same order regardless of how the Spec was
// written: atrim, afade (in), afade (out), adelay, apad. Absent edits are
// omitted entirely. An empty Spec compiles to nil, meaning no filtering is
// needed.
//
// Graph.String produces the single expression passed to ffmpeg's -af flag.
package patch
