// Package txlog implements the checkpoint stack used by the scheduler to make
// speculative changes reversible.
//
// A Log holds a stack of named frames. Every mutation performed while at least
// one frame is open records an inverse Op into the top frame. Rollback replays
// those ops in reverse through an Applier; Commit folds them into the parent
// frame so that rolling back the parent still undoes the committed child.
//
// Ops are a tagged variant rather than captured closures, which keeps frames
// plain data and lets callers inspect what a rollback would do.
//
// Commit and Rollback must be called in strict LIFO order. The caller names
// the frame it expects to close; a mismatch is reported as
// core.ErrCheckpointMismatch.
package txlog
