// Package job defines the processing request, stage list, and status model.
//
// Status is an enum with fields: queued, running (stage plus coarse percent),
// succeeded (output path), failed (stage plus reason). Transitions are
// monotonic; Advances encodes which successor statuses are legal so that
// publishers can drop regressions instead of propagating them.
package job
