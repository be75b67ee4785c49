// Package transform executes deterministic ffmpeg transformations.
//
// The Executor builds one argument list per operation (trim, speed change
// with chained atempo, fade-out, crop, silence-cut extract/join) and treats
// any non-zero exit or missing output as a transcode-failed error carrying
// the tail of ffmpeg's own diagnostics. It holds no state between calls, so a
// single Executor serves every job.
package transform
