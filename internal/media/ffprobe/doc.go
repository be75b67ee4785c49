// Package ffprobe wraps the ffprobe CLI for media inspection.
package ffprobe
