// Package silence finds the audible regions of a clip.
//
// It runs ffmpeg's silencedetect filter, parses the detection log from
// stderr, and returns the ordered, disjoint complement of the silent windows
// as keep segments. A clip whose audio is silence end to end yields a
// no-audible-content failure instead of an empty cut list.
package silence
