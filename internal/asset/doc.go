// Package asset lands uploaded media files and probes their metadata.
//
// Ingest validates the extension allow list, enforces the configured upload
// cap while streaming to disk, and fills the Asset record from ffprobe;
// uploads that cannot be probed or carry no playable duration are removed
// again before the error is returned.
package asset
