// Package httpapi exposes the processing pipeline over HTTP: uploads,
// job status (polling and server-sent events), clip playback, share
// links, and preset management.
package httpapi
