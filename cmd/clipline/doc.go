// Package main hosts the Clipline CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the daemon: uploads, job listing and status streaming,
// share-link minting, preset management, health checks, and configuration
// scaffolding. Heavy lifting lives in the internal packages; commands here
// stay focused on flags, rendering, and ergonomics.
package main
