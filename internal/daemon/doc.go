// Package daemon ties the processing engine, job store, and HTTP API into a
// single lifecycle with flock-based locking to prevent multiple instances
// from sharing a database.
package daemon
