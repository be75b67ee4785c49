// Package logging wires slog with clipline's console and JSON handlers and the
// context helpers that carry job and stage identity through the pipeline.
package logging
