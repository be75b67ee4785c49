// Package store persists jobs, presets, and share tokens in SQLite.
//
// Job rows mirror the status the engine publishes so listings and
// post-restart inspection work from the database alone; execution state
// itself lives in process. Presets hold reusable processing options, and
// share tokens gate public playback of finished outputs by expiry and view
// count.
//
// Schema changes are applied through the embedded migrations directory;
// files run once each, in name order.
package store
