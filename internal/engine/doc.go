// Package engine executes processing jobs: one goroutine per submission,
// driving the selected stages in their fixed order and publishing every
// status transition to subscribers and the store.
//
// Submission is fire-and-forget. Submit returns once the job is recorded and
// its Queued status is observable; progress is consumed through Subscribe or
// Status. Failures stop the pipeline at the failing stage and leave any
// intermediates on disk. A job that selects no stages produces a
// byte-identical copy of its source.
package engine
