// Package broadcast fans job status updates out to subscribers.
//
// Each job keeps only its latest status: subscribing replays that status
// first and then delivers updates as they arrive, slow consumers lose
// intermediate updates rather than blocking publishers, and channels close
// once a terminal status lands.
package broadcast
