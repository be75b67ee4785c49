package testsupport

import (
	"context"
	"testing"
	"time"

	"clipline/internal/config"
	"clipline/internal/job"
	"clipline/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// NewJob inserts a queued job for tests using the provided store.
func NewJob(t testing.TB, s *store.Store, req job.Request) *job.Job {
	t.Helper()

	j := job.New(req, time.Now().UTC())
	if err := s.InsertJob(context.Background(), j); err != nil {
		t.Fatalf("store.InsertJob: %v", err)
	}
	return j
}
