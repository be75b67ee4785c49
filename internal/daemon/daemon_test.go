package daemon_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"clipline/internal/daemon"
	"clipline/internal/engine"
	"clipline/internal/job"
	"clipline/internal/logging"
	"clipline/internal/testsupport"
)

func newDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.LLM.APIKey = ""
	st := testsupport.MustOpenStore(t, cfg)
	eng := engine.New(cfg, st, engine.Deps{}, logging.NewNop())
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	})
	d, err := daemon.New(cfg, st, eng, handler, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Stop()
	})
	return d
}

func TestDaemonStartStop(t *testing.T) {
	d := newDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !d.Running() {
		t.Fatal("expected daemon to report running")
	}
	if d.Addr() == "" {
		t.Fatal("expected a bound API address")
	}

	resp, err := http.Get("http://" + d.Addr() + "/")
	if err != nil {
		t.Fatalf("api request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from api, got %d", resp.StatusCode)
	}

	// Second start should fail while running.
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	if d.Running() {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonStopsOnContextCancel(t *testing.T) {
	d := newDaemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for d.Running() {
		if time.Now().After(deadline) {
			t.Fatal("daemon did not stop after context cancellation")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDaemonResetsInterruptedJobs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.LLM.APIKey = ""
	st := testsupport.MustOpenStore(t, cfg)
	eng := engine.New(cfg, st, engine.Deps{}, logging.NewNop())

	j := testsupport.NewJob(t, st, job.Request{
		JobID:      "job-interrupted",
		SourcePath: "/tmp/in.mp4",
		Duration:   10,
	})
	if err := st.UpdateJobStatus(context.Background(), j.ID, job.Running(job.StageRemoveSilence, 0.5)); err != nil {
		t.Fatalf("update status: %v", err)
	}

	d, err := daemon.New(cfg, st, eng, http.NewServeMux(), logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(d.Stop)

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	record, err := st.GetJob(context.Background(), j.ID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if record.Status.State != job.StateFailed {
		t.Fatalf("expected interrupted job marked failed, got %s", record.Status.State)
	}
}

func TestDaemonRejectsMissingDependencies(t *testing.T) {
	if _, err := daemon.New(nil, nil, nil, nil, nil); err == nil {
		t.Fatal("expected an error for nil dependencies")
	}
}
