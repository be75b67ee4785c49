package broadcast

import (
	"testing"
	"time"

	"clipline/internal/job"
)

func receive(t *testing.T, ch <-chan job.Status) job.Status {
	t.Helper()
	select {
	case status, ok := <-ch:
		if !ok {
			t.Fatal("channel closed before expected status")
		}
		return status
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for status")
	}
	return job.Status{}
}

func expectClosed(t *testing.T, ch <-chan job.Status) {
	t.Helper()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel, got status")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for close")
	}
}

func TestSubscribeReplaysLatest(t *testing.T) {
	b := New()
	b.Publish("job-1", job.Queued())
	b.Publish("job-1", job.Running(job.StageRemoveSilence, 0.5))

	ch, cancel := b.Subscribe("job-1")
	defer cancel()

	status := receive(t, ch)
	if status.State != job.StateRunning || status.Stage != job.StageRemoveSilence {
		t.Fatalf("expected replay of latest running status, got %+v", status)
	}
}

func TestPublishDeliversToSubscribers(t *testing.T) {
	b := New()
	b.Publish("job-1", job.Queued())

	ch, cancel := b.Subscribe("job-1")
	defer cancel()
	receive(t, ch) // replayed queued

	b.Publish("job-1", job.Running(job.StageCropFace, 0.66))
	status := receive(t, ch)
	if status.Stage != job.StageCropFace || status.Percent != 0.66 {
		t.Fatalf("unexpected update %+v", status)
	}
}

func TestTerminalStatusClosesSubscribers(t *testing.T) {
	b := New()
	b.Publish("job-1", job.Queued())

	ch, cancel := b.Subscribe("job-1")
	defer cancel()
	receive(t, ch)

	b.Publish("job-1", job.Succeeded("/out/clip.mp4"))
	status := receive(t, ch)
	if status.State != job.StateSucceeded || status.OutputPath != "/out/clip.mp4" {
		t.Fatalf("unexpected terminal status %+v", status)
	}
	expectClosed(t, ch)
}

func TestSubscribeToTerminalJob(t *testing.T) {
	b := New()
	b.Publish("job-1", job.Queued())
	b.Publish("job-1", job.Failed(job.StageTranslateEdits, "translation-unparseable"))

	ch, cancel := b.Subscribe("job-1")
	defer cancel()

	status := receive(t, ch)
	if status.State != job.StateFailed || status.Reason != "translation-unparseable" {
		t.Fatalf("expected terminal replay, got %+v", status)
	}
	expectClosed(t, ch)
}

func TestSubscribeToUnknownJob(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe("nope")

	select {
	case status := <-ch:
		t.Fatalf("expected no replay for unknown job, got %+v", status)
	case <-time.After(20 * time.Millisecond):
	}

	// Updates published after subscribing still arrive.
	b.Publish("nope", job.Queued())
	if status := receive(t, ch); status.State != job.StateQueued {
		t.Fatalf("expected queued, got %+v", status)
	}
	cancel()
	expectClosed(t, ch)
}

func TestPublishIgnoresRegressions(t *testing.T) {
	b := New()
	b.Publish("job-1", job.Running(job.StageCropFace, 0.66))
	b.Publish("job-1", job.Queued())

	status, ok := b.Latest("job-1")
	if !ok || status.State != job.StateRunning {
		t.Fatalf("regression overwrote latest: %+v", status)
	}

	b.Publish("job-1", job.Succeeded("/out.mp4"))
	b.Publish("job-1", job.Running(job.StageCropFace, 0.66))
	status, _ = b.Latest("job-1")
	if status.State != job.StateSucceeded {
		t.Fatalf("terminal status overwritten: %+v", status)
	}
}

func TestSlowSubscriberStillSeesNewest(t *testing.T) {
	b := New()
	b.Publish("job-1", job.Queued())
	ch, cancel := b.Subscribe("job-1")
	defer cancel()

	// Flood well past the buffer without reading.
	for i := 0; i < subscriberBuffer*4; i++ {
		b.Publish("job-1", job.Running(job.StageTranslateEdits, float64(i%100)/100))
	}
	b.Publish("job-1", job.Succeeded("/out.mp4"))

	var last job.Status
	for status := range ch {
		last = status
	}
	if last.State != job.StateSucceeded {
		t.Fatalf("newest status lost, last seen %+v", last)
	}
}

func TestCancelDetachesSubscriber(t *testing.T) {
	b := New()
	b.Publish("job-1", job.Queued())
	ch, cancel := b.Subscribe("job-1")
	receive(t, ch)
	cancel()
	expectClosed(t, ch)

	// Publishing after cancel must not panic on the closed channel.
	b.Publish("job-1", job.Running(job.StageTranslateEdits, 0))
	cancel() // idempotent
}

func TestForgetDropsJob(t *testing.T) {
	b := New()
	b.Publish("job-1", job.Queued())
	ch, _ := b.Subscribe("job-1")
	receive(t, ch)

	b.Forget("job-1")
	expectClosed(t, ch)
	if _, ok := b.Latest("job-1"); ok {
		t.Fatal("expected latest cleared after Forget")
	}
}
