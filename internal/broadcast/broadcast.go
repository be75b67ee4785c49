package broadcast

import (
	"sync"

	"clipline/internal/job"
)

// subscriberBuffer sizes each subscriber channel. Slow readers lose
// intermediate updates, never the newest one.
const subscriberBuffer = 8

// Broadcaster fans job status updates out to live subscribers and remembers
// the latest status per job. It keeps no history beyond that.
type Broadcaster struct {
	mu     sync.Mutex
	latest map[string]job.Status
	subs   map[string]map[chan job.Status]struct{}
}

// New returns an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{
		latest: make(map[string]job.Status),
		subs:   make(map[string]map[chan job.Status]struct{}),
	}
}

// Publish records the status as the job's latest and delivers it to every
// subscriber. A terminal status closes and removes all subscriber channels.
// Updates that do not advance the job's state machine are ignored.
func (b *Broadcaster) Publish(jobID string, status job.Status) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if prev, ok := b.latest[jobID]; ok && !prev.Advances(status) {
		return
	}
	b.latest[jobID] = status

	for ch := range b.subs[jobID] {
		send(ch, status)
	}
	if status.Terminal() {
		for ch := range b.subs[jobID] {
			close(ch)
		}
		delete(b.subs, jobID)
	}
}

// Subscribe returns a channel carrying the job's status updates, starting
// with a replay of the latest known status. Subscribing to a job already in
// a terminal state delivers that status and closes the channel immediately.
// The returned cancel function detaches the subscriber; it is safe to call
// after the channel has been closed.
func (b *Broadcaster) Subscribe(jobID string) (<-chan job.Status, func()) {
	ch := make(chan job.Status, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	latest, known := b.latest[jobID]
	if known {
		send(ch, latest)
	}
	if known && latest.Terminal() {
		close(ch)
		return ch, func() {}
	}

	if b.subs[jobID] == nil {
		b.subs[jobID] = make(map[chan job.Status]struct{})
	}
	b.subs[jobID][ch] = struct{}{}

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if set, ok := b.subs[jobID]; ok {
			if _, live := set[ch]; live {
				delete(set, ch)
				close(ch)
				if len(set) == 0 {
					delete(b.subs, jobID)
				}
			}
		}
	}
	return ch, cancel
}

// Latest reports the most recent status published for the job.
func (b *Broadcaster) Latest(jobID string) (job.Status, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	status, ok := b.latest[jobID]
	return status, ok
}

// Forget drops all record of the job. Live subscribers are closed without a
// terminal status.
func (b *Broadcaster) Forget(jobID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.latest, jobID)
	for ch := range b.subs[jobID] {
		close(ch)
	}
	delete(b.subs, jobID)
}

// send delivers without blocking. When the buffer is full the oldest queued
// update is discarded so the newest is always enqueued.
func send(ch chan job.Status, status job.Status) {
	for {
		select {
		case ch <- status:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
