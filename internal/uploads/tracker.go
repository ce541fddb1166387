package uploads

import (
	"log/slog"
	"sync"
	"time"
)

// Tracker counts in-flight upload and finalize requests so shutdown can
// drain them instead of cutting connections mid-chunk.
type Tracker struct {
	mu     sync.Mutex
	active int
	idle   chan struct{} // closed when active drops to zero; replaced on reuse
}

// NewTracker creates an upload tracker.
func NewTracker() *Tracker {
	idle := make(chan struct{})
	close(idle)
	return &Tracker{idle: idle}
}

// Start registers an in-flight request.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == 0 {
		t.idle = make(chan struct{})
	}
	t.active++
}

// Finish deregisters an in-flight request.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active--
	if t.active <= 0 {
		t.active = 0
		close(t.idle)
	}
}

// Active returns the number of in-flight requests.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Wait blocks until all in-flight requests finish or the timeout elapses.
// Returns true if the tracker drained cleanly.
func (t *Tracker) Wait(timeout time.Duration) bool {
	t.mu.Lock()
	idle := t.idle
	active := t.active
	t.mu.Unlock()

	if active == 0 {
		return true
	}
	slog.Info("waiting for in-flight uploads", "active", active)

	select {
	case <-idle:
		return true
	case <-time.After(timeout):
		slog.Warn("shutdown timeout with uploads still in flight", "active", t.Active())
		return false
	}
}
