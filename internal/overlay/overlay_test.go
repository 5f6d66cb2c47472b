package overlay

import (
	"sync"
	"time"
)

// fakeClock is a manually advanced clock safe for concurrent reads.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingSurface struct {
	mu     sync.Mutex
	frames []Snapshot
	closed bool
}

func (r *recordingSurface) Present(s Snapshot) {
	r.mu.Lock()
	r.frames = append(r.frames, s)
	r.mu.Unlock()
}

func (r *recordingSurface) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *recordingSurface) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

func (r *recordingSurface) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func (r *recordingSurface) last() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

type engine struct {
	clock   *fakeClock
	state   *InputState
	motion  *Motion
	ingest  *Ingestor
	sampler *Sampler
}

func newEngine(observer KeyObserver) *engine {
	settings := DefaultSettings()
	clock := newFakeClock()
	state := NewInputState(settings.PersistenceWindow, clock.Now)
	motion := NewMotion(settings)
	return &engine{
		clock:   clock,
		state:   state,
		motion:  motion,
		ingest:  NewIngestor(state, motion, observer),
		sampler: NewSampler(state, motion, settings),
	}
}
