package overlay

import (
	"sync"
	"testing"
	"time"

	"inputoverlay/internal/input"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observedKey struct {
	name string
	down bool
}

type recordingObserver struct {
	mu     sync.Mutex
	events []observedKey
}

func (r *recordingObserver) UpdateState(key string, isDown bool) {
	r.mu.Lock()
	r.events = append(r.events, observedKey{key, isDown})
	r.mu.Unlock()
}

func TestIngestKeyPressRelease(t *testing.T) {
	obs := &recordingObserver{}
	e := newEngine(obs)

	e.ingest.OnKeyDown(input.KeyChar('a'))
	assert.True(t, e.state.IsActive(Keyboard, "A"))

	e.ingest.OnKeyUp(input.KeyChar('A'))
	assert.True(t, e.state.IsActive(Keyboard, "A"), "persists after release")

	e.clock.Advance(2 * time.Second)
	assert.False(t, e.state.IsActive(Keyboard, "A"))

	assert.Equal(t, []observedKey{{"A", true}, {"A", false}}, obs.events)
}

func TestIngestModifierNames(t *testing.T) {
	e := newEngine(nil)

	e.ingest.OnKeyDown(input.KeyName("ctrl_l"))
	e.ingest.OnKeyDown(input.KeyName("ctrl_r"))
	assert.Equal(t, []string{"Ctrl"}, e.state.Candidates(Keyboard))

	e.ingest.OnKeyUp(input.KeyName("ctrl_r"))
	assert.True(t, e.state.IsActive(Keyboard, "Ctrl"))
}

func TestIngestButtons(t *testing.T) {
	e := newEngine(nil)

	e.ingest.OnButtonDown(input.ButtonLeft)
	e.ingest.OnButtonDown(input.ButtonLeft)
	assert.Equal(t, []string{"left"}, e.state.Candidates(Mouse))

	e.ingest.OnButtonUp(input.ButtonLeft)
	e.clock.Advance(time.Second)
	assert.True(t, e.state.IsActive(Mouse, "left"))
	e.clock.Advance(time.Second)
	assert.False(t, e.state.IsActive(Mouse, "left"))
}

func TestIngestScrollDirection(t *testing.T) {
	e := newEngine(nil)

	e.ingest.OnScroll(1)
	assert.True(t, e.state.IsActive(Mouse, ScrollUp))
	assert.False(t, e.state.IsActive(Mouse, ScrollDown))

	e.ingest.OnScroll(-3)
	assert.True(t, e.state.IsActive(Mouse, ScrollDown))
}

func TestIngestPointerMove(t *testing.T) {
	e := newEngine(nil)

	e.ingest.OnPointerMove(100, 100)
	e.ingest.OnPointerMove(110, 100)
	e.motion.Tick()

	dx, _ := e.motion.displayed()
	assert.InDelta(t, 2.0, dx, 1e-9)

	e.ingest.ResetMotion()
	e.ingest.OnPointerMove(900, 900)
	e.motion.Tick()
	dx, _ = e.motion.displayed()
	assert.InDelta(t, 1.6, dx, 1e-9, "no jump after baseline reset")
}

func TestIngestRelativeMotion(t *testing.T) {
	e := newEngine(nil)

	input.Dispatch(e.ingest, input.Event{Type: input.EventMotion, DX: 4})
	input.Dispatch(e.ingest, input.Event{Type: input.EventMotion, DX: 6, DY: -5})
	e.motion.Tick()

	dx, dy := e.motion.displayed()
	assert.InDelta(t, 2.0, dx, 1e-9)
	assert.InDelta(t, -1.0, dy, 1e-9)
}

func TestIngestDispatch(t *testing.T) {
	e := newEngine(nil)

	input.Dispatch(e.ingest, input.Event{Type: input.EventKeyDown, Key: input.KeyName("space")})
	input.Dispatch(e.ingest, input.Event{Type: input.EventButtonDown, Button: input.ButtonRight})
	input.Dispatch(e.ingest, input.Event{Type: input.EventScroll, ScrollSign: 0})

	assert.True(t, e.state.IsActive(Keyboard, "Space"))
	assert.True(t, e.state.IsActive(Mouse, "right"))
	assert.False(t, e.state.IsActive(Mouse, ScrollDown), "zero scroll is dropped")
}

func TestIngestCloseRejectsNewEvents(t *testing.T) {
	e := newEngine(nil)

	e.ingest.Close()
	e.ingest.Close()
	e.ingest.OnKeyDown(input.KeyChar('q'))
	e.ingest.OnButtonDown(input.ButtonMiddle)

	assert.Empty(t, e.state.Candidates(Keyboard))
	assert.Empty(t, e.state.Candidates(Mouse))
}

type blockingObserver struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingObserver) UpdateState(string, bool) {
	close(b.entered)
	<-b.release
}

func TestIngestCloseWaitsForInflight(t *testing.T) {
	obs := &blockingObserver{entered: make(chan struct{}), release: make(chan struct{})}
	e := newEngine(obs)

	go e.ingest.OnKeyDown(input.KeyChar('x'))
	<-obs.entered

	closed := make(chan struct{})
	go func() {
		e.ingest.Close()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a callback was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(obs.release)
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return after the callback finished")
	}
	require.True(t, e.state.IsActive(Keyboard, "X"))
}
