package overlay

import (
	"sync"

	"inputoverlay/internal/input"
)

// KeyObserver is told about every resolved key transition.
// hotkey.Manager satisfies it.
type KeyObserver interface {
	UpdateState(key string, isDown bool)
}

// Ingestor is the input.Handler that folds hook callbacks into an
// InputState and a Motion smoother.
type Ingestor struct {
	state    *InputState
	motion   *Motion
	observer KeyObserver

	gate     sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

var _ input.Handler = (*Ingestor)(nil)

// NewIngestor wires an ingestor to its stores. observer may be nil.
func NewIngestor(state *InputState, motion *Motion, observer KeyObserver) *Ingestor {
	return &Ingestor{state: state, motion: motion, observer: observer}
}

// enter admits a callback unless Close has started.
func (in *Ingestor) enter() bool {
	in.gate.RLock()
	defer in.gate.RUnlock()
	if in.closed {
		return false
	}
	in.inflight.Add(1)
	return true
}

func (in *Ingestor) OnKeyDown(k input.Key) {
	if !in.enter() {
		return
	}
	defer in.inflight.Done()

	name := ResolveKeyName(k)
	if name == "" {
		return
	}
	in.state.Press(Keyboard, name)
	if in.observer != nil {
		in.observer.UpdateState(name, true)
	}
}

func (in *Ingestor) OnKeyUp(k input.Key) {
	if !in.enter() {
		return
	}
	defer in.inflight.Done()

	name := ResolveKeyName(k)
	if name == "" {
		return
	}
	in.state.Release(Keyboard, name)
	if in.observer != nil {
		in.observer.UpdateState(name, false)
	}
}

func (in *Ingestor) OnButtonDown(b input.Button) {
	if !in.enter() {
		return
	}
	defer in.inflight.Done()

	if b != "" {
		in.state.Press(Mouse, string(b))
	}
}

func (in *Ingestor) OnButtonUp(b input.Button) {
	if !in.enter() {
		return
	}
	defer in.inflight.Done()

	if b != "" {
		in.state.Release(Mouse, string(b))
	}
}

// OnScroll pulses scroll_up for a positive sign and scroll_down otherwise.
func (in *Ingestor) OnScroll(sign int) {
	if !in.enter() {
		return
	}
	defer in.inflight.Done()

	if sign > 0 {
		in.state.Pulse(Mouse, ScrollUp)
	} else {
		in.state.Pulse(Mouse, ScrollDown)
	}
}

func (in *Ingestor) OnPointerMove(x, y int) {
	if !in.enter() {
		return
	}
	defer in.inflight.Done()

	in.motion.Sample(x, y)
}

// OnPointerDelta feeds a relative pointer delta straight into the smoother.
func (in *Ingestor) OnPointerDelta(dx, dy int) {
	if !in.enter() {
		return
	}
	defer in.inflight.Done()

	in.motion.Add(float64(dx), float64(dy))
}

// ResetMotion drops the pointer baseline so the next sample after a hook
// restart does not register as a jump.
func (in *Ingestor) ResetMotion() {
	in.motion.ResetBaseline()
}

// Close stops admitting callbacks and waits for in-flight ones to finish.
// It is safe to call more than once.
func (in *Ingestor) Close() {
	in.gate.Lock()
	in.closed = true
	in.gate.Unlock()
	in.inflight.Wait()
}
