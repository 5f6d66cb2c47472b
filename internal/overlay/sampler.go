package overlay

import (
	"context"
	"time"

	"inputoverlay/internal/input"
)

// Surface is the drawing side of the overlay.
type Surface interface {
	// Present receives the snapshot for the current frame.
	Present(Snapshot)
	// Closed reports that the surface has been torn down.
	Closed() bool
}

// Sampler composes one Snapshot per frame from the shared stores.
type Sampler struct {
	state    *InputState
	motion   *Motion
	interval time.Duration
}

// NewSampler creates a sampler reading state and motion.
func NewSampler(state *InputState, motion *Motion, s Settings) *Sampler {
	return &Sampler{state: state, motion: motion, interval: s.FrameInterval}
}

// Buttons reports the activity of the three buttons and both scroll
// directions. It reads every mouse identifier at one timestamp, so expired
// entries of other buttons are evicted too.
func (sm *Sampler) Buttons() ButtonActivity {
	var a ButtonActivity
	for _, name := range sm.state.Active(Mouse) {
		switch name {
		case string(input.ButtonLeft):
			a.Left = true
		case string(input.ButtonMiddle):
			a.Middle = true
		case string(input.ButtonRight):
			a.Right = true
		case ScrollUp:
			a.ScrollUp = true
		case ScrollDown:
			a.ScrollDown = true
		}
	}
	return a
}

// Sample builds the snapshot for this frame and advances the motion
// smoother by one tick.
func (sm *Sampler) Sample() Snapshot {
	buttons := sm.Buttons()
	keys := KeyLabels(sm.state.Active(Keyboard))
	dotX, dotY := sm.motion.Tick()

	return Snapshot{
		Icon:       buttons.Icon(),
		MouseLabel: joinMouse(buttons.Tokens()),
		KeyLabel:   joinKeys(keys),
		DotX:       dotX,
		DotY:       dotY,
		Buttons:    buttons,
		Keys:       keys,
	}
}

// Step samples one frame into surface. It does nothing and returns false
// when the surface is gone.
func (sm *Sampler) Step(surface Surface) bool {
	if surface == nil || surface.Closed() {
		return false
	}
	surface.Present(sm.Sample())
	return true
}

// Run steps every frame interval until ctx is done or the surface closes.
func (sm *Sampler) Run(ctx context.Context, surface Surface) error {
	ticker := time.NewTicker(sm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !sm.Step(surface) {
				return nil
			}
		}
	}
}

// Broadcast presents each snapshot to every live surface. It reports
// closed once all of its surfaces are.
type Broadcast []Surface

func (b Broadcast) Present(s Snapshot) {
	for _, surface := range b {
		if surface != nil && !surface.Closed() {
			surface.Present(s)
		}
	}
}

func (b Broadcast) Closed() bool {
	for _, surface := range b {
		if surface != nil && !surface.Closed() {
			return false
		}
	}
	return true
}
