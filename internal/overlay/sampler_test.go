package overlay

import (
	"context"
	"testing"
	"time"

	"inputoverlay/internal/input"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIconPriority(t *testing.T) {
	tests := []struct {
		name string
		a    ButtonActivity
		want IconState
	}{
		{"none", ButtonActivity{}, IconNeutral},
		{"left", ButtonActivity{Left: true}, IconLeft},
		{"middle", ButtonActivity{Middle: true}, IconMiddle},
		{"right", ButtonActivity{Right: true}, IconRight},
		{"left+right", ButtonActivity{Left: true, Right: true}, IconLeftRight},
		{"left+middle", ButtonActivity{Left: true, Middle: true}, IconLeftMiddle},
		{"middle+right", ButtonActivity{Middle: true, Right: true}, IconMiddleRight},
		{"all", ButtonActivity{Left: true, Middle: true, Right: true}, IconLeftMiddleRight},
		{"scroll down beats buttons", ButtonActivity{Left: true, Middle: true, Right: true, ScrollDown: true}, IconScrollDown},
		{"scroll up beats scroll down", ButtonActivity{ScrollUp: true, ScrollDown: true, Left: true}, IconScrollUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Icon())
		})
	}
}

func TestMouseTokensListEveryActiveItem(t *testing.T) {
	a := ButtonActivity{Left: true, Right: true, ScrollUp: true, ScrollDown: true}
	assert.Equal(t, "LMB RMB Scroll ↑ Scroll ↓", joinMouse(a.Tokens()))
	assert.Empty(t, ButtonActivity{}.Tokens())
}

func TestSampleComposesSnapshot(t *testing.T) {
	e := newEngine(nil)

	e.ingest.OnButtonDown(input.ButtonLeft)
	e.ingest.OnButtonDown(input.ButtonRight)
	e.ingest.OnKeyDown(input.KeyChar('b'))
	e.ingest.OnKeyDown(input.KeyName("ctrl_l"))
	e.ingest.OnKeyDown(input.KeyChar('a'))
	e.ingest.OnPointerMove(0, 0)
	e.ingest.OnPointerMove(10, 0)

	snap := e.sampler.Sample()

	assert.Equal(t, IconLeftRight, snap.Icon)
	assert.Equal(t, "LMB RMB", snap.MouseLabel)
	assert.Equal(t, "A + B + Ctrl", snap.KeyLabel)
	assert.Equal(t, []string{"A", "B", "Ctrl"}, snap.Keys)
	assert.InDelta(t, 8.0, snap.DotX, 1e-9)
	assert.InDelta(t, 0.0, snap.DotY, 1e-9)
}

func TestSampleScrollTakesIconButNotLabel(t *testing.T) {
	e := newEngine(nil)

	e.ingest.OnButtonDown(input.ButtonMiddle)
	e.ingest.OnScroll(-1)

	snap := e.sampler.Sample()
	assert.Equal(t, IconScrollDown, snap.Icon)
	assert.Equal(t, "MMB Scroll ↓", snap.MouseLabel)
}

func TestSampleAfterExpiry(t *testing.T) {
	e := newEngine(nil)

	e.ingest.OnKeyDown(input.KeyName("shift_l"))
	e.ingest.OnKeyUp(input.KeyName("shift_l"))
	e.ingest.OnScroll(1)
	e.clock.Advance(2 * time.Second)

	snap := e.sampler.Sample()
	assert.Equal(t, IconNeutral, snap.Icon)
	assert.Empty(t, snap.MouseLabel)
	assert.Empty(t, snap.KeyLabel)
	assert.Empty(t, e.state.Candidates(Keyboard))
	assert.Empty(t, e.state.Candidates(Mouse))
}

func TestSideButtonsExpireWithoutShowing(t *testing.T) {
	e := newEngine(nil)

	e.ingest.OnButtonDown(input.ButtonX1)
	e.ingest.OnButtonUp(input.ButtonX1)
	e.ingest.OnButtonUp(input.ButtonX2)

	snap := e.sampler.Sample()
	assert.Equal(t, IconNeutral, snap.Icon)
	assert.Empty(t, snap.MouseLabel)
	assert.Equal(t, []string{"x1", "x2"}, e.state.Active(Mouse), "side buttons are tracked")

	e.clock.Advance(2 * time.Second)
	e.sampler.Sample()
	assert.Empty(t, e.state.Candidates(Mouse), "expired side buttons are evicted")
}

func TestSingleImpulseChangesBoundedFrames(t *testing.T) {
	e := newEngine(nil)
	e.ingest.OnPointerMove(0, 0)
	e.ingest.OnPointerMove(10, 0)

	prev := e.sampler.Sample()
	changed := 0
	for i := 0; i < 10000; i++ {
		snap := e.sampler.Sample()
		if !snap.Equal(prev) {
			changed++
		}
		prev = snap
	}

	assert.Less(t, changed, 60, "one move must settle within a second of frames")
	assert.Zero(t, prev.DotX)
	assert.Zero(t, prev.DotY)
}

func TestSnapshotEqualAtDotPrecision(t *testing.T) {
	a := Snapshot{Icon: IconLeft, DotX: 1.01, DotY: -2}
	assert.True(t, a.Equal(Snapshot{Icon: IconLeft, DotX: 1.04, DotY: -2.02}))
	assert.False(t, a.Equal(Snapshot{Icon: IconLeft, DotX: 1.2, DotY: -2}))
	assert.False(t, a.Equal(Snapshot{Icon: IconRight, DotX: 1.01, DotY: -2}))
	assert.False(t, a.Equal(Snapshot{Icon: IconLeft, DotX: 1.01, DotY: -2, KeyLabel: "A"}))
}

func TestStepSkipsClosedSurface(t *testing.T) {
	e := newEngine(nil)

	assert.False(t, e.sampler.Step(nil))

	surface := &recordingSurface{}
	assert.True(t, e.sampler.Step(surface))
	surface.Close()
	assert.False(t, e.sampler.Step(surface))
	assert.Equal(t, 1, surface.count())
}

func TestRunStopsWhenSurfaceCloses(t *testing.T) {
	e := newEngine(nil)
	e.sampler.interval = time.Millisecond
	surface := &recordingSurface{}

	e.ingest.OnKeyDown(input.KeyName("tab"))

	done := make(chan error, 1)
	go func() { done <- e.sampler.Run(context.Background(), surface) }()

	require.Eventually(t, func() bool { return surface.count() >= 3 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, "Tab", surface.last().KeyLabel)

	surface.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after the surface closed")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e := newEngine(nil)
	e.sampler.interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.sampler.Run(ctx, &recordingSurface{}) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestBroadcast(t *testing.T) {
	a, b := &recordingSurface{}, &recordingSurface{}
	bc := Broadcast{a, b}

	bc.Present(Snapshot{KeyLabel: "A"})
	b.Close()
	bc.Present(Snapshot{KeyLabel: "B"})

	assert.Equal(t, 2, a.count())
	assert.Equal(t, 1, b.count())
	assert.False(t, bc.Closed())

	a.Close()
	assert.True(t, bc.Closed())
}

func TestSettingsValidate(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())

	s := DefaultSettings()
	s.DecayFactor = 0
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.DecayFactor = 1
	assert.NoError(t, s.Validate())

	s = DefaultSettings()
	s.Sensitivity = -1
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.MaxRange = 0
	assert.Error(t, s.Validate())

	s = DefaultSettings()
	s.PersistenceWindow = -time.Second
	assert.Error(t, s.Validate())
}
