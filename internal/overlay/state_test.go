package overlay

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveFromPressThroughPersistenceWindow(t *testing.T) {
	clock := newFakeClock()
	s := NewInputState(2*time.Second, clock.Now)

	s.Press(Keyboard, "A")
	assert.True(t, s.IsActive(Keyboard, "A"))

	clock.Advance(10 * time.Second)
	assert.True(t, s.IsActive(Keyboard, "A"), "held keys never expire")

	s.Release(Keyboard, "A")
	assert.True(t, s.IsActive(Keyboard, "A"))

	clock.Advance(1999 * time.Millisecond)
	assert.True(t, s.IsActive(Keyboard, "A"))

	clock.Advance(time.Millisecond)
	assert.False(t, s.IsActive(Keyboard, "A"), "inactive exactly at expiry")
}

func TestRepeatedPressIsIdempotent(t *testing.T) {
	s := NewInputState(time.Second, newFakeClock().Now)

	for i := 0; i < 5; i++ {
		s.Press(Mouse, "left")
	}

	assert.True(t, s.IsActive(Mouse, "left"))
	assert.Equal(t, []string{"left"}, s.Candidates(Mouse))
}

func TestExpiredEntryIsEvictedOnRead(t *testing.T) {
	clock := newFakeClock()
	s := NewInputState(2*time.Second, clock.Now)

	s.Press(Keyboard, "Ctrl")
	s.Release(Keyboard, "Ctrl")
	require.Equal(t, []string{"Ctrl"}, s.Candidates(Keyboard))

	clock.Advance(3 * time.Second)
	assert.Equal(t, []string{"Ctrl"}, s.Candidates(Keyboard), "eviction is lazy")
	assert.False(t, s.IsActive(Keyboard, "Ctrl"))
	assert.Empty(t, s.Candidates(Keyboard))
}

func TestActiveEvictsExpired(t *testing.T) {
	clock := newFakeClock()
	s := NewInputState(time.Second, clock.Now)

	s.Release(Keyboard, "B")
	clock.Advance(500 * time.Millisecond)
	s.Press(Keyboard, "C")
	s.Release(Keyboard, "C")

	clock.Advance(600 * time.Millisecond)
	assert.Equal(t, []string{"C"}, s.Active(Keyboard))
	assert.Equal(t, []string{"C"}, s.Candidates(Keyboard))
}

func TestDeviceNamespacesAreDisjoint(t *testing.T) {
	s := NewInputState(time.Second, newFakeClock().Now)

	s.Press(Keyboard, "left")
	assert.True(t, s.IsActive(Keyboard, "left"))
	assert.False(t, s.IsActive(Mouse, "left"))
	assert.Empty(t, s.Candidates(Mouse))
}

func TestPulseHasNoHeldState(t *testing.T) {
	clock := newFakeClock()
	s := NewInputState(2*time.Second, clock.Now)

	s.Pulse(Mouse, ScrollUp)
	assert.True(t, s.IsActive(Mouse, ScrollUp))

	clock.Advance(2 * time.Second)
	assert.False(t, s.IsActive(Mouse, ScrollUp))
}

func TestReleaseRefreshesExpiry(t *testing.T) {
	clock := newFakeClock()
	s := NewInputState(2*time.Second, clock.Now)

	s.Release(Keyboard, "A")
	clock.Advance(1500 * time.Millisecond)
	s.Press(Keyboard, "A")
	s.Release(Keyboard, "A")
	clock.Advance(1500 * time.Millisecond)

	assert.True(t, s.IsActive(Keyboard, "A"))
}

func TestConcurrentPressReleaseAndRead(t *testing.T) {
	clock := newFakeClock()
	s := NewInputState(time.Second, clock.Now)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			name := fmt.Sprintf("K%d", w)
			for i := 0; i < 500; i++ {
				s.Press(Keyboard, name)
				s.Release(Keyboard, name)
			}
		}(w)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = s.Active(Keyboard)
			clock.Advance(time.Microsecond)
		}
	}()
	wg.Wait()

	assert.Len(t, s.Active(Keyboard), 8)
}
