// Package overlay aggregates raw keyboard and mouse input into the
// time-windowed state an on-screen input display renders every frame.
//
// Ingestor writes into an InputState and a Motion smoother from hook
// threads; a Sampler reads them once per frame and hands a Snapshot to a
// Surface. All types are safe for concurrent use.
package overlay

import (
	"fmt"
	"time"
)

// Settings are the tuning constants of the engine. They are fixed for the
// lifetime of the components built from them.
type Settings struct {
	// PersistenceWindow is how long a released input still renders as active.
	PersistenceWindow time.Duration
	// DecayFactor is the per-frame smoothing weight in (0,1]. Higher is snappier.
	DecayFactor float64
	// Sensitivity scales the smoothed motion vector into dot offset units.
	Sensitivity float64
	// MaxRange clamps the dot offset on each axis.
	MaxRange float64
	// FrameInterval is the sampling period used by Sampler.Run.
	FrameInterval time.Duration
}

// DefaultSettings returns the stock tuning.
func DefaultSettings() Settings {
	return Settings{
		PersistenceWindow: 2 * time.Second,
		DecayFactor:       0.2,
		Sensitivity:       4.0,
		MaxRange:          25,
		FrameInterval:     16 * time.Millisecond,
	}
}

// Validate reports the first out-of-range value.
func (s Settings) Validate() error {
	if s.PersistenceWindow < 0 {
		return fmt.Errorf("persistence window must be >= 0, got %s", s.PersistenceWindow)
	}
	if s.DecayFactor <= 0 || s.DecayFactor > 1 {
		return fmt.Errorf("decay factor must be in (0,1], got %g", s.DecayFactor)
	}
	if s.Sensitivity <= 0 {
		return fmt.Errorf("sensitivity must be > 0, got %g", s.Sensitivity)
	}
	if s.MaxRange <= 0 {
		return fmt.Errorf("max range must be > 0, got %g", s.MaxRange)
	}
	if s.FrameInterval <= 0 {
		return fmt.Errorf("frame interval must be > 0, got %s", s.FrameInterval)
	}
	return nil
}
