package overlay

import (
	"math"
	"sync"
)

// restOffset is the dot offset below which the displayed vector snaps to
// zero, so decay ends instead of approaching rest forever.
const restOffset = 0.05

// Motion accumulates pointer deltas between frames and eases a displayed
// vector toward them once per frame.
type Motion struct {
	mu sync.Mutex

	targetX, targetY   float64
	displayX, displayY float64

	lastX, lastY int
	hasBaseline  bool

	decay       float64
	sensitivity float64
	maxRange    float64
}

// NewMotion builds a smoother from the motion fields of s.
func NewMotion(s Settings) *Motion {
	return &Motion{
		decay:       s.DecayFactor,
		sensitivity: s.Sensitivity,
		maxRange:    s.MaxRange,
	}
}

// Sample records an absolute pointer position. The first sample after
// construction or ResetBaseline only sets the baseline.
func (m *Motion) Sample(x, y int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasBaseline {
		m.lastX, m.lastY = x, y
		m.hasBaseline = true
		return
	}
	m.targetX += float64(x - m.lastX)
	m.targetY += float64(y - m.lastY)
	m.lastX, m.lastY = x, y
}

// Add accumulates a relative delta, for devices that report no absolute
// position.
func (m *Motion) Add(dx, dy float64) {
	m.mu.Lock()
	m.targetX += dx
	m.targetY += dy
	m.mu.Unlock()
}

// ResetBaseline forgets the last absolute position.
func (m *Motion) ResetBaseline() {
	m.mu.Lock()
	m.hasBaseline = false
	m.mu.Unlock()
}

// Tick advances one frame: the displayed vector moves toward the pending
// target by the decay factor, the target is consumed, and the clamped,
// sensitivity-scaled dot offset is returned. A component whose offset
// would be under restOffset is set to exactly zero.
func (m *Motion) Tick() (offsetX, offsetY float64) {
	m.mu.Lock()
	m.displayX = m.settle(m.displayX + (m.targetX-m.displayX)*m.decay)
	m.displayY = m.settle(m.displayY + (m.targetY-m.displayY)*m.decay)
	m.targetX, m.targetY = 0, 0
	dx, dy := m.displayX, m.displayY
	m.mu.Unlock()

	return m.Offset(dx, dy)
}

func (m *Motion) settle(v float64) float64 {
	if math.Abs(v*m.sensitivity) < restOffset {
		return 0
	}
	return v
}

func (m *Motion) displayed() (dx, dy float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.displayX, m.displayY
}

// Offset scales a displayed vector into a clamped dot offset.
func (m *Motion) Offset(dx, dy float64) (float64, float64) {
	return clamp(dx*m.sensitivity, m.maxRange), clamp(dy*m.sensitivity, m.maxRange)
}

func clamp(v, limit float64) float64 {
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
