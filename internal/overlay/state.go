package overlay

import (
	"sort"
	"sync"
	"time"
)

// Device is the class an identifier belongs to. Keys and buttons live in
// separate namespaces so a key named "left" never aliases the left button.
type Device uint8

const (
	Keyboard Device = iota
	Mouse
)

func (d Device) String() string {
	if d == Mouse {
		return "mouse"
	}
	return "keyboard"
}

// Synthetic mouse identifiers for wheel ticks.
const (
	ScrollUp   = "scroll_up"
	ScrollDown = "scroll_down"
)

type ident struct {
	device Device
	name   string
}

// InputState tracks which identifiers are held and which were released
// recently enough to still render.
type InputState struct {
	mu     sync.Mutex
	held   [2]map[string]struct{}
	expiry map[ident]time.Time
	window time.Duration
	now    func() time.Time
}

// NewInputState creates an empty store. A nil clock uses time.Now.
func NewInputState(window time.Duration, clock func() time.Time) *InputState {
	if clock == nil {
		clock = time.Now
	}
	return &InputState{
		held:   [2]map[string]struct{}{make(map[string]struct{}), make(map[string]struct{})},
		expiry: make(map[ident]time.Time),
		window: window,
		now:    clock,
	}
}

// Press marks name as physically held. Repeated presses are idempotent.
func (s *InputState) Press(d Device, name string) {
	s.mu.Lock()
	s.held[d][name] = struct{}{}
	s.mu.Unlock()
}

// Release drops name from the held set and starts its persistence window.
// Both changes happen under one lock so no reader sees neither.
func (s *InputState) Release(d Device, name string) {
	s.mu.Lock()
	delete(s.held[d], name)
	s.expiry[ident{d, name}] = s.now().Add(s.window)
	s.mu.Unlock()
}

// Pulse makes name active for one persistence window without holding it.
func (s *InputState) Pulse(d Device, name string) {
	s.mu.Lock()
	s.expiry[ident{d, name}] = s.now().Add(s.window)
	s.mu.Unlock()
}

// IsActive reports whether name is held or inside its persistence window.
// An expired entry is evicted as a side effect.
func (s *InputState) IsActive(d Device, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked(d, name, s.now())
}

func (s *InputState) activeLocked(d Device, name string, now time.Time) bool {
	if _, ok := s.held[d][name]; ok {
		return true
	}
	id := ident{d, name}
	until, ok := s.expiry[id]
	if !ok {
		return false
	}
	if now.Before(until) {
		return true
	}
	delete(s.expiry, id)
	return false
}

// Candidates returns the union of held and expiry-table names for d,
// sorted. Entries may already be expired; filter with IsActive.
func (s *InputState) Candidates(d Device) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candidatesLocked(d)
}

func (s *InputState) candidatesLocked(d Device) []string {
	seen := make(map[string]struct{}, len(s.held[d])+len(s.expiry))
	for name := range s.held[d] {
		seen[name] = struct{}{}
	}
	for id := range s.expiry {
		if id.device == d {
			seen[id.name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Active returns every visually active name for d, evaluated against a
// single timestamp. Expired entries found on the way are evicted.
func (s *InputState) Active(d Device) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var out []string
	for _, name := range s.candidatesLocked(d) {
		if s.activeLocked(d, name, now) {
			out = append(out, name)
		}
	}
	return out
}
