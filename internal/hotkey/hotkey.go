// Package hotkey matches key chords against the live keyboard state.
//
// The Manager owns no hooks of its own. It is fed resolved key names by the
// overlay ingestor, so it sees exactly what the overlay sees.
package hotkey

import (
	"fmt"
	"log"
	"strings"
	"sync"
)

// Manager handles hotkey registration and matching
type Manager struct {
	mu           sync.RWMutex
	hotkeys      []*registeredHotkey
	currentState map[string]bool // keys currently held, upper-cased
}

type registeredHotkey struct {
	parts    []string // e.g., ["CTRL", "ALT", "K"]
	original string
	callback func()
}

// aliases maps alternate spellings onto the names the overlay resolves keys to
var aliases = map[string]string{
	"CONTROL": "CTRL",
	"OPTION":  "ALT",
	"META":    "CMD",
	"SUPER":   "CMD",
	"WIN":     "CMD",
	"ESCAPE":  "ESC",
	"RETURN":  "ENTER",
}

func normalize(part string) string {
	part = strings.ToUpper(strings.TrimSpace(part))
	if alias, ok := aliases[part]; ok {
		return alias
	}
	return part
}

// NewManager creates a new hotkey manager
func NewManager() *Manager {
	return &Manager{
		currentState: make(map[string]bool),
	}
}

// Register registers a hotkey string (e.g. "Ctrl+Alt+K") and a callback.
// An empty string registers nothing.
func (m *Manager) Register(hotkeyStr string, callback func()) (int, error) {
	if hotkeyStr == "" {
		return 0, nil
	}

	raw := strings.Split(hotkeyStr, "+")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		p = normalize(p)
		if p == "" {
			return 0, fmt.Errorf("invalid hotkey %q", hotkeyStr)
		}
		parts = append(parts, p)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.hotkeys = append(m.hotkeys, &registeredHotkey{
		parts:    parts,
		original: hotkeyStr,
		callback: callback,
	})

	return len(m.hotkeys) - 1, nil
}

// UpdateState updates the internal state of a key and checks for matches.
// Only the transition of a chord member from up to down can fire a chord,
// so autorepeat does not retrigger it.
func (m *Manager) UpdateState(key string, isDown bool) {
	key = normalize(key)

	m.mu.Lock()
	wasDown := m.currentState[key]
	if isDown {
		m.currentState[key] = true
	} else {
		delete(m.currentState, key)
	}
	m.mu.Unlock()

	if isDown && !wasDown {
		m.checkMatches(key)
	}
}

func (m *Manager) checkMatches(trigger string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, hk := range m.hotkeys {
		match := true
		involved := false
		// All parts of the hotkey must be in currentState
		for _, part := range hk.parts {
			if !m.currentState[part] {
				match = false
				break
			}
			if part == trigger {
				involved = true
			}
		}

		if match && involved {
			log.Printf("Hotkey triggered: %s", hk.original)
			go hk.callback()
		}
	}
}
