package overlay

import (
	"sort"
	"strings"
	"unicode/utf8"

	"inputoverlay/internal/input"
)

// Placeholder replaces key labels too long to display.
const Placeholder = "..."

const maxLabelLen = 10

var modifierNames = map[string]string{
	"ctrl": "Ctrl", "ctrl_l": "Ctrl", "ctrl_r": "Ctrl", "leftctrl": "Ctrl", "rightctrl": "Ctrl", "control": "Ctrl",
	"shift": "Shift", "shift_l": "Shift", "shift_r": "Shift", "leftshift": "Shift", "rightshift": "Shift",
	"alt": "Alt", "alt_l": "Alt", "alt_r": "Alt", "alt_gr": "Alt", "leftalt": "Alt", "rightalt": "Alt", "option": "Alt",
	"cmd": "Cmd", "cmd_l": "Cmd", "cmd_r": "Cmd", "leftmeta": "Cmd", "rightmeta": "Cmd", "super": "Cmd", "win": "Cmd",
	"space":     "Space",
	"enter":     "Enter",
	"return":    "Enter",
	"backspace": "Backspace",
	"tab":       "Tab",
	"esc":       "Esc",
	"escape":    "Esc",
	"caps_lock": "Caps",
	"capslock":  "Caps",
}

// ResolveKeyName maps a raw key token to its identifier. Modifiers get
// their fixed short names, other named keys and characters are upper-cased,
// and anything else falls back to the token's generic form.
func ResolveKeyName(k input.Key) string {
	if k.Name != "" {
		name := strings.ToLower(k.Name)
		if short, ok := modifierNames[name]; ok {
			return short
		}
		return strings.ToUpper(name)
	}
	if k.Char != 0 && k.Char != utf8.RuneError {
		return strings.ToUpper(string(k.Char))
	}
	return k.String()
}

// DisplayLabel normalizes an identifier for the keyboard label. Quotes are
// stripped unless the identifier is nothing but quotes (the apostrophe key).
func DisplayLabel(name string) string {
	s := strings.ReplaceAll(name, "'", "")
	if s == "" {
		s = name
	}
	if utf8.RuneCountInString(s) > maxLabelLen {
		return Placeholder
	}
	return s
}

// SortLabels orders labels with display length < 2 first, then
// lexicographically within each group.
func SortLabels(labels []string) {
	sort.SliceStable(labels, func(i, j int) bool {
		si := utf8.RuneCountInString(labels[i]) < 2
		sj := utf8.RuneCountInString(labels[j]) < 2
		if si != sj {
			return si
		}
		return labels[i] < labels[j]
	})
}

// KeyLabels turns active key identifiers into the ordered, de-duplicated
// list shown on the keyboard label.
func KeyLabels(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		label := DisplayLabel(name)
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	SortLabels(out)
	return out
}
