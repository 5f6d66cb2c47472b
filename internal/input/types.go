// Package input provides cross-platform global keyboard and mouse hooks.
//
// A Hook delivers raw input to a Handler on a goroutine (or OS thread) owned
// by the platform backend. Handlers must be safe for concurrent use.
package input

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned by Start on platforms without a hook backend.
var ErrUnsupported = errors.New("input hooks not supported on this platform")

// EventType identifies the kind of a raw input event
type EventType string

const (
	EventKeyDown    EventType = "key_down"
	EventKeyUp      EventType = "key_up"
	EventButtonDown EventType = "button_down"
	EventButtonUp   EventType = "button_up"
	EventScroll     EventType = "scroll"
	EventMove       EventType = "move"
	EventMotion     EventType = "motion"
)

// Button names a mouse button
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonMiddle Button = "middle"
	ButtonRight  Button = "right"
	ButtonX1     Button = "x1"
	ButtonX2     Button = "x2"
)

// Key is the raw key token reported by a backend.
//
// Name is a lowercase symbolic name ("ctrl_l", "space", "f1", "leftctrl")
// and is empty for plain character keys. Char is the printable character,
// if any. Code is the platform scan/virtual-key code, kept for fallback naming.
type Key struct {
	Name string
	Char rune
	Code uint32
}

// KeyName returns a key with a symbolic name
func KeyName(name string) Key {
	return Key{Name: strings.ToLower(name)}
}

// KeyChar returns a key for a printable character
func KeyChar(c rune) Key {
	return Key{Char: c}
}

func (k Key) String() string {
	switch {
	case k.Name != "":
		return k.Name
	case k.Char != 0:
		return string(k.Char)
	default:
		return fmt.Sprintf("<%d>", k.Code)
	}
}

// Event is the normalized record every backend produces before handing it
// to Dispatch.
type Event struct {
	Type   EventType
	Key    Key
	Button Button

	// ScrollSign is +1 for wheel-up, -1 for wheel-down
	ScrollSign int

	// X, Y is an absolute pointer position (EventMove)
	X, Y int

	// DX, DY is a relative pointer delta (EventMotion)
	DX, DY int
}

// ScrollEvent builds a scroll record from a raw wheel delta. A zero delta
// yields a record Dispatch ignores.
func ScrollEvent(delta int) Event {
	sign := 0
	switch {
	case delta > 0:
		sign = 1
	case delta < 0:
		sign = -1
	}
	return Event{Type: EventScroll, ScrollSign: sign}
}

// Handler receives normalized input callbacks. Backends may call it from
// several goroutines at once.
type Handler interface {
	OnKeyDown(k Key)
	OnKeyUp(k Key)
	OnButtonDown(b Button)
	OnButtonUp(b Button)
	OnScroll(sign int)
	OnPointerMove(x, y int)
	OnPointerDelta(dx, dy int)
}

// Hook defines the interface for a global input hook
type Hook interface {
	Start(h Handler) error
	Stop() error
}

// DeviceInfo describes an input device node, as reported by ListDevices
type DeviceInfo struct {
	Path      string
	Name      string
	IsVirtual bool
	HasKeys   bool
	IsPointer bool
}

// Options configures a platform hook
type Options struct {
	// Devices restricts the Linux backend to these /dev/input paths.
	// Empty means every readable keyboard/pointer device.
	Devices []string
}

// Dispatch routes an event record to the matching Handler callback.
// Scroll events with a zero sign and zero motion deltas are ignored.
func Dispatch(h Handler, ev Event) {
	switch ev.Type {
	case EventKeyDown:
		h.OnKeyDown(ev.Key)
	case EventKeyUp:
		h.OnKeyUp(ev.Key)
	case EventButtonDown:
		h.OnButtonDown(ev.Button)
	case EventButtonUp:
		h.OnButtonUp(ev.Button)
	case EventScroll:
		if ev.ScrollSign != 0 {
			h.OnScroll(ev.ScrollSign)
		}
	case EventMove:
		h.OnPointerMove(ev.X, ev.Y)
	case EventMotion:
		if ev.DX != 0 || ev.DY != 0 {
			h.OnPointerDelta(ev.DX, ev.DY)
		}
	}
}
