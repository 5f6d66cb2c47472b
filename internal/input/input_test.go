package input

import (
	"fmt"
	"testing"
)

type recordingHandler struct {
	calls []string
}

func (r *recordingHandler) OnKeyDown(k Key)        { r.calls = append(r.calls, "down:"+k.String()) }
func (r *recordingHandler) OnKeyUp(k Key)          { r.calls = append(r.calls, "up:"+k.String()) }
func (r *recordingHandler) OnButtonDown(b Button)  { r.calls = append(r.calls, "bdown:"+string(b)) }
func (r *recordingHandler) OnButtonUp(b Button)    { r.calls = append(r.calls, "bup:"+string(b)) }
func (r *recordingHandler) OnPointerMove(x, y int) { r.calls = append(r.calls, "move") }
func (r *recordingHandler) OnPointerDelta(dx, dy int) {
	r.calls = append(r.calls, fmt.Sprintf("delta:%d,%d", dx, dy))
}
func (r *recordingHandler) OnScroll(sign int) {
	if sign > 0 {
		r.calls = append(r.calls, "scroll:up")
	} else {
		r.calls = append(r.calls, "scroll:down")
	}
}

// TestKeyString tests the fallback naming of key tokens
func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyName("Ctrl_L"), "ctrl_l"},
		{KeyChar('a'), "a"},
		{Key{Code: 255}, "<255>"},
		{Key{Name: "space", Char: ' ', Code: 32}, "space"},
	}

	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("Key%+v.String() = %q, want %q", tt.key, got, tt.want)
		}
	}
}

// TestDispatch tests that events are routed to the matching callback
func TestDispatch(t *testing.T) {
	h := &recordingHandler{}
	events := []Event{
		{Type: EventKeyDown, Key: KeyChar('x')},
		{Type: EventKeyUp, Key: KeyChar('x')},
		{Type: EventButtonDown, Button: ButtonLeft},
		{Type: EventButtonUp, Button: ButtonLeft},
		{Type: EventScroll, ScrollSign: 1},
		{Type: EventScroll, ScrollSign: -3},
		{Type: EventMove, X: 10, Y: 20},
		{Type: EventMotion, DX: 3, DY: -1},
	}
	for _, ev := range events {
		Dispatch(h, ev)
	}

	want := []string{"down:x", "up:x", "bdown:left", "bup:left", "scroll:up", "scroll:down", "move", "delta:3,-1"}
	if len(h.calls) != len(want) {
		t.Fatalf("Expected %d calls, got %d: %v", len(want), len(h.calls), h.calls)
	}
	for i := range want {
		if h.calls[i] != want[i] {
			t.Errorf("call %d: expected %q, got %q", i, want[i], h.calls[i])
		}
	}
}

// TestDispatchIgnoresEmptyEvents tests that a zero-sign scroll and a zero
// motion delta are dropped
func TestDispatchIgnoresEmptyEvents(t *testing.T) {
	h := &recordingHandler{}
	Dispatch(h, Event{Type: EventScroll})
	Dispatch(h, Event{Type: EventMotion})
	if len(h.calls) != 0 {
		t.Errorf("Expected no calls, got %v", h.calls)
	}
}

// TestScrollEvent tests that raw wheel deltas are reduced to a sign
func TestScrollEvent(t *testing.T) {
	tests := []struct {
		delta int
		want  int
	}{
		{120, 1},
		{1, 1},
		{-120, -1},
		{-2, -1},
		{0, 0},
	}

	for _, tt := range tests {
		ev := ScrollEvent(tt.delta)
		if ev.Type != EventScroll || ev.ScrollSign != tt.want {
			t.Errorf("ScrollEvent(%d) = %+v, expected sign %d", tt.delta, ev, tt.want)
		}
	}
}
