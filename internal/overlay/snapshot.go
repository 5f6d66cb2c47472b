package overlay

import (
	"math"
	"strings"
)

// IconState is the single glyph chosen to represent mouse activity.
// Its string value doubles as the asset key.
type IconState string

const (
	IconNeutral         IconState = "neutral"
	IconLeft            IconState = "lmb"
	IconMiddle          IconState = "mmb"
	IconRight           IconState = "rmb"
	IconLeftMiddle      IconState = "lmb_mmb"
	IconLeftRight       IconState = "lmb_rmb"
	IconMiddleRight     IconState = "mmb_rmb"
	IconLeftMiddleRight IconState = "lmb_mmb_rmb"
	IconScrollUp        IconState = "scroll_up"
	IconScrollDown      IconState = "scroll_down"
)

// AllIconStates lists every icon state, neutral first.
var AllIconStates = []IconState{
	IconNeutral,
	IconLeft, IconMiddle, IconRight,
	IconLeftMiddle, IconLeftRight, IconMiddleRight, IconLeftMiddleRight,
	IconScrollUp, IconScrollDown,
}

// ButtonActivity is the visual activity of the mouse identifiers.
type ButtonActivity struct {
	Left       bool `json:"left"`
	Middle     bool `json:"middle"`
	Right      bool `json:"right"`
	ScrollUp   bool `json:"scroll_up"`
	ScrollDown bool `json:"scroll_down"`
}

// Icon picks the icon by strict priority: scroll up, scroll down, then
// button combinations from widest to single buttons.
func (a ButtonActivity) Icon() IconState {
	switch {
	case a.ScrollUp:
		return IconScrollUp
	case a.ScrollDown:
		return IconScrollDown
	case a.Left && a.Middle && a.Right:
		return IconLeftMiddleRight
	case a.Left && a.Middle:
		return IconLeftMiddle
	case a.Left && a.Right:
		return IconLeftRight
	case a.Middle && a.Right:
		return IconMiddleRight
	case a.Left:
		return IconLeft
	case a.Middle:
		return IconMiddle
	case a.Right:
		return IconRight
	default:
		return IconNeutral
	}
}

// Tokens lists a short label for every active item, independent of Icon.
func (a ButtonActivity) Tokens() []string {
	var out []string
	if a.Left {
		out = append(out, "LMB")
	}
	if a.Middle {
		out = append(out, "MMB")
	}
	if a.Right {
		out = append(out, "RMB")
	}
	if a.ScrollUp {
		out = append(out, "Scroll ↑")
	}
	if a.ScrollDown {
		out = append(out, "Scroll ↓")
	}
	return out
}

// Snapshot is everything the drawing side needs for one frame.
type Snapshot struct {
	Icon       IconState      `json:"icon"`
	MouseLabel string         `json:"mouse_label"`
	KeyLabel   string         `json:"key_label"`
	DotX       float64        `json:"dot_x"`
	DotY       float64        `json:"dot_y"`
	Buttons    ButtonActivity `json:"buttons"`
	Keys       []string       `json:"keys"`
}

// dotPrecision is the finest dot offset step a surface can show.
const dotPrecision = 0.1

// Equal reports whether two snapshots would draw identically. Dot offsets
// are compared at dotPrecision.
func (s Snapshot) Equal(o Snapshot) bool {
	return s.Icon == o.Icon &&
		s.MouseLabel == o.MouseLabel &&
		s.KeyLabel == o.KeyLabel &&
		sameDot(s.DotX, o.DotX) &&
		sameDot(s.DotY, o.DotY)
}

func sameDot(a, b float64) bool {
	return math.Round(a/dotPrecision) == math.Round(b/dotPrecision)
}

const (
	mouseSeparator = " "
	keySeparator   = " + "
)

func joinMouse(tokens []string) string { return strings.Join(tokens, mouseSeparator) }
func joinKeys(labels []string) string  { return strings.Join(labels, keySeparator) }
