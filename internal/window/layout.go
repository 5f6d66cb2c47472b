package window

import (
	"unicode/utf8"

	"golang.org/x/image/font"

	"inputoverlay/internal/config"
)

// Horizontal padding between the text, icon and ring columns
const (
	edgePad   = 10
	columnPad = 5
	ringPad   = 2
	lineGap   = 4
	ellipsis  = "..."
)

// frameLayout is the pixel geometry of one overlay frame: labels on the
// left, the mouse icon in the middle and the motion ring on the right.
type frameLayout struct {
	width, height int

	textX, textWidth            int
	mouseBaseline, keysBaseline int

	imageX, imageY int

	ringCX, ringCY, ringR float32
}

func computeLayout(cfg config.WindowConfig, lineHeight, ascent int) frameLayout {
	l := frameLayout{width: cfg.Width, height: cfg.Height}

	canvasX := cfg.Width - edgePad - cfg.CanvasSize
	canvasY := (cfg.Height - cfg.CanvasSize) / 2
	l.ringCX = float32(canvasX) + float32(cfg.CanvasSize)/2
	l.ringCY = float32(canvasY) + float32(cfg.CanvasSize)/2
	l.ringR = float32(cfg.CanvasSize)/2 - ringPad

	l.imageX = canvasX - 2*columnPad - cfg.ImageSize
	l.imageY = (cfg.Height - cfg.ImageSize) / 2

	l.textX = edgePad
	l.textWidth = l.imageX - 2*columnPad - l.textX
	if l.textWidth < 0 {
		l.textWidth = 0
	}

	block := 2*lineHeight + lineGap
	top := (cfg.Height - block) / 2
	l.mouseBaseline = top + ascent
	l.keysBaseline = top + lineHeight + lineGap + ascent
	return l
}

// fitText shortens s with a trailing "..." until it fits in maxWidth pixels.
func fitText(face font.Face, s string, maxWidth int) string {
	if font.MeasureString(face, s).Ceil() <= maxWidth {
		return s
	}
	for len(s) > 0 {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
		if font.MeasureString(face, s+ellipsis).Ceil() <= maxWidth {
			return s + ellipsis
		}
	}
	return ""
}
