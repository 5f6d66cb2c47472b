package window

import (
	"log"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// newLabelFace returns Go Bold at the given point size. basicfont has no
// arrow glyphs, so it is only a fallback.
func newLabelFace(points float64) font.Face {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		log.Printf("Window: Failed to parse label font: %v", err)
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    points,
		DPI:     96,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Printf("Window: Failed to create label face: %v", err)
		return basicfont.Face7x13
	}
	return face
}
