package window

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"inputoverlay/internal/overlay"
)

var placeholderColor = color.NRGBA{R: 80, G: 80, B: 80, A: 100}

// IconPath returns the asset file for an icon state
func IconPath(dir string, state overlay.IconState) string {
	return filepath.Join(dir, "mouse_"+string(state)+".png")
}

// DefaultAssetDir is the directory holding the executable
func DefaultAssetDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func loadIcon(path string, size int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst, nil
}

func placeholderIcon(size int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderColor), image.Point{}, draw.Src)
	return img
}

// loadIcons reads every icon state from dir. Missing or unreadable files
// get a translucent gray placeholder.
func loadIcons(dir string, size int) map[overlay.IconState]image.Image {
	icons := make(map[overlay.IconState]image.Image, len(overlay.AllIconStates))
	missing := 0
	for _, state := range overlay.AllIconStates {
		img, err := loadIcon(IconPath(dir, state), size)
		if err != nil {
			missing++
			img = placeholderIcon(size)
		}
		icons[state] = img
	}
	if missing > 0 {
		log.Printf("Window: %d of %d icons missing in %s, using placeholders", missing, len(overlay.AllIconStates), dir)
	}
	return icons
}
