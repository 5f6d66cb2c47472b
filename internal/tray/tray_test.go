package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"
)

// TestIconPNGDecodes tests that the generated icon is a valid PNG
func TestIconPNGDecodes(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(iconPNG()))
	if err != nil {
		t.Fatalf("Failed to decode icon: %v", err)
	}
	if b := img.Bounds(); b.Dx() != iconSize || b.Dy() != iconSize {
		t.Errorf("Expected %dx%d icon, got %v", iconSize, iconSize, b)
	}

	_, _, _, a := img.At(iconSize/2, iconSize/2).RGBA()
	if a == 0 {
		t.Error("Expected opaque dot in the center")
	}
	_, _, _, a = img.At(iconSize/2, iconSize/2-9).RGBA()
	if a != 0 {
		t.Error("Expected transparent gap between dot and ring")
	}
}

// TestWrapICO tests the ICO container header
func TestWrapICO(t *testing.T) {
	data := iconPNG()
	ico := wrapICO(data, iconSize)

	if len(ico) != 22+len(data) {
		t.Fatalf("Expected %d bytes, got %d", 22+len(data), len(ico))
	}
	if binary.LittleEndian.Uint16(ico[2:4]) != 1 || binary.LittleEndian.Uint16(ico[4:6]) != 1 {
		t.Error("Expected icon type with one image")
	}
	if ico[6] != iconSize || ico[7] != iconSize {
		t.Errorf("Expected size %d, got %dx%d", iconSize, ico[6], ico[7])
	}
	if got := binary.LittleEndian.Uint32(ico[14:18]); got != uint32(len(data)) {
		t.Errorf("Expected image length %d, got %d", len(data), got)
	}
	if got := binary.LittleEndian.Uint32(ico[18:22]); got != 22 {
		t.Errorf("Expected image offset 22, got %d", got)
	}
	if !bytes.Equal(ico[22:], data) {
		t.Error("Expected PNG payload after the header")
	}
}

// TestCheckedStateBeforeRun tests that check state is tracked before the menu exists
func TestCheckedStateBeforeRun(t *testing.T) {
	tr := New("Input Overlay", "tooltip")
	show := tr.AddCheckbox("Show overlay", true, nil)
	tr.AddSeparator()
	quit := tr.AddMenuItem("Quit", nil)

	if !tr.Checked(show) {
		t.Error("Expected initial checked state")
	}
	tr.SetItemChecked(show, false)
	if tr.Checked(show) {
		t.Error("Expected unchecked after SetItemChecked")
	}
	if tr.Checked(quit) || tr.Checked(1) || tr.Checked(99) {
		t.Error("Plain items, separators and unknown ids are never checked")
	}
}
