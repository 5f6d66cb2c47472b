package overlay

import (
	"testing"

	"inputoverlay/internal/input"

	"github.com/stretchr/testify/assert"
)

func TestResolveKeyName(t *testing.T) {
	tests := []struct {
		key  input.Key
		want string
	}{
		{input.KeyName("ctrl_l"), "Ctrl"},
		{input.KeyName("RightCtrl"), "Ctrl"},
		{input.KeyName("shift_r"), "Shift"},
		{input.KeyName("alt_gr"), "Alt"},
		{input.KeyName("leftmeta"), "Cmd"},
		{input.KeyName("space"), "Space"},
		{input.KeyName("return"), "Enter"},
		{input.KeyName("backspace"), "Backspace"},
		{input.KeyName("tab"), "Tab"},
		{input.KeyName("escape"), "Esc"},
		{input.KeyName("caps_lock"), "Caps"},
		{input.KeyName("f5"), "F5"},
		{input.KeyName("page_down"), "PAGE_DOWN"},
		{input.KeyChar('a'), "A"},
		{input.KeyChar('A'), "A"},
		{input.KeyChar('/'), "/"},
		{input.Key{Code: 255}, "<255>"},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveKeyName(tt.key))
		})
	}
}

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "A", DisplayLabel("'A'"))
	assert.Equal(t, "'", DisplayLabel("'"))
	assert.Empty(t, DisplayLabel(""))
	assert.Equal(t, "Backspace", DisplayLabel("Backspace"))
	assert.Equal(t, "MEDIA_PLAY", DisplayLabel("MEDIA_PLAY"))
	assert.Equal(t, Placeholder, DisplayLabel("MEDIA_VOLUME_UP"))
}

func TestSortLabelsGroupsShortFirst(t *testing.T) {
	labels := []string{"Ctrl", "B", "A"}
	SortLabels(labels)
	assert.Equal(t, []string{"A", "B", "Ctrl"}, labels)

	labels = []string{"Shift", "Z", "Alt", "1", "F1"}
	SortLabels(labels)
	assert.Equal(t, []string{"1", "Z", "Alt", "F1", "Shift"}, labels)
}

func TestKeyLabelsCollapseAndDedupe(t *testing.T) {
	got := KeyLabels([]string{"MEDIA_VOLUME_UP", "Ctrl", "MEDIA_VOLUME_DOWN", "A"})
	assert.Equal(t, []string{"A", "...", "Ctrl"}, got)
}

func TestKeyLabelOrderingScenario(t *testing.T) {
	assert.Equal(t, "A + B + Ctrl", joinKeys(KeyLabels([]string{"A", "Ctrl", "B"})))
	assert.Equal(t, []string{"'", "A"}, KeyLabels([]string{"'", "A"}), "apostrophe key stays visible")
}
