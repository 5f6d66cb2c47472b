package autostart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLaunchAgent(t *testing.T) {
	dir := t.TempDir()
	e := entry{Label: agentLabel, ExecutablePath: "/Applications/inputoverlay", Args: []string{"--config", "/tmp/c.yaml"}}
	require.NoError(t, writeLaunchAgent(dir, e))

	data, err := os.ReadFile(filepath.Join(dir, "com.inputoverlay.agent.plist"))
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, "<string>com.inputoverlay.agent</string>")
	assert.Contains(t, body, "<string>/Applications/inputoverlay</string>")
	assert.Contains(t, body, "<string>--config</string>")
	assert.Contains(t, body, "<string>/tmp/c.yaml</string>")
}

func TestWriteDesktopEntry(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "autostart")
	e := entry{ExecutablePath: "/opt/input overlay/bin", Args: []string{"--headless"}}
	require.NoError(t, writeDesktopEntry(dir, e))

	data, err := os.ReadFile(filepath.Join(dir, "inputoverlay.desktop"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[Desktop Entry]")
	assert.Contains(t, string(data), `Exec="/opt/input overlay/bin" --headless`)
}

func TestCommandLine(t *testing.T) {
	assert.Equal(t, "/usr/bin/x", commandLine("/usr/bin/x", nil))
	assert.Equal(t, `C:\x.exe --config "C:\My Config\c.json"`, commandLine(`C:\x.exe`, []string{"--config", `C:\My Config\c.json`}))
	assert.Equal(t, `"say \"hi\""`, commandLine(`say "hi"`, nil))
}

func TestXDGAutostartDirHonorsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := xdgAutostartDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "autostart"), got)
}
