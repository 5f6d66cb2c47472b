// Package autostart provides auto-start functionality.
package autostart

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/template"
)

const (
	appName    = "inputoverlay"
	agentLabel = "com.inputoverlay.agent"
)

const macLaunchAgentPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.ExecutablePath}}</string>
{{- range .Args}}
        <string>{{.}}</string>
{{- end}}
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <false/>
</dict>
</plist>
`

const xdgDesktopEntry = `[Desktop Entry]
Type=Application
Name=Input Overlay
Comment=Show keyboard and mouse activity on screen
Exec={{.Command}}
X-GNOME-Autostart-enabled=true
NoDisplay=true
`

type entry struct {
	Label          string
	ExecutablePath string
	Args           []string
	Command        string
}

func newEntry(args []string) (entry, error) {
	execPath, err := os.Executable()
	if err != nil {
		return entry{}, fmt.Errorf("failed to get executable path: %w", err)
	}
	return entry{Label: agentLabel, ExecutablePath: execPath, Args: args}, nil
}

// Enable registers the overlay to start on login with the given arguments
func Enable(args ...string) error {
	e, err := newEntry(args)
	if err != nil {
		return err
	}

	switch runtime.GOOS {
	case "darwin":
		dir, err := launchAgentsDir()
		if err != nil {
			return err
		}
		return writeLaunchAgent(dir, e)
	case "windows":
		return enableWindows(e)
	case "linux", "freebsd", "openbsd", "netbsd":
		dir, err := xdgAutostartDir()
		if err != nil {
			return err
		}
		return writeDesktopEntry(dir, e)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// Disable removes the start-on-login registration
func Disable() error {
	switch runtime.GOOS {
	case "windows":
		return disableWindows()
	default:
		path, err := entryPath()
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
}

// IsEnabled checks if auto-start is enabled
func IsEnabled() bool {
	switch runtime.GOOS {
	case "windows":
		return isEnabledWindows()
	default:
		path, err := entryPath()
		if err != nil {
			return false
		}
		_, err = os.Stat(path)
		return err == nil
	}
}

func entryPath() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		dir, err := launchAgentsDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, agentLabel+".plist"), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		dir, err := xdgAutostartDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appName+".desktop"), nil
	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

func launchAgentsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "LaunchAgents"), nil
}

func xdgAutostartDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "autostart"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "autostart"), nil
}

func writeLaunchAgent(dir string, e entry) error {
	return writeTemplate(filepath.Join(dir, agentLabel+".plist"), macLaunchAgentPlist, e)
}

func writeDesktopEntry(dir string, e entry) error {
	e.Command = commandLine(e.ExecutablePath, e.Args)
	return writeTemplate(filepath.Join(dir, appName+".desktop"), xdgDesktopEntry, e)
}

func writeTemplate(path, text string, e entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmpl, err := template.New(filepath.Base(path)).Parse(text)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return tmpl.Execute(f, e)
}

// commandLine joins an executable and its arguments, quoting any part
// that contains spaces.
func commandLine(exe string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, p := range append([]string{exe}, args...) {
		if strings.ContainsAny(p, " \t\"") {
			p = `"` + strings.ReplaceAll(p, `"`, `\"`) + `"`
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}
