// Package config provides configuration management for the input overlay.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"inputoverlay/internal/overlay"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for config files with an unsupported extension
var ErrUnknownFormat = errors.New("unknown config format")

// Config represents the application configuration
type Config struct {
	// Overlay holds the input aggregation tuning
	Overlay OverlayConfig `json:"overlay" yaml:"overlay" toml:"overlay"`

	// Window holds layout and colors of the overlay window
	Window WindowConfig `json:"window" yaml:"window" toml:"window"`

	// Input configures the global input hooks
	Input InputConfig `json:"input" yaml:"input" toml:"input"`

	// API configures the local snapshot feed
	API APIConfig `json:"api" yaml:"api" toml:"api"`

	// General contains general application settings
	General GeneralConfig `json:"general" yaml:"general" toml:"general"`
}

// OverlayConfig contains the timing and motion constants
type OverlayConfig struct {
	// PersistenceSeconds is how long a released key or button stays visible
	PersistenceSeconds float64 `json:"persistence_seconds" yaml:"persistence_seconds" toml:"persistence_seconds"`

	// DecayFactor is the motion smoothing weight (0.1 smooth .. 1.0 snappy)
	DecayFactor float64 `json:"decay_factor" yaml:"decay_factor" toml:"decay_factor"`

	// Sensitivity scales pointer motion into dot offset
	Sensitivity float64 `json:"sensitivity" yaml:"sensitivity" toml:"sensitivity"`

	// MaxRange clamps the dot offset from the ring center
	MaxRange float64 `json:"max_range" yaml:"max_range" toml:"max_range"`

	// FrameIntervalMS is the sampling period in milliseconds
	FrameIntervalMS int `json:"frame_interval_ms" yaml:"frame_interval_ms" toml:"frame_interval_ms"`
}

// WindowConfig contains the overlay window layout
type WindowConfig struct {
	Title  string `json:"title" yaml:"title" toml:"title"`
	Width  int    `json:"width" yaml:"width" toml:"width"`
	Height int    `json:"height" yaml:"height" toml:"height"`

	// XOffset and YOffset place the window from the bottom-right screen corner
	XOffset int `json:"x_offset" yaml:"x_offset" toml:"x_offset"`
	YOffset int `json:"y_offset" yaml:"y_offset" toml:"y_offset"`

	// Alpha is the background opacity (0..1)
	Alpha float64 `json:"alpha" yaml:"alpha" toml:"alpha"`

	BackgroundColor string `json:"background_color" yaml:"background_color" toml:"background_color"`
	TextColor       string `json:"text_color" yaml:"text_color" toml:"text_color"`
	DotColor        string `json:"dot_color" yaml:"dot_color" toml:"dot_color"`
	RingColor       string `json:"ring_color" yaml:"ring_color" toml:"ring_color"`

	// FontSize is the label size in points
	FontSize float64 `json:"font_size" yaml:"font_size" toml:"font_size"`

	// DotSize is the radius of the motion dot
	DotSize int `json:"dot_size" yaml:"dot_size" toml:"dot_size"`

	// ImageSize is the edge length of the mouse icon
	ImageSize int `json:"image_size" yaml:"image_size" toml:"image_size"`

	// CanvasSize is the edge length of the motion ring area
	CanvasSize int `json:"canvas_size" yaml:"canvas_size" toml:"canvas_size"`

	// AssetDir holds mouse_<state>.png icons; empty means next to the executable
	AssetDir string `json:"asset_dir,omitempty" yaml:"asset_dir,omitempty" toml:"asset_dir,omitempty"`
}

// InputConfig contains input hook settings
type InputConfig struct {
	// Devices restricts Linux capture to these /dev/input paths
	Devices []string `json:"devices,omitempty" yaml:"devices,omitempty" toml:"devices,omitempty"`

	// ToggleHotkey shows or hides the overlay (e.g. "Ctrl+Alt+K")
	ToggleHotkey string `json:"toggle_hotkey,omitempty" yaml:"toggle_hotkey,omitempty" toml:"toggle_hotkey,omitempty"`

	// QuitHotkey exits the application
	QuitHotkey string `json:"quit_hotkey,omitempty" yaml:"quit_hotkey,omitempty" toml:"quit_hotkey,omitempty"`
}

// APIConfig contains the snapshot feed settings
type APIConfig struct {
	// Enabled starts the HTTP/WebSocket feed
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`

	// Listen is the bind address (default: 127.0.0.1:18181)
	Listen string `json:"listen" yaml:"listen" toml:"listen"`

	// Token is an optional bearer token for feed requests
	Token string `json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	// ShowTray shows the system tray icon
	ShowTray bool `json:"show_tray" yaml:"show_tray" toml:"show_tray"`

	// StartOnBoot registers the overlay to start on login
	StartOnBoot bool `json:"start_on_boot" yaml:"start_on_boot" toml:"start_on_boot"`

	// StartHidden starts with the overlay hidden
	StartHidden bool `json:"start_hidden" yaml:"start_hidden" toml:"start_hidden"`
}

// DefaultConfig returns a new Config with sensible defaults
func DefaultConfig() *Config {
	defaults := overlay.DefaultSettings()
	return &Config{
		Overlay: OverlayConfig{
			PersistenceSeconds: defaults.PersistenceWindow.Seconds(),
			DecayFactor:        defaults.DecayFactor,
			Sensitivity:        defaults.Sensitivity,
			MaxRange:           defaults.MaxRange,
			FrameIntervalMS:    int(defaults.FrameInterval / time.Millisecond),
		},
		Window: WindowConfig{
			Title:           "Input Overlay",
			Width:           320,
			Height:          100,
			XOffset:         20,
			YOffset:         80,
			Alpha:           0.90,
			BackgroundColor: "#222222",
			TextColor:       "#FFFFFF",
			DotColor:        "#34abeb",
			RingColor:       "#FFFFFF",
			FontSize:        10,
			DotSize:         4,
			ImageSize:       60,
			CanvasSize:      60,
		},
		Input: InputConfig{
			ToggleHotkey: "Ctrl+Alt+K",
		},
		API: APIConfig{
			Enabled: false,
			Listen:  "127.0.0.1:18181",
		},
		General: GeneralConfig{
			ShowTray:    true,
			StartOnBoot: false,
		},
	}
}

// Settings converts the overlay section into engine settings
func (c *Config) Settings() overlay.Settings {
	return overlay.Settings{
		PersistenceWindow: time.Duration(c.Overlay.PersistenceSeconds * float64(time.Second)),
		DecayFactor:       c.Overlay.DecayFactor,
		Sensitivity:       c.Overlay.Sensitivity,
		MaxRange:          c.Overlay.MaxRange,
		FrameInterval:     time.Duration(c.Overlay.FrameIntervalMS) * time.Millisecond,
	}
}

// Validate checks the configuration for values the overlay cannot use
func (c *Config) Validate() error {
	if err := c.Settings().Validate(); err != nil {
		return fmt.Errorf("overlay: %w", err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window: size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Window.Alpha < 0 || c.Window.Alpha > 1 {
		return fmt.Errorf("window: alpha must be in [0,1], got %g", c.Window.Alpha)
	}
	if c.Window.CanvasSize <= 0 || c.Window.ImageSize <= 0 || c.Window.DotSize <= 0 || c.Window.FontSize <= 0 {
		return fmt.Errorf("window: canvas, image, dot and font sizes must be positive")
	}
	for _, hex := range []string{c.Window.BackgroundColor, c.Window.TextColor, c.Window.DotColor, c.Window.RingColor} {
		if _, err := ParseHexColor(hex); err != nil {
			return fmt.Errorf("window: %w", err)
		}
	}
	if c.API.Enabled && c.API.Listen == "" {
		return fmt.Errorf("api: listen address is required when enabled")
	}
	return nil
}

// Manager handles loading and saving configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
}

// NewManager creates a configuration manager for the default per-user path
func NewManager() (*Manager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return NewManagerAt(configPath), nil
}

// NewManagerAt creates a configuration manager for an explicit file
func NewManagerAt(path string) *Manager {
	return &Manager{
		configPath: path,
		config:     DefaultConfig(),
	}
}

// getConfigPath returns the path to the configuration file
func getConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "inputoverlay")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "inputoverlay")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config")
		}
		configDir = filepath.Join(configDir, "inputoverlay")
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Path returns the file the manager reads and writes
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the configuration from disk. A missing file keeps the defaults.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if err := decode(m.configPath, data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", m.configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}
	m.config = cfg
	return nil
}

// Save writes the configuration to disk in the format implied by its extension
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := encode(m.configPath, m.config)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return err
	}

	log.Printf("Config: Saving configuration to %s (%d bytes)", m.configPath, len(data))
	return os.WriteFile(m.configPath, data, 0644)
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg := *m.config
	cfg.Input.Devices = append([]string(nil), m.config.Input.Devices...)
	return cfg
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", "":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}

func decode(path string, data []byte, cfg *Config) error {
	switch formatOf(path) {
	case "json":
		return json.Unmarshal(data, cfg)
	case "yaml":
		return yaml.Unmarshal(data, cfg)
	case "toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}
}

func encode(path string, cfg *Config) ([]byte, error) {
	switch formatOf(path) {
	case "json":
		return json.MarshalIndent(cfg, "", "  ")
	case "yaml":
		return yaml.Marshal(cfg)
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}
}
