// Input Overlay
// Shows recently pressed keys, mouse buttons and pointer motion in a small floating window
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"inputoverlay/internal/api"
	"inputoverlay/internal/autostart"
	"inputoverlay/internal/config"
	"inputoverlay/internal/hotkey"
	"inputoverlay/internal/input"
	"inputoverlay/internal/osutils"
	"inputoverlay/internal/overlay"
	"inputoverlay/internal/tray"
	"inputoverlay/internal/window"
)

var (
	version     = "0.1.0"
	configPath  = flag.String("config", "", "Path to the config file (.json, .yaml or .toml)")
	writeConfig = flag.Bool("write-config", false, "Write the default config to the config path and exit")
	headless    = flag.Bool("headless", false, "Run without the overlay window (snapshot feed only)")
	showVer     = flag.Bool("version", false, "Show version")
	autostartOp = flag.String("autostart", "", "Start on login: enable or disable")
	listDevs    = flag.Bool("list-devices", false, "List input devices (Linux)")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("inputoverlay version %s\n", version)
		return
	}

	if *listDevs {
		listDevices()
		return
	}

	if *autostartOp != "" {
		handleAutostart(*autostartOp)
		return
	}

	// Initialize config
	cfgMgr, err := newConfigManager()
	if err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	if *writeConfig {
		if err := cfgMgr.Save(); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Wrote default config to %s\n", cfgMgr.Path())
		return
	}

	if err := cfgMgr.Load(); err != nil {
		log.Printf("Warning: failed to load config, using defaults: %v", err)
	}

	runOverlay(cfgMgr.Get())
}

func newConfigManager() (*config.Manager, error) {
	if *configPath != "" {
		return config.NewManagerAt(*configPath), nil
	}
	return config.NewManager()
}

func listDevices() {
	devices, err := input.ListDevices()
	if err != nil {
		log.Fatalf("Failed to list input devices: %v", err)
	}

	fmt.Println("Input Devices:")
	fmt.Println("--------------")
	for _, dev := range devices {
		fmt.Printf("%s\n", dev.Path)
		fmt.Printf("  Name: %s\n", dev.Name)
		var kinds []string
		if dev.HasKeys {
			kinds = append(kinds, "keys")
		}
		if dev.IsPointer {
			kinds = append(kinds, "pointer")
		}
		if dev.IsVirtual {
			kinds = append(kinds, "virtual")
		}
		if len(kinds) > 0 {
			fmt.Printf("  Kind: %s\n", strings.Join(kinds, ", "))
		}
		fmt.Println()
	}
}

func handleAutostart(op string) {
	var err error
	switch op {
	case "enable":
		err = autostart.Enable(launchArgs()...)
	case "disable":
		err = autostart.Disable()
	default:
		log.Fatalf("Unknown --autostart value %q (want enable or disable)", op)
	}
	if err != nil {
		log.Fatalf("Autostart %s failed: %v", op, err)
	}
	fmt.Printf("Start on login: %sd\n", op)
}

// launchArgs are the flags a login item needs to start the same way
func launchArgs() []string {
	var args []string
	if *configPath != "" {
		args = append(args, "--config", *configPath)
	}
	if *headless {
		args = append(args, "--headless")
	}
	return args
}

// app holds the running components so hotkeys, tray and signals can reach them
type app struct {
	cfg     config.Config
	sampler *overlay.Sampler
	ingest  *overlay.Ingestor
	hook    input.Hook
	hkMgr   *hotkey.Manager

	apiServer *api.Server
	win       *window.Overlay

	tray        *tray.Tray
	trayRunning atomic.Bool
	showItem    int
	bootItem    int

	visible atomic.Bool

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func runOverlay(cfg config.Config) {
	log.Println("Input Overlay starting...")

	settings := cfg.Settings()
	state := overlay.NewInputState(settings.PersistenceWindow, nil)
	motion := overlay.NewMotion(settings)
	hkMgr := hotkey.NewManager()

	a := &app{
		cfg:     cfg,
		sampler: overlay.NewSampler(state, motion, settings),
		ingest:  overlay.NewIngestor(state, motion, hkMgr),
		hook:    input.NewHook(input.Options{Devices: cfg.Input.Devices}),
		hkMgr:   hkMgr,
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	if cfg.General.StartOnBoot && !autostart.IsEnabled() {
		if err := autostart.Enable(launchArgs()...); err != nil {
			log.Printf("Warning: failed to register start on login: %v", err)
		}
	}

	a.registerHotkeys()
	a.startAPI()

	if !*headless {
		win, err := window.New(cfg.Window, a.sampler)
		if err != nil {
			log.Fatalf("Failed to create overlay window: %v", err)
		}
		if a.apiServer != nil {
			win.Mirror(a.apiServer)
		}
		a.win = win
	}

	if cfg.General.ShowTray {
		a.buildTray()
	}
	a.setVisible(!cfg.General.StartHidden)

	a.startHook()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		a.shutdown()
	}()

	log.Println("Input Overlay running. Press Ctrl+C to stop.")
	if a.win != nil {
		a.runWindow(settings.FrameInterval)
	} else {
		a.runHeadless()
	}
	a.shutdown()
}

// runWindow blocks on the ebiten loop, which needs the main thread. The
// tray shares the main thread on macOS, so it is left out there.
func (a *app) runWindow(frameInterval time.Duration) {
	if a.tray != nil {
		if runtime.GOOS == "darwin" {
			log.Println("Tray: Not shown alongside the window on macOS")
		} else {
			a.trayRunning.Store(true)
			go a.tray.Run()
		}
	}

	if err := a.win.Run(frameInterval); err != nil {
		log.Printf("Window error: %v", err)
	}
}

// runHeadless samples on a ticker into the snapshot feed, or into the log
// when the feed is disabled.
func (a *app) runHeadless() {
	var surface overlay.Surface = &logSurface{}
	if a.apiServer != nil {
		surface = a.apiServer
	} else {
		log.Println("Headless without the API feed: frames are written to the log")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.sampler.Run(a.ctx, surface); err != nil && err != context.Canceled {
			log.Printf("Sampler stopped: %v", err)
		}
	}()

	if a.tray != nil {
		a.trayRunning.Store(true)
		a.tray.Run()
		return
	}
	<-done
}

func (a *app) startHook() {
	if hint := osutils.AccessHint(); hint != "" {
		log.Printf("Note: %s", hint)
	}

	a.ingest.ResetMotion()
	if err := a.hook.Start(a.ingest); err != nil {
		log.Printf("Warning: input hooks failed to start: %v", err)
		return
	}
	log.Println("Hook: Capturing keyboard and mouse")
}

func (a *app) startAPI() {
	if !a.cfg.API.Enabled {
		return
	}

	a.apiServer = api.NewServer(a.cfg.API, version, a.cfg.Settings().FrameInterval)

	// Ensure firewall rule exists on Windows when the feed is reachable from the LAN
	if runtime.GOOS == "windows" {
		if port, ok := lanPort(a.cfg.API.Listen); ok {
			go func() {
				if err := osutils.EnsureFirewallRule(port); err != nil {
					log.Printf("Firewall warning: %v", err)
				}
			}()
		}
	}

	go func() {
		if err := a.apiServer.Start(); err != nil {
			log.Printf("API server error: %v", err)
		}
	}()
}

// lanPort returns the port of a listen address that is not loopback-only
func lanPort(listen string) (int, bool) {
	host, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return 0, false
	}
	if host == "localhost" {
		return 0, false
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return 0, false
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, false
	}
	return port, true
}

func (a *app) registerHotkeys() {
	register := func(combo, what string, cb func()) {
		if combo == "" {
			return
		}
		if _, err := a.hkMgr.Register(combo, cb); err != nil {
			log.Printf("Warning: failed to register %s hotkey: %v", what, err)
			return
		}
		log.Printf("Hotkey: %s -> %s", combo, what)

		// Cross-platform mapping: on macOS, also register CMD variant if CTRL is present
		if runtime.GOOS == "darwin" && strings.Contains(strings.ToUpper(combo), "CTRL") {
			cmdVariant := strings.ReplaceAll(strings.ToUpper(combo), "CTRL", "CMD")
			_, _ = a.hkMgr.Register(cmdVariant, cb)
		}
	}

	register(a.cfg.Input.ToggleHotkey, "toggle overlay", func() {
		visible := !a.visible.Load()
		log.Printf("Hotkey: Overlay visible: %v", visible)
		a.setVisible(visible)
	})
	register(a.cfg.Input.QuitHotkey, "quit", func() {
		log.Println("Hotkey: Quit")
		a.shutdown()
	})
}

func (a *app) buildTray() {
	a.tray = tray.New("Input Overlay", "Input Overlay "+version)

	a.showItem = a.tray.AddCheckbox("Show overlay", !a.cfg.General.StartHidden, func(checked bool) {
		a.setVisible(checked)
	})
	a.bootItem = a.tray.AddCheckbox("Start on login", autostart.IsEnabled(), func(checked bool) {
		var err error
		if checked {
			err = autostart.Enable(launchArgs()...)
		} else {
			err = autostart.Disable()
		}
		if err != nil {
			log.Printf("Autostart error: %v", err)
			a.tray.SetItemChecked(a.bootItem, autostart.IsEnabled())
		}
	})

	a.tray.AddSeparator()

	a.tray.AddMenuItem("Quit", func() {
		a.shutdown()
	})
}

// setVisible applies visibility to every surface and the tray check mark
func (a *app) setVisible(visible bool) {
	a.visible.Store(visible)
	if a.win != nil {
		a.win.SetVisible(visible)
	}
	if a.apiServer != nil {
		a.apiServer.SetVisible(visible)
	}
	if a.tray != nil {
		a.tray.SetItemChecked(a.showItem, visible)
	}
}

// shutdown stops hooks first, then the ingestor, then rendering
func (a *app) shutdown() {
	a.stopOnce.Do(func() {
		log.Println("Shutting down...")

		if err := a.hook.Stop(); err != nil {
			log.Printf("Hook stop error: %v", err)
		}
		a.ingest.Close()
		a.cancel()

		if a.win != nil {
			a.win.Quit()
		}
		if a.apiServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := a.apiServer.Shutdown(ctx); err != nil {
				log.Printf("API shutdown error: %v", err)
			}
			cancel()
		}
		if a.trayRunning.Load() {
			a.tray.Stop()
		}
	})
}

// logSurface prints each frame that differs from the previous one
type logSurface struct {
	last overlay.Snapshot
	seen bool
}

func (l *logSurface) Present(s overlay.Snapshot) {
	if l.seen && l.last.Equal(s) {
		return
	}
	l.last, l.seen = s, true
	log.Printf("Overlay: Mouse: %s | Keys: %s | Dot: (%.1f, %.1f)", s.MouseLabel, s.KeyLabel, s.DotX, s.DotY)
}

func (l *logSurface) Closed() bool {
	return false
}
