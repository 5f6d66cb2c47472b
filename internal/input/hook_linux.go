//go:build linux

package input

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"
	"unicode/utf8"

	evdev "github.com/holoplot/go-evdev"
)

// linuxHook reads /dev/input event devices directly. It needs read access
// to the device nodes (root or membership in the "input" group).
type linuxHook struct {
	opts Options

	mu      sync.Mutex
	running bool
	devices []*evdev.InputDevice
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewHook creates the platform input hook
func NewHook(opts Options) Hook {
	return &linuxHook{opts: opts}
}

func (l *linuxHook) Start(h Handler) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return fmt.Errorf("hook already running")
	}

	devices, err := openSourceDevices(l.opts.Devices)
	if err != nil {
		return err
	}

	l.devices = devices
	l.done = make(chan struct{})
	for _, dev := range devices {
		l.wg.Add(1)
		go l.readLoop(dev, h)
	}

	l.running = true
	log.Printf("Hook: Reading %d evdev device(s).", len(devices))
	return nil
}

// Stop closes every device and waits for the readers to exit
func (l *linuxHook) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.running {
		return nil
	}
	l.running = false

	close(l.done)
	l.wg.Wait()
	for _, dev := range l.devices {
		_ = dev.Close()
	}
	l.devices = nil
	log.Println("Hook: evdev readers stopped.")
	return nil
}

func (l *linuxHook) readLoop(dev *evdev.InputDevice, h Handler) {
	defer l.wg.Done()
	path := dev.Path()

	for {
		select {
		case <-l.done:
			return
		default:
		}

		event, err := dev.ReadOne()
		if err != nil {
			if isDeviceClosedError(err) {
				log.Printf("Hook: Device %s went away", path)
				return
			}
			if isWouldBlockError(err) {
				if !l.sleep(10 * time.Millisecond) {
					return
				}
				continue
			}
			log.Printf("Hook: Read failed on %s: %v", path, err)
			if !l.sleep(100 * time.Millisecond) {
				return
			}
			continue
		}
		if event == nil {
			continue
		}
		l.handleEvent(h, event)
	}
}

func (l *linuxHook) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-l.done:
		return false
	case <-timer.C:
		return true
	}
}

func (l *linuxHook) handleEvent(h Handler, event *evdev.InputEvent) {
	if ev, ok := translateEvent(event); ok {
		Dispatch(h, ev)
	}
}

// translateEvent converts an evdev event into an event record. Pointer
// devices only report deltas, which pass through as EventMotion.
func translateEvent(event *evdev.InputEvent) (Event, bool) {
	switch event.Type {
	case evdev.EV_KEY:
		// 1 = press, 2 = autorepeat, 0 = release
		down := event.Value != 0
		if btn, ok := evdevButton(event.Code); ok {
			if event.Value == 2 {
				return Event{}, false
			}
			if down {
				return Event{Type: EventButtonDown, Button: btn}, true
			}
			return Event{Type: EventButtonUp, Button: btn}, true
		}
		if ignoredKeyCode(event.Code) {
			return Event{}, false
		}
		if down {
			return Event{Type: EventKeyDown, Key: evdevKey(event.Code)}, true
		}
		return Event{Type: EventKeyUp, Key: evdevKey(event.Code)}, true

	case evdev.EV_REL:
		switch event.Code {
		case evdev.REL_X:
			return Event{Type: EventMotion, DX: int(event.Value)}, true
		case evdev.REL_Y:
			return Event{Type: EventMotion, DY: int(event.Value)}, true
		case evdev.REL_WHEEL:
			return ScrollEvent(int(event.Value)), true
		}
	}
	return Event{}, false
}

func evdevButton(code evdev.EvCode) (Button, bool) {
	switch code {
	case evdev.BTN_LEFT:
		return ButtonLeft, true
	case evdev.BTN_RIGHT:
		return ButtonRight, true
	case evdev.BTN_MIDDLE:
		return ButtonMiddle, true
	case evdev.BTN_SIDE:
		return ButtonX1, true
	case evdev.BTN_EXTRA:
		return ButtonX2, true
	}
	return "", false
}

// Touchpad tool reports look like key presses but are not user keys
func ignoredKeyCode(code evdev.EvCode) bool {
	switch code {
	case evdev.BTN_TOUCH, evdev.BTN_TOOL_FINGER, evdev.BTN_TOOL_DOUBLETAP,
		evdev.BTN_TOOL_TRIPLETAP:
		return true
	}
	return false
}

func evdevKey(code evdev.EvCode) Key {
	name, ok := evdev.KEYToString[code]
	if !ok || name == "" {
		return Key{Code: uint32(code)}
	}
	name = strings.ToLower(strings.TrimPrefix(name, "KEY_"))
	if utf8.RuneCountInString(name) == 1 {
		c, _ := utf8.DecodeRuneInString(name)
		return Key{Char: c, Code: uint32(code)}
	}
	return Key{Name: name, Code: uint32(code)}
}

// ListDevices enumerates readable input devices
func ListDevices() ([]DeviceInfo, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}
	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Path < paths[j].Path
	})

	devices := make([]DeviceInfo, 0, len(paths))
	for _, path := range paths {
		dev, err := openInputDevice(path.Path)
		if err != nil {
			continue
		}
		name := path.Name
		if actual, err := dev.Name(); err == nil && actual != "" {
			name = actual
		}
		devices = append(devices, DeviceInfo{
			Path:      path.Path,
			Name:      name,
			IsVirtual: deviceIsVirtual(dev, name),
			HasKeys:   len(dev.CapableEvents(evdev.EV_KEY)) > 0,
			IsPointer: deviceHasRelativeXY(dev),
		})
		_ = dev.Close()
	}
	return devices, nil
}

func openSourceDevices(explicit []string) ([]*evdev.InputDevice, error) {
	if len(explicit) > 0 {
		devices := make([]*evdev.InputDevice, 0, len(explicit))
		for _, path := range explicit {
			dev, err := openInputDevice(path)
			if err != nil {
				closeInputDevices(devices)
				return nil, fmt.Errorf("open %s: %w", path, err)
			}
			if err := dev.NonBlock(); err != nil {
				_ = dev.Close()
				closeInputDevices(devices)
				return nil, fmt.Errorf("failed to set nonblocking mode for %s: %w", path, err)
			}
			devices = append(devices, dev)
		}
		return devices, nil
	}

	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}
	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Path < paths[j].Path
	})

	devices := make([]*evdev.InputDevice, 0, len(paths))
	for _, path := range paths {
		dev, err := openInputDevice(path.Path)
		if err != nil {
			continue
		}
		name := path.Name
		if actual, err := dev.Name(); err == nil && actual != "" {
			name = actual
		}
		if deviceIsVirtual(dev, name) ||
			(len(dev.CapableEvents(evdev.EV_KEY)) == 0 && !deviceHasRelativeXY(dev)) {
			_ = dev.Close()
			continue
		}
		if err := dev.NonBlock(); err != nil {
			_ = dev.Close()
			continue
		}
		devices = append(devices, dev)
	}

	if len(devices) == 0 {
		return nil, fmt.Errorf("no readable keyboard or pointer devices found (is the user in the input group?)")
	}
	return devices, nil
}

func openInputDevice(path string) (*evdev.InputDevice, error) {
	return evdev.OpenWithFlags(path, os.O_RDONLY)
}

func closeInputDevices(devices []*evdev.InputDevice) {
	for _, dev := range devices {
		_ = dev.Close()
	}
}

func deviceIsVirtual(device *evdev.InputDevice, name string) bool {
	id, err := device.InputID()
	if err == nil && id.BusType == uint16(evdev.BUS_VIRTUAL) {
		return true
	}
	lower := strings.ToLower(name)
	for _, token := range []string{"virtual", "uinput", "ydotool"} {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func deviceHasRelativeXY(device *evdev.InputDevice) bool {
	var hasRelX, hasRelY bool
	for _, code := range device.CapableEvents(evdev.EV_REL) {
		if code == evdev.REL_X {
			hasRelX = true
		}
		if code == evdev.REL_Y {
			hasRelY = true
		}
	}
	return hasRelX && hasRelY
}

func isDeviceClosedError(err error) bool {
	return errors.Is(err, syscall.EBADF) || errors.Is(err, syscall.ENODEV)
}

func isWouldBlockError(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}
