//go:build windows

package input

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procTranslateMessage    = user32.NewProc("TranslateMessage")
	procDispatchMessage     = user32.NewProc("DispatchMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
	kernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandle     = kernel32.NewProc("GetModuleHandleW")
)

const (
	WH_KEYBOARD_LL = 13
	WH_MOUSE_LL    = 14
	WM_QUIT        = 0x0012
	WM_KEYDOWN     = 0x0100
	WM_KEYUP       = 0x0101
	WM_SYSKEYDOWN  = 0x0104
	WM_SYSKEYUP    = 0x0105

	WM_MOUSEMOVE   = 0x0200
	WM_LBUTTONDOWN = 0x0201
	WM_LBUTTONUP   = 0x0202
	WM_RBUTTONDOWN = 0x0204
	WM_RBUTTONUP   = 0x0205
	WM_MBUTTONDOWN = 0x0207
	WM_MBUTTONUP   = 0x0208
	WM_MOUSEWHEEL  = 0x020A
	WM_XBUTTONDOWN = 0x020B
	WM_XBUTTONUP   = 0x020C
)

type KBDLLHOOKSTRUCT struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type MSLLHOOKSTRUCT struct {
	Point       struct{ X, Y int32 }
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type winMSG struct {
	Hwnd    syscall.Handle
	Message uint32
	Wparam  uintptr
	Lparam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// Low-level hook procedures carry no user pointer, so the running hook is
// reachable through package state. Only one hook may run at a time.
var (
	activeMu      sync.RWMutex
	activeHandler Handler
	keyboardHook  uintptr
	mouseHook     uintptr
)

// windowsHook installs WH_KEYBOARD_LL and WH_MOUSE_LL hooks on a dedicated
// OS thread running a message loop.
type windowsHook struct {
	mu       sync.Mutex
	running  bool
	threadID uint32
	done     chan struct{}
}

// NewHook creates the platform input hook
func NewHook(opts Options) Hook {
	return &windowsHook{}
}

// Start installs the hooks and begins delivering events to h
func (w *windowsHook) Start(h Handler) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("hook already running")
	}

	activeMu.Lock()
	activeHandler = h
	activeMu.Unlock()

	started := make(chan error, 1)
	w.done = make(chan struct{})

	// Hooks must be registered in the same thread that runs the message loop
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(w.done)

		w.threadID = windows.GetCurrentThreadId()
		hMod, _, _ := procGetModuleHandle.Call(0)

		var err error
		keyboardHook, _, err = procSetWindowsHookEx.Call(
			WH_KEYBOARD_LL,
			syscall.NewCallback(keyboardHookProc),
			hMod,
			0,
		)
		if keyboardHook == 0 {
			started <- fmt.Errorf("set keyboard hook: %w", err)
			return
		}

		mouseHook, _, err = procSetWindowsHookEx.Call(
			WH_MOUSE_LL,
			syscall.NewCallback(mouseHookProc),
			hMod,
			0,
		)
		if mouseHook == 0 {
			procUnhookWindowsHookEx.Call(keyboardHook)
			started <- fmt.Errorf("set mouse hook: %w", err)
			return
		}

		log.Println("Hook: Windows low-level hooks started.")
		started <- nil

		var msg winMSG
		for {
			ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
			if int32(ret) <= 0 {
				break
			}
			procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
			procDispatchMessage.Call(uintptr(unsafe.Pointer(&msg)))
		}

		procUnhookWindowsHookEx.Call(keyboardHook)
		procUnhookWindowsHookEx.Call(mouseHook)
		log.Println("Hook: Windows low-level hooks removed.")
	}()

	if err := <-started; err != nil {
		return err
	}
	w.running = true
	return nil
}

// Stop removes the hooks. In-flight callbacks finish before it returns.
func (w *windowsHook) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false

	procPostThreadMessage.Call(uintptr(w.threadID), WM_QUIT, 0, 0)
	<-w.done

	activeMu.Lock()
	activeHandler = nil
	activeMu.Unlock()
	return nil
}

func currentHandler() Handler {
	activeMu.RLock()
	defer activeMu.RUnlock()
	return activeHandler
}

func keyboardHookProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode == 0 {
		if h := currentHandler(); h != nil {
			kbd := (*KBDLLHOOKSTRUCT)(unsafe.Pointer(lParam))
			if ev, ok := keyboardEvent(wParam, kbd.VkCode); ok {
				Dispatch(h, ev)
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(keyboardHook, uintptr(nCode), wParam, lParam)
	return ret
}

func mouseHookProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode == 0 {
		if h := currentHandler(); h != nil {
			ms := (*MSLLHOOKSTRUCT)(unsafe.Pointer(lParam))
			if ev, ok := mouseEvent(wParam, ms); ok {
				Dispatch(h, ev)
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(mouseHook, uintptr(nCode), wParam, lParam)
	return ret
}

// keyboardEvent converts a low-level keyboard message into an event record
func keyboardEvent(wParam uintptr, vk uint32) (Event, bool) {
	switch wParam {
	case WM_KEYDOWN, WM_SYSKEYDOWN:
		return Event{Type: EventKeyDown, Key: vkToKey(vk)}, true
	case WM_KEYUP, WM_SYSKEYUP:
		return Event{Type: EventKeyUp, Key: vkToKey(vk)}, true
	}
	return Event{}, false
}

// mouseEvent converts a low-level mouse message into an event record
func mouseEvent(wParam uintptr, ms *MSLLHOOKSTRUCT) (Event, bool) {
	switch wParam {
	case WM_MOUSEMOVE:
		return Event{Type: EventMove, X: int(ms.Point.X), Y: int(ms.Point.Y)}, true
	case WM_LBUTTONDOWN:
		return Event{Type: EventButtonDown, Button: ButtonLeft}, true
	case WM_LBUTTONUP:
		return Event{Type: EventButtonUp, Button: ButtonLeft}, true
	case WM_RBUTTONDOWN:
		return Event{Type: EventButtonDown, Button: ButtonRight}, true
	case WM_RBUTTONUP:
		return Event{Type: EventButtonUp, Button: ButtonRight}, true
	case WM_MBUTTONDOWN:
		return Event{Type: EventButtonDown, Button: ButtonMiddle}, true
	case WM_MBUTTONUP:
		return Event{Type: EventButtonUp, Button: ButtonMiddle}, true
	case WM_XBUTTONDOWN:
		return Event{Type: EventButtonDown, Button: xButton(ms.MouseData)}, true
	case WM_XBUTTONUP:
		return Event{Type: EventButtonUp, Button: xButton(ms.MouseData)}, true
	case WM_MOUSEWHEEL:
		return ScrollEvent(int(int16(ms.MouseData >> 16))), true
	}
	return Event{}, false
}

func xButton(mouseData uint32) Button {
	if (mouseData >> 16) == 1 {
		return ButtonX1
	}
	return ButtonX2
}

func vkToKey(vk uint32) Key {
	if name := vkName(vk); name != "" {
		return Key{Name: name, Code: vk}
	}
	// Letters A-Z and digits 0-9 map straight to their character
	if (vk >= 0x41 && vk <= 0x5A) || (vk >= 0x30 && vk <= 0x39) {
		return Key{Char: rune(vk), Code: vk}
	}
	return Key{Code: vk}
}

func vkName(vk uint32) string {
	switch vk {
	case 0x11, 0xA2:
		return "ctrl_l"
	case 0xA3:
		return "ctrl_r"
	case 0x12, 0xA4:
		return "alt_l"
	case 0xA5:
		return "alt_r"
	case 0x10, 0xA0:
		return "shift_l"
	case 0xA1:
		return "shift_r"
	case 0x5B:
		return "cmd"
	case 0x5C:
		return "cmd_r"
	case 0x20:
		return "space"
	case 0x0D:
		return "enter"
	case 0x1B:
		return "esc"
	case 0x08:
		return "backspace"
	case 0x09:
		return "tab"
	case 0x14:
		return "caps_lock"
	case 0x21:
		return "page_up"
	case 0x22:
		return "page_down"
	case 0x23:
		return "end"
	case 0x24:
		return "home"
	case 0x25:
		return "left"
	case 0x26:
		return "up"
	case 0x27:
		return "right"
	case 0x28:
		return "down"
	case 0x2C:
		return "print_screen"
	case 0x2D:
		return "insert"
	case 0x2E:
		return "delete"
	case 0x13:
		return "pause"
	case 0x91:
		return "scroll_lock"
	case 0x90:
		return "num_lock"
	}

	// F1-F24
	if vk >= 0x70 && vk <= 0x87 {
		return fmt.Sprintf("f%d", vk-0x6F)
	}

	return ""
}
