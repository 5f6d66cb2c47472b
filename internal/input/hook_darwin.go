//go:build darwin

package input

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation -framework ApplicationServices
#include <CoreGraphics/CoreGraphics.h>
#include <CoreFoundation/CoreFoundation.h>
#include <stdint.h>

CGEventRef overlayEventCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon);

static CFRunLoopRef tapLoop = NULL;

// runEventTap blocks running the tap until stopEventTap is called.
// Returns 0 on a clean stop and -1 if the tap could not be created.
static inline int runEventTap(uintptr_t refcon) {
    CGEventMask mask = kCGEventMaskForAllEvents;
    CFMachPortRef tap = CGEventTapCreate(
        kCGSessionEventTap,
        kCGHeadInsertEventTap,
        kCGEventTapOptionListenOnly,
        mask,
        overlayEventCallback,
        (void*)refcon
    );
    if (!tap) {
        return -1;
    }

    CFRunLoopSourceRef source = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tap, 0);
    tapLoop = CFRunLoopGetCurrent();
    CFRunLoopAddSource(tapLoop, source, kCFRunLoopCommonModes);
    CGEventTapEnable(tap, true);
    CFRunLoopRun();

    CGEventTapEnable(tap, false);
    CFRunLoopRemoveSource(tapLoop, source, kCFRunLoopCommonModes);
    CFRelease(source);
    CFRelease(tap);
    tapLoop = NULL;
    return 0;
}

static inline void stopEventTap(void) {
    if (tapLoop != NULL) {
        CFRunLoopStop(tapLoop);
    }
}
*/
import "C"
import (
	"fmt"
	"log"
	"runtime"
	"runtime/cgo"
	"sync"
	"time"
	"unsafe"
)

//export overlayEventCallback
func overlayEventCallback(proxy C.CGEventTapProxy, eventType C.CGEventType, event C.CGEventRef, refcon unsafe.Pointer) C.CGEventRef {
	h := cgo.Handle(uintptr(refcon)).Value().(Handler)

	switch eventType {
	case C.kCGEventKeyDown, C.kCGEventKeyUp:
		keyCode := uint16(C.CGEventGetIntegerValueField(event, C.kCGKeyboardEventKeycode))
		ev := Event{Type: EventKeyUp, Key: macKeyCodeToKey(keyCode)}
		if eventType == C.kCGEventKeyDown {
			ev.Type = EventKeyDown
		}
		Dispatch(h, ev)

	case C.kCGEventFlagsChanged:
		flags := C.CGEventGetFlags(event)
		keyCode := uint16(C.CGEventGetIntegerValueField(event, C.kCGKeyboardEventKeycode))

		var down bool
		switch keyCode {
		case 55, 54:
			down = (flags & C.kCGEventFlagMaskCommand) != 0
		case 56, 60:
			down = (flags & C.kCGEventFlagMaskShift) != 0
		case 58, 61:
			down = (flags & C.kCGEventFlagMaskAlternate) != 0
		case 59, 62:
			down = (flags & C.kCGEventFlagMaskControl) != 0
		case 57:
			down = (flags & C.kCGEventFlagMaskAlphaShift) != 0
		default:
			return event
		}
		ev := Event{Type: EventKeyUp, Key: macKeyCodeToKey(keyCode)}
		if down {
			ev.Type = EventKeyDown
		}
		Dispatch(h, ev)

	case C.kCGEventLeftMouseDown, C.kCGEventRightMouseDown, C.kCGEventOtherMouseDown:
		btnNumber := int64(C.CGEventGetIntegerValueField(event, C.kCGMouseEventButtonNumber))
		Dispatch(h, Event{Type: EventButtonDown, Button: macButton(btnNumber)})

	case C.kCGEventLeftMouseUp, C.kCGEventRightMouseUp, C.kCGEventOtherMouseUp:
		btnNumber := int64(C.CGEventGetIntegerValueField(event, C.kCGMouseEventButtonNumber))
		Dispatch(h, Event{Type: EventButtonUp, Button: macButton(btnNumber)})

	case C.kCGEventMouseMoved, C.kCGEventLeftMouseDragged,
		C.kCGEventRightMouseDragged, C.kCGEventOtherMouseDragged:
		loc := C.CGEventGetLocation(event)
		Dispatch(h, Event{Type: EventMove, X: int(loc.x), Y: int(loc.y)})

	case C.kCGEventScrollWheel:
		delta := int64(C.CGEventGetIntegerValueField(event, C.kCGScrollWheelEventDeltaAxis1))
		Dispatch(h, ScrollEvent(int(delta)))
	}

	return event
}

// darwinHook runs a listen-only CGEventTap on a locked OS thread.
// Requires the Accessibility / Input Monitoring permission.
type darwinHook struct {
	mu      sync.Mutex
	running bool
	handle  cgo.Handle
	done    chan struct{}
}

// NewHook creates the platform input hook
func NewHook(opts Options) Hook {
	return &darwinHook{}
}

func (d *darwinHook) Start(h Handler) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("hook already running")
	}

	d.handle = cgo.NewHandle(h)
	d.done = make(chan struct{})
	failed := make(chan struct{})

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(d.done)

		log.Println("Hook: macOS CGEventTap starting.")
		if C.runEventTap(C.uintptr_t(d.handle)) != 0 {
			close(failed)
		}
	}()

	// The tap either fails immediately or runs until stopped.
	select {
	case <-failed:
		d.handle.Delete()
		return fmt.Errorf("failed to create CGEventTap: accessibility permission missing?")
	case <-time.After(200 * time.Millisecond):
	}

	d.running = true
	return nil
}

func (d *darwinHook) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}
	d.running = false

	C.stopEventTap()
	<-d.done
	d.handle.Delete()
	return nil
}

func macButton(n int64) Button {
	switch n {
	case 0:
		return ButtonLeft
	case 1:
		return ButtonRight
	case 2:
		return ButtonMiddle
	case 3:
		return ButtonX1
	default:
		return ButtonX2
	}
}

var macNamedKeys = map[uint16]string{
	55: "cmd", 54: "cmd_r",
	56: "shift_l", 60: "shift_r",
	58: "alt_l", 61: "alt_r",
	59: "ctrl_l", 62: "ctrl_r",
	57: "caps_lock",
	49: "space", 36: "enter", 53: "esc", 51: "backspace", 48: "tab",
	123: "left", 124: "right", 125: "down", 126: "up",
	115: "home", 119: "end", 116: "page_up", 121: "page_down", 117: "delete",
	122: "f1", 120: "f2", 99: "f3", 118: "f4", 96: "f5", 97: "f6",
	98: "f7", 100: "f8", 101: "f9", 109: "f10", 103: "f11", 111: "f12",
}

var macCharKeys = map[uint16]rune{
	0: 'a', 11: 'b', 8: 'c', 2: 'd', 14: 'e', 3: 'f', 5: 'g', 4: 'h',
	34: 'i', 38: 'j', 40: 'k', 37: 'l', 46: 'm', 45: 'n', 31: 'o', 35: 'p',
	12: 'q', 15: 'r', 1: 's', 17: 't', 32: 'u', 9: 'v', 13: 'w', 7: 'x',
	16: 'y', 6: 'z',
	29: '0', 18: '1', 19: '2', 20: '3', 21: '4', 23: '5', 22: '6', 26: '7', 28: '8', 25: '9',
	27: '-', 24: '=', 33: '[', 30: ']', 41: ';', 39: '\'', 43: ',', 47: '.', 44: '/', 42: '\\', 50: '`',
}

func macKeyCodeToKey(code uint16) Key {
	if name, ok := macNamedKeys[code]; ok {
		return Key{Name: name, Code: uint32(code)}
	}
	if c, ok := macCharKeys[code]; ok {
		return Key{Char: c, Code: uint32(code)}
	}
	return Key{Code: uint32(code)}
}
