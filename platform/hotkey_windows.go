//go:build windows

package platform

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var getAsyncKeyState = user32.NewProc("GetAsyncKeyState")

const (
	vkShift = 0x10
	vkCtrl  = 0x11
	vkAlt   = 0x12
	vkLwin  = 0x5B // Left Windows key
	vkRwin  = 0x5C // Right Windows key
)

// WindowsHotkey implements the Hotkey interface for Windows. It watches
// a keyboard hook for any of a named set of key combinations and emits
// one event per press (auto-repeat is suppressed until key-up).
type WindowsHotkey struct {
	mu      sync.Mutex
	combos  map[string]KeyCombo
	pressed map[string]bool
	events  chan HotkeyEvent
	hook    uintptr
	done    chan struct{}
}

// NewHotkey creates a new Windows hotkey listener
func NewHotkey() Hotkey {
	return &WindowsHotkey{}
}

// Listen starts listening for the given named key combinations.
func (h *WindowsHotkey) Listen(ctx context.Context, combos map[string]KeyCombo) (<-chan HotkeyEvent, error) {
	h.mu.Lock()
	h.combos = combos
	h.pressed = make(map[string]bool, len(combos))
	h.events = make(chan HotkeyEvent, 10)
	h.done = make(chan struct{})
	h.mu.Unlock()

	errCh := make(chan error, 1)
	go h.runHook(errCh)

	// Wait for hook to be installed or error
	select {
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	go func() {
		<-ctx.Done()
		close(h.done)
		if h.hook != 0 {
			unhookWindowsHookEx.Call(h.hook)
		}
	}()

	return h.events, nil
}

func (h *WindowsHotkey) runHook(errCh chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hookProc := func(nCode int32, wParam uintptr, lParam uintptr) uintptr {
		if nCode >= 0 && lParam != 0 {
			kb := (*kbdllhookstruct)(unsafe.Pointer(lParam))
			h.handleKeyEvent(wParam, kb)
		}
		r, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
		return r
	}

	hook, _, err := setWindowsHookEx.Call(
		whKeyboardLL,
		windows.NewCallback(hookProc),
		0,
		0,
	)
	if hook == 0 {
		errCh <- fmt.Errorf("SetWindowsHookEx failed: %w", err)
		return
	}

	h.mu.Lock()
	h.hook = hook
	h.mu.Unlock()

	errCh <- nil

	// Message loop
	var m msg
	for {
		select {
		case <-h.done:
			return
		default:
			r, _, _ := peekMessage.Call(
				uintptr(unsafe.Pointer(&m)),
				0,
				0,
				0,
				pmRemove,
			)
			if r != 0 {
				continue
			}
			runtime.Gosched()
		}
	}
}

func (h *WindowsHotkey) handleKeyEvent(wParam uintptr, kb *kbdllhookstruct) {
	isKeyDown := wParam == wmKeydown || wParam == wmSyskeydown

	h.mu.Lock()
	defer h.mu.Unlock()

	for name, combo := range h.combos {
		if kb.vkCode != uint32(combo.Key) {
			continue
		}

		if !isKeyDown {
			h.pressed[name] = false
			continue
		}

		if h.pressed[name] || !checkModifiers(combo) {
			continue
		}
		h.pressed[name] = true

		select {
		case h.events <- HotkeyEvent{Name: name}:
		default:
		}
	}
}

func checkModifiers(combo KeyCombo) bool {
	ctrl := isKeyPressed(vkCtrl)
	shift := isKeyPressed(vkShift)
	alt := isKeyPressed(vkAlt)
	win := isKeyPressed(vkLwin) || isKeyPressed(vkRwin)

	return ctrl == combo.Ctrl &&
		shift == combo.Shift &&
		alt == combo.Alt &&
		win == combo.Win
}

func isKeyPressed(vk int) bool {
	r, _, _ := getAsyncKeyState.Call(uintptr(vk))
	return r&0x8000 != 0
}
