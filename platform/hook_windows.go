//go:build windows

package platform

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"macrorec/recording"
)

var (
	user32              = windows.NewLazySystemDLL("user32.dll")
	setWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	callNextHookEx      = user32.NewProc("CallNextHookEx")
	unhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	peekMessage         = user32.NewProc("PeekMessageW")
	getCursorPos        = user32.NewProc("GetCursorPos")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmMousemove   = 0x0200
	wmLbuttondown = 0x0201
	wmLbuttonup   = 0x0202
	wmRbuttondown = 0x0204
	wmRbuttonup   = 0x0205
	wmMbuttondown = 0x0207
	wmMbuttonup   = 0x0208
	wmMousewheel  = 0x020A

	wmKeydown    = 0x0100
	wmKeyup      = 0x0101
	wmSyskeydown = 0x0104
	wmSyskeyup   = 0x0105

	pmRemove = 0x0001
)

type point struct {
	x, y int32
}

type msllhookstruct struct {
	pt          point
	mouseData   uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type kbdllhookstruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      point
}

// WindowsHooks owns the two low-level hook handles. Both hooks are
// installed from the goroutine that runs the message loop, because the
// OS delivers low-level hook callbacks to the installing thread.
type WindowsHooks struct {
	mu           sync.Mutex
	state        *recording.State
	mouseHook    uintptr
	keyboardHook uintptr
	mouseCb      uintptr
	keyboardCb   uintptr
	done         chan struct{}
}

// NewHooks creates the Windows hook capability. The callback thunks are
// created once here; NewCallback allocations are never released, so
// install/uninstall cycles must not mint new ones.
func NewHooks() Hooks {
	h := &WindowsHooks{}
	h.mouseCb = windows.NewCallback(h.mouseProc)
	h.keyboardCb = windows.NewCallback(h.keyboardProc)
	return h
}

// Install registers the mouse and keyboard hooks. All-or-nothing: if
// the keyboard hook fails, the mouse hook is removed before returning.
func (h *WindowsHooks) Install(st *recording.State) error {
	h.mu.Lock()
	if h.done != nil {
		h.mu.Unlock()
		return ErrAlreadyInstalled
	}
	h.state = st
	h.done = make(chan struct{})
	h.mu.Unlock()

	errCh := make(chan error, 1)
	go h.runLoop(errCh)

	if err := <-errCh; err != nil {
		h.mu.Lock()
		h.done = nil
		h.state = nil
		h.mu.Unlock()
		return err
	}
	return nil
}

// Uninstall removes whichever hooks are present and stops the message
// loop. Safe to call when nothing is installed.
func (h *WindowsHooks) Uninstall() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done == nil {
		return nil
	}

	if h.mouseHook != 0 {
		unhookWindowsHookEx.Call(h.mouseHook)
		h.mouseHook = 0
	}
	if h.keyboardHook != 0 {
		unhookWindowsHookEx.Call(h.keyboardHook)
		h.keyboardHook = 0
	}

	close(h.done)
	h.done = nil
	// h.state is left set: a callback already in flight on the hook
	// thread may still touch it, and Add no-ops once recording stops.
	return nil
}

func (h *WindowsHooks) runLoop(errCh chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	mouseHook, _, err := setWindowsHookEx.Call(
		whMouseLL,
		h.mouseCb,
		0,
		0,
	)
	if mouseHook == 0 {
		errCh <- fmt.Errorf("%w: mouse: %v", ErrInstallFailed, err)
		return
	}

	keyboardHook, _, err := setWindowsHookEx.Call(
		whKeyboardLL,
		h.keyboardCb,
		0,
		0,
	)
	if keyboardHook == 0 {
		unhookWindowsHookEx.Call(mouseHook)
		errCh <- fmt.Errorf("%w: keyboard: %v", ErrInstallFailed, err)
		return
	}

	h.mu.Lock()
	h.mouseHook = mouseHook
	h.keyboardHook = keyboardHook
	done := h.done
	h.mu.Unlock()

	errCh <- nil

	// Pump the thread's message queue so the hooks keep firing.
	var m msg
	for {
		select {
		case <-done:
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

// mouseProc runs on the hook thread for every system mouse event. It
// must return quickly or the OS drops the hook, so it does one
// classification and one bounded append, then always chains on.
func (h *WindowsHooks) mouseProc(nCode int32, wParam, lParam uintptr) uintptr {
	if nCode >= 0 {
		if et, ok := classifyMouse(wParam, lParam); ok {
			x, y := mouseCoords(lParam)
			h.state.Add(et, x, y)
		}
	}
	r, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return r
}

func (h *WindowsHooks) keyboardProc(nCode int32, wParam, lParam uintptr) uintptr {
	if nCode >= 0 && lParam != 0 {
		kb := (*kbdllhookstruct)(unsafe.Pointer(lParam))
		if et, ok := classifyKey(wParam, kb.vkCode); ok {
			h.state.Add(et, nil, nil)
		}
	}
	r, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return r
}

// classifyMouse maps a raw mouse notification onto the closed event
// set. Unmatched codes are ignored, not errors.
func classifyMouse(wParam, lParam uintptr) (recording.EventType, bool) {
	switch wParam {
	case wmMousemove:
		return recording.EventType{Kind: recording.MouseMove}, true
	case wmLbuttondown:
		return recording.EventType{Kind: recording.MouseDown, Button: recording.ButtonLeft}, true
	case wmLbuttonup:
		return recording.EventType{Kind: recording.MouseUp, Button: recording.ButtonLeft}, true
	case wmRbuttondown:
		return recording.EventType{Kind: recording.MouseDown, Button: recording.ButtonRight}, true
	case wmRbuttonup:
		return recording.EventType{Kind: recording.MouseUp, Button: recording.ButtonRight}, true
	case wmMbuttondown:
		return recording.EventType{Kind: recording.MouseDown, Button: recording.ButtonMiddle}, true
	case wmMbuttonup:
		return recording.EventType{Kind: recording.MouseUp, Button: recording.ButtonMiddle}, true
	case wmMousewheel:
		var delta int16
		if lParam != 0 {
			ms := (*msllhookstruct)(unsafe.Pointer(lParam))
			// Wheel delta travels in the high word of mouseData.
			delta = int16(ms.mouseData >> 16)
		}
		return recording.EventType{Kind: recording.MouseWheel, Delta: delta}, true
	}
	return recording.EventType{}, false
}

func classifyKey(wParam uintptr, vk uint32) (recording.EventType, bool) {
	switch wParam {
	case wmKeydown, wmSyskeydown:
		return recording.EventType{Kind: recording.KeyDown, VkCode: vk}, true
	case wmKeyup, wmSyskeyup:
		return recording.EventType{Kind: recording.KeyUp, VkCode: vk}, true
	}
	return recording.EventType{}, false
}

// mouseCoords reads the cursor position from the hook struct, falling
// back to a live GetCursorPos query. Returns nils if neither source is
// available; the callback cannot report errors upward.
func mouseCoords(lParam uintptr) (*int32, *int32) {
	if lParam != 0 {
		ms := (*msllhookstruct)(unsafe.Pointer(lParam))
		x, y := ms.pt.x, ms.pt.y
		return &x, &y
	}

	var p point
	if r, _, _ := getCursorPos.Call(uintptr(unsafe.Pointer(&p))); r != 0 {
		return &p.x, &p.y
	}
	return nil, nil
}
