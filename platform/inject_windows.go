//go:build windows

package platform

import (
	"fmt"
	"unsafe"

	"macrorec/recording"
)

var (
	sendInput    = user32.NewProc("SendInput")
	setCursorPos = user32.NewProc("SetCursorPos")
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseeventfLeftdown   = 0x0002
	mouseeventfLeftup     = 0x0004
	mouseeventfRightdown  = 0x0008
	mouseeventfRightup    = 0x0010
	mouseeventfMiddledown = 0x0020
	mouseeventfMiddleup   = 0x0040
	mouseeventfWheel      = 0x0800

	keyeventfKeyup = 0x0002
)

type mouseInput struct {
	dx          int32
	dy          int32
	mouseData   uint32
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

// inputM mirrors the native INPUT struct with the mouse arm of the
// union active. The union is as large as MOUSEINPUT, so no padding is
// needed.
type inputM struct {
	inputType uint32
	mi        mouseInput
}

// inputK mirrors INPUT with the keyboard arm active; KEYBDINPUT is 8
// bytes smaller than the union, hence the padding.
type inputK struct {
	inputType uint32
	ki        keyboardInput
	padding   [8]byte
}

// WindowsInjector synthesizes input via SendInput/SetCursorPos. It does
// no validation; the replay engine checks ranges before calling in.
type WindowsInjector struct{}

// NewInjector creates the Windows input synthesizer.
func NewInjector() Injector {
	return &WindowsInjector{}
}

// MoveCursor positions the system cursor absolutely.
func (WindowsInjector) MoveCursor(x, y int32) error {
	if r, _, err := setCursorPos.Call(uintptr(x), uintptr(y)); r == 0 {
		return fmt.Errorf("SetCursorPos failed: %w", err)
	}
	return nil
}

// Button injects one mouse button transition.
func (WindowsInjector) Button(b recording.MouseButton, down bool) error {
	var flags uint32
	switch b {
	case recording.ButtonLeft:
		flags = mouseeventfLeftdown
		if !down {
			flags = mouseeventfLeftup
		}
	case recording.ButtonRight:
		flags = mouseeventfRightdown
		if !down {
			flags = mouseeventfRightup
		}
	case recording.ButtonMiddle:
		flags = mouseeventfMiddledown
		if !down {
			flags = mouseeventfMiddleup
		}
	default:
		return fmt.Errorf("unknown mouse button %q", b)
	}

	return sendMouse(mouseInput{dwFlags: flags})
}

// Wheel injects one wheel tick; the delta travels in the high word of
// mouseData.
func (WindowsInjector) Wheel(delta int16) error {
	return sendMouse(mouseInput{
		mouseData: uint32(uint16(delta)) << 16,
		dwFlags:   mouseeventfWheel,
	})
}

// Key injects one keyboard transition.
func (WindowsInjector) Key(vk uint32, down bool) error {
	var flags uint32
	if !down {
		flags = keyeventfKeyup
	}

	in := inputK{
		inputType: inputKeyboard,
		ki: keyboardInput{
			wVk:     uint16(vk),
			dwFlags: flags,
		},
	}

	ret, _, err := sendInput.Call(
		1,
		uintptr(unsafe.Pointer(&in)),
		unsafe.Sizeof(in),
	)
	if ret == 0 {
		return fmt.Errorf("SendInput failed: %w", err)
	}
	return nil
}

func sendMouse(mi mouseInput) error {
	in := inputM{
		inputType: inputMouse,
		mi:        mi,
	}

	ret, _, err := sendInput.Call(
		1,
		uintptr(unsafe.Pointer(&in)),
		unsafe.Sizeof(in),
	)
	if ret == 0 {
		return fmt.Errorf("SendInput failed: %w", err)
	}
	return nil
}
