// Package platform isolates every raw OS interaction: global input
// hooks, synthetic input injection, and hotkey detection. Nothing
// outside this package sees Windows message codes or input structs.
package platform

import (
	"context"
	"errors"
	"fmt"

	"macrorec/recording"
)

var (
	// ErrAlreadyInstalled means Install was called while hooks are
	// active; the existing hooks are untouched.
	ErrAlreadyInstalled = errors.New("input hooks already installed")

	// ErrInstallFailed wraps an OS refusal to register a hook. Any
	// partially installed hook has been rolled back.
	ErrInstallFailed = errors.New("failed to install input hook")

	// ErrNotSupported is returned by every stub on non-Windows builds.
	ErrNotSupported = errors.New("only supported on Windows")
)

// Hooks is the capability for installed global input interception. One
// value is owned by the agent; Install and Uninstall must be paired so
// the native hook handles are released on every exit path.
type Hooks interface {
	// Install registers the mouse hook, then the keyboard hook; if the
	// second fails the first is removed before the error returns.
	// Captured events are appended to st while it is recording.
	Install(st *recording.State) error

	// Uninstall removes whichever hooks are present. It is idempotent:
	// uninstalling with nothing installed is a no-op, not an error.
	Uninstall() error
}

// Injector injects one validated input unit as synthetic input.
type Injector interface {
	MoveCursor(x, y int32) error
	Button(b recording.MouseButton, down bool) error
	Wheel(delta int16) error
	Key(vk uint32, down bool) error
}

// KeyCombo represents a keyboard key combination
type KeyCombo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Win   bool
	Key   int // Virtual key code
}

// HotkeyEvent reports that one of the registered combos was pressed.
type HotkeyEvent struct {
	Name string
}

// Hotkey provides global hotkey detection for a named set of combos.
type Hotkey interface {
	Listen(ctx context.Context, combos map[string]KeyCombo) (<-chan HotkeyEvent, error)
}

// VKCode returns the Windows virtual key code for a key name.
func VKCode(key string) (int, error) {
	codes := map[string]int{
		"a": 0x41, "b": 0x42, "c": 0x43, "d": 0x44, "e": 0x45,
		"f": 0x46, "g": 0x47, "h": 0x48, "i": 0x49, "j": 0x4A,
		"k": 0x4B, "l": 0x4C, "m": 0x4D, "n": 0x4E, "o": 0x4F,
		"p": 0x50, "q": 0x51, "r": 0x52, "s": 0x53, "t": 0x54,
		"u": 0x55, "v": 0x56, "w": 0x57, "x": 0x58, "y": 0x59, "z": 0x5A,
		"0": 0x30, "1": 0x31, "2": 0x32, "3": 0x33, "4": 0x34,
		"5": 0x35, "6": 0x36, "7": 0x37, "8": 0x38, "9": 0x39,
		"f1": 0x70, "f2": 0x71, "f3": 0x72, "f4": 0x73,
		"f5": 0x74, "f6": 0x75, "f7": 0x76, "f8": 0x77,
		"f9": 0x78, "f10": 0x79, "f11": 0x7A, "f12": 0x7B,
		"space": 0x20, "enter": 0x0D, "esc": 0x1B,
		"tab": 0x09, "backspace": 0x08,
	}

	if code, ok := codes[key]; ok {
		return code, nil
	}

	return 0, fmt.Errorf("unknown key: %s", key)
}
