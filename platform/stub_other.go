//go:build !windows

package platform

import (
	"context"

	"macrorec/recording"
)

type stubHooks struct{}

func NewHooks() Hooks {
	return stubHooks{}
}

func (stubHooks) Install(*recording.State) error {
	return ErrNotSupported
}

func (stubHooks) Uninstall() error {
	return nil
}

type stubInjector struct{}

func NewInjector() Injector {
	return stubInjector{}
}

func (stubInjector) MoveCursor(x, y int32) error {
	return ErrNotSupported
}

func (stubInjector) Button(recording.MouseButton, bool) error {
	return ErrNotSupported
}

func (stubInjector) Wheel(int16) error {
	return ErrNotSupported
}

func (stubInjector) Key(uint32, bool) error {
	return ErrNotSupported
}

type stubHotkey struct{}

func NewHotkey() Hotkey {
	return stubHotkey{}
}

func (stubHotkey) Listen(context.Context, map[string]KeyCombo) (<-chan HotkeyEvent, error) {
	return nil, ErrNotSupported
}
