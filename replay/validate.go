package replay

import (
	"fmt"
	"math"

	"macrorec/recording"
)

// maxVkCode is the top of the Windows virtual-key range.
const maxVkCode = 255

// Validate checks one event against the ranges the OS input encoding
// accepts, before any injection is attempted. Coordinates are checked
// against the signed 16-bit encoding limit only, not the live screen
// resolution; in-range but off-screen moves are left to the OS to clamp.
func Validate(ev recording.RecordedEvent) error {
	switch ev.EventType.Kind {
	case recording.MouseMove:
		if ev.X == nil || ev.Y == nil {
			return fmt.Errorf("%w: mouse move without coordinates", ErrInvalidCoordinates)
		}
		if !coordInRange(*ev.X) || !coordInRange(*ev.Y) {
			return fmt.Errorf("%w: (%d, %d)", ErrInvalidCoordinates, *ev.X, *ev.Y)
		}
	case recording.KeyDown, recording.KeyUp:
		if ev.EventType.VkCode > maxVkCode {
			return fmt.Errorf("%w: %d", ErrInvalidKeyCode, ev.EventType.VkCode)
		}
	}
	return nil
}

func coordInRange(v int32) bool {
	return v >= math.MinInt16 && v <= math.MaxInt16
}
