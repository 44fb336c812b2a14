// Package recording defines the input event model and the shared
// recording state the capture hooks append into.
package recording

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind identifies one variant of the input event set.
type EventKind string

const (
	MouseMove  EventKind = "mouse_move"
	MouseDown  EventKind = "mouse_down"
	MouseUp    EventKind = "mouse_up"
	MouseWheel EventKind = "mouse_wheel"
	KeyDown    EventKind = "key_down"
	KeyUp      EventKind = "key_up"
)

// MouseButton identifies which mouse button an event refers to.
type MouseButton string

const (
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

// EventType is the tagged variant describing what happened. Only the
// fields relevant to Kind are set: Button for mouse_down/mouse_up,
// Delta for mouse_wheel, VkCode for key_down/key_up.
type EventType struct {
	Kind   EventKind   `json:"type"`
	Button MouseButton `json:"button,omitempty"`
	Delta  int16       `json:"delta,omitempty"`
	VkCode uint32      `json:"vk_code,omitempty"`
}

// RecordedEvent is one captured input occurrence. X/Y are set only for
// mouse events, and may be nil if no coordinate source was available.
// TimeOffsetMS is milliseconds since the recording session started,
// measured on the monotonic clock.
type RecordedEvent struct {
	EventType    EventType `json:"event_type"`
	X            *int32    `json:"x"`
	Y            *int32    `json:"y"`
	TimeOffsetMS uint64    `json:"time_offset_ms"`
}

// Document is the persisted form of a recording.
type Document struct {
	Events     []RecordedEvent `json:"events"`
	DurationMS int64           `json:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}

// IsMouse reports whether the event carries cursor coordinates.
func (k EventKind) IsMouse() bool {
	switch k {
	case MouseMove, MouseDown, MouseUp, MouseWheel:
		return true
	}
	return false
}

// UnmarshalJSON decodes an EventType and rejects variants outside the
// closed set, so a malformed document fails at load rather than at
// dispatch.
func (et *EventType) UnmarshalJSON(data []byte) error {
	type raw EventType
	var r raw
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}

	switch r.Kind {
	case MouseMove, MouseWheel, KeyDown, KeyUp:
	case MouseDown, MouseUp:
		switch r.Button {
		case ButtonLeft, ButtonRight, ButtonMiddle:
		default:
			return fmt.Errorf("unknown mouse button %q", r.Button)
		}
	default:
		return fmt.Errorf("unknown event type %q", r.Kind)
	}

	*et = EventType(r)
	return nil
}

// Duration returns the span of the event sequence, taken from the last
// event's offset. An empty sequence has zero duration.
func Duration(events []RecordedEvent) time.Duration {
	if len(events) == 0 {
		return 0
	}
	return time.Duration(events[len(events)-1].TimeOffsetMS) * time.Millisecond
}
