// Package replay loads persisted recordings and dispatches their events
// as synthetic input. The Engine is a pull-based cursor over a loaded
// event stream; pacing is the caller's job (see Driver), which keeps the
// engine single-goroutine and deterministic.
package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"macrorec/recording"
)

var (
	// ErrMalformedDocument means the persisted recording is missing a
	// valid events array. Nothing is loaded partially.
	ErrMalformedDocument = errors.New("malformed recording document")

	// ErrInvalidSpeed means Start was given a non-positive speed
	// multiplier. Speeds are rejected rather than clamped.
	ErrInvalidSpeed = errors.New("speed multiplier must be positive")

	// ErrInvalidCoordinates means a mouse move carries coordinates
	// outside the signed 16-bit range the OS encoding accepts.
	ErrInvalidCoordinates = errors.New("invalid mouse coordinates")

	// ErrInvalidKeyCode means a key event carries a virtual key code
	// above 255.
	ErrInvalidKeyCode = errors.New("invalid virtual key code")

	// ErrSynthesisFailed wraps an OS rejection of an input injection.
	ErrSynthesisFailed = errors.New("input synthesis failed")
)

// Injector injects one validated input unit into the OS. The Windows
// implementation lives in the platform package; tests substitute stubs.
type Injector interface {
	MoveCursor(x, y int32) error
	Button(b recording.MouseButton, down bool) error
	Wheel(delta int16) error
	Key(vk uint32, down bool) error
}

// Engine owns one loaded event stream and an index cursor.
type Engine struct {
	injector Injector
	playing  bool
	events   []recording.RecordedEvent
	index    int
	speed    float64
}

func NewEngine(inj Injector) *Engine {
	return &Engine{injector: inj, speed: 1.0}
}

// Load replaces the current event stream with the one decoded from a
// persisted recording document. On any decode failure the previously
// loaded events and cursor are left untouched.
func (e *Engine) Load(data []byte) error {
	var probe struct {
		Events json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if len(probe.Events) == 0 || string(probe.Events) == "null" {
		return fmt.Errorf("%w: missing events field", ErrMalformedDocument)
	}

	var events []recording.RecordedEvent
	if err := json.Unmarshal(probe.Events, &events); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	e.events = events
	e.index = 0
	return nil
}

// SetEvents replaces the current stream with an already-decoded event
// sequence (e.g. one loaded from the recording store) and rewinds.
func (e *Engine) SetEvents(events []recording.RecordedEvent) {
	e.events = events
	e.index = 0
}

// LoadFile reads and loads a recording document from disk.
func (e *Engine) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read recording: %w", err)
	}
	return e.Load(data)
}

// Start arms playback from the beginning at the given speed multiplier.
func (e *Engine) Start(speed float64) error {
	if speed <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, speed)
	}
	e.playing = true
	e.index = 0
	e.speed = speed
	return nil
}

// Stop disarms playback and rewinds the cursor.
func (e *Engine) Stop() {
	e.playing = false
	e.index = 0
}

// IsPlaying reports whether playback is armed.
func (e *Engine) IsPlaying() bool {
	return e.playing
}

// Speed returns the active speed multiplier.
func (e *Engine) Speed() float64 {
	return e.speed
}

// Len returns the number of loaded events.
func (e *Engine) Len() int {
	return len(e.events)
}

// Progress returns playback progress as a percentage, 0 when nothing is
// loaded.
func (e *Engine) Progress() float64 {
	if len(e.events) == 0 {
		return 0
	}
	return float64(e.index) / float64(len(e.events)) * 100
}

// NextEvent returns the event under the cursor and advances it. The
// second return is false once the stream is exhausted. NextEvent never
// waits; the caller schedules the delay before dispatching.
func (e *Engine) NextEvent() (recording.RecordedEvent, bool) {
	if e.index >= len(e.events) {
		return recording.RecordedEvent{}, false
	}
	ev := e.events[e.index]
	e.index++
	return ev, true
}

// ExecuteEvent validates one event and injects it. Validation failures
// are returned before any OS call; an injector failure comes back
// wrapped as ErrSynthesisFailed.
func (e *Engine) ExecuteEvent(ev recording.RecordedEvent) error {
	if err := Validate(ev); err != nil {
		return err
	}

	var err error
	switch ev.EventType.Kind {
	case recording.MouseMove:
		err = e.injector.MoveCursor(*ev.X, *ev.Y)
	case recording.MouseDown:
		err = e.injector.Button(ev.EventType.Button, true)
	case recording.MouseUp:
		err = e.injector.Button(ev.EventType.Button, false)
	case recording.MouseWheel:
		err = e.injector.Wheel(ev.EventType.Delta)
	case recording.KeyDown:
		err = e.injector.Key(ev.EventType.VkCode, true)
	case recording.KeyUp:
		err = e.injector.Key(ev.EventType.VkCode, false)
	}

	if err != nil {
		return fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	return nil
}
