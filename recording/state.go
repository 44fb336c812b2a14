package recording

import (
	"sync"
	"time"
)

// State holds an in-progress or just-finished recording. It is shared
// between the control side (Start/Stop) and the hook callback (Add),
// which runs on an OS-owned thread; every method takes the one mutex
// for a single bounded operation and never does I/O under it.
type State struct {
	mu        sync.Mutex
	recording bool
	start     time.Time
	events    []RecordedEvent
}

func NewState() *State {
	return &State{}
}

// Start begins a new session: clears accumulated events and resets the
// start instant. Calling Start while already recording is a no-op, so a
// racing second toggle cannot discard events mid-session.
func (s *State) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recording {
		return
	}
	s.recording = true
	s.start = time.Now()
	s.events = nil
}

// Stop ends the session and returns the captured events in arrival
// order. The events are retained until the next Start, so Stop is safe
// to call twice. Calling Stop while idle returns whatever the previous
// session captured (or nil).
func (s *State) Stop() []RecordedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recording = false
	return s.events
}

// Add appends one event iff a session is active, stamping it with the
// elapsed offset from the session start. Called from the hook callback,
// so it must stay bounded: one lock, one append.
func (s *State) Add(et EventType, x, y *int32) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return
	}
	s.events = append(s.events, RecordedEvent{
		EventType:    et,
		X:            x,
		Y:            y,
		TimeOffsetMS: uint64(now.Sub(s.start).Milliseconds()),
	})
}

// IsRecording reports whether a session is active.
func (s *State) IsRecording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Elapsed returns the time since the current session started, or zero
// when idle.
func (s *State) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.recording {
		return 0
	}
	return time.Since(s.start)
}

// Len returns the number of events captured so far.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
