package recording

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i32(v int32) *int32 { return &v }

func TestState_StartThenStop_Empty(t *testing.T) {
	s := NewState()
	s.Start()
	events := s.Stop()
	assert.Empty(t, events)
	assert.False(t, s.IsRecording())
}

func TestState_AddOnlyWhileRecording(t *testing.T) {
	s := NewState()

	// Idle: appends are dropped.
	s.Add(EventType{Kind: MouseMove}, i32(1), i32(2))
	assert.Zero(t, s.Len())

	s.Start()
	s.Add(EventType{Kind: MouseMove}, i32(1), i32(2))
	s.Add(EventType{Kind: KeyDown, VkCode: 65}, nil, nil)
	require.Equal(t, 2, s.Len())

	events := s.Stop()
	require.Len(t, events, 2)

	// Frozen after stop.
	s.Add(EventType{Kind: KeyUp, VkCode: 65}, nil, nil)
	assert.Len(t, s.Stop(), 2)
}

func TestState_OffsetsNonDecreasing(t *testing.T) {
	s := NewState()
	s.Start()

	for i := 0; i < 50; i++ {
		s.Add(EventType{Kind: MouseMove}, i32(int32(i)), i32(0))
		if i%10 == 0 {
			time.Sleep(time.Millisecond)
		}
	}

	events := s.Stop()
	require.Len(t, events, 50)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i].TimeOffsetMS, events[i-1].TimeOffsetMS,
			"offsets must be non-decreasing in append order")
	}
}

func TestState_StartWhileRecordingKeepsEvents(t *testing.T) {
	s := NewState()
	s.Start()
	s.Add(EventType{Kind: KeyDown, VkCode: 32}, nil, nil)

	// A second Start mid-session is a no-op, not a reset.
	s.Start()
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.IsRecording())
}

func TestState_StartClearsPreviousSession(t *testing.T) {
	s := NewState()
	s.Start()
	s.Add(EventType{Kind: KeyDown, VkCode: 32}, nil, nil)
	require.Len(t, s.Stop(), 1)

	s.Start()
	assert.Zero(t, s.Len())
	assert.Empty(t, s.Stop())
}

func TestState_ElapsedZeroWhenIdle(t *testing.T) {
	s := NewState()
	assert.Zero(t, s.Elapsed())

	s.Start()
	time.Sleep(2 * time.Millisecond)
	assert.Greater(t, s.Elapsed(), time.Duration(0))

	s.Stop()
	assert.Zero(t, s.Elapsed())
}
