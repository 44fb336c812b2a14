package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrorec/recording"
)

func i32(v int32) *int32 { return &v }

func TestValidate_Coordinates(t *testing.T) {
	tests := []struct {
		name    string
		x, y    *int32
		wantErr bool
	}{
		{"origin", i32(0), i32(0), false},
		{"typical", i32(1920), i32(1080), false},
		{"negative in range", i32(-1024), i32(-768), false},
		{"int16 limits", i32(32767), i32(-32768), false},
		{"x too large", i32(40000), i32(0), true},
		{"y too small", i32(0), i32(-40000), true},
		{"missing x", nil, i32(0), true},
		{"missing both", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(recording.RecordedEvent{
				EventType: recording.EventType{Kind: recording.MouseMove},
				X:         tt.x,
				Y:         tt.y,
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinates)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_KeyCode(t *testing.T) {
	for _, kind := range []recording.EventKind{recording.KeyDown, recording.KeyUp} {
		err := Validate(recording.RecordedEvent{
			EventType: recording.EventType{Kind: kind, VkCode: 255},
		})
		assert.NoError(t, err)

		err = Validate(recording.RecordedEvent{
			EventType: recording.EventType{Kind: kind, VkCode: 300},
		})
		assert.ErrorIs(t, err, ErrInvalidKeyCode)
	}
}

// Validation failures must be rejected before any OS call is attempted.
func TestExecuteEvent_RejectsBeforeInjection(t *testing.T) {
	inj := &stubInjector{}
	e := NewEngine(inj)

	err := e.ExecuteEvent(recording.RecordedEvent{
		EventType: recording.EventType{Kind: recording.KeyDown, VkCode: 300},
	})
	require.ErrorIs(t, err, ErrInvalidKeyCode)

	err = e.ExecuteEvent(recording.RecordedEvent{
		EventType: recording.EventType{Kind: recording.MouseMove},
		X:         i32(40000),
		Y:         i32(0),
	})
	require.ErrorIs(t, err, ErrInvalidCoordinates)

	assert.Empty(t, inj.calls, "injector must never be reached for invalid events")
}

// Wheel and button events don't carry validated coordinates; they pass
// straight through.
func TestValidate_NonCoordinateEvents(t *testing.T) {
	assert.NoError(t, Validate(recording.RecordedEvent{
		EventType: recording.EventType{Kind: recording.MouseWheel, Delta: -120},
	}))
	assert.NoError(t, Validate(recording.RecordedEvent{
		EventType: recording.EventType{Kind: recording.MouseDown, Button: recording.ButtonRight},
	}))
}
