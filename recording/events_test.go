package recording

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventType_DecodeVariants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want EventType
	}{
		{
			name: "mouse move",
			in:   `{"type":"mouse_move"}`,
			want: EventType{Kind: MouseMove},
		},
		{
			name: "mouse down left",
			in:   `{"type":"mouse_down","button":"left"}`,
			want: EventType{Kind: MouseDown, Button: ButtonLeft},
		},
		{
			name: "mouse up middle",
			in:   `{"type":"mouse_up","button":"middle"}`,
			want: EventType{Kind: MouseUp, Button: ButtonMiddle},
		},
		{
			name: "wheel with negative delta",
			in:   `{"type":"mouse_wheel","delta":-120}`,
			want: EventType{Kind: MouseWheel, Delta: -120},
		},
		{
			name: "key down",
			in:   `{"type":"key_down","vk_code":65}`,
			want: EventType{Kind: KeyDown, VkCode: 65},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var et EventType
			require.NoError(t, json.Unmarshal([]byte(tt.in), &et))
			assert.Equal(t, tt.want, et)
		})
	}
}

func TestEventType_DecodeRejectsUnknown(t *testing.T) {
	var et EventType
	err := json.Unmarshal([]byte(`{"type":"mouse_teleport"}`), &et)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")

	err = json.Unmarshal([]byte(`{"type":"mouse_down","button":"fourth"}`), &et)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mouse button")
}

func TestRecordedEvent_JSONShape(t *testing.T) {
	x, y := int32(100), int32(200)
	ev := RecordedEvent{
		EventType:    EventType{Kind: MouseDown, Button: ButtonLeft},
		X:            &x,
		Y:            &y,
		TimeOffsetMS: 50,
	}

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"event_type":{"type":"mouse_down","button":"left"},"x":100,"y":200,"time_offset_ms":50}`,
		string(data))

	// Keyboard events carry explicit nulls for the coordinates.
	data, err = json.Marshal(RecordedEvent{
		EventType:    EventType{Kind: KeyUp, VkCode: 13},
		TimeOffsetMS: 120,
	})
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"event_type":{"type":"key_up","vk_code":13},"x":null,"y":null,"time_offset_ms":120}`,
		string(data))
}

func TestEventKind_IsMouse(t *testing.T) {
	assert.True(t, MouseMove.IsMouse())
	assert.True(t, MouseWheel.IsMouse())
	assert.False(t, KeyDown.IsMouse())
	assert.False(t, KeyUp.IsMouse())
}

func TestDuration(t *testing.T) {
	assert.Zero(t, Duration(nil))

	events := []RecordedEvent{
		{EventType: EventType{Kind: MouseMove}, TimeOffsetMS: 0},
		{EventType: EventType{Kind: KeyDown, VkCode: 65}, TimeOffsetMS: 1500},
	}
	assert.Equal(t, 1500*time.Millisecond, Duration(events))
}
