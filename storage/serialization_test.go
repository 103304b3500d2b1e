package storage

import (
	"testing"
	"time"

	"github.com/poiesic/recorder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_ID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := Marshal[core.ID](core.IDMUS, tt.id)
			require.NotEmpty(t, data)

			decoded, err := Unmarshal[core.ID](core.IDMUS, data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshal_EmptyID(t *testing.T) {
	_, err := Unmarshal[core.ID](core.IDMUS, []byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshal_Entry(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name  string
		entry core.Entry
	}{
		{
			name: "complete entry",
			entry: core.Entry{
				Id:         core.IDFromContent("audit"),
				Kind:       "audit",
				Payload:    "user 7 logged in",
				RecordedAt: now,
			},
		},
		{
			name: "unicode payload",
			entry: core.Entry{
				Id:         1,
				Kind:       "chat",
				Payload:    "héllo wörld ✓",
				RecordedAt: now,
			},
		},
		{
			name: "empty strings",
			entry: core.Entry{
				RecordedAt: time.UnixMicro(0).UTC(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := Marshal[core.Entry](core.EntryMUS, tt.entry)
			decoded, err := Unmarshal[core.Entry](core.EntryMUS, data)
			require.NoError(t, err)
			assert.Equal(t, tt.entry.Id, decoded.Id)
			assert.Equal(t, tt.entry.Kind, decoded.Kind)
			assert.Equal(t, tt.entry.Payload, decoded.Payload)
			assert.True(t, tt.entry.RecordedAt.Equal(decoded.RecordedAt))
		})
	}
}

func TestUnmarshal_EntryTruncated(t *testing.T) {
	data := Marshal[core.Entry](core.EntryMUS, core.Entry{Kind: "audit", Payload: "payload", RecordedAt: time.Now()})

	_, err := Unmarshal[core.Entry](core.EntryMUS, data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestUnmarshal_EntryTrailingBytes(t *testing.T) {
	data := Marshal[core.Entry](core.EntryMUS, core.Entry{Kind: "audit", Payload: "payload", RecordedAt: time.Now()})

	_, err := Unmarshal[core.Entry](core.EntryMUS, append(data, 0x01))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
