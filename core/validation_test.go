package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateEntry(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		entry   *Entry
		wantErr error
	}{
		{
			name: "valid entry",
			entry: &Entry{
				Id:         1,
				Kind:       "audit",
				Payload:    "Hello world",
				RecordedAt: validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid entry with ID 0",
			entry: &Entry{
				Kind:       "audit",
				Payload:    "Hello world",
				RecordedAt: validTime,
			},
			wantErr: nil,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidEntry,
		},
		{
			name: "empty kind",
			entry: &Entry{
				Payload:    "Hello world",
				RecordedAt: validTime,
			},
			wantErr: ErrEmptyKind,
		},
		{
			name: "empty payload",
			entry: &Entry{
				Kind:       "audit",
				RecordedAt: validTime,
			},
			wantErr: ErrEmptyPayload,
		},
		{
			name: "future timestamp",
			entry: &Entry{
				Kind:       "audit",
				Payload:    "Hello world",
				RecordedAt: futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEntry() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntry() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidEntry) {
				t.Errorf("ValidateEntry() error = %v, want wrapped %v", err, ErrInvalidEntry)
			}
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	if !IsValidTimestamp(time.Now().Add(-time.Second)) {
		t.Error("past timestamp reported invalid")
	}
	if IsValidTimestamp(time.Now().Add(time.Hour)) {
		t.Error("future timestamp reported valid")
	}
}
