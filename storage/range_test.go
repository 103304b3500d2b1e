package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRange_Clamp(t *testing.T) {
	tests := []struct {
		name      string
		r         Range
		n         int
		wantStart int
		wantEnd   int
	}{
		{"within bounds", Range{0, 2}, 3, 0, 2},
		{"end past length", Range{1, 10}, 3, 1, 3},
		{"negative start", Range{-4, 2}, 3, 0, 2},
		{"start past length", Range{5, 9}, 3, 3, 3},
		{"inverted", Range{2, 1}, 3, 2, 2},
		{"all negative", Range{-5, -1}, 3, 0, 0},
		{"empty store", Range{0, 5}, 0, 0, 0},
		{"all", All(), 7, 0, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.r.Clamp(tt.n)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}
