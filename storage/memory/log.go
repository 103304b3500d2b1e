// Package memory provides the reference in-memory Storage.
// It is primarily a test double; in production you most likely want a database-backed adapter.
package memory

import (
	"context"
	"slices"

	"github.com/poiesic/recorder/storage"
)

// Log is an append-only, in-memory list of records addressed by position.
type Log[R any] struct {
	records []R
}

var _ storage.Storage[string, storage.Range] = (*Log[string])(nil)

// NewLog creates a log already holding initial.
func NewLog[R any](initial ...R) *Log[R] {
	return &Log[R]{records: slices.Clone(initial)}
}

// Save appends records preserving their order.
func (l *Log[R]) Save(_ context.Context, records []R) {
	l.records = append(l.records, records...)
}

// Load returns a copy of the records in the position range as of the call.
func (l *Log[R]) Load(_ context.Context, query storage.Range) []R {
	start, end := query.Clamp(len(l.records))
	return slices.Clone(l.records[start:end])
}

// Records returns a copy of every stored record.
func (l *Log[R]) Records() []R {
	return slices.Clone(l.records)
}

// Len returns the number of stored records.
func (l *Log[R]) Len() int {
	return len(l.records)
}
