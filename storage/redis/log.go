// Package redis provides a Redis list Storage for recorders.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mus-format/mus-go"
	"github.com/poiesic/recorder/storage"
)

// ErrInvalidKey indicates an empty list key.
var ErrInvalidKey = errors.New("redis list key must not be empty")

// Log stores records as the elements of one Redis list, addressed by position.
// It implements storage.Storage[R, storage.Range].
type Log[R any] struct {
	client ListClient
	key    string
	ser    mus.Serializer[R]
	retry  storage.RetryPolicy
	logger *slog.Logger
}

var _ storage.Storage[string, storage.Range] = (*Log[string])(nil)

// NewLog returns a log over the list at key.
func NewLog[R any](client ListClient, key string, ser mus.Serializer[R], retry storage.RetryPolicy, logger *slog.Logger) (*Log[R], error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	if err := retry.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Log[R]{
		client: client,
		key:    key,
		ser:    ser,
		retry:  retry,
		logger: logger.With("redisKey", key),
	}, nil
}

// Save appends records with a single RPUSH.
// A retried RPUSH may duplicate the batch if the first reply was lost.
func (l *Log[R]) Save(ctx context.Context, records []R) {
	if len(records) == 0 {
		return
	}
	values := make([][]byte, len(records))
	for i, record := range records {
		values[i] = storage.Marshal(l.ser, record)
	}

	err := l.retry.Do(ctx, func() error {
		_, err := l.client.RPush(ctx, l.key, values...)
		return err
	})
	if err != nil {
		l.logger.Error("dropping records", "count", len(records), "err", err)
	}
}

// Load returns the records in the position range with a single LRANGE.
// A read that keeps failing is logged and answered with no records.
func (l *Log[R]) Load(ctx context.Context, query storage.Range) []R {
	start := max(query.Start, 0)
	if query.End <= start {
		return nil
	}

	var raw []string
	err := l.retry.Do(ctx, func() error {
		var err error
		// LRANGE stops are inclusive.
		raw, err = l.client.LRange(ctx, l.key, int64(start), int64(query.End-1))
		return err
	})
	if err != nil {
		l.logger.Error("load failed", "start", start, "end", query.End, "err", err)
		return nil
	}

	records := make([]R, 0, len(raw))
	for i, val := range raw {
		record, err := storage.Unmarshal(l.ser, []byte(val))
		if err != nil {
			l.logger.Error("load failed", "err", fmt.Errorf("position %d: %w", start+i, err))
			return nil
		}
		records = append(records, record)
	}
	return records
}
