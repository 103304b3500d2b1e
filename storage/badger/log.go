// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/mus-format/mus-go"
	"github.com/poiesic/recorder/storage"
)

const defaultChunkSize = 256

// Log is an append-only list of records kept in a BadgerDB key namespace and
// addressed by position. It implements storage.Storage[R, storage.Range].
//
// A Log is not safe for concurrent use; a recorder worker owns it.
type Log[R any] struct {
	backend   *Backend
	name      string
	prefix    []byte
	lengthKey []byte
	length    int

	ser       mus.Serializer[R]
	chunkSize int
	retry     storage.RetryPolicy
	logger    *slog.Logger
}

var _ storage.Storage[string, storage.Range] = (*Log[string])(nil)

// LogOption configures a Log.
type LogOption func(*logConfig)

type logConfig struct {
	chunkSize int
	retry     storage.RetryPolicy
	logger    *slog.Logger
}

// WithChunkSize bounds the number of records written per transaction.
func WithChunkSize(n int) LogOption {
	return func(c *logConfig) {
		c.chunkSize = n
	}
}

// WithRetryPolicy sets how failed transactions are retried before records are dropped.
func WithRetryPolicy(p storage.RetryPolicy) LogOption {
	return func(c *logConfig) {
		c.retry = p
	}
}

// WithLogger sets the logger used to report dropped records and failed loads.
func WithLogger(logger *slog.Logger) LogOption {
	return func(c *logConfig) {
		c.logger = logger
	}
}

// NewLog opens the log called name in backend, picking up any records already stored there.
func NewLog[R any](backend *Backend, name string, ser mus.Serializer[R], opts ...LogOption) (*Log[R], error) {
	if name == "" || strings.Contains(name, ":") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogName, name)
	}
	if ser == nil {
		return nil, ErrNoSerializer
	}

	cfg := &logConfig{
		chunkSize: defaultChunkSize,
		retry:     storage.DefaultRetryPolicy(),
		logger:    backend.logger,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, cfg.chunkSize)
	}
	if err := cfg.retry.Validate(); err != nil {
		return nil, err
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	l := &Log[R]{
		backend:   backend,
		name:      name,
		prefix:    makeRecordPrefix(name),
		lengthKey: makeLengthKey(name),
		ser:       ser,
		chunkSize: cfg.chunkSize,
		retry:     cfg.retry,
		logger:    cfg.logger.With("log", name),
	}

	err := backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(l.lengthKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			n, err := decodeLength(val)
			l.length = int(n)
			return err
		})
	}, false)
	if err != nil {
		return nil, fmt.Errorf("reading length of log %s: %w", name, err)
	}
	return l, nil
}

// Save appends records in order, one write transaction per chunk.
// A chunk that still fails after retries is dropped together with the rest of
// the batch, so positions stay contiguous.
func (l *Log[R]) Save(ctx context.Context, records []R) {
	written := 0
	for chunk := range slices.Chunk(records, l.chunkSize) {
		err := l.retry.Do(ctx, func() error {
			return l.writeChunk(chunk)
		})
		if err != nil {
			l.logger.Error("dropping records", "count", len(records)-written, "position", l.length, "err", err)
			return
		}
		written += len(chunk)
	}
}

// writeChunk stores chunk after the current tail and advances the length on commit.
// Rewriting the same positions makes it safe to retry.
func (l *Log[R]) writeChunk(chunk []R) error {
	next := uint64(l.length)
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		for i, record := range chunk {
			key := makeRecordKey(l.prefix, next+uint64(i))
			if err := tx.Set(key, storage.Marshal(l.ser, record)); err != nil {
				return err
			}
		}
		if err := tx.Set(l.lengthKey, encodeLength(next+uint64(len(chunk)))); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return err
	}
	l.length += len(chunk)
	return nil
}

// Load returns the records in the position range.
// A read that keeps failing is logged and answered with no records.
func (l *Log[R]) Load(ctx context.Context, query storage.Range) []R {
	start, end := query.Clamp(l.length)
	if start == end {
		return nil
	}

	var records []R
	err := l.retry.Do(ctx, func() error {
		var err error
		records, err = l.readRange(uint64(start), uint64(end))
		return err
	})
	if err != nil {
		l.logger.Error("load failed", "start", start, "end", end, "err", err)
		return nil
	}
	return records
}

func (l *Log[R]) readRange(start, end uint64) ([]R, error) {
	records := make([]R, 0, end-start)
	err := l.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = l.prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(makeRecordKey(l.prefix, start)); iter.Valid(); iter.Next() {
			item := iter.Item()
			pos := binary.BigEndian.Uint64(item.Key()[len(l.prefix):])
			if pos >= end {
				break
			}
			err := item.Value(func(val []byte) error {
				record, err := storage.Unmarshal(l.ser, val)
				if err != nil {
					return fmt.Errorf("position %d: %w", pos, err)
				}
				records = append(records, record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return records, err
}

// Len returns the number of stored records.
func (l *Log[R]) Len() int {
	return l.length
}

// Name returns the key namespace of the log.
func (l *Log[R]) Name() string {
	return l.name
}
