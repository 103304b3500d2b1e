// Package loadgen drives a recorder from many concurrent producers.
package loadgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recorder/core"
)

// EntryKind is the kind of every generated entry.
const EntryKind = "loadgen"

var (
	// ErrInvalidProducers indicates a non-positive producer count.
	ErrInvalidProducers = errors.New("producer count must be positive")

	// ErrMalformedPayload indicates a payload not produced by a Generator.
	ErrMalformedPayload = errors.New("malformed loadgen payload")
)

// Saver accepts entries without blocking on persistence.
type Saver interface {
	Save(entry core.Entry)
}

// Result summarizes a run.
type Result struct {
	Saved   int64
	Elapsed time.Duration
}

// Rate returns saved entries per second.
func (r Result) Rate() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Saved) / r.Elapsed.Seconds()
}

// Generator runs producers on a worker pool. Each producer saves its entries in
// sequence, so a correct recorder stores every producer's entries in order.
type Generator struct {
	pool        *ants.Pool
	producers   int
	perProducer int
	logger      *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator) error

// WithProducers sets the number of concurrent producers.
// Default is runtime.NumCPU().
func WithProducers(n int) Option {
	return func(g *Generator) error {
		if n < 1 {
			return ErrInvalidProducers
		}
		g.producers = n
		return nil
	}
}

// WithRecordsPerProducer sets how many entries each producer saves. Default is 1000.
func WithRecordsPerProducer(n int) Option {
	return func(g *Generator) error {
		g.perProducer = max(n, 0)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// NewGenerator creates a Generator whose pool holds one worker per producer.
func NewGenerator(opts ...Option) (*Generator, error) {
	g := &Generator{
		producers:   runtime.NumCPU(),
		perProducer: 1000,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	pool, err := ants.NewPool(g.producers, ants.WithPanicHandler(func(p any) {
		g.logger.Error("producer panicked", "panic", p)
	}))
	if err != nil {
		return nil, err
	}
	g.pool = pool
	return g, nil
}

// Run starts every producer and waits for them to finish or for ctx to end.
// Producers stop early once ctx is done; Result reports what was saved.
func (g *Generator) Run(ctx context.Context, saver Saver) (Result, error) {
	var (
		wg    sync.WaitGroup
		saved atomic.Int64
		errs  []error
	)
	started := time.Now()

	for p := range g.producers {
		wg.Add(1)
		err := g.pool.Submit(func() {
			defer wg.Done()
			for seq := range g.perProducer {
				if ctx.Err() != nil {
					return
				}
				saver.Save(core.NewEntry(EntryKind, FormatPayload(p, seq)))
				saved.Add(1)
			}
		})
		if err != nil {
			wg.Done()
			errs = append(errs, fmt.Errorf("submitting producer %d: %w", p, err))
		}
	}
	wg.Wait()

	res := Result{Saved: saved.Load(), Elapsed: time.Since(started)}
	g.logger.Debug("load generated", "producers", g.producers, "saved", res.Saved, "elapsed", res.Elapsed)
	if err := errors.Join(errs...); err != nil {
		return res, err
	}
	return res, ctx.Err()
}

// Producers returns the number of producers per run.
func (g *Generator) Producers() int {
	return g.producers
}

// Release stops the worker pool.
func (g *Generator) Release() {
	g.pool.Release()
}

// FormatPayload renders the payload of a producer's seq-th entry.
func FormatPayload(producer, seq int) string {
	return fmt.Sprintf("producer=%d seq=%d", producer, seq)
}

// ParsePayload reverses FormatPayload.
func ParsePayload(payload string) (producer, seq int, err error) {
	if _, err := fmt.Sscanf(payload, "producer=%d seq=%d", &producer, &seq); err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedPayload, payload)
	}
	return producer, seq, nil
}

// CheckOrder verifies that entries hold every producer's sequence in order
// without gaps, and returns the number of entries per producer.
func CheckOrder(entries []core.Entry) (map[int]int, error) {
	next := make(map[int]int)
	for i, e := range entries {
		if e.Kind != EntryKind {
			continue
		}
		producer, seq, err := ParsePayload(e.Payload)
		if err != nil {
			return nil, err
		}
		if seq != next[producer] {
			return nil, fmt.Errorf("position %d: producer %d has seq %d, want %d", i, producer, seq, next[producer])
		}
		next[producer]++
	}
	return next, nil
}
