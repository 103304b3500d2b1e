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

package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/poiesic/recorder/internal/queue"
	"github.com/poiesic/recorder/storage"
)

// Pending yields a Storage that may take a while to become ready,
// e.g. one requiring a network handshake or a cold-start load.
type Pending[R, Q any] func(ctx context.Context) (storage.Storage[R, Q], error)

// Recorder persists records asynchronously.
//
// Save hands a record to a background worker and returns immediately; the worker
// persists records in bulk through the Storage it owns. Records asks the worker for
// stored records and waits for the answer. Close stops the worker and gives the
// Storage back.
//
// A Recorder is safe for concurrent use by multiple goroutines. Commands from one
// goroutine are processed in the order they were issued.
type Recorder[R, Q any] struct {
	queue   *queue.Unbounded[command[R, Q]]
	done    chan struct{}
	logger  *slog.Logger
	monitor Monitor

	// Written by the worker before done is closed.
	storage storage.Storage[R, Q]
	err     error

	handedBack atomic.Bool
}

// New starts a worker owning s and returns its handle.
func New[R, Q any](s storage.Storage[R, Q], opts ...Option) *Recorder[R, Q] {
	return start(context.Background(), func(context.Context) (storage.Storage[R, Q], error) {
		return s, nil
	}, opts)
}

// NewLazy starts a worker whose storage is produced by pending.
//
// The handle is usable immediately: commands issued before pending returns are
// queued and processed once the storage is ready. ctx is passed to pending only.
// If pending fails, the worker stops; Close reports the failure and waiting
// Records calls return ErrWorkerTerminated.
func NewLazy[R, Q any](ctx context.Context, pending Pending[R, Q], opts ...Option) *Recorder[R, Q] {
	return start(ctx, pending, opts)
}

func start[R, Q any](ctx context.Context, pending Pending[R, Q], opts []Option) *Recorder[R, Q] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	r := &Recorder[R, Q]{
		queue:   queue.NewUnbounded[command[R, Q]](),
		done:    make(chan struct{}),
		logger:  o.logger,
		monitor: o.monitor,
	}
	go func() {
		defer close(r.done)
		r.storage, r.err = r.work(ctx, pending, o)
	}()
	return r
}

// work resolves the storage and runs the actor until the queue is closed and drained.
// A panic escaping the storage is converted into ErrWorkerPanicked.
func (r *Recorder[R, Q]) work(ctx context.Context, pending Pending[R, Q], o *options) (s storage.Storage[R, Q], err error) {
	defer func() {
		if p := recover(); p != nil {
			s, err = nil, fmt.Errorf("%w: %v", ErrWorkerPanicked, p)
		}
		if err != nil {
			dropped := r.queue.Fail()
			r.logger.Error("recorder worker terminated", "err", err, "droppedCommands", dropped)
		} else {
			r.logger.Debug("recorder worker stopped")
		}
		r.monitor.WorkerStopped(err)
	}()

	started := time.Now()
	if pending == nil {
		return nil, fmt.Errorf("%w: no storage provided", ErrStorageUnavailable)
	}
	s, err = pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: nil storage", ErrStorageUnavailable)
	}
	wait := time.Since(started)
	r.logger.Debug("recorder worker started", "storageWait", wait, "backlog", r.queue.Len())
	r.monitor.StorageReady(wait)

	newActor(s, r.queue, o).run(context.Background())
	return s, nil
}

// Save enqueues record for persistence and returns without waiting for the storage.
//
// Calling Save after Close is a programming error and panics. If the worker has
// terminated abnormally the record is dropped and logged.
func (r *Recorder[R, Q]) Save(record R) {
	err := r.queue.Push(command[R, Q]{kind: saveCommand, record: record})
	if err == nil {
		return
	}
	if errors.Is(err, queue.ErrClosed) {
		panic("recorder: Save called after Close")
	}
	r.logger.Error("dropping record", "err", ErrWorkerTerminated)
	r.monitor.RecordDropped()
}

// Records returns the stored records matching query.
//
// Every record passed to Save by the calling goroutine before Records is included
// in the answer. If ctx ends before the worker takes up the query, Records returns
// ctx.Err() and the worker discards the answer once computed. An answer the worker
// already committed to is returned even if ctx has ended meanwhile. If the worker terminates before answering, the error
// wraps ErrWorkerTerminated. Calling Records after Close panics.
func (r *Recorder[R, Q]) Records(ctx context.Context, query Q) ([]R, error) {
	req := newLoadRequest[R, Q](query)
	if err := r.queue.Push(command[R, Q]{kind: loadCommand, load: req}); err != nil {
		if errors.Is(err, queue.ErrClosed) {
			panic("recorder: Records called after Close")
		}
		return nil, r.terminated()
	}

	select {
	case records := <-req.reply:
		return records, nil
	case <-r.done:
		// The worker answers everything it dequeued before exiting.
		select {
		case records := <-req.reply:
			return records, nil
		default:
		}
		return nil, r.terminated()
	case <-ctx.Done():
		if req.abandon() {
			return nil, ctx.Err()
		}
		// The worker claimed the request first; its reply is already on the way.
		return <-req.reply, nil
	}
}

// terminated waits for the worker to exit and describes why it did.
func (r *Recorder[R, Q]) terminated() error {
	<-r.done
	if r.err != nil {
		return fmt.Errorf("%w: %w", ErrWorkerTerminated, r.err)
	}
	return ErrWorkerTerminated
}

// Close stops accepting commands, waits for the worker to process everything
// already enqueued and returns the storage.
//
// If ctx ends first, Close returns ctx.Err() while the worker keeps draining;
// Close may be called again to collect the storage. Once the storage has been
// returned, further calls return ErrRecorderClosed. If the worker failed, its
// error is returned instead of the storage.
func (r *Recorder[R, Q]) Close(ctx context.Context) (storage.Storage[R, Q], error) {
	r.queue.Close()

	select {
	case <-r.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if !r.handedBack.CompareAndSwap(false, true) {
		return nil, ErrRecorderClosed
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.storage, nil
}

// Done is closed once the worker has exited.
func (r *Recorder[R, Q]) Done() <-chan struct{} {
	return r.done
}

// Backlog returns the number of commands waiting for the worker.
func (r *Recorder[R, Q]) Backlog() int {
	return r.queue.Len()
}
