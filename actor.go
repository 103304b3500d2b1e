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
	"log/slog"
	"time"

	"github.com/poiesic/recorder/internal/queue"
	"github.com/poiesic/recorder/storage"
)

// actor is the worker owning a Storage. It is the only code touching the storage
// while the recorder is open.
type actor[R, Q any] struct {
	storage  storage.Storage[R, Q]
	queue    *queue.Unbounded[command[R, Q]]
	batch    []R
	maxBatch int
	logger   *slog.Logger
	monitor  Monitor
}

func newActor[R, Q any](s storage.Storage[R, Q], q *queue.Unbounded[command[R, Q]], opts *options) *actor[R, Q] {
	return &actor[R, Q]{
		storage:  s,
		queue:    q,
		maxBatch: opts.maxBatch,
		logger:   opts.logger,
		monitor:  opts.monitor,
	}
}

// run processes commands until the queue is closed and drained.
//
// Saves arriving back to back are coalesced into one storage call. A Load found while
// coalescing ends the batch; it is kept in next and answered right after the flush,
// so every Save enqueued before a Load is visible to it.
func (a *actor[R, Q]) run(ctx context.Context) {
	var next *command[R, Q]
	for {
		var cmd command[R, Q]
		if next != nil {
			cmd, next = *next, nil
		} else {
			var ok bool
			if cmd, ok = a.queue.Pop(); !ok {
				return
			}
		}

		switch cmd.kind {
		case saveCommand:
			a.batch = append(a.batch, cmd.record)
			next = a.drain()
			a.flush(ctx)
		case loadCommand:
			a.answer(ctx, cmd.load)
		}
	}
}

// drain moves immediately available saves into the batch.
// It returns the Load that stopped it, if any; that command has left the queue.
func (a *actor[R, Q]) drain() *command[R, Q] {
	for a.maxBatch == 0 || len(a.batch) < a.maxBatch {
		cmd, ok := a.queue.TryPop()
		if !ok {
			return nil
		}
		if cmd.kind == loadCommand {
			return &cmd
		}
		a.batch = append(a.batch, cmd.record)
	}
	return nil
}

func (a *actor[R, Q]) flush(ctx context.Context) {
	if len(a.batch) == 0 {
		return
	}
	started := time.Now()
	a.storage.Save(ctx, a.batch)
	took := time.Since(started)

	a.logger.Debug("flushed batch", "size", len(a.batch), "took", took, "backlog", a.queue.Len())
	a.monitor.BatchFlushed(len(a.batch), took)

	// Drop references so flushed records can be collected; keep the capacity.
	clear(a.batch)
	a.batch = a.batch[:0]
}

func (a *actor[R, Q]) answer(ctx context.Context, req *loadRequest[R, Q]) {
	started := time.Now()
	records := a.storage.Load(ctx, req.query)
	took := time.Since(started)

	a.monitor.QueryAnswered(len(records), took)
	if !req.answer() {
		a.logger.Debug("query abandoned by caller, reply discarded")
		a.monitor.ReplyDiscarded()
		return
	}
	req.reply <- records
}
