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

// Package recorder persists records asynchronously.
//
// Callers that must not wait on a storage backend (request handlers, hot loops)
// hand records to a [Recorder]. A single background worker owns the backend,
// batches bursts of writes into bulk Save calls and answers queries without ever
// reordering them ahead of writes issued earlier by the same goroutine.
//
// # Usage
//
//	log := memory.NewLog[string]()
//	rec := recorder.New[string, storage.Range](log)
//
//	rec.Save("first")  // returns immediately
//	rec.Save("second")
//
//	got, err := rec.Records(ctx, storage.Range{Start: 0, End: 2})
//	// got == []string{"first", "second"}
//
//	s, err := rec.Close(ctx) // drains the queue and hands the storage back
//
// # Slow Backends
//
// [NewLazy] starts accepting commands before the storage exists. The worker waits
// for the pending constructor once, then processes everything queued meanwhile:
//
//	rec := recorder.NewLazy(ctx, func(ctx context.Context) (storage.Storage[core.Entry, storage.Range], error) {
//	    return dialWarehouse(ctx) // may take seconds
//	})
//
// # Failure Model
//
// Storage implementations own retries and error reporting; the worker treats
// Save and Load as infallible. Using a recorder after Close panics. If the
// worker dies (a storage call panicked, or a lazy constructor failed), waiting
// Records calls return [ErrWorkerTerminated] and Close returns the cause.
//
// The command queue is unbounded: a producer persistently faster than the
// backend grows memory without limit.
package recorder
