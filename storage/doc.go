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

// Package storage defines the persistence contract used by recorder workers.
//
// A [Storage] is the single extension point of the recorder: the worker hands it
// batches of records to persist and queries to answer. Any backend (in-memory list,
// file, database client, network service) can be plugged in by implementing the
// two methods of the interface.
//
// # Ownership
//
// A Storage value is handed to exactly one worker, which is the only caller of
// Save and Load until the recorder is closed and the value is returned. Adapters
// in this module rely on that and carry no locks.
//
// # Failure Handling
//
// Save and Load cannot report errors. Adapters own their failure policy:
//
//	policy := storage.DefaultRetryPolicy()
//	if err := policy.Do(ctx, func() error { return backend.Write(batch) }); err != nil {
//	    logger.Error("dropping batch", "size", len(batch), "err", err)
//	}
//
// # Bundled Adapters
//
//   - memory: reference in-memory log, used as a test double
//   - badger: BadgerDB-backed log
//   - redis: Redis list-backed log
//
// All of them answer [Range] queries: a half-open span of record positions.
package storage
