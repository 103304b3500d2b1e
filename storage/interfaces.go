package storage

import "context"

// Storage persists and retrieves records on behalf of a single recorder worker.
//
// A Storage value is owned by exactly one worker for the lifetime of its recorder;
// implementations therefore need no internal locking for calls made by the worker.
//
// Save and Load are infallible at this interface. Implementations are solely
// responsible for retrying, logging or dropping on backend failure, and must not panic.
type Storage[R, Q any] interface {
	// Save persists all records in the given order.
	// The worker reuses the slice after Save returns, so implementations must copy
	// anything they retain beyond the call.
	Save(ctx context.Context, records []R)

	// Load returns the records matching query.
	// The result reflects every Save call the worker has completed before this call.
	Load(ctx context.Context, query Q) []R
}
