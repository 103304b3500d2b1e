package badger

import "errors"

var (
	// ErrInvalidLogName indicates an empty log name or one containing the key separator.
	ErrInvalidLogName = errors.New("invalid log name")

	// ErrNoSerializer indicates that NewLog was given a nil serializer.
	ErrNoSerializer = errors.New("log requires a serializer")

	// ErrInvalidChunkSize indicates a non-positive chunk size.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
)
