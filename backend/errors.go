package backend

import "errors"

var (
	// ErrUnknownKind indicates a storage kind Open cannot build.
	ErrUnknownKind = errors.New("unknown storage kind")

	// ErrInvalidConfig indicates a configuration missing a field its kind requires.
	ErrInvalidConfig = errors.New("invalid backend config")
)
