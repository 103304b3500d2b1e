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

package core

import (
	"fmt"
	"time"
)

// ValidateEntry validates an Entry according to domain rules.
//
// Validation rules:
//   - Kind must not be empty
//   - Payload must not be empty
//   - RecordedAt must not be in the future
//
// The ID is not validated; 0 is a legal hash value.
func ValidateEntry(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.Kind == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyKind)
	}

	if entry.Payload == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyPayload)
	}

	if !IsValidTimestamp(entry.RecordedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
