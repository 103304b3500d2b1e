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

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier for entries.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Entry is a single recorded event.
// Entries are produced by callers, handed to a recorder and persisted in submission order.
type Entry struct {
	Id         ID
	Kind       string    // Application-defined category, e.g. "audit", "request"
	Payload    string    // Opaque body of the entry
	RecordedAt time.Time // When the entry was produced (microsecond precision once persisted)
}

// NewEntry creates an Entry stamped with the current time.
// The ID is derived from kind and payload so that identical events share an ID.
func NewEntry(kind, payload string) Entry {
	return Entry{
		Id:         IDFromContent(kind + "\x00" + payload),
		Kind:       kind,
		Payload:    payload,
		RecordedAt: time.Now().UTC(),
	}
}
