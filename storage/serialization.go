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

package storage

import (
	"fmt"

	"github.com/mus-format/mus-go"
	"github.com/poiesic/recorder/core"
)

var (
	_ mus.Serializer[core.ID]    = core.IDMUS
	_ mus.Serializer[core.Entry] = core.EntryMUS
)

// Marshal serializes v with ser into a freshly allocated buffer.
func Marshal[T any](ser mus.Serializer[T], v T) []byte {
	buf := make([]byte, ser.Size(v))
	ser.Marshal(v, buf)
	return buf
}

// Unmarshal deserializes a single value from data.
// Trailing bytes are reported as ErrSerializationFailed.
func Unmarshal[T any](ser mus.Serializer[T], data []byte) (T, error) {
	v, n, err := ser.Unmarshal(data)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		var zero T
		return zero, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return v, nil
}
