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

import "errors"

var (
	// ErrRecorderClosed is returned by Close once the storage has already been handed back.
	ErrRecorderClosed = errors.New("recorder already closed")

	// ErrWorkerTerminated is returned by Records when the worker stopped without answering.
	ErrWorkerTerminated = errors.New("recorder worker terminated")

	// ErrWorkerPanicked indicates the worker stopped because a storage call panicked.
	ErrWorkerPanicked = errors.New("recorder worker panicked")

	// ErrStorageUnavailable indicates a lazily constructed storage could not be obtained.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
