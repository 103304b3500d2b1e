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


package backend

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/recorder/storage"
)

// Supported storage kinds.
const (
	KindMemory = "memory"
	KindBadger = "badger"
	KindRedis  = "redis"
)

// Config selects and configures the storage behind a recorder.
type Config struct {
	// Kind is one of KindMemory, KindBadger or KindRedis.
	// Default: "memory"
	Kind string

	// Path is the BadgerDB directory. Empty means an in-memory database.
	Path string

	// RedisAddr is the Redis server address.
	// Example: "127.0.0.1:6379"
	RedisAddr string

	// Namespace names the log inside the backend: the key namespace for
	// BadgerDB and the list key for Redis.
	// Default: "entries"
	Namespace string

	// Retry controls how failed storage operations are retried before
	// records are dropped.
	Retry storage.RetryPolicy

	// Logger receives storage-level messages. Default: slog.Default()
	Logger *slog.Logger
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithKind sets the storage kind.
func WithKind(kind string) ConfigOption {
	return func(c *Config) {
		c.Kind = kind
	}
}

// WithPath sets the BadgerDB directory.
func WithPath(path string) ConfigOption {
	return func(c *Config) {
		c.Path = path
	}
}

// WithRedisAddr sets the Redis server address.
func WithRedisAddr(addr string) ConfigOption {
	return func(c *Config) {
		c.RedisAddr = addr
	}
}

// WithNamespace sets the log namespace.
func WithNamespace(ns string) ConfigOption {
	return func(c *Config) {
		c.Namespace = ns
	}
}

// WithRetry sets the retry policy.
func WithRetry(p storage.RetryPolicy) ConfigOption {
	return func(c *Config) {
		c.Retry = p
	}
}

// WithLogger sets the logger handed to the storage.
func WithLogger(logger *slog.Logger) ConfigOption {
	return func(c *Config) {
		c.Logger = logger
	}
}

// DefaultConfig returns an in-memory configuration.
func DefaultConfig() *Config {
	return &Config{
		Kind:      KindMemory,
		Namespace: "entries",
		Retry:     storage.DefaultRetryPolicy(),
		Logger:    slog.Default(),
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//   cfg := NewConfig(
//       WithKind(KindBadger),
//       WithPath("/var/lib/recorder"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize puts the configuration in canonical form.
func (c *Config) Normalize() {
	c.Kind = strings.ToLower(strings.TrimSpace(c.Kind))
	if c.Kind == "" {
		c.Kind = KindMemory
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Validate checks that the configuration is complete for its kind.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	switch c.Kind {
	case KindMemory:
	case KindBadger:
		if c.Namespace == "" {
			return fmt.Errorf("%w: Namespace is required", ErrInvalidConfig)
		}
	case KindRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: RedisAddr is required", ErrInvalidConfig)
		}
		if c.Namespace == "" {
			return fmt.Errorf("%w: Namespace is required", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind)
	}

	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
