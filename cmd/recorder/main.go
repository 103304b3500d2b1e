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


package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/poiesic/recorder"
	"github.com/poiesic/recorder/backend"
	"github.com/poiesic/recorder/core"
	"github.com/poiesic/recorder/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "recorder",
		Usage: "Record entries asynchronously into a pluggable storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "record",
				Usage:  "Record every non-empty line of standard input as an entry",
				Action: recordCommand,
				Flags: append(storageFlags(),
					&cli.StringFlag{
						Name:  "kind",
						Usage: "Kind assigned to recorded entries",
						Value: "note",
					},
				),
			},
			{
				Name:   "query",
				Usage:  "Print the entries in a position range",
				Action: queryCommand,
				Flags: append(storageFlags(),
					&cli.IntFlag{
						Name:  "start",
						Usage: "First position to print",
						Value: 0,
					},
					&cli.IntFlag{
						Name:  "end",
						Usage: "Position after the last one to print (-1 for all)",
						Value: -1,
					},
				),
			},
			{
				Name:   "bench",
				Usage:  "Save generated entries from concurrent producers and verify their order",
				Action: benchCommand,
				Flags: append(storageFlags(),
					&cli.IntFlag{
						Name:  "producers",
						Usage: "Number of concurrent producers",
						Value: 8,
					},
					&cli.IntFlag{
						Name:  "per-producer",
						Usage: "Entries saved by each producer",
						Value: 10000,
					},
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Serve Prometheus metrics on this address, e.g. :9090",
					},
				),
			},
		},
	}
}

const defaultDBPath = "recorder-data"

// storageFlags are shared by every command that opens a storage.
func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Storage kind (memory, badger, redis)",
			Value:   backend.KindBadger,
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   defaultDBPath,
		},
		&cli.StringFlag{
			Name:  "redis-addr",
			Usage: "Redis server address",
			Value: "127.0.0.1:6379",
		},
		&cli.StringFlag{
			Name:  "namespace",
			Usage: "Log name inside the storage",
			Value: "entries",
		},
		&cli.IntFlag{
			Name:  "max-batch",
			Usage: "Maximum records per storage write (0 for unlimited)",
			Value: 0,
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum attempts for failed storage operations",
			Value: 3,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff",
			Value: 50 * time.Millisecond,
		},
		&cli.DurationFlag{
			Name:  "close-timeout",
			Usage: "How long to wait for pending entries to be stored",
			Value: 30 * time.Second,
		},
	}
}

func backendConfig(c *cli.Context) (*backend.Config, error) {
	cfg := backend.NewConfig(
		backend.WithKind(c.String("backend")),
		backend.WithPath(c.String("db")),
		backend.WithRedisAddr(c.String("redis-addr")),
		backend.WithNamespace(c.String("namespace")),
		backend.WithRetry(storage.RetryPolicy{
			MaxAttempts: c.Int("max-retries"),
			BaseDelay:   c.Duration("retry-delay"),
		}),
		backend.WithLogger(slog.Default().With("component", "storage")),
	)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage configuration: %w", err)
	}
	if c.Int("max-batch") < 0 {
		return nil, fmt.Errorf("max-batch must not be negative")
	}
	return cfg, nil
}

// session is a recorder over a lazily opened storage plus what closes it.
type session struct {
	rec    *recorder.Recorder[core.Entry, storage.Range]
	closer io.Closer
}

// startSession starts a recorder immediately; the storage opens in the background.
func startSession(c *cli.Context, cfg *backend.Config, opts ...recorder.Option) *session {
	s := &session{}
	opts = append([]recorder.Option{
		recorder.WithLogger(slog.Default().With("component", "recorder")),
		recorder.WithMaxBatch(c.Int("max-batch")),
	}, opts...)
	s.rec = recorder.NewLazy(c.Context, func(ctx context.Context) (storage.Storage[core.Entry, storage.Range], error) {
		st, closer, err := backend.Open(ctx, cfg)
		s.closer = closer
		return st, err
	}, opts...)
	return s
}

// finish closes the recorder, hands the storage to use when not nil, then releases it.
func (s *session) finish(c *cli.Context, use func(backend.EntryStorage) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("close-timeout"))
	defer cancel()

	st, err := s.rec.Close(ctx)
	// closer is written by the worker and only safe to read once it has exited.
	select {
	case <-s.rec.Done():
		if s.closer != nil {
			defer s.closer.Close()
		}
	default:
	}
	if err != nil {
		return fmt.Errorf("closing recorder: %w", err)
	}
	if use != nil {
		return use(st)
	}
	return nil
}

// linesFrom returns an iterator over the non-empty lines of r.
func linesFrom(r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if !yield(line, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", err)
		}
	}
}

func recordCommand(c *cli.Context) error {
	cfg, err := backendConfig(c)
	if err != nil {
		return err
	}
	kind := c.String("kind")
	if cfg.Kind == backend.KindBadger && cfg.Path == "" {
		slog.Warn("badger is running in memory, recorded entries will not outlive this run")
	}

	s := startSession(c, cfg)
	count := 0
	var readErr error
	for line, err := range linesFrom(c.App.Reader) {
		if err != nil {
			readErr = fmt.Errorf("reading input: %w", err)
			break
		}
		entry := core.NewEntry(kind, line)
		if err := core.ValidateEntry(&entry); err != nil {
			readErr = err
			break
		}
		s.rec.Save(entry)
		count++
	}

	if err := s.finish(c, nil); err != nil {
		return err
	}
	if readErr != nil {
		return readErr
	}
	slog.Info("recorded entries", "count", count, "backend", cfg.Kind)
	return nil
}

func queryCommand(c *cli.Context) error {
	cfg, err := backendConfig(c)
	if err != nil {
		return err
	}
	query := storage.Range{Start: c.Int("start"), End: c.Int("end")}
	if query.End < 0 {
		query.End = storage.All().End
	}

	s := startSession(c, cfg)
	entries, queryErr := s.rec.Records(c.Context, query)
	if err := s.finish(c, nil); err != nil {
		return err
	}
	if queryErr != nil {
		return fmt.Errorf("query failed: %w", queryErr)
	}

	w := c.App.Writer
	for i, e := range entries {
		fmt.Fprintf(w, "%d\t%016x\t%s\t%s\t%s\n",
			max(query.Start, 0)+i, uint64(e.Id), e.RecordedAt.Format(time.RFC3339Nano), e.Kind, e.Payload)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
