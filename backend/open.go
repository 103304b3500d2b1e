// Package backend builds the entry storage selected at runtime by configuration.
package backend

import (
	"context"
	"fmt"
	"io"

	"github.com/poiesic/recorder/core"
	"github.com/poiesic/recorder/storage"
	badgerstore "github.com/poiesic/recorder/storage/badger"
	"github.com/poiesic/recorder/storage/memory"
	redisstore "github.com/poiesic/recorder/storage/redis"
)

// EntryStorage is the storage every kind provides.
type EntryStorage = storage.Storage[core.Entry, storage.Range]

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the storage described by cfg. The returned Closer releases the
// underlying database or connection and must be called after the recorder
// owning the storage has been closed.
func Open(ctx context.Context, cfg *Config) (EntryStorage, io.Closer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	switch cfg.Kind {
	case KindMemory:
		return memory.NewLog[core.Entry](), nopCloser{}, nil

	case KindBadger:
		db, err := badgerstore.OpenBackendWithLogger(cfg.Path, cfg.Path == "", cfg.Logger)
		if err != nil {
			return nil, nil, fmt.Errorf("opening badger at %q: %w", cfg.Path, err)
		}
		log, err := badgerstore.NewLog(db, cfg.Namespace, core.EntryMUS,
			badgerstore.WithRetryPolicy(cfg.Retry),
			badgerstore.WithLogger(cfg.Logger))
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		cfg.Logger.Debug("opened badger storage", "path", cfg.Path, "namespace", log.Name(), "records", log.Len())
		return log, db, nil

	case KindRedis:
		client := redisstore.NewGoRedisClient(cfg.RedisAddr)
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		log, err := redisstore.NewLog(client, cfg.Namespace, core.EntryMUS, cfg.Retry, cfg.Logger)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		cfg.Logger.Debug("opened redis storage", "addr", cfg.RedisAddr, "key", cfg.Namespace)
		return log, client, nil
	}

	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
}
