package badger

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mus-format/mus-go/ord"
	"github.com/poiesic/recorder"
	"github.com/poiesic/recorder/core"
	"github.com/poiesic/recorder/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = storage.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}

func TestNewLog_Validation(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewLog(backend, "", ord.String)
	assert.ErrorIs(t, err, ErrInvalidLogName)

	_, err = NewLog(backend, "a:b", ord.String)
	assert.ErrorIs(t, err, ErrInvalidLogName)

	_, err = NewLog(backend, "log", ord.String, WithChunkSize(0))
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = NewLog(backend, "log", ord.String, WithRetryPolicy(storage.RetryPolicy{}))
	assert.ErrorIs(t, err, storage.ErrInvalidRetryPolicy)
}

func TestLog_SaveAndLoad(t *testing.T) {
	log, backend, err := NewMemoryLog("events", ord.String)
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	log.Save(ctx, []string{"first", "second"})
	log.Save(ctx, []string{"third"})

	assert.Equal(t, 3, log.Len())
	assert.Equal(t, []string{"first", "second", "third"}, log.Load(ctx, storage.All()))
	assert.Equal(t, []string{"second"}, log.Load(ctx, storage.Range{Start: 1, End: 2}))
	assert.Empty(t, log.Load(ctx, storage.Range{Start: 3, End: 10}))
	assert.Empty(t, log.Load(ctx, storage.Range{Start: 2, End: 1}))
}

func TestLog_ChunkedSavePreservesOrder(t *testing.T) {
	log, backend, err := NewMemoryLog("chunks", ord.String, WithChunkSize(3))
	require.NoError(t, err)
	defer backend.Close()

	var want []string
	for i := 0; i < 10; i++ {
		want = append(want, "r"+strconv.Itoa(i))
	}
	log.Save(context.Background(), want)

	assert.Equal(t, want, log.Load(context.Background(), storage.All()))
}

func TestLog_PositionsSortPastByteBoundary(t *testing.T) {
	log, backend, err := NewMemoryLog("wide", ord.String)
	require.NoError(t, err)
	defer backend.Close()

	var want []string
	for i := 0; i < 300; i++ {
		want = append(want, strconv.Itoa(i))
	}
	log.Save(context.Background(), want)

	assert.Equal(t, want[250:260], log.Load(context.Background(), storage.Range{Start: 250, End: 260}))
}

func TestLog_NamespacesAreIsolated(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	a, err := NewLog(backend, "a", ord.String)
	require.NoError(t, err)
	ab, err := NewLog(backend, "ab", ord.String)
	require.NoError(t, err)

	ctx := context.Background()
	a.Save(ctx, []string{"from a"})
	ab.Save(ctx, []string{"from ab 1", "from ab 2"})

	assert.Equal(t, []string{"from a"}, a.Load(ctx, storage.All()))
	assert.Equal(t, []string{"from ab 1", "from ab 2"}, ab.Load(ctx, storage.All()))
}

func TestLog_ReopenKeepsRecords(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	log, err := NewLog(backend, "entries", core.EntryMUS)
	require.NoError(t, err)

	entry := core.NewEntry("note", "persist me")
	log.Save(ctx, []core.Entry{entry})
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	log, err = NewLog(backend, "entries", core.EntryMUS)
	require.NoError(t, err)

	require.Equal(t, 1, log.Len())
	got := log.Load(ctx, storage.All())
	require.Len(t, got, 1)
	assert.Equal(t, entry.Id, got[0].Id)
	assert.Equal(t, entry.Payload, got[0].Payload)
	assert.True(t, entry.RecordedAt.Equal(got[0].RecordedAt))

	log.Save(ctx, []core.Entry{core.NewEntry("note", "second")})
	assert.Equal(t, 2, log.Len())
}

func TestLog_CorruptLengthFailsOpen(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeLengthKey("broken"), []byte{1, 2}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	_, err = NewLog(backend, "broken", ord.String)
	assert.ErrorIs(t, err, storage.ErrTruncatedData)
}

func TestLog_ClosedBackendDropsAndAnswersEmpty(t *testing.T) {
	log, backend, err := NewMemoryLog("gone", ord.String, WithRetryPolicy(fastRetry))
	require.NoError(t, err)

	ctx := context.Background()
	log.Save(ctx, []string{"kept"})
	require.NoError(t, backend.Close())

	log.Save(ctx, []string{"lost"})
	assert.Equal(t, 1, log.Len())
	assert.Nil(t, log.Load(ctx, storage.All()))
}

func TestLog_BehindRecorder(t *testing.T) {
	log, backend, err := NewMemoryLog("recorded", ord.String)
	require.NoError(t, err)
	defer backend.Close()

	rec := recorder.New[string, storage.Range](log)
	rec.Save("first")
	rec.Save("second")

	got, err := rec.Records(context.Background(), storage.Range{Start: 0, End: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, got)

	s, err := rec.Close(context.Background())
	require.NoError(t, err)
	assert.Same(t, log, s)
	assert.Equal(t, 2, log.Len())
}
