package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/poiesic/recorder"
	"github.com/poiesic/recorder/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeListClient keeps lists in memory and can fail the next calls.
type fakeListClient struct {
	mu        sync.Mutex
	lists     map[string][]string
	pushes    int
	failNext  int
	returnErr error
}

func newFakeListClient() *fakeListClient {
	return &fakeListClient{lists: map[string][]string{}}
}

func (f *fakeListClient) fail() error {
	if f.failNext > 0 {
		f.failNext--
		return f.returnErr
	}
	return nil
}

func (f *fakeListClient) RPush(ctx context.Context, key string, values ...[]byte) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := f.fail(); err != nil {
		return 0, err
	}
	f.pushes++
	for _, v := range values {
		f.lists[key] = append(f.lists[key], string(v))
	}
	return int64(len(f.lists[key])), nil
}

func (f *fakeListClient) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return nil, err
	}
	list := f.lists[key]
	n := int64(len(list))
	stop = min(stop, n-1)
	if start >= n || start > stop {
		return []string{}, nil
	}
	return append([]string{}, list[start:stop+1]...), nil
}

var fastRetry = storage.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

func TestNewLog_Validation(t *testing.T) {
	_, err := NewLog(newFakeListClient(), "", ord.String, fastRetry, nil)
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = NewLog(newFakeListClient(), "k", ord.String, storage.RetryPolicy{}, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidRetryPolicy)
}

func TestLog_SaveIsOnePushPerBatch(t *testing.T) {
	client := newFakeListClient()
	log, err := NewLog(client, "events", ord.String, fastRetry, nil)
	require.NoError(t, err)

	ctx := context.Background()
	log.Save(ctx, []string{"first", "second", "third"})
	log.Save(ctx, nil)

	assert.Equal(t, 1, client.pushes)
	assert.Equal(t, []string{"first", "second", "third"}, log.Load(ctx, storage.All()))
	assert.Equal(t, []string{"second"}, log.Load(ctx, storage.Range{Start: 1, End: 2}))
	assert.Empty(t, log.Load(ctx, storage.Range{Start: 5, End: 9}))
	assert.Nil(t, log.Load(ctx, storage.Range{Start: 2, End: 2}))
}

func TestLog_NegativeStartIsClamped(t *testing.T) {
	client := newFakeListClient()
	log, err := NewLog(client, "events", ord.String, fastRetry, nil)
	require.NoError(t, err)

	ctx := context.Background()
	log.Save(ctx, []string{"a", "b", "c"})

	assert.Equal(t, []string{"a", "b"}, log.Load(ctx, storage.Range{Start: -4, End: 2}))
	assert.Nil(t, log.Load(ctx, storage.Range{Start: -4, End: 0}))
}

func TestLog_RetriesTransientFailures(t *testing.T) {
	client := newFakeListClient()
	client.failNext = 2
	client.returnErr = errors.New("connection reset")
	log, err := NewLog(client, "events", ord.String, fastRetry, nil)
	require.NoError(t, err)

	log.Save(context.Background(), []string{"survivor"})
	assert.Equal(t, []string{"survivor"}, log.Load(context.Background(), storage.All()))
}

func TestLog_DropsAfterRetriesExhausted(t *testing.T) {
	client := newFakeListClient()
	log, err := NewLog(client, "events", ord.String, fastRetry, nil)
	require.NoError(t, err)

	client.failNext = 3
	client.returnErr = errors.New("server down")
	log.Save(context.Background(), []string{"lost"})
	assert.Empty(t, client.lists["events"])

	client.failNext = 3
	assert.Nil(t, log.Load(context.Background(), storage.All()))
}

func TestLog_CorruptElementAnswersEmpty(t *testing.T) {
	client := newFakeListClient()
	client.lists["events"] = []string{"\xff\xff\xff"}
	log, err := NewLog(client, "events", ord.String, fastRetry, nil)
	require.NoError(t, err)

	assert.Nil(t, log.Load(context.Background(), storage.All()))
}

func TestLog_BehindRecorder(t *testing.T) {
	client := newFakeListClient()
	log, err := NewLog(client, "events", ord.String, fastRetry, nil)
	require.NoError(t, err)

	rec := recorder.New[string, storage.Range](log)
	rec.Save("first")
	rec.Save("second")

	got, err := rec.Records(context.Background(), storage.Range{Start: 0, End: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, got)

	_, err = rec.Close(context.Background())
	require.NoError(t, err)
}
