//go:build e2e

package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/poiesic/recorder/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a Redis at 127.0.0.1:6379.
func TestGoRedisClient_LogRoundTrip(t *testing.T) {
	client := NewGoRedisClient("127.0.0.1:6379")
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		t.Skipf("Skipping: Redis not reachable on 127.0.0.1:6379: %v", err)
	}

	key := fmt.Sprintf("recorder-e2e-%d", time.Now().UnixNano())
	log, err := NewLog(client, key, ord.String, storage.DefaultRetryPolicy(), nil)
	require.NoError(t, err)

	log.Save(ctx, []string{"first", "second"})
	log.Save(ctx, []string{"third"})

	assert.Equal(t, []string{"first", "second", "third"}, log.Load(ctx, storage.All()))
	assert.Equal(t, []string{"second", "third"}, log.Load(ctx, storage.Range{Start: 1, End: 3}))
}
