package jobqueue

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/recalc"
)

func TestQueueKey(t *testing.T) {
	require.Equal(t, "kzlb:recalc:filter", queueKey("", recalc.KindFilter))
	require.Equal(t, "prod:recalc:player", queueKey(" prod: ", recalc.KindPlayer))
}

func TestDecodeMember(t *testing.T) {
	item, err := decodeMember(redis.Z{Score: 4, Member: "42"})
	require.NoError(t, err)
	require.Equal(t, recalc.Item{Key: 42, Priority: 4}, item)

	_, err = decodeMember(redis.Z{Score: 1, Member: "not-a-number"})
	require.Error(t, err)
}

// Runs against a live redis when REDIS_TEST_ADDR is set.
func TestRedisQueue_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, RedisConfig{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	q := NewRedisQueue(client, "test-"+t.Name(), recalc.KindPlayer)
	t.Cleanup(func() { client.Del(ctx, q.key) })

	require.NoError(t, q.Push(ctx, 3, 1))
	require.NoError(t, q.Push(ctx, 3, 6))
	require.NoError(t, q.Push(ctx, 3, 2))
	require.NoError(t, q.Push(ctx, 8, 4))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	item, ok, err := q.Pop(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, recalc.Item{Key: 3, Priority: 6}, item)
}
