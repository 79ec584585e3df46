package jobqueue

import (
	"context"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/kz-leaderboard/internal/domain/recalc"
)

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	Timeout   time.Duration
}

// NewRedisClient dials redis and verifies the connection with a PING.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         strings.TrimSpace(cfg.Addr),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, crerr.Wrapf(err, "ping redis at %s", cfg.Addr)
	}
	return client, nil
}

// RedisQueue keeps one sorted set per queue kind. The member is the key and the
// score is its priority, so ZADD GT gives keep-the-max semantics and ZPOPMAX
// pops the most urgent key. Ties pop in member order rather than insertion order.
type RedisQueue struct {
	client redis.Cmdable
	key    string
}

var _ recalc.Queue = (*RedisQueue)(nil)

func NewRedisQueue(client redis.Cmdable, prefix string, kind recalc.Kind) *RedisQueue {
	return &RedisQueue{client: client, key: queueKey(prefix, kind)}
}

func queueKey(prefix string, kind recalc.Kind) string {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "kzlb"
	}
	return prefix + ":recalc:" + string(kind)
}

func (q *RedisQueue) Push(ctx context.Context, key, priority int64) error {
	ctx, span := startQueueSpan(ctx, "jobqueue.RedisQueue.Push", attribute.String("queue.key", q.key), attribute.Int64("recalc.key", key))
	defer span.End()

	err := q.client.ZAddGT(ctx, q.key, redis.Z{
		Score:  float64(priority),
		Member: strconv.FormatInt(key, 10),
	}).Err()
	if err != nil {
		span.RecordError(err)
		return crerr.Wrapf(err, "push %d to %s", key, q.key)
	}
	return nil
}

func (q *RedisQueue) Pop(ctx context.Context) (recalc.Item, bool, error) {
	ctx, span := startQueueSpan(ctx, "jobqueue.RedisQueue.Pop", attribute.String("queue.key", q.key))
	defer span.End()

	popped, err := q.client.ZPopMax(ctx, q.key, 1).Result()
	if err != nil {
		span.RecordError(err)
		return recalc.Item{}, false, crerr.Wrapf(err, "pop from %s", q.key)
	}
	if len(popped) == 0 {
		return recalc.Item{}, false, nil
	}

	item, err := decodeMember(popped[0])
	if err != nil {
		return recalc.Item{}, false, err
	}
	return item, true, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int, error) {
	n, err := q.client.ZCard(ctx, q.key).Result()
	if err != nil {
		return 0, crerr.Wrapf(err, "count %s", q.key)
	}
	return int(n), nil
}

func decodeMember(z redis.Z) (recalc.Item, error) {
	var raw string
	switch m := z.Member.(type) {
	case string:
		raw = m
	case []byte:
		raw = string(m)
	default:
		return recalc.Item{}, crerr.Newf("unexpected queue member type %T", z.Member)
	}

	key, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return recalc.Item{}, crerr.Wrapf(err, "decode queue member %q", raw)
	}
	return recalc.Item{Key: key, Priority: int64(z.Score)}, nil
}
