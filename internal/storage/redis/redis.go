package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"calbook-service/internal/storage"
)

// Storage keeps each partition in two structures: a hash holding sort key ->
// item and a lex-ordered sorted set of the sort keys for range queries.
// The conditional insert runs as a Lua script so the exists-check and the
// write are a single atomic step on the server.
type Storage struct {
	client *redis.Client
}

var insertIfAbsent = redis.NewScript(`
if redis.call("HEXISTS", KEYS[1], ARGV[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
redis.call("ZADD", KEYS[2], 0, ARGV[1])
return 1
`)

func New(redisAddr string) (*Storage, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{client: client}, nil
}

func hashKey(pk string) string {
	return fmt.Sprintf("cal:%s", pk)
}

func indexKey(pk string) string {
	return fmt.Sprintf("cal:%s:sk", pk)
}

func (s *Storage) Get(ctx context.Context, pk, sk string) ([]byte, error) {
	const op = "storage.redis.Get"

	value, err := s.client.HGet(ctx, hashKey(pk), sk).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return value, nil
}

func (s *Storage) Put(ctx context.Context, pk, sk string, value []byte, cond storage.PutCondition) error {
	const op = "storage.redis.Put"

	if cond == storage.CondIfAbsent {
		inserted, err := insertIfAbsent.Run(ctx, s.client,
			[]string{hashKey(pk), indexKey(pk)}, sk, value).Int()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if inserted == 0 {
			return fmt.Errorf("%s: %w", op, storage.ErrConditionFailed)
		}
		return nil
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, hashKey(pk), sk, value)
	pipe.ZAdd(ctx, indexKey(pk), redis.Z{Score: 0, Member: sk})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Delete(ctx context.Context, pk, sk string) error {
	const op = "storage.redis.Delete"

	pipe := s.client.TxPipeline()
	pipe.HDel(ctx, hashKey(pk), sk)
	pipe.ZRem(ctx, indexKey(pk), sk)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) QueryPrefix(ctx context.Context, pk, skPrefix string) ([]storage.Record, error) {
	const op = "storage.redis.QueryPrefix"

	records, err := s.query(ctx, pk, "["+skPrefix, "["+skPrefix+"\xff")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

func (s *Storage) QueryRange(ctx context.Context, pk, skFrom, skTo string) ([]storage.Record, error) {
	const op = "storage.redis.QueryRange"

	records, err := s.query(ctx, pk, "["+skFrom, "["+skTo)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return records, nil
}

func (s *Storage) query(ctx context.Context, pk, min, max string) ([]storage.Record, error) {
	sortKeys, err := s.client.ZRangeByLex(ctx, indexKey(pk), &redis.ZRangeBy{
		Min: min,
		Max: max,
	}).Result()
	if err != nil {
		return nil, err
	}

	if len(sortKeys) == 0 {
		return []storage.Record{}, nil
	}

	values, err := s.client.HMGet(ctx, hashKey(pk), sortKeys...).Result()
	if err != nil {
		return nil, err
	}

	records := make([]storage.Record, 0, len(sortKeys))
	for i, sk := range sortKeys {
		raw, ok := values[i].(string)
		if !ok {
			// Index entry without a hash row: a concurrent delete between
			// ZRANGEBYLEX and HMGET. Skip it.
			continue
		}
		records = append(records, storage.Record{SK: sk, Value: []byte(raw)})
	}

	return records, nil
}

func (s *Storage) Close() error {
	return s.client.Close()
}
