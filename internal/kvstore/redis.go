package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps each entry as a plain redis string under Prefix+key.
type RedisStore struct {
	rdb    *goredis.Client
	Prefix string
}

// NewRedisStore dials addr and pings it before returning.
func NewRedisStore(ctx context.Context, addr, prefix string) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, Prefix: prefix}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.Prefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.Prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.Prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

const maxUpdateRetries = 10

// Update watches the keys, reads them, and commits fn's result in a MULTI
// block. A concurrent write to any watched key fails the transaction and the
// whole cycle is retried.
func (s *RedisStore) Update(ctx context.Context, keys []string, fn UpdateFunc) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.Prefix + k
	}

	txf := func(tx *goredis.Tx) error {
		current := make(map[string]string, len(keys))
		vals, err := tx.MGet(ctx, full...).Result()
		if err != nil {
			return fmt.Errorf("redis mget: %w", err)
		}
		for i, v := range vals {
			if str, ok := v.(string); ok {
				current[keys[i]] = str
			}
		}

		next, err := fn(current)
		if err != nil || next == nil {
			return err
		}
		sets, dels := changes(keys, current, next)
		_, err = tx.TxPipelined(ctx, func(p goredis.Pipeliner) error {
			for k, v := range sets {
				p.Set(ctx, s.Prefix+k, v, 0)
			}
			for _, k := range dels {
				p.Del(ctx, s.Prefix+k)
			}
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.rdb.Watch(ctx, txf, full...)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis update: %w", err)
		}
		return nil
	}
	return fmt.Errorf("redis update: gave up after %d conflicting attempts", maxUpdateRetries)
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
