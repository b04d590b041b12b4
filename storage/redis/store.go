// Package redisdb keeps the local data in redis, under a common key prefix.
package redisdb

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/absensi/core"
)

type localStore struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ core.KeyValueStore = (*localStore)(nil)

// Open connects to redis and checks the connection.
func Open(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return rdb, nil
}

func NewLocalStore(rdb redis.UniversalClient, prefix string) core.KeyValueStore {
	return &localStore{rdb: rdb, prefix: prefix}
}

func (s *localStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, s.prefix+key).Result()
	switch {
	case err == redis.Nil:
		return "", false, nil
	case err != nil:
		return "", false, errors.Wrapf(err, "getting %s", key)
	}
	return val, true, nil
}

func (s *localStore) Set(ctx context.Context, key, value string) error {
	return errors.Wrapf(s.rdb.Set(ctx, s.prefix+key, value, 0).Err(), "setting %s", key)
}

func (s *localStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, s.prefix+k)
	}
	return errors.Wrap(s.rdb.Del(ctx, full...).Err(), "deleting keys")
}

// Keys scans the keys under the prefix, which is stripped from the result.
func (s *localStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning keys")
	}
	sort.Strings(keys)
	return keys, nil
}
