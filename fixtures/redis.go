package fixtures

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fixturelab/fixture-harness/framework/fixtest"
)

// RedisKey identifies the Redis client fixture. Its value is a *RedisStore. The
// scope is global: one connection is shared by the whole run and closed after
// the last case.
var RedisKey = fixtest.Key("redis")

// RedisStore wraps a Redis client with the small amount of state manipulation
// the test suites need.
type RedisStore struct {
	Client *redis.Client
}

func (r *RedisStore) DSN() string {
	return fmt.Sprintf("redis://%s", r.Client.Options().Addr)
}

// Reset deletes all keys so that cases sharing the global client start clean.
func (r *RedisStore) Reset(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}

func (r *RedisStore) WriteData(ctx context.Context, key string, data map[string]string) error {
	_, err := r.Client.HSet(ctx, key, data).Result()
	return err
}

func (r *RedisStore) ReadData(ctx context.Context, key string) (map[string]string, error) {
	return r.Client.HGetAll(ctx, key).Result()
}

// RegisterRedis adds the Redis fixture for the given address, e.g.
// "localhost:6379". The constructor pings the server so that an unreachable
// address fails the dependent cases at setup with a useful error.
func RegisterRedis(reg *fixtest.Registry, address string) error {
	spec, err := fixtest.NewFixture(RedisKey.Name,
		func(deps *fixtest.FixtureDeps) (interface{}, error) {
			client := redis.NewClient(&redis.Options{Addr: address})
			if err := client.Ping(context.Background()).Err(); err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("cannot reach Redis at %s: %w", address, err)
			}
			deps.Logger().Printf("connected to Redis at %s", address)
			return &RedisStore{Client: client}, nil
		},
		fixtest.WithScope(fixtest.ScopeGlobal),
		fixtest.WithTeardown(func(value interface{}) error {
			store := value.(*RedisStore)
			if err := store.Reset(context.Background()); err != nil {
				return err
			}
			return store.Client.Close()
		}))
	if err != nil {
		return err
	}
	return reg.Register(spec)
}
