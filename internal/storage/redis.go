package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const themeKeyPrefix = "interview-coach:theme:"

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// ConnectRedis configures a Redis client using the supplied URL.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, fmt.Errorf("redis url must not be empty")
	}

	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(options)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	return client, nil
}

func (s *RedisStore) Theme(ctx context.Context, user string) (Theme, error) {
	value, err := s.client.Get(ctx, themeKeyPrefix+user).Result()
	if errors.Is(err, redis.Nil) {
		return ThemeLight, nil
	}
	if err != nil {
		return ThemeLight, fmt.Errorf("get theme: %w", err)
	}
	theme, err := ParseTheme(value)
	if err != nil {
		return ThemeLight, nil
	}
	return theme, nil
}

func (s *RedisStore) SetTheme(ctx context.Context, user string, theme Theme) error {
	if err := s.client.Set(ctx, themeKeyPrefix+user, string(theme), 0).Err(); err != nil {
		return fmt.Errorf("set theme: %w", err)
	}
	return nil
}
