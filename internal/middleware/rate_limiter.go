package middleware

import (
	"context"
	"errors"
	"time"

	"setu-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "ratelimit:"

// PublicRateLimiter limits unauthenticated endpoints per client IP to max requests a minute.
// Counters live in Redis when rdb is set so every instance shares them; otherwise in memory.
func PublicRateLimiter(max int, rdb *redis.Client) fiber.Handler {
	cfg := limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, "Too many requests, please try again later", fiber.StatusTooManyRequests, nil)
		},
	}
	if rdb != nil {
		cfg.Storage = &redisStorage{rdb: rdb}
	}
	return limiter.New(cfg)
}

// redisStorage implements fiber.Storage on go-redis.
type redisStorage struct {
	rdb *redis.Client
}

func (s *redisStorage) Get(key string) ([]byte, error) {
	b, err := s.rdb.Get(context.Background(), rateLimitPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (s *redisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return s.rdb.Set(context.Background(), rateLimitPrefix+key, val, exp).Err()
}

func (s *redisStorage) Delete(key string) error {
	return s.rdb.Del(context.Background(), rateLimitPrefix+key).Err()
}

func (s *redisStorage) Reset() error {
	ctx := context.Background()
	iter := s.rdb.Scan(ctx, 0, rateLimitPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *redisStorage) Close() error { return nil }
