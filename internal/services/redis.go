package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

const searchCacheTTL = 60 * time.Second

// InitRedis initializes the Redis client. Redis is optional: when REDIS_URL
// is unset or unreachable the cache helpers degrade to no-ops and every read
// goes straight to the database.
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		RedisClient = nil
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// GetCachedRatingResponse retrieves a user's cached rating aggregate body.
func GetCachedRatingResponse(ctx context.Context, userID uint) ([]byte, error) {
	if RedisClient == nil {
		return nil, redis.Nil
	}

	key := fmt.Sprintf("rating:summary:%d", userID)
	data, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

// SetCachedRatingResponse stores a user's rating aggregate response body.
func SetCachedRatingResponse(ctx context.Context, userID uint, body []byte) error {
	if RedisClient == nil {
		return nil
	}

	key := fmt.Sprintf("rating:summary:%d", userID)
	return RedisClient.Set(ctx, key, body, time.Hour).Err()
}

// InvalidateRatingResponse drops the cached aggregate after a new rating.
func InvalidateRatingResponse(ctx context.Context, userID uint) error {
	if RedisClient == nil {
		return nil
	}
	key := fmt.Sprintf("rating:summary:%d", userID)
	return RedisClient.Del(ctx, key).Err()
}

// searchVersion returns the current ride-search cache generation. Keys embed
// the generation, so bumping it invalidates every cached result set at once.
func searchVersion(ctx context.Context) int64 {
	ver, err := RedisClient.Get(ctx, "rides:search:ver").Int64()
	if err != nil {
		return 0
	}
	return ver
}

// BumpSearchVersion invalidates all cached ride-search results. Called after
// a ride is published or cancelled.
func BumpSearchVersion(ctx context.Context) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Incr(ctx, "rides:search:ver").Err()
}

// GetCachedSearchResults retrieves a cached ride-search response body.
func GetCachedSearchResults(ctx context.Context, departure, destination, date string) ([]byte, error) {
	if RedisClient == nil {
		return nil, redis.Nil
	}

	key := fmt.Sprintf("rides:search:%d:%s:%s:%s", searchVersion(ctx), departure, destination, date)
	data, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

// SetCachedSearchResults stores a ride-search response body.
func SetCachedSearchResults(ctx context.Context, departure, destination, date string, body []byte) error {
	if RedisClient == nil {
		return nil
	}

	key := fmt.Sprintf("rides:search:%d:%s:%s:%s", searchVersion(ctx), departure, destination, date)
	return RedisClient.Set(ctx, key, body, searchCacheTTL).Err()
}
