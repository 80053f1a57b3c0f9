package storage

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/catalog"
)

const ratingsKey = "ratings"

// RedisStore implements RatingStore on a single Redis hash. Each field is
// "userID:itemID" and each value is the JSON-encoded rating, so an HSET on
// the same pair is a natural upsert.
type RedisStore struct {
	client *redis.Client
}

var _ RatingStore = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) LoadAll(ctx context.Context) ([]catalog.Rating, error) {
	fields, err := s.client.HGetAll(ctx, ratingsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings from redis: %w", err)
	}

	ratings := make([]catalog.Rating, 0, len(fields))
	for _, raw := range fields {
		var r catalog.Rating
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("failed to decode rating: %w", err)
		}
		ratings = append(ratings, r)
	}

	// HGETALL iterates the hash in arbitrary order.
	sortRatings(ratings)
	return ratings, nil
}

func (s *RedisStore) Upsert(ctx context.Context, r catalog.Rating) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode rating: %w", err)
	}
	field := fmt.Sprintf("%d:%d", r.UserID, r.ItemID)
	if err := s.client.HSet(ctx, ratingsKey, field, payload).Err(); err != nil {
		return fmt.Errorf("failed to store rating in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
