package standings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/trickroom/internal/models"
)

const (
	// Key prefix for a session's standings list
	standingsKeyPrefix = "standings:"
)

// Config holds configuration for the Redis standings repository
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// TTL expires a session's archive after its last write; zero keeps it forever
	TTL time.Duration
}

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a new Redis-backed standings repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.RedisClient == nil {
		return nil, ErrNilRedisClient
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
		ttl:    cfg.TTL,
	}, nil
}

func standingsKey(code string) string {
	return fmt.Sprintf("%s%s", standingsKeyPrefix, code)
}

// SaveStandings appends a segment to the session's list
func (r *redisRepository) SaveStandings(ctx context.Context, input *SaveStandingsInput) error {
	if input == nil || input.Standings == nil || input.Standings.SessionCode == "" {
		return ErrInvalidInput
	}

	data, err := json.Marshal(input.Standings)
	if err != nil {
		return fmt.Errorf("failed to marshal standings: %w", err)
	}

	key := standingsKey(input.Standings.SessionCode)

	pipe := r.client.Pipeline()
	pipe.RPush(ctx, key, data)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save standings: %w", err)
	}

	return nil
}

// ListStandings returns every archived segment, oldest first
func (r *redisRepository) ListStandings(ctx context.Context, input *ListStandingsInput) (*ListStandingsOutput, error) {
	if input == nil || input.SessionCode == "" {
		return nil, ErrInvalidInput
	}

	values, err := r.client.LRange(ctx, standingsKey(input.SessionCode), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list standings: %w", err)
	}

	output := &ListStandingsOutput{
		Standings: make([]*models.Standings, 0, len(values)),
	}
	for _, value := range values {
		var standings models.Standings
		if err := json.Unmarshal([]byte(value), &standings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal standings: %w", err)
		}
		output.Standings = append(output.Standings, &standings)
	}

	return output, nil
}

// GetLatestStandings returns the last archived segment
func (r *redisRepository) GetLatestStandings(ctx context.Context, input *GetLatestStandingsInput) (*models.Standings, error) {
	if input == nil || input.SessionCode == "" {
		return nil, ErrInvalidInput
	}

	value, err := r.client.LIndex(ctx, standingsKey(input.SessionCode), -1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrStandingsNotFound
		}
		return nil, fmt.Errorf("failed to get standings: %w", err)
	}

	var standings models.Standings
	if err := json.Unmarshal([]byte(value), &standings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal standings: %w", err)
	}

	return &standings, nil
}

// DeleteStandings removes the session's archive
func (r *redisRepository) DeleteStandings(ctx context.Context, input *DeleteStandingsInput) error {
	if input == nil || input.SessionCode == "" {
		return ErrInvalidInput
	}

	if err := r.client.Del(ctx, standingsKey(input.SessionCode)).Err(); err != nil {
		return fmt.Errorf("failed to delete standings: %w", err)
	}

	return nil
}
