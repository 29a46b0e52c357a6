package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	gameStateKeyPrefix = "game:state:"
	leaderboardPrefix  = "bot:results:"
)

// Cache implements the game service's CacheRepository on top of Redis.
type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// SetGameState stores the serialized live-game snapshot under a TTL.
func (c *Cache) SetGameState(ctx context.Context, gameID string, state []byte, ttl time.Duration) error {
	return c.client.Set(ctx, gameStateKeyPrefix+gameID, state, ttl).Err()
}

// GetGameState reads a cached snapshot; redis.Nil maps to a nil payload.
func (c *Cache) GetGameState(ctx context.Context, gameID string) ([]byte, error) {
	val, err := c.client.Get(ctx, gameStateKeyPrefix+gameID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (c *Cache) DeleteGameState(ctx context.Context, gameID string) error {
	return c.client.Del(ctx, gameStateKeyPrefix+gameID).Err()
}

// RecordBotResult bumps the per-difficulty human-vs-bot tallies.
func (c *Cache) RecordBotResult(ctx context.Context, difficulty string, humanWon, draw bool) error {
	outcome := "bot_wins"
	if draw {
		outcome = "draws"
	} else if humanWon {
		outcome = "human_wins"
	}
	return c.client.HIncrBy(ctx, leaderboardPrefix+difficulty, outcome, 1).Err()
}

// BotLeaderboard returns the tallies for one difficulty.
func (c *Cache) BotLeaderboard(ctx context.Context, difficulty string) (map[string]int64, error) {
	raw, err := c.client.HGetAll(ctx, leaderboardPrefix+difficulty).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard for %s: %v", difficulty, err)
	}

	out := make(map[string]int64, len(raw))
	for field, val := range raw {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			continue
		}
		out[field] = n
	}
	return out, nil
}
