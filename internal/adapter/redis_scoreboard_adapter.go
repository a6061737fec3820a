package adapter

import (
	"context"
	"fmt"

	"quiz-shell/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisScoreboard implements domain.Scoreboard with a Redis sorted set
// keyed by player name.
type RedisScoreboard struct {
	client redis.Cmdable
	key    string
}

// NewRedisScoreboard creates a new instance of RedisScoreboard.
func NewRedisScoreboard(client redis.Cmdable) *RedisScoreboard {
	return &RedisScoreboard{client: client, key: GenerateKey("scoreboard", "best")}
}

var _ domain.Scoreboard = (*RedisScoreboard)(nil)

// RecordScore implements domain.Scoreboard. ZADD GT keeps the higher of the
// stored and the new score in one command, so concurrent rounds of the same
// player cannot lower it. Requires Redis 6.2.
func (r *RedisScoreboard) RecordScore(ctx context.Context, player string, score int) error {
	if err := r.client.ZAddGT(ctx, r.key, redis.Z{Score: float64(score), Member: player}).Err(); err != nil {
		return fmt.Errorf("failed to record score of %s: %w", player, err)
	}
	return nil
}

// TopScores implements domain.Scoreboard
func (r *RedisScoreboard) TopScores(ctx context.Context, n int) ([]domain.ScoreEntry, error) {
	if n <= 0 {
		return []domain.ScoreEntry{}, nil
	}

	zs, err := r.client.ZRevRangeWithScores(ctx, r.key, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read scoreboard: %w", err)
	}

	entries := make([]domain.ScoreEntry, 0, len(zs))
	for _, z := range zs {
		entries = append(entries, domain.ScoreEntry{
			Player: fmt.Sprint(z.Member),
			Score:  int(z.Score),
		})
	}
	return entries, nil
}

// Ping checks the health of the Redis server.
func (r *RedisScoreboard) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
