package domain

import "context"

// ScoreEntry is the best score a player reached in any round.
type ScoreEntry struct {
	Player string
	Score  int
}

// Scoreboard keeps the best round score per player.
type Scoreboard interface {
	// RecordScore stores score for player if it beats the previous best.
	RecordScore(ctx context.Context, player string, score int) error

	// TopScores returns up to n entries, best first.
	TopScores(ctx context.Context, n int) ([]ScoreEntry, error)

	Ping(ctx context.Context) error
}
