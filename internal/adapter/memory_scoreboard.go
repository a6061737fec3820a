package adapter

import (
	"context"
	"sort"
	"sync"

	"quiz-shell/internal/domain"
)

// MemoryScoreboard is the process-local scoreboard used when Redis is not
// configured. It is safe for concurrent sessions.
type MemoryScoreboard struct {
	mu   sync.Mutex
	best map[string]int
}

func NewMemoryScoreboard() *MemoryScoreboard {
	return &MemoryScoreboard{best: make(map[string]int)}
}

var _ domain.Scoreboard = (*MemoryScoreboard)(nil)

func (m *MemoryScoreboard) RecordScore(_ context.Context, player string, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.best[player]; ok && prev >= score {
		return nil
	}
	m.best[player] = score
	return nil
}

func (m *MemoryScoreboard) TopScores(_ context.Context, n int) ([]domain.ScoreEntry, error) {
	m.mu.Lock()
	entries := make([]domain.ScoreEntry, 0, len(m.best))
	for player, score := range m.best {
		entries = append(entries, domain.ScoreEntry{Player: player, Score: score})
	}
	m.mu.Unlock()

	// same order as ZREVRANGE: score desc, then member desc
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Player > entries[j].Player
	})

	if n < 0 {
		n = 0
	}
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries, nil
}

func (m *MemoryScoreboard) Ping(context.Context) error {
	return nil
}
