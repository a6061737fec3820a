package service

import (
	"fmt"
	"math/rand"

	"quiz-shell/internal/domain"
)

// Picker returns a position in [0, n).
type Picker func(n int) int

func defaultPicker(n int) int {
	return rand.Intn(n)
}

// round is the state of one play invocation: a fixed working set and the
// positions not asked yet.
type round struct {
	quizzes []*domain.Quiz
	pool    []int
	score   int
	pick    Picker
}

func newRound(quizzes []*domain.Quiz, pick Picker) *round {
	pool := make([]int, len(quizzes))
	for i := range pool {
		pool[i] = i
	}
	return &round{quizzes: quizzes, pool: pool, pick: pick}
}

// next removes a random position from the pool and returns its quiz.
// ok is false once the pool is empty.
func (r *round) next() (quiz *domain.Quiz, ok bool, err error) {
	if len(r.pool) == 0 {
		return nil, false, nil
	}

	i := r.pick(len(r.pool))
	if i < 0 || i >= len(r.pool) {
		return nil, false, fmt.Errorf("picked position %d outside a pool of %d", i, len(r.pool))
	}

	pos := r.pool[i]
	last := len(r.pool) - 1
	r.pool[i] = r.pool[last]
	r.pool = r.pool[:last]

	return r.quizzes[pos], true, nil
}

func (r *round) remaining() int {
	return len(r.pool)
}
