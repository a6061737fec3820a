package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"quiz-shell/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockQuizRepository ---
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) CreateQuiz(ctx context.Context, question, answer string) (*domain.Quiz, error) {
	args := m.Called(ctx, question, answer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetQuizByID(ctx context.Context, id int64) (*domain.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetAllQuizzes(ctx context.Context) ([]*domain.Quiz, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) DeleteQuiz(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuizRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockScoreboard ---
type MockScoreboard struct {
	mock.Mock
}

func (m *MockScoreboard) RecordScore(ctx context.Context, player string, score int) error {
	args := m.Called(ctx, player, score)
	return args.Error(0)
}

func (m *MockScoreboard) TopScores(ctx context.Context, n int) ([]domain.ScoreEntry, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoreEntry), args.Error(1)
}

func (m *MockScoreboard) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- memoryRepo ---

// memoryRepo is a working store for scenario tests.
type memoryRepo struct {
	mu      sync.Mutex
	quizzes map[int64]domain.Quiz
	lastID  int64
}

func newMemoryRepo(quizzes ...domain.Quiz) *memoryRepo {
	r := &memoryRepo{quizzes: make(map[int64]domain.Quiz)}
	for _, q := range quizzes {
		r.quizzes[q.ID] = q
		if q.ID > r.lastID {
			r.lastID = q.ID
		}
	}
	return r
}

func (r *memoryRepo) CreateQuiz(_ context.Context, question, answer string) (*domain.Quiz, error) {
	quiz := domain.NewQuiz(question, answer)
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastID++
	quiz.ID = r.lastID
	r.quizzes[quiz.ID] = *quiz
	return quiz, nil
}

func (r *memoryRepo) GetQuizByID(_ context.Context, id int64) (*domain.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quizzes[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r *memoryRepo) GetAllQuizzes(_ context.Context) ([]*domain.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	quizzes := make([]*domain.Quiz, 0, len(r.quizzes))
	for _, q := range r.quizzes {
		q := q
		quizzes = append(quizzes, &q)
	}
	sort.Slice(quizzes, func(i, j int) bool { return quizzes[i].ID < quizzes[j].ID })
	return quizzes, nil
}

func (r *memoryRepo) UpdateQuiz(_ context.Context, quiz *domain.Quiz) error {
	if err := quiz.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[quiz.ID]; !ok {
		return domain.NewQuizNotFoundError(quiz.ID)
	}
	r.quizzes[quiz.ID] = *quiz
	return nil
}

func (r *memoryRepo) DeleteQuiz(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.quizzes[id]; !ok {
		return domain.NewQuizNotFoundError(id)
	}
	delete(r.quizzes, id)
	return nil
}

func (r *memoryRepo) Ping(context.Context) error {
	return nil
}

// --- fakeChannel ---

type emitted struct {
	Text  string
	Color domain.Color
}

// fakeChannel answers prompts from a scripted list of replies and records
// everything written to it. Running out of replies behaves like a closed
// session.
type fakeChannel struct {
	replies []string
	prompts []string
	lines   []emitted
	banners []emitted
	ready   int
	closed  bool
}

func newFakeChannel(replies ...string) *fakeChannel {
	return &fakeChannel{replies: replies}
}

func (f *fakeChannel) EmitLine(text string, color domain.Color) error {
	if f.closed {
		return domain.ErrTransportClosed
	}
	f.lines = append(f.lines, emitted{Text: text, Color: color})
	return nil
}

func (f *fakeChannel) EmitBanner(text string, color domain.Color) error {
	if f.closed {
		return domain.ErrTransportClosed
	}
	f.banners = append(f.banners, emitted{Text: text, Color: color})
	return nil
}

func (f *fakeChannel) Prompt(ctx context.Context, text string) (string, error) {
	if f.closed {
		return "", domain.ErrTransportClosed
	}
	f.prompts = append(f.prompts, text)
	return f.ReadLine(ctx)
}

func (f *fakeChannel) SignalReady() error {
	if f.closed {
		return domain.ErrTransportClosed
	}
	f.ready++
	return nil
}

func (f *fakeChannel) ReadLine(context.Context) (string, error) {
	if f.closed || len(f.replies) == 0 {
		return "", domain.ErrTransportClosed
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return strings.TrimSpace(reply), nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func (f *fakeChannel) lineTexts() []string {
	texts := make([]string, 0, len(f.lines))
	for _, l := range f.lines {
		texts = append(texts, l.Text)
	}
	return texts
}

func (f *fakeChannel) bannerTexts() []string {
	texts := make([]string, 0, len(f.banners))
	for _, b := range f.banners {
		texts = append(texts, b.Text)
	}
	return texts
}

// prefillChannel also supports editable defaults; an empty reply keeps def.
type prefillChannel struct {
	*fakeChannel
	defaults []string
}

func (p *prefillChannel) PromptDefault(ctx context.Context, text, def string) (string, error) {
	p.defaults = append(p.defaults, def)
	line, err := p.Prompt(ctx, text)
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}
