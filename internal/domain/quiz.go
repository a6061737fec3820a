package domain

import (
	"context"
	"strings"
	"time"
)

// Validation messages reported to the user when the store rejects a quiz.
const (
	MsgEmptyQuestion     = "La pregunta no puede estar vacía."
	MsgEmptyAnswer       = "La respuesta no puede estar vacía."
	MsgDuplicateQuestion = "Ya existe esta pregunta."
)

// Quiz represents a quiz in the domain
type Quiz struct {
	ID        int64
	Question  string
	Answer    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewQuiz creates a new Quiz instance
func NewQuiz(question, answer string) *Quiz {
	now := time.Now()
	return &Quiz{
		Question:  question,
		Answer:    answer,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate returns ValidationErrors listing every empty field, or nil.
func (q *Quiz) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(q.Question) == "" {
		errs = append(errs, FieldError{Field: "question", Message: MsgEmptyQuestion})
	}
	if strings.TrimSpace(q.Answer) == "" {
		errs = append(errs, FieldError{Field: "answer", Message: MsgEmptyAnswer})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsCorrect compares a user response with the stored answer ignoring case
// and surrounding whitespace.
func (q *Quiz) IsCorrect(response string) bool {
	return strings.EqualFold(strings.TrimSpace(response), strings.TrimSpace(q.Answer))
}

// QuizRepository defines the interface for quiz persistence
type QuizRepository interface {
	// CreateQuiz validates and persists a new quiz, assigning its ID.
	CreateQuiz(ctx context.Context, question, answer string) (*Quiz, error)

	// GetQuizByID returns nil, nil when no quiz has the given ID.
	GetQuizByID(ctx context.Context, id int64) (*Quiz, error)

	// GetAllQuizzes returns every quiz ordered by ID.
	GetAllQuizzes(ctx context.Context) ([]*Quiz, error)

	// UpdateQuiz validates and stores question and answer of an existing quiz.
	UpdateQuiz(ctx context.Context, quiz *Quiz) error

	// DeleteQuiz removes a quiz; it fails with NOT_FOUND when nothing was removed.
	DeleteQuiz(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
}
