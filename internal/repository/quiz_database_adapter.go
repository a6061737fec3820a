package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quiz-shell/internal/domain"
	"quiz-shell/internal/repository/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.DB
type QuizDatabaseAdapter struct {
	db       *sqlx.DB
	sb       sq.StatementBuilderType
	lockStmt string
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter.
// placeholder must match the driver behind db, see PlaceholderFor.
func NewQuizDatabaseAdapter(db *sqlx.DB, placeholder sq.PlaceholderFormat) *QuizDatabaseAdapter {
	return &QuizDatabaseAdapter{
		db:       db,
		sb:       sq.StatementBuilder.PlaceholderFormat(placeholder),
		lockStmt: writeLockFor(db.DriverName()),
	}
}

// writeLockFor returns the statement that serializes quiz writers. The mode
// conflicts with itself but not with plain reads. sqlite runs on a single
// connection and needs none.
func writeLockFor(driver string) string {
	switch driver {
	case "postgres", "pgx", "oracle", "godror":
		return "LOCK TABLE " + models.Quiz{}.TableName() + " IN SHARE ROW EXCLUSIVE MODE"
	default:
		return ""
	}
}

var _ domain.QuizRepository = (*QuizDatabaseAdapter)(nil)

func (a *QuizDatabaseAdapter) selectQuizzes() sq.SelectBuilder {
	return a.sb.Select(models.Quiz{}.Columns()...).From(models.Quiz{}.TableName())
}

// GetQuizByID implements domain.QuizRepository
func (a *QuizDatabaseAdapter) GetQuizByID(ctx context.Context, id int64) (*domain.Quiz, error) {
	query, args, err := a.selectQuizzes().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build GetQuizByID query: %w", err)
	}

	var modelQuiz models.Quiz
	if err := a.db.GetContext(ctx, &modelQuiz, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by ID %d: %w", id, err)
	}
	return toDomainQuiz(&modelQuiz), nil
}

// GetAllQuizzes implements domain.QuizRepository
func (a *QuizDatabaseAdapter) GetAllQuizzes(ctx context.Context) ([]*domain.Quiz, error) {
	query, args, err := a.selectQuizzes().OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build GetAllQuizzes query: %w", err)
	}

	var modelQuizzes []models.Quiz
	if err := a.db.SelectContext(ctx, &modelQuizzes, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get quizzes: %w", err)
	}

	quizzes := make([]*domain.Quiz, 0, len(modelQuizzes))
	for i := range modelQuizzes {
		quizzes = append(quizzes, toDomainQuiz(&modelQuizzes[i]))
	}
	return quizzes, nil
}

// CreateQuiz implements domain.QuizRepository
func (a *QuizDatabaseAdapter) CreateQuiz(ctx context.Context, question, answer string) (*domain.Quiz, error) {
	quiz := domain.NewQuiz(question, answer)
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	err := withTransaction(ctx, a.db, func(tx DBTX) error {
		if err := a.lockForWrite(ctx, tx); err != nil {
			return err
		}
		if err := a.ensureUniqueQuestion(ctx, tx, quiz.Question, 0); err != nil {
			return err
		}

		nextID, err := a.nextID(ctx, tx)
		if err != nil {
			return err
		}

		modelQuiz := toModelQuiz(quiz)
		modelQuiz.ID = nextID

		query, args, err := a.sb.Insert(modelQuiz.TableName()).
			Columns("id", "question", "answer", "created_at", "updated_at").
			Values(modelQuiz.ID, modelQuiz.Question, modelQuiz.Answer, modelQuiz.CreatedAt, modelQuiz.UpdatedAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build CreateQuiz query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isDuplicateQuestion(err) {
				return duplicateQuestionError()
			}
			return fmt.Errorf("failed to save quiz: %w", err)
		}

		quiz.ID = nextID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

// UpdateQuiz implements domain.QuizRepository
func (a *QuizDatabaseAdapter) UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("cannot update nil quiz")
	}
	if err := quiz.Validate(); err != nil {
		return err
	}

	updatedAt := time.Now()
	err := withTransaction(ctx, a.db, func(tx DBTX) error {
		if err := a.lockForWrite(ctx, tx); err != nil {
			return err
		}
		if err := a.ensureUniqueQuestion(ctx, tx, quiz.Question, quiz.ID); err != nil {
			return err
		}

		query, args, err := a.sb.Update(models.Quiz{}.TableName()).
			Set("question", quiz.Question).
			Set("answer", quiz.Answer).
			Set("updated_at", updatedAt).
			Where(sq.Eq{"id": quiz.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build UpdateQuiz query: %w", err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			if isDuplicateQuestion(err) {
				return duplicateQuestionError()
			}
			return fmt.Errorf("failed to update quiz: %w", err)
		}
		return expectOneRow(result, quiz.ID)
	})
	if err != nil {
		return err
	}

	quiz.UpdatedAt = updatedAt
	return nil
}

// DeleteQuiz implements domain.QuizRepository
func (a *QuizDatabaseAdapter) DeleteQuiz(ctx context.Context, id int64) error {
	query, args, err := a.sb.Delete(models.Quiz{}.TableName()).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build DeleteQuiz query: %w", err)
	}

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}
	return expectOneRow(result, id)
}

// Ping implements domain.QuizRepository
func (a *QuizDatabaseAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// ensureUniqueQuestion rejects question when another quiz (other than
// exceptID) already uses it.
func (a *QuizDatabaseAdapter) ensureUniqueQuestion(ctx context.Context, tx DBTX, question string, exceptID int64) error {
	builder := a.sb.Select("COUNT(*)").From(models.Quiz{}.TableName()).Where(sq.Eq{"question": question})
	if exceptID != 0 {
		builder = builder.Where(sq.NotEq{"id": exceptID})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build uniqueness query: %w", err)
	}

	var count int64
	if err := tx.GetContext(ctx, &count, query, args...); err != nil {
		return fmt.Errorf("failed to check question uniqueness: %w", err)
	}
	if count > 0 {
		return duplicateQuestionError()
	}
	return nil
}

func (a *QuizDatabaseAdapter) lockForWrite(ctx context.Context, tx DBTX) error {
	if a.lockStmt == "" {
		return nil
	}
	if _, err := tx.ExecContext(ctx, a.lockStmt); err != nil {
		return fmt.Errorf("failed to lock quizzes table: %w", err)
	}
	return nil
}

// nextID assigns max(id)+1; it must run inside the inserting transaction
// after lockForWrite.
func (a *QuizDatabaseAdapter) nextID(ctx context.Context, tx DBTX) (int64, error) {
	query, args, err := a.sb.Select("COALESCE(MAX(id), 0) + 1").From(models.Quiz{}.TableName()).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build next id query: %w", err)
	}

	var next int64
	if err := tx.GetContext(ctx, &next, query, args...); err != nil {
		return 0, fmt.Errorf("failed to allocate quiz id: %w", err)
	}
	return next, nil
}

func expectOneRow(result sql.Result, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.NewQuizNotFoundError(id)
	}
	return nil
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	return &domain.Quiz{
		ID:        m.ID,
		Question:  m.Question,
		Answer:    m.Answer,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toModelQuiz(q *domain.Quiz) *models.Quiz {
	return &models.Quiz{
		ID:        q.ID,
		Question:  q.Question,
		Answer:    q.Answer,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}
