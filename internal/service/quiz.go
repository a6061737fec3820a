package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"quiz-shell/internal/config"
	"quiz-shell/internal/domain"
	"quiz-shell/internal/logger"
	"quiz-shell/internal/validation"

	"go.uber.org/zap"
)

const idParam = "quizId"

// QuizService runs the interactive quiz operations of one session over a
// domain.Channel. Every operation returns the error the dispatcher reports.
type QuizService interface {
	ValidateID(arg string) (int64, error)
	List(ctx context.Context, ch domain.Channel) error
	Show(ctx context.Context, ch domain.Channel, arg string) error
	Add(ctx context.Context, ch domain.Channel) error
	Edit(ctx context.Context, ch domain.Channel, arg string) error
	Delete(ctx context.Context, ch domain.Channel, arg string) error
	Test(ctx context.Context, ch domain.Channel, arg string) error
	Play(ctx context.Context, ch domain.Channel, player string) error
	Scores(ctx context.Context, ch domain.Channel) error
}

// quizService implements QuizService
type quizService struct {
	repo       domain.QuizRepository
	scoreboard domain.Scoreboard
	validator  *validation.Validator
	topScores  int
	picker     Picker
}

type Option func(*quizService)

// WithPicker replaces the random choice of the next play question.
func WithPicker(p Picker) Option {
	return func(s *quizService) { s.picker = p }
}

// NewQuizService creates a new instance of quizService
func NewQuizService(repo domain.QuizRepository, scoreboard domain.Scoreboard, cfg *config.Config, opts ...Option) QuizService {
	s := &quizService{
		repo:       repo,
		scoreboard: scoreboard,
		validator:  validation.NewValidator(),
		topScores:  cfg.Scoreboard.Top,
		picker:     defaultPicker,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateID parses the leading integer of arg, e.g. "12abc" is 12.
func (s *quizService) ValidateID(arg string) (int64, error) {
	return s.validator.ParseID(idParam, arg)
}

// List implements QuizService
func (s *quizService) List(ctx context.Context, ch domain.Channel) error {
	quizzes, err := s.repo.GetAllQuizzes(ctx)
	if err != nil {
		return storeError("No se pudieron leer los quizzes.", err)
	}
	if len(quizzes) == 0 {
		return ch.EmitLine("No hay quizzes.", domain.ColorNone)
	}

	for _, quiz := range quizzes {
		if err := ch.EmitLine(fmt.Sprintf("[%s]:  %s", idText(quiz.ID), quiz.Question), domain.ColorNone); err != nil {
			return err
		}
	}
	return nil
}

// Show implements QuizService
func (s *quizService) Show(ctx context.Context, ch domain.Channel, arg string) error {
	quiz, err := s.lookup(ctx, arg)
	if err != nil {
		return err
	}
	return ch.EmitLine(fmt.Sprintf("[%s]:  %s => %s", idText(quiz.ID), quiz.Question, quiz.Answer), domain.ColorNone)
}

// Add implements QuizService
func (s *quizService) Add(ctx context.Context, ch domain.Channel) error {
	question, err := ch.Prompt(ctx, " Introduzca una pregunta: ")
	if err != nil {
		return err
	}
	answer, err := ch.Prompt(ctx, " Introduzca la respuesta: ")
	if err != nil {
		return err
	}

	quiz, err := s.repo.CreateQuiz(ctx, question, answer)
	if err != nil {
		return storeError("No se pudo crear el quiz.", err)
	}

	logger.Get().Info("Quiz created", zap.Int64("quiz_id", quiz.ID))
	return ch.EmitLine(fmt.Sprintf("Se ha añadido: %s => %s", quiz.Question, quiz.Answer), domain.ColorMagenta)
}

// Edit implements QuizService
func (s *quizService) Edit(ctx context.Context, ch domain.Channel, arg string) error {
	quiz, err := s.lookup(ctx, arg)
	if err != nil {
		return err
	}

	question, err := promptWithDefault(ctx, ch, " Introduzca una pregunta: ", quiz.Question)
	if err != nil {
		return err
	}
	answer, err := promptWithDefault(ctx, ch, " Introduzca la respuesta: ", quiz.Answer)
	if err != nil {
		return err
	}

	quiz.Question = question
	quiz.Answer = answer
	if err := s.repo.UpdateQuiz(ctx, quiz); err != nil {
		return storeError("No se pudo editar el quiz.", err)
	}

	logger.Get().Info("Quiz updated", zap.Int64("quiz_id", quiz.ID))
	return ch.EmitLine(fmt.Sprintf("Se ha cambiado el quiz %s por: %s => %s", idText(quiz.ID), quiz.Question, quiz.Answer), domain.ColorMagenta)
}

// Delete implements QuizService
func (s *quizService) Delete(ctx context.Context, ch domain.Channel, arg string) error {
	id, err := s.ValidateID(arg)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteQuiz(ctx, id); err != nil {
		return storeError("No se pudo borrar el quiz.", err)
	}

	logger.Get().Info("Quiz deleted", zap.Int64("quiz_id", id))
	return ch.EmitLine(fmt.Sprintf("Se ha borrado el quiz [%s].", idText(id)), domain.ColorMagenta)
}

// Test implements QuizService
func (s *quizService) Test(ctx context.Context, ch domain.Channel, arg string) error {
	quiz, err := s.lookup(ctx, arg)
	if err != nil {
		return err
	}

	response, err := ch.Prompt(ctx, quiz.Question+"? ")
	if err != nil {
		return err
	}

	if quiz.IsCorrect(response) {
		if err := ch.EmitLine("Su respuesta es correcta.", domain.ColorNone); err != nil {
			return err
		}
		return ch.EmitBanner("Correcta", domain.ColorGreen)
	}

	if err := ch.EmitLine("Su respuesta es incorrecta.", domain.ColorNone); err != nil {
		return err
	}
	return ch.EmitBanner("Incorrecta", domain.ColorRed)
}

// Play implements QuizService. The round ends on the first wrong answer or
// once every quiz has been asked, and its score is offered to the scoreboard.
func (s *quizService) Play(ctx context.Context, ch domain.Channel, player string) error {
	quizzes, err := s.repo.GetAllQuizzes(ctx)
	if err != nil {
		return storeError("No se pudieron cargar los quizzes.", err)
	}

	r := newRound(quizzes, s.picker)
	defer s.recordScore(ctx, player, r)

	for {
		quiz, ok, err := r.next()
		if err != nil {
			// the round ends as lost with the score reached so far
			if emitErr := finishRound(ch, r.score); emitErr != nil {
				return emitErr
			}
			return domain.NewInternalError("Error durante el examen.", err)
		}
		if !ok {
			if err := ch.EmitLine("No hay nada más que preguntar.", domain.ColorNone); err != nil {
				return err
			}
			return finishRound(ch, r.score)
		}

		response, err := ch.Prompt(ctx, quiz.Question+"? ")
		if err != nil {
			return err
		}

		if !quiz.IsCorrect(response) {
			if err := ch.EmitLine("INCORRECTO.", domain.ColorRed); err != nil {
				return err
			}
			return finishRound(ch, r.score)
		}

		r.score++
		if err := ch.EmitLine(fmt.Sprintf("CORRECTO - Lleva %d aciertos.", r.score), domain.ColorGreen); err != nil {
			return err
		}
	}
}

// Scores implements QuizService
func (s *quizService) Scores(ctx context.Context, ch domain.Channel) error {
	entries, err := s.scoreboard.TopScores(ctx, s.topScores)
	if err != nil {
		return domain.NewInternalError("No se pudieron leer las puntuaciones.", err)
	}
	if len(entries) == 0 {
		return ch.EmitLine("Todavía no hay puntuaciones.", domain.ColorNone)
	}

	if err := ch.EmitLine("Mejores puntuaciones:", domain.ColorMagenta); err != nil {
		return err
	}
	for i, entry := range entries {
		if err := ch.EmitLine(fmt.Sprintf("%d. %s - %d", i+1, entry.Player, entry.Score), domain.ColorNone); err != nil {
			return err
		}
	}
	return nil
}

// lookup validates arg and loads the quiz it names.
func (s *quizService) lookup(ctx context.Context, arg string) (*domain.Quiz, error) {
	id, err := s.ValidateID(arg)
	if err != nil {
		return nil, err
	}

	quiz, err := s.repo.GetQuizByID(ctx, id)
	if err != nil {
		return nil, storeError("No se pudo leer el quiz.", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(id)
	}
	return quiz, nil
}

func (s *quizService) recordScore(ctx context.Context, player string, r *round) {
	if s.scoreboard == nil || player == "" {
		return
	}

	// the session may already be gone, the score is still worth keeping
	ctx = context.WithoutCancel(ctx)
	if err := s.scoreboard.RecordScore(ctx, player, r.score); err != nil {
		logger.Get().Warn("Failed to record score",
			zap.Error(err),
			zap.String("player", player),
			zap.Int("score", r.score))
		return
	}
	logger.Get().Debug("Round finished",
		zap.String("player", player),
		zap.Int("score", r.score),
		zap.Int("unasked", r.remaining()))
}

func finishRound(ch domain.Channel, score int) error {
	if err := ch.EmitLine(fmt.Sprintf("Fin del examen. Aciertos: %d", score), domain.ColorNone); err != nil {
		return err
	}
	return ch.EmitBanner(strconv.Itoa(score), domain.ColorMagenta)
}

func promptWithDefault(ctx context.Context, ch domain.Channel, text, def string) (string, error) {
	if dp, ok := ch.(domain.DefaultPrompter); ok {
		return dp.PromptDefault(ctx, text, def)
	}
	return ch.Prompt(ctx, text)
}

// storeError keeps validation and domain errors as they are and wraps
// anything else from the store.
func storeError(message string, err error) error {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	return domain.NewInternalError(message, err)
}

func idText(id int64) string {
	return strconv.FormatInt(id, 10)
}
