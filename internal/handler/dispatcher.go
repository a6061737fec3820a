package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"quiz-shell/internal/config"
	"quiz-shell/internal/domain"
	"quiz-shell/internal/logger"
	"quiz-shell/internal/service"

	"go.uber.org/zap"
)

// Session is one connected channel together with who is behind it.
type Session struct {
	ID      string
	Player  string
	Channel domain.Channel
}

var helpLines = []string{
	"Comandos:",
	"  h|help - Muestra esta ayuda.",
	"  list - Listar los quizzes existentes.",
	"  show <id> - Muestra la pregunta y la respuesta del quiz indicado.",
	"  add - Añadir un nuevo quiz interactivamente.",
	"  delete <id> - Borrar el quiz indicado.",
	"  edit <id> - Editar el quiz indicado.",
	"  test <id> - Probar el quiz indicado.",
	"  p|play - Jugar a preguntar aleatoriamente todos los quizzes.",
	"  scores - Mejores puntuaciones.",
	"  credits - Créditos.",
	"  q|quit - Salir del programa.",
}

// Dispatcher reads commands from a session and runs the matching
// QuizService operation.
type Dispatcher struct {
	service service.QuizService
	appName string
	authors []string
}

// NewDispatcher creates a new Dispatcher instance
func NewDispatcher(svc service.QuizService, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		service: svc,
		appName: cfg.App.Name,
		authors: cfg.App.Authors,
	}
}

// Serve runs the command loop of sess until the user quits, the channel is
// closed or ctx is done.
func (d *Dispatcher) Serve(ctx context.Context, sess Session) error {
	log := logger.Get().With(zap.String("session_id", sess.ID))
	ch := sess.Channel

	log.Info("Session started", zap.String("player", sess.Player))
	defer log.Info("Session ended")

	if err := ch.EmitBanner(d.appName, domain.ColorGreen); err != nil {
		return sessionEnd(err)
	}
	if err := ch.SignalReady(); err != nil {
		return sessionEnd(err)
	}

	for {
		line, err := ch.ReadLine(ctx)
		if err != nil {
			return sessionEnd(err)
		}

		quit, err := d.Dispatch(ctx, sess, line)
		if quit {
			return ch.Close()
		}
		if err != nil {
			return sessionEnd(err)
		}

		if err := ch.SignalReady(); err != nil {
			return sessionEnd(err)
		}
	}
}

// Dispatch runs a single command line. quit reports that the session must
// end; err is only set when the channel can no longer be used, every other
// failure has already been rendered on the channel.
func (d *Dispatcher) Dispatch(ctx context.Context, sess Session, line string) (quit bool, err error) {
	verb, arg := parseCommand(line)
	if verb == "" {
		return false, nil
	}

	log := logger.Get().With(zap.String("session_id", sess.ID), zap.String("command", verb))
	log.Debug("Command received", zap.String("argument", arg))

	ch := sess.Channel
	switch verb {
	case "h", "help":
		err = emitLines(ch, helpLines, domain.ColorNone)
	case "list":
		err = d.service.List(ctx, ch)
	case "show":
		err = d.service.Show(ctx, ch, arg)
	case "add":
		err = d.service.Add(ctx, ch)
	case "delete":
		err = d.service.Delete(ctx, ch, arg)
	case "edit":
		err = d.service.Edit(ctx, ch, arg)
	case "test":
		err = d.service.Test(ctx, ch, arg)
	case "p", "play":
		err = d.service.Play(ctx, ch, sess.Player)
	case "scores":
		err = d.service.Scores(ctx, ch)
	case "credits":
		err = d.credits(ch)
	case "q", "quit":
		log.Info("Session quit by user")
		return true, nil
	default:
		log.Warn("Unknown command")
		err = emitLines(ch, []string{
			fmt.Sprintf("Comando desconocido: '%s'", verb),
			"Use 'help' para ver todos los comandos disponibles.",
		}, domain.ColorRed)
	}

	if err == nil {
		return false, nil
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return false, renderError(ch, err, log)
}

func (d *Dispatcher) credits(ch domain.Channel) error {
	if err := ch.EmitLine("Autores de la práctica:", domain.ColorNone); err != nil {
		return err
	}
	return emitLines(ch, d.authors, domain.ColorGreen)
}

// parseCommand splits a line into a lowercased verb and the rest of the line.
func parseCommand(line string) (verb, arg string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}

	verb, arg = line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		verb, arg = line[:i], line[i:]
	}
	return strings.ToLower(verb), strings.TrimSpace(arg)
}

func emitLines(ch domain.Channel, lines []string, color domain.Color) error {
	for _, line := range lines {
		if err := ch.EmitLine(line, color); err != nil {
			return err
		}
	}
	return nil
}

// sessionEnd turns the errors that normally end a session into a clean exit.
func sessionEnd(err error) error {
	if domain.HasCode(err, domain.CodeTransportClosed) {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
