package telegram

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"quiz-shell/internal/handler"
	"quiz-shell/internal/logger"
	"quiz-shell/internal/util"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// BotAPI is the subset of *tgbotapi.BotAPI used by the gateway.
type BotAPI interface {
	Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// SessionHandler runs one session to completion.
type SessionHandler interface {
	Serve(ctx context.Context, sess handler.Session) error
}

// Gateway turns every Telegram chat into a quiz session.
type Gateway struct {
	bot     BotAPI
	handler SessionHandler

	mu       sync.Mutex
	sessions map[int64]*ChatChannel
	wg       sync.WaitGroup
}

// NewGateway creates a new Gateway instance
func NewGateway(bot BotAPI, h SessionHandler) *Gateway {
	return &Gateway{
		bot:      bot,
		handler:  h,
		sessions: make(map[int64]*ChatChannel),
	}
}

// NewBotAPI connects to Telegram with token.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	logger.Get().Info("Authorised on Telegram", zap.String("account", api.Self.UserName))
	return api, nil
}

// Run polls updates until ctx is done, then closes every chat session and
// waits for them to end.
func (g *Gateway) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := g.bot.GetUpdatesChan(u)
	defer g.shutdown()

	for {
		select {
		case <-ctx.Done():
			g.bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			g.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate routes one incoming message to its chat session, starting
// the session when needed.
func (g *Gateway) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}

	chatID := msg.Chat.ID
	ch := g.session(ctx, chatID, playerName(msg))

	text := msg.Text
	if msg.IsCommand() {
		if msg.Command() == "start" {
			return
		}
		text = strings.TrimSpace(msg.Command() + " " + msg.CommandArguments())
	}

	if err := ch.Deliver(text); err != nil {
		logger.Get().Warn("Dropped Telegram message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// ActiveSessions returns the number of open chat sessions.
func (g *Gateway) ActiveSessions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sessions)
}

func (g *Gateway) session(ctx context.Context, chatID int64, player string) *ChatChannel {
	g.mu.Lock()
	defer g.mu.Unlock()

	if ch, ok := g.sessions[chatID]; ok {
		return ch
	}

	ch := NewChatChannel(chatID, g.bot)
	g.sessions[chatID] = ch
	sess := handler.Session{ID: util.NewSessionID(), Player: player, Channel: ch}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.forget(chatID, ch)

		if err := g.handler.Serve(ctx, sess); err != nil {
			logger.Get().Warn("Session ended with error",
				zap.String("session_id", sess.ID),
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		}
	}()

	return ch
}

func (g *Gateway) forget(chatID int64, ch *ChatChannel) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.sessions[chatID] == ch {
		delete(g.sessions, chatID)
	}
	ch.Close()
}

func (g *Gateway) shutdown() {
	g.mu.Lock()
	for _, ch := range g.sessions {
		ch.Close()
	}
	g.mu.Unlock()

	g.wg.Wait()
}

func playerName(msg *tgbotapi.Message) string {
	if msg.From != nil {
		if msg.From.UserName != "" {
			return msg.From.UserName
		}
		if msg.From.FirstName != "" {
			return msg.From.FirstName
		}
	}
	return "chat-" + strconv.FormatInt(msg.Chat.ID, 10)
}
