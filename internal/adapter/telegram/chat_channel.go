package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"sync/atomic"

	"quiz-shell/internal/domain"

	"github.com/common-nighthawk/go-figure"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const inboxSize = 16

var (
	errPromptInFlight = errors.New("another prompt is already waiting for input")
	errInboxFull      = errors.New("too many pending messages")
)

// Sender is the part of *tgbotapi.BotAPI a chat channel writes through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// ChatChannel implements domain.Channel for one Telegram chat. Incoming
// messages are pushed by the gateway with Deliver.
type ChatChannel struct {
	chatID int64
	sender Sender

	inbox     chan string
	closed    chan struct{}
	closeOnce sync.Once
	inFlight  atomic.Bool
}

// NewChatChannel creates a new ChatChannel instance
func NewChatChannel(chatID int64, sender Sender) *ChatChannel {
	return &ChatChannel{
		chatID: chatID,
		sender: sender,
		inbox:  make(chan string, inboxSize),
		closed: make(chan struct{}),
	}
}

var _ domain.Channel = (*ChatChannel)(nil)

// Deliver queues a line typed by the user.
func (c *ChatChannel) Deliver(text string) error {
	select {
	case <-c.closed:
		return domain.ErrTransportClosed
	default:
	}

	select {
	case c.inbox <- strings.TrimSpace(text):
		return nil
	default:
		return errInboxFull
	}
}

// EmitLine implements domain.Channel. Telegram has no colors.
func (c *ChatChannel) EmitLine(text string, _ domain.Color) error {
	return c.send(tgbotapi.NewMessage(c.chatID, text))
}

// EmitBanner implements domain.Channel
func (c *ChatChannel) EmitBanner(text string, _ domain.Color) error {
	rows := figure.NewFigure(text, "", false).Slicify()

	msg := tgbotapi.NewMessage(c.chatID, "<pre>"+html.EscapeString(strings.Join(rows, "\n"))+"</pre>")
	msg.ParseMode = tgbotapi.ModeHTML
	return c.send(msg)
}

// Prompt implements domain.Channel
func (c *ChatChannel) Prompt(ctx context.Context, text string) (string, error) {
	if err := c.send(tgbotapi.NewMessage(c.chatID, strings.TrimSpace(text))); err != nil {
		return "", err
	}
	return c.ReadLine(ctx)
}

// SignalReady implements domain.Channel. Chats show no prompt between
// commands.
func (c *ChatChannel) SignalReady() error {
	select {
	case <-c.closed:
		return domain.ErrTransportClosed
	default:
		return nil
	}
}

// ReadLine implements domain.Channel
func (c *ChatChannel) ReadLine(ctx context.Context) (string, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return "", errPromptInFlight
	}
	defer c.inFlight.Store(false)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.closed:
		return "", domain.ErrTransportClosed
	case line := <-c.inbox:
		return line, nil
	}
}

// Close implements domain.Channel
func (c *ChatChannel) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *ChatChannel) send(msg tgbotapi.MessageConfig) error {
	select {
	case <-c.closed:
		return domain.ErrTransportClosed
	default:
	}

	if _, err := c.sender.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", c.chatID, err)
	}
	return nil
}
