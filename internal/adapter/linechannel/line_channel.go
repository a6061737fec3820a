package linechannel

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"quiz-shell/internal/domain"
	"quiz-shell/internal/logger"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
	"go.uber.org/zap"
)

// maxLineBytes bounds one input line, line ending included.
const maxLineBytes = 64 * 1024

const lineTooLongMessage = "Error: La línea es demasiado larga."

var errPromptInFlight = errors.New("another prompt is already waiting for input")

var colorAttrs = map[domain.Color]color.Attribute{
	domain.ColorRed:     color.FgRed,
	domain.ColorGreen:   color.FgGreen,
	domain.ColorYellow:  color.FgYellow,
	domain.ColorBlue:    color.FgBlue,
	domain.ColorMagenta: color.FgMagenta,
	domain.ColorCyan:    color.FgCyan,
}

// LineChannel implements domain.Channel over a line-oriented byte stream such
// as a TCP connection or a terminal. Input is read on a separate goroutine so
// that a pending prompt can be abandoned on close or context cancellation.
type LineChannel struct {
	w           io.Writer
	closer      io.Closer
	colored     bool
	prompt      string
	promptColor domain.Color

	mu        sync.Mutex // serializes writes
	closed    chan struct{}
	closeOnce sync.Once

	lines    chan string
	inFlight atomic.Bool
}

type Option func(*LineChannel)

// WithCloser sets the resource released by Close, usually the connection.
func WithCloser(closer io.Closer) Option {
	return func(c *LineChannel) { c.closer = closer }
}

// WithColor enables ANSI colors regardless of whether w is a terminal.
func WithColor(enabled bool) Option {
	return func(c *LineChannel) { c.colored = enabled }
}

// WithPrompt sets the text written by SignalReady.
func WithPrompt(prompt string) Option {
	return func(c *LineChannel) { c.prompt = prompt }
}

// New creates a LineChannel reading lines from r and writing to w.
func New(r io.Reader, w io.Writer, opts ...Option) *LineChannel {
	c := &LineChannel{
		w:           w,
		prompt:      "quiz > ",
		promptColor: domain.ColorRed,
		closed:      make(chan struct{}),
		lines:       make(chan string),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.readLoop(r)
	return c
}

var (
	_ domain.Channel         = (*LineChannel)(nil)
	_ domain.DefaultPrompter = (*LineChannel)(nil)
)

func (c *LineChannel) readLoop(r io.Reader) {
	defer close(c.lines)

	br := bufio.NewReader(r)
	for {
		line, tooLong, err := readBoundedLine(br, maxLineBytes)
		if err != nil {
			if !errors.Is(err, io.EOF) && !c.isClosed() {
				logger.Get().Warn("Failed to read from session", zap.Error(err))
			}
			return
		}

		if tooLong {
			// the line is dropped, the session goes on
			logger.Get().Warn("Dropped oversized input line", zap.Int("limit_bytes", maxLineBytes))
			if err := c.EmitLine(lineTooLongMessage, domain.ColorRed); err != nil {
				return
			}
			continue
		}

		select {
		case c.lines <- line:
		case <-c.closed:
			return
		}
	}
}

// readBoundedLine reads up to the next '\n'. A line longer than limit is
// consumed in full and reported with tooLong set. A last line without a
// terminator is returned before io.EOF.
func readBoundedLine(br *bufio.Reader, limit int) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, rerr := br.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > limit {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		switch {
		case errors.Is(rerr, bufio.ErrBufferFull):
			continue
		case errors.Is(rerr, io.EOF) && (len(buf) > 0 || tooLong):
			return strings.TrimRight(string(buf), "\r\n"), tooLong, nil
		case rerr != nil:
			return "", false, rerr
		}
		return strings.TrimRight(string(buf), "\r\n"), tooLong, nil
	}
}

// EmitLine implements domain.Channel
func (c *LineChannel) EmitLine(text string, col domain.Color) error {
	return c.write(c.paint(text, col) + "\n")
}

// EmitBanner implements domain.Channel
func (c *LineChannel) EmitBanner(text string, col domain.Color) error {
	rows := figure.NewFigure(text, "", false).Slicify()

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(c.paint(row, col))
		b.WriteString("\n")
	}
	return c.write(b.String())
}

// Prompt implements domain.Channel
func (c *LineChannel) Prompt(ctx context.Context, text string) (string, error) {
	if err := c.write(c.paint(text, c.promptColor)); err != nil {
		return "", err
	}
	return c.ReadLine(ctx)
}

// PromptDefault shows def next to the prompt; an empty reply keeps it.
func (c *LineChannel) PromptDefault(ctx context.Context, text, def string) (string, error) {
	line, err := c.Prompt(ctx, fmt.Sprintf("%s[%s] ", text, def))
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// SignalReady implements domain.Channel
func (c *LineChannel) SignalReady() error {
	return c.write(c.prompt)
}

// ReadLine implements domain.Channel
func (c *LineChannel) ReadLine(ctx context.Context) (string, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return "", errPromptInFlight
	}
	defer c.inFlight.Store(false)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-c.closed:
		return "", domain.ErrTransportClosed
	case line, ok := <-c.lines:
		if !ok {
			return "", domain.ErrTransportClosed
		}
		return strings.TrimSpace(line), nil
	}
}

// Close implements domain.Channel. It is safe to call more than once and
// from another goroutine than the one driving the session.
func (c *LineChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		// unblocks a write stuck on a peer that stopped reading
		if c.closer != nil {
			err = c.closer.Close()
		}
	})
	return err
}

func (c *LineChannel) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Done is closed once the channel has been closed.
func (c *LineChannel) Done() <-chan struct{} {
	return c.closed
}

func (c *LineChannel) write(s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.closed:
		return domain.ErrTransportClosed
	default:
	}

	if _, err := io.WriteString(c.w, s); err != nil {
		select {
		case <-c.closed:
			return domain.ErrTransportClosed
		default:
		}
		return fmt.Errorf("failed to write to session: %w", err)
	}
	return nil
}

func (c *LineChannel) paint(text string, col domain.Color) string {
	if !c.colored {
		return text
	}
	attr, ok := colorAttrs[col]
	if !ok {
		return text
	}
	painter := color.New(attr)
	painter.EnableColor()
	return painter.Sprint(text)
}
