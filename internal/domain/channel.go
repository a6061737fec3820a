package domain

import "context"

// Color is an optional tag a channel may use to decorate output.
type Color string

const (
	ColorNone    Color = ""
	ColorRed     Color = "red"
	ColorGreen   Color = "green"
	ColorYellow  Color = "yellow"
	ColorBlue    Color = "blue"
	ColorMagenta Color = "magenta"
	ColorCyan    Color = "cyan"
)

// Channel is the text transport a session talks over.
// Implementations return ErrTransportClosed from every method once closed.
type Channel interface {
	// EmitLine writes one line of output.
	EmitLine(text string, color Color) error

	// EmitBanner writes a large decorative rendering of a short text.
	EmitBanner(text string, color Color) error

	// Prompt writes text and waits for one line of trimmed input.
	// Only one prompt may be in flight at a time.
	Prompt(ctx context.Context, text string) (string, error)

	// SignalReady tells the user the next command can be typed.
	SignalReady() error

	// ReadLine waits for one line of trimmed input without writing anything.
	ReadLine(ctx context.Context) (string, error)

	Close() error
}

// DefaultPrompter is implemented by channels able to pre-seed a prompt with
// an editable value. Accepting the line unchanged yields def.
type DefaultPrompter interface {
	PromptDefault(ctx context.Context, text, def string) (string, error)
}
