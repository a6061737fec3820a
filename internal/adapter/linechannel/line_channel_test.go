package linechannel

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"quiz-shell/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	closed int
}

func (c *closeRecorder) Close() error {
	c.closed++
	return nil
}

func TestLineChannel_ReadLine(t *testing.T) {
	out := &bytes.Buffer{}
	ch := New(strings.NewReader("list\n  Roma  \r\n"), out)
	ctx := context.Background()

	line, err := ch.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "list", line)

	line, err = ch.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Roma", line)

	_, err = ch.ReadLine(ctx)
	assert.ErrorIs(t, err, domain.ErrTransportClosed)
}

func TestLineChannel_Prompt(t *testing.T) {
	out := &bytes.Buffer{}
	ch := New(strings.NewReader("París\n"), out)

	answer, err := ch.Prompt(context.Background(), "Capital de Francia? ")
	require.NoError(t, err)
	assert.Equal(t, "París", answer)
	assert.Equal(t, "Capital de Francia? ", out.String())
}

func TestLineChannel_PromptDefault(t *testing.T) {
	out := &bytes.Buffer{}
	ch := New(strings.NewReader("\nLisboa\n"), out)
	ctx := context.Background()

	kept, err := ch.PromptDefault(ctx, " Introduzca la respuesta: ", "Roma")
	require.NoError(t, err)
	assert.Equal(t, "Roma", kept)

	changed, err := ch.PromptDefault(ctx, " Introduzca la respuesta: ", "Roma")
	require.NoError(t, err)
	assert.Equal(t, "Lisboa", changed)
	assert.Contains(t, out.String(), " Introduzca la respuesta: [Roma] ")
}

func TestLineChannel_EmitLineAndReady(t *testing.T) {
	out := &bytes.Buffer{}
	ch := New(strings.NewReader(""), out, WithPrompt("> "))

	require.NoError(t, ch.EmitLine("[1]:  Capital de Italia", domain.ColorNone))
	require.NoError(t, ch.SignalReady())
	assert.Equal(t, "[1]:  Capital de Italia\n> ", out.String())
}

func TestLineChannel_Colors(t *testing.T) {
	t.Run("Enabled", func(t *testing.T) {
		out := &bytes.Buffer{}
		ch := New(strings.NewReader(""), out, WithColor(true))

		require.NoError(t, ch.EmitLine("INCORRECTO.", domain.ColorRed))
		assert.Contains(t, out.String(), "\x1b[31m")
		assert.Contains(t, out.String(), "INCORRECTO.")
	})

	t.Run("Disabled", func(t *testing.T) {
		out := &bytes.Buffer{}
		ch := New(strings.NewReader(""), out)

		require.NoError(t, ch.EmitLine("INCORRECTO.", domain.ColorRed))
		assert.Equal(t, "INCORRECTO.\n", out.String())
	})
}

func TestLineChannel_EmitBanner(t *testing.T) {
	out := &bytes.Buffer{}
	ch := New(strings.NewReader(""), out)

	require.NoError(t, ch.EmitBanner("Correcta", domain.ColorGreen))

	rows := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Greater(t, len(rows), 1)
	assert.NotContains(t, out.String(), "Correcta")
}

func TestLineChannel_Close(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	out := &bytes.Buffer{}
	recorder := &closeRecorder{}
	ch := New(pr, out, WithCloser(recorder))

	require.NoError(t, ch.Close())
	require.NoError(t, ch.Close())
	assert.Equal(t, 1, recorder.closed)

	select {
	case <-ch.Done():
	default:
		t.Fatal("Done should be closed")
	}

	_, err := ch.Prompt(context.Background(), "pregunta? ")
	assert.ErrorIs(t, err, domain.ErrTransportClosed)
	assert.ErrorIs(t, ch.EmitLine("x", domain.ColorNone), domain.ErrTransportClosed)
	assert.ErrorIs(t, ch.SignalReady(), domain.ErrTransportClosed)
	assert.Empty(t, out.String())
}

func TestLineChannel_CloseWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ch := New(pr, io.Discard)

	errCh := make(chan error, 1)
	go func() {
		_, err := ch.ReadLine(context.Background())
		errCh <- err
	}()

	require.Eventually(t, ch.inFlight.Load, time.Second, time.Millisecond)
	require.NoError(t, ch.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, domain.ErrTransportClosed)
	case <-time.After(time.Second):
		t.Fatal("ReadLine did not return after Close")
	}
}

func TestLineChannel_ContextCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ch := New(pr, io.Discard)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := ch.ReadLine(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLineChannel_SinglePromptInFlight(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ch := New(pr, io.Discard)
	defer ch.Close()

	go func() {
		_, _ = ch.ReadLine(context.Background())
	}()
	require.Eventually(t, ch.inFlight.Load, time.Second, time.Millisecond)

	_, err := ch.ReadLine(context.Background())
	assert.ErrorIs(t, err, errPromptInFlight)
}

func TestLineChannel_OversizedLineIsDropped(t *testing.T) {
	out := &bytes.Buffer{}
	input := strings.Repeat("a", 70*1024) + "\nlist\nshow 1"
	ch := New(strings.NewReader(input), out)
	ctx := context.Background()

	line, err := ch.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "list", line)
	assert.Equal(t, lineTooLongMessage+"\n", out.String())

	line, err = ch.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "show 1", line)

	_, err = ch.ReadLine(ctx)
	assert.ErrorIs(t, err, domain.ErrTransportClosed)
}

func TestReadBoundedLine(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantLine    string
		wantTooLong bool
	}{
		{name: "Short", input: "add\nnext\n", wantLine: "add"},
		{name: "CRLF", input: "show 2\r\n", wantLine: "show 2"},
		{name: "AtLimit", input: strings.Repeat("b", 15) + "\n", wantLine: strings.Repeat("b", 15)},
		{name: "OverLimit", input: strings.Repeat("b", 40) + "\nnext\n", wantTooLong: true},
		{name: "Unterminated", input: "quit", wantLine: "quit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// a 16 byte buffer makes long lines span several ReadSlice calls
			br := bufio.NewReaderSize(strings.NewReader(tt.input), 16)

			line, tooLong, err := readBoundedLine(br, 16)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTooLong, tooLong)
			assert.Equal(t, tt.wantLine, line)
		})
	}

	t.Run("LineAfterOversized", func(t *testing.T) {
		br := bufio.NewReaderSize(strings.NewReader(strings.Repeat("c", 40)+"\nnext\n"), 16)

		_, tooLong, err := readBoundedLine(br, 16)
		require.NoError(t, err)
		require.True(t, tooLong)

		line, tooLong, err := readBoundedLine(br, 16)
		require.NoError(t, err)
		assert.False(t, tooLong)
		assert.Equal(t, "next", line)

		_, _, err = readBoundedLine(br, 16)
		assert.ErrorIs(t, err, io.EOF)
	})
}
