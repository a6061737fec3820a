package server

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"quiz-shell/internal/config"
	"quiz-shell/internal/domain"
	"quiz-shell/internal/handler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoHandler greets the player and echoes lines until "bye" or closure.
type echoHandler struct {
	mu      sync.Mutex
	players []string
	ended   chan string
}

func (e *echoHandler) Serve(ctx context.Context, sess handler.Session) error {
	e.mu.Lock()
	e.players = append(e.players, sess.Player)
	e.mu.Unlock()
	defer func() { e.ended <- sess.ID }()

	if err := sess.Channel.EmitLine("hola "+sess.Player, domain.ColorNone); err != nil {
		return nil
	}
	for {
		line, err := sess.Channel.ReadLine(ctx)
		if err != nil {
			return nil
		}
		if line == "bye" {
			return sess.Channel.Close()
		}
		if err := sess.Channel.EmitLine("eco: "+line, domain.ColorNone); err != nil {
			return nil
		}
	}
}

func startServer(t *testing.T, h SessionHandler) (*TCPServer, context.CancelFunc, <-chan error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewTCPServer(config.ServerConfig{}, config.SessionConfig{Prompt: "> "}, h)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, time.Millisecond)
	return srv, cancel, done
}

func TestTCPServer_Session(t *testing.T) {
	h := &echoHandler{ended: make(chan string, 4)}
	srv, cancel, done := startServer(t, h)
	defer cancel()

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	reader := bufio.NewReader(conn)

	greeting, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(greeting, "hola "))
	assert.Len(t, strings.TrimSpace(strings.TrimPrefix(greeting, "hola ")), 8)

	_, err = fmt.Fprintf(conn, "  list \r\n")
	require.NoError(t, err)
	echo, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "eco: list\n", echo)

	_, err = fmt.Fprintf(conn, "bye\n")
	require.NoError(t, err)

	select {
	case <-h.ended:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end")
	}
	require.Eventually(t, func() bool { return srv.ActiveSessions() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestTCPServer_ShutdownClosesSessions(t *testing.T) {
	h := &echoHandler{ended: make(chan string, 4)}
	srv, cancel, done := startServer(t, h)

	var conns []net.Conn
	for i := 0; i < 2; i++ {
		conn, err := net.Dial("tcp", srv.Addr().String())
		require.NoError(t, err)
		defer conn.Close()
		conns = append(conns, conn)

		_, err = bufio.NewReader(conn).ReadString('\n')
		require.NoError(t, err)
	}
	require.Eventually(t, func() bool { return srv.ActiveSessions() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, 0, srv.ActiveSessions())

	for _, conn := range conns {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, err := conn.Read(make([]byte, 1))
		assert.Error(t, err)
	}
}

func TestTCPServer_DistinctPlayers(t *testing.T) {
	h := &echoHandler{ended: make(chan string, 4)}
	srv, cancel, done := startServer(t, h)

	for i := 0; i < 2; i++ {
		conn, err := net.Dial("tcp", srv.Addr().String())
		require.NoError(t, err)
		_, err = bufio.NewReader(conn).ReadString('\n')
		require.NoError(t, err)
		conn.Close()
		<-h.ended
	}

	cancel()
	require.NoError(t, <-done)

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.players, 2)
	assert.NotEqual(t, h.players[0], h.players[1])
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func TestNewHealthApp(t *testing.T) {
	app := NewHealthApp(handler.NewHealthHandler(okPinger{}, okPinger{}))

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
}
