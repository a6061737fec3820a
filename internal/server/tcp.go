package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"quiz-shell/internal/adapter/linechannel"
	"quiz-shell/internal/config"
	"quiz-shell/internal/handler"
	"quiz-shell/internal/logger"
	"quiz-shell/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SessionHandler runs one session to completion.
type SessionHandler interface {
	Serve(ctx context.Context, sess handler.Session) error
}

// TCPServer serves one quiz session per plain-text TCP connection.
type TCPServer struct {
	address  string
	handler  SessionHandler
	channels []linechannel.Option

	mu       sync.Mutex
	listener net.Listener
	sessions map[string]*linechannel.LineChannel
}

// NewTCPServer creates a new TCPServer instance
func NewTCPServer(serverCfg config.ServerConfig, sessionCfg config.SessionConfig, h SessionHandler) *TCPServer {
	return &TCPServer{
		address: serverCfg.Address,
		handler: h,
		channels: []linechannel.Option{
			linechannel.WithColor(sessionCfg.Color),
			linechannel.WithPrompt(sessionCfg.Prompt),
		},
		sessions: make(map[string]*linechannel.LineChannel),
	}
}

// ListenAndServe listens on the configured address and serves until ctx is
// done.
func (s *TCPServer) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done. On return the listener
// and every live session are closed and all session goroutines have ended.
func (s *TCPServer) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	logger.Get().Info("TCP server listening", zap.String("address", ln.Addr().String()))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		ln.Close()
		s.closeSessions()
		return nil
	})

	g.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("failed to accept connection: %w", err)
			}

			g.Go(func() error {
				s.handle(gctx, conn)
				return nil
			})
		}
	})

	err := g.Wait()
	logger.Get().Info("TCP server stopped")
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Addr returns the listening address once Serve has started.
func (s *TCPServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ActiveSessions returns the number of connected sessions.
func (s *TCPServer) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *TCPServer) handle(ctx context.Context, conn net.Conn) {
	id := util.NewSessionID()
	log := logger.Get().With(
		zap.String("session_id", id),
		zap.String("remote_addr", conn.RemoteAddr().String()),
	)

	opts := append([]linechannel.Option{linechannel.WithCloser(conn)}, s.channels...)
	ch := linechannel.New(conn, conn, opts...)

	s.mu.Lock()
	s.sessions[id] = ch
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()

		if err := ch.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Debug("Failed to close connection", zap.Error(err))
		}
	}()

	log.Info("Connection accepted")
	sess := handler.Session{ID: id, Player: util.ShortID(id), Channel: ch}
	if err := s.handler.Serve(ctx, sess); err != nil {
		log.Warn("Session ended with error", zap.Error(err))
	}
}

func (s *TCPServer) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ch := range s.sessions {
		if err := ch.Close(); err != nil {
			logger.Get().Debug("Failed to close session", zap.String("session_id", id), zap.Error(err))
		}
	}
}
