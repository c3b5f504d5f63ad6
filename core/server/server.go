// Package server exposes the webhook over HTTP: the Meta verification
// handshake, inbound message deliveries and a health endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/contact-solution/leadbot/core/logger"
	"github.com/contact-solution/leadbot/core/whatsapp"
)

// MessageHandler consumes one parsed inbound message. The bot processor
// satisfies it.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg whatsapp.Message) error
}

// Options configures the webhook server.
type Options struct {
	Listen      string
	Port        int
	VerifyToken string
	Handler     MessageHandler
}

// Server is the webhook HTTP server.
type Server struct {
	opts       Options
	httpServer *http.Server
}

// New builds a server; Start runs it.
func New(opts Options) *Server {
	return &Server{opts: opts}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.opts.Listen, s.opts.Port)
}

// Start listens and serves until the context is cancelled, then shuts down
// gracefully. It blocks for the lifetime of the server.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	addr := s.Addr()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      withMiddleware(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", addr, err)
	}

	logger.Info(ctx, "http", "server.start",
		slog.String("listen", s.opts.Listen),
		slog.Int("port", s.opts.Port),
	)

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "http", "server.stop")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
