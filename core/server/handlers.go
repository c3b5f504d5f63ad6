package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/contact-solution/leadbot/core/buildinfo"
	"github.com/contact-solution/leadbot/core/logger"
	"github.com/contact-solution/leadbot/core/whatsapp"
)

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /webhook", s.handleVerify)
	mux.HandleFunc("POST /webhook", s.handleWebhook)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "leadbot",
		"version": buildinfo.Version,
		"status":  "ok",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVerify answers the platform subscription handshake.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	challenge, ok := whatsapp.VerifyChallenge(r.URL.Query(), s.opts.VerifyToken)
	if !ok {
		logger.Warn(r.Context(), "http", "webhook.verify",
			slog.String("status", "fail"),
		)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	logger.Info(r.Context(), "http", "webhook.verify", slog.String("status", "ok"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(challenge))
}

// handleWebhook accepts a message delivery. The platform redelivers on
// non-2xx responses, so every outcome past decoding answers 200; failures
// are logged, never surfaced.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	msg, err := whatsapp.ParseInbound(r.Body)
	switch {
	case errors.Is(err, whatsapp.ErrNoMessage):
		logger.Debug(ctx, "http", "webhook.event",
			slog.String("status", "skip"),
		)
	case err != nil:
		logger.Warn(ctx, "http", "webhook.event",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	default:
		if handleErr := s.opts.Handler.HandleMessage(ctx, msg); handleErr != nil {
			logger.Error(ctx, "http", "webhook.process",
				slog.String("status", "fail"),
				slog.String("err", handleErr.Error()),
			)
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("EVENT_RECEIVED"))
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
