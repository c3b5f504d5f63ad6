package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contact-solution/leadbot/core/whatsapp"
)

type capturingHandler struct {
	mu   sync.Mutex
	msgs []whatsapp.Message
	err  error
}

func (h *capturingHandler) HandleMessage(_ context.Context, msg whatsapp.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msg)
	return h.err
}

func newTestHandler(t *testing.T, captured *capturingHandler) http.Handler {
	t.Helper()
	srv := New(Options{
		VerifyToken: "secret",
		Handler:     captured,
	})
	mux := http.NewServeMux()
	srv.registerRoutes(mux)
	return withMiddleware(mux)
}

func TestVerifyHandshake(t *testing.T) {
	h := newTestHandler(t, &capturingHandler{})

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=secret&hub.challenge=42", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", rec.Body.String())
}

func TestVerifyHandshakeWrongToken(t *testing.T) {
	h := newTestHandler(t, &capturingHandler{})

	req := httptest.NewRequest(http.MethodGet,
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=42", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookDeliveryReachesHandler(t *testing.T) {
	captured := &capturingHandler{}
	h := newTestHandler(t, captured)

	body := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{
		"messages":[{"from":"5511999887766","id":"wamid.A","type":"text","text":{"body":"oi"}}]}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "EVENT_RECEIVED", rec.Body.String())
	require.Len(t, captured.msgs, 1)
	assert.Equal(t, "oi", captured.msgs[0].Text)
}

func TestWebhookStatusEventAcknowledged(t *testing.T) {
	captured := &capturingHandler{}
	h := newTestHandler(t, captured)

	body := `{"object":"whatsapp_business_account","entry":[{"changes":[{"value":{
		"statuses":[{"id":"wamid.A","status":"delivered"}]}}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, captured.msgs)
}

func TestWebhookMalformedPayloadAcknowledged(t *testing.T) {
	captured := &capturingHandler{}
	h := newTestHandler(t, captured)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"entry":`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// Non-2xx would trigger platform redelivery storms.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, captured.msgs)
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestHandler(t, &capturingHandler{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "rid-upstream")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "rid-upstream", rec.Header().Get("X-Request-ID"))
}

func TestRootReportsService(t *testing.T) {
	h := newTestHandler(t, &capturingHandler{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service":"leadbot"`)
}
