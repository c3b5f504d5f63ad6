// Package whatsapp speaks the WhatsApp Cloud API: inbound webhook payloads,
// the verification handshake, and the Graph API send endpoint.
package whatsapp

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoMessage marks webhook deliveries that carry no user message, such as
// delivery receipts and status updates. Callers drop these events instead of
// invoking the conversation engine.
var ErrNoMessage = errors.New("whatsapp: payload carries no message")

// Message is one inbound text message extracted from a webhook delivery.
type Message struct {
	// Phone is the sender in international digits form; it doubles as the
	// conversation id.
	Phone string
	// Text is the raw message body as typed by the sender.
	Text string
	// MessageID is the platform message id (wamid...), used for
	// redelivery deduplication. May be empty on malformed payloads.
	MessageID string
}

// Webhook payload shape per the Cloud API changes format. Only the fields
// the bot consumes are declared.
type webhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string       `json:"field"`
			Value webhookValue `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type webhookValue struct {
	MessagingProduct string `json:"messaging_product"`
	Messages         []struct {
		From      string `json:"from"`
		ID        string `json:"id"`
		Timestamp string `json:"timestamp"`
		Type      string `json:"type"`
		Text      *struct {
			Body string `json:"body"`
		} `json:"text,omitempty"`
	} `json:"messages"`
	Statuses []json.RawMessage `json:"statuses"`
}

// ParseInbound decodes a webhook delivery and extracts the first user
// message. It returns ErrNoMessage for status-only events and a descriptive
// error for payloads that cannot be decoded; the engine is never invoked on
// either.
func ParseInbound(r io.Reader) (Message, error) {
	var payload webhookPayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return Message{}, fmt.Errorf("whatsapp: decode payload: %w", err)
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				phone := strings.TrimSpace(msg.From)
				if phone == "" {
					continue
				}
				text := ""
				if msg.Text != nil {
					text = msg.Text.Body
				}
				return Message{
					Phone:     phone,
					Text:      text,
					MessageID: msg.ID,
				}, nil
			}
		}
	}
	return Message{}, ErrNoMessage
}
