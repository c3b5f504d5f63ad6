// Package session persists per-conversation questionnaire state across
// stateless webhook requests.
package session

import (
	"context"
	"time"

	"github.com/contact-solution/leadbot/core/flow"
)

// Session holds the current step and accumulated answers for one conversation.
type Session struct {
	Step      flow.Step
	Answers   flow.Answers
	UpdatedAt time.Time
}

// New returns a fresh session at the start of the questionnaire.
func New() Session {
	return Session{
		Step:      flow.StepStart,
		Answers:   flow.Answers{},
		UpdatedAt: time.Now().UTC(),
	}
}

// Clone returns an independent copy so callers never share mutable state
// with the store.
func (s Session) Clone() Session {
	return Session{
		Step:      s.Step,
		Answers:   s.Answers.Clone(),
		UpdatedAt: s.UpdatedAt,
	}
}

// Expired reports whether the session is older than ttl. A zero ttl disables
// expiry.
func (s Session) Expired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}

// Store maps a conversation id (phone number) to its session.
//
// Implementations must be safe for concurrent use across distinct ids.
// Serialized processing within one id is the caller's job (see Locker).
type Store interface {
	// GetOrCreate returns the stored session or a fresh one when absent,
	// expired, or unreadable.
	GetOrCreate(ctx context.Context, id string) (Session, error)
	// Save replaces the stored session.
	Save(ctx context.Context, id string, s Session) error
	// Reset replaces the stored session with a fresh one.
	Reset(ctx context.Context, id string) error
}
