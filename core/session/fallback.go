package session

import (
	"context"

	"log/slog"

	"github.com/contact-solution/leadbot/core/logger"
)

type fallbackStore struct {
	primary Store
	memory  Store
}

// NewFallbackStore wraps a primary store with an in-process fallback so a
// store outage degrades to per-process sessions instead of failing the
// conversation. When the primary recovers, last-write-wins applies.
func NewFallbackStore(primary Store, ttlMemory Store) Store {
	return &fallbackStore{primary: primary, memory: ttlMemory}
}

func (f *fallbackStore) GetOrCreate(ctx context.Context, id string) (Session, error) {
	s, err := f.primary.GetOrCreate(ctx, id)
	if err == nil {
		return s, nil
	}
	logger.Warn(ctx, "session", "session.fallback",
		slog.String("status", "retry"),
		slog.String("cause", "get"),
		slog.String("err", err.Error()),
	)
	return f.memory.GetOrCreate(ctx, id)
}

func (f *fallbackStore) Save(ctx context.Context, id string, s Session) error {
	if err := f.primary.Save(ctx, id, s); err != nil {
		logger.Warn(ctx, "session", "session.fallback",
			slog.String("status", "retry"),
			slog.String("cause", "save"),
			slog.String("err", err.Error()),
		)
		return f.memory.Save(ctx, id, s)
	}
	// Keep the shadow copy fresh so a later outage resumes mid-questionnaire.
	_ = f.memory.Save(ctx, id, s)
	return nil
}

func (f *fallbackStore) Reset(ctx context.Context, id string) error {
	if err := f.primary.Reset(ctx, id); err != nil {
		logger.Warn(ctx, "session", "session.fallback",
			slog.String("status", "retry"),
			slog.String("cause", "reset"),
			slog.String("err", err.Error()),
		)
	}
	return f.memory.Reset(ctx, id)
}
