package lead

import (
	"context"
	"errors"
)

type multiSink struct {
	sinks []Sink
}

// NewMultiSink fans one lead out to every configured sink. Record succeeds
// only when all sinks succeed, so a partial failure keeps the hand-off in a
// retryable state; sinks must therefore tolerate duplicate rows on retry.
func NewMultiSink(sinks ...Sink) Sink {
	return &multiSink{sinks: sinks}
}

func (m *multiSink) Record(ctx context.Context, l Lead) error {
	var errs []error
	for _, s := range m.sinks {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, l); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard is a Sink that drops leads; used when no sink is configured so the
// conversation still completes in development setups.
type Discard struct{}

// Record implements Sink.
func (Discard) Record(context.Context, Lead) error { return nil }
