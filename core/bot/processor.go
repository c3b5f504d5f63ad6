// Package bot glues the transport to the conversation engine: it takes one
// inbound message, runs it through dedup, rate limiting and the per-phone
// lock, advances the session and hands completed leads off to the sink.
package bot

import (
	"context"
	"log/slog"
	"time"

	"github.com/contact-solution/leadbot/core/flow"
	"github.com/contact-solution/leadbot/core/lead"
	"github.com/contact-solution/leadbot/core/logger"
	"github.com/contact-solution/leadbot/core/session"
	"github.com/contact-solution/leadbot/core/whatsapp"
)

// Replier sends one text message back to a conversation. The Graph API
// client satisfies it; tests substitute a recorder.
type Replier interface {
	SendText(ctx context.Context, to, body string) error
}

// ReplierFunc adapts a function to the Replier interface.
type ReplierFunc func(ctx context.Context, to, body string) error

func (f ReplierFunc) SendText(ctx context.Context, to, body string) error {
	return f(ctx, to, body)
}

// Options configures a Processor. Zero values fall back to safe defaults.
type Options struct {
	Store   session.Store
	Sink    lead.Sink
	Replier Replier
	// RateLimitInterval is the minimum gap between messages from one
	// phone. Zero disables limiting.
	RateLimitInterval time.Duration
	// DedupTTL bounds how long processed message ids are remembered.
	DedupTTL time.Duration
	Now      func() time.Time
}

// Processor is the per-message pipeline behind the webhook endpoint.
type Processor struct {
	store   session.Store
	sink    lead.Sink
	replier Replier
	locks   *session.Locker
	dedup   *dedupSet
	limiter *rateLimiter
	now     func() time.Time
}

// NewProcessor wires the pipeline. Store, Sink and Replier are required.
func NewProcessor(opts Options) *Processor {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Processor{
		store:   opts.Store,
		sink:    opts.Sink,
		replier: opts.Replier,
		locks:   session.NewLocker(),
		dedup:   newDedupSet(opts.DedupTTL),
		limiter: newRateLimiter(opts.RateLimitInterval),
		now:     now,
	}
}

// HandleMessage processes one inbound message end to end. It never returns
// an error for user input; errors signal infrastructure failures the caller
// may log but must not surface to the platform.
func (p *Processor) HandleMessage(ctx context.Context, msg whatsapp.Message) error {
	ctx = logger.WithMessageMeta(ctx, msg.Phone, msg.MessageID)

	if p.dedup.Seen(msg.MessageID) {
		logger.Debug(ctx, "bot", "message.deduped",
			slog.String("status", "skip"),
			slog.Bool("deduped", true),
		)
		return nil
	}

	if p.limiter.Limited(msg.Phone) {
		// The message never reached the engine; release its id so a
		// redelivery can retry once the window passes.
		p.dedup.Forget(msg.MessageID)
		logger.Warn(ctx, "bot", "message.rate_limited",
			slog.String("status", "rate_limited"),
			slog.Bool("rate_limited", true),
		)
		return nil
	}

	unlock := p.locks.Lock(msg.Phone)
	defer unlock()

	sess, err := p.store.GetOrCreate(ctx, msg.Phone)
	if err != nil {
		return err
	}

	// A session parked at the final step means a previous hand-off failed.
	// Retry it before anything else; the questionnaire only restarts once
	// the lead is safely recorded.
	if sess.Step == flow.StepDone {
		return p.retryHandoff(ctx, msg.Phone, sess)
	}

	decision := flow.Decide(sess.Step, msg.Text, sess.Answers)

	logger.Debug(ctx, "bot", "flow.step",
		slog.String("step", string(sess.Step)),
		slog.String("next_step", string(decision.Next)),
	)

	sess.Step = decision.Next
	sess.Answers = decision.Answers
	if err := p.store.Save(ctx, msg.Phone, sess); err != nil {
		return err
	}

	p.reply(ctx, msg.Phone, decision.Reply)

	if decision.Completed {
		p.handoff(ctx, msg.Phone, decision.Answers)
	}
	return nil
}

// handoff records a freshly completed lead. On success the session is reset
// so the conversation can take another lead; on failure it stays parked at
// the final step and the next inbound message retries.
func (p *Processor) handoff(ctx context.Context, phone string, answers flow.Answers) {
	ld := lead.FromAnswers(phone, answers, p.now().UTC())
	if err := p.sink.Record(ctx, ld); err != nil {
		logger.Error(ctx, "bot", "lead.handoff",
			slog.String("status", "fail"),
			slog.Bool("pending", true),
			slog.String("err", err.Error()),
		)
		p.reply(ctx, phone, flow.MsgPending)
		return
	}
	logger.Info(ctx, "bot", "lead.handoff", slog.String("status", "ok"))
	if err := p.store.Reset(ctx, phone); err != nil {
		logger.Warn(ctx, "bot", "session.reset",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	p.reply(ctx, phone, flow.MsgDone)
}

func (p *Processor) retryHandoff(ctx context.Context, phone string, sess session.Session) error {
	ld := lead.FromAnswers(phone, sess.Answers, p.now().UTC())
	if err := p.sink.Record(ctx, ld); err != nil {
		logger.Error(ctx, "bot", "lead.handoff.retry",
			slog.String("status", "retry"),
			slog.Bool("pending", true),
			slog.String("err", err.Error()),
		)
		// Bump UpdatedAt so the pending lead does not fall to TTL expiry.
		if err := p.store.Save(ctx, phone, sess); err != nil {
			return err
		}
		p.reply(ctx, phone, flow.MsgPending)
		return nil
	}

	logger.Info(ctx, "bot", "lead.handoff.retry", slog.String("status", "ok"))
	if err := p.store.Reset(ctx, phone); err != nil {
		return err
	}
	p.reply(ctx, phone, flow.MsgDone)
	return nil
}

func (p *Processor) reply(ctx context.Context, phone, body string) {
	if body == "" {
		return
	}
	if err := p.replier.SendText(ctx, phone, body); err != nil {
		logger.Error(ctx, "bot", "reply.send",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}
