package bootstrap

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/contact-solution/leadbot/core/bot"
	coreconfig "github.com/contact-solution/leadbot/core/config"
	"github.com/contact-solution/leadbot/core/lead"
	"github.com/contact-solution/leadbot/core/logger"
)

// SinkProvider builds one lead destination from configuration and shared
// infrastructure. Returning a nil sink means the provider opted out.
type SinkProvider interface {
	Provide(ctx context.Context, cfg *coreconfig.Config, db *sqlx.DB) (lead.Sink, error)
}

// SinkProviderFunc adapts a bare function to the SinkProvider interface.
type SinkProviderFunc func(ctx context.Context, cfg *coreconfig.Config, db *sqlx.DB) (lead.Sink, error)

// Provide executes the underlying function.
func (f SinkProviderFunc) Provide(ctx context.Context, cfg *coreconfig.Config, db *sqlx.DB) (lead.Sink, error) {
	return f(ctx, cfg, db)
}

// defaultSinkProviders are the configuration-driven destinations: the leads
// table when a database is connected and the spreadsheet when credentials
// are present.
func defaultSinkProviders() []SinkProvider {
	return []SinkProvider{
		SinkProviderFunc(func(_ context.Context, _ *coreconfig.Config, db *sqlx.DB) (lead.Sink, error) {
			if db == nil {
				return nil, nil
			}
			return lead.NewPostgresSink(db), nil
		}),
		SinkProviderFunc(func(ctx context.Context, cfg *coreconfig.Config, _ *sqlx.DB) (lead.Sink, error) {
			if !cfg.Sheets.Enabled() {
				return nil, nil
			}
			return lead.NewSheetsSink(ctx, cfg.Sheets.SheetID, cfg.Sheets.ServiceAccountB64)
		}),
	}
}

func buildSink(ctx context.Context, cfg *coreconfig.Config, db *sqlx.DB, extra []SinkProvider) (lead.Sink, error) {
	providers := append(defaultSinkProviders(), extra...)

	var sinks []lead.Sink
	for _, p := range providers {
		sink, err := p.Provide(ctx, cfg, db)
		if err != nil {
			return nil, err
		}
		if sink != nil {
			sinks = append(sinks, sink)
		}
	}

	if len(sinks) == 0 {
		logger.Warn(ctx, "lead", "sink.none",
			slog.String("status", "skip"),
		)
		return lead.Discard{}, nil
	}
	return lead.NewMultiSink(sinks...), nil
}

// logOnlyReplier logs outbound replies instead of calling the Graph API.
// Used when no access token is configured, typically local development.
func logOnlyReplier() bot.Replier {
	return bot.ReplierFunc(func(ctx context.Context, to, body string) error {
		logger.Info(ctx, "wa", "send.dry_run",
			slog.String("phone", logger.MaskPhone(to)),
			slog.String("reply", logger.SanitizeLimit(body, 160)),
		)
		return nil
	})
}
