// Package bootstrap assembles the application from configuration: logger,
// database, session store, lead sinks, outbound dispatcher and processor.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/contact-solution/leadbot/core/bot"
	coreconfig "github.com/contact-solution/leadbot/core/config"
	coredatabase "github.com/contact-solution/leadbot/core/database"
	"github.com/contact-solution/leadbot/core/lead"
	"github.com/contact-solution/leadbot/core/logger"
	"github.com/contact-solution/leadbot/core/server"
	"github.com/contact-solution/leadbot/core/session"
	"github.com/contact-solution/leadbot/core/whatsapp"
	wasender "github.com/contact-solution/leadbot/core/whatsapp/sender"
)

// Options control the bootstrap pipeline. Injection points exist so tests
// can substitute infrastructure.
type Options struct {
	Config *coreconfig.Config

	LoggerInit func(logger.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error

	// Sinks supplies additional lead destinations on top of the
	// configuration-driven defaults.
	Sinks []SinkProvider
}

// App holds the assembled application.
type App struct {
	Config     *coreconfig.Config
	DB         *sqlx.DB
	Store      session.Store
	Sink       lead.Sink
	Dispatcher *wasender.Dispatcher
	Processor  *bot.Processor
	Server     *server.Server
}

// Close releases infrastructure owned by the app.
func (a *App) Close() {
	if a.Dispatcher != nil {
		a.Dispatcher.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

// Run initializes the logger, connects infrastructure and wires the message
// pipeline.
func Run(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	cfg := opts.Config

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(cfg.Logging); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	app := &App{Config: cfg}

	needDB := cfg.Session.Backend == coreconfig.SessionBackendPostgres || cfg.Database.Configured()
	if needDB {
		connect := opts.Connect
		if connect == nil {
			connect = coredatabase.Connect
		}
		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		db, err := connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
		}
		if err := migrate(cfg.Database); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
		app.DB = db
	}

	app.Store = buildStore(cfg, app.DB)

	sink, err := buildSink(ctx, cfg, app.DB, opts.Sinks)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Sink = sink

	app.Dispatcher = wasender.NewDispatcher(wasender.Options{})
	replier := buildReplier(cfg, app.Dispatcher)

	app.Processor = bot.NewProcessor(bot.Options{
		Store:             app.Store,
		Sink:              app.Sink,
		Replier:           replier,
		RateLimitInterval: time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond,
	})

	app.Server = server.New(server.Options{
		Listen:      cfg.Server.Listen,
		Port:        cfg.Server.Port,
		VerifyToken: cfg.WhatsApp.VerifyToken,
		Handler:     app.Processor,
	})

	return app, nil
}

func buildStore(cfg *coreconfig.Config, db *sqlx.DB) session.Store {
	ttl := time.Duration(cfg.Session.TTLMinutes) * time.Minute
	memory := session.NewMemoryStore(ttl)
	if cfg.Session.Backend != coreconfig.SessionBackendPostgres || db == nil {
		return memory
	}
	// Memory absorbs database outages so conversations keep moving.
	return session.NewFallbackStore(session.NewPostgresStore(db, ttl), memory)
}

func buildReplier(cfg *coreconfig.Config, dispatcher *wasender.Dispatcher) bot.Replier {
	if !cfg.WhatsApp.SendEnabled() {
		return logOnlyReplier()
	}

	client := whatsapp.NewClient(whatsapp.ClientConfig{
		AccessToken:   cfg.WhatsApp.AccessToken,
		PhoneNumberID: cfg.WhatsApp.PhoneNumberID,
		APIVersion:    cfg.WhatsApp.APIVersion,
	})

	return enqueueReplier(dispatcher, client)
}

// enqueueReplier hands replies to the async dispatcher. The webhook request
// context dies as soon as the handler returns, so the job runs on a detached
// context that keeps the log metadata but not the request's cancellation;
// the dispatcher's MaxDuration bounds the send instead.
func enqueueReplier(dispatcher *wasender.Dispatcher, sender bot.Replier) bot.Replier {
	return bot.ReplierFunc(func(ctx context.Context, to, body string) error {
		sendCtx := context.WithoutCancel(ctx)
		return dispatcher.Enqueue(sendCtx, "send_text", "messages", func() error {
			return sender.SendText(sendCtx, to, body)
		})
	})
}
