package lead

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"log/slog"

	"github.com/contact-solution/leadbot/core/logger"
)

type postgresSink struct {
	db *sqlx.DB
}

// NewPostgresSink records leads in the leads table.
func NewPostgresSink(db *sqlx.DB) Sink {
	return &postgresSink{db: db}
}

func (p *postgresSink) Record(ctx context.Context, l Lead) error {
	start := time.Now()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO leads (created_at, phone, department, name, email, product, cep, need)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.CreatedAt, l.Phone, l.Department, l.Name, l.Email, l.Product, l.CEP, l.Need)
	if err != nil {
		logger.Lead.Error("lead insert failed",
			slog.String("event", "lead.db"),
			slog.String("status", "fail"),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("lead insert: %w", err)
	}
	logger.Lead.Debug("lead row inserted",
		slog.String("event", "lead.db"),
		slog.String("status", "ok"),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
