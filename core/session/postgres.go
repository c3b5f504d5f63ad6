package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"log/slog"

	"github.com/contact-solution/leadbot/core/flow"
	"github.com/contact-solution/leadbot/core/logger"
)

type postgresStore struct {
	db  *sqlx.DB
	ttl time.Duration
}

type sessionRow struct {
	Phone     string    `db:"phone"`
	Step      string    `db:"step"`
	Answers   []byte    `db:"answers"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewPostgresStore persists sessions in the sessions table so the bot
// survives restarts. Corrupted rows and unknown steps decode to a fresh
// session instead of failing the conversation.
func NewPostgresStore(db *sqlx.DB, ttl time.Duration) Store {
	return &postgresStore{db: db, ttl: ttl}
}

func (p *postgresStore) GetOrCreate(ctx context.Context, id string) (Session, error) {
	var row sessionRow
	err := p.db.GetContext(ctx, &row,
		`SELECT phone, step, answers, updated_at FROM sessions WHERE phone = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return New(), nil
	}
	if err != nil {
		return New(), fmt.Errorf("session select: %w", err)
	}

	s, err := decodeSession(row)
	if err != nil {
		logger.Warn(ctx, "session", "session.corrupted",
			slog.String("status", "skip"),
			slog.String("err", err.Error()),
		)
		return New(), nil
	}
	if s.Expired(p.ttl, time.Now().UTC()) {
		return New(), nil
	}
	return s, nil
}

// decodeSession maps a stored row onto a session. A corrupted row, whether
// an unknown step or unreadable answers, is reported as an error so the
// caller discards the whole row; stale answers must never outlive the step
// they were collected under.
func decodeSession(row sessionRow) (Session, error) {
	step := flow.ParseStep(row.Step)
	if step != flow.Step(row.Step) {
		return Session{}, fmt.Errorf("unknown step %q", row.Step)
	}
	s := Session{
		Step:      step,
		Answers:   flow.Answers{},
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.Answers) > 0 {
		if err := json.Unmarshal(row.Answers, &s.Answers); err != nil {
			return Session{}, fmt.Errorf("answers decode: %w", err)
		}
	}
	return s, nil
}

func (p *postgresStore) Save(ctx context.Context, id string, s Session) error {
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO sessions (phone, step, answers, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (phone) DO UPDATE
		 SET step = EXCLUDED.step, answers = EXCLUDED.answers, updated_at = NOW()`,
		id, string(s.Step), answers)
	if err != nil {
		return fmt.Errorf("session upsert: %w", err)
	}
	return nil
}

func (p *postgresStore) Reset(ctx context.Context, id string) error {
	return p.Save(ctx, id, New())
}
