package lead

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
	"log/slog"

	"github.com/contact-solution/leadbot/core/logger"
)

// appendRange targets the first worksheet; the Sheets API extends the table
// below the last filled row.
const appendRange = "A1"

type sheetsSink struct {
	svc     *sheets.Service
	sheetID string
}

// NewSheetsSink builds a Google Sheets sink from a base64-encoded service
// account JSON, the form the credential travels in through a single
// environment variable.
func NewSheetsSink(ctx context.Context, sheetID, serviceAccountB64 string) (Sink, error) {
	raw, err := base64.StdEncoding.DecodeString(serviceAccountB64)
	if err != nil {
		return nil, fmt.Errorf("sheets: decode service account: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, raw, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("sheets: parse service account: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("sheets: build service: %w", err)
	}
	return &sheetsSink{svc: svc, sheetID: sheetID}, nil
}

func (s *sheetsSink) Record(ctx context.Context, l Lead) error {
	row := []interface{}{
		l.CreatedAt.Format(time.RFC3339),
		l.Phone,
		l.Department,
		l.Name,
		l.Email,
		l.Product,
		l.CEP,
		l.Need,
	}
	start := time.Now()
	_, err := s.svc.Spreadsheets.Values.
		Append(s.sheetID, appendRange, &sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		logger.Lead.Error("sheet append failed",
			slog.String("event", "lead.sheets"),
			slog.String("status", "fail"),
			slog.String("sheet_id", s.sheetID),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("sheets append: %w", err)
	}
	logger.Lead.Debug("sheet row appended",
		slog.String("event", "lead.sheets"),
		slog.String("status", "ok"),
		slog.String("sheet_id", s.sheetID),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
