// Package lead defines the completed-questionnaire artifact and the sinks
// that record it.
package lead

import (
	"context"
	"time"

	"github.com/contact-solution/leadbot/core/flow"
)

// Lead is the completed set of answers handed off to external persistence.
type Lead struct {
	CreatedAt  time.Time
	Phone      string
	Department string
	Name       string
	Email      string
	Product    string
	CEP        string
	Need       string
}

// FromAnswers builds a Lead from accumulated questionnaire answers.
func FromAnswers(phone string, a flow.Answers, now time.Time) Lead {
	return Lead{
		CreatedAt:  now.UTC(),
		Phone:      phone,
		Department: a[flow.FieldDepartment],
		Name:       a[flow.FieldName],
		Email:      a[flow.FieldEmail],
		Product:    a[flow.FieldProduct],
		CEP:        a[flow.FieldCEP],
		Need:       a[flow.FieldNeed],
	}
}

// Sink records one lead. Record is invoked once per completed questionnaire;
// implementations must tolerate a retry of the same lead after a reported
// failure.
type Sink interface {
	Record(ctx context.Context, l Lead) error
}
