package lead

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contact-solution/leadbot/core/flow"
)

func TestFromAnswers(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	l := FromAnswers("5511999887766", flow.Answers{
		flow.FieldDepartment: flow.DepartmentSales,
		flow.FieldName:       "Maria",
		flow.FieldEmail:      "maria@x.com",
		flow.FieldProduct:    "iPhone 13",
		flow.FieldCEP:        "01001-000",
		flow.FieldNeed:       "quero orçamento",
	}, now)

	assert.Equal(t, now, l.CreatedAt)
	assert.Equal(t, "5511999887766", l.Phone)
	assert.Equal(t, flow.DepartmentSales, l.Department)
	assert.Equal(t, "Maria", l.Name)
	assert.Equal(t, "maria@x.com", l.Email)
	assert.Equal(t, "iPhone 13", l.Product)
	assert.Equal(t, "01001-000", l.CEP)
	assert.Equal(t, "quero orçamento", l.Need)
}

type countingSink struct {
	calls int
	err   error
}

func (c *countingSink) Record(context.Context, Lead) error {
	c.calls++
	return c.err
}

func TestMultiSinkAllSucceed(t *testing.T) {
	a := &countingSink{}
	b := &countingSink{}
	sink := NewMultiSink(a, b, nil)

	require.NoError(t, sink.Record(context.Background(), Lead{}))
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestMultiSinkPartialFailureIsFailure(t *testing.T) {
	a := &countingSink{}
	b := &countingSink{err: errors.New("quota exceeded")}
	sink := NewMultiSink(a, b)

	err := sink.Record(context.Background(), Lead{})
	require.Error(t, err, "partial failure must keep the hand-off retryable")
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}
