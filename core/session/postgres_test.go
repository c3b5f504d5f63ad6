package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contact-solution/leadbot/core/flow"
)

func TestDecodeSessionValidRow(t *testing.T) {
	updated := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, err := decodeSession(sessionRow{
		Phone:     "5511999887766",
		Step:      "LEAD_EMAIL",
		Answers:   []byte(`{"setor":"vendas","nome":"Maria"}`),
		UpdatedAt: updated,
	})
	require.NoError(t, err)
	assert.Equal(t, flow.StepEmail, s.Step)
	assert.Equal(t, "Maria", s.Answers[flow.FieldName])
	assert.Equal(t, updated, s.UpdatedAt)
}

func TestDecodeSessionEmptyAnswers(t *testing.T) {
	s, err := decodeSession(sessionRow{Step: "MENU"})
	require.NoError(t, err)
	assert.Equal(t, flow.StepMenu, s.Step)
	assert.Empty(t, s.Answers)
}

func TestDecodeSessionUnknownStepDropsRow(t *testing.T) {
	// Stale answers must not survive a corrupted step: a leftover email
	// would otherwise leak into the next questionnaire run.
	_, err := decodeSession(sessionRow{
		Step:    "LEAD_EMAIL|garbage",
		Answers: []byte(`{"email":"old@run.com"}`),
	})
	require.Error(t, err)
}

func TestDecodeSessionCorruptAnswersDropsRow(t *testing.T) {
	_, err := decodeSession(sessionRow{
		Step:    "LEAD_CEP",
		Answers: []byte(`{"cep": `),
	})
	require.Error(t, err)
}
