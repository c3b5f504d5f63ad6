package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideHappyPath(t *testing.T) {
	inputs := []string{"oi", "1", "maria", "maria@x.com", "iPhone 13", "01001000", "quero orçamento", "1"}

	step := StepStart
	answers := Answers{}
	var last Decision
	for _, in := range inputs {
		last = Decide(step, in, answers)
		step = last.Next
		answers = last.Answers
	}

	require.Equal(t, StepDone, step)
	require.True(t, last.Completed)
	assert.Equal(t, Answers{
		FieldDepartment: DepartmentSales,
		FieldName:       "Maria",
		FieldEmail:      "maria@x.com",
		FieldProduct:    "iPhone 13",
		FieldCEP:        "01001-000",
		FieldNeed:       "quero orçamento",
	}, answers)
}

func TestDecideInvalidInputNeverAdvances(t *testing.T) {
	cases := []struct {
		name  string
		step  Step
		input string
	}{
		{"start gibberish", StepStart, "xyz"},
		{"start empty", StepStart, "   "},
		{"menu out of range", StepMenu, "3"},
		{"menu text", StepMenu, "vendas"},
		{"name empty", StepName, ""},
		{"email malformed", StepEmail, "not-an-email"},
		{"email missing tld", StepEmail, "a@b"},
		{"product empty", StepProduct, "  "},
		{"cep short", StepCEP, "12345"},
		{"cep long", StepCEP, "123456789"},
		{"need empty", StepNeed, ""},
		{"confirm other", StepConfirm, "yes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := Answers{FieldDepartment: DepartmentSales}
			d := Decide(tc.step, tc.input, before)
			assert.Equal(t, tc.step, d.Next, "must re-prompt on same step")
			assert.False(t, d.Completed)
			assert.Equal(t, Answers{FieldDepartment: DepartmentSales}, d.Answers, "answers must not change")
		})
	}
}

func TestDecideResetFromEveryStep(t *testing.T) {
	steps := []Step{StepStart, StepMenu, StepName, StepEmail, StepProduct, StepCEP, StepNeed, StepConfirm, StepDone}
	for _, kw := range []string{"reset", "reiniciar", "começar", "comecar", " RESET "} {
		for _, step := range steps {
			d := Decide(step, kw, Answers{FieldName: "Maria", FieldDepartment: DepartmentSales})
			require.Equal(t, StepStart, d.Next, "step %s keyword %q", step, kw)
			require.Empty(t, d.Answers, "step %s keyword %q", step, kw)
		}
	}
}

func TestDecideDoesNotMutateInputAnswers(t *testing.T) {
	before := Answers{FieldDepartment: DepartmentSales}
	d := Decide(StepName, "maria", before)
	assert.Equal(t, Answers{FieldDepartment: DepartmentSales}, before)
	assert.Equal(t, "Maria", d.Answers[FieldName])
}

func TestDecideReplayedAnswerIsIdempotent(t *testing.T) {
	first := Decide(StepCEP, "01001-000", Answers{})
	replay := Decide(StepCEP, "01001-000", first.Answers)
	assert.Equal(t, first.Answers[FieldCEP], replay.Answers[FieldCEP])
	assert.Len(t, replay.Answers, 1)
}

func TestDecideEmailSkip(t *testing.T) {
	d := Decide(StepEmail, "pular", Answers{FieldName: "Maria"})
	assert.Equal(t, StepProduct, d.Next)
	_, hasEmail := d.Answers[FieldEmail]
	assert.False(t, hasEmail, "skipped email must stay absent")
}

func TestDecideNameIsTitleCased(t *testing.T) {
	d := Decide(StepName, "maria da silva", Answers{})
	assert.Equal(t, "Maria Da Silva", d.Answers[FieldName])
}

func TestDecideFreeTextKeepsOriginalCasing(t *testing.T) {
	d := Decide(StepProduct, "  iPhone 13  ", Answers{})
	assert.Equal(t, "iPhone 13", d.Answers[FieldProduct])
}

func TestDecideConfirmRestartKeepsDepartment(t *testing.T) {
	answers := Answers{
		FieldDepartment: DepartmentSupport,
		FieldName:       "Maria",
		FieldEmail:      "maria@x.com",
	}
	d := Decide(StepConfirm, "2", answers)
	assert.Equal(t, StepName, d.Next)
	assert.Equal(t, Answers{FieldDepartment: DepartmentSupport}, d.Answers)
}

func TestDecideMenuDepartments(t *testing.T) {
	sales := Decide(StepMenu, "1", Answers{})
	assert.Equal(t, DepartmentSales, sales.Answers[FieldDepartment])
	assert.Equal(t, StepName, sales.Next)

	support := Decide(StepMenu, "2", Answers{})
	assert.Equal(t, DepartmentSupport, support.Answers[FieldDepartment])
	assert.Equal(t, StepName, support.Next)
}

func TestParseStepUnknownFallsBackToStart(t *testing.T) {
	assert.Equal(t, StepStart, ParseStep("corrupted|payload"))
	assert.Equal(t, StepStart, ParseStep(""))
	assert.Equal(t, StepConfirm, ParseStep("CONFIRM"))
}

func TestNormalizeCEP(t *testing.T) {
	cases := map[string]string{
		"01001-000":  "01001-000",
		"01001000":   "01001-000",
		" 01001000 ": "01001-000",
		"12345":      "",
		"":           "",
		"abcdefgh":   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeCEP(in), "input %q", in)
	}
}
