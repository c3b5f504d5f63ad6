// Package flow implements the scripted lead-intake questionnaire as a pure
// finite-state machine. Decide never performs I/O and never fails: invalid
// input is an ordinary same-step outcome with a corrective reply.
package flow

// Step identifies a position in the questionnaire.
type Step string

const (
	// StepStart waits for a greeting before showing the menu.
	StepStart Step = "START"
	// StepMenu waits for the department choice.
	StepMenu Step = "MENU"
	// StepName collects the contact name.
	StepName Step = "LEAD_NAME"
	// StepEmail collects an optional e-mail address.
	StepEmail Step = "LEAD_EMAIL"
	// StepProduct collects the product of interest.
	StepProduct Step = "LEAD_PRODUCT"
	// StepCEP collects the postal code.
	StepCEP Step = "LEAD_CEP"
	// StepNeed collects a one-line description of the need.
	StepNeed Step = "LEAD_NEED"
	// StepConfirm shows the summary and waits for confirmation.
	StepConfirm Step = "CONFIRM"
	// StepDone marks a completed questionnaire awaiting hand-off.
	StepDone Step = "FINAL"
)

var knownSteps = map[Step]struct{}{
	StepStart:   {},
	StepMenu:    {},
	StepName:    {},
	StepEmail:   {},
	StepProduct: {},
	StepCEP:     {},
	StepNeed:    {},
	StepConfirm: {},
	StepDone:    {},
}

// ParseStep maps a persisted value onto a known step. Unknown or corrupted
// values degrade to StepStart so a broken session restarts the script
// instead of surfacing an error to the counterparty.
func ParseStep(raw string) Step {
	s := Step(raw)
	if _, ok := knownSteps[s]; ok {
		return s
	}
	return StepStart
}

// Answer field names, shared with the spreadsheet column layout.
const (
	FieldDepartment = "setor"
	FieldName       = "nome"
	FieldEmail      = "email"
	FieldProduct    = "produto"
	FieldCEP        = "cep"
	FieldNeed       = "necessidade"
)

// Answers accumulates questionnaire answers keyed by field name.
type Answers map[string]string

// Clone returns an independent copy so Decide never mutates its input.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
