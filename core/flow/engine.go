package flow

import "strings"

// Department values stored under FieldDepartment.
const (
	DepartmentSales   = "vendas"
	DepartmentSupport = "suporte"
)

var resetKeywords = map[string]struct{}{
	"reset":     {},
	"reiniciar": {},
	"começar":   {},
	"comecar":   {},
}

// Decision is the outcome of one engine invocation.
type Decision struct {
	Reply   string
	Next    Step
	Answers Answers
	// Completed is set when this transition finished the questionnaire and
	// the accumulated answers are ready for hand-off.
	Completed bool
}

// Decide computes the reply and transition for one inbound message. It is a
// pure function: the given answers are cloned, never mutated, and no outcome
// is an error. Reset keywords interrupt any step before dispatch.
func Decide(step Step, rawText string, answers Answers) Decision {
	text := normalize(rawText)
	data := answers.Clone()

	if _, ok := resetKeywords[text]; ok {
		return Decision{Reply: msgResetDone, Next: StepStart, Answers: Answers{}}
	}

	switch step {
	case StepStart:
		return decideStart(text, data)
	case StepMenu:
		return decideMenu(text, data)
	case StepName:
		return decideName(rawText, text, data)
	case StepEmail:
		return decideEmail(rawText, text, data)
	case StepProduct:
		return decideProduct(rawText, text, data)
	case StepCEP:
		return decideCEP(rawText, text, data)
	case StepNeed:
		return decideNeed(rawText, text, data)
	case StepConfirm:
		return decideConfirm(text, data)
	case StepDone:
		// Repeatable intake: a finished conversation loops back to the
		// greeting on the next message.
		return Decision{Reply: MsgDone, Next: StepStart, Answers: Answers{}}
	default:
		return decideStart(text, data)
	}
}

func decideStart(text string, data Answers) Decision {
	if text == "" {
		return Decision{Reply: msgGreetingPrompt, Next: StepStart, Answers: data}
	}
	if strings.Contains(text, "oi") || strings.Contains(text, "olá") || strings.Contains(text, "ola") {
		return Decision{Reply: msgMenu, Next: StepMenu, Answers: data}
	}
	return Decision{Reply: msgNotUnderstood, Next: StepStart, Answers: data}
}

func decideMenu(text string, data Answers) Decision {
	switch text {
	case "1":
		data[FieldDepartment] = DepartmentSales
	case "2":
		data[FieldDepartment] = DepartmentSupport
	default:
		return Decision{Reply: msgMenuInvalid, Next: StepMenu, Answers: data}
	}
	return Decision{Reply: msgAskName, Next: StepName, Answers: data}
}

func decideName(raw, text string, data Answers) Decision {
	if text == "" {
		return Decision{Reply: msgNamePrompt, Next: StepName, Answers: data}
	}
	data[FieldName] = titleName(raw)
	return Decision{Reply: msgAskEmail, Next: StepEmail, Answers: data}
}

func decideEmail(raw, text string, data Answers) Decision {
	if text == "pular" {
		return Decision{Reply: msgAskProduct, Next: StepProduct, Answers: data}
	}
	if !looksLikeEmail(text) {
		return Decision{Reply: msgEmailInvalid, Next: StepEmail, Answers: data}
	}
	data[FieldEmail] = strings.TrimSpace(raw)
	return Decision{Reply: msgAskProduct, Next: StepProduct, Answers: data}
}

func decideProduct(raw, text string, data Answers) Decision {
	if text == "" {
		return Decision{Reply: msgProductPrompt, Next: StepProduct, Answers: data}
	}
	data[FieldProduct] = strings.TrimSpace(raw)
	return Decision{Reply: msgAskCEP, Next: StepCEP, Answers: data}
}

func decideCEP(raw, text string, data Answers) Decision {
	cep := normalizeCEP(text)
	if cep == "" {
		return Decision{Reply: msgCEPInvalid, Next: StepCEP, Answers: data}
	}
	data[FieldCEP] = cep
	return Decision{Reply: msgAskNeed, Next: StepNeed, Answers: data}
}

func decideNeed(raw, text string, data Answers) Decision {
	if text == "" {
		return Decision{Reply: msgNeedPrompt, Next: StepNeed, Answers: data}
	}
	data[FieldNeed] = strings.TrimSpace(raw)
	return Decision{Reply: confirmSummary(data), Next: StepConfirm, Answers: data}
}

func decideConfirm(text string, data Answers) Decision {
	switch text {
	case "1":
		return Decision{Reply: msgRecording, Next: StepDone, Answers: data, Completed: true}
	case "2":
		// Restart the questionnaire but keep the chosen department.
		kept := Answers{}
		if dept, ok := data[FieldDepartment]; ok {
			kept[FieldDepartment] = dept
		}
		return Decision{Reply: msgAskName, Next: StepName, Answers: kept}
	default:
		return Decision{Reply: msgConfirmInvalid, Next: StepConfirm, Answers: data}
	}
}
