package flow

import "fmt"

// Reply texts, kept in pt-BR as shipped to end users.
const (
	msgResetDone = "Perfeito. Vamos recomeçar. Digite 'oi' para iniciar. ✅"

	msgGreetingPrompt = "Digite 'oi' para começar. 🙂"
	msgNotUnderstood  = "Não entendi. Digite 'oi' para começar. 🙂"

	msgMenu = "Olá! 👋\n" +
		"Sou o atendimento automático 🤖\n\n" +
		"Digite:\n" +
		"1️⃣ para Vendas\n" +
		"2️⃣ para Suporte"
	msgMenuInvalid = "Opção inválida. Digite 1️⃣ (Vendas) ou 2️⃣ (Suporte)."

	msgAskName    = "Show! Antes de te encaminhar, me diga seu nome:"
	msgNamePrompt = "Qual seu nome? (pode ser só o primeiro) 🙂"

	msgAskEmail     = "Obrigado! Agora me diga seu e-mail (se não tiver, digite 'pular'):"
	msgEmailInvalid = "E-mail inválido. Digite um e-mail válido ou 'pular'."

	msgAskProduct    = "Perfeito. Qual produto você está procurando? (ex: 'iPhone 13', 'câmera', 'notebook')"
	msgProductPrompt = "Qual produto você está procurando? 🙂"

	msgAskCEP     = "Boa! Agora me diga seu CEP (somente números ou com hífen). Ex: 01001-000"
	msgCEPInvalid = "CEP inválido. Envie no formato 01001-000 ou 01001000."

	msgAskNeed    = "Agora descreva em 1 frase o que você precisa (ex: 'quero orçamento', 'tirar dúvida', 'acompanhar pedido'):"
	msgNeedPrompt = "Me diga em 1 frase o que você precisa 🙂"

	msgConfirmInvalid = "Digite 1 para confirmar ou 2 para recomeçar."
	msgRecording      = "Perfeito! Registrando seus dados… ✅"

	// MsgDone is sent once the lead is recorded. Exported because the
	// processor also sends it after a deferred hand-off succeeds.
	MsgDone = "Pronto! Registrei seus dados e vou encaminhar. Em breve alguém te chama por aqui. ✅"
	// MsgPending is sent while a hand-off retry is still failing.
	MsgPending = "Um instante, estou registrando seus dados… ✅"
)

func confirmSummary(a Answers) string {
	email := a[FieldEmail]
	if email == "" {
		email = "(não informado)"
	}
	department := "Vendas"
	if a[FieldDepartment] == DepartmentSupport {
		department = "Suporte"
	}
	return fmt.Sprintf(
		"✅ Só pra confirmar:\n"+
			"• Nome: %s\n"+
			"• Email: %s\n"+
			"• Produto: %s\n"+
			"• CEP: %s\n"+
			"• Necessidade: %s\n"+
			"• Setor: %s\n\n"+
			"Digite 1 para confirmar ✅\n"+
			"Digite 2 para recomeçar 🔄",
		a[FieldName], email, a[FieldProduct], a[FieldCEP], a[FieldNeed], department,
	)
}
