package wizard

import (
	"strings"
)

// User-facing validation messages.
const (
	MsgTitleRequired   = "Título é obrigatório"
	MsgMessageRequired = "Mensagem é obrigatória"
	MsgNoCategories    = "Nenhuma categoria configurada"
	MsgSelectRecipient = "Selecione os destinatários"
	MsgDateRequired    = "Data é obrigatória"
	MsgCheckFields     = "Verifique os campos desta etapa"
	MsgLastStep        = "Já está na última etapa"
)

// ValidationResult is the outcome of a step validator. A failed result without
// a message reads as the generic MsgCheckFields.
type ValidationResult struct {
	OK      bool
	Message string
}

// Pass is a successful result.
func Pass() ValidationResult {
	return ValidationResult{OK: true}
}

// Fail is a failed result carrying a user-facing message.
func Fail(msg string) ValidationResult {
	return ValidationResult{Message: msg}
}

// FailSilently is a failed result without a message of its own.
func FailSilently() ValidationResult {
	return ValidationResult{}
}

func (v ValidationResult) normalize() ValidationResult {
	if v.OK {
		return ValidationResult{OK: true}
	}
	if strings.TrimSpace(v.Message) == "" {
		v.Message = MsgCheckFields
	}
	return v
}

var builtinValidators = map[string]ValidateFunc{
	StepIDMessage:    ValidateMessage,
	StepIDRecipients: ValidateRecipients,
	StepIDScheduling: ValidateScheduling,
	StepIDPreview:    func(*FormData) ValidationResult { return Pass() },
}

// ValidateMessage requires a non-blank title and message.
func ValidateMessage(f *FormData) ValidationResult {
	if strings.TrimSpace(f.Title) == "" {
		return Fail(MsgTitleRequired)
	}
	if strings.TrimSpace(f.Message) == "" {
		return Fail(MsgMessageRequired)
	}
	return Pass()
}

// ValidateRecipients requires at least one selected id in the last category of
// the form's ordered category list. Earlier categories are not checked.
func ValidateRecipients(f *FormData) ValidationResult {
	order := f.order
	if len(order) == 0 {
		return Fail(MsgNoCategories)
	}
	last := order[len(order)-1]
	if len(f.Categories.Selected(last)) == 0 {
		return Fail(MsgSelectRecipient)
	}
	return Pass()
}

// ValidateScheduling passes when sending today, else requires a date.
func ValidateScheduling(f *FormData) ValidationResult {
	if f.SendToday {
		return Pass()
	}
	if strings.TrimSpace(f.Date) == "" {
		return Fail(MsgDateRequired)
	}
	return Pass()
}
