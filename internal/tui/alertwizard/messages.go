package alertwizard

import (
	"github.com/mark3labs/alertr/internal/recipients"
	"github.com/mark3labs/alertr/internal/wizard"
)

// ItemsLoadedMsg carries the result of a category load back to the update loop.
type ItemsLoadedMsg struct {
	Ticket recipients.Ticket
	Items  []recipients.Item
	Err    error
}

// AlertSentMsg is sent when the submission finished, successfully or not.
type AlertSentMsg struct {
	Payload wizard.Payload
	Err     error
}

// MessageEditedMsg is sent when the external editor returns.
type MessageEditedMsg struct {
	Content string
	Err     error
}
