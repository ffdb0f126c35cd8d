package wizard

import (
	"context"
	"strings"

	"github.com/mark3labs/alertr/internal/recipients"
)

// Payload is the immutable submission built from a finished form. Categories
// carry only their selection; items, labels and dependencies stay behind.
type Payload struct {
	Title               string                          `json:"title"`
	Message             string                          `json:"message"`
	Image               *ImageHandle                    `json:"image,omitempty"`
	Date                string                          `json:"date"`
	Time                string                          `json:"time"`
	SendToday           bool                            `json:"sendToday"`
	SendCopyByEmail     bool                            `json:"sendCopyToEmail"`
	RecipientCategories map[string]recipients.Selection `json:"recipientCategories"`
	Extra               map[string]string               `json:"extra,omitempty"`
}

// RecipientCount returns the number of selected ids across all categories.
func (p Payload) RecipientCount() int {
	n := 0
	for _, sel := range p.RecipientCategories {
		n += len(sel.SelectedIDs)
	}
	return n
}

// ScheduleToday is the schedule label of alerts sent immediately.
const ScheduleToday = "Hoje"

// Schedule describes when the alert goes out.
func (p Payload) Schedule() string {
	if p.SendToday {
		return ScheduleToday
	}
	return strings.TrimSpace(p.Date + " " + p.Time)
}

// Sender delivers a finished alert.
type Sender interface {
	SendAlert(ctx context.Context, p Payload) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, p Payload) error

// SendAlert calls f.
func (f SenderFunc) SendAlert(ctx context.Context, p Payload) error {
	return f(ctx, p)
}

// Assemble copies the form into a payload that shares no memory with it.
// AllSelected is taken from the filtered view at assembly time, not from the
// stored flag.
func Assemble(f *FormData) Payload {
	p := Payload{
		Title:               f.Title,
		Message:             f.Message,
		Date:                f.Date,
		Time:                f.Time,
		SendToday:           f.SendToday,
		SendCopyByEmail:     f.SendCopyByEmail,
		RecipientCategories: recipients.NewResolver(f.Categories).Selections(),
		Extra:               f.snapshotExtra(),
	}
	if f.Image != nil {
		img := *f.Image
		p.Image = &img
	}
	return p
}
