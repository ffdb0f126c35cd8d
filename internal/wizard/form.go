// Package wizard implements the step-gated alert wizard: a registry of steps with
// per-step validation, a controller that tracks navigation and completed steps, and
// the assembler that turns the finished form into a submission payload.
package wizard

import (
	"maps"
	"slices"

	"github.com/mark3labs/alertr/internal/recipients"
)

// ImageHandle references an image attached to an alert. The wizard never reads
// the file; it only carries the handle through to the payload.
type ImageHandle struct {
	Name        string `json:"name" yaml:"name"`
	Path        string `json:"path" yaml:"path"`
	ContentType string `json:"contentType,omitempty" yaml:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty" yaml:"size,omitempty"`
}

// FormData is the state of one wizard session.
type FormData struct {
	Title           string
	Message         string
	Image           *ImageHandle
	Date            string
	Time            string
	SendToday       bool
	SendCopyByEmail bool
	Categories      *recipients.Store
	// Extra holds fields owned by custom steps.
	Extra map[string]string

	defs  []recipients.Category
	order []string
}

// NewFormData creates a fresh form whose category store is seeded with defs.
// The order of defs is the ordered category list used by the recipients step.
func NewFormData(defs []recipients.Category) *FormData {
	f := &FormData{
		Categories: recipients.NewStore(),
		Extra:      make(map[string]string),
		defs:       slices.Clone(defs),
	}
	f.seed()
	return f
}

func (f *FormData) seed() {
	f.order = f.order[:0]
	for _, c := range f.defs {
		f.Categories.Initialize(c)
		f.order = append(f.order, c.Key)
	}
}

// CategoryOrder returns the ordered category keys the form was created with.
func (f *FormData) CategoryOrder() []string {
	return slices.Clone(f.order)
}

// Reset restores the initial values: empty fields and freshly seeded categories.
// The store instance is kept so observers stay attached.
func (f *FormData) Reset() {
	f.Title = ""
	f.Message = ""
	f.Image = nil
	f.Date = ""
	f.Time = ""
	f.SendToday = false
	f.SendCopyByEmail = false
	f.Extra = make(map[string]string)
	f.Categories.Reset()
	f.seed()
}

// snapshotExtra copies the custom step fields.
func (f *FormData) snapshotExtra() map[string]string {
	if len(f.Extra) == 0 {
		return nil
	}
	return maps.Clone(f.Extra)
}
