package wizard

import (
	"errors"
	"fmt"
)

// Built-in step indices. Indices from 4 on belong to caller-supplied steps.
const (
	StepMessage    = 0
	StepRecipients = 1
	StepScheduling = 2
	StepPreview    = 3
)

// Built-in step ids.
const (
	StepIDMessage    = "message"
	StepIDRecipients = "recipients"
	StepIDScheduling = "scheduling"
	StepIDPreview    = "preview"
)

// ValidateFunc checks one step against the form.
type ValidateFunc func(*FormData) ValidationResult

// Step is one page of the wizard. Component is an opaque custom implementation
// handed to the front-end; the engine never inspects it.
type Step struct {
	ID        string
	Label     string
	Validate  ValidateFunc
	Component any
}

// Registry is the ordered, immutable list of steps of a wizard.
type Registry struct {
	steps []Step
	index map[string]int
}

// NewRegistry builds a registry. Step ids must be unique and non-empty.
func NewRegistry(steps ...Step) (*Registry, error) {
	if len(steps) == 0 {
		return nil, errors.New("registry needs at least one step")
	}
	r := &Registry{
		steps: make([]Step, len(steps)),
		index: make(map[string]int, len(steps)),
	}
	for i, s := range steps {
		if s.ID == "" {
			return nil, fmt.Errorf("step %d has no id", i)
		}
		if _, dup := r.index[s.ID]; dup {
			return nil, fmt.Errorf("duplicate step id %q", s.ID)
		}
		r.steps[i] = s
		r.index[s.ID] = i
	}
	return r, nil
}

// DefaultRegistry returns the four built-in steps followed by extra.
func DefaultRegistry(extra ...Step) (*Registry, error) {
	steps := []Step{
		{ID: StepIDMessage, Label: "Mensagem"},
		{ID: StepIDRecipients, Label: "Destinatários"},
		{ID: StepIDScheduling, Label: "Agendamento"},
		{ID: StepIDPreview, Label: "Revisão"},
	}
	return NewRegistry(append(steps, extra...)...)
}

// Len returns the number of steps.
func (r *Registry) Len() int {
	return len(r.steps)
}

// Step returns the step at index i.
func (r *Registry) Step(i int) (Step, bool) {
	if i < 0 || i >= len(r.steps) {
		return Step{}, false
	}
	return r.steps[i], true
}

// Index returns the position of the step with the given id.
func (r *Registry) Index(id string) (int, bool) {
	i, ok := r.index[id]
	return i, ok
}

// Steps returns a copy of the step list.
func (r *Registry) Steps() []Step {
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

// validate runs the validator that applies to step i: the step's own validator
// when it has one, the built-in rule for a built-in id, otherwise pass.
func (r *Registry) validate(i int, f *FormData) ValidationResult {
	s, ok := r.Step(i)
	if !ok {
		return Pass()
	}
	if s.Validate != nil {
		return s.Validate(f).normalize()
	}
	if fn, ok := builtinValidators[s.ID]; ok {
		return fn(f)
	}
	return Pass()
}
