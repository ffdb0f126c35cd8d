package wizard

import (
	"context"
	"slices"

	"github.com/mark3labs/alertr/internal/logger"
	"github.com/mark3labs/alertr/internal/recipients"
)

// StepState is the rendering state of a step.
type StepState int

const (
	StatePending StepState = iota
	StateCurrent
	StateCompleted
)

// String returns the string representation of a step state
func (s StepState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateCurrent:
		return "current"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// State is the navigation state of the wizard. Completed is sorted.
type State struct {
	Current   int
	Completed []int
}

// Gate is the gating summary sent to OnChange listeners after every mutation.
type Gate struct {
	Index      int
	CanAdvance bool
	CanFinish  bool
}

// finishSteps are the steps whose validators must pass before finishing.
var finishSteps = []string{StepIDMessage, StepIDRecipients, StepIDScheduling}

// Controller drives one wizard session. It is not safe for concurrent use.
type Controller struct {
	reg       *Registry
	form      *FormData
	current   int
	completed map[int]struct{}

	listeners   map[int]func(Gate)
	nextListen  int
	unsubscribe func()
	log         *logger.Component
}

// NewController creates a controller positioned on the first step. It observes
// the form's category store so listeners see gating changes from selections.
func NewController(reg *Registry, form *FormData) *Controller {
	c := &Controller{
		reg:       reg,
		form:      form,
		completed: make(map[int]struct{}),
		listeners: make(map[int]func(Gate)),
		log:       logger.Named("wizard"),
	}
	c.unsubscribe = form.Categories.Subscribe(func(recipients.Change) {
		c.emit()
	})
	return c
}

// Close detaches the controller from the form's store.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// Registry returns the step registry.
func (c *Controller) Registry() *Registry {
	return c.reg
}

// Form returns the form being edited.
func (c *Controller) Form() *FormData {
	return c.form
}

// State returns a copy of the navigation state.
func (c *Controller) State() State {
	done := make([]int, 0, len(c.completed))
	for i := range c.completed {
		done = append(done, i)
	}
	slices.Sort(done)
	return State{Current: c.current, Completed: done}
}

// Current returns the index of the active step.
func (c *Controller) Current() int {
	return c.current
}

// CurrentStep returns the active step.
func (c *Controller) CurrentStep() Step {
	s, _ := c.reg.Step(c.current)
	return s
}

// IsLast reports whether the active step is the last one.
func (c *Controller) IsLast() bool {
	return c.current == c.reg.Len()-1
}

// OnChange registers a gating listener and returns a function that removes it.
func (c *Controller) OnChange(fn func(Gate)) func() {
	id := c.nextListen
	c.nextListen++
	c.listeners[id] = fn
	return func() {
		delete(c.listeners, id)
	}
}

func (c *Controller) emit() {
	if len(c.listeners) == 0 {
		return
	}
	g := Gate{
		Index:      c.current,
		CanAdvance: c.CanAdvance(c.current),
		CanFinish:  c.CanFinish(),
	}
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		c.listeners[id](g)
	}
}

// Edit applies fn to the form and notifies listeners. Field edits made directly
// on the form are not observed.
func (c *Controller) Edit(fn func(*FormData)) {
	fn(c.form)
	c.emit()
}

// Validate runs the validator of step i.
func (c *Controller) Validate(i int) ValidationResult {
	return c.reg.validate(i, c.form)
}

// CanAdvance reports whether step i currently validates.
func (c *Controller) CanAdvance(i int) bool {
	return c.Validate(i).OK
}

// Advance marks the current step completed and moves forward. It returns
// ErrLastStep on the last step and a *ValidationError when the step fails.
func (c *Controller) Advance() error {
	if c.IsLast() {
		return ErrLastStep
	}
	if err := c.check(c.current); err != nil {
		c.log.Debug("advance blocked: step=%d: %s", c.current, err.Message)
		return err
	}
	c.completed[c.current] = struct{}{}
	c.current++
	c.log.Debug("advanced to step %d", c.current)
	c.emit()
	return nil
}

// Retreat moves back one step. Completed steps stay completed.
func (c *Controller) Retreat() bool {
	if c.current == 0 {
		return false
	}
	c.current--
	c.emit()
	return true
}

// Furthest returns the highest index GoTo accepts: one past the last completed
// step, or the current step if that is further.
func (c *Controller) Furthest() int {
	far := c.current
	for i := range c.completed {
		if i+1 > far {
			far = i + 1
		}
	}
	return min(far, c.reg.Len()-1)
}

// GoTo jumps to step i if it is within reach. It validates nothing and marks
// nothing completed.
func (c *Controller) GoTo(i int) bool {
	if i < 0 || i > c.Furthest() {
		return false
	}
	c.current = i
	c.emit()
	return true
}

// CanFinish reports whether the message, recipients and scheduling steps all
// validate, wherever the wizard currently is.
func (c *Controller) CanFinish() bool {
	return c.finishError() == nil
}

func (c *Controller) finishError() *ValidationError {
	for _, id := range finishSteps {
		i, ok := c.reg.Index(id)
		if !ok {
			continue
		}
		if err := c.check(i); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) check(i int) *ValidationError {
	res := c.Validate(i)
	if res.OK {
		return nil
	}
	s, _ := c.reg.Step(i)
	return &ValidationError{Step: i, StepID: s.ID, Message: res.Message}
}

// StepStates returns the rendering state of every step. Completed wins over current.
func (c *Controller) StepStates() []StepState {
	out := make([]StepState, c.reg.Len())
	for i := range out {
		switch _, done := c.completed[i]; {
		case done:
			out[i] = StateCompleted
		case i == c.current:
			out[i] = StateCurrent
		default:
			out[i] = StatePending
		}
	}
	return out
}

// Finish marks the current step completed, assembles the payload and hands it
// to sender. A rejected send returns a *SubmitError and leaves the form intact.
func (c *Controller) Finish(ctx context.Context, sender Sender) (Payload, error) {
	if err := c.finishError(); err != nil {
		return Payload{}, err
	}
	c.completed[c.current] = struct{}{}

	p := Assemble(c.form)
	if err := sender.SendAlert(ctx, p); err != nil {
		c.log.Error("send failed: %v", err)
		return p, &SubmitError{Cause: err}
	}
	c.log.Info("alert sent: title=%q categories=%d", p.Title, len(p.RecipientCategories))
	c.emit()
	return p, nil
}

// Reset clears the form and returns to the first step with nothing completed.
func (c *Controller) Reset() {
	c.form.Reset()
	c.current = 0
	c.completed = make(map[int]struct{})
	c.emit()
}
