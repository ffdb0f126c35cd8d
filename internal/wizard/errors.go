package wizard

import (
	"errors"
	"fmt"
)

// ErrLastStep is returned by Advance when the wizard is already on its last step.
var ErrLastStep = errors.New("already on last step")

// ValidationError blocks navigation or finishing. Message is user-facing.
type ValidationError struct {
	Step    int
	StepID  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("step %q: %s", e.StepID, e.Message)
}

// SubmitError wraps a rejection from the Sender. The wizard state is unchanged
// so the submission can be retried.
type SubmitError struct {
	Cause error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("send alert: %v", e.Cause)
}

func (e *SubmitError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the text to show for an error returned by the controller.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrLastStep) {
		return MsgLastStep
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
