package conversation

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input for one slot or menu. It is always
// recovered by re-prompting.
type ValidationError struct {
	Slot string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("conversation: invalid %s input", e.Slot)
}

// PreconditionError reports a booking attempt with a missing or invalid field.
type PreconditionError struct {
	Field string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("conversation: booking precondition failed: %s", e.Field)
}

// CollaboratorError wraps a failed or timed out call to an external service.
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("conversation: %s call failed: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// UnknownStateError reports a stored session whose phase cannot be handled.
type UnknownStateError struct {
	State string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("conversation: unknown session state %q", e.State)
}

// errorKind returns a low-cardinality label for metrics.
func errorKind(err error) string {
	var (
		validation   *ValidationError
		precondition *PreconditionError
		collaborator *CollaboratorError
		unknown      *UnknownStateError
	)
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &precondition):
		return "precondition"
	case errors.As(err, &collaborator):
		return "collaborator"
	case errors.As(err, &unknown):
		return "unknown_state"
	}
	return "internal"
}
