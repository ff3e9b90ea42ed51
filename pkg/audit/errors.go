package audit

import (
	"errors"
	"fmt"
	"strings"

	"site-audit-be/pkg/survey"
)

var (
	ErrSchemaUnavailable = errors.New("schema unavailable")
	ErrValidationFailed  = errors.New("validation failed")
	ErrPersistenceFailed = errors.New("persistence failed")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnknownPhase      = errors.New("unknown phase")
	ErrUnknownProject    = errors.New("unknown project")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrInvalidAnswer     = errors.New("invalid answer")
	ErrAlreadySubmitted  = errors.New("audit already submitted")
	ErrSessionNotFound   = errors.New("session not found")
)

// TransitionError is returned when an action is not allowed in the
// session's current state. The session is left untouched.
type TransitionError struct {
	Action string
	From   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %q is not allowed in state %s", ErrInvalidTransition, e.Action, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ValidationError carries the ordered problem list of a failed section.
type ValidationError struct {
	Section  string
	Problems []survey.Problem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Message)
	}
	return fmt.Sprintf("%s for section %q: %s", ErrValidationFailed, e.Section, strings.Join(msgs, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
