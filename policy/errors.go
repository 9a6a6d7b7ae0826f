package policy

import (
	"fmt"
	"strings"
)

// Error kinds, carried on responses so clients can branch without parsing
// messages.
const (
	KindValidation        = "validation_error"
	KindNotFound          = "not_found"
	KindForbidden         = "forbidden"
	KindInvalidTransition = "invalid_state_transition"
	KindDependency        = "dependency_failure"
)

// ValidationError lists the missing or malformed payload fields. Detected
// before any mutation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid payload: " + strings.Join(e.Fields, ", ")
}

// ForbiddenError deliberately carries no detail about which rule failed.
type ForbiddenError struct{}

func (e *ForbiddenError) Error() string {
	return "access denied"
}

// InvalidTransitionError reports the current status against the requested
// action.
type InvalidTransitionError struct {
	Entity string
	Status string
	Action string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot %s from status %q", e.Entity, e.Action, e.Status)
}

// DependencyError wraps a failure from an external collaborator.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }
