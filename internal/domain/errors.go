// Package domain defines core types, interfaces, and errors for the catalog console.
package domain

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// InvalidPrivilegeError indicates a privilege outside the allowed vocabulary
// for the target securable kind. It is raised at grant construction time,
// before any network call is made.
type InvalidPrivilegeError struct {
	Securable SecurableKind
	Privilege Privilege
}

func (e *InvalidPrivilegeError) Error() string {
	return fmt.Sprintf("privilege %q is not valid for securable kind %q", e.Privilege, e.Securable)
}

// MissingEntityNameError indicates a table/view/policy grant was built
// without the entity name the kind requires.
type MissingEntityNameError struct {
	Securable SecurableKind
}

func (e *MissingEntityNameError) Error() string {
	return fmt.Sprintf("securable kind %q requires an entity name", e.Securable)
}

// GrantFailure records one grant that could not be revoked and why.
type GrantFailure struct {
	Grant Grant
	Err   error
}

// PartialRevokeError indicates a cascade revoke removed some but not all of
// its target grants. Revoked and Failed together cover every grant the
// cascade attempted.
type PartialRevokeError struct {
	Revoked []Grant
	Failed  []GrantFailure
}

func (e *PartialRevokeError) Error() string {
	return fmt.Sprintf("cascade revoke partially failed: %d revoked, %d failed", len(e.Revoked), len(e.Failed))
}

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}
