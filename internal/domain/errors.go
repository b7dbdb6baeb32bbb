package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Predefined domain errors
var (
	// ErrNotFound resource does not exist
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists resource already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrInvalidInput invalid input
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict resource conflict
	ErrConflict = errors.New("resource conflict")
	// ErrUnauthenticated no credential is present for an authenticated call
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNoSelection the workspace, conversation or thread the action needs is not selected
	ErrNoSelection = errors.New("nothing selected")
	// ErrForbidden access denied
	ErrForbidden = errors.New("forbidden")
	// ErrInternal internal error
	ErrInternal = errors.New("internal error")
)

// DomainError carries a stable code, a user-facing message and the wrapped cause
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface (used for logs and internal propagation)
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the message safe to show to the user
func (e *DomainError) UserMessage() string {
	return e.Message
}

// Unwrap returns the wrapped error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resourceType, name string) error {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s '%s' not found", resourceType, name),
		Err:     ErrNotFound,
	}
}

// NewAlreadyExistsError creates an already exists error
func NewAlreadyExistsError(resourceType, name string) error {
	return &DomainError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s '%s' already exists", resourceType, name),
		Err:     ErrAlreadyExists,
	}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string) error {
	return &DomainError{
		Code:    "INVALID_INPUT",
		Message: message,
		Err:     ErrInvalidInput,
	}
}

// NewMissingError creates a not found error whose message is used verbatim,
// e.g. "Thread not found"
func NewMissingError(message string) error {
	return &DomainError{
		Code:    "NOT_FOUND",
		Message: message,
		Err:     ErrNotFound,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message string) error {
	return &DomainError{
		Code:    "CONFLICT",
		Message: message,
		Err:     ErrConflict,
	}
}

// NewUnauthenticatedError creates an error for an action attempted without a token
func NewUnauthenticatedError() error {
	return &DomainError{
		Code:    "UNAUTHENTICATED",
		Message: "not authenticated, please login first",
		Err:     ErrUnauthenticated,
	}
}

// NewUnauthorizedError creates an unauthenticated error with a custom message,
// e.g. for rejected credentials
func NewUnauthorizedError(message string) error {
	return &DomainError{
		Code:    "UNAUTHENTICATED",
		Message: message,
		Err:     ErrUnauthenticated,
	}
}

// NewNoSelectionError creates an error for an action whose target is not selected
func NewNoSelectionError(what string) error {
	return &DomainError{
		Code:    "NO_SELECTION",
		Message: fmt.Sprintf("no %s selected", what),
		Err:     ErrNoSelection,
	}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) error {
	return &DomainError{
		Code:    "FORBIDDEN",
		Message: message,
		Err:     ErrForbidden,
	}
}

// NewInternalError creates an internal error
func NewInternalError(err error) error {
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred", // do not expose internals
		Err:     fmt.Errorf("%w: %v", ErrInternal, err),
	}
}

// FieldError is one rejected request field; Loc is the path to it,
// e.g. ["body", "password"]
type FieldError struct {
	Loc []string
	Msg string
}

// ValidationError reports every rejected field of a request
type ValidationError struct {
	Fields []FieldError
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(f.Loc, "."), f.Msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap makes validation errors match ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Add records a rejected field
func (e *ValidationError) Add(msg string, loc ...string) {
	e.Fields = append(e.Fields, FieldError{Loc: loc, Msg: msg})
}

// OrNil returns e when a field was rejected and nil otherwise
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsNotFound reports whether err is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists reports whether err is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidInput reports whether err is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsUnauthenticated reports whether err is an unauthenticated error
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsNoSelection reports whether err is a missing selection error
func IsNoSelection(err error) bool {
	return errors.Is(err, ErrNoSelection)
}

// IsForbidden reports whether err is a forbidden error
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsInternalError reports whether err is an internal error
func IsInternalError(err error) bool {
	return errors.Is(err, ErrInternal)
}

// UserMessage extracts the user-facing message from err
func UserMessage(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.UserMessage()
	}
	return err.Error()
}
