package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure independently of the transport.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindUnauthorized
	KindInvalidCredentials
	KindForbidden
	KindNotFound
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error is the error type returned by services.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Err is the underlying cause. Only set for store failures and never sent to clients.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	// ErrEmailTaken is returned when signing up with a registered email.
	ErrEmailTaken = &Error{Kind: KindConflict, Code: "USER_ALREADY_EXISTS", Message: "user already exists"}
	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Code: "INVALID_CREDENTIALS", Message: "invalid credentials"}
	// ErrUnauthorized is returned when the token is missing or cannot be resolved.
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Code: "UNAUTHORIZED", Message: "authentication required"}
	// ErrUserNotFound is returned when a user lookup fails.
	ErrUserNotFound = &Error{Kind: KindNotFound, Code: "USER_NOT_FOUND", Message: "user not found"}
	// ErrIdeaNotFound is returned when an idea does not exist.
	ErrIdeaNotFound = &Error{Kind: KindNotFound, Code: "IDEA_NOT_FOUND", Message: "idea not found"}
	// ErrRoleNotFound is returned when a role does not exist on the idea.
	ErrRoleNotFound = &Error{Kind: KindNotFound, Code: "ROLE_NOT_FOUND", Message: "role not found"}
	// ErrNotIdeaOwner is returned when a non-owner tries to mutate an idea or its roles.
	ErrNotIdeaOwner = &Error{Kind: KindForbidden, Code: "NOT_IDEA_OWNER", Message: "only the idea owner can do this"}
	// ErrIdeaNotVisible is returned when a private idea is read by a non-member.
	ErrIdeaNotVisible = &Error{Kind: KindForbidden, Code: "IDEA_NOT_VISIBLE", Message: "you do not have access to this idea"}
	// ErrOwnerRoleRemoval is returned when deleting an IDEA_OWNER role.
	ErrOwnerRoleRemoval = &Error{Kind: KindConflict, Code: "OWNER_ROLE_REQUIRED", Message: "the idea owner role cannot be removed"}
)

// Validation builds a validation error for malformed input.
func Validation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// Store wraps a persistence failure. The cause is kept for logging only.
func Store(op string, err error) *Error {
	return &Error{Kind: KindStore, Code: "STORE_ERROR", Message: op, Err: err}
}

// KindOf reports the kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Store failures and unknown errors never leak their cause.
func MapErrorToHTTP(err error) *HTTPError {
	// duplicate email is answered with 400, the contract the web client relies on
	if stderrors.Is(err, ErrEmailTaken) {
		return NewHTTPError(http.StatusBadRequest, ErrEmailTaken.Message, ErrEmailTaken.Code)
	}

	var e *Error
	if !stderrors.As(err, &e) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}

	switch e.Kind {
	case KindValidation:
		return NewHTTPError(http.StatusBadRequest, e.Message, e.Code)
	case KindConflict:
		return NewHTTPError(http.StatusConflict, e.Message, e.Code)
	case KindUnauthorized, KindInvalidCredentials:
		return NewHTTPError(http.StatusUnauthorized, e.Message, e.Code)
	case KindForbidden:
		return NewHTTPError(http.StatusForbidden, e.Message, e.Code)
	case KindNotFound:
		return NewHTTPError(http.StatusNotFound, e.Message, e.Code)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
