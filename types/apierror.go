package types

import "net/http"

// Error codes surfaced in the response envelope.
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeMissingFields        = "MISSING_FIELDS"
	CodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	CodeAccountLocked        = "ACCOUNT_LOCKED"
	CodeAccountInactive      = "ACCOUNT_INACTIVE"
	CodeAuthorizationFailed  = "AUTHORIZATION_FAILED"
	CodeUsernameExists       = "USERNAME_EXISTS"
	CodeEmailExists          = "EMAIL_EXISTS"
	CodeDuplicateEntry       = "DUPLICATE_ENTRY"
	CodeNotFound             = "NOT_FOUND"
	CodeInternalError        = "INTERNAL_SERVER_ERROR"
)

// APIError carries a taxonomy code, a client-facing message, and the
// HTTP status it maps to. Services return it; handlers render it into
// the response envelope.
type APIError struct {
	Code    string
	Message string
	Status  int
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Message
}

// NewAPIError builds an APIError with an explicit status.
func NewAPIError(code, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, Status: status}
}

// ErrInvalidCredentials is the uniform failure for both an unknown
// username and a wrong password, so callers cannot enumerate accounts.
func ErrInvalidCredentials() *APIError {
	return NewAPIError(CodeAuthenticationFailed, "Invalid username or password", http.StatusUnauthorized)
}

// ErrAccountLocked reports an active lockout window.
func ErrAccountLocked() *APIError {
	return NewAPIError(CodeAccountLocked, "Account is locked. Please try again later.", http.StatusForbidden)
}

// ErrAccountInactive reports an administratively disabled account.
func ErrAccountInactive() *APIError {
	return NewAPIError(CodeAccountInactive, "Account is inactive", http.StatusForbidden)
}

// ErrInvalidToken reports a missing, malformed, expired, or wrong-type token.
func ErrInvalidToken(message string) *APIError {
	return NewAPIError(CodeAuthenticationFailed, message, http.StatusUnauthorized)
}

// ErrForbidden reports a role outside an endpoint's allow-set.
func ErrForbidden() *APIError {
	return NewAPIError(CodeAuthorizationFailed, "Insufficient permissions", http.StatusForbidden)
}

// ErrNotFound reports an absent record.
func ErrNotFound(message string) *APIError {
	return NewAPIError(CodeNotFound, message, http.StatusNotFound)
}

// ErrValidation reports a malformed or incomplete request body.
func ErrValidation(message string) *APIError {
	return NewAPIError(CodeValidationError, message, http.StatusBadRequest)
}

// ErrInternal reports a persistence or unexpected failure. Detail stays
// in the server log, never in the response.
func ErrInternal(message string) *APIError {
	return NewAPIError(CodeInternalError, message, http.StatusInternalServerError)
}
