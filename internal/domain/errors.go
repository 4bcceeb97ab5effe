package domain

import "errors"

// Sentinel errors shared across the gateway, workflows, and delivery so HTTP
// status codes can be mapped without string matching.
var (
	ErrNotFound             = errors.New("sweet not found")
	ErrUnauthorized         = errors.New("authentication required")
	ErrForbidden            = errors.New("operation not permitted for this role")
	ErrOutOfStock           = errors.New("purchase failed - item may be out of stock")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailTaken           = errors.New("email is already registered")
	ErrConfirmationRequired = errors.New("deletion requires explicit confirmation")
)

// ValidationError is a user-correctable input problem, raised locally before a
// request is issued or relayed from the server's rejection message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError builds a field-scoped validation failure.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
