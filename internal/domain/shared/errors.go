package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound      = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrForbidden     = NewDomainError("FORBIDDEN", "Operation requires a privileged actor")
	ErrInvalidState  = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrHasPayments   = NewDomainError("HAS_PAYMENTS", "Operation not allowed on a credit with payment history")
)

// conflictCodes are the codes that surface as a lifecycle conflict at the boundary.
var conflictCodes = map[string]bool{
	"INVALID_STATE":      true,
	"HAS_PAYMENTS":       true,
	"CYCLE_CAP_EXCEEDED": true,
	"ALREADY_EXISTS":     true,
}

// IsConflict reports whether err is a lifecycle-invariant violation.
func IsConflict(err error) bool {
	if de, ok := err.(*DomainError); ok {
		return conflictCodes[de.Code]
	}
	return false
}

// IsNotFound reports whether err signals a missing resource.
func IsNotFound(err error) bool {
	if de, ok := err.(*DomainError); ok {
		return de.Code == "NOT_FOUND"
	}
	return false
}

// IsForbidden reports whether err is a privilege rejection.
func IsForbidden(err error) bool {
	if de, ok := err.(*DomainError); ok {
		return de.Code == "FORBIDDEN"
	}
	return false
}
