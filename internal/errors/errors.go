// Package errors defines the domain error taxonomy for the
// money-movement core. Every public operation on the core returns
// either a success value or one of these errors; nothing in the core
// panics or logs on a business-rule failure.
package errors

// DomainError is a business-rule failure with a stable machine code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// Is lets errors.Is match two domain errors by code, so wrapped
// errors still compare equal to the package-level sentinels.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}
