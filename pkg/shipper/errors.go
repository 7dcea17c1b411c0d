package shipper

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is the connector's error type. Every failure surfaced to a
// caller carries a stable machine-readable code, a human-readable
// message, and an HTTP-equivalent status.
type Error struct {
	Code    string
	Message string
	Status  int
	Detail  any
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches two Errors by code, so errors.Is(err, ErrConflict) works
// on derived errors carrying extra detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of the error with a specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	clone := *e
	clone.Message = fmt.Sprintf(format, args...)
	return &clone
}

// WithDetail returns a copy of the error carrying structured detail.
func (e *Error) WithDetail(detail any) *Error {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a copy of the error wrapping an underlying cause.
func (e *Error) WithCause(err error) *Error {
	clone := *e
	clone.Cause = err
	return &clone
}

// Error taxonomy. Derive request-specific errors with WithMessage /
// WithDetail / WithCause; comparisons via errors.Is remain stable.
var (
	// ErrValidation indicates a malformed request. It is raised
	// locally and never reaches the carrier.
	ErrValidation = &Error{Code: "invalid.request", Status: http.StatusBadRequest}

	// ErrInvalidAddress indicates an address that failed carrier
	// validation (no match or ambiguous match).
	ErrInvalidAddress = &Error{Code: "invalid.address", Status: http.StatusUnprocessableEntity}

	// ErrUnsupportedUnit indicates a dimension or weight unit outside
	// the enumerated set.
	ErrUnsupportedUnit = &Error{Code: "unsupported.unit", Status: http.StatusBadRequest}

	// ErrUnsupportedCountry is a business-rule gate raised before any
	// carrier call for countries the carrier cannot serve.
	ErrUnsupportedCountry = &Error{Code: "unsupported.country", Status: http.StatusNotImplemented}

	// ErrNotFound indicates an unknown rate token or channel.
	ErrNotFound = &Error{Code: "not.found", Status: http.StatusNotFound}

	// ErrPreconditionFailed indicates a shopping cart mismatch between
	// the request and the persisted quote.
	ErrPreconditionFailed = &Error{Code: "precondition.failed", Status: http.StatusPreconditionFailed}

	// ErrConflict indicates a rate token that has already been
	// consumed by a shipment.
	ErrConflict = &Error{Code: "already.shipped", Status: http.StatusConflict}

	// ErrCarrierClient indicates a carrier rejection attributable to
	// the caller.
	ErrCarrierClient = &Error{Code: "carrier.rejected.request", Status: http.StatusBadRequest}

	// ErrCarrierService indicates a carrier-side failure, including
	// timeouts.
	ErrCarrierService = &Error{Code: "carrier.unavailable", Status: http.StatusBadGateway}

	// ErrMalformedCarrierResponse indicates an unexpected or
	// unsupported response shape from the carrier.
	ErrMalformedCarrierResponse = &Error{Code: "carrier.response.malformed", Status: http.StatusBadGateway}

	// ErrPersistence indicates a storage failure. When it follows a
	// confirmed carrier shipment it is fatal: retrying would risk
	// double-booking with the carrier.
	ErrPersistence = &Error{Code: "persistence.failed", Status: http.StatusInternalServerError}
)

// HTTPStatus returns the HTTP-equivalent status for an error, falling
// back to 500 for errors outside the taxonomy.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

// ErrorCode returns the machine-readable code for an error, falling
// back to "internal.error".
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal.error"
}

// ErrorDetail returns the structured detail attached to an error, if
// any.
func ErrorDetail(err error) any {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return nil
}
