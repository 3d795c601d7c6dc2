// Package apperror defines the error kinds shared by the checkout flow and
// the backend client.  Handlers translate each kind into an HTTP status:
// validation → 400, auth → 401, conflict → 409, transport and upstream → 502.
package apperror

import (
	"errors"
	"fmt"
)

// ValidationError is a local rule violation detected before anything is sent
// to the backend.  Code is a stable machine readable identifier.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

// Is matches any ValidationError carrying the same code, so wrapped or
// re-created errors compare equal to the sentinels below.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

// Validation builds a ValidationError.
func Validation(code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation sentinels.
var (
	ErrEmptySeatSelection  = &ValidationError{Code: "EmptySeatSelection", Message: "select at least one seat"}
	ErrInvalidShowtime     = &ValidationError{Code: "InvalidShowtime", Message: "showtime and movie must be positive identifiers"}
	ErrVoucherInactive     = &ValidationError{Code: "VoucherInactive", Message: "voucher is not active"}
	ErrVoucherExpired      = &ValidationError{Code: "VoucherExpired", Message: "voucher has expired"}
	ErrVoucherMalformed    = &ValidationError{Code: "VoucherMalformed", Message: "voucher carries no discount"}
	ErrVoucherUnknown      = &ValidationError{Code: "VoucherUnknown", Message: "voucher is not offered for this booking"}
	ErrVoucherDiscountMode = &ValidationError{Code: "VoucherDiscountMode", Message: "set exactly one of discountAmount or discountPercentage"}
	ErrVoucherExpiryPast   = &ValidationError{Code: "VoucherExpiryNotFuture", Message: "expiryDate must be in the future"}
	ErrTariffTypeImmutable = &ValidationError{Code: "TariffTypeImmutable", Message: "seat type of a tariff cannot be changed"}
	ErrInvalidSeatRange    = &ValidationError{Code: "InvalidSeatRange", Message: "fromSeat must be lower than toSeat"}
	ErrInvalidRowLabel     = &ValidationError{Code: "InvalidRowLabel", Message: "row must be a single letter A-Z"}
)

// ConflictError reports a state clash on the backend (HTTP 409), e.g. a seat
// that was booked by someone else between selection and submission.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return "conflict: " + e.Message }

// TransportError wraps a network failure or an unreadable response body.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %s: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// AuthError reports a missing or rejected credential (HTTP 401).  The caller
// must authenticate again.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return "unauthorized: " + e.Message }

// UpstreamError is any other non-success answer from the backend.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConflict reports whether err is, or wraps, a ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsTransport reports whether err is, or wraps, a TransportError.
func IsTransport(err error) bool {
	var t *TransportError
	return errors.As(err, &t)
}

// IsAuth reports whether err is, or wraps, an AuthError.
func IsAuth(err error) bool {
	var a *AuthError
	return errors.As(err, &a)
}

// IsUpstream reports whether err is, or wraps, an UpstreamError.
func IsUpstream(err error) bool {
	var u *UpstreamError
	return errors.As(err, &u)
}

// MessageOf returns the message a backend error carried, without the kind
// prefix added by Error.  Other errors are returned as err.Error().
func MessageOf(err error) string {
	var (
		c *ConflictError
		u *UpstreamError
		a *AuthError
		v *ValidationError
	)
	switch {
	case errors.As(err, &c):
		return c.Message
	case errors.As(err, &u):
		return u.Message
	case errors.As(err, &a):
		return a.Message
	case errors.As(err, &v):
		return v.Message
	}
	return err.Error()
}
