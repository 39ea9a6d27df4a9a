package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/laika-mvc/laika/internal"
)

// ErrCSRFTokenMismatch is wrapped by the HTTPError returned when a state
// changing request carries a missing or wrong CSRF token.
var ErrCSRFTokenMismatch = errors.New("csrf token mismatch")

// PanicError represents a recovered panic.
type PanicError struct {
	Value any    // The panic value
	Stack []byte // Stack trace (nil if disabled)
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// TimeoutError represents a request timeout.
type TimeoutError struct {
	Duration time.Duration // The timeout that was exceeded
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timeout after %s", e.Duration)
}

// IsPanicError returns true if the error is a PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// IsTimeoutError returns true if the error is a TimeoutError.
func IsTimeoutError(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// AsPanicError extracts the PanicError from an error if present.
func AsPanicError(err error) (*PanicError, bool) {
	var pe *PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// AsTimeoutError extracts the TimeoutError from an error if present.
func AsTimeoutError(err error) (*TimeoutError, bool) {
	var te *TimeoutError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// ErrorHandler maps the errors produced by this package to HTTP errors:
// a PanicError becomes 500 and a TimeoutError becomes 504. Other errors
// are returned unchanged for the dispatcher's default handling.
//
//	laika.WithErrorHandler(middlewares.ErrorHandler)
func ErrorHandler(c internal.Context, err error) error {
	requestID := GetRequestID(c)

	if _, ok := AsTimeoutError(err); ok {
		return internal.NewHTTPError(http.StatusGatewayTimeout, http.StatusText(http.StatusGatewayTimeout),
			internal.WithRequestID(requestID),
			internal.WithError(err),
		)
	}
	if IsPanicError(err) {
		return internal.ErrInternal(http.StatusText(http.StatusInternalServerError),
			internal.WithRequestID(requestID),
			internal.WithError(err),
		)
	}
	return err
}
