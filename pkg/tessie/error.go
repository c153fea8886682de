package tessie

import (
	"errors"
	"fmt"
	"net/http"
)

// Error exposes methods useful for categorizing errors.
type Error interface {
	error

	// MayHaveSucceeded returns true if the request might have been executed upstream even though
	// the client did not receive a successful response. This only matters for commands.
	MayHaveSucceeded() bool

	// Temporary returns true if the Error might be the result of a transient condition.
	Temporary() bool
}

var (
	// ErrAuthentication indicates the API rejected the token (HTTP 401 or 403). Never retried.
	ErrAuthentication = NewError("authentication failed; check TESSIE_TOKEN", false, false)
	// ErrRateLimited indicates the API kept returning HTTP 429 after all retries.
	ErrRateLimited = NewError("rate limit exceeded; try again later", false, true)
	// ErrTimeout indicates every attempt timed out.
	ErrTimeout = NewError("request timed out", true, true)
	// ErrMissingToken is returned by New when no token is provided.
	ErrMissingToken = errors.New("tessie API token required; set TESSIE_TOKEN")
	// ErrResponseTooLarge indicates the response body exceeded MaxResponseLength.
	ErrResponseTooLarge = NewError("response exceeds maximum length", true, false)
)

type RequestError struct {
	Err               error
	PossibleSuccess   bool
	PossibleTemporary bool
}

func NewError(message string, mayHaveSucceeded bool, temporary bool) error {
	return &RequestError{Err: errors.New(message), PossibleSuccess: mayHaveSucceeded, PossibleTemporary: temporary}
}

func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func (e *RequestError) MayHaveSucceeded() bool {
	return e.PossibleSuccess
}

func (e *RequestError) Temporary() bool {
	return e.PossibleTemporary
}

// UpstreamError is any non-2xx response other than 401, 403 and 429. It is never retried.
type UpstreamError struct {
	StatusCode int
	Body       string
}

const maxErrorBodyInMessage = 256

func (e *UpstreamError) Error() string {
	body := e.Body
	if len(body) > maxErrorBodyInMessage {
		body = body[:maxErrorBodyInMessage] + "..."
	}
	if body == "" {
		body = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("tessie API error (HTTP %d): %s", e.StatusCode, body)
}

func (e *UpstreamError) MayHaveSucceeded() bool {
	if e.StatusCode >= 400 && e.StatusCode < 500 {
		return false
	}
	return e.StatusCode != http.StatusServiceUnavailable
}

func (e *UpstreamError) Temporary() bool {
	return e.StatusCode == http.StatusServiceUnavailable ||
		e.StatusCode == http.StatusBadGateway ||
		e.StatusCode == http.StatusGatewayTimeout
}

// VehicleNotFoundError indicates the account has no vehicle with the configured VIN.
type VehicleNotFoundError struct {
	VIN string
}

func (e *VehicleNotFoundError) Error() string {
	return fmt.Sprintf("vehicle with VIN '%s' not found; verify the VIN is correct", SanitizeVIN(e.VIN))
}

func (e *VehicleNotFoundError) MayHaveSucceeded() bool {
	return false
}

func (e *VehicleNotFoundError) Temporary() bool {
	return false
}

// TransportError wraps a failure below HTTP (DNS, TLS, connection reset) other than a timeout.
// It is not retried.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %s", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) MayHaveSucceeded() bool {
	return true
}

func (e *TransportError) Temporary() bool {
	return true
}

// MayHaveSucceeded returns true if err indicates the request may have been executed but the client
// did not receive a confirmation.
func MayHaveSucceeded(err error) bool {
	var e Error
	if errors.As(err, &e) && e.MayHaveSucceeded() {
		return true
	}
	return false
}

// Temporary returns true if err indicates the request failed due to possibly transient conditions
// that do not require user action to resolve.
func Temporary(err error) bool {
	var e Error
	if errors.As(err, &e) && e.Temporary() {
		return true
	}
	return false
}

// IsVehicleNotFound reports whether err resolves to a VehicleNotFoundError.
func IsVehicleNotFound(err error) bool {
	var nf *VehicleNotFoundError
	return errors.As(err, &nf)
}
