package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNetwork wraps transport-level failures. The underlying error is kept
	// unchanged in the chain.
	ErrNetwork = errors.New("network failure")
	// ErrSessionExpired is returned after the gateway could not refresh the
	// access token and cleared the stored credentials.
	ErrSessionExpired = errors.New("session expired")

	// ErrRefreshAbandoned is returned when the context ended before a token
	// refresh finished. Stored credentials are left in place.
	ErrRefreshAbandoned = errors.New("token refresh abandoned")

	errNoRefreshToken = errors.New("no refresh token stored")
)

// Kind classifies an APIError.
type Kind int

const (
	// KindHTTP is any non-2xx status without special handling.
	KindHTTP Kind = iota
	// KindUnauthenticated is a 401 that survived the refresh-and-replay cycle.
	KindUnauthenticated
	// KindForbidden is a 403.
	KindForbidden
	// KindValidation is a 4xx carrying a message for the caller to display.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	default:
		return "http"
	}
}

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
	Body    []byte
	Kind    Kind
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, http.StatusText(e.Status))
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == status
}

func newAPIError(resp *Response) *APIError {
	msg := resp.errorMessage()
	kind := KindHTTP
	switch {
	case resp.Status == http.StatusUnauthorized:
		kind = KindUnauthenticated
	case resp.Status == http.StatusForbidden:
		kind = KindForbidden
	case resp.Status >= 400 && resp.Status < 500 && msg != "":
		kind = KindValidation
	}
	return &APIError{Status: resp.Status, Message: msg, Body: resp.Body, Kind: kind}
}
