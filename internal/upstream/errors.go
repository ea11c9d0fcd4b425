// Package upstream implements the HTTP client for the external booking
// provider. This file defines the typed error surface and the classification
// helpers used by the retry policy and the HTTP boundary.
package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the booking provider. The status code
// drives both retry classification and how the failure surfaces at our own
// HTTP boundary.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("upstream %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("upstream %d: %s", e.StatusCode, e.Message)
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsAuth reports whether err is an upstream authentication/authorization
// failure. These surface as 401 to our callers and are never retried;
// retrying cannot fix bad credentials.
func IsAuth(err error) bool {
	ae, ok := AsAPIError(err)
	return ok && (ae.StatusCode == http.StatusUnauthorized || ae.StatusCode == http.StatusForbidden)
}

// IsPermanent classifies errors that retrying cannot fix: auth failures and
// client-side rejections. Timeouts (408), provider rate limiting (429), 5xx
// and plain network errors are all transient.
func IsPermanent(err error) bool {
	ae, ok := AsAPIError(err)
	if !ok {
		return false // network-class error: transient
	}
	switch ae.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return ae.StatusCode >= 400 && ae.StatusCode < 500
}
