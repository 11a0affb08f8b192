package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the record store.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("record store: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("record store: status %d", e.Status)
}

// IsNotFound reports whether err is a 404 from the record store.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsForbidden reports whether err is a 403 from the record store.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsTerminalLookup reports whether err marks a lookup that will never
// succeed (missing or inaccessible entity). Callers cache a placeholder for
// these instead of retrying.
func IsTerminalLookup(err error) bool {
	return IsNotFound(err) || IsForbidden(err)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
