package client

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired is returned after an authenticated call found the
	// session gone. The OnUnauthorized hook has already run.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoDashboard is returned by DashboardData for roles without one.
	ErrNoDashboard = errors.New("role has no dashboard")
)

// APIError is a non-2xx response other than an authenticated 401.
type APIError struct {
	Op         string
	StatusCode int
	Message    string // server-provided message, verbatim
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s failed: server returned %d", e.Op, e.StatusCode)
}

// AsAPIError checks if an error is an APIError and returns it.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// ServerMessage returns the server's message carried by err, if any.
func ServerMessage(err error) (string, bool) {
	ae, ok := AsAPIError(err)
	if !ok || ae.Message == "" {
		return "", false
	}
	return ae.Message, true
}
