package custodial

import (
	"fmt"
	"strings"
)

// AuthorizationError reports that the custodial service rejected the
// authorization signature. The hints enumerate the usual causes so the
// operator can check them in order.
type AuthorizationError struct {
	StatusCode int
	Message    string
	Hints      []string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("custodial service rejected authorization (status %d): %s (check: %s)",
		e.StatusCode, e.Message, strings.Join(e.Hints, "; "))
}

func newAuthorizationError(statusCode int, message string) *AuthorizationError {
	return &AuthorizationError{
		StatusCode: statusCode,
		Message:    message,
		Hints: []string{
			"the authorization key is registered with the service",
			"the key is linked to this wallet",
			"the signing key matches the registered public key",
		},
	}
}
