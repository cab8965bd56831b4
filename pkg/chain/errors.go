package chain

import (
	"errors"
	"strings"
)

// ErrReceiptTimeout reports that the provider gave up waiting for a
// transaction to be mined. The transaction may still land later; only the
// local wait is abandoned.
var ErrReceiptTimeout = errors.New("timed out waiting for transaction receipt")

// nonceConflictMarkers are the provider error fragments recognized as
// transaction-ordering collisions. Matching is case-insensitive.
var nonceConflictMarkers = []string{
	"nonce too low",
	"nonce too high",
	"invalid nonce",
	"replacement transaction underpriced",
	"already known",
}

// IsNonceConflict reports whether the error looks like a nonce collision
// between concurrent submissions from the same account.
func IsNonceConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range nonceConflictMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsReceiptTimeout reports whether the error is a provider receipt-wait timeout.
func IsReceiptTimeout(err error) bool {
	return errors.Is(err, ErrReceiptTimeout)
}
