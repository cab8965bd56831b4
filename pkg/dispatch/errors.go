package dispatch

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// SubmissionError reports a rejected signing or broadcast attempt. On the
// sponsored path the router falls back to direct before surfacing one.
type SubmissionError struct {
	Op   string
	Path Path
	Err  error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("dispatch %s: submission failed on %s path: %v", e.Op, e.Path, e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// NonceConflictError reports a nonce collision that persisted through the
// single retry.
type NonceConflictError struct {
	Op   string
	Path Path
	Err  error
}

func (e *NonceConflictError) Error() string {
	return fmt.Sprintf("dispatch %s: nonce conflict on %s path persisted after retry: %v", e.Op, e.Path, e.Err)
}

func (e *NonceConflictError) Unwrap() error {
	return e.Err
}

// ReceiptFailureError reports a transaction that mined but reverted.
// Terminal: the broadcast cannot be withdrawn and is never auto-retried.
type ReceiptFailureError struct {
	Op      string
	Path    Path
	TxHash  common.Hash
	GasUsed uint64
}

func (e *ReceiptFailureError) Error() string {
	return fmt.Sprintf("dispatch %s: transaction %s reverted on %s path (gas used %d)",
		e.Op, e.TxHash.Hex(), e.Path, e.GasUsed)
}

// LogNotFoundError reports that the expected contract event is missing
// from a successful receipt, which signals an address or ABI mismatch.
type LogNotFoundError struct {
	Event    string
	Contract common.Address
	TxHash   common.Hash
	Err      error
}

func (e *LogNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no %s log from contract %s in receipt %s: %v",
			e.Event, e.Contract.Hex(), e.TxHash.Hex(), e.Err)
	}
	return fmt.Sprintf("no %s log from contract %s in receipt %s",
		e.Event, e.Contract.Hex(), e.TxHash.Hex())
}

func (e *LogNotFoundError) Unwrap() error {
	return e.Err
}
