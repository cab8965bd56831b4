package chain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cyphera/jobdispatch/pkg/chain"
)

func TestIsNonceConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil, want: false},
		{name: "nonce too low", err: errors.New("nonce too low"), want: true},
		{name: "nonce too high", err: errors.New("nonce too high: account 5, tx 3"), want: true},
		{name: "invalid nonce", err: errors.New("invalid nonce"), want: true},
		{name: "replacement underpriced", err: errors.New("replacement transaction underpriced"), want: true},
		{name: "already known", err: errors.New("already known"), want: true},
		{name: "mixed case provider text", err: errors.New("RPC error: Nonce Too Low"), want: true},
		{name: "wrapped conflict", err: fmt.Errorf("submit failed: %w", errors.New("nonce too low")), want: true},
		{name: "unrelated error", err: errors.New("insufficient funds for gas"), want: false},
		{name: "execution reverted", err: errors.New("execution reverted"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chain.IsNonceConflict(tt.err))
		})
	}
}

func TestIsReceiptTimeout(t *testing.T) {
	assert.True(t, chain.IsReceiptTimeout(chain.ErrReceiptTimeout))
	assert.True(t, chain.IsReceiptTimeout(fmt.Errorf("dispatch createJob: %w", chain.ErrReceiptTimeout)))
	assert.False(t, chain.IsReceiptTimeout(errors.New("timed out somewhere else")))
	assert.False(t, chain.IsReceiptTimeout(nil))
}
