package jobchain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/jobdispatch/pkg/jobchain"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantOK   bool
		wantType string
	}{
		{
			name:     "structured payload",
			content:  `{"type":"quote","data":{"price":"10","currency":"USDC"}}`,
			wantOK:   true,
			wantType: "quote",
		},
		{
			name:    "plain text memo",
			content: "let's negotiate the price",
			wantOK:  false,
		},
		{
			name:    "empty content",
			content: "",
			wantOK:  false,
		},
		{
			name:    "json without a type",
			content: `{"data":{"price":"10"}}`,
			wantOK:  false,
		},
		{
			name:    "malformed json",
			content: `{"type":"quote","data":`,
			wantOK:  false,
		},
		{
			name:     "leading whitespace",
			content:  "  \n\t" + `{"type":"receipt","data":{}}`,
			wantOK:   true,
			wantType: "receipt",
		},
		{
			name:    "json array",
			content: `[1,2,3]`,
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, ok := jobchain.ParsePayload(tt.content)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.NotNil(t, payload)
				assert.Equal(t, tt.wantType, payload.Type)
			}
		})
	}
}

func TestPayload_Decode(t *testing.T) {
	memo := &jobchain.Memo{Content: `{"type":"quote","data":{"price":"250","currency":"USDC"}}`}

	payload, ok := memo.StructuredPayload()
	require.True(t, ok)

	var quote struct {
		Price    string `json:"price"`
		Currency string `json:"currency"`
	}
	require.NoError(t, payload.Decode(&quote))
	assert.Equal(t, "250", quote.Price)
	assert.Equal(t, "USDC", quote.Currency)
}

func TestPhaseAndMemoTypeNames(t *testing.T) {
	assert.Equal(t, "REQUEST", jobchain.PhaseRequest.String())
	assert.Equal(t, "EXPIRED", jobchain.PhaseExpired.String())
	assert.Equal(t, "UNKNOWN", jobchain.Phase(99).String())

	assert.Equal(t, "MESSAGE", jobchain.MemoMessage.String())
	assert.Equal(t, "PAYABLE_FEE_REQUEST", jobchain.MemoPayableFeeRequest.String())
	assert.Equal(t, "UNKNOWN", jobchain.MemoType(99).String())
}
