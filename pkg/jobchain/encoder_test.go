package jobchain_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/jobdispatch/pkg/jobchain"
)

func TestJobContractEncoder(t *testing.T) {
	encoder := jobchain.NewJobContractEncoder()

	data, err := encoder.EncodeCall("createJob", providerAddr, evaluatorAddr, big.NewInt(1700000000))
	require.NoError(t, err)
	// 4-byte selector plus three 32-byte words.
	assert.Len(t, data, 4+3*32)

	again, err := encoder.EncodeCall("createJob", providerAddr, evaluatorAddr, big.NewInt(1700000000))
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestJobContractEncoder_DynamicContent(t *testing.T) {
	encoder := jobchain.NewJobContractEncoder()

	data, err := encoder.EncodeCall("createMemo",
		big.NewInt(1), "hello", uint8(jobchain.MemoMessage), false, uint8(jobchain.PhaseNegotiation))
	require.NoError(t, err)
	assert.Greater(t, len(data), 4+5*32)
}

func TestJobContractEncoder_UnknownMethod(t *testing.T) {
	encoder := jobchain.NewJobContractEncoder()

	_, err := encoder.EncodeCall("selfDestruct")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selfDestruct")
}

func TestJobContractEncoder_WrongArgumentType(t *testing.T) {
	encoder := jobchain.NewJobContractEncoder()

	_, err := encoder.EncodeCall("setBudget", "not-a-big-int", big.NewInt(1))
	assert.Error(t, err)
}

func TestTokenEncoder(t *testing.T) {
	encoder := jobchain.NewTokenEncoder()

	data, err := encoder.EncodeCall("approve", contractAddr, big.NewInt(1_000_000))
	require.NoError(t, err)
	assert.Len(t, data, 4+2*32)
}

func TestNewABIEncoder_InvalidJSON(t *testing.T) {
	_, err := jobchain.NewABIEncoder(`{"not":"an-abi-array"`)
	assert.Error(t, err)
}
