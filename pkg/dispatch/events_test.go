package dispatch_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cyphera/jobdispatch/internal/mocks"
	"github.com/cyphera/jobdispatch/pkg/dispatch"
	"github.com/cyphera/jobdispatch/pkg/fees"
)

func newEventRouter(t *testing.T) *dispatch.Router {
	t.Helper()
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	return dispatch.NewRouter(provider, &fakeAuthority{}, fees.NewEstimator(provider), testContract, fastQueue())
}

func word(n int64) []byte {
	return common.BigToHash(big.NewInt(n)).Bytes()
}

func TestJobIDFromReceipt(t *testing.T) {
	router := newEventRouter(t)

	receipt := &types.Receipt{
		TxHash: common.HexToHash("0x0001"),
		Logs: []*types.Log{
			// Noise from another contract comes first.
			{Address: common.HexToAddress("0x9999999999999999999999999999999999999999"), Data: word(1)},
			{Address: testContract, Data: word(42)},
		},
	}

	jobID, err := router.JobIDFromReceipt(receipt)
	require.NoError(t, err)
	assert.Equal(t, int64(42), jobID.Int64())
}

func TestJobIDFromReceipt_NoMatchingLog(t *testing.T) {
	router := newEventRouter(t)

	receipt := &types.Receipt{
		TxHash: common.HexToHash("0x0002"),
		Logs: []*types.Log{
			{Address: common.HexToAddress("0x9999999999999999999999999999999999999999"), Data: word(1)},
		},
	}

	_, err := router.JobIDFromReceipt(receipt)
	var notFound *dispatch.LogNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "JobCreated", notFound.Event)
	assert.Equal(t, testContract, notFound.Contract)
}

func TestJobIDFromReceipt_SkipsShortData(t *testing.T) {
	router := newEventRouter(t)

	receipt := &types.Receipt{
		TxHash: common.HexToHash("0x0003"),
		Logs: []*types.Log{
			{Address: testContract, Data: []byte{0x01, 0x02}},
			{Address: testContract, Data: word(7)},
		},
	}

	jobID, err := router.JobIDFromReceipt(receipt)
	require.NoError(t, err)
	assert.Equal(t, int64(7), jobID.Int64())
}

func TestMemoIDFromReceipt(t *testing.T) {
	router := newEventRouter(t)

	// MemoCreated(jobId indexed, memoId, memoType): data carries the two
	// non-indexed words.
	data := append(word(314), word(2)...)
	receipt := &types.Receipt{
		TxHash: common.HexToHash("0x0004"),
		Logs: []*types.Log{
			{
				Address: testContract,
				Topics:  []common.Hash{dispatch.MemoCreatedTopic(), common.BigToHash(big.NewInt(42))},
				Data:    data,
			},
		},
	}

	memoID, err := router.MemoIDFromReceipt(receipt)
	require.NoError(t, err)
	assert.Equal(t, int64(314), memoID.Int64())
}

func TestMemoIDFromReceipt_IgnoresOtherEvents(t *testing.T) {
	router := newEventRouter(t)

	receipt := &types.Receipt{
		TxHash: common.HexToHash("0x0005"),
		Logs: []*types.Log{
			// JobCreated-shaped log from the right contract but the wrong
			// event signature.
			{
				Address: testContract,
				Topics:  []common.Hash{common.HexToHash("0xdead")},
				Data:    word(1),
			},
		},
	}

	_, err := router.MemoIDFromReceipt(receipt)
	var notFound *dispatch.LogNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "MemoCreated", notFound.Event)
}
