package jobchain_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/jobdispatch/pkg/dispatch"
	"github.com/cyphera/jobdispatch/pkg/jobchain"
)

var (
	contractAddr  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	tokenAddr     = common.HexToAddress("0x2222222222222222222222222222222222222222")
	providerAddr  = common.HexToAddress("0x3333333333333333333333333333333333333333")
	evaluatorAddr = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

// fakeDispatcher records dispatched requests and returns scripted ids.
type fakeDispatcher struct {
	requests []*dispatch.Request
	batches  [][]*dispatch.Request
	jobID    *big.Int
	memoID   *big.Int
	err      error
}

func (f *fakeDispatcher) DispatchWithReceipt(ctx context.Context, req *dispatch.Request) (*dispatch.Result, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	hash := common.BytesToHash([]byte(req.Op))
	return &dispatch.Result{
		TxHash:  hash,
		Receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash},
		Path:    dispatch.PathDirect,
	}, nil
}

func (f *fakeDispatcher) DispatchBatch(ctx context.Context, reqs []*dispatch.Request) ([]common.Hash, error) {
	f.batches = append(f.batches, reqs)
	if f.err != nil {
		return nil, f.err
	}
	hashes := make([]common.Hash, 0, len(reqs))
	for _, req := range reqs {
		hashes = append(hashes, common.BytesToHash([]byte(req.Op)))
	}
	return hashes, nil
}

func (f *fakeDispatcher) JobIDFromReceipt(receipt *types.Receipt) (*big.Int, error) {
	if f.jobID == nil {
		return nil, errors.New("no job id scripted")
	}
	return f.jobID, nil
}

func (f *fakeDispatcher) MemoIDFromReceipt(receipt *types.Receipt) (*big.Int, error) {
	if f.memoID == nil {
		return nil, errors.New("no memo id scripted")
	}
	return f.memoID, nil
}

func TestClient_CreateJob(t *testing.T) {
	dispatcher := &fakeDispatcher{jobID: big.NewInt(42)}
	client := jobchain.NewClient(dispatcher, contractAddr, tokenAddr)

	result, err := client.CreateJob(context.Background(), providerAddr, evaluatorAddr, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(42), result.JobID.Int64())

	require.Len(t, dispatcher.requests, 1)
	req := dispatcher.requests[0]
	assert.Equal(t, "createJob", req.Op)
	assert.Equal(t, contractAddr, req.To)
	assert.NotEmpty(t, req.Data)

	phase, ok := client.LastKnownPhase(big.NewInt(42))
	require.True(t, ok)
	assert.Equal(t, jobchain.PhaseRequest, phase)
}

func TestClient_CreateMemoAdvancesCachedPhase(t *testing.T) {
	dispatcher := &fakeDispatcher{jobID: big.NewInt(7), memoID: big.NewInt(100)}
	client := jobchain.NewClient(dispatcher, contractAddr, tokenAddr)

	memo, err := client.CreateMemo(context.Background(), big.NewInt(7), "terms look good", jobchain.MemoMessage, false, jobchain.PhaseNegotiation)
	require.NoError(t, err)
	assert.Equal(t, int64(100), memo.MemoID.Int64())

	phase, ok := client.LastKnownPhase(big.NewInt(7))
	require.True(t, ok)
	assert.Equal(t, jobchain.PhaseNegotiation, phase)
}

func TestClient_CreatePayableMemoRequiresAmount(t *testing.T) {
	dispatcher := &fakeDispatcher{memoID: big.NewInt(1)}
	client := jobchain.NewClient(dispatcher, contractAddr, tokenAddr)

	_, err := client.CreatePayableMemo(context.Background(), big.NewInt(1), "pay me", jobchain.MemoPayableRequest,
		jobchain.PhaseTransaction, nil, providerAddr, nil, jobchain.ImmediateFee)
	require.Error(t, err)
	assert.Empty(t, dispatcher.requests)
}

func TestClient_CreatePayableFeeMemoTargetsContract(t *testing.T) {
	dispatcher := &fakeDispatcher{memoID: big.NewInt(9)}
	client := jobchain.NewClient(dispatcher, contractAddr, tokenAddr)

	memo, err := client.CreatePayableFeeMemo(context.Background(), big.NewInt(3), big.NewInt(500), jobchain.PhaseTransaction)
	require.NoError(t, err)
	assert.Equal(t, int64(9), memo.MemoID.Int64())

	require.Len(t, dispatcher.requests, 1)
	assert.Equal(t, "createPayableMemo", dispatcher.requests[0].Op)
}

func TestClient_SignMemo(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	client := jobchain.NewClient(dispatcher, contractAddr, tokenAddr)

	hash, err := client.SignMemo(context.Background(), big.NewInt(100), true, "approved after review")
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, hash)

	require.Len(t, dispatcher.requests, 1)
	assert.Equal(t, "signMemo", dispatcher.requests[0].Op)
}

func TestClient_SetBudgetBatchesApproveThenSet(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	client := jobchain.NewClient(dispatcher, contractAddr, tokenAddr)

	hash, err := client.SetBudget(context.Background(), big.NewInt(5), big.NewInt(1_000_000))
	require.NoError(t, err)

	require.Len(t, dispatcher.batches, 1)
	batch := dispatcher.batches[0]
	require.Len(t, batch, 2)

	assert.Equal(t, "approveBudget", batch[0].Op)
	assert.Equal(t, tokenAddr, batch[0].To)
	assert.Equal(t, "setBudget", batch[1].Op)
	assert.Equal(t, contractAddr, batch[1].To)

	// The returned hash is the budget transaction, not the approval.
	assert.Equal(t, common.BytesToHash([]byte("setBudget")), hash)
}

func TestClient_SetBudgetPropagatesBatchFailure(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("batch aborted at request 1 (setBudget)")}
	client := jobchain.NewClient(dispatcher, contractAddr, tokenAddr)

	_, err := client.SetBudget(context.Background(), big.NewInt(5), big.NewInt(100))
	require.Error(t, err)
}

func TestClient_DispatchFailurePropagates(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("execution reverted")}
	client := jobchain.NewClient(dispatcher, contractAddr, tokenAddr)

	_, err := client.CreateJob(context.Background(), providerAddr, evaluatorAddr, time.Now().Add(time.Hour))
	require.Error(t, err)

	// A failed job creation must not poison the phase cache.
	_, ok := client.LastKnownPhase(big.NewInt(42))
	assert.False(t, ok)
}
