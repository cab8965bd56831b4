package jobchain

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/cyphera/jobdispatch/internal/logger"
	"github.com/cyphera/jobdispatch/pkg/dispatch"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Dispatcher is the slice of the dispatch router this layer consumes.
type Dispatcher interface {
	DispatchWithReceipt(ctx context.Context, req *dispatch.Request) (*dispatch.Result, error)
	DispatchBatch(ctx context.Context, reqs []*dispatch.Request) ([]common.Hash, error)
	JobIDFromReceipt(receipt *types.Receipt) (*big.Int, error)
	MemoIDFromReceipt(receipt *types.Receipt) (*big.Int, error)
}

// Client exposes one operation per logical job/memo action.
type Client struct {
	dispatcher Dispatcher
	contract   common.Address
	token      common.Address
	encoder    Encoder
	token20    Encoder
	logger     *zap.Logger

	// Best-effort cache of each job's last-observed phase, to avoid
	// redundant reads when constructing batches. Never authoritative.
	phaseMu sync.Mutex
	phases  map[string]Phase
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEncoder replaces the job contract encoder.
func WithEncoder(encoder Encoder) ClientOption {
	return func(c *Client) {
		c.encoder = encoder
	}
}

// WithTokenEncoder replaces the payment token encoder.
func WithTokenEncoder(encoder Encoder) ClientOption {
	return func(c *Client) {
		c.token20 = encoder
	}
}

// NewClient creates a protocol client over the given dispatcher. contract
// and token are the job contract and payment token addresses for the
// selected network.
func NewClient(dispatcher Dispatcher, contract, token common.Address, options ...ClientOption) *Client {
	c := &Client{
		dispatcher: dispatcher,
		contract:   contract,
		token:      token,
		encoder:    NewJobContractEncoder(),
		token20:    NewTokenEncoder(),
		logger:     logger.Log,
		phases:     make(map[string]Phase),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// CreateJob creates a job between the caller (requester), provider and
// evaluator, recovering the assigned job id from the receipt.
func (c *Client) CreateJob(ctx context.Context, provider, evaluator common.Address, expiredAt time.Time) (*JobResult, error) {
	data, err := c.encoder.EncodeCall("createJob", provider, evaluator, big.NewInt(expiredAt.Unix()))
	if err != nil {
		return nil, err
	}

	result, err := c.dispatcher.DispatchWithReceipt(ctx, &dispatch.Request{
		Op:   "createJob",
		To:   c.contract,
		Data: data,
	})
	if err != nil {
		return nil, err
	}

	jobID, err := c.dispatcher.JobIDFromReceipt(result.Receipt)
	if err != nil {
		return nil, err
	}

	c.rememberPhase(jobID, PhaseRequest)
	c.logger.Info("job created",
		zap.String("job_id", jobID.String()),
		zap.String("tx_hash", result.TxHash.Hex()))

	return &JobResult{TxHash: result.TxHash, JobID: jobID}, nil
}

// CreateMemo attaches a memo to a job and recovers the assigned memo id.
func (c *Client) CreateMemo(ctx context.Context, jobID *big.Int, content string, memoType MemoType, isSecured bool, nextPhase Phase) (*MemoResult, error) {
	data, err := c.encoder.EncodeCall("createMemo", jobID, content, uint8(memoType), isSecured, uint8(nextPhase))
	if err != nil {
		return nil, err
	}

	result, err := c.dispatcher.DispatchWithReceipt(ctx, &dispatch.Request{
		Op:   "createMemo",
		To:   c.contract,
		Data: data,
	})
	if err != nil {
		return nil, err
	}

	memoID, err := c.dispatcher.MemoIDFromReceipt(result.Receipt)
	if err != nil {
		return nil, err
	}

	c.rememberPhase(jobID, nextPhase)
	return &MemoResult{TxHash: result.TxHash, MemoID: memoID}, nil
}

// CreatePayableMemo attaches a memo carrying escrowed payment terms.
func (c *Client) CreatePayableMemo(ctx context.Context, jobID *big.Int, content string, memoType MemoType, nextPhase Phase, amount *big.Int, receiver common.Address, feeAmount *big.Int, feeType FeeType) (*MemoResult, error) {
	if amount == nil {
		return nil, fmt.Errorf("payable memo requires an amount")
	}
	if feeAmount == nil {
		feeAmount = big.NewInt(0)
	}

	data, err := c.encoder.EncodeCall("createPayableMemo",
		jobID, content, uint8(memoType), uint8(nextPhase), amount, receiver, feeAmount, uint8(feeType))
	if err != nil {
		return nil, err
	}

	result, err := c.dispatcher.DispatchWithReceipt(ctx, &dispatch.Request{
		Op:   "createPayableMemo",
		To:   c.contract,
		Data: data,
	})
	if err != nil {
		return nil, err
	}

	memoID, err := c.dispatcher.MemoIDFromReceipt(result.Receipt)
	if err != nil {
		return nil, err
	}

	c.rememberPhase(jobID, nextPhase)
	return &MemoResult{TxHash: result.TxHash, MemoID: memoID}, nil
}

// CreatePayableFeeMemo attaches a fee-collection memo. The fee is paid to
// the contract itself.
func (c *Client) CreatePayableFeeMemo(ctx context.Context, jobID *big.Int, feeAmount *big.Int, nextPhase Phase) (*MemoResult, error) {
	return c.CreatePayableMemo(ctx, jobID, "", MemoPayableFee, nextPhase, feeAmount, c.contract, feeAmount, ImmediateFee)
}

// SignMemo approves or rejects a memo, advancing the job to the memo's
// declared next phase when the contract accepts the signature.
func (c *Client) SignMemo(ctx context.Context, memoID *big.Int, approved bool, reason string) (common.Hash, error) {
	data, err := c.encoder.EncodeCall("signMemo", memoID, approved, reason)
	if err != nil {
		return common.Hash{}, err
	}

	result, err := c.dispatcher.DispatchWithReceipt(ctx, &dispatch.Request{
		Op:   "signMemo",
		To:   c.contract,
		Data: data,
	})
	if err != nil {
		return common.Hash{}, err
	}
	return result.TxHash, nil
}

// SetBudget approves the payment token for the contract and records the
// job budget, as one sequential batch on the authority's lane.
func (c *Client) SetBudget(ctx context.Context, jobID, amount *big.Int) (common.Hash, error) {
	approveData, err := c.token20.EncodeCall("approve", c.contract, amount)
	if err != nil {
		return common.Hash{}, err
	}
	budgetData, err := c.encoder.EncodeCall("setBudget", jobID, amount)
	if err != nil {
		return common.Hash{}, err
	}

	hashes, err := c.dispatcher.DispatchBatch(ctx, []*dispatch.Request{
		{Op: "approveBudget", To: c.token, Data: approveData},
		{Op: "setBudget", To: c.contract, Data: budgetData},
	})
	if err != nil {
		return common.Hash{}, err
	}
	return hashes[len(hashes)-1], nil
}

// LastKnownPhase returns the cached last-observed phase for a job.
func (c *Client) LastKnownPhase(jobID *big.Int) (Phase, bool) {
	c.phaseMu.Lock()
	defer c.phaseMu.Unlock()
	phase, ok := c.phases[jobID.String()]
	return phase, ok
}

func (c *Client) rememberPhase(jobID *big.Int, phase Phase) {
	c.phaseMu.Lock()
	c.phases[jobID.String()] = phase
	c.phaseMu.Unlock()
}
