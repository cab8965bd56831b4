// Package dispatch turns a logical contract call into a confirmed
// on-chain transaction: path selection between the gas-sponsored and
// direct-funded routes, fee estimation, serialized submission, receipt
// wait, and the two documented recoveries (sponsorship fallback and a
// single nonce-conflict retry).
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/cyphera/jobdispatch/internal/logger"
	"github.com/cyphera/jobdispatch/pkg/chain"
	"github.com/cyphera/jobdispatch/pkg/fees"
	"github.com/cyphera/jobdispatch/pkg/lane"
	"github.com/cyphera/jobdispatch/pkg/signer"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Path identifies which route carried a submission.
type Path string

const (
	PathSponsored Path = "sponsored"
	PathDirect    Path = "direct"
)

// DefaultRetryDelay is the fixed backoff before the single nonce-conflict
// retry.
const DefaultRetryDelay = 2 * time.Second

// Request describes one logical transaction to dispatch.
type Request struct {
	// Op names the logical operation for error context ("createJob" etc.).
	Op string

	To    common.Address
	Data  []byte
	Value *big.Int

	// ForceDirect skips the sponsored path even when a sponsor is
	// configured.
	ForceDirect bool
}

// Result is a confirmed dispatch outcome.
type Result struct {
	TxHash  common.Hash
	Receipt *types.Receipt
	Path    Path
}

// Observer receives terminal dispatch outcomes, for metrics.
type Observer interface {
	ObserveDispatch(path, outcome string)
}

// Router orchestrates dispatches for a single signing authority.
type Router struct {
	provider   chain.Provider
	authority  signer.Authority
	sponsor    signer.Sponsor
	estimator  *fees.Estimator
	lanes      *lane.Queue
	contract   common.Address
	retryDelay time.Duration
	observer   Observer
	logger     *zap.Logger
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithSponsor enables the gas-sponsored path.
func WithSponsor(sponsor signer.Sponsor) RouterOption {
	return func(r *Router) {
		r.sponsor = sponsor
	}
}

// WithLaneQueue shares a serialization queue across routers. Routers for
// the same authority must share one queue.
func WithLaneQueue(queue *lane.Queue) RouterOption {
	return func(r *Router) {
		r.lanes = queue
	}
}

// WithRetryDelay overrides the nonce-conflict retry backoff.
func WithRetryDelay(delay time.Duration) RouterOption {
	return func(r *Router) {
		r.retryDelay = delay
	}
}

// WithObserver registers a dispatch outcome observer.
func WithObserver(observer Observer) RouterOption {
	return func(r *Router) {
		r.observer = observer
	}
}

// NewRouter creates a Router. contract is the job contract address used
// for identifier recovery from receipts.
func NewRouter(provider chain.Provider, authority signer.Authority, estimator *fees.Estimator, contract common.Address, options ...RouterOption) *Router {
	r := &Router{
		provider:   provider,
		authority:  authority,
		estimator:  estimator,
		contract:   contract,
		retryDelay: DefaultRetryDelay,
		logger:     logger.Log,
	}
	for _, option := range options {
		option(r)
	}
	if r.lanes == nil {
		r.lanes = lane.NewQueue()
	}
	return r
}

// Authority returns the signing authority this router submits through.
func (r *Router) Authority() signer.Authority {
	return r.authority
}

// Dispatch executes one logical transaction and returns the hash of the
// confirmed transaction.
func (r *Router) Dispatch(ctx context.Context, req *Request) (common.Hash, error) {
	result, err := r.DispatchWithReceipt(ctx, req)
	if err != nil {
		return common.Hash{}, err
	}
	return result.TxHash, nil
}

// DispatchWithReceipt is Dispatch but keeps the mined receipt, for callers
// that recover identifiers from event logs.
func (r *Router) DispatchWithReceipt(ctx context.Context, req *Request) (*Result, error) {
	var result *Result
	err := r.lanes.Do(ctx, r.authority.Address().Hex(), func(ctx context.Context) error {
		res, dispatchErr := r.dispatchSerialized(ctx, req)
		result = res
		return dispatchErr
	})
	if err != nil {
		r.observe(failurePath(err), "failure")
		return nil, err
	}
	r.observe(string(result.Path), "success")
	return result, nil
}

// DispatchBatch executes requests strictly sequentially on the
// authority's lane. A failure at the k-th request aborts the remaining
// tail without retry; the confirmed prefix hashes are returned alongside
// the error so the caller can resubmit the unsent remainder.
func (r *Router) DispatchBatch(ctx context.Context, reqs []*Request) ([]common.Hash, error) {
	hashes := make([]common.Hash, 0, len(reqs))
	for i, req := range reqs {
		result, err := r.DispatchWithReceipt(ctx, req)
		if err != nil {
			return hashes, fmt.Errorf("batch aborted at request %d (%s): %w", i, req.Op, err)
		}
		hashes = append(hashes, result.TxHash)
	}
	return hashes, nil
}

// dispatchSerialized runs with the authority lane held.
func (r *Router) dispatchSerialized(ctx context.Context, req *Request) (*Result, error) {
	if r.sponsor != nil && !req.ForceDirect {
		result, err := r.trySponsored(ctx, req)
		if err == nil {
			return result, nil
		}
		// Sponsorship failure is never fatal: re-enter from fee
		// estimation on the direct path.
		r.logger.Warn("sponsored path failed, falling back to direct",
			zap.String("op", req.Op),
			zap.Error(err))
		r.observe(string(PathSponsored), "fallback")
	}
	return r.sendDirect(ctx, req)
}

func (r *Router) trySponsored(ctx context.Context, req *Request) (*Result, error) {
	tx := &signer.TxRequest{
		To:    req.To,
		Data:  req.Data,
		Value: req.Value,
	}

	from := r.authority.Address()
	hash, err := r.sponsor.SendSponsored(ctx, from, tx)
	if chain.IsNonceConflict(err) {
		r.logger.Warn("nonce conflict on sponsored submission, retrying once",
			zap.String("op", req.Op),
			zap.Error(err))
		if waitErr := r.waitRetryDelay(ctx); waitErr != nil {
			return nil, waitErr
		}
		// Retry reuses the identical call data; re-deriving it could
		// introduce a second source of nonce drift.
		hash, err = r.sponsor.SendSponsored(ctx, from, tx)
		if chain.IsNonceConflict(err) {
			return nil, &NonceConflictError{Op: req.Op, Path: PathSponsored, Err: err}
		}
	}
	if err != nil {
		return nil, &SubmissionError{Op: req.Op, Path: PathSponsored, Err: err}
	}

	receipt, err := r.provider.WaitForReceipt(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("dispatch %s: sponsored confirmation failed: %w", req.Op, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &ReceiptFailureError{
			Op:      req.Op,
			Path:    PathSponsored,
			TxHash:  hash,
			GasUsed: receipt.GasUsed,
		}
	}

	return &Result{TxHash: hash, Receipt: receipt, Path: PathSponsored}, nil
}

func (r *Router) sendDirect(ctx context.Context, req *Request) (*Result, error) {
	maxFee, priorityFee, err := r.estimator.Estimate(ctx)
	if err != nil {
		return nil, fmt.Errorf("dispatch %s: %w", req.Op, err)
	}

	msg := ethereum.CallMsg{
		From:  r.authority.Address(),
		To:    &req.To,
		Value: req.Value,
		Data:  req.Data,
	}
	gas, err := r.provider.EstimateGas(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("dispatch %s: %w", req.Op, &fees.EstimationError{Err: err})
	}

	tx := &signer.TxRequest{
		To:                   req.To,
		Data:                 req.Data,
		Value:                req.Value,
		Gas:                  gas,
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: priorityFee,
	}

	hash, err := r.authority.SendTransaction(ctx, tx)
	if chain.IsNonceConflict(err) {
		r.logger.Warn("nonce conflict on direct submission, retrying once",
			zap.String("op", req.Op),
			zap.Error(err))
		if waitErr := r.waitRetryDelay(ctx); waitErr != nil {
			return nil, waitErr
		}
		// Same data and fee values as the first attempt.
		hash, err = r.authority.SendTransaction(ctx, tx)
		if chain.IsNonceConflict(err) {
			return nil, &NonceConflictError{Op: req.Op, Path: PathDirect, Err: err}
		}
	}
	if err != nil {
		return nil, &SubmissionError{Op: req.Op, Path: PathDirect, Err: err}
	}

	receipt, err := r.provider.WaitForReceipt(ctx, hash)
	if err != nil {
		// Keeps chain.ErrReceiptTimeout recognizable for the caller.
		return nil, fmt.Errorf("dispatch %s: direct confirmation failed: %w", req.Op, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &ReceiptFailureError{
			Op:      req.Op,
			Path:    PathDirect,
			TxHash:  hash,
			GasUsed: receipt.GasUsed,
		}
	}

	r.logger.Info("transaction confirmed",
		zap.String("op", req.Op),
		zap.String("path", string(PathDirect)),
		zap.String("tx_hash", hash.Hex()))

	return &Result{TxHash: hash, Receipt: receipt, Path: PathDirect}, nil
}

func (r *Router) waitRetryDelay(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.retryDelay):
		return nil
	}
}

func (r *Router) observe(path, outcome string) {
	if r.observer != nil {
		r.observer.ObserveDispatch(path, outcome)
	}
}

// failurePath extracts the path the failed attempt ran on, so the metric
// label is never empty. Errors without path context came from the direct
// route, the only one left after fallback.
func failurePath(err error) string {
	var submitErr *SubmissionError
	if errors.As(err, &submitErr) {
		return string(submitErr.Path)
	}
	var nonceErr *NonceConflictError
	if errors.As(err, &nonceErr) {
		return string(nonceErr.Path)
	}
	var receiptErr *ReceiptFailureError
	if errors.As(err, &receiptErr) {
		return string(receiptErr.Path)
	}
	return string(PathDirect)
}
