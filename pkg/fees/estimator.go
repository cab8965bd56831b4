// Package fees computes the EIP-1559 fee ceiling for outgoing transactions
// from live network data plus configured overrides.
package fees

import (
	"context"
	"fmt"
	"math/big"

	"github.com/cyphera/jobdispatch/pkg/chain"
)

// DefaultMultiplier is the fee headroom applied when none is configured.
const DefaultMultiplier = 2

// EstimationError reports that the live fee query failed. It is never
// retried here; retry policy belongs to the caller.
type EstimationError struct {
	Err error
}

func (e *EstimationError) Error() string {
	return fmt.Sprintf("fee estimation failed: %v", e.Err)
}

func (e *EstimationError) Unwrap() error {
	return e.Err
}

// Compute derives the max fee per gas:
//
//	maxFeePerGas = (overrideMax ?? base) + priority * max(0, multiplier-1)
//
// where priority is overridePriority when set, the live priority fee
// otherwise. With multiplier 1 the override max fee passes through
// unchanged. A negative multiplier is clamped to zero headroom.
func Compute(live *chain.FeesPerGas, overrideMax, overridePriority *big.Int, multiplier int64) *big.Int {
	base := live.BaseFee
	if overrideMax != nil {
		base = overrideMax
	}

	priority := live.PriorityFee
	if overridePriority != nil {
		priority = overridePriority
	}

	headroom := multiplier - 1
	if headroom < 0 {
		headroom = 0
	}

	maxFee := new(big.Int).Set(base)
	if headroom > 0 {
		maxFee.Add(maxFee, new(big.Int).Mul(priority, big.NewInt(headroom)))
	}
	return maxFee
}

// Estimator queries live fees from a chain provider and applies overrides.
type Estimator struct {
	provider         chain.Provider
	overrideMax      *big.Int
	overridePriority *big.Int
	multiplier       int64
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithMaxFeeOverride pins the base component of the fee ceiling.
func WithMaxFeeOverride(fee *big.Int) Option {
	return func(e *Estimator) {
		e.overrideMax = fee
	}
}

// WithPriorityFeeOverride pins the priority fee used for headroom.
func WithPriorityFeeOverride(fee *big.Int) Option {
	return func(e *Estimator) {
		e.overridePriority = fee
	}
}

// WithMultiplier sets the fee headroom multiplier.
func WithMultiplier(multiplier int64) Option {
	return func(e *Estimator) {
		e.multiplier = multiplier
	}
}

// NewEstimator creates an Estimator over the given provider.
func NewEstimator(provider chain.Provider, options ...Option) *Estimator {
	e := &Estimator{
		provider:   provider,
		multiplier: DefaultMultiplier,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Estimate returns the max fee per gas and the priority fee per gas for the
// next submission. A failed live query surfaces as *EstimationError.
func (e *Estimator) Estimate(ctx context.Context) (maxFee, priorityFee *big.Int, err error) {
	live, err := e.provider.EstimateFeesPerGas(ctx)
	if err != nil {
		return nil, nil, &EstimationError{Err: err}
	}

	priorityFee = live.PriorityFee
	if e.overridePriority != nil {
		priorityFee = e.overridePriority
	}

	maxFee = Compute(live, e.overrideMax, e.overridePriority, e.multiplier)
	// Nodes reject a transaction whose tip exceeds its fee cap, which a
	// low max-fee override can otherwise produce.
	if priorityFee.Cmp(maxFee) > 0 {
		priorityFee = new(big.Int).Set(maxFee)
	}
	return maxFee, priorityFee, nil
}
