// Package jobchain is the protocol layer over dispatch: it maps logical
// job/memo operations onto contract calls and recovers structured results
// from receipts. Phase legality is never validated locally; the contract
// is authoritative and the local view is a projection of the last
// confirmed chain state.
package jobchain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Phase is a job's lifecycle phase as tracked by the contract.
type Phase uint8

const (
	PhaseRequest Phase = iota
	PhaseNegotiation
	PhaseTransaction
	PhaseEvaluation
	PhaseCompleted
	PhaseRejected
	PhaseExpired
)

var phaseNames = map[Phase]string{
	PhaseRequest:     "REQUEST",
	PhaseNegotiation: "NEGOTIATION",
	PhaseTransaction: "TRANSACTION",
	PhaseEvaluation:  "EVALUATION",
	PhaseCompleted:   "COMPLETED",
	PhaseRejected:    "REJECTED",
	PhaseExpired:     "EXPIRED",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "UNKNOWN"
}

// MemoType classifies a memo's content.
type MemoType uint8

const (
	MemoMessage MemoType = iota
	MemoContextURL
	MemoImageURL
	MemoVoiceURL
	MemoObjectURL
	MemoTxHash
	MemoPayableRequest
	MemoPayableTransfer
	MemoPayableFee
	MemoPayableFeeRequest
)

var memoTypeNames = map[MemoType]string{
	MemoMessage:           "MESSAGE",
	MemoContextURL:        "CONTEXT_URL",
	MemoImageURL:          "IMAGE_URL",
	MemoVoiceURL:          "VOICE_URL",
	MemoObjectURL:         "OBJECT_URL",
	MemoTxHash:            "TXHASH",
	MemoPayableRequest:    "PAYABLE_REQUEST",
	MemoPayableTransfer:   "PAYABLE_TRANSFER",
	MemoPayableFee:        "PAYABLE_FEE",
	MemoPayableFeeRequest: "PAYABLE_FEE_REQUEST",
}

func (t MemoType) String() string {
	if name, ok := memoTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// FeeType declares when a memo's fee is collected.
type FeeType uint8

const (
	NoFee FeeType = iota
	ImmediateFee
	DeferredFee
)

// Job is the on-chain unit of work between a requester, provider and
// evaluator. Instances are projections of confirmed chain state.
type Job struct {
	ID        *big.Int
	Requester common.Address
	Provider  common.Address
	Evaluator common.Address
	ExpiredAt time.Time
	Phase     Phase
	Memos     []Memo
}

// Memo is an on-chain note attached to a job, optionally payable.
type Memo struct {
	ID        *big.Int
	JobID     *big.Int
	Type      MemoType
	Content   string
	NextPhase Phase
	ExpiredAt *time.Time

	// Payment fields, set for payable memo types.
	Amount    *big.Int
	Recipient *common.Address
	FeeAmount *big.Int
	FeeType   FeeType
}

// JobResult is the outcome of a confirmed job creation.
type JobResult struct {
	TxHash common.Hash
	JobID  *big.Int
}

// MemoResult is the outcome of a confirmed memo creation.
type MemoResult struct {
	TxHash common.Hash
	MemoID *big.Int
}
