package dispatch

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// contractEventsABI describes the identifier-bearing events emitted by the
// job contract.
const contractEventsABI = `[
  {"type":"event","name":"JobCreated","inputs":[
    {"name":"jobId","type":"uint256","indexed":false},
    {"name":"requester","type":"address","indexed":false},
    {"name":"provider","type":"address","indexed":false},
    {"name":"evaluator","type":"address","indexed":false}]},
  {"type":"event","name":"MemoCreated","inputs":[
    {"name":"jobId","type":"uint256","indexed":true},
    {"name":"memoId","type":"uint256","indexed":false},
    {"name":"memoType","type":"uint8","indexed":false}]}
]`

var contractEvents = mustParseABI(contractEventsABI)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("invalid contract events ABI: " + err.Error())
	}
	return parsed
}

// JobIDFromReceipt recovers the job identifier assigned on-chain. The
// first log emitted by the contract address carries the id as the leading
// word of its data; a receipt without such a log means the configured
// address or ABI does not match the deployed contract.
func (r *Router) JobIDFromReceipt(receipt *types.Receipt) (*big.Int, error) {
	for _, log := range receipt.Logs {
		if log.Address != r.contract {
			continue
		}
		if len(log.Data) < 32 {
			continue
		}
		return new(big.Int).SetBytes(log.Data[:32]), nil
	}
	return nil, &LogNotFoundError{
		Event:    "JobCreated",
		Contract: r.contract,
		TxHash:   receipt.TxHash,
	}
}

// MemoIDFromReceipt recovers the memo identifier from the MemoCreated
// event's named field.
func (r *Router) MemoIDFromReceipt(receipt *types.Receipt) (*big.Int, error) {
	event := contractEvents.Events["MemoCreated"]
	for _, log := range receipt.Logs {
		if log.Address != r.contract {
			continue
		}
		if len(log.Topics) == 0 || log.Topics[0] != event.ID {
			continue
		}

		decoded := make(map[string]interface{})
		if err := contractEvents.UnpackIntoMap(decoded, "MemoCreated", log.Data); err != nil {
			return nil, &LogNotFoundError{
				Event:    "MemoCreated",
				Contract: r.contract,
				TxHash:   receipt.TxHash,
				Err:      err,
			}
		}
		memoID, ok := decoded["memoId"].(*big.Int)
		if !ok {
			return nil, &LogNotFoundError{
				Event:    "MemoCreated",
				Contract: r.contract,
				TxHash:   receipt.TxHash,
			}
		}
		return memoID, nil
	}
	return nil, &LogNotFoundError{
		Event:    "MemoCreated",
		Contract: r.contract,
		TxHash:   receipt.TxHash,
	}
}

// MemoCreatedTopic returns the event signature hash of MemoCreated, for
// callers that build receipts or filters themselves.
func MemoCreatedTopic() common.Hash {
	return contractEvents.Events["MemoCreated"].ID
}
