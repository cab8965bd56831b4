package jobchain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Encoder maps (method name, typed arguments) to encoded call data. The
// contract ABI is a collaborator of this layer, not part of it; the
// default implementations below cover the deployed job contract and the
// payment token.
type Encoder interface {
	EncodeCall(method string, args ...interface{}) ([]byte, error)
}

const jobContractABI = `[
  {"type":"function","name":"createJob","inputs":[
    {"name":"provider","type":"address"},
    {"name":"evaluator","type":"address"},
    {"name":"expiredAt","type":"uint256"}]},
  {"type":"function","name":"createMemo","inputs":[
    {"name":"jobId","type":"uint256"},
    {"name":"content","type":"string"},
    {"name":"memoType","type":"uint8"},
    {"name":"isSecured","type":"bool"},
    {"name":"nextPhase","type":"uint8"}]},
  {"type":"function","name":"createPayableMemo","inputs":[
    {"name":"jobId","type":"uint256"},
    {"name":"content","type":"string"},
    {"name":"memoType","type":"uint8"},
    {"name":"nextPhase","type":"uint8"},
    {"name":"amount","type":"uint256"},
    {"name":"receiver","type":"address"},
    {"name":"feeAmount","type":"uint256"},
    {"name":"feeType","type":"uint8"}]},
  {"type":"function","name":"signMemo","inputs":[
    {"name":"memoId","type":"uint256"},
    {"name":"isApproved","type":"bool"},
    {"name":"reason","type":"string"}]},
  {"type":"function","name":"setBudget","inputs":[
    {"name":"jobId","type":"uint256"},
    {"name":"amount","type":"uint256"}]}
]`

const erc20ABI = `[
  {"type":"function","name":"approve","inputs":[
    {"name":"spender","type":"address"},
    {"name":"amount","type":"uint256"}]},
  {"type":"function","name":"transfer","inputs":[
    {"name":"to","type":"address"},
    {"name":"amount","type":"uint256"}]}
]`

// ABIEncoder encodes calls against a parsed contract ABI.
type ABIEncoder struct {
	abi abi.ABI
}

// NewABIEncoder parses the given ABI JSON.
func NewABIEncoder(rawABI string) (*ABIEncoder, error) {
	parsed, err := abi.JSON(strings.NewReader(rawABI))
	if err != nil {
		return nil, fmt.Errorf("invalid contract ABI: %w", err)
	}
	return &ABIEncoder{abi: parsed}, nil
}

// NewJobContractEncoder returns the encoder for the job contract.
func NewJobContractEncoder() *ABIEncoder {
	encoder, err := NewABIEncoder(jobContractABI)
	if err != nil {
		panic(err)
	}
	return encoder
}

// NewTokenEncoder returns the encoder for the ERC-20 payment token.
func NewTokenEncoder() *ABIEncoder {
	encoder, err := NewABIEncoder(erc20ABI)
	if err != nil {
		panic(err)
	}
	return encoder
}

// EncodeCall packs the method selector and arguments.
func (e *ABIEncoder) EncodeCall(method string, args ...interface{}) ([]byte, error) {
	data, err := e.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s call: %w", method, err)
	}
	return data, nil
}
