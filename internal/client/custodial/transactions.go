package custodial

import (
	"context"
	"time"

	httpClient "github.com/cyphera/jobdispatch/internal/client/http"

	"github.com/pkg/errors"
)

// Transaction states reported by the custodial API.
const (
	StateQueued    = "QUEUED"
	StateSent      = "SENT"
	StateConfirmed = "CONFIRMED"
	StateFailed    = "FAILED"
)

// ContractCallRequest represents the request to submit a contract call
// from a custodial wallet.
type ContractCallRequest struct {
	IdempotencyKey  string `json:"idempotencyKey"`
	WalletID        string `json:"walletId"`
	ContractAddress string `json:"contractAddress"`
	CallData        string `json:"callData"` // 0x-prefixed hex
	Value           string `json:"value,omitempty"`
	GasLimit        string `json:"gasLimit,omitempty"`
	MaxFee          string `json:"maxFee,omitempty"`
	PriorityFee     string `json:"priorityFee,omitempty"`
	RefID           string `json:"refId,omitempty"`
}

// Transaction represents a custodial transaction
type Transaction struct {
	ID          string    `json:"id"`
	State       string    `json:"state"`
	TxHash      string    `json:"txHash"`
	WalletID    string    `json:"walletId"`
	ErrorReason string    `json:"errorReason"`
	CreateDate  time.Time `json:"createDate"`
	UpdateDate  time.Time `json:"updateDate"`
}

// SubmitResponse represents the response from submitting a contract call
type SubmitResponse struct {
	Data struct {
		Transaction Transaction `json:"transaction"`
	} `json:"data"`
}

// SubmitContractCall submits a contract execution from the wallet. The
// authorization signature, computed over the canonical payload of this
// exact request, rides in a dedicated header alongside the API key.
func (c *Client) SubmitContractCall(ctx context.Context, request ContractCallRequest, authSignature string) (*Transaction, error) {
	if request.IdempotencyKey == "" {
		return nil, errors.New("idempotencyKey is required")
	}
	if request.WalletID == "" {
		return nil, errors.New("walletId is required")
	}
	if request.ContractAddress == "" {
		return nil, errors.New("contractAddress is required")
	}
	if authSignature == "" {
		return nil, errors.New("authorization signature is required")
	}

	resp, err := c.httpClient.Post(
		ctx,
		"transactions/contract-call",
		request,
		httpClient.WithBearerToken(c.apiKey),
		httpClient.WithHeader(AuthSignatureHeader, authSignature),
	)
	if err != nil {
		if authErr := asAuthorizationError(err); authErr != nil {
			return nil, authErr
		}
		return nil, errors.Wrap(err, "failed to submit contract call")
	}

	var response SubmitResponse
	if err := c.httpClient.ProcessJSONResponse(resp, &response); err != nil {
		return nil, errors.Wrap(err, "failed to process contract call response")
	}

	return &response.Data.Transaction, nil
}

// TransactionResponse represents the response from getting a transaction
type TransactionResponse struct {
	Data struct {
		Transaction Transaction `json:"transaction"`
	} `json:"data"`
}

// GetTransaction retrieves a custodial transaction by its ID
func (c *Client) GetTransaction(ctx context.Context, transactionID string) (*Transaction, error) {
	if transactionID == "" {
		return nil, errors.New("transaction ID is required")
	}

	resp, err := c.httpClient.Get(
		ctx,
		"transactions/"+transactionID,
		httpClient.WithBearerToken(c.apiKey),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	var response TransactionResponse
	if err := c.httpClient.ProcessJSONResponse(resp, &response); err != nil {
		return nil, errors.Wrap(err, "failed to process transaction response")
	}

	return &response.Data.Transaction, nil
}

// WaitForHash polls the transaction until the vendor reports a chain hash
// or a terminal failure.
func (c *Client) WaitForHash(ctx context.Context, transactionID string) (string, error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		tx, err := c.GetTransaction(ctx, transactionID)
		if err != nil {
			return "", err
		}

		switch tx.State {
		case StateFailed:
			return "", errors.Errorf("custodial transaction %s failed: %s", transactionID, tx.ErrorReason)
		case StateSent, StateConfirmed:
			if tx.TxHash != "" {
				return tx.TxHash, nil
			}
		}

		select {
		case <-ctx.Done():
			return "", errors.Wrapf(ctx.Err(), "timed out waiting for custodial transaction %s", transactionID)
		case <-ticker.C:
		}
	}
}
