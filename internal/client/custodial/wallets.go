package custodial

import (
	"context"
	"time"

	httpClient "github.com/cyphera/jobdispatch/internal/client/http"

	"github.com/pkg/errors"
)

// Wallet represents a custodial wallet
type Wallet struct {
	ID         string    `json:"id"`
	Address    string    `json:"address"`
	ChainType  string    `json:"chainType"`
	CreateDate time.Time `json:"createDate"`
}

// WalletResponse represents the response from getting a wallet
type WalletResponse struct {
	Data struct {
		Wallet Wallet `json:"wallet"`
	} `json:"data"`
}

// GetWallet retrieves a wallet by its ID
func (c *Client) GetWallet(ctx context.Context, walletID string) (*Wallet, error) {
	if walletID == "" {
		return nil, errors.New("wallet ID is required")
	}

	resp, err := c.httpClient.Get(
		ctx,
		"wallets/"+walletID,
		httpClient.WithBearerToken(c.apiKey),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get wallet")
	}

	var response WalletResponse
	if err := c.httpClient.ProcessJSONResponse(resp, &response); err != nil {
		return nil, errors.Wrap(err, "failed to process wallet response")
	}

	return &response.Data.Wallet, nil
}

// RegisterKeyRequest represents the request to register an authorization key
type RegisterKeyRequest struct {
	WalletID  string `json:"walletId"`
	PublicKey string `json:"publicKey"` // PEM-encoded P-256 public key
}

// RegisterKeyResponse represents the response from registering a key
type RegisterKeyResponse struct {
	Data struct {
		KeyID string `json:"keyId"`
	} `json:"data"`
}

// RegisterAuthorizationKey links a P-256 public key to a wallet. Until the
// key is registered, signed submissions for the wallet are rejected.
func (c *Client) RegisterAuthorizationKey(ctx context.Context, walletID, publicKeyPEM string) (string, error) {
	if walletID == "" {
		return "", errors.New("wallet ID is required")
	}
	if publicKeyPEM == "" {
		return "", errors.New("public key is required")
	}

	resp, err := c.httpClient.Post(
		ctx,
		"wallets/"+walletID+"/authorization-keys",
		RegisterKeyRequest{WalletID: walletID, PublicKey: publicKeyPEM},
		httpClient.WithBearerToken(c.apiKey),
	)
	if err != nil {
		if authErr := asAuthorizationError(err); authErr != nil {
			return "", authErr
		}
		return "", errors.Wrap(err, "failed to register authorization key")
	}

	var response RegisterKeyResponse
	if err := c.httpClient.ProcessJSONResponse(resp, &response); err != nil {
		return "", errors.Wrap(err, "failed to process key registration response")
	}

	return response.Data.KeyID, nil
}

func asAuthorizationError(err error) *AuthorizationError {
	var httpErr *httpClient.HTTPError
	if errors.As(err, &httpErr) && (httpErr.StatusCode == 401 || httpErr.StatusCode == 403) {
		return newAuthorizationError(httpErr.StatusCode, httpErr.Body)
	}
	return nil
}
