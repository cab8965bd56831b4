// Package sponsor is the REST client for the optional gas-sponsorship
// (paymaster) service. It accepts a smart-account call bundle and returns
// the hash of the sponsored transaction once the bundler lands it.
package sponsor

import (
	"context"
	"time"

	httpClient "github.com/cyphera/jobdispatch/internal/client/http"

	"github.com/pkg/errors"
)

// Bundle states reported by the sponsorship service.
const (
	StatePending   = "PENDING"
	StateConfirmed = "CONFIRMED"
	StateFailed    = "FAILED"
)

// Client talks to the sponsorship bundler API.
type Client struct {
	apiKey     string
	httpClient *httpClient.Client
}

// NewClient creates a sponsorship client for the given endpoint.
func NewClient(baseURL, apiKey string, options ...httpClient.ClientOption) *Client {
	opts := append([]httpClient.ClientOption{
		httpClient.WithBaseURL(baseURL),
	}, options...)

	return &Client{
		apiKey:     apiKey,
		httpClient: httpClient.NewClient(opts...),
	}
}

// Call is a single call inside a sponsored bundle.
type Call struct {
	To    string `json:"to"`
	Data  string `json:"data"` // 0x-prefixed hex
	Value string `json:"value,omitempty"`
}

// SubmitBundleRequest represents the request to sponsor a call bundle.
type SubmitBundleRequest struct {
	From  string `json:"from"`
	Calls []Call `json:"calls"`
}

// BundleStatus represents the state of a sponsored bundle.
type BundleStatus struct {
	ID     string `json:"id"`
	State  string `json:"state"`
	TxHash string `json:"txHash"`
	Reason string `json:"reason"`
}

// SubmitBundleResponse represents the response from submitting a bundle.
type SubmitBundleResponse struct {
	Data struct {
		Bundle BundleStatus `json:"bundle"`
	} `json:"data"`
}

// SubmitBundle submits a call bundle for sponsored execution.
func (c *Client) SubmitBundle(ctx context.Context, request SubmitBundleRequest) (*BundleStatus, error) {
	if request.From == "" {
		return nil, errors.New("from address is required")
	}
	if len(request.Calls) == 0 {
		return nil, errors.New("at least one call is required")
	}

	resp, err := c.httpClient.Post(
		ctx,
		"bundles",
		request,
		httpClient.WithBearerToken(c.apiKey),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to submit sponsored bundle")
	}

	var response SubmitBundleResponse
	if err := c.httpClient.ProcessJSONResponse(resp, &response); err != nil {
		return nil, errors.Wrap(err, "failed to process bundle response")
	}

	return &response.Data.Bundle, nil
}

// GetBundle retrieves the current state of a sponsored bundle.
func (c *Client) GetBundle(ctx context.Context, bundleID string) (*BundleStatus, error) {
	if bundleID == "" {
		return nil, errors.New("bundle ID is required")
	}

	resp, err := c.httpClient.Get(
		ctx,
		"bundles/"+bundleID,
		httpClient.WithBearerToken(c.apiKey),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get bundle")
	}

	var response SubmitBundleResponse
	if err := c.httpClient.ProcessJSONResponse(resp, &response); err != nil {
		return nil, errors.Wrap(err, "failed to process bundle response")
	}

	return &response.Data.Bundle, nil
}

// WaitForHash polls until the bundle lands on-chain or fails.
func (c *Client) WaitForHash(ctx context.Context, bundleID string) (string, error) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		bundle, err := c.GetBundle(ctx, bundleID)
		if err != nil {
			return "", err
		}

		switch bundle.State {
		case StateFailed:
			return "", errors.Errorf("sponsored bundle %s failed: %s", bundleID, bundle.Reason)
		case StateConfirmed:
			if bundle.TxHash != "" {
				return bundle.TxHash, nil
			}
		}

		select {
		case <-ctx.Done():
			return "", errors.Wrapf(ctx.Err(), "timed out waiting for sponsored bundle %s", bundleID)
		case <-ticker.C:
		}
	}
}
