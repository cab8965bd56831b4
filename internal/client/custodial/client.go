// Package custodial is the REST client for the custodial wallet vendor.
// Backend authorization for sensitive calls is proven by a detached
// signature header computed over the canonical request payload.
package custodial

import (
	httpClient "github.com/cyphera/jobdispatch/internal/client/http"
)

// AuthSignatureHeader carries the base64 authorization signature.
const AuthSignatureHeader = "X-Authorization-Signature"

// AppIDHeader identifies the calling application.
const AppIDHeader = "X-App-Id"

// Client talks to the custodial wallet API.
type Client struct {
	apiKey     string
	appID      string
	httpClient *httpClient.Client
}

// NewClient creates a custodial API client for the given endpoint.
func NewClient(baseURL, apiKey, appID string, options ...httpClient.ClientOption) *Client {
	opts := append([]httpClient.ClientOption{
		httpClient.WithBaseURL(baseURL),
		httpClient.WithDefaultHeader(AppIDHeader, appID),
	}, options...)

	return &Client{
		apiKey:     apiKey,
		appID:      appID,
		httpClient: httpClient.NewClient(opts...),
	}
}

// AppID returns the application identifier bound into authorization
// payloads.
func (c *Client) AppID() string {
	return c.appID
}

// BaseURL returns the configured API endpoint.
func (c *Client) BaseURL() string {
	return c.httpClient.BaseURL()
}

// ResolveURL returns the absolute URL for an API path, normalized the
// same way outgoing requests are. Authorization payloads sign this exact
// URL; building it by hand risks a slash mismatch the verifier rejects.
func (c *Client) ResolveURL(path string) string {
	return c.httpClient.ResolveURL(path)
}
