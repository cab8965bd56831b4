package sponsor_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/jobdispatch/internal/client/sponsor"
)

func newTestClient(t *testing.T, handler http.Handler) *sponsor.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return sponsor.NewClient(server.URL, "api-key")
}

func TestSubmitBundle(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bundles", r.URL.Path)
		assert.Equal(t, "Bearer api-key", r.Header.Get("Authorization"))

		var received sponsor.SubmitBundleRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		require.Len(t, received.Calls, 1)
		assert.Equal(t, "0xdeadbeef", received.Calls[0].Data)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"bundle": map[string]interface{}{
					"id":     "bundle-1",
					"state":  sponsor.StateConfirmed,
					"txHash": "0xabc",
				},
			},
		})
	}))

	bundle, err := client.SubmitBundle(context.Background(), sponsor.SubmitBundleRequest{
		From: "0x2222222222222222222222222222222222222222",
		Calls: []sponsor.Call{
			{To: "0x1111111111111111111111111111111111111111", Data: "0xdeadbeef"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "bundle-1", bundle.ID)
	assert.Equal(t, "0xabc", bundle.TxHash)
}

func TestSubmitBundle_ValidatesBeforeNetwork(t *testing.T) {
	called := false
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := client.SubmitBundle(context.Background(), sponsor.SubmitBundleRequest{
		Calls: []sponsor.Call{{To: "0x1", Data: "0x"}},
	})
	require.Error(t, err)

	_, err = client.SubmitBundle(context.Background(), sponsor.SubmitBundleRequest{
		From: "0x2222222222222222222222222222222222222222",
	})
	require.Error(t, err)

	assert.False(t, called)
}

func TestWaitForHash_FailedBundle(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bundles/bundle-1", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"bundle": map[string]interface{}{
					"id":     "bundle-1",
					"state":  sponsor.StateFailed,
					"reason": "paymaster rejected the call",
				},
			},
		})
	}))

	_, err := client.WaitForHash(context.Background(), "bundle-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paymaster rejected the call")
}
