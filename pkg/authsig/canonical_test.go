package authsig_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphera/jobdispatch/pkg/authsig"
)

func TestCanonicalize_SortsObjectKeys(t *testing.T) {
	out, err := authsig.Canonicalize(`{"zulu":1,"alpha":2,"mike":3}`)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mike":3,"zulu":1}`, string(out))
}

func TestCanonicalize_KeyOrderDoesNotMatter(t *testing.T) {
	a, err := authsig.Canonicalize(`{"b":{"y":1,"x":2},"a":[1,2,3]}`)
	require.NoError(t, err)
	b, err := authsig.Canonicalize(`{"a":[1,2,3],"b":{"x":2,"y":1}}`)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestCanonicalize_PreservesArrayOrder(t *testing.T) {
	out, err := authsig.Canonicalize(`{"list":[3,1,2]}`)
	require.NoError(t, err)
	assert.Equal(t, `{"list":[3,1,2]}`, string(out))
}

func TestCanonicalize_Idempotent(t *testing.T) {
	first, err := authsig.Canonicalize(`{"b":{"d":4,"c":[true,null,"s"]},"a":1.5}`)
	require.NoError(t, err)
	second, err := authsig.Canonicalize(first)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestCanonicalize_PreservesNumberLiterals(t *testing.T) {
	// 1e21 would become 1e+21 through float64; the literal must survive.
	out, err := authsig.Canonicalize(`{"big":1000000000000000000001,"dec":0.10}`)
	require.NoError(t, err)
	assert.Equal(t, `{"big":1000000000000000000001,"dec":0.10}`, string(out))
}

func TestCanonicalize_StructInput(t *testing.T) {
	type payload struct {
		Amount string `json:"amount"`
		Wallet string `json:"wallet"`
	}
	out, err := authsig.Canonicalize(payload{Amount: "10", Wallet: "0xabc"})
	require.NoError(t, err)
	assert.Equal(t, `{"amount":"10","wallet":"0xabc"}`, string(out))
}

func TestCanonicalize_RejectsInvalidJSON(t *testing.T) {
	_, err := authsig.Canonicalize(`{"unterminated":`)
	assert.Error(t, err)
}

func TestBuildPayload(t *testing.T) {
	payload, err := authsig.BuildPayload("post", "https://signer.example.com/v1/transactions", `{"wallet":"w1"}`, "app-123")
	require.NoError(t, err)

	assert.Equal(t, "POST", payload["method"])
	assert.Equal(t, "https://signer.example.com/v1/transactions", payload["url"])
	assert.Equal(t, json.Number("1"), payload["version"])

	headers, ok := payload["headers"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "app-123", headers["x-app-id"])

	body, ok := payload["body"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "w1", body["wallet"])
}

func TestBuildPayload_NilBody(t *testing.T) {
	payload, err := authsig.BuildPayload("GET", "https://signer.example.com/v1/wallets/w1", nil, "app-123")
	require.NoError(t, err)
	assert.Nil(t, payload["body"])

	canonical, err := authsig.Canonicalize(payload)
	require.NoError(t, err)
	assert.Equal(t,
		`{"body":null,"headers":{"x-app-id":"app-123"},"method":"GET","url":"https://signer.example.com/v1/wallets/w1","version":1}`,
		string(canonical))
}

func TestBuildPayload_EquivalentBodiesCanonicalizeEqual(t *testing.T) {
	a, err := authsig.BuildPayload("POST", "https://x", `{"k1":"v1","k2":"v2"}`, "app")
	require.NoError(t, err)
	b, err := authsig.BuildPayload("POST", "https://x", map[string]string{"k2": "v2", "k1": "v1"}, "app")
	require.NoError(t, err)

	ca, err := authsig.Canonicalize(a)
	require.NoError(t, err)
	cb, err := authsig.Canonicalize(b)
	require.NoError(t, err)
	assert.Equal(t, string(ca), string(cb))
}
