package authsig

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Sign builds the canonical authorization payload for the request, signs
// its UTF-8 bytes with ECDSA P-256 over a SHA-256 digest, and returns the
// base64-encoded signature. privateKey accepts either wire form handled by
// ParsePrivateKey.
func Sign(method, url string, body interface{}, appID, privateKey string) (string, error) {
	key, err := ParsePrivateKey(privateKey)
	if err != nil {
		return "", err
	}
	return SignWithKey(method, url, body, appID, key)
}

// SignWithKey is Sign for an already-parsed key.
func SignWithKey(method, url string, body interface{}, appID string, key *ecdsa.PrivateKey) (string, error) {
	payload, err := BuildPayload(method, url, body, appID)
	if err != nil {
		return "", err
	}

	canonical, err := Canonicalize(payload)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize authorization payload: %w", err)
	}

	digest := sha256.Sum256(canonical)
	signature, err := ecdsa.SignASN1(rand.Reader, key, digest[:])
	if err != nil {
		return "", fmt.Errorf("failed to sign authorization payload: %w", err)
	}

	return base64.StdEncoding.EncodeToString(signature), nil
}
