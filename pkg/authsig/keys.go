package authsig

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"
)

// TaggedKeyPrefix marks the compact key form: the prefix followed by
// base64-encoded PKCS#8 DER. The alternative accepted form is PEM.
const TaggedKeyPrefix = "wallet-auth:"

// KeyFormatError reports unparseable private key material. It is raised
// before any network call is attempted.
type KeyFormatError struct {
	Reason string
	Err    error
}

func (e *KeyFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid authorization key: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid authorization key: %s", e.Reason)
}

func (e *KeyFormatError) Unwrap() error {
	return e.Err
}

// ParsePrivateKey accepts authorization key material in either accepted
// wire form (tagged base64 DER or PEM) and returns the P-256 key. Any
// other shape fails with *KeyFormatError.
func ParsePrivateKey(material string) (*ecdsa.PrivateKey, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, &KeyFormatError{Reason: "empty key material"}
	}

	if strings.HasPrefix(material, TaggedKeyPrefix) {
		der, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(material, TaggedKeyPrefix))
		if err != nil {
			return nil, &KeyFormatError{Reason: "tagged key is not valid base64", Err: err}
		}
		return parseDER(der)
	}

	block, _ := pem.Decode([]byte(material))
	if block == nil {
		return nil, &KeyFormatError{Reason: "key is neither tagged base64 DER nor PEM"}
	}

	switch block.Type {
	case "EC PRIVATE KEY":
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, &KeyFormatError{Reason: "failed to parse EC private key", Err: err}
		}
		return checkCurve(key)
	default:
		return parseDER(block.Bytes)
	}
}

func parseDER(der []byte) (*ecdsa.PrivateKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, &KeyFormatError{Reason: "failed to parse PKCS#8 private key", Err: err}
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, &KeyFormatError{Reason: "key is not an ECDSA key"}
	}
	return checkCurve(key)
}

func checkCurve(key *ecdsa.PrivateKey) (*ecdsa.PrivateKey, error) {
	if key.Curve != elliptic.P256() {
		return nil, &KeyFormatError{Reason: fmt.Sprintf("unsupported curve %s, want P-256", key.Curve.Params().Name)}
	}
	return key, nil
}

// EncodeTagged serializes a P-256 private key into the tagged base64 DER
// wire form.
func EncodeTagged(key *ecdsa.PrivateKey) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", fmt.Errorf("failed to marshal private key: %w", err)
	}
	return TaggedKeyPrefix + base64.StdEncoding.EncodeToString(der), nil
}

// EncodePublicKeyPEM serializes the public half for registration with the
// custodial service.
func EncodePublicKeyPEM(key *ecdsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}
