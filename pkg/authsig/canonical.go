// Package authsig produces the detached signature that proves backend
// control of a wallet to the custodial signing service. The serialized
// payload is part of the wire contract: the remote verifier rebuilds the
// exact same bytes, so key order, whitespace and casing must all match.
package authsig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// requestPayload is the authorization envelope. Field names and the
// version constant must match the verifier.
const payloadVersion = 1

// appIDHeader is the header key carried inside the canonical payload.
const appIDHeader = "x-app-id"

// BuildPayload assembles the canonical authorization payload for an HTTP
// request. body may be nil, a raw JSON []byte/string, or any
// JSON-marshalable value; it is normalized before inclusion so the signed
// bytes never depend on the caller's original encoding.
func BuildPayload(method, url string, body interface{}, appID string) (map[string]interface{}, error) {
	normalized, err := normalize(body)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize request body: %w", err)
	}

	return map[string]interface{}{
		"version": json.Number(fmt.Sprintf("%d", payloadVersion)),
		"method":  strings.ToUpper(method),
		"url":     url,
		"body":    normalized,
		"headers": map[string]interface{}{
			appIDHeader: appID,
		},
	}, nil
}

// Canonicalize serializes a value to single-line JSON with every object's
// keys sorted alphabetically. Array element order is preserved. The result
// is deterministic and idempotent: canonicalizing the output again yields
// the same bytes.
func Canonicalize(v interface{}) ([]byte, error) {
	normalized, err := normalize(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, normalized); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// normalize converts a value into the generic JSON shape (maps, slices,
// json.Number, string, bool, nil) so canonical serialization sees uniform
// input. Numbers keep their literal form to avoid float round-trips.
func normalize(v interface{}) (interface{}, error) {
	var raw []byte
	switch val := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		raw = val
	case []byte:
		raw = val
	case string:
		raw = []byte(val)
	default:
		encoded, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		raw = encoded
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out interface{}
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return out, nil
}

func writeCanonical(buf *bytes.Buffer, v interface{}) error {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeScalar(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case []interface{}:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case json.Number:
		buf.WriteString(val.String())
		return nil
	default:
		return writeScalar(buf, val)
	}
}

func writeScalar(buf *bytes.Buffer, v interface{}) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(encoded)
	return nil
}
