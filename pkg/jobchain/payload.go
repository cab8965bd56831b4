package jobchain

import (
	"bytes"
	"encoding/json"
)

// Payload is the structured form of a memo's content: a declared payload
// type plus its raw data.
type Payload struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode unmarshals the payload data into v.
func (p *Payload) Decode(v interface{}) error {
	return json.Unmarshal(p.Data, v)
}

// ParsePayload attempts to read content as a structured payload. Content
// that is not JSON, or JSON without a declared type, simply has no
// structured payload; that is not an error.
func ParsePayload(content string) (*Payload, bool) {
	trimmed := bytes.TrimSpace([]byte(content))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var payload Payload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, false
	}
	if payload.Type == "" {
		return nil, false
	}
	return &payload, true
}

// StructuredPayload is the parse-on-access typed view over the memo's
// content.
func (m *Memo) StructuredPayload() (*Payload, bool) {
	return ParsePayload(m.Content)
}
