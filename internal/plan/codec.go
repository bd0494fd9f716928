package plan

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// EncodeJSON writes p as indented JSON. Equal plans encode to equal bytes.
func EncodeJSON(w io.Writer, p *Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode plan as JSON: %w", err)
	}
	return nil
}

// DecodeJSON reads and validates a plan written by EncodeJSON.
func DecodeJSON(r io.Reader) (*Plan, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var p Plan
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode plan JSON: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return &p, nil
}

// MarshalMsgpack encodes p in the compact cache format.
func MarshalMsgpack(p *Plan) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("failed to encode plan as msgpack: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalMsgpack decodes and validates a plan written by MarshalMsgpack.
func UnmarshalMsgpack(data []byte) (*Plan, error) {
	var p Plan
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode plan msgpack: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return &p, nil
}

// Digest returns the hex sha256 of the JSON encoding of p.
func (p *Plan) Digest() (string, error) {
	h := sha256.New()
	if err := EncodeJSON(h, p); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
