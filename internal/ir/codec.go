package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// EncodePayload serializes a resource into payload column text.
func EncodePayload(r Resource) (string, error) {
	data, err := MarshalCanonical(map[string]any(r))
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	return string(data), nil
}

// DecodePayload parses payload column text back into a resource.
// Numbers decode as json.Number so integers above 2^53 keep their precision.
func DecodePayload(text string) (Resource, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()

	var r Resource
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("decode payload: trailing data after object")
	}
	if r == nil {
		r = Resource{}
	}
	return r, nil
}

// DecodeValue parses any JSON text with the same number handling as
// DecodePayload.
func DecodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}
