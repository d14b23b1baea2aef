// Package rpcjson lets Connect handlers exchange plain Go structs as JSON.
package rpcjson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

const Name = "json"

// Codec marshals messages with encoding/json. It replaces Connect's default
// JSON codec, which only accepts protobuf messages.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return Name }

func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", msg, err)
	}
	return data, nil
}

// Unmarshal rejects unknown fields. An empty body decodes to the zero message.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(msg); err != nil {
		return fmt.Errorf("failed to unmarshal into %T: %w", msg, err)
	}
	return nil
}

// WithCodec installs the codec on a handler or client
func WithCodec() connect.Option {
	return connect.WithCodec(Codec{})
}
