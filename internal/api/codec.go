// Package api declares the sessionkeeper.v1 wire contract shared by the
// server and the client: messages, the JSON codec and the service
// descriptor.
package api

import (
	"encoding/json"
	"fmt"
)

// CodecName is sent as the gRPC content subtype (application/grpc+json).
const CodecName = "json"

// Codec marshals messages as JSON.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec marshal: %w", err)
	}
	return b, nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec unmarshal: %w", err)
	}
	return nil
}

func (Codec) Name() string {
	return CodecName
}
