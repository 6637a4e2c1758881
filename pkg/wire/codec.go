// Package wire holds hand-rolled protobuf codecs for the
// inference.GRPCInferenceService message types. The client encodes exactly
// the fields it uses, with the field numbers of the experimental v2 service
// definition, so payloads stay byte-compatible with servers built from the
// upstream proto. Unknown response fields are skipped.
package wire

import (
	"fmt"
)

// Marshaler is implemented by request messages.
type Marshaler interface {
	MarshalWire() ([]byte, error)
}

// Unmarshaler is implemented by response messages.
type Unmarshaler interface {
	UnmarshalWire(data []byte) error
}

// Codec is a grpc encoding.Codec carrying wire messages. It names itself
// "proto" so calls go out with the standard application/grpc+proto
// content-type the server expects.
type Codec struct{}

func (Codec) Name() string {
	return "proto"
}

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Marshaler)
	if !ok {
		return nil, fmt.Errorf("wire: cannot marshal message of type %T", v)
	}
	return m.MarshalWire()
}

func (Codec) Unmarshal(data []byte, v any) error {
	u, ok := v.(Unmarshaler)
	if !ok {
		return fmt.Errorf("wire: cannot unmarshal into message of type %T", v)
	}
	return u.UnmarshalWire(data)
}
