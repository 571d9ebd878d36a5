package codec

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/zero-day-ai/protomap"
)

// GRPCName is the content subtype of the gRPC codec.
const GRPCName = "protomap-json"

// GRPC is a gRPC codec that puts the JSON form of messages on the wire.
// Clients select it with grpc.CallContentSubtype(GRPCName).
type GRPC struct {
	json *JSON
}

// NewGRPC creates a gRPC codec. opts are applied on top of the codec
// defaults.
func NewGRPC(opts ...protomap.Option) *GRPC {
	return &GRPC{json: NewJSON(opts...)}
}

// RegisterGRPC registers a codec built from opts with gRPC's global codec
// registry, replacing any codec registered under GRPCName.
func RegisterGRPC(opts ...protomap.Option) {
	encoding.RegisterCodec(NewGRPC(opts...))
}

// Name implements encoding.Codec.
func (c *GRPC) Name() string {
	return GRPCName
}

// Marshal implements encoding.Codec.
func (c *GRPC) Marshal(v any) ([]byte, error) {
	m, err := message(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	b, err := c.json.Marshal(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "marshal %T: %v", v, err)
	}
	return b, nil
}

// Unmarshal implements encoding.Codec.
func (c *GRPC) Unmarshal(data []byte, v any) error {
	m, err := message(v)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if err := c.json.Unmarshal(data, m); err != nil {
		return status.Errorf(codes.InvalidArgument, "unmarshal %T: %v", v, err)
	}
	return nil
}

var _ encoding.Codec = (*GRPC)(nil)
