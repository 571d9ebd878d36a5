package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/zero-day-ai/protomap"
)

// wideKinds hold values a float64 cannot represent exactly.
var wideKinds = []protomap.Kind{
	protomap.KindInt64,
	protomap.KindUint64,
	protomap.KindSint64,
	protomap.KindFixed64,
	protomap.KindSfixed64,
}

// Struct converts messages to and from google.protobuf.Struct. 64-bit
// integers are carried as decimal strings since Struct numbers are doubles.
type Struct struct {
	conv *protomap.Converter
}

// NewStruct creates a Struct codec. opts are applied on top of the codec
// defaults.
func NewStruct(opts ...protomap.Option) *Struct {
	base := make([]protomap.Option, 0, len(wideKinds)+len(opts))
	for _, k := range wideKinds {
		base = append(base, protomap.WithCodec(k, protomap.Decimal))
	}
	return &Struct{conv: protomap.New(defaults(append(base, opts...))...)}
}

// ToStruct converts m into a Struct.
func (c *Struct) ToStruct(m proto.Message) (*structpb.Struct, error) {
	data, err := toMap(c.conv, m)
	if err != nil {
		return nil, err
	}
	s, err := structpb.NewStruct(data)
	if err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}
	return s, nil
}

// FromStruct sets the fields of m from s.
func (c *Struct) FromStruct(s *structpb.Struct, m proto.Message) error {
	return c.conv.Merge(m, s.AsMap())
}
