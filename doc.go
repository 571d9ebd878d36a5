// Package protomap converts Protocol Buffers messages to generic Go mappings
// and back.
//
// A mapping is a map[string]any keyed by field name. Scalars become their
// natural Go values, repeated fields become []any, map fields become
// map[string]any and nested messages become nested mappings. The reverse
// direction accepts the same shapes, plus the looser ones a JSON or YAML
// decoder produces (float64 and json.Number for integers, []any for lists).
//
// # Converting
//
//	data, err := protomap.ToMap(msg, protomap.WithEnumLabels())
//	...
//	out, err := protomap.ToMessage(msg.ProtoReflect().Type(), data)
//
// A Converter holds a fixed option set and is safe for concurrent use:
//
//	conv := protomap.New(
//		protomap.WithCodec(protomap.KindBytes, protomap.Base64),
//		protomap.WithLenient(),
//	)
//
// # Overrides
//
// Every leaf value passes through an optional per-Kind function. Encoders run
// on the forward path and decoders on the reverse path; a Codec pairs the two.
// The built-in codecs are Base64, Base64URL, Hex and Decimal, and further
// codecs can be registered by name with RegisterCodec.
//
// # Errors
//
// Conversion failures are returned as *FieldError carrying the path of the
// offending field. The sentinels ErrUnknownField, ErrTypeMismatch,
// ErrInvalidEnum and ErrNilMessage match with errors.Is.
package protomap
