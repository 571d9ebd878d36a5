// Package codec serializes protobuf messages through their generic mapping.
//
// Each codec converts a message with protomap.ToMap, renders the mapping in
// its wire format, and on the way back decodes the document into a mapping
// and merges it with protomap.Merge. Bytes fields travel as standard base64
// and well-known Timestamp and Duration values as RFC 3339 and Go duration
// strings. Options passed to a codec are applied after these defaults.
package codec

import (
	"time"

	"github.com/zero-day-ai/protomap"
)

// defaults are the options every codec starts from.
func defaults(extra []protomap.Option) []protomap.Option {
	opts := []protomap.Option{protomap.WithCodec(protomap.KindBytes, protomap.Base64)}
	return append(opts, extra...)
}

// textual rewrites the time values produced by well-known type conversion
// into strings that every wire format can carry.
func textual(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case time.Duration:
		return x.String()
	case map[string]any:
		for k, e := range x {
			x[k] = textual(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = textual(e)
		}
		return x
	default:
		return v
	}
}

func toMap(conv *protomap.Converter, m any) (map[string]any, error) {
	msg, err := message(m)
	if err != nil {
		return nil, err
	}
	data, err := conv.ToMap(msg)
	if err != nil {
		return nil, err
	}
	textual(data)
	return data, nil
}
