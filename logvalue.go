package protomap

import (
	"log/slog"

	"google.golang.org/protobuf/proto"
)

// LogValue wraps m so that slog renders it as a group of its fields.
// Conversion is deferred until the record is handled. Enum labels and
// base64 bytes are the defaults; opts are applied after them.
//
//	logger.Info("request received", "req", protomap.LogValue(req))
func LogValue(m proto.Message, opts ...Option) slog.LogValuer {
	base := []Option{WithEnumLabels(), WithCodec(KindBytes, Base64)}
	return loggable{msg: m, conv: New(append(base, opts...)...)}
}

type loggable struct {
	msg  proto.Message
	conv *Converter
}

func (l loggable) LogValue() slog.Value {
	data, err := l.conv.ToMap(l.msg)
	if err != nil {
		return slog.StringValue("!ERROR: " + err.Error())
	}
	return mappingValue(data)
}

func mappingValue(data map[string]any) slog.Value {
	attrs := make([]slog.Attr, 0, len(data))
	for _, k := range sortedKeys(data) {
		attrs = append(attrs, slog.Attr{Key: k, Value: anyValue(data[k])})
	}
	return slog.GroupValue(attrs...)
}

func anyValue(v any) slog.Value {
	if nested, ok := v.(map[string]any); ok {
		return mappingValue(nested)
	}
	return slog.AnyValue(v)
}
