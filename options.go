package protomap

import (
	"log/slog"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
)

// Option configures a Converter or a single conversion call.
type Option func(*options)

// options holds the settings shared by both conversion directions.
type options struct {
	encoders Overrides
	decoders Overrides

	enumLabels     bool
	lowercaseEnums bool
	withDefaults   bool
	jsonNames      bool
	lenient        bool
	ignoreNull     bool
	wellKnown      bool

	fieldFilter func(protoreflect.FieldDescriptor) bool
	resolver    protoregistry.ExtensionTypeResolver
	logger      *slog.Logger
}

func newOptions(opts []Option) *options {
	o := &options{
		wellKnown: true,
		resolver:  protoregistry.GlobalTypes,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithEncoders sets the forward (message to mapping) override table.
// Non-nil entries replace any previously configured encoder for that kind.
func WithEncoders(enc Overrides) Option {
	return func(o *options) {
		for k, f := range enc {
			if f != nil {
				o.encoders[k] = f
			}
		}
	}
}

// WithDecoders sets the reverse (mapping to message) override table.
// Non-nil entries replace any previously configured decoder for that kind.
func WithDecoders(dec Overrides) Option {
	return func(o *options) {
		for k, f := range dec {
			if f != nil {
				o.decoders[k] = f
			}
		}
	}
}

// WithCodec installs c for kind in both directions. Structural kinds are
// ignored.
func WithCodec(kind Kind, c Codec) Option {
	return func(o *options) {
		if !kind.Primitive() {
			return
		}
		o.encoders[kind] = c.Encode
		o.decoders[kind] = c.Decode
	}
}

// WithEnumLabels renders enum values by their declared name instead of their
// number.
func WithEnumLabels() Option {
	return func(o *options) {
		o.enumLabels = true
	}
}

// WithLowercaseEnumLabels renders enum names in lower case. It implies
// WithEnumLabels.
func WithLowercaseEnumLabels() Option {
	return func(o *options) {
		o.enumLabels = true
		o.lowercaseEnums = true
	}
}

// WithDefaults emits unset singular scalar and enum fields with their default
// value. Singular message fields and oneof members are still omitted.
func WithDefaults() Option {
	return func(o *options) {
		o.withDefaults = true
	}
}

// WithJSONNames keys mappings by each field's JSON name. Reverse conversion
// accepts both names regardless of this setting.
func WithJSONNames() Option {
	return func(o *options) {
		o.jsonNames = true
	}
}

// WithLenient skips unknown mapping keys and unresolvable enum labels instead
// of failing.
func WithLenient() Option {
	return func(o *options) {
		o.lenient = true
	}
}

// WithIgnoreNull skips nil mapping values instead of rejecting them.
func WithIgnoreNull() Option {
	return func(o *options) {
		o.ignoreNull = true
	}
}

// WithoutWellKnownTypes treats google.protobuf.Timestamp and Duration as
// ordinary messages rather than time.Time and time.Duration.
func WithoutWellKnownTypes() Option {
	return func(o *options) {
		o.wellKnown = false
	}
}

// WithFieldFilter restricts forward conversion to fields accepted by keep.
func WithFieldFilter(keep func(protoreflect.FieldDescriptor) bool) Option {
	return func(o *options) {
		o.fieldFilter = keep
	}
}

// WithResolver sets the registry used to resolve extension numbers during
// reverse conversion. Defaults to protoregistry.GlobalTypes.
func WithResolver(r protoregistry.ExtensionTypeResolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolver = r
		}
	}
}

// WithLogger sets the logger used for debug output about skipped input.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
