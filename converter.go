package protomap

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Converter converts messages to generic mappings and back with a fixed set
// of options. A Converter is immutable and safe for concurrent use.
type Converter struct {
	opts *options
}

// New creates a Converter configured by opts.
func New(opts ...Option) *Converter {
	return &Converter{opts: newOptions(opts)}
}

// ToMap converts m into a mapping from field name to converted value.
//
// Fields are visited in declaration order. Unset singular fields are omitted
// (unless WithDefaults is set for scalars); repeated and map fields are
// always present, as []any and map[string]any. Nested messages become nested
// mappings. Leaf values pass through the encoder registered for their Kind.
func (c *Converter) ToMap(m proto.Message) (map[string]any, error) {
	if m == nil {
		return nil, &FieldError{Op: opToMap, Err: ErrNilMessage}
	}
	w := &walker{op: opToMap, opts: c.opts}
	return w.encodeMessage(m.ProtoReflect())
}

// ToMessage builds a new message of type mt from data.
//
// Every key of data must name a field of mt (or be ExtensionKey); otherwise
// an *UnknownFieldError is returned unless the Converter is lenient. Fields
// missing from data keep their default value. At most one member of a oneof
// may carry a non-nil value; a second one fails with ErrTypeMismatch. data
// is not modified.
func (c *Converter) ToMessage(mt protoreflect.MessageType, data map[string]any) (proto.Message, error) {
	if mt == nil {
		return nil, &FieldError{Op: opToMessage, Err: fmt.Errorf("message type: %w", ErrNilMessage)}
	}
	m := mt.New()
	w := &walker{op: opToMessage, opts: c.opts}
	if err := w.decodeMessage(m, data); err != nil {
		return nil, err
	}
	return m.Interface(), nil
}

// Merge sets the fields named in data on dst. On error dst may have been
// partially modified and should be discarded.
func (c *Converter) Merge(dst proto.Message, data map[string]any) error {
	if dst == nil {
		return &FieldError{Op: opToMessage, Err: ErrNilMessage}
	}
	m := dst.ProtoReflect()
	if !m.IsValid() {
		return &FieldError{Op: opToMessage, Err: fmt.Errorf("read-only message: %w", ErrNilMessage)}
	}
	w := &walker{op: opToMessage, opts: c.opts}
	return w.decodeMessage(m, data)
}

// ToMap converts m with a Converter configured by opts.
func ToMap(m proto.Message, opts ...Option) (map[string]any, error) {
	return New(opts...).ToMap(m)
}

// ToMessage builds a message of type mt from data with a Converter
// configured by opts.
func ToMessage(mt protoreflect.MessageType, data map[string]any, opts ...Option) (proto.Message, error) {
	return New(opts...).ToMessage(mt, data)
}

// Merge sets the fields named in data on dst with a Converter configured by
// opts.
func Merge(dst proto.Message, data map[string]any, opts ...Option) error {
	return New(opts...).Merge(dst, data)
}

// Into builds a message of the generated type T from data.
//
//	fd, err := protomap.Into[*descriptorpb.FieldDescriptorProto](data)
func Into[T proto.Message](data map[string]any, opts ...Option) (T, error) {
	var zero T
	m, err := ToMessage(zero.ProtoReflect().Type(), data, opts...)
	if err != nil {
		return zero, err
	}
	return m.(T), nil
}
