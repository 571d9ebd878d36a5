package protomap

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Sentinel errors for conversion failures.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrUnknownField indicates a mapping key with no matching field on the
	// target message.
	ErrUnknownField = errors.New("unknown field")

	// ErrTypeMismatch indicates a mapping value that cannot be assigned to
	// the field it names.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidEnum indicates an enum label that does not resolve to a
	// declared value.
	ErrInvalidEnum = errors.New("invalid enum value")

	// ErrNilMessage indicates a nil proto.Message argument.
	ErrNilMessage = errors.New("proto message is nil")
)

// UnknownFieldError is returned by reverse conversion when a mapping key does
// not name a field (or extension number) of the target message.
type UnknownFieldError struct {
	// Message is the full name of the message being built.
	Message protoreflect.FullName

	// Name is the offending mapping key.
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("%s has no field %q", e.Message, e.Name)
}

// Is makes errors.Is(err, ErrUnknownField) match.
func (e *UnknownFieldError) Is(target error) bool {
	return target == ErrUnknownField
}

// FieldError wraps a failure with the operation and the path of the field
// being converted. Errors returned by caller-supplied override functions are
// carried unchanged in Err.
type FieldError struct {
	// Op is the operation that failed ("ToMap" or "ToMessage").
	Op string

	// Path locates the field, e.g. "str_to_msg_map[a].ts_val".
	Path string

	// Err is the underlying error.
	Err error
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("protomap: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("protomap: %s: %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

func mismatch(fd protoreflect.FieldDescriptor, v any) error {
	return fmt.Errorf("%w: cannot assign %T to %s field", ErrTypeMismatch, v, KindOf(fd))
}
