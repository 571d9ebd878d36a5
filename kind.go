package protomap

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Kind is the symbolic tag of a field's value type. The first NumKinds values
// are the primitive kinds that can carry an override; KindMessage and KindMap
// are structural and always handled by recursion.
type Kind uint8

// Primitive kinds, usable as Overrides indices.
const (
	KindDouble Kind = iota
	KindFloat
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindSint32
	KindSint64
	KindFixed32
	KindFixed64
	KindSfixed32
	KindSfixed64
	KindBool
	KindString
	KindBytes
	KindEnum

	// NumKinds is the number of primitive kinds.
	NumKinds = int(KindEnum) + 1
)

// Structural kinds.
const (
	KindMessage Kind = iota + Kind(NumKinds)
	KindMap
)

var kindNames = [...]string{
	KindDouble:   "DOUBLE",
	KindFloat:    "FLOAT",
	KindInt32:    "INT32",
	KindInt64:    "INT64",
	KindUint32:   "UINT32",
	KindUint64:   "UINT64",
	KindSint32:   "SINT32",
	KindSint64:   "SINT64",
	KindFixed32:  "FIXED32",
	KindFixed64:  "FIXED64",
	KindSfixed32: "SFIXED32",
	KindSfixed64: "SFIXED64",
	KindBool:     "BOOL",
	KindString:   "STRING",
	KindBytes:    "BYTES",
	KindEnum:     "ENUM",
	KindMessage:  "MESSAGE",
	KindMap:      "MAP",
}

// String returns the upper-case tag name, e.g. "SFIXED64".
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Primitive reports whether k is one of the overridable leaf kinds.
func (k Kind) Primitive() bool {
	return int(k) < NumKinds
}

// ParseKind resolves a tag name such as "bytes" or "SINT32". Matching is
// case-insensitive.
func ParseKind(s string) (Kind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown field kind %q", s)
}

var protoKinds = map[protoreflect.Kind]Kind{
	protoreflect.DoubleKind:   KindDouble,
	protoreflect.FloatKind:    KindFloat,
	protoreflect.Int32Kind:    KindInt32,
	protoreflect.Int64Kind:    KindInt64,
	protoreflect.Uint32Kind:   KindUint32,
	protoreflect.Uint64Kind:   KindUint64,
	protoreflect.Sint32Kind:   KindSint32,
	protoreflect.Sint64Kind:   KindSint64,
	protoreflect.Fixed32Kind:  KindFixed32,
	protoreflect.Fixed64Kind:  KindFixed64,
	protoreflect.Sfixed32Kind: KindSfixed32,
	protoreflect.Sfixed64Kind: KindSfixed64,
	protoreflect.BoolKind:     KindBool,
	protoreflect.StringKind:   KindString,
	protoreflect.BytesKind:    KindBytes,
	protoreflect.EnumKind:     KindEnum,
	protoreflect.MessageKind:  KindMessage,
	protoreflect.GroupKind:    KindMessage,
}

// KindOf classifies a field. Map fields report KindMap, message and group
// fields report KindMessage. For a repeated field the element kind is
// returned.
func KindOf(fd protoreflect.FieldDescriptor) Kind {
	if fd.IsMap() {
		return KindMap
	}
	return protoKinds[fd.Kind()]
}

// Cardinality describes how many values a field holds.
type Cardinality uint8

const (
	Singular Cardinality = iota
	Repeated
	Mapped
)

func (c Cardinality) String() string {
	switch c {
	case Singular:
		return "singular"
	case Repeated:
		return "repeated"
	case Mapped:
		return "map"
	default:
		return fmt.Sprintf("Cardinality(%d)", uint8(c))
	}
}

// CardinalityOf reports whether fd is singular, repeated or a map.
func CardinalityOf(fd protoreflect.FieldDescriptor) Cardinality {
	switch {
	case fd.IsMap():
		return Mapped
	case fd.IsList():
		return Repeated
	default:
		return Singular
	}
}
