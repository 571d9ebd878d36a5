// Package testpb builds the test schemas used across protomap's tests.
//
// The schemas are assembled from descriptor protos at init time and exposed
// as dynamicpb types, so no generated code is needed:
//
//	syntax = "proto3";
//	package protomap.test;
//
//	enum MyEnum { FOO = 0; BAR = 1; BAZ = 2; }
//
//	message NestedMessage {
//	  string str_val = 1;
//	  google.protobuf.Timestamp ts_val = 2;
//	}
//
//	message Message {
//	  double double_val = 1;   ... sfixed64 sfixed64_val = 12;
//	  bool bool_val = 13;
//	  string string_val = 14;
//	  bytes bytes_val = 15;
//	  MyEnum enum_val = 16;
//	  google.protobuf.Timestamp timestamp_val = 17;
//	  repeated int32 repeated_int32_val = 18;
//	  repeated NestedMessage repeated_msg_val = 19;
//	  map<string, NestedMessage> str_to_msg_map = 20;
//	  NestedMessage nested_val = 21;
//	  map<int32, string> int_to_str_map = 22;
//	  repeated MyEnum repeated_enum_val = 23;
//	  google.protobuf.Duration duration_val = 24;
//	  optional int32 optional_int32_val = 25;
//	  repeated bytes repeated_bytes_val = 26;
//	  map<string, bytes> str_to_bytes_map = 27;
//	  map<string, MyEnum> str_to_enum_map = 28;
//	  map<bool, string> bool_to_str_map = 29;
//	  oneof choice { string choice_str = 30; NestedMessage choice_msg = 31; }
//	}
//
// and a proto2 file with explicit defaults and extensions:
//
//	enum Color { RED = 1; GREEN = 2; }
//	message Extendable {
//	  optional string name = 1 [default = "anon"];
//	  optional int32 count = 2;
//	  repeated string tags = 3;
//	  optional Color color = 4 [default = GREEN];
//	  extensions 100 to 199;
//	}
//	extend Extendable {
//	  optional int32 ext_count = 100;
//	  optional string ext_note = 101;
//	  repeated string ext_tags = 102;
//	}
package testpb

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
	_ "google.golang.org/protobuf/types/known/durationpb"
	_ "google.golang.org/protobuf/types/known/timestamppb"
)

// Full names of the test types.
const (
	MessageName    protoreflect.FullName = "protomap.test.Message"
	NestedName     protoreflect.FullName = "protomap.test.NestedMessage"
	ExtendableName protoreflect.FullName = "protomap.test.Extendable"
	MyEnumName     protoreflect.FullName = "protomap.test.MyEnum"
)

// MyEnum values.
const (
	Foo protoreflect.EnumNumber = 0
	Bar protoreflect.EnumNumber = 1
	Baz protoreflect.EnumNumber = 2
)

// Types resolves every test message, enum and extension.
var Types = new(protoregistry.Types)

func init() {
	for _, fdp := range []*descriptorpb.FileDescriptorProto{messageFile(), extFile()} {
		fd, err := protodesc.NewFile(fdp, protoregistry.GlobalFiles)
		if err != nil {
			panic(fmt.Sprintf("testpb: %s: %v", fdp.GetName(), err))
		}
		register(fd.Messages(), fd.Enums())
		exts := fd.Extensions()
		for i := 0; i < exts.Len(); i++ {
			if err := Types.RegisterExtension(dynamicpb.NewExtensionType(exts.Get(i))); err != nil {
				panic(err)
			}
		}
	}
}

func register(msgs protoreflect.MessageDescriptors, enums protoreflect.EnumDescriptors) {
	for i := 0; i < enums.Len(); i++ {
		if err := Types.RegisterEnum(dynamicpb.NewEnumType(enums.Get(i))); err != nil {
			panic(err)
		}
	}
	for i := 0; i < msgs.Len(); i++ {
		md := msgs.Get(i)
		if err := Types.RegisterMessage(dynamicpb.NewMessageType(md)); err != nil {
			panic(err)
		}
		register(md.Messages(), md.Enums())
	}
}

// Type returns the message type registered under name.
func Type(name protoreflect.FullName) protoreflect.MessageType {
	mt, err := Types.FindMessageByName(name)
	if err != nil {
		panic(err)
	}
	return mt
}

// New returns an empty message of the named type.
func New(name protoreflect.FullName) protoreflect.Message {
	return Type(name).New()
}

// Extension returns the extension type registered under its short name.
func Extension(name string) protoreflect.ExtensionType {
	xt, err := Types.FindExtensionByName(protoreflect.FullName("protomap.test." + name))
	if err != nil {
		panic(err)
	}
	return xt
}

// Field returns the descriptor of the named field of m.
func Field(m protoreflect.Message, name string) protoreflect.FieldDescriptor {
	fd := m.Descriptor().Fields().ByName(protoreflect.Name(name))
	if fd == nil {
		panic(fmt.Sprintf("testpb: %s has no field %q", m.Descriptor().FullName(), name))
	}
	return fd
}

// Set assigns a scalar, enum or message value to the named field.
func Set(m protoreflect.Message, name string, v any) {
	m.Set(Field(m, name), protoreflect.ValueOf(v))
}

// SetTime assigns t to the named google.protobuf.Timestamp field.
func SetTime(m protoreflect.Message, name string, t time.Time) {
	ts := m.Mutable(Field(m, name)).Message()
	Set(ts, "seconds", t.Unix())
	Set(ts, "nanos", int32(t.Nanosecond()))
}

// SetDuration assigns d to the named google.protobuf.Duration field.
func SetDuration(m protoreflect.Message, name string, d time.Duration) {
	pd := m.Mutable(Field(m, name)).Message()
	Set(pd, "seconds", int64(d/time.Second))
	Set(pd, "nanos", int32(d%time.Second))
}

// Nested returns a NestedMessage with str_val set and, if t is non-zero,
// ts_val.
func Nested(str string, t time.Time) protoreflect.Message {
	n := New(NestedName)
	Set(n, "str_val", str)
	if !t.IsZero() {
		SetTime(n, "ts_val", t)
	}
	return n
}

// SampleTime is the instant used by Sample.
var SampleTime = time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC)

// Sample returns a Message with every kind of field populated.
func Sample() proto.Message {
	m := New(MessageName)
	Set(m, "double_val", 3.14)
	Set(m, "float_val", float32(2.72))
	Set(m, "int32_val", int32(42))
	Set(m, "int64_val", int64(4242))
	Set(m, "uint32_val", uint32(123))
	Set(m, "uint64_val", uint64(1234567))
	Set(m, "sint32_val", int32(-42))
	Set(m, "sint64_val", int64(-4242))
	Set(m, "fixed32_val", uint32(999))
	Set(m, "fixed64_val", uint64(9999))
	Set(m, "sfixed32_val", int32(-999))
	Set(m, "sfixed64_val", int64(-9999))
	Set(m, "bool_val", true)
	Set(m, "string_val", "Hello")
	Set(m, "bytes_val", []byte("binary data"))
	Set(m, "enum_val", Bar)
	SetTime(m, "timestamp_val", SampleTime)
	SetDuration(m, "duration_val", 90*time.Second+5*time.Millisecond)

	ints := m.Mutable(Field(m, "repeated_int32_val")).List()
	for _, n := range []int32{1, 2, 3, 100} {
		ints.Append(protoreflect.ValueOfInt32(n))
	}

	msgs := m.Mutable(Field(m, "repeated_msg_val")).List()
	msgs.Append(protoreflect.ValueOfMessage(Nested("nested1", SampleTime)))
	msgs.Append(protoreflect.ValueOfMessage(Nested("nested2", SampleTime.Add(24*time.Hour))))

	byKey := m.Mutable(Field(m, "str_to_msg_map")).Map()
	byKey.Set(protoreflect.ValueOfString("key1").MapKey(), protoreflect.ValueOfMessage(Nested("map_value1", SampleTime)))
	byKey.Set(protoreflect.ValueOfString("key2").MapKey(), protoreflect.ValueOfMessage(Nested("map_value2", time.Time{})))

	byInt := m.Mutable(Field(m, "int_to_str_map")).Map()
	byInt.Set(protoreflect.ValueOfInt32(7).MapKey(), protoreflect.ValueOfString("seven"))
	byInt.Set(protoreflect.ValueOfInt32(-1).MapKey(), protoreflect.ValueOfString("minus one"))

	enums := m.Mutable(Field(m, "repeated_enum_val")).List()
	enums.Append(protoreflect.ValueOfEnum(Baz))
	enums.Append(protoreflect.ValueOfEnum(Foo))

	Set(m, "optional_int32_val", int32(0))
	Set(m, "nested_val", Nested("inner", time.Time{}))
	Set(m, "choice_str", "picked")
	return m.Interface()
}

func messageFile() *descriptorpb.FileDescriptorProto {
	const pkg = ".protomap.test."
	nested := pkg + "NestedMessage"
	myEnum := pkg + "MyEnum"

	optional := field("optional_int32_val", 25, descriptorpb.FieldDescriptorProto_TYPE_INT32)
	optional.OneofIndex = proto.Int32(1)
	optional.Proto3Optional = proto.Bool(true)

	choiceStr := field("choice_str", 30, descriptorpb.FieldDescriptorProto_TYPE_STRING)
	choiceStr.OneofIndex = proto.Int32(0)
	choiceMsg := ref(field("choice_msg", 31, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE), nested)
	choiceMsg.OneofIndex = proto.Int32(0)

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("protomap/test/message.proto"),
		Package: proto.String("protomap.test"),
		Syntax:  proto.String("proto3"),
		Dependency: []string{
			"google/protobuf/timestamp.proto",
			"google/protobuf/duration.proto",
		},
		EnumType: []*descriptorpb.EnumDescriptorProto{
			enumType("MyEnum", "FOO", "BAR", "BAZ"),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("NestedMessage"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("str_val", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					ref(field("ts_val", 2, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE), ".google.protobuf.Timestamp"),
				},
			},
			{
				Name: proto.String("Message"),
				Field: []*descriptorpb.FieldDescriptorProto{
					field("double_val", 1, descriptorpb.FieldDescriptorProto_TYPE_DOUBLE),
					field("float_val", 2, descriptorpb.FieldDescriptorProto_TYPE_FLOAT),
					field("int32_val", 3, descriptorpb.FieldDescriptorProto_TYPE_INT32),
					field("int64_val", 4, descriptorpb.FieldDescriptorProto_TYPE_INT64),
					field("uint32_val", 5, descriptorpb.FieldDescriptorProto_TYPE_UINT32),
					field("uint64_val", 6, descriptorpb.FieldDescriptorProto_TYPE_UINT64),
					field("sint32_val", 7, descriptorpb.FieldDescriptorProto_TYPE_SINT32),
					field("sint64_val", 8, descriptorpb.FieldDescriptorProto_TYPE_SINT64),
					field("fixed32_val", 9, descriptorpb.FieldDescriptorProto_TYPE_FIXED32),
					field("fixed64_val", 10, descriptorpb.FieldDescriptorProto_TYPE_FIXED64),
					field("sfixed32_val", 11, descriptorpb.FieldDescriptorProto_TYPE_SFIXED32),
					field("sfixed64_val", 12, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64),
					field("bool_val", 13, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
					field("string_val", 14, descriptorpb.FieldDescriptorProto_TYPE_STRING),
					field("bytes_val", 15, descriptorpb.FieldDescriptorProto_TYPE_BYTES),
					ref(field("enum_val", 16, descriptorpb.FieldDescriptorProto_TYPE_ENUM), myEnum),
					ref(field("timestamp_val", 17, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE), ".google.protobuf.Timestamp"),
					repeated(field("repeated_int32_val", 18, descriptorpb.FieldDescriptorProto_TYPE_INT32)),
					repeated(ref(field("repeated_msg_val", 19, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE), nested)),
					mapField("str_to_msg_map", 20, "StrToMsgMapEntry"),
					ref(field("nested_val", 21, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE), nested),
					mapField("int_to_str_map", 22, "IntToStrMapEntry"),
					repeated(ref(field("repeated_enum_val", 23, descriptorpb.FieldDescriptorProto_TYPE_ENUM), myEnum)),
					ref(field("duration_val", 24, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE), ".google.protobuf.Duration"),
					optional,
					repeated(field("repeated_bytes_val", 26, descriptorpb.FieldDescriptorProto_TYPE_BYTES)),
					mapField("str_to_bytes_map", 27, "StrToBytesMapEntry"),
					mapField("str_to_enum_map", 28, "StrToEnumMapEntry"),
					mapField("bool_to_str_map", 29, "BoolToStrMapEntry"),
					choiceStr,
					choiceMsg,
				},
				NestedType: []*descriptorpb.DescriptorProto{
					mapEntry("StrToMsgMapEntry",
						field("key", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
						ref(field("value", 2, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE), nested)),
					mapEntry("IntToStrMapEntry",
						field("key", 1, descriptorpb.FieldDescriptorProto_TYPE_INT32),
						field("value", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING)),
					mapEntry("StrToBytesMapEntry",
						field("key", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
						field("value", 2, descriptorpb.FieldDescriptorProto_TYPE_BYTES)),
					mapEntry("StrToEnumMapEntry",
						field("key", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING),
						ref(field("value", 2, descriptorpb.FieldDescriptorProto_TYPE_ENUM), myEnum)),
					mapEntry("BoolToStrMapEntry",
						field("key", 1, descriptorpb.FieldDescriptorProto_TYPE_BOOL),
						field("value", 2, descriptorpb.FieldDescriptorProto_TYPE_STRING)),
				},
				OneofDecl: []*descriptorpb.OneofDescriptorProto{
					{Name: proto.String("choice")},
					{Name: proto.String("_optional_int32_val")},
				},
			},
		},
	}
}

func extFile() *descriptorpb.FileDescriptorProto {
	const extendable = ".protomap.test.Extendable"

	name := field("name", 1, descriptorpb.FieldDescriptorProto_TYPE_STRING)
	name.DefaultValue = proto.String("anon")
	color := ref(field("color", 4, descriptorpb.FieldDescriptorProto_TYPE_ENUM), ".protomap.test.Color")
	color.DefaultValue = proto.String("GREEN")

	extend := func(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
		f.Extendee = proto.String(extendable)
		return f
	}

	red := enumType("Color", "RED", "GREEN")
	red.Value[0].Number = proto.Int32(1)
	red.Value[1].Number = proto.Int32(2)

	return &descriptorpb.FileDescriptorProto{
		Name:     proto.String("protomap/test/ext.proto"),
		Package:  proto.String("protomap.test"),
		Syntax:   proto.String("proto2"),
		EnumType: []*descriptorpb.EnumDescriptorProto{red},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Extendable"),
				Field: []*descriptorpb.FieldDescriptorProto{
					name,
					field("count", 2, descriptorpb.FieldDescriptorProto_TYPE_INT32),
					repeated(field("tags", 3, descriptorpb.FieldDescriptorProto_TYPE_STRING)),
					color,
				},
				ExtensionRange: []*descriptorpb.DescriptorProto_ExtensionRange{
					{Start: proto.Int32(100), End: proto.Int32(200)},
				},
			},
		},
		Extension: []*descriptorpb.FieldDescriptorProto{
			extend(field("ext_count", 100, descriptorpb.FieldDescriptorProto_TYPE_INT32)),
			extend(field("ext_note", 101, descriptorpb.FieldDescriptorProto_TYPE_STRING)),
			extend(repeated(field("ext_tags", 102, descriptorpb.FieldDescriptorProto_TYPE_STRING))),
		},
	}
}

func field(name string, number int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func ref(f *descriptorpb.FieldDescriptorProto, typeName string) *descriptorpb.FieldDescriptorProto {
	f.TypeName = proto.String(typeName)
	return f
}

func repeated(f *descriptorpb.FieldDescriptorProto) *descriptorpb.FieldDescriptorProto {
	f.Label = descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum()
	return f
}

func mapField(name string, number int32, entry string) *descriptorpb.FieldDescriptorProto {
	return repeated(ref(field(name, number, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE), ".protomap.test.Message."+entry))
}

func mapEntry(name string, key, value *descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name:    proto.String(name),
		Field:   []*descriptorpb.FieldDescriptorProto{key, value},
		Options: &descriptorpb.MessageOptions{MapEntry: proto.Bool(true)},
	}
}

func enumType(name string, values ...string) *descriptorpb.EnumDescriptorProto {
	ed := &descriptorpb.EnumDescriptorProto{Name: proto.String(name)}
	for i, v := range values {
		ed.Value = append(ed.Value, &descriptorpb.EnumValueDescriptorProto{
			Name:   proto.String(v),
			Number: proto.Int32(int32(i)),
		})
	}
	return ed
}
