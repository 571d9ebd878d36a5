package protomap

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/zero-day-ai/protomap/enum"
	"github.com/zero-day-ai/protomap/internal/testpb"
)

func get(t *testing.T, m proto.Message, name string) protoreflect.Value {
	t.Helper()
	r := m.ProtoReflect()
	return r.Get(testpb.Field(r, name))
}

func TestToMessage_Scalars(t *testing.T) {
	data := map[string]any{
		"double_val":   1.5,
		"float_val":    float32(2.5),
		"int32_val":    int32(-3),
		"int64_val":    int64(1 << 40),
		"uint32_val":   uint32(7),
		"uint64_val":   uint64(1 << 63),
		"sint32_val":   -4,
		"sint64_val":   int64(-5),
		"fixed32_val":  8,
		"fixed64_val":  uint64(9),
		"sfixed32_val": int8(-10),
		"sfixed64_val": -11,
		"bool_val":     true,
		"string_val":   "x",
		"bytes_val":    []byte("hi"),
		"enum_val":     2,
	}

	msg, err := ToMessage(testpb.Type(testpb.MessageName), data)
	require.NoError(t, err)

	assert.Equal(t, 1.5, get(t, msg, "double_val").Float())
	assert.Equal(t, 2.5, get(t, msg, "float_val").Float())
	assert.Equal(t, int64(-3), get(t, msg, "int32_val").Int())
	assert.Equal(t, int64(1<<40), get(t, msg, "int64_val").Int())
	assert.Equal(t, uint64(7), get(t, msg, "uint32_val").Uint())
	assert.Equal(t, uint64(1<<63), get(t, msg, "uint64_val").Uint())
	assert.Equal(t, int64(-4), get(t, msg, "sint32_val").Int())
	assert.Equal(t, int64(-5), get(t, msg, "sint64_val").Int())
	assert.Equal(t, uint64(8), get(t, msg, "fixed32_val").Uint())
	assert.Equal(t, uint64(9), get(t, msg, "fixed64_val").Uint())
	assert.Equal(t, int64(-10), get(t, msg, "sfixed32_val").Int())
	assert.Equal(t, int64(-11), get(t, msg, "sfixed64_val").Int())
	assert.True(t, get(t, msg, "bool_val").Bool())
	assert.Equal(t, "x", get(t, msg, "string_val").String())
	assert.Equal(t, []byte("hi"), get(t, msg, "bytes_val").Bytes())
	assert.Equal(t, testpb.Baz, get(t, msg, "enum_val").Enum())
}

func TestToMessage_DoesNotMutateInput(t *testing.T) {
	raw := []byte("hi")
	data := map[string]any{
		"bytes_val":          raw,
		"repeated_int32_val": []any{1, 2},
		"nested_val":         map[string]any{"str_val": "n"},
	}

	msg, err := ToMessage(testpb.Type(testpb.MessageName), data)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"bytes_val":          []byte("hi"),
		"repeated_int32_val": []any{1, 2},
		"nested_val":         map[string]any{"str_val": "n"},
	}, data)

	raw[0] = 'X'
	assert.Equal(t, []byte("hi"), get(t, msg, "bytes_val").Bytes(), "message must not alias input bytes")
}

func TestToMessage_AbsentFieldsKeepDefaults(t *testing.T) {
	msg, err := ToMessage(testpb.Type(testpb.MessageName), map[string]any{"string_val": "only"})
	require.NoError(t, err)

	r := msg.ProtoReflect()
	assert.False(t, r.Has(testpb.Field(r, "int32_val")))
	assert.False(t, r.Has(testpb.Field(r, "nested_val")))
	assert.Equal(t, 0, r.Get(testpb.Field(r, "repeated_int32_val")).List().Len())
	assert.Equal(t, 0, r.Get(testpb.Field(r, "str_to_msg_map")).Map().Len())
}

func TestToMessage_UnknownField(t *testing.T) {
	msg, err := ToMessage(testpb.Type(testpb.MessageName), map[string]any{"nonexistent_field": 1})
	require.Error(t, err)
	assert.Nil(t, msg)
	assert.True(t, errors.Is(err, ErrUnknownField))

	var ufe *UnknownFieldError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, testpb.MessageName, ufe.Message)
	assert.Equal(t, "nonexistent_field", ufe.Name)
}

func TestToMessage_UnknownNestedField(t *testing.T) {
	data := map[string]any{
		"repeated_msg_val": []any{
			map[string]any{"str_val": "ok"},
			map[string]any{"bad": 1},
		},
	}
	_, err := ToMessage(testpb.Type(testpb.MessageName), data)
	require.Error(t, err)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "ToMessage", fe.Op)
	assert.Equal(t, "repeated_msg_val[1].bad", fe.Path)

	var ufe *UnknownFieldError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, testpb.NestedName, ufe.Message)
}

func TestToMessage_UnknownFieldIsDeterministic(t *testing.T) {
	data := map[string]any{"zzz": 1, "aaa": 2, "mmm": 3}
	for i := 0; i < 20; i++ {
		_, err := ToMessage(testpb.Type(testpb.MessageName), data)
		var ufe *UnknownFieldError
		require.True(t, errors.As(err, &ufe))
		assert.Equal(t, "aaa", ufe.Name)
	}
}

func TestToMessage_Lenient(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	msg, err := ToMessage(testpb.Type(testpb.MessageName), map[string]any{
		"nonexistent_field": 123,
		"enum_val":          "NOT_A_VALUE",
		"string_val":        "kept",
	}, WithLenient(), WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t, "kept", get(t, msg, "string_val").String())
	assert.Equal(t, testpb.Foo, get(t, msg, "enum_val").Enum())
	assert.Contains(t, buf.String(), "skipping unknown field")
	assert.Contains(t, buf.String(), "nonexistent_field")
	assert.Contains(t, buf.String(), "unresolved enum label")
}

func TestToMessage_Null(t *testing.T) {
	data := map[string]any{"int32_val": nil, "float_val": 1.25}

	_, err := ToMessage(testpb.Type(testpb.MessageName), data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	msg, err := ToMessage(testpb.Type(testpb.MessageName), data, WithIgnoreNull())
	require.NoError(t, err)
	r := msg.ProtoReflect()
	assert.False(t, r.Has(testpb.Field(r, "int32_val")))
	assert.Equal(t, 1.25, r.Get(testpb.Field(r, "float_val")).Float())

	msg, err = ToMessage(testpb.Type(testpb.MessageName), map[string]any{
		"repeated_int32_val": []any{1, nil, 3},
		"nested_val":         nil,
	}, WithIgnoreNull())
	require.NoError(t, err)
	assert.Equal(t, 2, get(t, msg, "repeated_int32_val").List().Len())
}

func TestToMessage_TypeMismatch(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		path string
	}{
		{name: "string for int", data: map[string]any{"int32_val": "x"}, path: "int32_val"},
		{name: "int32 overflow", data: map[string]any{"int32_val": int64(1) << 40}, path: "int32_val"},
		{name: "fractional float for int", data: map[string]any{"int64_val": 3.5}, path: "int64_val"},
		{name: "negative for uint", data: map[string]any{"uint32_val": -1}, path: "uint32_val"},
		{name: "uint32 overflow", data: map[string]any{"fixed32_val": uint64(1) << 33}, path: "fixed32_val"},
		{name: "int for bool", data: map[string]any{"bool_val": 1}, path: "bool_val"},
		{name: "bytes for string", data: map[string]any{"string_val": []byte("x")}, path: "string_val"},
		{name: "string for bytes", data: map[string]any{"bytes_val": "aGk="}, path: "bytes_val"},
		{name: "scalar for message", data: map[string]any{"nested_val": "n"}, path: "nested_val"},
		{name: "scalar for list", data: map[string]any{"repeated_int32_val": 5}, path: "repeated_int32_val"},
		{name: "bytes for list", data: map[string]any{"repeated_int32_val": []byte{1}}, path: "repeated_int32_val"},
		{name: "list for map", data: map[string]any{"str_to_msg_map": []any{}}, path: "str_to_msg_map"},
		{name: "bad map key", data: map[string]any{"int_to_str_map": map[string]any{"x": "y"}}, path: "int_to_str_map[x]"},
		{name: "bad list element", data: map[string]any{"repeated_int32_val": []any{1, "two"}}, path: "repeated_int32_val[1]"},
		{name: "bad timestamp", data: map[string]any{"str_to_msg_map": map[string]any{"a": map[string]any{"ts_val": "yesterday"}}}, path: "str_to_msg_map[a].ts_val"},
		{name: "float32 overflow", data: map[string]any{"float_val": 1e300}, path: "float_val"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToMessage(testpb.Type(testpb.MessageName), tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTypeMismatch), err.Error())

			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.path, fe.Path)
		})
	}
}

func TestToMessage_Oneof(t *testing.T) {
	msg, err := ToMessage(testpb.Type(testpb.MessageName), map[string]any{"choice_str": "picked"})
	require.NoError(t, err)
	assert.Equal(t, "picked", get(t, msg, "choice_str").String())

	data := map[string]any{
		"choice_str": "x",
		"choice_msg": map[string]any{"str_val": "y"},
	}
	_, err = ToMessage(testpb.Type(testpb.MessageName), data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	assert.Contains(t, err.Error(), "choice_msg")

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "choice_str", fe.Path)

	// A null member does not claim the oneof.
	data["choice_str"] = nil
	msg, err = ToMessage(testpb.Type(testpb.MessageName), data, WithIgnoreNull())
	require.NoError(t, err)
	choice := get(t, msg, "choice_msg").Message()
	assert.Equal(t, "y", choice.Get(testpb.Field(choice, "str_val")).String())
}

func TestToMessage_NumericCoercion(t *testing.T) {
	data := map[string]any{
		"int32_val":  3.0,
		"int64_val":  json.Number("9007199254740993"),
		"uint64_val": json.Number("18446744073709551615"),
		"double_val": json.Number("2.5"),
		"float_val":  7,
	}
	msg, err := ToMessage(testpb.Type(testpb.MessageName), data)
	require.NoError(t, err)

	assert.Equal(t, int64(3), get(t, msg, "int32_val").Int())
	assert.Equal(t, int64(9007199254740993), get(t, msg, "int64_val").Int())
	assert.Equal(t, uint64(18446744073709551615), get(t, msg, "uint64_val").Uint())
	assert.Equal(t, 2.5, get(t, msg, "double_val").Float())
	assert.Equal(t, 7.0, get(t, msg, "float_val").Float())
}

func TestToMessage_Enums(t *testing.T) {
	enum.Clear()
	t.Cleanup(enum.Clear)
	enum.Register(string(testpb.MyEnumName), map[string]string{"b": "BAZ"})

	tests := []struct {
		name  string
		value any
		want  protoreflect.EnumNumber
	}{
		{"number", 1, testpb.Bar},
		{"int32", int32(2), testpb.Baz},
		{"label", "BAR", testpb.Bar},
		{"lowercase label", "bar", testpb.Bar},
		{"alias", "B", testpb.Baz},
		{"undeclared number", 42, protoreflect.EnumNumber(42)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ToMessage(testpb.Type(testpb.MessageName), map[string]any{"enum_val": tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.want, get(t, msg, "enum_val").Enum())
		})
	}

	_, err := ToMessage(testpb.Type(testpb.MessageName), map[string]any{"enum_val": "QUX"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidEnum))

	msg, err := ToMessage(testpb.Type(testpb.MessageName), map[string]any{
		"repeated_enum_val": []any{"baz", 0},
		"str_to_enum_map":   map[string]any{"k": "BAR"},
	})
	require.NoError(t, err)
	list := get(t, msg, "repeated_enum_val").List()
	require.Equal(t, 2, list.Len())
	assert.Equal(t, testpb.Baz, list.Get(0).Enum())
	assert.Equal(t, testpb.Foo, list.Get(1).Enum())
	mv := get(t, msg, "str_to_enum_map").Map()
	assert.Equal(t, testpb.Bar, mv.Get(protoreflect.ValueOfString("k").MapKey()).Enum())
}

func TestToMessage_Decoders(t *testing.T) {
	errBoom := errors.New("boom")

	msg, err := ToMessage(testpb.Type(testpb.MessageName), map[string]any{
		"bytes_val":        "aGk=",
		"str_to_bytes_map": map[string]any{"k": "YQ=="},
	}, WithDecoders(Overrides{KindBytes: Base64.Decode}))
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), get(t, msg, "bytes_val").Bytes())
	mv := get(t, msg, "str_to_bytes_map").Map()
	assert.Equal(t, []byte("a"), mv.Get(protoreflect.ValueOfString("k").MapKey()).Bytes())

	_, err = ToMessage(testpb.Type(testpb.MessageName), map[string]any{"string_val": "x"},
		WithDecoders(Overrides{KindString: func(any) (any, error) { return nil, errBoom }}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errBoom))
}

func TestToMessage_WellKnownTypes(t *testing.T) {
	tests := []struct {
		name string
		ts   any
		dur  any
	}{
		{"native", testpb.SampleTime, 90 * time.Second},
		{"text", "2024-05-06T07:08:09.123456789Z", "1m30s"},
		{"mapping", map[string]any{"seconds": testpb.SampleTime.Unix(), "nanos": 123456789}, map[string]any{"seconds": 90}},
		{"nanoseconds", testpb.SampleTime.In(time.FixedZone("X", 3600)), int64(90 * time.Second)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ToMessage(testpb.Type(testpb.MessageName), map[string]any{
				"timestamp_val": tt.ts,
				"duration_val":  tt.dur,
			})
			require.NoError(t, err)

			props, err := ToMap(msg)
			require.NoError(t, err)
			assert.Equal(t, testpb.SampleTime, props["timestamp_val"])
			assert.Equal(t, 90*time.Second, props["duration_val"])
		})
	}
}

func TestToMessage_JSONNames(t *testing.T) {
	msg, err := ToMessage(testpb.Type(testpb.MessageName), map[string]any{
		"doubleVal":  1.5,
		"string_val": "x",
	})
	require.NoError(t, err)
	assert.Equal(t, 1.5, get(t, msg, "double_val").Float())
	assert.Equal(t, "x", get(t, msg, "string_val").String())
}

func TestToMessage_TypedContainers(t *testing.T) {
	msg, err := ToMessage(testpb.Type(testpb.MessageName), map[string]any{
		"repeated_int32_val": []int{4, 5},
		"int_to_str_map":     map[string]string{"1": "one"},
		"nested_val":         map[any]any{"str_val": "n"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, get(t, msg, "repeated_int32_val").List().Len())
	mv := get(t, msg, "int_to_str_map").Map()
	assert.Equal(t, "one", mv.Get(protoreflect.ValueOfInt32(1).MapKey()).String())
	nested := get(t, msg, "nested_val").Message()
	assert.Equal(t, "n", nested.Get(testpb.Field(nested, "str_val")).String())
}

func TestToMessage_Extensions(t *testing.T) {
	data := map[string]any{
		"name":       "host",
		ExtensionKey: map[string]any{"100": 5, "102": []any{"a", "b"}},
	}

	msg, err := ToMessage(testpb.Type(testpb.ExtendableName), data, WithResolver(testpb.Types))
	require.NoError(t, err)
	r := msg.ProtoReflect()
	assert.Equal(t, int64(5), r.Get(testpb.Extension("ext_count").TypeDescriptor()).Int())
	assert.Equal(t, 2, r.Get(testpb.Extension("ext_tags").TypeDescriptor()).List().Len())

	// The global registry does not know the test extensions.
	_, err = ToMessage(testpb.Type(testpb.ExtendableName), data)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownField))

	msg, err = ToMessage(testpb.Type(testpb.ExtendableName), data, WithLenient())
	require.NoError(t, err)
	assert.Equal(t, "host", msg.ProtoReflect().Get(testpb.Field(msg.ProtoReflect(), "name")).String())

	_, err = ToMessage(testpb.Type(testpb.ExtendableName), map[string]any{
		ExtensionKey: map[string]any{"count": 1},
	}, WithResolver(testpb.Types))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestToMessage_NilType(t *testing.T) {
	_, err := ToMessage(nil, map[string]any{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNilMessage))
}

func TestMerge(t *testing.T) {
	m := testpb.New(testpb.MessageName)
	testpb.Set(m, "string_val", "before")
	testpb.Set(m, "int32_val", int32(1))

	err := Merge(m.Interface(), map[string]any{"string_val": "after"})
	require.NoError(t, err)

	assert.Equal(t, "after", m.Get(testpb.Field(m, "string_val")).String())
	assert.Equal(t, int64(1), m.Get(testpb.Field(m, "int32_val")).Int(), "fields not named are untouched")

	require.Error(t, Merge(nil, map[string]any{}))
}

func TestInto(t *testing.T) {
	fd, err := Into[*descriptorpb.FieldDescriptorProto](map[string]any{
		"name":      "id",
		"number":    1,
		"label":     "label_optional",
		"type":      "TYPE_INT64",
		"json_name": "id",
		"options":   map[string]any{"deprecated": true},
	})
	require.NoError(t, err)

	assert.Equal(t, "id", fd.GetName())
	assert.Equal(t, int32(1), fd.GetNumber())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL, fd.GetLabel())
	assert.Equal(t, descriptorpb.FieldDescriptorProto_TYPE_INT64, fd.GetType())
	assert.True(t, fd.GetOptions().GetDeprecated())

	_, err = Into[*descriptorpb.FieldDescriptorProto](map[string]any{"nmae": "typo"})
	assert.True(t, errors.Is(err, ErrUnknownField))
}
