package protomap

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// coerce converts a mapping value to the protoreflect.Value for a scalar
// field. Numeric values widen or narrow with range checks; every other
// mismatch is rejected.
func coerce(fd protoreflect.FieldDescriptor, v any) (protoreflect.Value, error) {
	switch fd.Kind() {
	case protoreflect.DoubleKind:
		f, err := toFloat(v)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfFloat64(f), nil

	case protoreflect.FloatKind:
		f, err := toFloat(v)
		if err != nil {
			return protoreflect.Value{}, err
		}
		if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
			return protoreflect.Value{}, fmt.Errorf("%w: %v overflows float32", ErrTypeMismatch, v)
		}
		return protoreflect.ValueOfFloat32(float32(f)), nil

	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		n, err := toInt(v, 32)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfInt32(int32(n)), nil

	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		n, err := toInt(v, 64)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfInt64(n), nil

	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		n, err := toUint(v, 32)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfUint32(uint32(n)), nil

	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		n, err := toUint(v, 64)
		if err != nil {
			return protoreflect.Value{}, err
		}
		return protoreflect.ValueOfUint64(n), nil

	case protoreflect.BoolKind:
		if b, ok := v.(bool); ok {
			return protoreflect.ValueOfBool(b), nil
		}

	case protoreflect.StringKind:
		if s, ok := v.(string); ok {
			return protoreflect.ValueOfString(s), nil
		}

	case protoreflect.BytesKind:
		if b, ok := v.([]byte); ok {
			return protoreflect.ValueOfBytes(append([]byte{}, b...)), nil
		}
	}
	return protoreflect.Value{}, mismatch(fd, v)
}

func toInt(v any, bits int) (int64, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint:
		return toInt(uint64(x), bits)
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return 0, overflow(v, "int", bits)
		}
		n = int64(x)
	case float32:
		return floatToInt(float64(x), v, bits)
	case float64:
		return floatToInt(x, v, bits)
	case json.Number:
		parsed, err := strconv.ParseInt(string(x), 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(string(x), 64)
			if ferr != nil {
				return 0, fmt.Errorf("%w: %q is not an integer", ErrTypeMismatch, string(x))
			}
			return floatToInt(f, v, bits)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("%w: cannot use %T as int%d", ErrTypeMismatch, v, bits)
	}

	if bits == 32 && (n < math.MinInt32 || n > math.MaxInt32) {
		return 0, overflow(v, "int", bits)
	}
	return n, nil
}

func floatToInt(f float64, v any, bits int) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrTypeMismatch, v)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, overflow(v, "int", bits)
	}
	return toInt(int64(f), bits)
}

func toUint(v any, bits int) (uint64, error) {
	var n uint64
	switch x := v.(type) {
	case uint:
		n = uint64(x)
	case uint8:
		n = uint64(x)
	case uint16:
		n = uint64(x)
	case uint32:
		n = uint64(x)
	case uint64:
		n = x
	case int, int8, int16, int32, int64:
		i, _ := toInt(x, 64)
		if i < 0 {
			return 0, overflow(v, "uint", bits)
		}
		n = uint64(i)
	case float32:
		return floatToUint(float64(x), v, bits)
	case float64:
		return floatToUint(x, v, bits)
	case json.Number:
		parsed, err := strconv.ParseUint(string(x), 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(string(x), 64)
			if ferr != nil {
				return 0, fmt.Errorf("%w: %q is not an unsigned integer", ErrTypeMismatch, string(x))
			}
			return floatToUint(f, v, bits)
		}
		n = parsed
	default:
		return 0, fmt.Errorf("%w: cannot use %T as uint%d", ErrTypeMismatch, v, bits)
	}

	if bits == 32 && n > math.MaxUint32 {
		return 0, overflow(v, "uint", bits)
	}
	return n, nil
}

func floatToUint(f float64, v any, bits int) (uint64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrTypeMismatch, v)
	}
	if f < 0 || f >= math.MaxUint64 {
		return 0, overflow(v, "uint", bits)
	}
	return toUint(uint64(f), bits)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrTypeMismatch, string(x))
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: cannot use %T as float", ErrTypeMismatch, v)
	}
}

func overflow(v any, typ string, bits int) error {
	return fmt.Errorf("%w: %v overflows %s%d", ErrTypeMismatch, v, typ, bits)
}

// parseMapKey converts the textual form of a map key back to the key kind.
func parseMapKey(fd protoreflect.FieldDescriptor, s string) (protoreflect.MapKey, error) {
	var (
		v   protoreflect.Value
		err error
	)
	switch fd.Kind() {
	case protoreflect.StringKind:
		v = protoreflect.ValueOfString(s)
	case protoreflect.BoolKind:
		var b bool
		b, err = strconv.ParseBool(s)
		v = protoreflect.ValueOfBool(b)
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		var n int64
		n, err = strconv.ParseInt(s, 10, 32)
		v = protoreflect.ValueOfInt32(int32(n))
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		var n int64
		n, err = strconv.ParseInt(s, 10, 64)
		v = protoreflect.ValueOfInt64(n)
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		var n uint64
		n, err = strconv.ParseUint(s, 10, 32)
		v = protoreflect.ValueOfUint32(uint32(n))
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		var n uint64
		n, err = strconv.ParseUint(s, 10, 64)
		v = protoreflect.ValueOfUint64(n)
	default:
		return protoreflect.MapKey{}, fmt.Errorf("%w: unsupported map key kind %s", ErrTypeMismatch, fd.Kind())
	}
	if err != nil {
		return protoreflect.MapKey{}, fmt.Errorf("%w: invalid %s map key %q", ErrTypeMismatch, fd.Kind(), s)
	}
	return v.MapKey(), nil
}
