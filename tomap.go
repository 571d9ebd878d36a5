package protomap

import (
	"strconv"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// ExtensionKey is the reserved mapping key holding extension fields, keyed
// by their decimal field number.
const ExtensionKey = "___X"

func (w *walker) encodeMessage(m protoreflect.Message) (map[string]any, error) {
	out := make(map[string]any)
	fields := m.Descriptor().Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		if w.opts.fieldFilter != nil && !w.opts.fieldFilter(fd) {
			continue
		}

		name := w.fieldKey(fd)
		w.push(name)
		v, ok, err := w.encodeField(m, fd)
		w.pop()
		if err != nil {
			return nil, err
		}
		if ok {
			out[name] = v
		}
	}

	ext, err := w.encodeExtensions(m)
	if err != nil {
		return nil, err
	}
	if len(ext) > 0 {
		out[ExtensionKey] = ext
	}
	return out, nil
}

func (w *walker) fieldKey(fd protoreflect.FieldDescriptor) string {
	if w.opts.jsonNames {
		return fd.JSONName()
	}
	return string(fd.Name())
}

// encodeField reports whether fd contributes an entry and, if so, its value.
// Repeated and map fields always contribute, empty or not.
func (w *walker) encodeField(m protoreflect.Message, fd protoreflect.FieldDescriptor) (any, bool, error) {
	if fd.Cardinality() != protoreflect.Repeated && !m.Has(fd) {
		if !w.opts.withDefaults || fd.Message() != nil || fd.ContainingOneof() != nil {
			return nil, false, nil
		}
		v, err := w.encodeLeaf(fd, fd.Default())
		return v, err == nil, err
	}
	v, err := w.encodeAny(fd, m.Get(fd))
	return v, err == nil, err
}

func (w *walker) encodeAny(fd protoreflect.FieldDescriptor, v protoreflect.Value) (any, error) {
	switch CardinalityOf(fd) {
	case Mapped:
		return w.encodeMap(fd, v.Map())
	case Repeated:
		return w.encodeList(fd, v.List())
	default:
		return w.encodeValue(fd, v)
	}
}

func (w *walker) encodeList(fd protoreflect.FieldDescriptor, l protoreflect.List) ([]any, error) {
	out := make([]any, 0, l.Len())
	for i := 0; i < l.Len(); i++ {
		w.push(indexSeg(i))
		v, err := w.encodeValue(fd, l.Get(i))
		w.pop()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (w *walker) encodeMap(fd protoreflect.FieldDescriptor, mv protoreflect.Map) (map[string]any, error) {
	out := make(map[string]any, mv.Len())
	valFd := fd.MapValue()

	var err error
	mv.Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
		key := mapKeyText(k)
		w.push(keySeg(key))
		var ev any
		ev, err = w.encodeValue(valFd, v)
		w.pop()
		if err != nil {
			return false
		}
		out[key] = ev
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// encodeValue converts one singular value, list element or map value.
func (w *walker) encodeValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) (any, error) {
	if fd.Message() != nil {
		return w.encodeNested(v.Message())
	}
	return w.encodeLeaf(fd, v)
}

func (w *walker) encodeNested(m protoreflect.Message) (any, error) {
	if w.opts.wellKnown {
		switch m.Descriptor().FullName() {
		case timestampName:
			return timestampTime(m), nil
		case durationName:
			// Out-of-range durations stay {seconds, nanos} mappings.
			if d, ok := durationOf(m); ok {
				return d, nil
			}
		}
	}
	return w.encodeMessage(m)
}

func (w *walker) encodeLeaf(fd protoreflect.FieldDescriptor, v protoreflect.Value) (any, error) {
	kind := KindOf(fd)
	raw := rawValue(fd, v)

	if enc := w.opts.encoders[kind]; enc != nil {
		out, err := enc(raw)
		if err != nil {
			return nil, w.fail(err)
		}
		return out, nil
	}

	if kind == KindEnum && w.opts.enumLabels {
		// Numbers without a declared name stay numeric.
		if ev := fd.Enum().Values().ByNumber(v.Enum()); ev != nil {
			name := string(ev.Name())
			if w.opts.lowercaseEnums {
				name = strings.ToLower(name)
			}
			return name, nil
		}
	}
	return raw, nil
}

func (w *walker) encodeExtensions(m protoreflect.Message) (map[string]any, error) {
	var (
		ext map[string]any
		err error
	)
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		if !fd.IsExtension() {
			return true
		}
		if w.opts.fieldFilter != nil && !w.opts.fieldFilter(fd) {
			return true
		}

		key := strconv.Itoa(int(fd.Number()))
		w.push(ExtensionKey)
		w.push(keySeg(key))
		var ev any
		ev, err = w.encodeAny(fd, v)
		w.pop()
		w.pop()
		if err != nil {
			return false
		}
		if ext == nil {
			ext = make(map[string]any)
		}
		ext[key] = ev
		return true
	})
	return ext, err
}

// rawValue unwraps v to the Go type handed to encoders.
func rawValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.DoubleKind:
		return v.Float()
	case protoreflect.FloatKind:
		return float32(v.Float())
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return int32(v.Int())
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return v.Int()
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return uint32(v.Uint())
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return v.Uint()
	case protoreflect.BoolKind:
		return v.Bool()
	case protoreflect.StringKind:
		return v.String()
	case protoreflect.BytesKind:
		// The mapping must not alias the message's buffer.
		return append([]byte{}, v.Bytes()...)
	case protoreflect.EnumKind:
		return int32(v.Enum())
	default:
		return v.Interface()
	}
}

func mapKeyText(k protoreflect.MapKey) string {
	switch x := k.Interface().(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	default:
		return k.String()
	}
}
