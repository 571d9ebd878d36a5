package protomap

import (
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/zero-day-ai/protomap/enum"
)

func (w *walker) decodeMessage(m protoreflect.Message, data map[string]any) error {
	desc := m.Descriptor()
	var oneofs map[protoreflect.Name]protoreflect.Name
	for _, key := range sortedKeys(data) {
		val := data[key]
		if key == ExtensionKey {
			if err := w.decodeExtensions(m, val); err != nil {
				return err
			}
			continue
		}

		w.push(key)
		fd := lookupField(desc, key)
		var err error
		switch {
		case fd != nil:
			if od := fd.ContainingOneof(); od != nil && !od.IsSynthetic() && val != nil {
				if prev, ok := oneofs[od.Name()]; ok {
					err = w.fail(fmt.Errorf("%w: oneof %s already set by %s", ErrTypeMismatch, od.Name(), prev))
					break
				}
				if oneofs == nil {
					oneofs = make(map[protoreflect.Name]protoreflect.Name)
				}
				oneofs[od.Name()] = fd.Name()
			}
			err = w.decodeField(m, fd, val)
		case w.opts.lenient:
			w.opts.logger.Debug("skipping unknown field",
				"message", desc.FullName(),
				"field", key,
			)
		default:
			err = w.fail(&UnknownFieldError{Message: desc.FullName(), Name: key})
		}
		w.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func lookupField(desc protoreflect.MessageDescriptor, key string) protoreflect.FieldDescriptor {
	fields := desc.Fields()
	if fd := fields.ByName(protoreflect.Name(key)); fd != nil {
		return fd
	}
	return fields.ByJSONName(key)
}

func (w *walker) skipNull(val any) bool {
	if val != nil || !w.opts.ignoreNull {
		return false
	}
	w.opts.logger.Debug("skipping null value", "path", w.pathString())
	return true
}

func (w *walker) decodeField(m protoreflect.Message, fd protoreflect.FieldDescriptor, val any) error {
	if w.skipNull(val) {
		return nil
	}
	if val == nil {
		return w.fail(mismatch(fd, val))
	}

	switch CardinalityOf(fd) {
	case Mapped:
		items, ok := asMap(val)
		if !ok {
			return w.fail(fmt.Errorf("%w: expected mapping for map field, got %T", ErrTypeMismatch, val))
		}
		return w.decodeMap(m.Mutable(fd).Map(), fd, items)

	case Repeated:
		items, ok := asSlice(val)
		if !ok {
			return w.fail(fmt.Errorf("%w: expected sequence for repeated field, got %T", ErrTypeMismatch, val))
		}
		return w.decodeList(m.Mutable(fd).List(), fd, items)
	}

	if fd.Message() != nil {
		return w.decodeNested(m.Mutable(fd).Message(), val)
	}
	v, err := w.decodeLeaf(fd, val)
	if err != nil {
		return err
	}
	m.Set(fd, v)
	return nil
}

func (w *walker) decodeList(l protoreflect.List, fd protoreflect.FieldDescriptor, items []any) error {
	for i, item := range items {
		w.push(indexSeg(i))
		err := w.decodeElement(fd, item, func(v protoreflect.Value) { l.Append(v) }, l.NewElement)
		w.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) decodeMap(mv protoreflect.Map, fd protoreflect.FieldDescriptor, items map[string]any) error {
	keyFd, valFd := fd.MapKey(), fd.MapValue()
	for _, k := range sortedKeys(items) {
		w.push(keySeg(k))
		key, err := parseMapKey(keyFd, k)
		if err != nil {
			err = w.fail(err)
		} else {
			err = w.decodeElement(valFd, items[k], func(v protoreflect.Value) { mv.Set(key, v) }, mv.NewValue)
		}
		w.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

// decodeElement builds one list element or map value and hands it to store.
func (w *walker) decodeElement(fd protoreflect.FieldDescriptor, item any, store func(protoreflect.Value), newMessage func() protoreflect.Value) error {
	if w.skipNull(item) {
		return nil
	}
	if item == nil {
		return w.fail(mismatch(fd, item))
	}

	if fd.Message() != nil {
		v := newMessage()
		if err := w.decodeNested(v.Message(), item); err != nil {
			return err
		}
		store(v)
		return nil
	}

	v, err := w.decodeLeaf(fd, item)
	if err != nil {
		return err
	}
	store(v)
	return nil
}

func (w *walker) decodeNested(m protoreflect.Message, val any) error {
	if w.opts.wellKnown {
		var (
			handled bool
			err     error
		)
		switch m.Descriptor().FullName() {
		case timestampName:
			handled, err = setTimestamp(m, val)
		case durationName:
			handled, err = setDuration(m, val)
		}
		if err != nil {
			return w.fail(err)
		}
		if handled {
			return nil
		}
	}

	fields, ok := asMap(val)
	if !ok {
		return w.fail(fmt.Errorf("%w: expected mapping for %s, got %T", ErrTypeMismatch, m.Descriptor().FullName(), val))
	}
	return w.decodeMessage(m, fields)
}

func (w *walker) decodeLeaf(fd protoreflect.FieldDescriptor, val any) (protoreflect.Value, error) {
	kind := KindOf(fd)
	if dec := w.opts.decoders[kind]; dec != nil {
		out, err := dec(val)
		if err != nil {
			return protoreflect.Value{}, w.fail(err)
		}
		val = out
	}

	if kind == KindEnum {
		return w.decodeEnum(fd, val)
	}
	v, err := coerce(fd, val)
	if err != nil {
		return protoreflect.Value{}, w.fail(err)
	}
	return v, nil
}

func (w *walker) decodeEnum(fd protoreflect.FieldDescriptor, val any) (protoreflect.Value, error) {
	label, ok := val.(string)
	if !ok {
		n, err := toInt(val, 32)
		if err != nil {
			return protoreflect.Value{}, w.fail(err)
		}
		return protoreflect.ValueOfEnum(protoreflect.EnumNumber(n)), nil
	}

	ed := fd.Enum()
	if ev := resolveEnumLabel(ed, label); ev != nil {
		return protoreflect.ValueOfEnum(ev.Number()), nil
	}
	if w.opts.lenient {
		w.opts.logger.Debug("unresolved enum label",
			"enum", ed.FullName(),
			"label", label,
			"path", w.pathString(),
		)
		return fd.Default(), nil
	}
	return protoreflect.Value{}, w.fail(fmt.Errorf("%w: %q is not a value of %s", ErrInvalidEnum, label, ed.FullName()))
}

// resolveEnumLabel tries the exact name, the upper-cased name, then the
// registered aliases for the enum.
func resolveEnumLabel(ed protoreflect.EnumDescriptor, label string) protoreflect.EnumValueDescriptor {
	values := ed.Values()
	if ev := values.ByName(protoreflect.Name(label)); ev != nil {
		return ev
	}
	if ev := values.ByName(protoreflect.Name(strings.ToUpper(label))); ev != nil {
		return ev
	}
	if name, ok := enum.Resolve(string(ed.FullName()), label); ok {
		return values.ByName(protoreflect.Name(name))
	}
	return nil
}

func (w *walker) decodeExtensions(m protoreflect.Message, val any) error {
	w.push(ExtensionKey)
	defer w.pop()

	if w.skipNull(val) {
		return nil
	}
	items, ok := asMap(val)
	if !ok {
		return w.fail(fmt.Errorf("%w: expected mapping of extensions, got %T", ErrTypeMismatch, val))
	}

	desc := m.Descriptor()
	for _, key := range sortedKeys(items) {
		w.push(keySeg(key))
		err := w.decodeExtension(m, desc, key, items[key])
		w.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) decodeExtension(m protoreflect.Message, desc protoreflect.MessageDescriptor, key string, val any) error {
	num, err := strconv.ParseInt(key, 10, 32)
	if err != nil {
		return w.fail(fmt.Errorf("%w: extension key %q is not a field number", ErrTypeMismatch, key))
	}

	xt, err := w.opts.resolver.FindExtensionByNumber(desc.FullName(), protoreflect.FieldNumber(num))
	if err != nil {
		if w.opts.lenient {
			w.opts.logger.Debug("skipping unknown extension",
				"message", desc.FullName(),
				"number", num,
			)
			return nil
		}
		return w.fail(&UnknownFieldError{Message: desc.FullName(), Name: key})
	}
	return w.decodeField(m, xt.TypeDescriptor(), val)
}
