package protomap

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
)

const (
	opToMap     = "ToMap"
	opToMessage = "ToMessage"
)

// walker carries per-call state through the recursive traversal in either
// direction.
type walker struct {
	op   string
	opts *options
	path []string
}

func (w *walker) push(seg string) {
	w.path = append(w.path, seg)
}

func (w *walker) pop() {
	w.path = w.path[:len(w.path)-1]
}

func (w *walker) pathString() string {
	var b strings.Builder
	for _, seg := range w.path {
		if b.Len() > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// fail attaches the current path to err.
func (w *walker) fail(err error) error {
	return &FieldError{Op: w.op, Path: w.pathString(), Err: err}
}

func indexSeg(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

func keySeg(k string) string {
	return "[" + k + "]"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// asMap accepts any Go map keyed by strings (or by interface values holding
// strings) as a generic mapping.
func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface {
			k = k.Elem()
		}
		if k.Kind() != reflect.String {
			return nil, false
		}
		out[k.String()] = iter.Value().Interface()
	}
	return out, true
}

// asSlice accepts any Go slice or array except []byte as a sequence.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
