package protomap

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// Func transforms a single leaf value. Forward functions receive the raw Go
// value of the field (float64, float32, int32, int64, uint32, uint64, bool,
// string, []byte, or int32 for enums) and return its representation; reverse
// functions do the opposite.
type Func func(any) (any, error)

// Overrides is a table of transforms indexed by primitive Kind. A nil entry
// leaves the kind's default representation in place.
//
//	enc := protomap.Overrides{protomap.KindBytes: protomap.Base64.Encode}
type Overrides [NumKinds]Func

// Codec pairs a forward transform with its left inverse. Decode(Encode(x))
// must equal x for every valid raw value x; this is not checked.
type Codec struct {
	Encode Func
	Decode Func
}

// Built-in codecs.
var (
	// Base64 renders []byte as standard padded base64 text.
	Base64 = Codec{
		Encode: bytesToText(base64.StdEncoding.EncodeToString),
		Decode: textToBytes(base64.StdEncoding.DecodeString),
	}

	// Base64URL renders []byte as URL-safe padded base64 text.
	Base64URL = Codec{
		Encode: bytesToText(base64.URLEncoding.EncodeToString),
		Decode: textToBytes(base64.URLEncoding.DecodeString),
	}

	// Hex renders []byte as lower-case hexadecimal text.
	Hex = Codec{
		Encode: bytesToText(hex.EncodeToString),
		Decode: textToBytes(hex.DecodeString),
	}

	// Decimal renders integers as decimal text, the way JSON APIs carry
	// 64-bit values. Decoded values are json.Number and are range checked
	// when assigned.
	Decimal = Codec{
		Encode: func(v any) (any, error) {
			switch n := v.(type) {
			case int32:
				return strconv.FormatInt(int64(n), 10), nil
			case int64:
				return strconv.FormatInt(n, 10), nil
			case uint32:
				return strconv.FormatUint(uint64(n), 10), nil
			case uint64:
				return strconv.FormatUint(n, 10), nil
			default:
				return nil, fmt.Errorf("decimal: unsupported value %T", v)
			}
		},
		Decode: func(v any) (any, error) {
			switch s := v.(type) {
			case string:
				if _, err := strconv.ParseFloat(s, 64); err != nil {
					return nil, fmt.Errorf("decimal: %q is not a number", s)
				}
				return json.Number(s), nil
			case json.Number:
				return s, nil
			default:
				// Already numeric.
				return v, nil
			}
		},
	}
)

func bytesToText(enc func([]byte) string) Func {
	return func(v any) (any, error) {
		b, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("expected []byte, got %T", v)
		}
		return enc(b), nil
	}
}

func textToBytes(dec func(string) ([]byte, error)) Func {
	return func(v any) (any, error) {
		switch t := v.(type) {
		case string:
			return dec(t)
		case []byte:
			return t, nil
		default:
			return nil, fmt.Errorf("expected string, got %T", v)
		}
	}
}

// codecs is the global named codec registry
var (
	codecs = map[string]Codec{
		"base64":    Base64,
		"base64url": Base64URL,
		"hex":       Hex,
		"decimal":   Decimal,
	}
	codecsMu sync.RWMutex
)

// RegisterCodec makes c available under name to LookupCodec and to
// configuration files. Registering an existing name replaces it.
func RegisterCodec(name string, c Codec) {
	codecsMu.Lock()
	defer codecsMu.Unlock()

	codecs[name] = c
}

// LookupCodec returns the codec registered under name.
func LookupCodec(name string) (Codec, bool) {
	codecsMu.RLock()
	defer codecsMu.RUnlock()

	c, ok := codecs[name]
	return c, ok
}

// Codecs returns the registered codec names in sorted order.
func Codecs() []string {
	codecsMu.RLock()
	defer codecsMu.RUnlock()

	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
