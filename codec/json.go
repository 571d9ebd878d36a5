package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"

	"github.com/zero-day-ai/protomap"
)

// JSON encodes messages as JSON objects keyed by field name.
type JSON struct {
	conv   *protomap.Converter
	indent string
}

// NewJSON creates a JSON codec. opts are applied on top of the codec
// defaults, e.g. protomap.WithEnumLabels or protomap.WithJSONNames.
func NewJSON(opts ...protomap.Option) *JSON {
	return &JSON{conv: protomap.New(defaults(opts)...)}
}

// Indent returns a copy of c that pretty-prints with the given indent.
func (c *JSON) Indent(indent string) *JSON {
	cp := *c
	cp.indent = indent
	return &cp
}

// Marshal encodes m.
func (c *JSON) Marshal(m proto.Message) ([]byte, error) {
	data, err := toMap(c.conv, m)
	if err != nil {
		return nil, err
	}
	if c.indent != "" {
		return json.MarshalIndent(data, "", c.indent)
	}
	return json.Marshal(data)
}

// Unmarshal decodes a JSON object into m. Fields of m not present in b keep
// their current value.
func (c *JSON) Unmarshal(b []byte, m proto.Message) error {
	data, err := DecodeJSON(b)
	if err != nil {
		return err
	}
	return c.conv.Merge(m, data)
}

// DecodeJSON parses a JSON object into a mapping. Numbers are kept as
// json.Number so 64-bit integers survive intact.
func DecodeJSON(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode JSON: trailing data after object")
	}
	return data, nil
}
