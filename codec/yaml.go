package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/protomap"
)

// YAML encodes messages as YAML mappings keyed by field name.
type YAML struct {
	conv *protomap.Converter
}

// NewYAML creates a YAML codec. opts are applied on top of the codec
// defaults.
func NewYAML(opts ...protomap.Option) *YAML {
	return &YAML{conv: protomap.New(defaults(opts)...)}
}

// Marshal encodes m.
func (c *YAML) Marshal(m proto.Message) ([]byte, error) {
	data, err := toMap(c.conv, m)
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	return out, nil
}

// Unmarshal decodes a YAML mapping into m.
func (c *YAML) Unmarshal(b []byte, m proto.Message) error {
	var data map[string]any
	if err := yaml.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("decode YAML: %w", err)
	}
	return c.conv.Merge(m, data)
}
