// Package config loads protomap.yaml files describing converter settings.
//
// A configuration maps one-to-one onto protomap options:
//
//	enum_labels: true
//	lowercase_enum_labels: false
//	include_defaults: false
//	json_names: false
//	strict: true
//	ignore_null: false
//	well_known_types: true
//	codecs:
//	  bytes: base64
//	  int64: decimal
//	fields: '!(name in ["password", "token"])'
//	enum_aliases:
//	  acme.Status:
//	    active: STATUS_ACTIVE
//	    enabled: STATUS_ACTIVE
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/protomap"
	"github.com/zero-day-ai/protomap/enum"
	"github.com/zero-day-ai/protomap/filter"
)

// FileNames are the names Load looks for when given a directory.
var FileNames = []string{"protomap.yaml", "protomap.yml"}

// Config represents a protomap.yaml configuration file.
type Config struct {
	// Enum rendering on the forward path
	EnumLabels          bool `yaml:"enum_labels,omitempty"`
	LowercaseEnumLabels bool `yaml:"lowercase_enum_labels,omitempty"`

	// IncludeDefaults emits unset scalar fields with their default value.
	IncludeDefaults bool `yaml:"include_defaults,omitempty"`

	// JSONNames keys mappings by JSON field name.
	JSONNames bool `yaml:"json_names,omitempty"`

	// Strict rejects unknown mapping keys. Default: true
	Strict *bool `yaml:"strict,omitempty"`

	// IgnoreNull skips null mapping values instead of rejecting them.
	IgnoreNull bool `yaml:"ignore_null,omitempty"`

	// WellKnownTypes converts Timestamp and Duration to time values.
	// Default: true
	WellKnownTypes *bool `yaml:"well_known_types,omitempty"`

	// Codecs maps a field kind (e.g. "bytes") to a registered codec name
	// (e.g. "base64").
	Codecs map[string]string `yaml:"codecs,omitempty"`

	// Fields is a CEL expression selecting the fields emitted on the
	// forward path. See package filter for the available variables.
	Fields string `yaml:"fields,omitempty"`

	// EnumAliases maps an enum's full name to alias -> value name.
	EnumAliases map[string]map[string]string `yaml:"enum_aliases,omitempty"`
}

// IsStrict returns whether unknown keys are rejected.
func (c *Config) IsStrict() bool {
	if c == nil || c.Strict == nil {
		return true
	}
	return *c.Strict
}

// UseWellKnownTypes returns whether Timestamp and Duration are converted.
func (c *Config) UseWellKnownTypes() bool {
	if c == nil || c.WellKnownTypes == nil {
		return true
	}
	return *c.WellKnownTypes
}

// Validate checks codec names, kinds, the field expression and enum
// aliases. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	for _, kindName := range sortedKeys(c.Codecs) {
		kind, err := protomap.ParseKind(kindName)
		if err != nil {
			errs = append(errs, fmt.Errorf("codecs: %w", err))
			continue
		}
		if !kind.Primitive() {
			errs = append(errs, fmt.Errorf("codecs: kind %s cannot take a codec", kind))
		}
		if _, ok := protomap.LookupCodec(c.Codecs[kindName]); !ok {
			errs = append(errs, fmt.Errorf("codecs: %s: unknown codec %q (have %s)",
				kindName, c.Codecs[kindName], strings.Join(protomap.Codecs(), ", ")))
		}
	}

	if c.Fields != "" {
		if _, err := filter.Compile(c.Fields); err != nil {
			errs = append(errs, fmt.Errorf("fields: %w", err))
		}
	}

	for _, name := range sortedKeys(c.EnumAliases) {
		if name == "" {
			errs = append(errs, fmt.Errorf("enum_aliases: empty enum name"))
		}
		for alias, value := range c.EnumAliases[name] {
			if alias == "" || value == "" {
				errs = append(errs, fmt.Errorf("enum_aliases: %s: empty alias or value", name))
				break
			}
		}
	}

	return errors.Join(errs...)
}

// Options validates c and returns the converter options it describes.
// Enum aliases are global and are applied by RegisterAliases, not here.
func (c *Config) Options() ([]protomap.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var opts []protomap.Option
	if c.EnumLabels {
		opts = append(opts, protomap.WithEnumLabels())
	}
	if c.LowercaseEnumLabels {
		opts = append(opts, protomap.WithLowercaseEnumLabels())
	}
	if c.IncludeDefaults {
		opts = append(opts, protomap.WithDefaults())
	}
	if c.JSONNames {
		opts = append(opts, protomap.WithJSONNames())
	}
	if !c.IsStrict() {
		opts = append(opts, protomap.WithLenient())
	}
	if c.IgnoreNull {
		opts = append(opts, protomap.WithIgnoreNull())
	}
	if !c.UseWellKnownTypes() {
		opts = append(opts, protomap.WithoutWellKnownTypes())
	}

	for _, kindName := range sortedKeys(c.Codecs) {
		kind, _ := protomap.ParseKind(kindName)
		codec, _ := protomap.LookupCodec(c.Codecs[kindName])
		opts = append(opts, protomap.WithCodec(kind, codec))
	}

	if c.Fields != "" {
		f, err := filter.Compile(c.Fields)
		if err != nil {
			return nil, fmt.Errorf("fields: %w", err)
		}
		opts = append(opts, f.Option())
	}

	return opts, nil
}

// RegisterAliases adds the configured enum aliases to the global alias
// registry used by reverse conversion.
func (c *Config) RegisterAliases() {
	if len(c.EnumAliases) > 0 {
		enum.RegisterBatch(c.EnumAliases)
	}
}

// Converter validates c, registers its enum aliases and returns a converter
// built from its options. logger may be nil.
func (c *Config) Converter(logger *slog.Logger) (*protomap.Converter, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	c.RegisterAliases()
	if logger != nil {
		opts = append(opts, protomap.WithLogger(logger))
	}
	return protomap.New(opts...), nil
}

// Parse parses a configuration document.
func Parse(data []byte) (*Config, error) {
	var config Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &config, nil
}

// Load reads and parses a protomap.yaml file from the given path.
// If the path is a directory, it looks for protomap.yaml or protomap.yml in
// that directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		configPath = ""
		for _, name := range FileNames {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
		if configPath == "" {
			return nil, fmt.Errorf("no %s found in %s", strings.Join(FileNames, " or "), path)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
