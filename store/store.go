package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	"github.com/zero-day-ai/protomap"
	"github.com/zero-day-ai/protomap/codec"
)

// Store persists messages by key.
type Store interface {
	// Put stores m under key and returns the key. An empty key is replaced
	// by a newly generated UUID.
	Put(ctx context.Context, key string, m proto.Message) (string, error)

	// Get loads the message stored under key as a new message of type mt.
	// It returns ErrNotFound if the key does not exist and ErrWrongType if
	// the stored record holds a different message type.
	Get(ctx context.Context, key string, mt protoreflect.MessageType) (proto.Message, error)

	// Delete removes key. It returns ErrNotFound if the key does not exist.
	Delete(ctx context.Context, key string) error

	// Keys returns all stored keys in sorted order.
	Keys(ctx context.Context) ([]string, error)

	// Close releases the backend connection.
	Close() error
}

var (
	// ErrNotFound indicates a key with no stored record.
	ErrNotFound = errors.New("key not found")

	// ErrWrongType indicates a stored record of a different message type
	// than requested.
	ErrWrongType = errors.New("stored message has a different type")

	// ErrClosed indicates use of a closed store.
	ErrClosed = errors.New("store is closed")
)

// Options holds the settings shared by every backend.
type Options struct {
	// Prefix is prepended to every key in the backend. Keys returns keys
	// with the prefix removed.
	Prefix string

	// TTL expires records after the given duration. Zero keeps records
	// until deleted.
	TTL time.Duration

	// Convert configures the mapping written for each message, e.g.
	// protomap.WithEnumLabels. Bytes are always stored as base64.
	Convert []protomap.Option

	// Tracer records a span per operation. Nil disables tracing.
	Tracer trace.Tracer

	// MeterProvider supplies the store metrics. Nil disables metrics.
	MeterProvider metric.MeterProvider

	// Logger receives debug records for each operation. Nil discards them.
	Logger *slog.Logger
}

// record is the stored envelope.
type record struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// base holds the backend-independent parts of a store.
type base struct {
	backend string
	prefix  string
	ttl     time.Duration
	json    *codec.JSON
	inst    *instruments
	logger  *slog.Logger
}

func newBase(backend string, opts Options) (*base, error) {
	if opts.TTL < 0 {
		return nil, fmt.Errorf("TTL cannot be negative: %s", opts.TTL)
	}
	inst, err := newInstruments(backend, opts.Tracer, opts.MeterProvider)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &base{
		backend: backend,
		prefix:  opts.Prefix,
		ttl:     opts.TTL,
		json:    codec.NewJSON(opts.Convert...),
		inst:    inst,
		logger:  logger.With("backend", backend),
	}, nil
}

func (b *base) key(k string) string {
	return b.prefix + k
}

func (b *base) newKey(k string) string {
	if k == "" {
		return uuid.NewString()
	}
	return k
}

func (b *base) encode(m proto.Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("encode: %w", protomap.ErrNilMessage)
	}
	data, err := b.json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.ProtoReflect().Descriptor().FullName(), err)
	}
	return json.Marshal(record{
		Type: string(m.ProtoReflect().Descriptor().FullName()),
		Data: data,
	})
}

func (b *base) decode(raw []byte, mt protoreflect.MessageType) (proto.Message, error) {
	if mt == nil {
		return nil, fmt.Errorf("decode: %w", protomap.ErrNilMessage)
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	want := mt.Descriptor().FullName()
	if protoreflect.FullName(rec.Type) != want {
		return nil, fmt.Errorf("%w: have %s, want %s", ErrWrongType, rec.Type, want)
	}

	m := mt.New().Interface()
	if err := b.json.Unmarshal(rec.Data, m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", want, err)
	}
	return m, nil
}
