package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Options

	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// TLS configuration for secure connections
	TLS *TLSConfig

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// ReadTimeout is the maximum time to wait for read operations
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration
}

// RedisStore implements Store on Redis strings. Keys are scanned, never
// listed with KEYS, so Keys is safe on large databases.
type RedisStore struct {
	*base
	client *redis.Client
	closed atomic.Bool
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	b, err := newBase("redis", opts.Options)
	if err != nil {
		return nil, err
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	tlsConfig, err := opts.TLS.clientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to configure TLS: %w", err)
	}
	if tlsConfig != nil {
		redisOpts.TLSConfig = tlsConfig
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.ReadTimeout = opts.ReadTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{base: b, client: client}, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, key string, m proto.Message) (_ string, err error) {
	key = s.newKey(key)
	ctx, done := s.inst.start(ctx, "put", key)
	defer func() { done(err) }()

	if s.closed.Load() {
		return "", ErrClosed
	}

	raw, err := s.encode(m)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, s.key(key), raw, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store %q: %w", key, err)
	}

	s.logger.Debug("stored message", "key", key, "bytes", len(raw))
	return key, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string, mt protoreflect.MessageType) (_ proto.Message, err error) {
	ctx, done := s.inst.start(ctx, "get", key)
	defer func() { done(err) }()

	if s.closed.Load() {
		return nil, ErrClosed
	}

	raw, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", key, err)
	}
	return s.decode(raw, mt)
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, key string) (err error) {
	ctx, done := s.inst.start(ctx, "delete", key)
	defer func() { done(err) }()

	if s.closed.Load() {
		return ErrClosed
	}

	n, err := s.client.Del(ctx, s.key(key)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	s.logger.Debug("deleted message", "key", key)
	return nil
}

// Keys implements Store.
func (s *RedisStore) Keys(ctx context.Context) (_ []string, err error) {
	ctx, done := s.inst.start(ctx, "keys", "")
	defer func() { done(err) }()

	if s.closed.Load() {
		return nil, ErrClosed
	}

	var keys []string
	iter := s.client.Scan(ctx, 0, escapeGlob(s.prefix)+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}

	sort.Strings(keys)
	return keys, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.client.Close()
}

// escapeGlob quotes the characters SCAN MATCH treats as patterns.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var _ Store = (*RedisStore)(nil)
