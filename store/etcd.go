package store

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// EtcdOptions configures an EtcdStore.
type EtcdOptions struct {
	Options

	// Endpoints lists the etcd cluster members.
	Endpoints []string

	// DialTimeout bounds connection establishment. Default 5s.
	DialTimeout time.Duration

	// Username and Password enable etcd authentication when set.
	Username string
	Password string

	// TLS configuration for secure connections
	TLS *TLSConfig
}

// EtcdStore implements Store on etcd. Records written with a TTL are
// attached to a lease granted per Put.
type EtcdStore struct {
	*base
	client *clientv3.Client
	closed atomic.Bool
}

// NewEtcdStore connects to the etcd cluster.
func NewEtcdStore(opts EtcdOptions) (*EtcdStore, error) {
	if len(opts.Endpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints cannot be empty")
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}

	tlsConfig, err := opts.TLS.clientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to configure TLS: %w", err)
	}

	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   opts.Endpoints,
		DialTimeout: opts.DialTimeout,
		Username:    opts.Username,
		Password:    opts.Password,
		TLS:         tlsConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	s, err := NewEtcdStoreFromClient(cli, opts.Options)
	if err != nil {
		_ = cli.Close()
		return nil, err
	}
	return s, nil
}

// NewEtcdStoreFromClient wraps an existing client. The store takes ownership
// of cli and closes it on Close.
func NewEtcdStoreFromClient(cli *clientv3.Client, opts Options) (*EtcdStore, error) {
	if cli == nil {
		return nil, fmt.Errorf("etcd client cannot be nil")
	}
	if opts.TTL > 0 && opts.TTL < time.Second {
		return nil, fmt.Errorf("etcd TTL must be at least 1s, got %s", opts.TTL)
	}
	b, err := newBase("etcd", opts)
	if err != nil {
		return nil, err
	}
	return &EtcdStore{base: b, client: cli}, nil
}

// Put implements Store.
func (s *EtcdStore) Put(ctx context.Context, key string, m proto.Message) (_ string, err error) {
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

	var opts []clientv3.OpOption
	if s.ttl > 0 {
		lease, err := s.client.Grant(ctx, int64(s.ttl/time.Second))
		if err != nil {
			return "", fmt.Errorf("failed to create lease: %w", err)
		}
		opts = append(opts, clientv3.WithLease(lease.ID))
	}

	if _, err := s.client.Put(ctx, s.key(key), string(raw), opts...); err != nil {
		return "", fmt.Errorf("failed to store %q: %w", key, err)
	}

	s.logger.Debug("stored message", "key", key, "bytes", len(raw))
	return key, nil
}

// Get implements Store.
func (s *EtcdStore) Get(ctx context.Context, key string, mt protoreflect.MessageType) (_ proto.Message, err error) {
	ctx, done := s.inst.start(ctx, "get", key)
	defer func() { done(err) }()

	if s.closed.Load() {
		return nil, ErrClosed
	}

	resp, err := s.client.Get(ctx, s.key(key))
	if err != nil {
		return nil, fmt.Errorf("failed to load %q: %w", key, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return s.decode(resp.Kvs[0].Value, mt)
}

// Delete implements Store.
func (s *EtcdStore) Delete(ctx context.Context, key string) (err error) {
	ctx, done := s.inst.start(ctx, "delete", key)
	defer func() { done(err) }()

	if s.closed.Load() {
		return ErrClosed
	}

	resp, err := s.client.Delete(ctx, s.key(key))
	if err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	if resp.Deleted == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}

	s.logger.Debug("deleted message", "key", key)
	return nil
}

// Keys implements Store. Results arrive sorted from etcd.
func (s *EtcdStore) Keys(ctx context.Context) (_ []string, err error) {
	ctx, done := s.inst.start(ctx, "keys", "")
	defer func() { done(err) }()

	if s.closed.Load() {
		return nil, ErrClosed
	}

	resp, err := s.client.Get(ctx, s.prefix,
		clientv3.WithPrefix(),
		clientv3.WithKeysOnly(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	keys := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		keys = append(keys, strings.TrimPrefix(string(kv.Key), s.prefix))
	}
	return keys, nil
}

// Close closes the etcd client.
func (s *EtcdStore) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.client.Close()
}

var _ Store = (*EtcdStore)(nil)
