package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/zero-day-ai/protomap/internal/testpb"
)

// unreachableClient returns a client for an endpoint nothing listens on.
// clientv3.New does not block, so construction succeeds.
func unreachableClient(t *testing.T) *clientv3.Client {
	t.Helper()
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   []string{"127.0.0.1:1"},
		DialTimeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)
	return cli
}

func TestNewEtcdStore(t *testing.T) {
	t.Run("empty endpoints", func(t *testing.T) {
		_, err := NewEtcdStore(EtcdOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "endpoints cannot be empty")
	})

	t.Run("sub-second TTL", func(t *testing.T) {
		_, err := NewEtcdStore(EtcdOptions{
			Endpoints: []string{"127.0.0.1:1"},
			Options:   Options{TTL: 500 * time.Millisecond},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 1s")
	})

	t.Run("incomplete TLS", func(t *testing.T) {
		_, err := NewEtcdStore(EtcdOptions{
			Endpoints: []string{"127.0.0.1:1"},
			TLS:       &TLSConfig{KeyFile: "client.key"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to configure TLS")
	})

	t.Run("missing CA file", func(t *testing.T) {
		_, err := NewEtcdStore(EtcdOptions{
			Endpoints: []string{"127.0.0.1:1"},
			TLS:       &TLSConfig{CAFile: "/nonexistent/ca.pem"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read CA certificate")
	})

	t.Run("lazy connection", func(t *testing.T) {
		s, err := NewEtcdStore(EtcdOptions{
			Endpoints:   []string{"127.0.0.1:1"},
			DialTimeout: 100 * time.Millisecond,
		})
		require.NoError(t, err)
		assert.NoError(t, s.Close())
	})
}

func TestNewEtcdStoreFromClient(t *testing.T) {
	_, err := NewEtcdStoreFromClient(nil, Options{})
	assert.Error(t, err)

	cli := unreachableClient(t)
	defer cli.Close()
	_, err = NewEtcdStoreFromClient(cli, Options{TTL: -time.Second})
	assert.Error(t, err)
}

func TestEtcdStore_Unreachable(t *testing.T) {
	s, err := NewEtcdStoreFromClient(unreachableClient(t), Options{Prefix: "msgs/"})
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err = s.Put(ctx, "k", testpb.Sample())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	_, err = s.Get(ctx, "k", testpb.Type(testpb.MessageName))
	assert.Error(t, err)
}

func TestEtcdStore_Closed(t *testing.T) {
	s, err := NewEtcdStoreFromClient(unreachableClient(t), Options{})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())

	ctx := context.Background()
	_, err = s.Put(ctx, "k", testpb.Sample())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.Get(ctx, "k", testpb.Type(testpb.MessageName))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.Delete(ctx, "k"), ErrClosed)
	_, err = s.Keys(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}
