// Package store persists protobuf messages as generic mappings.
//
// A Store keeps one message per key. Values are written as a small JSON
// envelope holding the message's full type name and its mapping, produced by
// the codec package, so stored records stay readable by any JSON-aware tool:
//
//	{"type":"acme.User","data":{"name":"ada","roles":["ADMIN"]}}
//
// Two backends are provided: RedisStore on github.com/redis/go-redis/v9 and
// EtcdStore on go.etcd.io/etcd/client/v3. Both record an OpenTelemetry span
// per operation and the metrics
//
//	protomap.store.operations  counter    operations by backend, op and outcome
//	protomap.store.duration    histogram  operation latency in milliseconds
//
// Tracing and metrics are no-ops unless a Tracer or MeterProvider is given.
//
//	s, err := store.NewRedisStore(store.RedisOptions{
//		URL:     "redis://localhost:6379",
//		Options: store.Options{Prefix: "users/", TTL: time.Hour},
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer s.Close()
//
//	key, err := s.Put(ctx, "", user) // empty key: a UUID is generated
//	msg, err := s.Get(ctx, key, user.ProtoReflect().Type())
package store
