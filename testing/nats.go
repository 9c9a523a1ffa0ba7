package testing

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const natsReadyTimeout = 5 * time.Second

// StartEmbeddedNATS runs a JetStream-enabled NATS server inside the test
// process and connects a client to it.
//
// The server binds a random loopback port and keeps its store in t.TempDir().
// Connection and server are torn down by t.Cleanup, connection first.
//
// Returns:
//   - *server.Server: Running server
//   - *nats.Conn: Client connected to the server
//
// Example:
//
//	_, nc := jttest.StartEmbeddedNATS(t)
//	js, err := jetstream.New(nc)
func StartEmbeddedNATS(t *testing.T) (*server.Server, *nats.Conn) {
	t.Helper()

	ns := startServer(t)
	nc, err := nats.Connect(ns.ClientURL(), nats.Name(t.Name()), nats.Timeout(2*time.Second))
	if err != nil {
		t.Fatalf("connect to embedded NATS at %s: %v", ns.ClientURL(), err)
	}
	t.Cleanup(nc.Close)

	return ns, nc
}

func startServer(t *testing.T) *server.Server {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	})
	if err != nil {
		t.Fatalf("create embedded NATS: %v", err)
	}

	go ns.Start()
	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	if !ns.ReadyForConnections(natsReadyTimeout) {
		t.Fatalf("embedded NATS not ready after %s", natsReadyTimeout)
	}

	return ns
}

// CreateJetStreamKV creates a memory-backed KV bucket keeping eight revisions
// per key.
//
// Parameters:
//   - t: Test that owns the bucket
//   - nc: Connection from StartEmbeddedNATS
//   - bucket: Bucket name
//
// Returns:
//   - jetstream.KeyValue: The new bucket
func CreateJetStreamKV(t *testing.T, nc *nats.Conn, bucket string) jetstream.KeyValue {
	t.Helper()

	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("open JetStream: %v", err)
	}

	kv, err := js.CreateKeyValue(t.Context(), jetstream.KeyValueConfig{
		Bucket:   bucket,
		History:  8,
		Storage:  jetstream.MemoryStorage,
		Replicas: 1,
	})
	if err != nil {
		t.Fatalf("create KV bucket %q: %v", bucket, err)
	}

	return kv
}

// NewKV starts an embedded server and returns a fresh bucket on it.
func NewKV(t *testing.T, bucket string) jetstream.KeyValue {
	t.Helper()
	_, nc := StartEmbeddedNATS(t)

	return CreateJetStreamKV(t, nc, bucket)
}
