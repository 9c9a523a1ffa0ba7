// Package testing provides test utilities for the jointown library.
//
// It offers an embedded NATS server for snapshot publisher tests and a logger
// that writes through testing.T. It follows Go's convention of providing
// testing utilities in a dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Memory-backed KV bucket on a connection
//   - NewKV: Embedded server plus a fresh bucket in one call
//   - NewTestLogger: types.Logger backed by t.Logf
//
// Example usage:
//
//	import (
//	    "testing"
//	    jttest "github.com/arloliu/jointown/testing"
//	)
//
//	func TestPublisher(t *testing.T) {
//	    kv := jttest.NewKV(t, "ownership")
//	    // publish snapshots into kv
//	}
package testing
