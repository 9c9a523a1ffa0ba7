package publish

import (
	"errors"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

var (
	// ErrPublishFailed is returned when a snapshot could not be written to KV.
	ErrPublishFailed = errors.New("snapshot publish failed")

	// ErrNoRecord is returned by Latest when nothing was published yet.
	ErrNoRecord = errors.New("no published snapshot")
)

// IsConnectivityError reports whether err is caused by a lost or slow NATS
// connection. Run skips snapshots failing this way instead of stopping.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrDisconnected) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "i/o timeout")
}
