package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartEmbeddedNATS(t *testing.T) {
	ns, nc := StartEmbeddedNATS(t)

	require.NotNil(t, ns)
	require.True(t, nc.IsConnected())
	require.True(t, ns.ReadyForConnections(1*time.Second))
}

func TestCreateJetStreamKV(t *testing.T) {
	_, nc := StartEmbeddedNATS(t)
	kv := CreateJetStreamKV(t, nc, "test-bucket")

	rev, err := kv.Put(t.Context(), "key", []byte("value"))
	require.NoError(t, err)
	require.Positive(t, rev)

	entry, err := kv.Get(t.Context(), "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), entry.Value())
	require.Equal(t, "test-bucket", kv.Bucket())
}

func TestNewKV(t *testing.T) {
	kv := NewKV(t, "snapshots")

	status, err := kv.Status(t.Context())
	require.NoError(t, err)
	require.Equal(t, int64(8), status.History())
	require.Equal(t, "snapshots", status.Bucket())

	_, err = kv.Get(t.Context(), "missing")
	require.Error(t, err)
}

func TestNewTestLogger(t *testing.T) {
	logger := NewTestLogger(t)
	require.NotPanics(t, func() {
		logger.Debug("debug", "k", 1)
		logger.Info("info")
		logger.Warn("warn", "k", "v")
		logger.Error("error")
	})
}
