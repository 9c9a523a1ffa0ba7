package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/jointown/types"
)

func TestSlogLogger_ImplementsInterface(t *testing.T) {
	t.Helper()
	var _ types.Logger = (*SlogLogger)(nil)
	var _ types.Logger = (*NopLogger)(nil)
}

func TestSlogLogger_Levels(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewSlog(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.Debug("exchange chain applied", "hops", 3)
	logger.Info("person added", "person", "Vasia")
	logger.Warn("person not found", "person", "7")
	logger.Error("even out failed", "tier", "normal")

	output := buf.String()
	assert.Contains(t, output, "level=DEBUG")
	assert.Contains(t, output, "hops=3")
	assert.Contains(t, output, "level=INFO")
	assert.Contains(t, output, "person=Vasia")
	assert.Contains(t, output, "level=WARN")
	assert.Contains(t, output, "level=ERROR")
	assert.Contains(t, output, "tier=normal")
}

func TestNew(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger, err := New(buf, Options{Level: "debug", Format: FormatJSON})
		require.NoError(t, err)

		logger.Debug("step", "n", 1)

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		require.Equal(t, "step", record["msg"])
		require.Equal(t, "DEBUG", record["level"])
		require.InDelta(t, 1, record["n"], 0)
	})

	t.Run("tint format filters by level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger, err := New(buf, Options{Level: "warn", NoColor: true})
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("shown", "person", "Pasha")

		output := buf.String()
		require.NotContains(t, output, "hidden")
		require.Contains(t, output, "shown")
		require.Contains(t, output, "person=Pasha")
	})

	t.Run("text format", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger, err := New(buf, Options{Format: "TEXT"})
		require.NoError(t, err)

		logger.Info("hello")
		require.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := New(&bytes.Buffer{}, Options{Format: "xml"})
		require.Error(t, err)
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := New(&bytes.Buffer{}, Options{Level: "loud"})
		require.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
	}
	for name, want := range cases {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()

	require.NotPanics(t, func() {
		logger.Debug("test message", "key", "value")
		logger.Info("")
		logger.Warn("message", "single")
		logger.Error("message", "k1", "v1", "k2", "v2")
		logger.Fatal("message") // must not exit
	})
}
