package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(t *testing.T, level string) (*logrus.Logger, *bytes.Buffer) {
	t.Helper()
	l, err := New(level, "json")
	require.NoError(t, err)
	var buf bytes.Buffer
	l.SetOutput(&buf)
	return l, &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	l, err := New("warn", "text")
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)

	_, err = New("loud", "text")
	assert.Error(t, err)
	_, err = New("info", "xml")
	assert.Error(t, err)
}

func TestSlog_ForwardsFields(t *testing.T) {
	l, buf := jsonLogger(t, "info")
	logger := NewSlog(l).With("component", "graph")

	logger.Info("GRAPH: Node added", "node_id", "abc", "position", 2, "error", errors.New("boom"))

	entry := decode(t, buf)
	assert.Equal(t, "GRAPH: Node added", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "graph", entry["component"])
	assert.Equal(t, "abc", entry["node_id"])
	assert.Equal(t, float64(2), entry["position"])
	assert.Equal(t, "boom", entry["error"])
}

func TestSlog_Groups(t *testing.T) {
	l, buf := jsonLogger(t, "info")
	logger := NewSlog(l).WithGroup("image")

	logger.Warn("loaded", slog.Int("width", 4), slog.Group("meta", slog.String("format", "png")))

	entry := decode(t, buf)
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, float64(4), entry["image.width"])
	assert.Equal(t, "png", entry["image.meta.format"])
}

func TestSlog_RespectsLevel(t *testing.T) {
	l, buf := jsonLogger(t, "info")
	logger := NewSlog(l)

	logger.Debug("hidden")
	assert.Zero(t, buf.Len())
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}
