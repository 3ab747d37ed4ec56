package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewTagsService(t *testing.T) {
	var buf bytes.Buffer
	logger := New(zapcore.AddSync(&buf))

	logger.Info("vote cast", zap.Uint("post_id", 7))
	require.NoError(t, logger.Sync())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "stackqa", line["service"])
	assert.Equal(t, "vote cast", line["msg"])
	assert.EqualValues(t, 7, line["post_id"])
	assert.NotEmpty(t, line["caller"])
}

func TestSetDebug(t *testing.T) {
	prev := level.Level()
	t.Cleanup(func() { level.SetLevel(prev) })
	level.SetLevel(zap.InfoLevel)

	var buf bytes.Buffer
	logger := New(zapcore.AddSync(&buf))

	logger.Debug("hidden")
	assert.Zero(t, buf.Len())

	SetDebug(true)
	logger.Debug("shown")
	assert.Contains(t, buf.String(), "shown")

	SetDebug(false)
	assert.False(t, level.Enabled(zap.DebugLevel))
}
