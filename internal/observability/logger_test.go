package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "")
	require.NoError(t, err)

	logger.Info("validated", "path", "pdf/validate.pdf", "violations", 3)
	logger.Debug("hidden")

	assert.Contains(t, buf.String(), "msg=validated")
	assert.Contains(t, buf.String(), "path=pdf/validate.pdf")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelDebug, "JSON")
	require.NoError(t, err)

	logger.Debug("applied fix", "action", "set_language")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "applied fix", entry["msg"])
	assert.Equal(t, "set_language", entry["action"])
	assert.Equal(t, "DEBUG", entry["level"])
}

func TestNewLogger_UnknownFormat(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, slog.LevelInfo, "xml")
	assert.Error(t, err)
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, logger, OrDiscard(logger))
}
