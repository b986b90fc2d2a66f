package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", false)

	logger.Info().Msg("dropped")
	logger.Warn().Str("route", "/api/search").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "/api/search", entry["route"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name  string
		level string
		debug bool
		want  zerolog.Level
	}{
		{"info", "info", false, zerolog.InfoLevel},
		{"unknown falls back to info", "loud", false, zerolog.InfoLevel},
		{"empty falls back to info", "", false, zerolog.InfoLevel},
		{"debug mode lowers level", "info", true, zerolog.DebugLevel},
		{"debug mode keeps trace", "trace", true, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(&bytes.Buffer{}, tt.level, tt.debug)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}
