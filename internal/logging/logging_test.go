package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONToNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)

	log.Debug().Str("key", "evaStatusSite_v1").Msg("loaded")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "loaded", line["message"])
	assert.Equal(t, "evaStatusSite_v1", line["key"])
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"warn", zerolog.WarnLevel},
		{"debug", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.level, &bytes.Buffer{}).GetLevel())
		})
	}
}
