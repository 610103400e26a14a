package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"", log.InfoLevel, false},
		{"debug", log.DebugLevel, false},
		{" WARN ", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: FormatJSON, Writer: &buf})
	require.NoError(t, err)

	logger.Debug("agent finished", "agent", "DataAnalyzer", "level", 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "agent finished", rec["msg"])
	assert.Equal(t, "DataAnalyzer", rec["agent"])
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: FormatText, Writer: &buf})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, "shown"), "output %q", out)
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New(Options{Level: "nope"})
	assert.Error(t, err)

	_, err = New(Options{Format: "xml"})
	assert.ErrorContains(t, err, "invalid log format")
}

func TestDiscard(t *testing.T) {
	assert.False(t, Discard().Enabled(t.Context(), 0))
}
