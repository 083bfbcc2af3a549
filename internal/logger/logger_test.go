package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    log.Level
		wantErr bool
	}{
		{"debug", log.DebugLevel, false},
		{"INFO", log.InfoLevel, false},
		{"", log.InfoLevel, false},
		{"warning", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"verbose", log.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormatter(t *testing.T) {
	f, err := ParseFormatter("json")
	require.NoError(t, err)
	assert.Equal(t, log.JSONFormatter, f)

	f, err = ParseFormatter("logfmt")
	require.NoError(t, err)
	assert.Equal(t, log.LogfmtFormatter, f)

	_, err = ParseFormatter("xml")
	assert.Error(t, err)
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info", "json")
	require.NoError(t, err)

	l.Debug("hidden")
	l.With("component", "test").Info("todo created", "todo_id", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "todo created", entry["msg"])
	assert.Equal(t, "test", entry["component"])
	assert.EqualValues(t, 7, entry["todo_id"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_InvalidSettings(t *testing.T) {
	_, err := New(nil, "loud", "text")
	assert.Error(t, err)

	_, err = New(nil, "info", "yaml")
	assert.Error(t, err)
}
