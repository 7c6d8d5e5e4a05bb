package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var lines []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		lines = append(lines, m)
	}
	return lines
}

func TestObservabilityLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, Options{Level: INFO})

	log.Info(ComponentParser, CategorySuccess, "req_1", "parsed", map[string]interface{}{"rows": 2})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "parsed", line["message"])
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "partsdesk", line["service"])
	assert.Equal(t, ComponentParser, line["component"])
	assert.Equal(t, CategorySuccess, line["category"])
	assert.Equal(t, "req_1", line["request_id"])
	assert.Equal(t, float64(2), line["rows"])
	assert.Contains(t, line, "timestamp")
}

func TestObservabilityLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, Options{Level: WARN})

	log.Debug(ComponentServer, CategoryRequest, "", "debug", nil)
	log.Info(ComponentServer, CategoryRequest, "", "info", nil)
	log.Warn(ComponentServer, CategoryWarning, "", "warn", nil)
	log.Error(ComponentServer, CategoryError, "", "error", nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "warn", lines[0]["message"])
	assert.Equal(t, "error", lines[1]["message"])
	assert.NotContains(t, lines[0], "request_id")
}

func TestObservabilityLoggerExtraction(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, Options{Level: DEBUG})

	log.Extraction("req_2", "m1", map[string]interface{}{"outcome": "table", "locator": "separator"})
	log.Extraction("req_2", "m2", map[string]interface{}{"outcome": "locator_miss"})

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "m1", lines[0]["message_id"])
	assert.Equal(t, "separator", lines[0]["locator"])
	assert.Equal(t, "debug", lines[1]["level"])
	assert.Equal(t, ComponentParser, lines[1]["component"])
}

func TestObservabilityLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, Options{Level: INFO, Format: "text"})

	log.Blocked("req_3", "viewer", "chat")

	out := buf.String()
	assert.Contains(t, out, "Role not allowed")
	assert.Contains(t, out, "role=viewer")
	assert.Contains(t, out, "module=chat")
}

func TestNewObservabilityLoggerWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	log, err := NewObservabilityLogger(Options{Level: INFO, Dir: dir})
	require.NoError(t, err)

	log.Request("req_4", "hello", nil)
	require.NoError(t, log.Close())

	data, err := os.ReadFile(filepath.Join(dir, "partsdesk.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestNewNopDiscards(t *testing.T) {
	log := NewNop()
	log.Error(ComponentServer, CategoryError, "", "dropped", nil)
	assert.NoError(t, log.Close())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"", INFO, false},
		{"warning", WARN, false},
		{" Error ", ERROR, false},
		{"verbose", INFO, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", DEBUG.String())
	assert.Equal(t, "ERROR", ERROR.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
	assert.Equal(t, "❌", ERROR.Emoji())
}
