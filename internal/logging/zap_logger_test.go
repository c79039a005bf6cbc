package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/httpsify/pkg/httpsify"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry), "line is not JSON: %s", sc.Text())
		entries = append(entries, entry)
	}
	return entries
}

func TestZapLogger_EmitsJSONPerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZapLogger(&buf, true)

	logger.Verbose("listed %s", "/site")
	logger.Info("start processing %s [%d]", "/site/a.html", 1)
	logger.Error("ReadError %s: denied", "/site/b.html")
	require.NoError(t, logger.Sync())

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 3)

	assert.Equal(t, "debug", entries[0]["level"])
	assert.Equal(t, "listed /site", entries[0]["msg"])
	assert.Equal(t, "info", entries[1]["level"])
	assert.Equal(t, "start processing /site/a.html [1]", entries[1]["msg"])
	assert.Equal(t, "error", entries[2]["level"])
	assert.Contains(t, entries[2], "ts")
}

func TestZapLogger_VerboseDisabled(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZapLogger(&buf, false)

	logger.Verbose("hidden")
	logger.Info("shown")
	require.NoError(t, logger.Sync())

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "shown", entries[0]["msg"])
}

func TestZapLogger_WithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZapLogger(&buf, false).With("run_id", "abc")

	logger.Info("finish processing %s [%d]", "/site/a.html", 1)
	require.NoError(t, logger.Sync())

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0]["run_id"])
}

func TestNew_SelectsFormat(t *testing.T) {
	tests := []struct {
		format  string
		want    interface{}
		wantErr bool
	}{
		{"", &ConsoleLogger{}, false},
		{httpsify.LogFormatConsole, &ConsoleLogger{}, false},
		{httpsify.LogFormatJSON, &ZapLogger{}, false},
		{"xml", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			logger, err := New(tt.format, &bytes.Buffer{}, false)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, httpsify.ErrInvalidConfig))
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, logger)
		})
	}
}

func TestWithRunID_TagsStructuredLoggers(t *testing.T) {
	var buf bytes.Buffer
	base := NewZapLogger(&buf, false)

	logger := WithRunID(base, "run-42")
	logger.Info("start processing %s [%d]", "/site/a.html", 1)
	require.NoError(t, base.Sync())

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "run-42", entries[0]["run_id"])
}

func TestWithRunID_LeavesLineLoggersAlone(t *testing.T) {
	console := NewConsoleLoggerTo(&bytes.Buffer{}, false)
	assert.Same(t, console, WithRunID(console, "run-42"))

	null := NewNullLogger()
	assert.Equal(t, null, WithRunID(null, "run-42"))
}
