package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseLevel(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestZerologAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := NewZerolog(&buf, zerolog.InfoLevel)

	l.Debug("Test", "hidden", nil)
	assert.Zero(t, buf.Len())

	l.Info("Catalog", "loaded", map[string]interface{}{"stars": 202})
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Catalog", entry["component"])
	assert.Equal(t, "loaded", entry["message"])
	assert.EqualValues(t, 202, entry["stars"])

	buf.Reset()
	l.Error("Generator", errors.New("boom"), map[string]interface{}{"operation": "render"})
	entry = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "render failed", entry["message"])
}

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "missingstar.log")
	var console bytes.Buffer
	l, closer, err := New(Options{Level: "debug", File: path, Console: &console})
	require.NoError(t, err)

	l.Debug("Test", "to file", nil)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"to file"`)
	assert.Contains(t, console.String(), "to file")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, _, err := New(Options{Level: "chatty"})
	assert.Error(t, err)
}
