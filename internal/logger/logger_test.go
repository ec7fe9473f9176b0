package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, format string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat(format)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetFormat("text")
		SetLevel("info")
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, "text")
	SetLevel("warn")

	Infof("hidden %d", 1)
	Warnf("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "level=WARN")
}

func TestJSONFormatWithAttrs(t *testing.T) {
	buf := capture(t, "json")

	With("trace_id", "abc").Info("cycle start")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "cycle start", rec["msg"])
	assert.Equal(t, "abc", rec["trace_id"])
}

func TestInfoBlockSplitsLines(t *testing.T) {
	buf := capture(t, "text")

	InfoBlock("\nfirst\nsecond\n")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[1], "second")
}
