package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "json")

	log.Info("dropped")
	log.Warn("kept", "source", "lider")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "lider", line["source"])
	assert.Equal(t, "canasta", line["service"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf, "bogus", "TEXT").Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
