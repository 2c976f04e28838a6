package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelByEnv(t *testing.T) {
	buf := &bytes.Buffer{}
	NewWithWriter(buf, "prod").Debug("hidden")
	assert.Empty(t, buf.String())

	NewWithWriter(buf, "dev").Debug("shown", "op", "subscribe")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "subscribe", rec["op"])
	assert.Equal(t, "subpass", rec["service"])
}
