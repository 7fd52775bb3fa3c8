package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponent(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)

	Component("watcher").Info().Msg("state file changed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "watcher", entry["cmp"])
	assert.Equal(t, "state file changed", entry["message"])
}

func TestSub(t *testing.T) {
	var buf bytes.Buffer
	parent := zerolog.New(&buf).With().Str("run", "1").Logger()

	Sub(parent, "app").Warn().Msg("persist failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "app", entry[ComponentKey])
	assert.Equal(t, "1", entry["run"])
	assert.Equal(t, "warn", entry["level"])
}
