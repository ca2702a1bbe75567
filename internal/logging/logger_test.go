package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "planner", "debug", "json")
	log.Debug().Str("k", "v").Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "planner", line["service"])
	assert.Equal(t, "hello", line["message"])
	assert.Equal(t, "v", line["k"])
}

func TestNewWithWriterBadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "planner", "loud", "json")
	log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
	log.Info().Msg("shown")
	assert.NotZero(t, buf.Len())
}

func TestCronLoggerError(t *testing.T) {
	var buf bytes.Buffer
	l := Cron(NewWithWriter(&buf, "planner", "info", "json"))
	l.Error(errors.New("boom"), "job failed", "entry", 3)
	assert.Contains(t, buf.String(), "job failed")
	assert.Contains(t, buf.String(), "boom")
	assert.Contains(t, buf.String(), `"component":"cron"`)
}
