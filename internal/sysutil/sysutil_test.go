package sysutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":     zerolog.DebugLevel,
		"  DeBuG  ": zerolog.DebugLevel,
		"info":      zerolog.InfoLevel,
		"":          zerolog.InfoLevel,
		"warning":   zerolog.WarnLevel,
		"error":     zerolog.ErrorLevel,
		"fatal":     zerolog.FatalLevel,
		"panic":     zerolog.PanicLevel,
		"verbose":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	var buf bytes.Buffer
	lg := NewLogger(&buf, "warn", false, "ghostgear-presence")
	require.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	lg.Info().Msg("dropped")
	assert.Zero(t, buf.Len(), "info must be filtered at warn")

	lg.Warn().Msg("kept")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ghostgear-presence", line["service"])
	assert.Equal(t, "kept", line["message"])
	assert.Contains(t, line, "time")
}

func TestNewLogger_Pretty(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	var buf bytes.Buffer
	lg := NewLogger(&buf, "info", true, "svc")
	lg.Info().Msg("hello")
	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.False(t, strings.HasPrefix(strings.TrimSpace(out), "{"), "console writer output should not be JSON: %s", out)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "", FirstNonEmpty())
	assert.Equal(t, "", FirstNonEmpty(" ", "\t"))
	assert.Equal(t, "  hi  ", FirstNonEmpty("", "  hi  ", "there"))
	assert.Equal(t, "Welcome", FirstNonEmpty("Welcome", "default"))
}
