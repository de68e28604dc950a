package redarch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLevelOrdering(t *testing.T) {
	assert.True(t, LevelDebug < LevelInfo)
	assert.True(t, LevelInfo < LevelWarn)
	assert.True(t, LevelWarn < LevelError)
	assert.True(t, LevelError < LevelFatal)
}

func TestParseLevel(t *testing.T) {
	for name, want := range map[string]Level{
		"DEBUG": LevelDebug,
		"info":  LevelInfo,
		" Warn": LevelWarn,
		"ERROR": LevelError,
		"fatal": LevelFatal,
	} {
		got, err := ParseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "LEVEL(42)", Level(42).String())
}

func TestLevelYAMLRoundTrip(t *testing.T) {
	out, err := yaml.Marshal(LevelError)
	require.NoError(t, err)

	var got Level
	require.NoError(t, yaml.Unmarshal(out, &got))
	assert.Equal(t, LevelError, got)

	var bad Level
	assert.Error(t, yaml.Unmarshal([]byte("chatty"), &bad))
}
