package testutil

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	assert.Equal(t, zerolog.WarnLevel, ParseLogLevel(zerolog.WarnLevel))

	t.Setenv("LOG_LEVEL", "debug")
	assert.Equal(t, zerolog.DebugLevel, ParseLogLevel(zerolog.WarnLevel))

	t.Setenv("LOG_LEVEL", "chatty")
	assert.Equal(t, zerolog.InfoLevel, ParseLogLevel(zerolog.InfoLevel))
}

func TestCaptureLogs(t *testing.T) {
	prevLevel := zerolog.GlobalLevel()

	t.Run("capture", func(t *testing.T) {
		buf := CaptureLogs(t, zerolog.WarnLevel)
		log.Info().Msg("dropped")
		log.Warn().Str("pipeline", "cluster.KMeans()").Msg("kept")

		assert.NotContains(t, buf.String(), "dropped")
		assert.Contains(t, buf.String(), `"level":"warn"`)
		assert.Contains(t, buf.String(), `"pipeline":"cluster.KMeans()"`)
	})

	// Cleanup restores the previous level
	assert.Equal(t, prevLevel, zerolog.GlobalLevel())
}
