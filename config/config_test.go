package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "clover-api", cfg.AppName)
	assert.Equal(t, 3004, cfg.Port)
	assert.Equal(t, 0.5, cfg.MatchNameWeight)
	assert.Equal(t, 0.3, cfg.MatchValueWeight)
	assert.Equal(t, 0.2, cfg.MatchDateWeight)
	assert.Equal(t, 0.6, cfg.MatchMinConfidence)
	assert.Equal(t, 5, cfg.MatchMaxMatches)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "db/pg", cfg.DatabaseMigrationFolderPath)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MATCH_MIN_CONFIDENCE", "0.75")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 0.75, cfg.MatchMinConfidence)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_RejectsInvalidWeights(t *testing.T) {
	t.Setenv("MATCH_NAME_WEIGHT", "1.5")

	_, err := Load()
	require.Error(t, err)
}
