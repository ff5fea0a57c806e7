package cmd_test

import (
	"errors"
	"testing"
	"time"

	"pizzaworkflow/cmd"
	"pizzaworkflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := cmd.LoadConfig(env(nil))

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, cmd.BackendMemory, cfg.StateBackend)
	assert.Equal(t, cmd.BackendMemory, cfg.BusBackend)
	assert.Equal(t, "orders", cfg.NotificationTopic)
	assert.Equal(t, "pizzastatestore", cfg.StateStoreName)
	assert.InDelta(t, 1.0, cfg.StageDurationScale, 0)
	assert.Zero(t, cfg.ValidationTimeout)
	assert.Empty(t, cfg.ProjectionStoreName)
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := cmd.LoadConfig(env(map[string]string{
		"STATE_BACKEND":        "Postgres",
		"DB_USER":              "pizza",
		"DB_NAME":              "pizza",
		"BUS_BACKEND":          "kafka",
		"KAFKA_BROKERS":        "k1:9092, k2:9092",
		"REDIS_DB":             "2",
		"STAGE_DURATION_SCALE": "0.5",
		"VALIDATION_TIMEOUT":   "90s",
	}))

	require.NoError(t, err)
	assert.Equal(t, cmd.BackendPostgres, cfg.StateBackend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.InDelta(t, 0.5, cfg.StageDurationScale, 0)
	assert.Equal(t, 90*time.Second, cfg.ValidationTimeout)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown state backend": {"STATE_BACKEND": "etcd"},
		"postgres without db":   {"STATE_BACKEND": "postgres"},
		"kafka without brokers": {"BUS_BACKEND": "kafka"},
		"bad timeout":           {"VALIDATION_TIMEOUT": "soon"},
		"negative scale":        {"STAGE_DURATION_SCALE": "-1"},
		"bad redis db":          {"REDIS_DB": "zero"},
	}

	for name, values := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := cmd.LoadConfig(env(values))

			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrValueIsInvalid) || errors.Is(err, errs.ErrValueIsRequired))
		})
	}
}
