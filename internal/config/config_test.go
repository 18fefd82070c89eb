package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/pumpwise/internal/model"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, model.Features(), cfg.Engine.Features)
	assert.Equal(t, DefaultModelDir, cfg.Engine.ModelDir)
	assert.Equal(t, DefaultPredictionThreshold, cfg.Engine.PredictionThreshold)
	assert.Equal(t, DefaultAnomalySensitivity, cfg.Anomaly.Sensitivity)
	assert.Equal(t, DefaultCriticalTemperature, cfg.Pump.CriticalTemperature)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Engine.CrossValidation)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pumpwise.yaml")
	yaml := `
engine:
  model_dir: /var/lib/pumpwise
  prediction_threshold: 0.7
anomaly:
  sensitivity: 0.5
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/pumpwise", cfg.Engine.ModelDir)
	assert.Equal(t, 0.7, cfg.Engine.PredictionThreshold)
	assert.Equal(t, 0.5, cfg.Anomaly.Sensitivity)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultMaintenanceInterval, cfg.Pump.MaintenanceInterval)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PUMPWISE_MODEL_DIR", "/tmp/override")
	t.Setenv("PUMPWISE_ANOMALY_SENSITIVITY", "0.25")
	t.Setenv("PUMPWISE_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override", cfg.Engine.ModelDir)
	assert.Equal(t, 0.25, cfg.Anomaly.Sensitivity)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestEnvBadFloatIgnored(t *testing.T) {
	t.Setenv("PUMPWISE_PREDICTION_THRESHOLD", "not-a-number")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPredictionThreshold, cfg.Engine.PredictionThreshold)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty features", func(c *Config) { c.Engine.Features = nil }},
		{"duplicate feature", func(c *Config) {
			c.Engine.Features = []string{"temperature", "temperature"}
		}},
		{"threshold above one", func(c *Config) { c.Engine.PredictionThreshold = 1.5 }},
		{"negative sensitivity", func(c *Config) { c.Anomaly.Sensitivity = -0.1 }},
		{"oil level above one", func(c *Config) { c.Pump.MinOilLevel = 2 }},
		{"zero maintenance interval", func(c *Config) { c.Pump.MaintenanceInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(cfg)
			assert.Error(t, validate(cfg))
		})
	}
}
