package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/pumpwise/internal/model"
)

// Default pump operating constants and engine settings.
const (
	DefaultCriticalTemperature = 85.0 // Celsius
	DefaultMaxVibration        = 7.5  // m/s^2
	DefaultMinOilLevel         = 0.2  // fraction of full
	DefaultMaintenanceInterval = 720  // hours
	DefaultPredictionThreshold = 0.85
	DefaultAnomalySensitivity  = 0.9
	DefaultModelDir            = "models"
	DefaultTrainingDataFile    = "data/training_data.csv"
)

// Config holds all Pumpwise configuration.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	Pump    PumpConfig    `yaml:"pump"`
	Anomaly AnomalyConfig `yaml:"anomaly"`
	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig holds failure-model settings.
type EngineConfig struct {
	// Features is the ordered sensor channel list the model assumes.
	// Defaults to the canonical 11-channel list.
	Features []string `yaml:"features"`

	// ModelDir is where model, preprocessor and metadata artifacts live.
	ModelDir string `yaml:"model_dir"`

	// TrainingDataFile is the CSV the auto-training fallback reads.
	TrainingDataFile string `yaml:"training_data_file"`

	// PredictionThreshold is the probability at which collaborators
	// should raise a failure alert.
	PredictionThreshold float64 `yaml:"prediction_threshold"`

	// CrossValidation enables informational 5-fold CV during training.
	CrossValidation bool `yaml:"cross_validation"`
}

// PumpConfig holds physical pump limits used by the rule layer.
type PumpConfig struct {
	CriticalTemperature float64 `yaml:"critical_temperature"`
	MaxVibration        float64 `yaml:"max_vibration"`
	MinOilLevel         float64 `yaml:"min_oil_level"`
	MaintenanceInterval int     `yaml:"maintenance_interval"` // hours
}

// AnomalyConfig holds batch anomaly-detection settings.
type AnomalyConfig struct {
	// Sensitivity in [0,1] controls how aggressively rows are flagged.
	Sensitivity float64 `yaml:"sensitivity"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// Load reads the optional yaml config file at path, applies environment
// overrides, validates and returns the result. An empty path skips the
// file and yields defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			Features:            model.Features(),
			ModelDir:            DefaultModelDir,
			TrainingDataFile:    DefaultTrainingDataFile,
			PredictionThreshold: DefaultPredictionThreshold,
			CrossValidation:     true,
		},
		Pump: PumpConfig{
			CriticalTemperature: DefaultCriticalTemperature,
			MaxVibration:        DefaultMaxVibration,
			MinOilLevel:         DefaultMinOilLevel,
			MaintenanceInterval: DefaultMaintenanceInterval,
		},
		Anomaly: AnomalyConfig{
			Sensitivity: DefaultAnomalySensitivity,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// applyEnv overlays PUMPWISE_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	cfg.Engine.ModelDir = getenv("PUMPWISE_MODEL_DIR", cfg.Engine.ModelDir)
	cfg.Engine.TrainingDataFile = getenv("PUMPWISE_TRAINING_DATA", cfg.Engine.TrainingDataFile)
	cfg.Engine.PredictionThreshold = getenvFloat("PUMPWISE_PREDICTION_THRESHOLD", cfg.Engine.PredictionThreshold)
	cfg.Anomaly.Sensitivity = getenvFloat("PUMPWISE_ANOMALY_SENSITIVITY", cfg.Anomaly.Sensitivity)
	cfg.Logging.Level = getenv("PUMPWISE_LOG_LEVEL", cfg.Logging.Level)
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if len(cfg.Engine.Features) == 0 {
		return fmt.Errorf("engine.features must not be empty")
	}
	seen := make(map[string]bool, len(cfg.Engine.Features))
	for _, f := range cfg.Engine.Features {
		if f == "" {
			return fmt.Errorf("engine.features contains an empty name")
		}
		if seen[f] {
			return fmt.Errorf("engine.features lists %q twice", f)
		}
		seen[f] = true
	}
	if cfg.Engine.PredictionThreshold < 0 || cfg.Engine.PredictionThreshold > 1 {
		return fmt.Errorf("engine.prediction_threshold %v is out of range [0, 1]", cfg.Engine.PredictionThreshold)
	}
	if cfg.Anomaly.Sensitivity < 0 || cfg.Anomaly.Sensitivity > 1 {
		return fmt.Errorf("anomaly.sensitivity %v is out of range [0, 1]", cfg.Anomaly.Sensitivity)
	}
	if cfg.Pump.MinOilLevel < 0 || cfg.Pump.MinOilLevel > 1 {
		return fmt.Errorf("pump.min_oil_level %v is out of range [0, 1]", cfg.Pump.MinOilLevel)
	}
	if cfg.Pump.MaintenanceInterval <= 0 {
		return fmt.Errorf("pump.maintenance_interval must be positive")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
