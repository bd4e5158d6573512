package config

import (
	"os"
	"strconv"

	"agrosim/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Corpus      CorpusConfig `validate:"required"`
	Model       ModelConfig  `validate:"required"`
	Server      ServerConfig `validate:"required"`
	Database    DatabaseConfig
	Engine      EngineConfig
	Calibration CalibrationConfig
}

// CorpusConfig selects and locates the historical corpus source
type CorpusConfig struct {
	// Source is "file" (CSV/XLSX, default) or "postgres"
	Source   string
	File     string
	District string
}

// ModelConfig locates the trained model artifact bundle
type ModelConfig struct {
	BundlePath string
	// Required aborts boot when the bundle is missing or invalid. When
	// false the process serves fallback-only advisories.
	Required bool
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required"`
	OpsPort string
	GinMode string
}

// DatabaseConfig holds optional Postgres settings (corpus source and
// advisory log). Empty URL disables both.
type DatabaseConfig struct {
	URL string
}

// EngineConfig holds simulation engine tunables
type EngineConfig struct {
	PredictWorkers  int
	TopK            int
	MaxCombinations int
}

// CalibrationConfig pins the confidence-decay and risk constants. The exact
// formula is a deliberate engine choice, so the constants stay configurable
// and are pinned by tests.
type CalibrationConfig struct {
	BaseObserved       float64 // base confidence for observed combinations
	BaseExtrapolated   float64 // base confidence under a batch coverage warning
	DensitySaturation  int     // matching rows needed for full density credit
	ConfidenceFloor    float64
	CoveragePenalty    float64 // batch-level multiplier when coverage_warning set
	FallbackConfidence float64

	RiskLowCV  float64 // yield CV at or below this is Low risk
	RiskHighCV float64 // yield CV at or above this is High risk
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Corpus: CorpusConfig{
			Source:   getEnvOrDefault("CORPUS_SOURCE", "file"),
			File:     getEnvOrDefault("CORPUS_FILE", "data/data_season.csv"),
			District: getEnvOrDefault("CORPUS_DISTRICT", "Mysuru"),
		},
		Model: ModelConfig{
			BundlePath: getEnvOrDefault("MODEL_BUNDLE", "models/yield_bundle.json"),
			Required:   getEnvBoolOrDefault("MODEL_REQUIRED", true),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			OpsPort: getEnvOrDefault("OPS_PORT", "6060"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Engine: EngineConfig{
			PredictWorkers:  getEnvIntOrDefault("PREDICT_WORKERS", 8),
			TopK:            getEnvIntOrDefault("RANKING_TOP_K", 5),
			MaxCombinations: getEnvIntOrDefault("MAX_COMBINATIONS", 2000),
		},
		Calibration: DefaultCalibration(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// DefaultCalibration returns the pinned calibration constants.
func DefaultCalibration() CalibrationConfig {
	return CalibrationConfig{
		BaseObserved:       getEnvFloatOrDefault("CONFIDENCE_BASE_OBSERVED", 0.85),
		BaseExtrapolated:   getEnvFloatOrDefault("CONFIDENCE_BASE_EXTRAPOLATED", 0.55),
		DensitySaturation:  getEnvIntOrDefault("CONFIDENCE_DENSITY_SATURATION", 5),
		ConfidenceFloor:    getEnvFloatOrDefault("CONFIDENCE_FLOOR", 0.4),
		CoveragePenalty:    getEnvFloatOrDefault("CONFIDENCE_COVERAGE_PENALTY", 0.85),
		FallbackConfidence: 0.5,
		RiskLowCV:          getEnvFloatOrDefault("RISK_LOW_CV", 0.15),
		RiskHighCV:         getEnvFloatOrDefault("RISK_HIGH_CV", 0.35),
	}
}

func validateConfig(config *Config) error {
	switch config.Corpus.Source {
	case "file":
		if config.Corpus.File == "" {
			return errors.ConfigInvalid("CORPUS_FILE is required when CORPUS_SOURCE=file")
		}
	case "postgres":
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required when CORPUS_SOURCE=postgres")
		}
	default:
		return errors.ConfigInvalid("CORPUS_SOURCE must be 'file' or 'postgres'")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Engine.PredictWorkers < 1 {
		return errors.ConfigInvalid("PREDICT_WORKERS must be at least 1")
	}
	if config.Engine.TopK < 1 {
		return errors.ConfigInvalid("RANKING_TOP_K must be at least 1")
	}
	cal := config.Calibration
	if cal.RiskLowCV <= 0 || cal.RiskHighCV <= cal.RiskLowCV {
		return errors.ConfigInvalid("risk CV thresholds must satisfy 0 < low < high")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
