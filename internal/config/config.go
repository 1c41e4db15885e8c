package config

import (
	"os"
	"strconv"
	"time"

	"datastory/adapters/ingest"
	"datastory/adapters/llm"
	"datastory/internal/analysis"
	"datastory/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	AI       llm.Config
	Ingest   ingest.LoaderConfig
	Analysis analysis.Config
}

// Load reads configuration from environment variables and validates it.
// The API credential is required; everything else has defaults.
func Load() (*Config, error) {
	aiConfig, err := loadAIConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AI configuration")
	}

	return &Config{
		AI:       *aiConfig,
		Ingest:   loadIngestConfig(),
		Analysis: loadAnalysisConfig(),
	}, nil
}

func loadAIConfig() (*llm.Config, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, errors.ConfigInvalid("OPENAI_API_KEY is required")
	}

	cfg := llm.DefaultConfig()
	cfg.APIKey = apiKey
	cfg.BaseURL = getEnvOrDefault("OPENAI_BASE_URL", cfg.BaseURL)
	cfg.Model = getEnvOrDefault("LLM_MODEL", cfg.Model)
	cfg.Temperature = getEnvFloatOrDefault("TEMPERATURE", cfg.Temperature)
	cfg.MaxTokens = getEnvIntOrDefault("MAX_TOKENS", cfg.MaxTokens)
	cfg.RequestTimeout = getEnvDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.Retry.MaxAttempts = getEnvIntOrDefault("MAX_ATTEMPTS", cfg.Retry.MaxAttempts)
	cfg.Retry.InitialBackoff = getEnvDurationOrDefault("RETRY_BACKOFF", cfg.Retry.InitialBackoff)
	return &cfg, nil
}

func loadIngestConfig() ingest.LoaderConfig {
	cfg := ingest.DefaultLoaderConfig()
	cfg.Coercion.Tolerance = getEnvFloatOrDefault("KIND_TOLERANCE", cfg.Coercion.Tolerance)
	cfg.Coercion.SampleRows = getEnvIntOrDefault("KIND_SAMPLE_ROWS", cfg.Coercion.SampleRows)
	cfg.Cleaning.Enabled = getEnvBoolOrDefault("CLEAN_DATA", cfg.Cleaning.Enabled)
	return cfg
}

func loadAnalysisConfig() analysis.Config {
	cfg := analysis.DefaultConfig()
	cfg.ZScoreThreshold = getEnvFloatOrDefault("ZSCORE_THRESHOLD", cfg.ZScoreThreshold)
	cfg.CorrelationThreshold = getEnvFloatOrDefault("CORRELATION_THRESHOLD", cfg.CorrelationThreshold)
	cfg.MinTrendSamples = getEnvIntOrDefault("MIN_TREND_SAMPLES", cfg.MinTrendSamples)
	cfg.MaxOutliersPerColumn = getEnvIntOrDefault("MAX_OUTLIERS_PER_COLUMN", cfg.MaxOutliersPerColumn)
	return cfg
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
