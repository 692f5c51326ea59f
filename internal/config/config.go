package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Narrative NarrativeConfig `yaml:"narrative" mapstructure:"narrative"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// ScoringConfig holds the tunable parameters of the score composition.
type ScoringConfig struct {
	OperatorWeight float64 `yaml:"operator_weight" mapstructure:"operator_weight"`
	TailWeight     float64 `yaml:"tail_weight" mapstructure:"tail_weight"`
	Baseline       float64 `yaml:"baseline" mapstructure:"baseline"`
	Spread         float64 `yaml:"spread" mapstructure:"spread"`
	ConfidenceRate float64 `yaml:"confidence_rate" mapstructure:"confidence_rate"`
}

// NarrativeConfig configures the prose-explanation layer.
type NarrativeConfig struct {
	Enabled           bool    `yaml:"enabled" mapstructure:"enabled"`
	Model             string  `yaml:"model" mapstructure:"model"`
	MaxTokens         int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature       float64 `yaml:"temperature" mapstructure:"temperature"`
	RequestTimeoutSec int     `yaml:"request_timeout_sec" mapstructure:"request_timeout_sec"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// RetryConfig configures retry and circuit breaker behavior for API calls.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
	FailureThreshold int     `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int     `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// BatchConfig configures batch scoring.
type BatchConfig struct {
	MaxConcurrentOperators int `yaml:"max_concurrent_operators" mapstructure:"max_concurrent_operators"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TRUSTSCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "trustscore.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("batch.max_concurrent_operators", 5)
	v.SetDefault("scoring.operator_weight", 0.6)
	v.SetDefault("scoring.tail_weight", 0.4)
	v.SetDefault("scoring.baseline", 50)
	v.SetDefault("scoring.spread", 0.5)
	v.SetDefault("scoring.confidence_rate", 0.384)
	v.SetDefault("narrative.enabled", false)
	v.SetDefault("narrative.model", "claude-haiku-4-5-20251001")
	v.SetDefault("narrative.max_tokens", 1024)
	v.SetDefault("narrative.temperature", 0.2)
	v.SetDefault("narrative.request_timeout_sec", 60)
	v.SetDefault("narrative.requests_per_second", 2)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 30000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.25)
	v.SetDefault("retry.failure_threshold", 5)
	v.SetDefault("retry.reset_timeout_secs", 30)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is sufficient for the given
// command mode. Mode is one of "score", "batch", or "normalize".
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "score", "batch":
		if c.Scoring.OperatorWeight < 0 || c.Scoring.TailWeight < 0 {
			errs = append(errs, "scoring weights must be >= 0")
		}
		if diff := c.Scoring.OperatorWeight + c.Scoring.TailWeight - 1; diff > 1e-9 || diff < -1e-9 {
			errs = append(errs, "scoring.operator_weight + scoring.tail_weight must equal 1")
		}
		if c.Narrative.Enabled && c.Anthropic.Key == "" {
			errs = append(errs, "anthropic.key is required when narrative.enabled is true")
		}
		if c.Store.Driver != "postgres" && c.Store.Driver != "sqlite" {
			errs = append(errs, "store.driver must be postgres or sqlite")
		}
		if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required for the postgres driver")
		}
		if mode == "batch" {
			if c.Batch.MaxConcurrentOperators < 1 || c.Batch.MaxConcurrentOperators > 50 {
				errs = append(errs, "batch.max_concurrent_operators must be between 1 and 50")
			}
		}
	case "normalize":
		// Normalization is pure transformation; nothing external required.
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
