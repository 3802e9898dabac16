package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MONEYVIEW_STORE_PATH.
const EnvPrefix = "MONEYVIEW"

// Config is the complete application configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Ingest  IngestConfig  `mapstructure:"ingest" yaml:"ingest"`
	Dialect DialectConfig `mapstructure:"dialect" yaml:"dialect"`
	Tags    TagsConfig    `mapstructure:"tags" yaml:"tags"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
	Export  ExportConfig  `mapstructure:"export" yaml:"export"`
	AI      AIConfig      `mapstructure:"ai" yaml:"ai"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// IngestConfig tunes the statement pipeline. Workers <= 0 means one per CPU.
type IngestConfig struct {
	Workers             int  `mapstructure:"workers" yaml:"workers"`
	SequentialThreshold int  `mapstructure:"sequential_threshold" yaml:"sequential_threshold"`
	RewriteNarrative    bool `mapstructure:"rewrite_narrative" yaml:"rewrite_narrative"`
}

// DialectConfig holds the bank-specific constants of the narrative decoder.
type DialectConfig struct {
	ClosingMarker   string `mapstructure:"closing_marker" yaml:"closing_marker"`
	ClosingPartner  string `mapstructure:"closing_partner" yaml:"closing_partner"`
	OfflineSentinel string `mapstructure:"offline_sentinel" yaml:"offline_sentinel"`
}

type TagsConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

type ExportConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

type AIConfig struct {
	Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
	Model             string `mapstructure:"model" yaml:"model"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	APIKey            string `mapstructure:"api_key" yaml:"-"`
}

// InitializeConfig loads defaults, then config.yaml, then environment
// variables, each layer overriding the previous one.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.moneyview")
	v.AddConfigPath(".moneyview")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults always decode.
	_ = v.Unmarshal(&config)
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ingest.workers", 0)
	v.SetDefault("ingest.sequential_threshold", 64)
	v.SetDefault("ingest.rewrite_narrative", true)

	v.SetDefault("dialect.closing_marker", "00Abschluss")
	v.SetDefault("dialect.closing_partner", "VR-BANK UCKERMARK-RANDOW")
	v.SetDefault("dialect.offline_sentinel", "OFFLINE")

	v.SetDefault("tags.file", "")
	v.SetDefault("store.path", "moneyview.db")
	v.SetDefault("export.delimiter", ",")

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.requests_per_minute", 10)
	v.SetDefault("ai.timeout_seconds", 30)
	v.SetDefault("ai.api_key", "")
}

// Validate checks a configuration assembled outside InitializeConfig, for
// example after command-line overrides.
func Validate(config *Config) error {
	return validateConfig(config)
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.Ingest.Workers < 0 {
		return fmt.Errorf("ingest.workers must not be negative, got: %d", config.Ingest.Workers)
	}

	if config.Ingest.SequentialThreshold < 0 {
		return fmt.Errorf("ingest.sequential_threshold must not be negative, got: %d", config.Ingest.SequentialThreshold)
	}

	if len(config.Export.Delimiter) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.Export.Delimiter)
	}

	if config.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}

	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY required when AI is enabled")
		}
		if config.AI.RequestsPerMinute < 1 || config.AI.RequestsPerMinute > 1000 {
			return fmt.Errorf("ai.requests_per_minute must be between 1 and 1000, got: %d", config.AI.RequestsPerMinute)
		}
		if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
			return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
		}
	}

	return nil
}

// ConfigureLoggingFromConfig applies level and format from config to logger.
func ConfigureLoggingFromConfig(config *Config, logger *logrus.Logger) *logrus.Logger {
	if logger == nil {
		logger = logrus.New()
	}

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
