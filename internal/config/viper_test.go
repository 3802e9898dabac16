package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearTestEnvVars blanks every variable the tests touch; viper ignores empty
// values, so blank behaves like unset.
func clearTestEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MONEYVIEW_LOG_LEVEL",
		"MONEYVIEW_LOG_FORMAT",
		"MONEYVIEW_INGEST_WORKERS",
		"MONEYVIEW_INGEST_SEQUENTIAL_THRESHOLD",
		"MONEYVIEW_INGEST_REWRITE_NARRATIVE",
		"MONEYVIEW_DIALECT_CLOSING_PARTNER",
		"MONEYVIEW_TAGS_FILE",
		"MONEYVIEW_STORE_PATH",
		"MONEYVIEW_EXPORT_DELIMITER",
		"MONEYVIEW_AI_ENABLED",
		"MONEYVIEW_AI_MODEL",
		"MONEYVIEW_AI_REQUESTS_PER_MINUTE",
		"GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
	}
	chdir(t, t.TempDir())
}

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, 0, config.Ingest.Workers)
	assert.Equal(t, 64, config.Ingest.SequentialThreshold)
	assert.True(t, config.Ingest.RewriteNarrative)
	assert.Equal(t, "00Abschluss", config.Dialect.ClosingMarker)
	assert.Equal(t, "VR-BANK UCKERMARK-RANDOW", config.Dialect.ClosingPartner)
	assert.Equal(t, "OFFLINE", config.Dialect.OfflineSentinel)
	assert.Equal(t, "moneyview.db", config.Store.Path)
	assert.Equal(t, ",", config.Export.Delimiter)
	assert.False(t, config.AI.Enabled)
	assert.Equal(t, "gemini-2.0-flash", config.AI.Model)
	assert.Equal(t, 10, config.AI.RequestsPerMinute)
}

func TestDefault_MatchesInitializeConfig(t *testing.T) {
	clearTestEnvVars(t)

	loaded, err := InitializeConfig()
	require.NoError(t, err)
	assert.Equal(t, loaded, Default())
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)

	t.Setenv("MONEYVIEW_LOG_LEVEL", "debug")
	t.Setenv("MONEYVIEW_LOG_FORMAT", "json")
	t.Setenv("MONEYVIEW_INGEST_WORKERS", "3")
	t.Setenv("MONEYVIEW_INGEST_REWRITE_NARRATIVE", "false")
	t.Setenv("MONEYVIEW_STORE_PATH", "/tmp/ledger.db")
	t.Setenv("MONEYVIEW_EXPORT_DELIMITER", ";")
	t.Setenv("MONEYVIEW_AI_ENABLED", "true")
	t.Setenv("GEMINI_API_KEY", "test-api-key")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, 3, config.Ingest.Workers)
	assert.False(t, config.Ingest.RewriteNarrative)
	assert.Equal(t, "/tmp/ledger.db", config.Store.Path)
	assert.Equal(t, ";", config.Export.Delimiter)
	assert.True(t, config.AI.Enabled)
	assert.Equal(t, "test-api-key", config.AI.APIKey)
}

func TestInitializeConfig_ConfigFileAndPrecedence(t *testing.T) {
	clearTestEnvVars(t)

	dir, err := os.Getwd()
	require.NoError(t, err)
	content := `
log:
  level: warn
dialect:
  closing_partner: "SPARKASSE TEST"
tags:
  file: custom-tags.yaml
export:
  delimiter: "|"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600))
	t.Setenv("MONEYVIEW_LOG_LEVEL", "error")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level, "environment overrides file")
	assert.Equal(t, "SPARKASSE TEST", config.Dialect.ClosingPartner)
	assert.Equal(t, "custom-tags.yaml", config.Tags.File)
	assert.Equal(t, "|", config.Export.Delimiter)
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectError  string
	}{
		{"invalid log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"invalid log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"negative workers", func(c *Config) { c.Ingest.Workers = -1 }, "ingest.workers must not be negative"},
		{"negative threshold", func(c *Config) { c.Ingest.SequentialThreshold = -5 }, "ingest.sequential_threshold"},
		{"long delimiter", func(c *Config) { c.Export.Delimiter = ";;" }, "CSV delimiter must be a single character"},
		{"empty store path", func(c *Config) { c.Store.Path = "" }, "store.path must not be empty"},
		{"AI without key", func(c *Config) { c.AI.Enabled = true }, "GEMINI_API_KEY required"},
		{"AI rate out of range", func(c *Config) {
			c.AI.Enabled = true
			c.AI.APIKey = "k"
			c.AI.RequestsPerMinute = 0
		}, "ai.requests_per_minute must be between 1 and 1000"},
		{"AI timeout out of range", func(c *Config) {
			c.AI.Enabled = true
			c.AI.APIKey = "k"
			c.AI.TimeoutSeconds = 301
		}, "ai.timeout_seconds must be between 1 and 300"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.modifyConfig(config)
			err := validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	config := Default()
	config.Log.Level = "debug"
	config.Log.Format = "json"

	logger := ConfigureLoggingFromConfig(config, nil)
	assert.Equal(t, logrus.DebugLevel, logger.Level)
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	existing := logrus.New()
	config.Log.Format = "text"
	assert.Same(t, existing, ConfigureLoggingFromConfig(config, existing))
	assert.IsType(t, &logrus.TextFormatter{}, existing.Formatter)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("MONEYVIEW_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnv("MONEYVIEW_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetEnv("MONEYVIEW_TEST_UNSET_VALUE", "fallback"))
}

func TestValidate_Exported(t *testing.T) {
	config := Default()
	assert.NoError(t, Validate(config))
	config.Export.Delimiter = ""
	assert.Error(t, Validate(config))
}
