package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "company_profiler.db", cfg.Store.DatabaseURL)
	assert.False(t, cfg.Store.SkipExisting)
	assert.Equal(t, 10, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, DefaultUserAgent, cfg.Fetch.UserAgent)
	assert.Equal(t, "anthropic", cfg.Extract.Provider)
	assert.Equal(t, "en", cfg.Extract.Language)
	assert.Equal(t, 600, cfg.Extract.MaxTokens)
	assert.InDelta(t, 0.7, cfg.Extract.Temperature, 0.001)
	assert.Equal(t, "https://r.jina.ai", cfg.Jina.BaseURL)
	assert.Equal(t, "sonar-pro", cfg.Perplexity.Model)
	assert.True(t, cfg.Enrich.Enabled)
	assert.Equal(t, "yahoo", cfg.Enrich.SymbolLookup)
	assert.Equal(t, []string{"data not provided", "not provided", "n/a"}, cfg.Enrich.TickerPlaceholders)
	assert.Equal(t, []string{"not specified", "not provided"}, cfg.Merge.Placeholders)
	assert.Equal(t, "https://query1.finance.yahoo.com", cfg.Yahoo.BaseURL)
	assert.Equal(t, "companies_info.csv", cfg.Export.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/profiler
extract:
  provider: gemini
  language: es
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/profiler", cfg.Store.DatabaseURL)
	assert.Equal(t, "gemini", cfg.Extract.Provider)
	assert.Equal(t, "es", cfg.Extract.Language)
	assert.Equal(t, "json", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.Fetch.TimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("PROFILER_STORE_DRIVER", "sqlite")
	t.Setenv("PROFILER_FETCH_TIMEOUT_SECS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Fetch.TimeoutSecs)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PROFILER_ANTHROPIC_KEY=sk-from-dotenv\n"), 0o600))
	t.Setenv("PROFILER_ANTHROPIC_KEY", "")
	require.NoError(t, os.Unsetenv("PROFILER_ANTHROPIC_KEY"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-from-dotenv", cfg.Anthropic.Key)
}

func validConfig() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "test.db"
	cfg.Extract.Provider = "anthropic"
	cfg.Extract.Language = "en"
	cfg.Fetch.TimeoutSecs = 10
	cfg.Enrich.SymbolLookup = "yahoo"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate("lookup"))
	assert.NoError(t, cfg.Validate("serve"))
	assert.NoError(t, cfg.Validate("store"))
}

func TestValidate_Errors(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = "mysql"
	cfg.Extract.Provider = "openai"
	cfg.Extract.Language = "not a language!"
	cfg.Fetch.TimeoutSecs = 0

	err := cfg.Validate("lookup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
	assert.Contains(t, err.Error(), "extract.provider")
	assert.Contains(t, err.Error(), "extract.language")
	assert.Contains(t, err.Error(), "fetch.timeout_secs")
}

func TestValidate_PerplexityNeedsKey(t *testing.T) {
	cfg := validConfig()
	cfg.Enrich.SymbolLookup = "perplexity"

	err := cfg.Validate("lookup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "perplexity.key is required")

	cfg.Perplexity.Key = "pplx-key"
	assert.NoError(t, cfg.Validate("lookup"))
}

func TestValidate_ServePort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
	assert.NoError(t, cfg.Validate("lookup"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validConfig().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestExtractorKey(t *testing.T) {
	cfg := validConfig()
	cfg.Anthropic.Key = "ant"
	cfg.Gemini.Key = "gem"

	assert.Equal(t, "ant", cfg.ExtractorKey())
	cfg.Extract.Provider = "gemini"
	assert.Equal(t, "gem", cfg.ExtractorKey())
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
