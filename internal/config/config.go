package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

// MaxURLs is the largest batch a single lookup accepts.
const MaxURLs = 5

// DefaultUserAgent is sent on every page fetch.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/115.0.0.0 Safari/537.36"

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Jina       JinaConfig       `yaml:"jina" mapstructure:"jina"`
	Extract    ExtractConfig    `yaml:"extract" mapstructure:"extract"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini     GeminiConfig     `yaml:"gemini" mapstructure:"gemini"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Enrich     EnrichConfig     `yaml:"enrich" mapstructure:"enrich"`
	Yahoo      YahooConfig      `yaml:"yahoo" mapstructure:"yahoo"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Merge      MergeConfig      `yaml:"merge" mapstructure:"merge"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver       string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL  string `yaml:"database_url" mapstructure:"database_url"`
	SkipExisting bool   `yaml:"skip_existing" mapstructure:"skip_existing"`
}

// FetchConfig configures page fetching.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	// UseJina adds the Jina reader as a fallback for LinkedIn pages.
	UseJina bool `yaml:"use_jina" mapstructure:"use_jina"`
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ExtractConfig configures the field extractor.
type ExtractConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	Language    string  `yaml:"language" mapstructure:"language"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxChars    int     `yaml:"max_chars" mapstructure:"max_chars"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// EnrichConfig configures market-data enrichment.
type EnrichConfig struct {
	Enabled            bool     `yaml:"enabled" mapstructure:"enabled"`
	SymbolLookup       string   `yaml:"symbol_lookup" mapstructure:"symbol_lookup"`
	DomainTable        string   `yaml:"domain_table" mapstructure:"domain_table"`
	TickerPlaceholders []string `yaml:"ticker_placeholders" mapstructure:"ticker_placeholders"`
	CacheTTLMins       int      `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
}

// YahooConfig holds Yahoo Finance endpoint settings.
type YahooConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// CacheConfig configures the optional Redis cache.
type CacheConfig struct {
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
}

// MergeConfig configures candidate merging.
type MergeConfig struct {
	Placeholders []string `yaml:"placeholders" mapstructure:"placeholders"`
}

// ExportConfig configures the result export.
type ExportConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	// .env is optional; values already in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROFILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets get empty defaults so AutomaticEnv can fill them.
	for _, key := range []string{
		"anthropic.key", "gemini.key", "perplexity.key", "jina.key",
		"cache.redis_url", "enrich.domain_table",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "company_profiler.db")
	v.SetDefault("store.skip_existing", false)
	v.SetDefault("fetch.timeout_secs", 10)
	v.SetDefault("fetch.user_agent", DefaultUserAgent)
	v.SetDefault("fetch.use_jina", false)
	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("extract.provider", "anthropic")
	v.SetDefault("extract.language", "en")
	v.SetDefault("extract.max_tokens", 600)
	v.SetDefault("extract.temperature", 0.7)
	v.SetDefault("extract.max_chars", 60000)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar-pro")
	v.SetDefault("enrich.enabled", true)
	v.SetDefault("enrich.symbol_lookup", "yahoo")
	v.SetDefault("enrich.ticker_placeholders", []string{"data not provided", "not provided", "n/a"})
	v.SetDefault("enrich.cache_ttl_mins", 15)
	v.SetDefault("yahoo.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("merge.placeholders", []string{"not specified", "not provided"})
	v.SetDefault("export.path", "companies_info.csv")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

// Validate checks the configuration needed by the given command mode
// ("lookup", "serve" or "store").
func (c *Config) Validate(mode string) error {
	var errs []string

	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
	}
	if c.Store.DatabaseURL == "" {
		errs = append(errs, "store.database_url is required")
	}

	switch mode {
	case "store":
	case "lookup", "serve":
		switch c.Extract.Provider {
		case "anthropic", "gemini", "stub":
		default:
			errs = append(errs, fmt.Sprintf("extract.provider must be anthropic, gemini or stub, got %q", c.Extract.Provider))
		}
		if _, err := language.Parse(c.Extract.Language); err != nil {
			errs = append(errs, fmt.Sprintf("extract.language %q is not a valid language tag", c.Extract.Language))
		}
		if c.Fetch.TimeoutSecs <= 0 {
			errs = append(errs, "fetch.timeout_secs must be > 0")
		}
		switch c.Enrich.SymbolLookup {
		case "yahoo", "perplexity", "none", "":
		default:
			errs = append(errs, fmt.Sprintf("enrich.symbol_lookup must be yahoo, perplexity or none, got %q", c.Enrich.SymbolLookup))
		}
		if c.Enrich.SymbolLookup == "perplexity" && c.Perplexity.Key == "" {
			errs = append(errs, "perplexity.key is required when enrich.symbol_lookup is perplexity")
		}
		if mode == "serve" && c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ExtractorKey returns the API key of the configured extract provider.
func (c *Config) ExtractorKey() string {
	switch c.Extract.Provider {
	case "gemini":
		return c.Gemini.Key
	default:
		return c.Anthropic.Key
	}
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
