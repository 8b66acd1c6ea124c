// Package config loads service configuration from yaml, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	LLM       LLMConfig       `yaml:"llm"`
	Providers ProvidersConfig `yaml:"providers"`
	Limits    LimitsConfig    `yaml:"limits"`
	Synthetic SyntheticConfig `yaml:"synthetic"`
}

// ServerConfig configures the HTTP shell.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// LLMConfig configures the language-model service.
type LLMConfig struct {
	Enabled bool          `yaml:"enabled"`
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// Active reports whether model calls should be attempted at all.
func (c LLMConfig) Active() bool {
	return c.Enabled && c.APIKey != ""
}

// ProviderConfig configures one upstream data provider.
type ProviderConfig struct {
	Enabled bool          `yaml:"enabled"`
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"` // zero uses ProvidersConfig.Timeout
}

// RSSConfig configures the RSS news provider.
type RSSConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Feeds         []string      `yaml:"feeds"`
	Timeout       time.Duration `yaml:"timeout"`
	FetchFullText bool          `yaml:"fetch_full_text"`
}

// ProvidersConfig configures every upstream provider. Chain order per
// category is fixed by the registry; disabled providers are skipped.
type ProvidersConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`

	PumpFun         ProviderConfig `yaml:"pumpfun"`
	GeckoTerminal   ProviderConfig `yaml:"geckoterminal"`
	DexScreener     ProviderConfig `yaml:"dexscreener"`
	DefiLlama       ProviderConfig `yaml:"defillama"`
	DefiLlamaYields ProviderConfig `yaml:"defillama_yields"`
	CoinGecko       ProviderConfig `yaml:"coingecko"`
	Binance         ProviderConfig `yaml:"binance"`
	CoinCap         ProviderConfig `yaml:"coincap"`
	CryptoPanic     ProviderConfig `yaml:"cryptopanic"`
	FearGreed       ProviderConfig `yaml:"feargreed"`
	RSS             RSSConfig      `yaml:"rss"`
}

// TimeoutFor returns the effective timeout of p.
func (c ProvidersConfig) TimeoutFor(p ProviderConfig) time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return c.Timeout
}

// LimitsConfig caps the number of records per record kind.
type LimitsConfig struct {
	Tokens    int `yaml:"tokens"`
	Protocols int `yaml:"protocols"`
	Yields    int `yaml:"yields"`
	Prices    int `yaml:"prices"`
	News      int `yaml:"news"`
	Trending  int `yaml:"trending"`
}

// SyntheticConfig configures the synthetic data generator.
type SyntheticConfig struct {
	Seed uint64 `yaml:"seed"` // zero seeds from the clock per query
}

// Default returns a configuration that works without any file: every
// keyless provider is enabled and the model is used once a key is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			QueryTimeout: 60 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		LLM: LLMConfig{
			Enabled: true,
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 20 * time.Second,
		},
		Providers: ProvidersConfig{
			Timeout:         12 * time.Second,
			UserAgent:       "crypto-query-lab/1.0",
			PumpFun:         ProviderConfig{Enabled: true, BaseURL: "https://frontend-api-v3.pump.fun"},
			GeckoTerminal:   ProviderConfig{Enabled: true, BaseURL: "https://api.geckoterminal.com/api/v2"},
			DexScreener:     ProviderConfig{Enabled: true, BaseURL: "https://api.dexscreener.com"},
			DefiLlama:       ProviderConfig{Enabled: true, BaseURL: "https://api.llama.fi"},
			DefiLlamaYields: ProviderConfig{Enabled: true, BaseURL: "https://yields.llama.fi"},
			CoinGecko:       ProviderConfig{Enabled: true, BaseURL: "https://api.coingecko.com/api/v3"},
			Binance:         ProviderConfig{Enabled: true, BaseURL: "https://api.binance.com"},
			CoinCap:         ProviderConfig{Enabled: true, BaseURL: "https://api.coincap.io/v2"},
			CryptoPanic:     ProviderConfig{Enabled: true, BaseURL: "https://cryptopanic.com/api/developer/v2"},
			FearGreed:       ProviderConfig{Enabled: true, BaseURL: "https://api.alternative.me"},
			RSS: RSSConfig{
				Enabled: true,
				Feeds: []string{
					"https://www.coindesk.com/arc/outboundfeeds/rss/",
					"https://cointelegraph.com/rss",
					"https://decrypt.co/feed",
				},
			},
		},
		Limits: LimitsConfig{
			Tokens:    50,
			Protocols: 10,
			Yields:    10,
			Prices:    10,
			News:      10,
			Trending:  10,
		},
	}
}

// Load reads the yaml file at path on top of Default and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads variables from the given .env files without overriding
// variables already set. Missing files are ignored.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides secrets and deployment settings from getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Server.Addr, "SERVER_ADDR")
	set(&c.Log.Level, "LOG_LEVEL")
	set(&c.LLM.APIKey, "LLM_API_KEY")
	set(&c.LLM.BaseURL, "LLM_BASE_URL")
	set(&c.LLM.Model, "LLM_MODEL")
	set(&c.Providers.CryptoPanic.APIKey, "CRYPTOPANIC_API_KEY")
	set(&c.Providers.CoinGecko.APIKey, "COINGECKO_API_KEY")
	set(&c.Providers.CoinCap.APIKey, "COINCAP_API_KEY")
}

// Validate reports configuration values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Providers.Timeout <= 0 {
		errs = append(errs, errors.New("providers.timeout must be positive"))
	}
	if c.LLM.Enabled && c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("llm.timeout must be positive"))
	}
	if c.LLM.Enabled && c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required when llm is enabled"))
	}
	if c.Server.QueryTimeout <= 0 {
		errs = append(errs, errors.New("server.query_timeout must be positive"))
	}
	limits := map[string]int{
		"tokens":    c.Limits.Tokens,
		"protocols": c.Limits.Protocols,
		"yields":    c.Limits.Yields,
		"prices":    c.Limits.Prices,
		"news":      c.Limits.News,
		"trending":  c.Limits.Trending,
	}
	for _, name := range []string{"tokens", "protocols", "yields", "prices", "news", "trending"} {
		if limits[name] <= 0 {
			errs = append(errs, fmt.Errorf("limits.%s must be positive", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
