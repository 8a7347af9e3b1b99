// Package config provides configuration management for the options dashboard.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	apperrors "options-dashboard/internal/errors"
)

// Refresh interval bounds enforced on every configured or requested interval.
const (
	MinRefreshInterval = 10 * time.Second
	MaxRefreshInterval = 300 * time.Second
)

// Config holds all application configuration.
type Config struct {
	Symbols       SymbolsConfig      `mapstructure:"symbols"`
	Validator     ValidatorConfig    `mapstructure:"validator"`
	Screener      ScreenerConfig     `mapstructure:"screener"`
	Provider      ProviderConfig     `mapstructure:"provider"`
	UI            UIConfig           `mapstructure:"ui"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-"`
}

// SymbolsConfig describes where the symbol universe comes from.
type SymbolsConfig struct {
	File           string `mapstructure:"file"`
	Column         string `mapstructure:"column"`
	ListingURL     string `mapstructure:"listing_url"`
	UseRemote      bool   `mapstructure:"use_remote"`
	ExchangeSuffix string `mapstructure:"exchange_suffix"`
}

// ValidatorConfig holds the retry, throttle and cache settings for symbol validation.
type ValidatorConfig struct {
	MaxRetries    int           `mapstructure:"max_retries"`
	BaseDelay     time.Duration `mapstructure:"base_delay"`
	BackoffFactor float64       `mapstructure:"backoff_factor"`
	PauseMin      time.Duration `mapstructure:"pause_min"`
	PauseMax      time.Duration `mapstructure:"pause_max"`
	CacheFile     string        `mapstructure:"cache_file"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"` // 0 = never expires
}

// ScreenerConfig holds breakout screener parameters.
type ScreenerConfig struct {
	HistoryDays int `mapstructure:"history_days"`
	EMASpan     int `mapstructure:"ema_span"`
	TopN        int `mapstructure:"top_n"`
}

// ProviderConfig holds market-data endpoint settings.
type ProviderConfig struct {
	HistoryURL        string        `mapstructure:"history_url"`
	NSEBaseURL        string        `mapstructure:"nse_base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	BreakerFailures   int           `mapstructure:"breaker_failures"`
	BreakerTimeout    time.Duration `mapstructure:"breaker_timeout"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	ColorEnabled    bool          `mapstructure:"color_enabled"`
	ChainStrikes    int           `mapstructure:"chain_strikes"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	File     bool   `mapstructure:"file"`
	FilePath string `mapstructure:"file_path"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/options-dashboard"
	}
	return filepath.Join(home, ".config", "options-dashboard")
}

// Load loads dashboard.toml from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("dashboard")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, createTemplateConfig(configDir)
		}
		return nil, fmt.Errorf("loading dashboard.toml: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding dashboard.toml: %w", err)
	}
	cfg.Dir = configDir

	applyEnvOverrides(cfg)
	cfg.resolvePaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration rooted at configDir, without
// reading any file.
func Default(configDir string) *Config {
	v := viper.New()
	setDefaults(v, configDir)

	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	cfg.Dir = configDir
	cfg.resolvePaths()
	return cfg
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("symbols.file", "nse_fno_list.csv")
	v.SetDefault("symbols.column", "SYMBOL")
	v.SetDefault("symbols.listing_url", "https://www.nseindia.com/api/equity-stockIndices?index=SECURITIES%20IN%20F%26O")
	v.SetDefault("symbols.use_remote", false)
	v.SetDefault("symbols.exchange_suffix", ".NS")

	v.SetDefault("validator.max_retries", 3)
	v.SetDefault("validator.base_delay", 750*time.Millisecond)
	v.SetDefault("validator.backoff_factor", 1.5)
	v.SetDefault("validator.pause_min", 200*time.Millisecond)
	v.SetDefault("validator.pause_max", 600*time.Millisecond)
	v.SetDefault("validator.cache_file", "valid_symbols.csv")
	v.SetDefault("validator.cache_ttl", 24*time.Hour)

	v.SetDefault("screener.history_days", 5)
	v.SetDefault("screener.ema_span", 20)
	v.SetDefault("screener.top_n", 10)

	v.SetDefault("provider.history_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("provider.nse_base_url", "https://www.nseindia.com")
	v.SetDefault("provider.timeout", 15*time.Second)
	v.SetDefault("provider.user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	v.SetDefault("provider.requests_per_second", 8.0)
	v.SetDefault("provider.burst", 1)
	v.SetDefault("provider.breaker_failures", 5)
	v.SetDefault("provider.breaker_timeout", 30*time.Second)

	v.SetDefault("ui.refresh_interval", 60*time.Second)
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.chain_strikes", 10)

	v.SetDefault("notifications.enabled", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "dashboard.log"))
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DASHBOARD_SYMBOL_FILE"); v != "" {
		cfg.Symbols.File = v
	}
	if v := os.Getenv("DASHBOARD_LISTING_URL"); v != "" {
		cfg.Symbols.ListingURL = v
		cfg.Symbols.UseRemote = true
	}
	if v := os.Getenv("DASHBOARD_REFRESH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.UI.RefreshInterval = d
		}
	}
	if v := os.Getenv("DASHBOARD_CACHE_FILE"); v != "" {
		cfg.Validator.CacheFile = v
	}
	if v := os.Getenv("DASHBOARD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// resolvePaths anchors relative file paths at the config directory.
func (c *Config) resolvePaths() {
	if c.Dir == "" {
		return
	}
	if c.Symbols.File != "" && !filepath.IsAbs(c.Symbols.File) {
		c.Symbols.File = filepath.Join(c.Dir, c.Symbols.File)
	}
	if c.Validator.CacheFile != "" && !filepath.IsAbs(c.Validator.CacheFile) {
		c.Validator.CacheFile = filepath.Join(c.Dir, c.Validator.CacheFile)
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := ValidateRefreshInterval(c.UI.RefreshInterval); err != nil {
		return err
	}

	if c.Symbols.File == "" && !c.Symbols.UseRemote {
		return apperrors.NewValidationError("symbols.file", c.Symbols.File, "a symbol file or remote listing is required")
	}
	if c.Symbols.Column == "" {
		return apperrors.NewValidationError("symbols.column", c.Symbols.Column, "must not be empty")
	}

	if c.Validator.MaxRetries < 1 {
		return apperrors.NewValidationError("validator.max_retries", c.Validator.MaxRetries, "must be at least 1")
	}
	if c.Validator.BaseDelay < 0 {
		return apperrors.NewValidationError("validator.base_delay", c.Validator.BaseDelay, "must be non-negative")
	}
	if c.Validator.BackoffFactor < 1 {
		return apperrors.NewValidationError("validator.backoff_factor", c.Validator.BackoffFactor, "must be at least 1")
	}
	if c.Validator.PauseMin < 0 || c.Validator.PauseMin > c.Validator.PauseMax {
		return apperrors.NewValidationError("validator.pause_min", c.Validator.PauseMin, "must be between 0 and pause_max")
	}
	if c.Validator.CacheTTL < 0 {
		return apperrors.NewValidationError("validator.cache_ttl", c.Validator.CacheTTL, "must be non-negative")
	}

	if c.Screener.HistoryDays < 2 {
		return apperrors.NewValidationError("screener.history_days", c.Screener.HistoryDays, "must be at least 2")
	}
	if c.Screener.EMASpan < 1 {
		return apperrors.NewValidationError("screener.ema_span", c.Screener.EMASpan, "must be positive")
	}
	if c.Screener.TopN < 1 {
		return apperrors.NewValidationError("screener.top_n", c.Screener.TopN, "must be positive")
	}

	if c.Provider.RequestsPerSecond <= 0 {
		return apperrors.NewValidationError("provider.requests_per_second", c.Provider.RequestsPerSecond, "must be positive")
	}

	return nil
}

// ValidateRefreshInterval checks the 10s–300s bound.
func ValidateRefreshInterval(d time.Duration) error {
	if d < MinRefreshInterval || d > MaxRefreshInterval {
		return apperrors.NewValidationError("ui.refresh_interval", d, fmt.Sprintf("must be between %s and %s", MinRefreshInterval, MaxRefreshInterval))
	}
	return nil
}
