package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the daily review platform.
type Config struct {
	Storage  Storage  `yaml:"storage"`
	Server   Server   `yaml:"server"`
	Calendar Calendar `yaml:"calendar"`
	Provider Provider `yaml:"provider"`
	Sync     Sync     `yaml:"sync"`
	Logging  Logging  `yaml:"logging"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
	OutputDir  string `yaml:"output_dir"` // rendered HTML destination
}

// Server holds network listener configuration for the review API.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Calendar configures the trading calendar store.
type Calendar struct {
	CachePath     string `yaml:"cache_path"`
	FreshnessDays int    `yaml:"freshness_days"`
	LookbackDays  int    `yaml:"lookback_days"`
}

// Provider holds parameters for the upstream data endpoints.
type Provider struct {
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	RateLimitPerMin int    `yaml:"rate_limit_per_min"`
	MaxRetries      int    `yaml:"max_retries"`
	UserAgent       string `yaml:"user_agent"`
}

// Sync controls the daily data synchronization jobs.
type Sync struct {
	Days     int    `yaml:"days"`     // how many recent trading days to backfill
	Schedule string `yaml:"schedule"` // cron expression for the daemon
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies defaults, and then applies environment variable
// overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

// Default returns a usable configuration when no config file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/review.db"
	}
	if cfg.Storage.OutputDir == "" {
		cfg.Storage.OutputDir = "output"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Calendar.CachePath == "" {
		cfg.Calendar.CachePath = "data/trade_date_cache.json"
	}
	if cfg.Calendar.FreshnessDays == 0 {
		cfg.Calendar.FreshnessDays = 7
	}
	if cfg.Calendar.LookbackDays == 0 {
		cfg.Calendar.LookbackDays = 730
	}
	if cfg.Provider.TimeoutSeconds == 0 {
		cfg.Provider.TimeoutSeconds = 15
	}
	if cfg.Provider.RateLimitPerMin == 0 {
		cfg.Provider.RateLimitPerMin = 60
	}
	if cfg.Provider.MaxRetries == 0 {
		cfg.Provider.MaxRetries = 3
	}
	if cfg.Provider.UserAgent == "" {
		cfg.Provider.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if cfg.Sync.Days == 0 {
		cfg.Sync.Days = 5
	}
	if cfg.Sync.Schedule == "" {
		// Run after the post-close data settles, Monday through Friday.
		cfg.Sync.Schedule = "30 15 * * MON-FRI"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Storage.OutputDir = v
	}
	if v := os.Getenv("CALENDAR_CACHE_PATH"); v != "" {
		cfg.Calendar.CachePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
