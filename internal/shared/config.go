package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Providers map[string]ProviderConfig `toml:"providers"`
	Transport TransportConfig           `toml:"transport"`
	Breaker   BreakerConfig             `toml:"breaker"`
	Matcher   MatcherConfig             `toml:"matcher"`
	Writer    WriterConfig              `toml:"writer"`
	Database  DatabaseConfig            `toml:"database"`
}

// ProviderConfig contains per-provider credentials and endpoint overrides.
type ProviderConfig struct {
	Token   string `toml:"token"`
	BaseURL string `toml:"base_url"`
}

// TransportConfig contains retry, backoff, and pacing settings shared by all
// provider clients.
type TransportConfig struct {
	TimeoutSeconds int     `toml:"timeout_seconds"`
	MaxRetries     int     `toml:"max_retries"`
	BackoffBaseMS  int     `toml:"backoff_base_ms"`
	BackoffMaxMS   int     `toml:"backoff_max_ms"`
	RatePerSecond  float64 `toml:"rate_per_second"`
	CacheTTLMS     int     `toml:"cache_ttl_ms"`
}

// BreakerConfig contains circuit breaker thresholds.
type BreakerConfig struct {
	FailureThreshold int `toml:"failure_threshold"`
	CooldownMS       int `toml:"cooldown_ms"`
}

// MatcherConfig contains track resolution thresholds.
type MatcherConfig struct {
	DurationToleranceMS    int     `toml:"duration_tolerance_ms"`
	FuzzyDurationPenaltyMS int     `toml:"fuzzy_duration_penalty_ms"`
	FuzzyMin               float64 `toml:"fuzzy_min"`
	TitleWeight            float64 `toml:"title_weight"`
	ArtistWeight           float64 `toml:"artist_weight"`
	DurationWeight         float64 `toml:"duration_weight"`
}

// WriterConfig contains batched write settings.
type WriterConfig struct {
	BatchSize int `toml:"batch_size"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
