package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/cashmachine/internal/banknote"
	"github.com/eugenenazirov/cashmachine/internal/storage"
)

const (
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	Banknotes            []banknote.BanknoteSet
	Strategy             banknote.Strategy
	LogLevel             string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	MetricsEnabled       bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure. Pointer fields
// distinguish an explicit zero value from an absent key.
type yamlConfig struct {
	Port                 string                 `yaml:"port"`
	Strategy             string                 `yaml:"strategy"`
	LogLevel             string                 `yaml:"log_level"`
	Banknotes            []banknote.BanknoteSet `yaml:"banknotes"`
	ShutdownGracePeriod  string                 `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string                 `yaml:"read_header_timeout"`
	WriteTimeout         string                 `yaml:"write_timeout"`
	IdleTimeout          string                 `yaml:"idle_timeout"`
	EnableRequestLogging *bool                  `yaml:"enable_request_logging"`
	MetricsEnabled       *bool                  `yaml:"metrics_enabled"`
	RateLimit            yamlRateLimit          `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	EnvFile        string
	Port           *string
	BanknotesStr   *string
	Strategy       *string
	LogLevel       *string
	MetricsEnabled *bool
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if overrides != nil && overrides.EnvFile != "" {
		if err := godotenv.Load(overrides.EnvFile); err != nil {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		Banknotes:            storage.DefaultBanknotes(),
		Strategy:             banknote.Optimal,
		LogLevel:             defaultLogLevel,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		MetricsEnabled:       true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if len(yamlCfg.Banknotes) > 0 {
		cfg.Banknotes = yamlCfg.Banknotes
	}

	if yamlCfg.Strategy != "" {
		strategy, err := banknote.ParseStrategy(yamlCfg.Strategy)
		if err != nil {
			return err
		}
		cfg.Strategy = strategy
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	durations := []struct {
		raw    string
		target *time.Duration
		key    string
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod, "shutdown_grace_period"},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout, "read_header_timeout"},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout, "write_timeout"},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout, "idle_timeout"},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.target = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.MetricsEnabled != nil {
		cfg.MetricsEnabled = *yamlCfg.MetricsEnabled
	}

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	return nil
}

// applyEnvConfig applies environment variable configuration. Malformed numeric
// and boolean values are ignored; malformed banknotes and strategies are not.
func applyEnvConfig(cfg *Config) error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if raw := strings.TrimSpace(os.Getenv("BANKNOTES")); raw != "" {
		sets, err := ParseBanknotes(raw)
		if err != nil {
			return fmt.Errorf("BANKNOTES: %w", err)
		}
		cfg.Banknotes = sets
	}

	if raw := strings.TrimSpace(os.Getenv("STRATEGY")); raw != "" {
		strategy, err := banknote.ParseStrategy(raw)
		if err != nil {
			return fmt.Errorf("STRATEGY: %w", err)
		}
		cfg.Strategy = strategy
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if raw := strings.TrimSpace(os.Getenv("METRICS_ENABLED")); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.MetricsEnabled = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("ENABLE_REQUEST_LOGGING")); raw != "" {
		if value, err := strconv.ParseBool(raw); err == nil {
			cfg.EnableRequestLogging = value
		}
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.BanknotesStr != nil && *overrides.BanknotesStr != "" {
		sets, err := ParseBanknotes(*overrides.BanknotesStr)
		if err != nil {
			return fmt.Errorf("parse banknotes: %w", err)
		}
		cfg.Banknotes = sets
	}

	if overrides.Strategy != nil && *overrides.Strategy != "" {
		strategy, err := banknote.ParseStrategy(*overrides.Strategy)
		if err != nil {
			return fmt.Errorf("parse strategy: %w", err)
		}
		cfg.Strategy = strategy
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.MetricsEnabled != nil {
		cfg.MetricsEnabled = *overrides.MetricsEnabled
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	return nil
}

// validateConfig validates the final configuration and normalises the banknotes.
func validateConfig(cfg *Config) error {
	if cfg.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return errors.New("RATE_LIMIT_BURST must be >= 0")
	}
	normalized, err := storage.NormalizeBanknotes(cfg.Banknotes)
	if err != nil {
		return fmt.Errorf("banknotes: %w", err)
	}
	cfg.Banknotes = normalized
	return nil
}

// ParseBanknotes parses a comma-separated list of nominal:count pairs, for
// example "500:4,100:3". It validates that nominals are positive and counts
// are non-negative.
func ParseBanknotes(raw string) ([]banknote.BanknoteSet, error) {
	parts := strings.Split(raw, ",")
	sets := make([]banknote.BanknoteSet, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		nominalStr, countStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("expected nominal:count, got %q", part)
		}
		nominal, err := strconv.Atoi(strings.TrimSpace(nominalStr))
		if err != nil {
			return nil, fmt.Errorf("invalid nominal %q", nominalStr)
		}
		if nominal <= 0 {
			return nil, fmt.Errorf("nominal must be positive, got %d", nominal)
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil {
			return nil, fmt.Errorf("invalid count %q", countStr)
		}
		if count < 0 {
			return nil, fmt.Errorf("count must be non-negative, got %d", count)
		}
		sets = append(sets, banknote.BanknoteSet{Nominal: nominal, Count: count})
	}
	if len(sets) == 0 {
		return nil, errors.New("no banknotes provided")
	}
	return sets, nil
}
