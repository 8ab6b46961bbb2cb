package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	Ticker    TickerConfig    `yaml:"ticker"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
	Journal   JournalConfig   `yaml:"journal"`
	Tuning    TuningConfig    `yaml:"tuning"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// TransportConfig selects how the MCP surface is served: "http" or "stdio".
type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// AuthConfig controls bearer token resolution. With auth disabled every
// request acts as DefaultPlayer.
type AuthConfig struct {
	Enabled       bool   `yaml:"enabled"`
	DefaultPlayer string `yaml:"default_player"`
}

type TickerConfig struct {
	Interval time.Duration `yaml:"interval"`
	Workers  int           `yaml:"workers"`
}

// RateLimitConfig is a per-player token bucket. Zero disables limiting.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// JournalConfig enables the mission event journal when Dir is set.
type JournalConfig struct {
	Dir string `yaml:"dir"`
}

type TuningConfig struct {
	Path string `yaml:"path"`
}

// Defaults returns the configuration used before any file or environment
// overrides are applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "stardust.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		Auth: AuthConfig{
			DefaultPlayer: "local",
		},
		Ticker: TickerConfig{
			Interval: time.Second,
			Workers:  4,
		},
		RateLimit: RateLimitConfig{
			PerSecond: 20,
			Burst:     40,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("STARDUST_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if !c.Auth.Enabled && c.Auth.DefaultPlayer == "" {
		return fmt.Errorf("default player is required when auth is disabled")
	}
	if c.Ticker.Interval <= 0 {
		return fmt.Errorf("ticker interval must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("STARDUST_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("STARDUST_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid STARDUST_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("STARDUST_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("STARDUST_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("STARDUST_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := os.Getenv("STARDUST_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = strings.ToLower(mode)
	}
	if authStr := os.Getenv("STARDUST_AUTH_ENABLED"); authStr != "" {
		enabled, err := strconv.ParseBool(authStr)
		if err != nil {
			return fmt.Errorf("invalid STARDUST_AUTH_ENABLED: %w", err)
		}
		cfg.Auth.Enabled = enabled
	}
	if player := os.Getenv("STARDUST_DEFAULT_PLAYER"); player != "" {
		cfg.Auth.DefaultPlayer = player
	}
	if interval := os.Getenv("STARDUST_TICK_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("invalid STARDUST_TICK_INTERVAL: %w", err)
		}
		cfg.Ticker.Interval = d
	}
	if workers := os.Getenv("STARDUST_TICK_WORKERS"); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil {
			return fmt.Errorf("invalid STARDUST_TICK_WORKERS: %w", err)
		}
		cfg.Ticker.Workers = n
	}
	if rps := os.Getenv("STARDUST_RATE_LIMIT"); rps != "" {
		v, err := strconv.ParseFloat(rps, 64)
		if err != nil {
			return fmt.Errorf("invalid STARDUST_RATE_LIMIT: %w", err)
		}
		cfg.RateLimit.PerSecond = v
	}
	if burst := os.Getenv("STARDUST_RATE_BURST"); burst != "" {
		n, err := strconv.Atoi(burst)
		if err != nil {
			return fmt.Errorf("invalid STARDUST_RATE_BURST: %w", err)
		}
		cfg.RateLimit.Burst = n
	}
	if origins := os.Getenv("STARDUST_CORS_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = splitList(origins)
	}
	if dir := os.Getenv("STARDUST_JOURNAL_DIR"); dir != "" {
		cfg.Journal.Dir = dir
	}
	if path := os.Getenv("STARDUST_TUNING_PATH"); path != "" {
		cfg.Tuning.Path = path
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
