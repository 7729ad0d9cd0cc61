package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

type LLM struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

type Breaker struct {
	MinRequests  uint32        `json:"min_requests"`
	FailureRatio float64       `json:"failure_ratio"`
	Timeout      time.Duration `json:"-"`
}

type Config struct {
	ListenAddr        string
	LogLevel          string
	Store             string
	RedisURL          string
	SQLitePath        string
	SessionTTL        time.Duration
	ExtractionTimeout time.Duration
	HistoryWindow     int
	CORSOrigins       []string
	LLM               LLM
	Breaker           Breaker
}

// fileConfig is the on-disk JSON shape. The LLM keys sit at the top level so an
// existing config.json with only api_key/base_url/model keeps working.
type fileConfig struct {
	LLM
	ListenAddr        string   `json:"listen_addr"`
	LogLevel          string   `json:"log_level"`
	Store             string   `json:"store"`
	RedisURL          string   `json:"redis_url"`
	SQLitePath        string   `json:"sqlite_path"`
	SessionTTL        string   `json:"session_ttl"`
	ExtractionTimeout string   `json:"extraction_timeout"`
	HistoryWindow     *int     `json:"history_window"`
	CORSOrigins       []string `json:"cors_origins"`
	Breaker           *struct {
		Breaker
		Timeout string `json:"timeout"`
	} `json:"breaker"`
}

func Default() *Config {
	return &Config{
		ListenAddr:        ":8080",
		LogLevel:          "info",
		Store:             StoreMemory,
		SQLitePath:        "depositagent.db",
		SessionTTL:        time.Hour,
		ExtractionTimeout: 30 * time.Second,
		HistoryWindow:     10,
		CORSOrigins:       []string{"*"},
		Breaker: Breaker{
			MinRequests:  3,
			FailureRatio: 0.6,
			Timeout:      30 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the optional JSON file at path,
// a .env file in the working directory and DEPOSIT_* environment variables,
// later sources winning. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := sonic.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	setString(&c.LLM.APIKey, fc.APIKey)
	setString(&c.LLM.BaseURL, fc.BaseURL)
	setString(&c.LLM.Model, fc.Model)
	setString(&c.ListenAddr, fc.ListenAddr)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.Store, fc.Store)
	setString(&c.RedisURL, fc.RedisURL)
	setString(&c.SQLitePath, fc.SQLitePath)
	if err := setDuration(&c.SessionTTL, "session_ttl", fc.SessionTTL); err != nil {
		return err
	}
	if err := setDuration(&c.ExtractionTimeout, "extraction_timeout", fc.ExtractionTimeout); err != nil {
		return err
	}
	if fc.HistoryWindow != nil {
		c.HistoryWindow = *fc.HistoryWindow
	}
	if len(fc.CORSOrigins) > 0 {
		c.CORSOrigins = fc.CORSOrigins
	}
	if b := fc.Breaker; b != nil {
		if b.MinRequests > 0 {
			c.Breaker.MinRequests = b.MinRequests
		}
		if b.FailureRatio > 0 {
			c.Breaker.FailureRatio = b.FailureRatio
		}
		if err := setDuration(&c.Breaker.Timeout, "breaker.timeout", b.Timeout); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.ListenAddr = getEnv("DEPOSIT_LISTEN_ADDR", c.ListenAddr)
	c.LogLevel = getEnv("DEPOSIT_LOG_LEVEL", c.LogLevel)
	c.Store = getEnv("DEPOSIT_STORE", c.Store)
	c.RedisURL = getEnv("DEPOSIT_REDIS_URL", c.RedisURL)
	c.SQLitePath = getEnv("DEPOSIT_SQLITE_PATH", c.SQLitePath)
	c.LLM.APIKey = getEnv("DEPOSIT_LLM_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("DEPOSIT_LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnv("DEPOSIT_LLM_MODEL", c.LLM.Model)
	c.HistoryWindow = getEnvInt("DEPOSIT_HISTORY_WINDOW", c.HistoryWindow)
	c.Breaker.MinRequests = uint32(getEnvInt("DEPOSIT_BREAKER_MIN_REQUESTS", int(c.Breaker.MinRequests)))
	c.Breaker.FailureRatio = getEnvFloat("DEPOSIT_BREAKER_FAILURE_RATIO", c.Breaker.FailureRatio)
	if origins, ok := os.LookupEnv("DEPOSIT_CORS_ORIGINS"); ok {
		c.CORSOrigins = splitList(origins)
	}
	for key, dst := range map[string]*time.Duration{
		"DEPOSIT_SESSION_TTL":        &c.SessionTTL,
		"DEPOSIT_EXTRACTION_TIMEOUT": &c.ExtractionTimeout,
		"DEPOSIT_BREAKER_TIMEOUT":    &c.Breaker.Timeout,
	} {
		if err := setDuration(dst, key, os.Getenv(key)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("DEPOSIT_LISTEN_ADDR cannot be empty")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Store {
	case StoreMemory:
	case StoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("DEPOSIT_REDIS_URL is required for the redis store")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("DEPOSIT_SQLITE_PATH is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unknown store %q, want memory, redis or sqlite", c.Store)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("DEPOSIT_SESSION_TTL must be > 0")
	}
	if c.ExtractionTimeout <= 0 {
		return fmt.Errorf("DEPOSIT_EXTRACTION_TIMEOUT must be > 0")
	}
	if c.HistoryWindow < 0 {
		return fmt.Errorf("DEPOSIT_HISTORY_WINDOW must be >= 0")
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("DEPOSIT_BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	return nil
}

// LLMEnabled reports whether a chat model is configured. Without one the
// engine runs with extraction disabled.
func (c *Config) LLMEnabled() bool {
	return c.LLM.Model != ""
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, name, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid duration for %s: %w", name, err)
	}
	*dst = d
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}
