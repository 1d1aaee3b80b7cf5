package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Port      string `yaml:"port"`
	DBPath    string `yaml:"db_path"`
	JWTSecret string `yaml:"jwt_secret"`
	LogMode   string `yaml:"log_mode"`

	CORSOrigins []string `yaml:"cors_origins"`

	Gemini   GeminiConfig    `yaml:"gemini"`
	SendGrid SendGridConfig  `yaml:"sendgrid"`
	Redis    RedisConfig     `yaml:"redis"`
	Rate     RateLimitConfig `yaml:"rate_limit"`
	Cache    CacheConfig     `yaml:"cache"`
}

// GeminiConfig configures the generative text client
type GeminiConfig struct {
	APIKeys []string      `yaml:"api_keys"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SendGridConfig configures outgoing report email
type SendGridConfig struct {
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
	BaseURL   string `yaml:"base_url"`
}

// RedisConfig enables the shared response cache when Addr is set
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RateLimitConfig limits AI and email routes per client IP
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`
}

// CacheConfig sizes the in-memory response cache
type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		Port:        ":8080",
		DBPath:      "./data/healthtwin.db",
		JWTSecret:   "your-secret-key-change-in-production",
		LogMode:     "dev",
		CORSOrigins: []string{"http://localhost:3000"},
		Gemini: GeminiConfig{
			Model:   "gemini-2.0-flash",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
			Timeout: 30 * time.Second,
		},
		SendGrid: SendGridConfig{
			FromName: "Health Twin",
			BaseURL:  "https://api.sendgrid.com",
		},
		Rate:  RateLimitConfig{RequestsPerMinute: 20, Burst: 5},
		Cache: CacheConfig{Size: 512, TTL: 10 * time.Minute},
	}
}

// Load 加载配置: defaults, then the YAML file named by CONFIG_FILE, then env
func Load() (*Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = str("PORT", c.Port)
	if c.Port != "" && !strings.Contains(c.Port, ":") {
		c.Port = ":" + c.Port
	}
	c.DBPath = str("DB_PATH", c.DBPath)
	c.JWTSecret = str("JWT_SECRET", c.JWTSecret)
	c.LogMode = str("LOG_MODE", c.LogMode)
	c.CORSOrigins = list("CORS_ORIGINS", c.CORSOrigins)

	c.Gemini.APIKeys = list("GEMINI_API_KEYS", c.Gemini.APIKeys)
	if key := str("GEMINI_API_KEY", ""); key != "" && len(c.Gemini.APIKeys) == 0 {
		c.Gemini.APIKeys = []string{key}
	}
	c.Gemini.Model = str("GEMINI_MODEL", c.Gemini.Model)
	c.Gemini.BaseURL = str("GEMINI_BASE_URL", c.Gemini.BaseURL)
	c.Gemini.Timeout = duration("GEMINI_TIMEOUT", c.Gemini.Timeout)

	c.SendGrid.APIKey = str("SENDGRID_API_KEY", c.SendGrid.APIKey)
	c.SendGrid.FromEmail = str("SENDGRID_FROM_EMAIL", c.SendGrid.FromEmail)
	c.SendGrid.FromName = str("SENDGRID_FROM_NAME", c.SendGrid.FromName)
	c.SendGrid.BaseURL = str("SENDGRID_BASE_URL", c.SendGrid.BaseURL)

	c.Redis.Addr = str("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = str("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = integer("REDIS_DB", c.Redis.DB)

	c.Rate.RequestsPerMinute = integer("RATE_LIMIT_RPM", c.Rate.RequestsPerMinute)
	c.Rate.Burst = integer("RATE_LIMIT_BURST", c.Rate.Burst)

	c.Cache.Size = integer("CACHE_SIZE", c.Cache.Size)
	c.Cache.TTL = duration("CACHE_TTL", c.Cache.TTL)
}

// Validate rejects values the server cannot start with
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required")
	}
	if c.Rate.RequestsPerMinute <= 0 || c.Rate.Burst <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d/min burst %d", c.Rate.RequestsPerMinute, c.Rate.Burst)
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.Cache.Size)
	}
	return nil
}

// EmailEnabled reports whether reports can be sent
func (c *Config) EmailEnabled() bool {
	return c.SendGrid.APIKey != "" && c.SendGrid.FromEmail != ""
}

func str(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func integer(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func duration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func list(name string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
