package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	AdminAPIKey  string        `yaml:"admin_api_key"`
	JWTSecret    string        `yaml:"jwt_secret"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	SecureCookie bool          `yaml:"secure_cookie"`
	CookieDomain string        `yaml:"cookie_domain"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type RatesConfig struct {
	BCBURL       string        `yaml:"bcb_url"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

type LastlinkConfig struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	SyncInterval time.Duration `yaml:"sync_interval"`
}

type AsaasConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKey      string `yaml:"api_key"`
	Environment string `yaml:"environment"` // sandbox | production
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Rates    RatesConfig    `yaml:"rates"`
	Lastlink LastlinkConfig `yaml:"lastlink"`
	Asaas    AsaasConfig    `yaml:"asaas"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.SessionTTL <= 0 {
		cfg.Server.SessionTTL = 30 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.Rates.BCBURL == "" {
		cfg.Rates.BCBURL = "https://api.bcb.gov.br/dados/serie/bcdata.sgs.1/dados/ultimos/1?formato=json"
	}
	if cfg.Rates.FetchTimeout <= 0 {
		cfg.Rates.FetchTimeout = 5 * time.Second
	}
	if cfg.Rates.CacheTTL <= 0 {
		cfg.Rates.CacheTTL = 15 * time.Minute
	}
	if cfg.Lastlink.SyncInterval <= 0 {
		cfg.Lastlink.SyncInterval = time.Hour
	}
	if cfg.Asaas.Environment == "" {
		cfg.Asaas.Environment = "sandbox"
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.Server.AdminAPIKey == "" {
		return nil, errors.New("server.admin_api_key is required")
	}
	if cfg.Server.JWTSecret == "" {
		return nil, errors.New("server.jwt_secret is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
