package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"telegram"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Chart struct {
		CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
	} `yaml:"chart"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Delivery struct {
		RatePerSecond float64 `yaml:"rate_per_second"`
		Burst         int     `yaml:"burst"`
	} `yaml:"delivery"`
}

func Load(path string) (*Config, error) {
	// .env values feed the ${ENV_VAR} placeholders below; absence is fine.
	_ = godotenv.Load()

	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/vitameter.db"
	}
	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	if cfg.Backup.Enabled && cfg.Backup.Path == "" {
		cfg.Backup.Path = "data/backups"
	}

	if cfg.Delivery.RatePerSecond <= 0 {
		cfg.Delivery.RatePerSecond = 20
	}
	if cfg.Delivery.Burst <= 0 {
		cfg.Delivery.Burst = 30
	}

	return &cfg, nil
}

// BackupInterval returns the configured backup interval, defaulting to a day.
func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

// ChartCacheTTL returns the configured chart cache TTL, defaulting to a day.
func (c *Config) ChartCacheTTL() time.Duration {
	if c.Chart.CacheTTLSeconds <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Chart.CacheTTLSeconds) * time.Second
}
