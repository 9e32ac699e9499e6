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
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type BrowserConfig struct {
	Headless      bool          `yaml:"headless"`
	NavTimeout    time.Duration `yaml:"nav_timeout"`
	IdleThreshold time.Duration `yaml:"idle_threshold"`
	ArtifactDir   string        `yaml:"artifact_dir"`
}

type QueueConfig struct {
	DefaultLimit     int           `yaml:"default_limit"`
	FailureThreshold int           `yaml:"failure_threshold"` // consecutive transient failures before pause
	ProviderRateMax  int           `yaml:"provider_rate_max"` // submissions per provider per window
	ProviderRateWin  time.Duration `yaml:"provider_rate_window"`
}

// SourceConfig names one career board to poll: the ATS provider and the
// organization slug in that provider's public API.
type SourceConfig struct {
	Provider string `yaml:"provider"`
	Org      string `yaml:"org"`
}

type SchedulerConfig struct {
	CronSpec string `yaml:"cron_spec"` // e.g. "@every 6h"
	DryRun   bool   `yaml:"dry_run"`
}

type RetentionConfig struct {
	StaleAfterDays int `yaml:"stale_after_days"`
	PurgeAfterDays int `yaml:"purge_after_days"`
}

type AdminConfig struct {
	Port       int           `yaml:"port"`
	APIKey     string        `yaml:"api_key"` // exchanged for a short-lived session token
	JWTSecret  string        `yaml:"jwt_secret"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Browser   BrowserConfig   `yaml:"browser"`
	Queue     QueueConfig     `yaml:"queue"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Retention RetentionConfig `yaml:"retention"`
	Admin     AdminConfig     `yaml:"admin"`
	Sources   []SourceConfig  `yaml:"sources"`

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
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.LockTTL <= 0 {
		cfg.Redis.LockTTL = 15 * time.Minute
	}
	if cfg.Browser.NavTimeout <= 0 {
		cfg.Browser.NavTimeout = 45 * time.Second
	}
	if cfg.Browser.IdleThreshold <= 0 {
		cfg.Browser.IdleThreshold = 30 * time.Second
	}
	if cfg.Browser.ArtifactDir == "" {
		cfg.Browser.ArtifactDir = "artifacts"
	}
	if cfg.Queue.DefaultLimit <= 0 {
		cfg.Queue.DefaultLimit = 10
	}
	if cfg.Queue.FailureThreshold <= 0 {
		cfg.Queue.FailureThreshold = 3
	}
	if cfg.Queue.ProviderRateMax <= 0 {
		cfg.Queue.ProviderRateMax = 6
	}
	if cfg.Queue.ProviderRateWin <= 0 {
		cfg.Queue.ProviderRateWin = time.Hour
	}
	if cfg.Scheduler.CronSpec == "" {
		cfg.Scheduler.CronSpec = "@every 6h"
	}
	if cfg.Retention.StaleAfterDays <= 0 {
		cfg.Retention.StaleAfterDays = 30
	}
	if cfg.Retention.PurgeAfterDays <= 0 {
		cfg.Retention.PurgeAfterDays = 90
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8090
	}
	if cfg.Admin.SessionTTL <= 0 {
		cfg.Admin.SessionTTL = 30 * time.Minute
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
