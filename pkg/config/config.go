package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"log"`
	Mongo struct {
		URI         string        `yaml:"uri"`
		Database    string        `yaml:"database"`
		ConnTimeout time.Duration `yaml:"conn_timeout"`
	} `yaml:"mongo"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Upstream struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		MaxRPS  float64       `yaml:"max_rps"`
	} `yaml:"upstream"`
	Pipeline struct {
		BatchSize            int           `yaml:"batch_size"`
		MaxConcurrentBatches int           `yaml:"max_concurrent_batches"`
		MaxConcurrentSparks  int           `yaml:"max_concurrent_sparklines"`
		StalenessThreshold   time.Duration `yaml:"staleness_threshold"`
		PageSize             int           `yaml:"page_size"`
		Lookahead            int           `yaml:"lookahead"`
		SweepSchedule        string        `yaml:"sweep_schedule"`
		SweepThreshold       time.Duration `yaml:"sweep_threshold"`
		SparklinePeriod      string        `yaml:"sparkline_period"`
		SparklineInterval    string        `yaml:"sparkline_interval"`
	} `yaml:"pipeline"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("MONGO_URI"); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		c.Mongo.Database = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("UPSTREAM_BASE_URL"); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Mongo.ConnTimeout == 0 {
		c.Mongo.ConnTimeout = 10 * time.Second
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = 15 * time.Second
	}
	if c.Upstream.MaxRPS == 0 {
		c.Upstream.MaxRPS = 8
	}
	if c.Pipeline.BatchSize == 0 {
		c.Pipeline.BatchSize = 30
	}
	if c.Pipeline.MaxConcurrentBatches == 0 {
		c.Pipeline.MaxConcurrentBatches = 3
	}
	if c.Pipeline.MaxConcurrentSparks == 0 {
		c.Pipeline.MaxConcurrentSparks = 4
	}
	if c.Pipeline.StalenessThreshold == 0 {
		c.Pipeline.StalenessThreshold = 60 * time.Minute
	}
	if c.Pipeline.PageSize == 0 {
		c.Pipeline.PageSize = 50
	}
	if c.Pipeline.Lookahead == 0 {
		c.Pipeline.Lookahead = 25
	}
	if c.Pipeline.SweepSchedule == "" {
		c.Pipeline.SweepSchedule = "@every 30m"
	}
	if c.Pipeline.SweepThreshold == 0 {
		c.Pipeline.SweepThreshold = 24 * time.Hour
	}
	if c.Pipeline.SparklinePeriod == "" {
		c.Pipeline.SparklinePeriod = "1mo"
	}
	if c.Pipeline.SparklineInterval == "" {
		c.Pipeline.SparklineInterval = "1d"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri is required")
	}
	if c.Mongo.Database == "" {
		return fmt.Errorf("mongo.database is required")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}
	if c.Pipeline.BatchSize > 100 {
		return fmt.Errorf("pipeline.batch_size must be <= 100, got %d", c.Pipeline.BatchSize)
	}
	return nil
}
