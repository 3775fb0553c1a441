package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/gyeh/msarisk/internal/model"
)

// Source kinds.
const (
	SourceFiles    = "files"
	SourcePostgres = "postgres"
)

// Config holds all runtime configuration for an msarisk run. Server settings
// come from the environment (and an optional .env file); dataset layout may
// be overridden by a YAML file; flags override both.
type Config struct {
	Port        string        `mapstructure:"PORT"`
	DataDir     string        `mapstructure:"DATA_DIR"`
	DSN         string        `mapstructure:"DATABASE_URL"`
	Source      string        `mapstructure:"SOURCE"`
	LLMAPIKey   string        `mapstructure:"LLM_API_KEY"`
	LLMBaseURL  string        `mapstructure:"LLM_BASE_URL"`
	LLMModel    string        `mapstructure:"LLM_MODEL"`
	LLMTimeout  time.Duration `mapstructure:"LLM_TIMEOUT"`
	CORSOrigins []string      `mapstructure:"CORS_ORIGINS"`
	Workers     int           `mapstructure:"LOAD_WORKERS"`
	LogFormat   string        `mapstructure:"LOG_FORMAT"` // "text" or "json"
	LogLevel    string        `mapstructure:"LOG_LEVEL"`

	DatasetDirs map[string]string `mapstructure:"-"` // dataset name -> shard directory
	Datasets    []string          `mapstructure:"-"` // subset staged by `stage`; empty means all
	Force       bool              `mapstructure:"-"` // re-stage shards already loaded
	KeepHistory bool              `mapstructure:"-"` // skip pruning old load records
}

var envKeys = []string{
	"PORT", "DATA_DIR", "DATABASE_URL", "SOURCE",
	"LLM_API_KEY", "LLM_BASE_URL", "LLM_MODEL", "LLM_TIMEOUT",
	"CORS_ORIGINS", "LOAD_WORKERS", "LOG_FORMAT", "LOG_LEVEL",
}

// LoadEnv reads configuration from the environment, falling back to a .env
// file in the working directory when present.
func LoadEnv() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("SOURCE", SourceFiles)
	v.SetDefault("LLM_TIMEOUT", "60s")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("LOAD_WORKERS", 4)
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_LEVEL", "info")

	for _, k := range envKeys {
		v.BindEnv(k)
	}
	// GROQ_API_KEY is accepted as an alias.
	v.BindEnv("LLM_API_KEY", "LLM_API_KEY", "GROQ_API_KEY")

	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.CORSOrigins = splitList(strings.Join(cfg.CORSOrigins, ","))
	return cfg, nil
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	DataDir  string            `yaml:"data_dir"`
	Workers  int               `yaml:"workers"`
	Datasets map[string]string `yaml:"datasets"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if yc.DataDir != "" {
		c.DataDir = yc.DataDir
	}
	if yc.Workers != 0 {
		c.Workers = yc.Workers
	}
	if len(yc.Datasets) > 0 {
		if c.DatasetDirs == nil {
			c.DatasetDirs = make(map[string]string)
		}
		for name, dir := range yc.Datasets {
			c.DatasetDirs[name] = dir
		}
	}
	return c.validateDatasets()
}

// validateDatasets checks that every dataset named in DatasetDirs and
// Datasets is known. An empty Datasets list defaults to all datasets.
func (c *Config) validateDatasets() error {
	for name := range c.DatasetDirs {
		if _, ok := model.DatasetByName(name); !ok {
			return fmt.Errorf("unknown dataset %q in config", name)
		}
	}
	if len(c.Datasets) == 0 {
		c.Datasets = make([]string, len(model.AllDatasets))
		for i, ds := range model.AllDatasets {
			c.Datasets[i] = ds.Name
		}
		return nil
	}
	for _, name := range c.Datasets {
		if _, ok := model.DatasetByName(name); !ok {
			return fmt.Errorf("unknown dataset %q", name)
		}
	}
	return nil
}

// Validate checks the settings needed to load data from the configured
// source.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("LOAD_WORKERS must be >= 0, got %d", c.Workers)
	}
	if err := c.validateDatasets(); err != nil {
		return err
	}
	switch c.Source {
	case SourceFiles:
		return c.ValidateDataDir()
	case SourcePostgres:
		return c.ValidateDSN()
	default:
		return fmt.Errorf("SOURCE must be %q or %q, got %q", SourceFiles, SourcePostgres, c.Source)
	}
}

// ValidateDataDir checks that the shard root exists.
func (c *Config) ValidateDataDir() error {
	if c.DataDir == "" {
		return fmt.Errorf("--data-dir or DATA_DIR is required")
	}
	info, err := os.Stat(c.DataDir)
	if err != nil {
		return fmt.Errorf("data dir not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", c.DataDir)
	}
	return nil
}

// ValidateDSN checks that a database URL is set.
func (c *Config) ValidateDSN() error {
	if c.DSN == "" {
		return fmt.Errorf("--dsn or DATABASE_URL is required")
	}
	return nil
}

// ValidatePlan checks the dataset selection and the shard root.
func (c *Config) ValidatePlan() error {
	if err := c.validateDatasets(); err != nil {
		return err
	}
	return c.ValidateDataDir()
}

// ValidateStage checks the dataset selection, the shard root and the DSN.
func (c *Config) ValidateStage() error {
	if err := c.ValidatePlan(); err != nil {
		return err
	}
	return c.ValidateDSN()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
