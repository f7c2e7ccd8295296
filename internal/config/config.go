// File: internal/config/config.go
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
	Port         int   `yaml:"port"`
	MaxBodyBytes int64 `yaml:"max_body_bytes"` // upload size cap per request
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type StorageConfig struct {
	Dir string `yaml:"dir"` // root for per-job working directories
}

type EngineConfig struct {
	APIKey          string        `yaml:"api_key"`  // empty => static dev engine
	Model           string        `yaml:"model"`    // transcription model name
	BaseURL         string        `yaml:"base_url"` // optional OpenAI-compatible base
	DefaultLanguage string        `yaml:"default_language"`
	CallTimeout     time.Duration `yaml:"call_timeout"` // outbound request timeout
}

type JobsConfig struct {
	Workers      int           `yaml:"workers"`       // executor pool size
	QueueDepth   int           `yaml:"queue_depth"`   // pending executor tasks
	SyncDeadline time.Duration `yaml:"sync_deadline"` // POST /transcribe/ wait cap
	Retention    time.Duration `yaml:"retention"`     // window after first result fetch
}

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Engine  EngineConfig  `yaml:"engine"`
	Jobs    JobsConfig    `yaml:"jobs"`

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
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = 512 << 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "data/jobs"
	}
	if cfg.Engine.Model == "" {
		cfg.Engine.Model = "whisper-1"
	}
	if cfg.Engine.DefaultLanguage == "" {
		cfg.Engine.DefaultLanguage = "en"
	}
	if cfg.Engine.CallTimeout <= 0 {
		cfg.Engine.CallTimeout = 10 * time.Minute
	}
	if cfg.Jobs.Workers <= 0 {
		cfg.Jobs.Workers = 4
	}
	if cfg.Jobs.QueueDepth <= 0 {
		cfg.Jobs.QueueDepth = cfg.Jobs.Workers * 4
	}
	if cfg.Jobs.SyncDeadline <= 0 {
		cfg.Jobs.SyncDeadline = 600 * time.Second
	}
	if cfg.Jobs.Retention <= 0 {
		cfg.Jobs.Retention = 24 * time.Hour
	}
}

func (cfg *Config) validate() error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return errors.New("server.port out of range")
	}
	if cfg.Jobs.SyncDeadline < time.Second {
		return errors.New("jobs.sync_deadline too small")
	}
	if cfg.Jobs.Retention < time.Second {
		return errors.New("jobs.retention too small")
	}
	return nil
}
