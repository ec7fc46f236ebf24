// Package config loads gatekeeper configuration from YAML files.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/elum-utils/gatekeeper/core"
)

// Config holds file-level configuration for the moderation pipeline and its
// collaborators.
type Config struct {
	Moderation ModerationConfig `yaml:"moderation"`
	AI         AIConfig         `yaml:"ai"`
	Words      WordsConfig      `yaml:"words"`
}

// ModerationConfig mirrors core.Config.
type ModerationConfig struct {
	SpamThreshold       float64 `yaml:"spam_threshold"`
	ToxicityThreshold   float64 `yaml:"toxicity_threshold"`
	HateSpeechThreshold float64 `yaml:"hate_speech_threshold"`
	DetectionCategory   string  `yaml:"detection_category"`
	DetectionSeverity   float64 `yaml:"detection_severity"`
	ModelVersion        string  `yaml:"model_version"`
}

// AIConfig configures the remote classifier gateway. The key is read from the
// named environment variable so credentials stay out of files.
type AIConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Endpoint       string `yaml:"endpoint"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// WordsConfig configures lexicon sync and result caching.
type WordsConfig struct {
	SyncIntervalSeconds int `yaml:"sync_interval_seconds"`
	CacheTTLSeconds     int `yaml:"cache_ttl_seconds"`
	CacheMaxBytes       int `yaml:"cache_max_bytes"`
}

// Load reads configuration from a YAML file. A missing file yields the
// default configuration and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// PipelineConfig converts the file configuration into the pipeline's
// immutable config struct.
func (c *Config) PipelineConfig() core.Config {
	return core.Config{
		SpamThreshold:       c.Moderation.SpamThreshold,
		ToxicityThreshold:   c.Moderation.ToxicityThreshold,
		HateSpeechThreshold: c.Moderation.HateSpeechThreshold,
		AIModerationEnabled: c.AI.Enabled,
		DetectionCategory:   c.Moderation.DetectionCategory,
		DetectionSeverity:   c.Moderation.DetectionSeverity,
		ModelVersion:        c.Moderation.ModelVersion,
	}
}

// APIKey resolves the classifier key from the configured environment
// variable. Empty means the classifier is disabled.
func (c *Config) APIKey() string {
	if c.AI.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.AI.APIKeyEnv)
}

// AITimeout returns the gateway timeout.
func (c *Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// SyncInterval returns the lexicon sync interval.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.Words.SyncIntervalSeconds) * time.Second
}

// CacheTTL returns the word-result cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Words.CacheTTLSeconds) * time.Second
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	base := core.DefaultConfig()
	if cfg.Moderation.SpamThreshold <= 0 {
		cfg.Moderation.SpamThreshold = base.SpamThreshold
	}
	if cfg.Moderation.ToxicityThreshold <= 0 {
		cfg.Moderation.ToxicityThreshold = base.ToxicityThreshold
	}
	if cfg.Moderation.HateSpeechThreshold <= 0 {
		cfg.Moderation.HateSpeechThreshold = base.HateSpeechThreshold
	}
	if cfg.Moderation.DetectionCategory == "" {
		cfg.Moderation.DetectionCategory = base.DetectionCategory
	}
	if cfg.Moderation.DetectionSeverity <= 0 {
		cfg.Moderation.DetectionSeverity = base.DetectionSeverity
	}
	if cfg.Moderation.ModelVersion == "" {
		cfg.Moderation.ModelVersion = base.ModelVersion
	}
	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = 10
	}
	if cfg.Words.SyncIntervalSeconds <= 0 {
		cfg.Words.SyncIntervalSeconds = 300
	}
	if cfg.Words.CacheTTLSeconds <= 0 {
		cfg.Words.CacheTTLSeconds = 3600
	}
}
