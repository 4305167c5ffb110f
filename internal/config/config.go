package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port      int           `yaml:"port"`
	APIKey    string        `yaml:"api_key"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // empty: in-memory template store
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty: no cache, no rate limiting
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	OpenAIKey       string `yaml:"openai_key"`
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	DefaultModel    string `yaml:"default_model"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent AI calls
}

type DebateConfig struct {
	DefaultMaxRounds      int           `yaml:"default_max_rounds"`
	MinRounds             int           `yaml:"min_rounds"` // floor before agreement may end a debate
	EarlyStopOnAgreement  bool          `yaml:"early_stop_on_agreement"`
	InterjectionHorizon   int           `yaml:"interjection_horizon"` // turns an interjection stays deliverable
	MaxRetries            int           `yaml:"max_retries"`
	RetryBackoff          time.Duration `yaml:"retry_backoff"`
	SynthesisModel        string        `yaml:"synthesis_model"`
	MaxConcurrentSessions int           `yaml:"max_concurrent_sessions"`
	SessionRetention      time.Duration `yaml:"session_retention"` // how long terminal sessions stay queryable
	ReapInterval          time.Duration `yaml:"reap_interval"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Debate   DebateConfig   `yaml:"debate"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	expanded := os.ExpandEnv(string(b))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Runtime.Dev = dev
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.TokenTTL <= 0 {
		cfg.Server.TokenTTL = 30 * time.Minute
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 1024
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.Debate.DefaultMaxRounds <= 0 {
		cfg.Debate.DefaultMaxRounds = 3
	}
	if cfg.Debate.MinRounds <= 0 {
		cfg.Debate.MinRounds = 1
	}
	if cfg.Debate.InterjectionHorizon <= 0 {
		cfg.Debate.InterjectionHorizon = 2
	}
	if cfg.Debate.MaxRetries < 0 {
		cfg.Debate.MaxRetries = 0
	} else if cfg.Debate.MaxRetries == 0 {
		cfg.Debate.MaxRetries = 2
	}
	if cfg.Debate.RetryBackoff <= 0 {
		cfg.Debate.RetryBackoff = 500 * time.Millisecond
	}
	if cfg.Debate.MaxConcurrentSessions <= 0 {
		cfg.Debate.MaxConcurrentSessions = 32
	}
	if cfg.Debate.SessionRetention <= 0 {
		cfg.Debate.SessionRetention = time.Hour
	}
	if cfg.Debate.ReapInterval <= 0 {
		cfg.Debate.ReapInterval = 5 * time.Minute
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 10 * time.Minute
	}
}
