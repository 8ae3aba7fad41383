// Package config handles configuration loading for newsense.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Feed       FeedConfig       `mapstructure:"feed"       yaml:"feed"`
	Article    ArticleConfig    `mapstructure:"article"    yaml:"article"`
	Classifier ClassifierConfig `mapstructure:"classifier" yaml:"classifier"`
	Speech     SpeechConfig     `mapstructure:"speech"     yaml:"speech"`
	Output     OutputConfig     `mapstructure:"output"     yaml:"output"`
	Cache      CacheConfig      `mapstructure:"cache"      yaml:"cache"`
	API        APIConfig        `mapstructure:"api"        yaml:"api"`
	Logging    LoggingConfig    `mapstructure:"logging"    yaml:"logging"`
}

// FeedConfig holds the news search feed settings.
type FeedConfig struct {
	URLTemplate string `mapstructure:"url_template" yaml:"url_template"` // {query} is replaced by the escaped company name
	Limit       int    `mapstructure:"limit"        yaml:"limit"`
	TimeoutSec  int    `mapstructure:"timeout_sec"  yaml:"timeout_sec"`
}

// ArticleConfig holds article download and extraction settings.
type ArticleConfig struct {
	TimeoutSec        int `mapstructure:"timeout_sec"        yaml:"timeout_sec"`
	PacingMs          int `mapstructure:"pacing_ms"          yaml:"pacing_ms"`
	ConcurrentFetches int `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches"`
	SummarySentences  int `mapstructure:"summary_sentences"  yaml:"summary_sentences"`
}

// ClassifierConfig selects and configures the sentiment classifier.
type ClassifierConfig struct {
	Provider   string `mapstructure:"provider"    yaml:"provider"` // "huggingface" or "lexicon"
	URL        string `mapstructure:"url"         yaml:"url"`
	APIKey     string `mapstructure:"api_key"     yaml:"api_key"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// SpeechConfig configures the speech synthesis collaborator.
type SpeechConfig struct {
	URL        string `mapstructure:"url"         yaml:"url"`
	Language   string `mapstructure:"language"    yaml:"language"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// OutputConfig holds artifact locations.
type OutputConfig struct {
	ChartDir  string `mapstructure:"chart_dir"  yaml:"chart_dir"`
	ChartFile string `mapstructure:"chart_file" yaml:"chart_file"`
	AudioDir  string `mapstructure:"audio_dir"  yaml:"audio_dir"`
}

// CacheConfig configures the classifier result cache.
type CacheConfig struct {
	Backend  string `mapstructure:"backend"   yaml:"backend"` // "none", "memory" or "redis"
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url"`
	TTLSec   int    `mapstructure:"ttl_sec"   yaml:"ttl_sec"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Timeout helpers.

func (f FeedConfig) Timeout() time.Duration       { return seconds(f.TimeoutSec) }
func (a ArticleConfig) Timeout() time.Duration    { return seconds(a.TimeoutSec) }
func (a ArticleConfig) Pacing() time.Duration     { return time.Duration(a.PacingMs) * time.Millisecond }
func (c ClassifierConfig) Timeout() time.Duration { return seconds(c.TimeoutSec) }
func (s SpeechConfig) Timeout() time.Duration     { return seconds(s.TimeoutSec) }
func (c CacheConfig) TTL() time.Duration          { return seconds(c.TTLSec) }

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.newsense/config.yaml (home directory)
//  3. /etc/newsense/config.yaml (system)
//
// Environment variables override config file values.
// Format: NEWSENSE_<SECTION>_<KEY>, e.g., NEWSENSE_CLASSIFIER_API_KEY
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".newsense"))
	v.AddConfigPath("/etc/newsense")

	v.SetEnvPrefix("NEWSENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; defaults + env vars are enough to run.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("NEWSENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("feed.url_template", "https://www.bing.com/news/search?q={query}&format=rss")
	v.SetDefault("feed.limit", 10)
	v.SetDefault("feed.timeout_sec", 10)

	v.SetDefault("article.timeout_sec", 20)
	v.SetDefault("article.pacing_ms", 1000)
	v.SetDefault("article.concurrent_fetches", 1)
	v.SetDefault("article.summary_sentences", 5)

	v.SetDefault("classifier.provider", "huggingface")
	v.SetDefault("classifier.url", "https://api-inference.huggingface.co/models/distilbert-base-uncased-finetuned-sst-2-english")
	v.SetDefault("classifier.timeout_sec", 30)

	v.SetDefault("speech.url", "https://translate.google.com/translate_tts")
	v.SetDefault("speech.language", "hi")
	v.SetDefault("speech.timeout_sec", 30)

	v.SetDefault("output.chart_dir", ".")
	v.SetDefault("output.chart_file", "sentiment_distribution.svg")
	v.SetDefault("output.audio_dir", "audio_files")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl_sec", 86400)

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.cors_origins", []string{"*"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("NEWSENSE_CLASSIFIER_API_KEY"); key != "" {
		cfg.Classifier.APIKey = key
	}
	if url := os.Getenv("NEWSENSE_CACHE_REDIS_URL"); url != "" {
		cfg.Cache.RedisURL = url
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
