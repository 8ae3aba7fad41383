package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Redacted returns a copy of cfg that is safe to print.
func Redacted(cfg *Config) Config {
	out := *cfg
	if out.Classifier.APIKey != "" {
		out.Classifier.APIKey = maskKey(out.Classifier.APIKey)
	}
	out.Cache.RedisURL = maskURLPassword(out.Cache.RedisURL)
	return out
}

// Dump renders the redacted effective configuration as YAML.
func Dump(cfg *Config) ([]byte, error) {
	red := Redacted(cfg)
	data, err := yaml.Marshal(&red)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
