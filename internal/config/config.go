// Package config loads cmdforge's layered configuration with viper:
// defaults, then $HOME/.cmdforge/config.json and ./.cmdforge.json merged
// in that order through SetConfigFile + MergeInConfig, plus an env var
// overlay for container and CI use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved, typed configuration cmdforge runs with.
type Config struct {
	DefaultProvider string        `mapstructure:"default_provider"`
	MaxIterations   int           `mapstructure:"max_iterations"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	StatusAddr      string        `mapstructure:"status_addr"`
	TrustPromptTTL  time.Duration `mapstructure:"trust_prompt_ttl"`
	MCPConfigPath   string        `mapstructure:"mcp_config_path"`
	RunbookDir      string        `mapstructure:"runbook_dir"`
	OfflineEnabled  bool          `mapstructure:"offline_enabled"`
}

func defaults() Config {
	return Config{
		DefaultProvider: "",
		MaxIterations:   25,
		MaxTokens:       8000,
		StatusAddr:      "127.0.0.1:8787",
		TrustPromptTTL:  24 * time.Hour,
		MCPConfigPath:   "",
		RunbookDir:      "./.cmdforge/runbooks",
		OfflineEnabled:  true,
	}
}

// Load resolves configuration from, in increasing priority: built-in
// defaults, $HOME/.cmdforge/config.json, ./.cmdforge.json, then
// CMDFORGE_-prefixed environment variables.
func Load() (*Config, error) {
	v := viper.New()

	d := defaults()
	v.SetDefault("default_provider", d.DefaultProvider)
	v.SetDefault("max_iterations", d.MaxIterations)
	v.SetDefault("max_tokens", d.MaxTokens)
	v.SetDefault("status_addr", d.StatusAddr)
	v.SetDefault("trust_prompt_ttl", d.TrustPromptTTL)
	v.SetDefault("mcp_config_path", d.MCPConfigPath)
	v.SetDefault("runbook_dir", d.RunbookDir)
	v.SetDefault("offline_enabled", d.OfflineEnabled)

	v.SetConfigType("json")

	if home, err := os.UserHomeDir(); err == nil {
		if err := mergeIfPresent(v, filepath.Join(home, ".cmdforge", "config.json")); err != nil {
			return nil, err
		}
	}
	if err := mergeIfPresent(v, ".cmdforge.json"); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("CMDFORGE")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}
	return &cfg, nil
}

func mergeIfPresent(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	return nil
}
