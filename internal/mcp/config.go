package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ServerConfig describes how to launch and connect to a single MCP server.
type ServerConfig struct {
	Command  string            `json:"command"`
	Args     []string          `json:"args,omitempty"`
	Env      map[string]string `json:"env,omitempty"`
	Cwd      string            `json:"cwd,omitempty"`
	Disabled bool              `json:"disabled,omitempty"`
}

// Config is the top-level `.mcp.json` document: a named set of servers.
type Config struct {
	MCPServers map[string]ServerConfig `json:"mcpServers"`
}

// AddServer registers or replaces a server entry.
func (c *Config) AddServer(name string, cfg ServerConfig) {
	if c.MCPServers == nil {
		c.MCPServers = make(map[string]ServerConfig)
	}
	c.MCPServers[name] = cfg
}

// GetServer looks up a server entry by name.
func (c *Config) GetServer(name string) (ServerConfig, bool) {
	cfg, ok := c.MCPServers[name]
	return cfg, ok
}

// RemoveServer deletes a server entry, reporting whether it existed.
func (c *Config) RemoveServer(name string) bool {
	if _, ok := c.MCPServers[name]; !ok {
		return false
	}
	delete(c.MCPServers, name)
	return true
}

// ListServers returns all configured server names in no particular order.
func (c *Config) ListServers() []string {
	names := make([]string, 0, len(c.MCPServers))
	for name := range c.MCPServers {
		names = append(names, name)
	}
	return names
}

// GetActiveServers returns the subset of servers that are not disabled.
func (c *Config) GetActiveServers() map[string]ServerConfig {
	active := make(map[string]ServerConfig)
	for name, cfg := range c.MCPServers {
		if !cfg.Disabled {
			active[name] = cfg
		}
	}
	return active
}

// Validate checks the config is well-formed enough to start servers from.
func (c *Config) Validate() error {
	if len(c.MCPServers) == 0 {
		return fmt.Errorf("mcp config: no servers defined")
	}
	for name, cfg := range c.MCPServers {
		if strings.TrimSpace(cfg.Command) == "" {
			return fmt.Errorf("mcp config: server %q has no command", name)
		}
		if strings.ContainsAny(cfg.Command, "\n\r\x00") {
			return fmt.Errorf("mcp config: server %q command contains invalid characters", name)
		}
	}
	return nil
}

// ConfigLoader loads and saves MCP server configuration, expanding
// ${VAR}/$VAR references against the process environment.
type ConfigLoader struct{}

// NewConfigLoader builds a ConfigLoader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// LoadFromPath reads and parses a config file, expanding env references
// in every server entry.
func (l *ConfigLoader) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mcp config: read %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("mcp config: parse %s: %w", path, err)
	}
	for name, server := range cfg.MCPServers {
		cfg.MCPServers[name] = l.expandEnvVars(server)
	}
	return &cfg, nil
}

// SaveToPath writes a config file as pretty-printed JSON.
func (l *ConfigLoader) SaveToPath(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("mcp config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("mcp config: write %s: %w", path, err)
	}
	return nil
}

// expandEnvVars expands ${VAR}/$VAR references in a server's command,
// args, and env values against the process environment.
func (l *ConfigLoader) expandEnvVars(cfg ServerConfig) ServerConfig {
	expanded := cfg
	expanded.Command = l.expandString(cfg.Command)

	if cfg.Args != nil {
		expanded.Args = make([]string, len(cfg.Args))
		for i, arg := range cfg.Args {
			expanded.Args[i] = l.expandString(arg)
		}
	}

	if cfg.Env != nil {
		expanded.Env = make(map[string]string, len(cfg.Env))
		for k, v := range cfg.Env {
			expanded.Env[k] = l.expandString(v)
		}
	}

	return expanded
}

// expandString expands ${VAR} and $VAR references, leaving unset
// variables as an empty string.
func (l *ConfigLoader) expandString(s string) string {
	return os.ExpandEnv(s)
}
