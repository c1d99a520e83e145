package observability

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoggingConfig controls the structured Logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus registry exposed by the status server.
type MetricsConfig struct {
	Enabled        bool `yaml:"enabled"`
	PrometheusPort int  `yaml:"prometheus_port"`
}

// TracingConfig controls otel span export.
type TracingConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Exporter       string  `yaml:"exporter"` // "jaeger", "zipkin", "otlp"
	JaegerEndpoint string  `yaml:"jaeger_endpoint"`
	ZipkinEndpoint string  `yaml:"zipkin_endpoint"`
	OTLPEndpoint   string  `yaml:"otlp_endpoint"`
	SampleRate     float64 `yaml:"sample_rate"`
	ServiceName    string  `yaml:"service_name"`
	ServiceVersion string  `yaml:"service_version"`
}

// Config is the top-level observability configuration document.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

type fileDocument struct {
	Observability Config `yaml:"observability"`
}

// DefaultConfig returns the baseline configuration: info/json logging,
// metrics on at :9090, tracing off with a jaeger exporter at full sample rate.
func DefaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Metrics: MetricsConfig{Enabled: true, PrometheusPort: 9090},
		Tracing: TracingConfig{Enabled: false, Exporter: "jaeger", SampleRate: 1.0},
	}
}

// LoadConfig reads a YAML config file and merges it over DefaultConfig.
// A missing file is not an error; it just yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("observability: read %s: %w", path, err)
	}

	var doc fileDocument
	doc.Observability = config
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("observability: parse %s: %w", path, err)
	}

	return doc.Observability, nil
}

// SaveConfig writes config as YAML, creating parent directories as needed.
func SaveConfig(config Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("observability: mkdir for %s: %w", path, err)
	}

	doc := fileDocument{Observability: config}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("observability: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("observability: write %s: %w", path, err)
	}
	return nil
}
