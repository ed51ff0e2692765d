package commands

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config drives the serve, render and list commands. Every field has a
// working default; a config file overrides defaults and flags override the
// file.
type Config struct {
	// Listen is the HTTP listen address for serve.
	Listen string `yaml:"listen"`
	// Pages is the directory of HTML pages served per request.
	Pages string `yaml:"pages"`
	// Templates is the directory of <name>.html component templates.
	Templates string `yaml:"templates"`
	// Modules is the directory of <name>.wasm component modules.
	Modules string `yaml:"modules"`
	// Debug exposes /debug/islands on the serve listener.
	Debug bool `yaml:"debug"`
	// Watch reloads components when their files change.
	Watch bool `yaml:"watch"`
	// Tracing selects a span exporter ("stdout" or empty for none).
	Tracing string `yaml:"tracing"`

	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig controls the Prometheus endpoint of serve.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func defaultConfig() Config {
	return Config{
		Listen:    ":8080",
		Pages:     "pages",
		Templates: "components",
		Metrics:   MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// loadConfig reads a YAML config file, or returns defaults when no path is
// given.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	return cfg, nil
}
