package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Project struct {
		Root string `yaml:"root"`
	} `yaml:"project"`
	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`
	Watch struct {
		DebounceMs int `yaml:"debounce_ms"`
	} `yaml:"watch"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Project.Root = "."
	cfg.Output.Dir = "gen"
	cfg.Watch.DebounceMs = 500
	return cfg
}

// Debounce returns the watch debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config; a missing file keeps the defaults
	cfg := Default()
	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	// 3. Override with Environment Variables if present
	if root := os.Getenv("GDUNSHARP_PROJECT_ROOT"); root != "" {
		cfg.Project.Root = root
	}
	if dir := os.Getenv("GDUNSHARP_OUTPUT_DIR"); dir != "" {
		cfg.Output.Dir = dir
	}

	// 4. Fall back to defaults for anything left empty
	if cfg.Project.Root == "" {
		cfg.Project.Root = "."
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "gen"
	}
	if cfg.Watch.DebounceMs <= 0 {
		cfg.Watch.DebounceMs = 500
	}

	return cfg, nil
}
