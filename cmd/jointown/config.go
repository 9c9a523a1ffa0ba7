package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/jointown"
	"github.com/arloliu/jointown/internal/logging"
	"github.com/arloliu/jointown/internal/metrics"
	"github.com/arloliu/jointown/internal/publish"
)

// NATS modes.
const (
	natsDisabled = ""
	natsEmbedded = "embedded"
	natsExternal = "external"
)

const defaultBucket = "jointown"

var errInvalidFileConfig = errors.New("invalid config file")

// fileConfig is the configuration file of the CLI, in YAML or TOML.
type fileConfig struct {
	World   jointown.Config `yaml:"world" toml:"world"`
	Log     logging.Options `yaml:"log" toml:"log"`
	Metrics metricsConfig   `yaml:"metrics" toml:"metrics"`
	NATS    natsConfig      `yaml:"nats" toml:"nats"`
}

// metricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type metricsConfig struct {
	Addr      string `yaml:"addr" toml:"addr"`           // e.g. ":9090"
	Namespace string `yaml:"namespace" toml:"namespace"` // metric name prefix
}

// natsConfig configures snapshot publishing into a JetStream KV bucket.
type natsConfig struct {
	Mode   string `yaml:"mode" toml:"mode"` // "", "embedded", "external"
	URL    string `yaml:"url" toml:"url"`   // "nats://localhost:4222"
	Bucket string `yaml:"bucket" toml:"bucket"`
	Prefix string `yaml:"prefix" toml:"prefix"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		World: jointown.DefaultConfig(),
		Log:   logging.Options{Level: "info", Format: logging.FormatTint},
	}
}

// loadConfig reads a config file, picking the decoder from the extension.
// An empty path yields the defaults.
func loadConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()
	if path == "" {
		applyDefaults(&cfg)
		return cfg, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return fileConfig{}, fmt.Errorf("load config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fileConfig{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fileConfig{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		return fileConfig{}, fmt.Errorf("%w: unsupported extension %q", errInvalidFileConfig, filepath.Ext(path))
	}

	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return fileConfig{}, err
	}

	return cfg, nil
}

func applyDefaults(cfg *fileConfig) {
	jointown.SetDefaults(&cfg.World)

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = metrics.DefaultNamespace
	}
	if cfg.NATS.Bucket == "" {
		cfg.NATS.Bucket = defaultBucket
	}
	if cfg.NATS.Prefix == "" {
		cfg.NATS.Prefix = publish.DefaultPrefix
	}
}

func validateConfig(cfg *fileConfig) error {
	if err := cfg.World.Validate(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: log: %w", errInvalidFileConfig, err)
	}

	switch cfg.NATS.Mode {
	case natsDisabled, natsEmbedded:
	case natsExternal:
		if cfg.NATS.URL == "" {
			return fmt.Errorf("%w: nats.url is required in external mode", errInvalidFileConfig)
		}
	default:
		return fmt.Errorf("%w: unknown nats mode %q", errInvalidFileConfig, cfg.NATS.Mode)
	}

	return nil
}
