// Package config loads service configuration from YAML, .env files, and the
// environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// #region types
// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Detector DetectorConfig `yaml:"detector"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Session  SessionConfig  `yaml:"session"`
	Events   EventsConfig   `yaml:"events"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// MaxBodyBytes caps a request body; frames arrive base64 encoded.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// DetectorConfig selects and sizes the pose detector backend.
type DetectorConfig struct {
	// Mode is "grpc" for the sidecar service or "subprocess" for a local worker.
	Mode           string        `yaml:"mode"`
	Addr           string        `yaml:"addr"`
	Command        []string      `yaml:"command"`
	PoolSize       int           `yaml:"pool_size"`
	Timeout        time.Duration `yaml:"timeout"`
	HealthInterval time.Duration `yaml:"health_interval"`
}

type CatalogConfig struct {
	Driver     string `yaml:"driver"`
	DSN        string `yaml:"dsn"`
	ImportPath string `yaml:"import_path"`
}

type SessionConfig struct {
	DefaultSide          string `yaml:"default_side"`
	GateUnknownExercises bool   `yaml:"gate_unknown_exercises"`
}

// EventsConfig configures MQTT notifications. An empty broker disables them.
type EventsConfig struct {
	Broker   string `yaml:"broker"`
	Topic    string `yaml:"topic"`
	ClientID string `yaml:"client_id"`
	QoS      byte   `yaml:"qos"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// #endregion types

// #region defaults
// Default returns a configuration that runs without any file.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8000",
			RequestTimeout: 30 * time.Second,
			MaxBodyBytes:   16 << 20,
		},
		Detector: DetectorConfig{
			Mode:           "grpc",
			Addr:           "localhost:50051",
			PoolSize:       2,
			Timeout:        5 * time.Second,
			HealthInterval: 15 * time.Second,
		},
		Catalog: CatalogConfig{
			Driver: "sqlite",
			DSN:    "physio_catalog.db",
		},
		Session: SessionConfig{
			DefaultSide: "left",
		},
		Events: EventsConfig{
			Topic:    "physio/events",
			ClientID: "physio-coach",
			QoS:      1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// #endregion defaults

// #region load
// Load reads path over the defaults, applies environment overrides, and
// validates. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadEnv loads each .env file that exists into the process environment.
// Variables already set are left alone.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Server.Addr = envOr("PHYSIO_ADDR", c.Server.Addr)
	c.Detector.Mode = envOr("POSE_MODE", c.Detector.Mode)
	c.Detector.Addr = envOr("POSE_ADDR", c.Detector.Addr)
	if v := os.Getenv("POSE_COMMAND"); v != "" {
		c.Detector.Command = strings.Fields(v)
	}
	if v := os.Getenv("POSE_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("POSE_POOL_SIZE: %w", err)
		}
		c.Detector.PoolSize = n
	}
	c.Catalog.Driver = envOr("CATALOG_DRIVER", c.Catalog.Driver)
	c.Catalog.DSN = envOr("CATALOG_DSN", c.Catalog.DSN)
	c.Events.Broker = envOr("MQTT_BROKER", c.Events.Broker)
	c.Session.DefaultSide = envOr("DEFAULT_SIDE", c.Session.DefaultSide)
	c.Log.Level = envOr("LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("LOG_FORMAT", c.Log.Format)
	return nil
}

// #endregion load

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
