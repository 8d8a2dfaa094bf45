package config

import (
	"errors"
	"fmt"
)

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Server.Addr == "" {
		add("server.addr is required")
	}
	if c.Server.RequestTimeout <= 0 {
		add("server.request_timeout must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		add("server.max_body_bytes must be positive")
	}

	switch c.Detector.Mode {
	case "grpc":
		if c.Detector.Addr == "" {
			add("detector.addr is required in grpc mode")
		}
	case "subprocess":
		if len(c.Detector.Command) == 0 {
			add("detector.command is required in subprocess mode")
		}
	default:
		add("detector.mode must be grpc or subprocess, got %q", c.Detector.Mode)
	}
	if c.Detector.PoolSize < 1 {
		add("detector.pool_size must be at least 1, got %d", c.Detector.PoolSize)
	}
	if c.Detector.Timeout <= 0 {
		add("detector.timeout must be positive")
	}
	if c.Detector.HealthInterval <= 0 {
		add("detector.health_interval must be positive")
	}

	if c.Catalog.Driver != "sqlite" && c.Catalog.Driver != "postgres" {
		add("catalog.driver must be sqlite or postgres, got %q", c.Catalog.Driver)
	}
	if c.Catalog.DSN == "" {
		add("catalog.dsn is required")
	}

	if c.Session.DefaultSide != "left" && c.Session.DefaultSide != "right" {
		add("session.default_side must be left or right, got %q", c.Session.DefaultSide)
	}

	if c.Events.Broker != "" && c.Events.Topic == "" {
		add("events.topic is required when a broker is set")
	}
	if c.Events.QoS > 2 {
		add("events.qos must be 0, 1, or 2, got %d", c.Events.QoS)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		add("log.level must be debug, info, warn, or error, got %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		add("log.format must be text or json, got %q", c.Log.Format)
	}

	return errors.Join(errs...)
}
