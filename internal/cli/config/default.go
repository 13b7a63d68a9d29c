package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/yndnr/graphdev-go/internal/telemetry/logger"
)

// Default configuration values.
const (
	DefaultSocketName = "graphdev.sock"
	DefaultHeartbeat  = time.Second

	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultLogBackend = logger.BackendSlog

	DefaultOutputFormat = "table"
)

// DefaultSocketPath returns the socket the first `graphdev dev` binds.
func DefaultSocketPath() string {
	return filepath.Join(os.TempDir(), DefaultSocketName)
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "graphdev", "config.yaml")
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Session: SessionSection{
			Socket:    DefaultSocketPath(),
			Heartbeat: DefaultHeartbeat,
		},
		Log: LogSection{
			Level:   DefaultLogLevel,
			Format:  DefaultLogFormat,
			Backend: DefaultLogBackend,
		},
		Output: OutputSection{
			Format: DefaultOutputFormat,
		},
	}
}

// flatten returns cfg keyed by dotted path, the shape confloader expects
// for defaults and overrides.
func flatten(cfg *Config) map[string]any {
	return map[string]any{
		"session.socket":    cfg.Session.Socket,
		"session.heartbeat": cfg.Session.Heartbeat,
		"log.level":         cfg.Log.Level,
		"log.format":        cfg.Log.Format,
		"log.backend":       cfg.Log.Backend,
		"metrics.addr":      cfg.Metrics.Addr,
		"output.format":     cfg.Output.Format,
	}
}
