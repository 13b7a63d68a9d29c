package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yndnr/graphdev-go/internal/core/domain"
	"github.com/yndnr/graphdev-go/internal/telemetry/logger"
)

var (
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"text", "json"}
	logBackends   = []string{logger.BackendSlog, logger.BackendZap}
	outputFormats = []string{"table", "json", "yaml"}
)

// Verify validates the configuration.
func Verify(cfg *Config) error {
	if err := verifySession(&cfg.Session); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	return oneOf("output.format", cfg.Output.Format, outputFormats)
}

func verifySession(cfg *SessionSection) error {
	if cfg.Socket == "" {
		return domain.ErrMissingArgument.WithDetails("session.socket is required")
	}
	if cfg.Heartbeat <= 0 {
		return domain.ErrInvalidArgument.WithDetails("session.heartbeat must be positive")
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if err := oneOf("log.level", strings.ToLower(cfg.Level), logLevels); err != nil {
		return err
	}
	if err := oneOf("log.format", cfg.Format, logFormats); err != nil {
		return err
	}
	return oneOf("log.backend", cfg.Backend, logBackends)
}

func oneOf(key, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return domain.ErrInvalidArgument.WithDetails(
		fmt.Sprintf("%s must be one of %s, got %q", key, strings.Join(allowed, ", "), value))
}
