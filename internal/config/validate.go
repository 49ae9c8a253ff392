package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks configuration invariants and returns actionable errors.
func Validate(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	var errs []error

	if cfg.MaxTextBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_text_bytes: must be > 0, got %d", cfg.MaxTextBytes))
	}
	if cfg.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("timeout_seconds: must be > 0, got %d", cfg.TimeoutSeconds))
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	switch cfg.Backend {
	case BackendSystem, BackendMemory:
	case BackendCommand:
		errs = append(errs, validateCommand(cfg.Command)...)
	default:
		errs = append(errs, fmt.Errorf("backend: unknown backend %q (use %s, %s or %s)", cfg.Backend, BackendSystem, BackendCommand, BackendMemory))
	}

	return errors.Join(errs...)
}

func validateCommand(cmd CommandConfig) []error {
	var errs []error
	if len(cmd.Copy) == 0 || strings.TrimSpace(cmd.Copy[0]) == "" {
		errs = append(errs, errors.New("command.copy: required when backend is command"))
	}
	if len(cmd.Paste) > 0 && strings.TrimSpace(cmd.Paste[0]) == "" {
		errs = append(errs, errors.New("command.paste: first element must name a program"))
	}
	return errs
}

// ParseLogLevel maps a config log level to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "trace":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown level %q", level)
	}
}
