package config

import "time"

// Backend names accepted by the backend key.
const (
	BackendSystem  = "system"
	BackendCommand = "command"
	BackendMemory  = "memory"
)

// Defaults applied when a key is absent.
const (
	DefaultMaxTextBytes   = 10 * 1024 * 1024
	DefaultTimeoutSeconds = 5
	DefaultBackend        = BackendSystem
	DefaultLogLevel       = "info"
)

// Config is the top-level klip configuration.
type Config struct {
	MaxTextBytes   int           `toml:"max_text_bytes"`
	TimeoutSeconds int           `toml:"timeout_seconds"`
	Backend        string        `toml:"backend"`
	LogLevel       string        `toml:"log_level"`
	Command        CommandConfig `toml:"command"`
}

// CommandConfig describes the external programs used by the command backend.
// Each entry is argv; the first element is resolved through $PATH.
type CommandConfig struct {
	Copy  []string `toml:"copy"`
	Paste []string `toml:"paste"`
}

// Default returns a Config with every key set to its default.
func Default() *Config {
	return &Config{
		MaxTextBytes:   DefaultMaxTextBytes,
		TimeoutSeconds: DefaultTimeoutSeconds,
		Backend:        DefaultBackend,
		LogLevel:       DefaultLogLevel,
	}
}

// Timeout returns the per-operation clipboard budget.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
