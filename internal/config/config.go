package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/timrogers/klip/internal/paths"
)

// Environment variables consulted by Load.
const (
	EnvConfigPath     = "KLIP_CONFIG"
	EnvMaxTextBytes   = "KLIP_MAX_TEXT_BYTES"
	EnvTimeoutSeconds = "KLIP_TIMEOUT_SECONDS"
	EnvBackend        = "KLIP_BACKEND"
	EnvLogLevel       = "KLIP_LOG"
)

var envVarRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads the config file and applies environment overrides.
// An empty path selects $KLIP_CONFIG, then the XDG default.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the config file path in effect for this process.
func Path() string {
	if v := os.Getenv(EnvConfigPath); v != "" {
		return v
	}
	return paths.ConfigFile()
}

// LoadFrom reads and parses a config file at the given path.
// If the file does not exist, it returns the defaults (no error).
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	expandCommandEnvVars(&cfg.Command)
	return cfg, nil
}

// ApplyEnv overrides cfg with any KLIP_* environment variables that are set.
func ApplyEnv(cfg *Config) error {
	if v, ok := lookupEnv(EnvMaxTextBytes); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", EnvMaxTextBytes, v)
		}
		cfg.MaxTextBytes = n
	}
	if v, ok := lookupEnv(EnvTimeoutSeconds); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", EnvTimeoutSeconds, v)
		}
		cfg.TimeoutSeconds = n
	}
	if v, ok := lookupEnv(EnvBackend); ok {
		cfg.Backend = strings.ToLower(v)
	}
	if v, ok := lookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func expandCommandEnvVars(cmd *CommandConfig) {
	for i := range cmd.Copy {
		cmd.Copy[i] = expandEnvVars(cmd.Copy[i])
	}
	for i := range cmd.Paste {
		cmd.Paste[i] = expandEnvVars(cmd.Paste[i])
	}
}

// expandEnvVars replaces ${VAR_NAME} with the value of the environment variable.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := envVarRe.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match // leave unresolved vars as-is
	})
}
