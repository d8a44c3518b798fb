package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no config file exists in any searched location
var ErrNotFound = errors.New("no config file found (tried BENDAY_CONFIG, benday.yaml, ~/.config/benday/benday.yaml)")

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadOrDefaults is LoadWithPath, except that finding no config file in the
// default locations gives Defaults and an empty path instead of an error.
func LoadOrDefaults(configPath string, getenv func(string) string) (*Config, string, error) {
	cfg, path, err := LoadWithPath(configPath, getenv)
	if errors.Is(err, ErrNotFound) {
		cfg = Defaults()
		if wd, err := os.Getwd(); err == nil {
			cfg.BaseDir = wd
		}
		cfg.resolvePaths()
		return cfg, "", nil
	}
	return cfg, path, err
}

// LoadWithPath reads configuration and returns both the config and the resolved path.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.BaseDir = filepath.Dir(absPath)
	cfg.resolvePaths()

	if err := Validate(cfg); err != nil {
		return nil, "", err
	}

	return cfg, absPath, nil
}

// resolvePaths makes file paths relative to the config file absolute
func (cfg *Config) resolvePaths() {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) || cfg.BaseDir == "" {
			return p
		}
		return filepath.Join(cfg.BaseDir, p)
	}

	cfg.Program = resolve(cfg.Program)
	if cfg.Journal.Driver == "sqlite" && cfg.Journal.DSN != ":memory:" {
		cfg.Journal.DSN = resolve(cfg.Journal.DSN)
	}
	if cfg.Logging.Output != "stderr" && cfg.Logging.Output != "stdout" {
		cfg.Logging.Output = resolve(cfg.Logging.Output)
	}
}

// Warnings returns non-fatal configuration issues that should be reported to the user.
func Warnings(cfg *Config) []string {
	var warnings []string

	if cfg.Program == "" {
		warnings = append(warnings, "no program configured - POST /run still works, but nothing is run on start or watched")
	} else if _, err := os.Stat(cfg.Program); err != nil {
		warnings = append(warnings, fmt.Sprintf("program file %s does not exist yet", cfg.Program))
	}

	if cfg.Journal.Enabled && cfg.Journal.Driver == "sqlite" && cfg.Journal.DSN == ":memory:" {
		warnings = append(warnings, "journal: in-memory sqlite database - runs are lost on restart")
	}

	return warnings
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > BENDAY_CONFIG env > ./benday.yaml > ~/.config/benday/benday.yaml
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("BENDAY_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("BENDAY_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("benday.yaml"); err == nil {
		return "benday.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "benday", "benday.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", ErrNotFound
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}

		return []byte(value)
	})
}

// Validate checks the configuration for errors. Call it again after
// applying CLI overrides.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port: %d (must be 1-65535)", cfg.Server.Port))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be json or text)", cfg.Logging.Format))
	}

	if cfg.Journal.Enabled {
		switch cfg.Journal.Driver {
		case "sqlite", "postgres", "mysql":
		default:
			errs = append(errs, fmt.Sprintf("journal: unknown driver %q (must be sqlite, postgres, or mysql)", cfg.Journal.Driver))
		}
		if cfg.Journal.DSN == "" {
			errs = append(errs, "journal: dsn is required when the journal is enabled")
		}
		if cfg.Journal.MaxRuns < 0 {
			errs = append(errs, fmt.Sprintf("journal: max_runs must not be negative (got %d)", cfg.Journal.MaxRuns))
		}
	}

	validLevelsCompression := map[string]bool{"fastest": true, "default": true, "best": true, "none": true}
	if cfg.Compression.Enabled && !validLevelsCompression[cfg.Compression.Level] {
		errs = append(errs, fmt.Sprintf("compression: invalid level %q (must be fastest, default, best, or none)", cfg.Compression.Level))
	}

	if cfg.Watch.Debounce < 0 {
		errs = append(errs, "watch: debounce must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
