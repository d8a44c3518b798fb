package config

import "time"

// Config represents the complete Benday configuration
type Config struct {
	BaseDir     string            `yaml:"-"` // Directory containing config file, for resolving relative paths
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Journal     JournalConfig     `yaml:"journal"`
	Compression CompressionConfig `yaml:"compression"`
	Editor      EditorConfig      `yaml:"editor"`
	Watch       WatchConfig       `yaml:"watch"`
	Program     string            `yaml:"program"` // Program file run by the server and watched in dev mode
}

// ServerConfig holds server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Dev  bool   `yaml:"-"` // Set via CLI flag, not config
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
	Output string `yaml:"output"` // stderr, stdout, or file path
	Quiet  bool   `yaml:"quiet"`  // suppress request logs
}

// JournalConfig holds run journal settings
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  string `yaml:"driver"`   // sqlite, postgres or mysql (default: sqlite)
	DSN     string `yaml:"dsn"`      // Database path (sqlite) or connection string
	MaxRuns int    `yaml:"max_runs"` // Runs to keep (default: 500)
}

// CompressionConfig holds HTTP response compression settings
type CompressionConfig struct {
	Enabled bool   `yaml:"enabled"`  // Enable gzip compression (default: true)
	Level   string `yaml:"level"`    // Compression level: "fastest", "default", "best", "none" (default: "default")
	MinSize int    `yaml:"min_size"` // Minimum response size to compress in bytes (default: 1024)
}

// EditorConfig holds REPL settings
type EditorConfig struct {
	HistoryFile string `yaml:"history_file"` // Line history (default: ~/.blocks_history)
	Prompt      string `yaml:"prompt"`       // Prompt shown before each command
}

// WatchConfig holds dev-mode file watching settings
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"` // Quiet time before re-running (default: 200ms)
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Journal: JournalConfig{
			Enabled: false,
			Driver:  "sqlite",
			DSN:     "benday_journal.db",
			MaxRuns: 500,
		},
		Compression: CompressionConfig{
			Enabled: true,
			Level:   "default",
			MinSize: 1024,
		},
		Editor: EditorConfig{
			Prompt: "blocks> ",
		},
		Watch: WatchConfig{
			Debounce: 200 * time.Millisecond,
		},
	}
}
