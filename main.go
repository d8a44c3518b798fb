package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sambeau/benday/config"
	"github.com/sambeau/benday/server"
)

// Version is set at build time via -ldflags
var Version = "0.1.0-dev"

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main entry point, designed for testability (Mat Ryer pattern)
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) error {
	flags := flag.NewFlagSet("benday", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configPath  = flags.String("config", "", "Path to config file")
		devMode     = flags.Bool("dev", false, "Development mode (watch and re-run the program)")
		port        = flags.Int("port", 0, "Override listen port")
		programPath = flags.String("program", "", "Override the program file")
		showVersion = flags.Bool("version", false, "Show version")
		showHelp    = flags.Bool("help", false, "Show help")
	)

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *showHelp {
		printUsage(stdout)
		return nil
	}

	if *showVersion {
		fmt.Fprintf(stdout, "benday version %s\n", Version)
		return nil
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, configFile, err := config.LoadOrDefaults(*configPath, getenv)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if *devMode {
		cfg.Server.Dev = true
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *programPath != "" {
		cfg.Program = *programPath
	}

	// Full validation after CLI overrides applied
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	for _, w := range config.Warnings(cfg) {
		fmt.Fprintf(stderr, "warning: %s\n", w)
	}

	srv, err := server.New(cfg, configFile, stdout, stderr)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return srv.Run(ctx)
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `benday - An HTTP server for block programs

Usage:
  benday [options]

Options:
  --config PATH    Path to config file (default: auto-detect)
  --dev            Development mode (re-run the program when it changes)
  --port PORT      Override listen port
  --program PATH   Override the program file
  --version        Show version
  --help           Show this help

Config Resolution:
  1. --config flag
  2. BENDAY_CONFIG environment variable
  3. ./benday.yaml
  4. ~/.config/benday/benday.yaml
  Without a config file the defaults are used.

Endpoints:
  POST   /run            Run a YAML program (?reset clears variables first)
  POST   /reset          Clear variables
  GET    /vars           Current variables
  GET    /journal        Recent runs (?limit=N)
  GET    /journal/{id}   One run with its output
  DELETE /journal        Forget every run
  GET    /help/{topic}   Help page (?format=json or ?format=md)
  GET    /healthz        Liveness check

Examples:
  benday                          Start with auto-detected config
  benday --dev --program hi.yaml  Watch hi.yaml and re-run it on save
  benday --config app.yaml        Use specific config file
  benday --port 3000              Listen on port 3000

`)
}
