package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sambeau/benday/config"
	"github.com/sambeau/benday/pkg/benday/benday"
	"github.com/sambeau/benday/pkg/benday/blocks"
	"github.com/sambeau/benday/pkg/benday/errors"
	"github.com/sambeau/benday/pkg/benday/evaluator"
	"github.com/sambeau/benday/pkg/benday/format"
	"github.com/sambeau/benday/pkg/benday/help"
	"github.com/sambeau/benday/pkg/benday/journal"
	"github.com/sambeau/benday/pkg/benday/program"
	"github.com/sambeau/benday/pkg/benday/repl"
)

// Version is set at compile time via -ldflags
var Version = "0.1.0-dev"

// Exit codes
const (
	exitOK    = 0
	exitError = 1 // program or runtime error
	exitUsage = 2 // bad arguments or unreadable file
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

// run dispatches a command line and returns the exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	// Check for subcommands first (before flag parsing)
	if len(args) > 0 {
		switch args[0] {
		case "run":
			return runCommand(ctx, args[1:], stdout, stderr, getenv)
		case "check":
			return checkCommand(args[1:], stdout, stderr)
		case "ast":
			return printCommand(args[1:], stdout, stderr, func(root *blocks.Block) string {
				return format.FormatAST(blocks.ToAST(root))
			})
		case "outline":
			return printCommand(args[1:], stdout, stderr, format.FormatBlocks)
		case "describe":
			return describeCommand(args[1:], stdout, stderr)
		}
	}

	flags := flag.NewFlagSet("blocks", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { printHelp(stderr) }

	var (
		configPath  = flags.String("config", "", "Path to config file")
		showVersion = flags.Bool("version", false, "Show version information")
		showHelp    = flags.Bool("help", false, "Show help message")
	)
	flags.BoolVar(showVersion, "V", false, "Show version information")
	flags.BoolVar(showHelp, "h", false, "Show help message")

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}

	if *showHelp {
		printHelp(stdout)
		return exitOK
	}
	if *showVersion {
		fmt.Fprintf(stdout, "blocks version %s\n", Version)
		return exitOK
	}
	if flags.NArg() > 1 {
		fmt.Fprintln(stderr, "Error: the editor opens at most one program")
		return exitUsage
	}

	cfg, _, err := config.LoadOrDefaults(*configPath, getenv)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	opts := repl.Options{
		HistoryFile: cfg.Editor.HistoryFile,
		Prompt:      cfg.Editor.Prompt,
		Program:     flags.Arg(0),
	}
	j, err := openJournal(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	if j != nil {
		defer j.Close()
		opts.Session = append(opts.Session, benday.WithRecorder(j))
	}

	repl.Start(os.Stdin, stdout, Version, opts)
	return exitOK
}

// runCommand implements 'blocks run <file>': print output lines as they
// happen, diagnostics to stderr, then the final value when it is not None.
func runCommand(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	flags := flag.NewFlagSet("run", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "Path to config file")
	quiet := flags.Bool("q", false, "Do not print the final value")
	if err := flags.Parse(args); err != nil {
		return exitUsage
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(stderr, "Usage: blocks run [--config PATH] [-q] <file>")
		return exitUsage
	}

	root, err := program.Load(flags.Arg(0))
	if err != nil {
		printError(stderr, err)
		return exitError
	}

	opts := []benday.Option{
		benday.WithLogger(benday.WriterLogger(stdout)),
		benday.WithReporter(benday.WriterReporter(stderr)),
	}
	if *configPath != "" || getenv("BENDAY_CONFIG") != "" {
		cfg, _, err := config.LoadOrDefaults(*configPath, getenv)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitUsage
		}
		j, err := openJournal(ctx, cfg)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		if j != nil {
			defer j.Close()
			opts = append(opts, benday.WithRecorder(j))
		}
	}

	result, err := benday.NewSession(opts...).Run(ctx, root)
	if err != nil {
		// runtime errors have already gone through the reporter
		if _, ok := err.(*errors.BendayError); !ok {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitError
	}

	if !*quiet && result.Type() != evaluator.NONE_OBJ {
		fmt.Fprintln(stdout, format.FormatValue(result))
	}
	return exitOK
}

// checkCommand loads one or more programs without running them
func checkCommand(files []string, stdout, stderr io.Writer) int {
	if len(files) == 0 {
		fmt.Fprintln(stderr, "Error: check requires at least one file")
		return exitUsage
	}

	code := exitOK
	for _, file := range files {
		if _, err := program.Load(file); err != nil {
			printError(stderr, err)
			code = exitError
			continue
		}
		fmt.Fprintf(stdout, "%s: ok\n", file)
	}
	return code
}

// printCommand loads a single program and prints it through render
func printCommand(args []string, stdout, stderr io.Writer, render func(*blocks.Block) string) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Error: expected exactly one program file")
		return exitUsage
	}
	root, err := program.Load(args[0])
	if err != nil {
		printError(stderr, err)
		return exitError
	}
	fmt.Fprint(stdout, render(root))
	return exitOK
}

// describeCommand implements 'blocks describe [--json] <topic>'
func describeCommand(args []string, stdout, stderr io.Writer) int {
	jsonOutput := false
	var topic string
	for _, arg := range args {
		if arg == "--json" {
			jsonOutput = true
		} else if topic == "" {
			topic = arg
		}
	}

	if topic == "" {
		fmt.Fprintln(stderr, `Usage: blocks describe [--json] <topic>

Topics:
  blocks             List every block type
  operators          List expression operators
  <type>             Help for a block type (sequence, if, while, assign, print, return)

Examples:
  blocks describe while
  blocks describe operators
  blocks describe --json assign`)
		return exitUsage
	}

	result, err := help.DescribeTopic(topic)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if jsonOutput {
		data, err := help.FormatJSON(result)
		if err != nil {
			fmt.Fprintf(stderr, "Error formatting JSON: %v\n", err)
			return exitError
		}
		fmt.Fprintln(stdout, string(data))
		return exitOK
	}
	fmt.Fprint(stdout, help.FormatText(result, 80))
	return exitOK
}

// openJournal opens the run journal when the config enables it
func openJournal(ctx context.Context, cfg *config.Config) (*journal.Journal, error) {
	if !cfg.Journal.Enabled {
		return nil, nil
	}
	j, err := journal.Open(ctx, journal.Config{
		Driver:  cfg.Journal.Driver,
		DSN:     cfg.Journal.DSN,
		MaxRuns: cfg.Journal.MaxRuns,
	})
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	return j, nil
}

func printError(w io.Writer, err error) {
	if be, ok := err.(*errors.BendayError); ok {
		fmt.Fprintln(w, be.PrettyString())
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, `blocks - Benday block editor and runner version %s

Usage:
  blocks [options] [file]
  blocks run [--config PATH] [-q] <file>
  blocks check <file>...
  blocks ast <file>
  blocks outline <file>
  blocks describe [--json] <topic>

Commands:
  run                   Run a program; output to stdout, diagnostics to stderr
  check                 Load programs without running them
  ast                   Print the statement tree a program runs as
  outline               Print a program's blocks with their paths
  describe <topic>      Show help for a block type or the operators

Options:
  --config PATH         Config file (editor prompt, history, journal)
  -h, --help            Show this help message
  -V, --version         Show version information

Examples:
  blocks                    Start the editor with an empty program
  blocks hello.yaml         Open hello.yaml in the editor
  blocks run hello.yaml     Run hello.yaml
  blocks check *.yaml       Check several programs
  blocks describe while     Show help for while blocks
`, Version)
}
