// Package repl is the interactive block editor: a program is built and run
// one command at a time, with line editing, history and tab completion.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/sambeau/benday/pkg/benday/benday"
	"github.com/sambeau/benday/pkg/benday/errors"
	"github.com/sambeau/benday/pkg/benday/help"
)

const DefaultPrompt = "blocks> "

const LOGO = `
█▄▄ █░░ █▀█ █▀▀ █▄▀ █▀
█▄█ █▄▄ █▄█ █▄▄ █░█ ▄█`

// Options configures Start.
type Options struct {
	HistoryFile string // default: .blocks_history in the temp dir
	Prompt      string
	Program     string // loaded before the first prompt when set
	Session     []benday.Option
}

// Start runs the editor until exit or Ctrl+D.
func Start(in io.Reader, out io.Writer, version string, opts Options) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(filterCompletions)

	historyFile := opts.HistoryFile
	if historyFile == "" {
		historyFile = filepath.Join(os.TempDir(), ".blocks_history")
	}
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	prompt := opts.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}

	editor := NewEditor(out, opts.Session...)
	if opts.Program != "" {
		if err := editor.Load(opts.Program); err != nil {
			printError(out, err)
		}
	}

	fmt.Fprintf(out, "%s", LOGO)
	fmt.Fprintln(out, " v", version)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Type 'exit' or Ctrl+D to quit")
	fmt.Fprintln(out, "Use Tab for completion, ↑↓ for history")
	fmt.Fprintln(out, "Type 'help' for editor commands")
	fmt.Fprintln(out, "")

	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted {
				fmt.Fprintln(out, "^C")
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(out, "Error reading input: %v\n", err)
			continue
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		line.AppendHistory(trimmed)

		quit, err := editor.Exec(trimmed)
		if err != nil {
			printError(out, err)
		}
		if quit {
			fmt.Fprintln(out, "Goodbye!")
			return
		}
	}
}

func printError(out io.Writer, err error) {
	if be, ok := err.(*errors.BendayError); ok {
		io.WriteString(out, be.PrettyString())
		io.WriteString(out, "\n")
		return
	}
	fmt.Fprintln(out, err)
}

// filterCompletions completes command names in the first word, block types
// after add, and help topics after help.
func filterCompletions(line string) []string {
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if line[len(line)-1] == ' ' || line[len(line)-1] == '\t' {
		return nil
	}

	words := strings.Fields(line)
	lastWord := words[len(words)-1]
	prefix := line[:len(line)-len(lastWord)]

	var candidates []string
	switch {
	case len(words) == 1:
		candidates = commandNames()
	case words[0] == "add" && len(words) == 3:
		candidates = kindNames()
	case words[0] == "help" && len(words) == 2:
		candidates = help.Topics()
	case words[0] == "find" && len(words) == 2:
		candidates = kindNames()
	}

	var matches []string
	for _, word := range candidates {
		if strings.HasPrefix(word, lastWord) {
			matches = append(matches, prefix+word)
		}
	}
	return matches
}
