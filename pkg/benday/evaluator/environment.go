package evaluator

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sambeau/benday/pkg/benday/errors"
)

// Logger receives the output of print blocks
type Logger interface {
	Log(values ...interface{})
	LogLine(values ...interface{})
}

// defaultStdoutLogger is the default logger that writes to stdout
type defaultStdoutLogger struct{}

func (l *defaultStdoutLogger) Log(values ...interface{}) {
	for i, v := range values {
		if i > 0 {
			fmt.Print(" ")
		}
		fmt.Print(v)
	}
}

func (l *defaultStdoutLogger) LogLine(values ...interface{}) {
	l.Log(values...)
	fmt.Println()
}

// DefaultLogger is the default stdout logger
var DefaultLogger Logger = &defaultStdoutLogger{}

// Reporter receives each runtime error and loop notice exactly once
type Reporter interface {
	Report(diag *errors.BendayError)
}

// WriterReporter prints diagnostics to a writer
type WriterReporter struct {
	W io.Writer
}

func (r *WriterReporter) Report(diag *errors.BendayError) {
	fmt.Fprintln(r.W, diag.PrettyString())
}

// DefaultReporter prints diagnostics to stderr
var DefaultReporter Reporter = &WriterReporter{W: os.Stderr}

// Environment is the interpreter context: the global variable table plus the
// host's output and diagnostic sinks. Variables persist across runs until
// Reset.
type Environment struct {
	store    map[string]Object
	Logger   Logger
	Reporter Reporter
}

// NewEnvironment creates a new environment
func NewEnvironment() *Environment {
	return &Environment{
		store:    make(map[string]Object),
		Logger:   DefaultLogger,
		Reporter: DefaultReporter,
	}
}

// Get retrieves a variable
func (e *Environment) Get(name string) (Object, bool) {
	value, ok := e.store[name]
	return value, ok
}

// Set stores a variable, replacing any previous value
func (e *Environment) Set(name string, val Object) Object {
	e.store[name] = val
	return val
}

// Names returns the defined variable names in sorted order
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.store))
	for name := range e.store {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of defined variables
func (e *Environment) Len() int { return len(e.store) }

// Reset forgets every variable
func (e *Environment) Reset() {
	e.store = make(map[string]Object)
}

func (e *Environment) emit(value Object) {
	if e.Logger != nil {
		e.Logger.LogLine(value.Inspect())
	}
}

func (e *Environment) report(diag *errors.BendayError) {
	if e.Reporter != nil {
		e.Reporter.Report(diag)
	}
}
