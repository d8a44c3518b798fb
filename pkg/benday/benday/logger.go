package benday

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sambeau/benday/pkg/benday/errors"
	"github.com/sambeau/benday/pkg/benday/evaluator"
)

// Logger receives the output of print blocks
type Logger = evaluator.Logger

// Reporter receives runtime errors and loop notices
type Reporter = evaluator.Reporter

// StdoutLogger returns a logger that writes print output to stdout (default for CLI/REPL)
func StdoutLogger() Logger {
	return evaluator.DefaultLogger
}

type writerLogger struct {
	w io.Writer
}

func (l *writerLogger) Log(values ...any) {
	fmt.Fprint(l.w, joinValues(values...))
}

func (l *writerLogger) LogLine(values ...any) {
	fmt.Fprintln(l.w, joinValues(values...))
}

// WriterLogger returns a logger that writes print output to w
func WriterLogger(w io.Writer) Logger {
	return &writerLogger{w: w}
}

// BufferedLogger captures print output line by line. The server uses one per
// request.
type BufferedLogger struct {
	mu      sync.Mutex
	lines   []string
	pending strings.Builder
}

// NewBufferedLogger creates an empty buffered logger
func NewBufferedLogger() *BufferedLogger {
	return &BufferedLogger{lines: make([]string, 0)}
}

func (l *BufferedLogger) Log(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending.WriteString(joinValues(values...))
}

func (l *BufferedLogger) LogLine(values ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, l.pending.String()+joinValues(values...))
	l.pending.Reset()
}

// Lines returns a copy of the captured lines
func (l *BufferedLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// String returns the captured output, one line per print
func (l *BufferedLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sb strings.Builder
	for _, line := range l.lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString(l.pending.String())
	return sb.String()
}

// Reset clears the captured output
func (l *BufferedLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = l.lines[:0]
	l.pending.Reset()
}

type nullLogger struct{}

func (nullLogger) Log(values ...any)     {}
func (nullLogger) LogLine(values ...any) {}

// NullLogger returns a logger that discards all output
func NullLogger() Logger {
	return nullLogger{}
}

type nullReporter struct{}

func (nullReporter) Report(*errors.BendayError) {}

// NullReporter returns a reporter that discards all diagnostics
func NullReporter() Reporter {
	return nullReporter{}
}

// WriterReporter returns a reporter that prints each diagnostic to w
func WriterReporter(w io.Writer) Reporter {
	return &evaluator.WriterReporter{W: w}
}

// BufferedReporter keeps every diagnostic it receives
type BufferedReporter struct {
	mu    sync.Mutex
	diags []*errors.BendayError
}

func (r *BufferedReporter) Report(diag *errors.BendayError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, diag)
}

// Diagnostics returns a copy of the received diagnostics
func (r *BufferedReporter) Diagnostics() []*errors.BendayError {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*errors.BendayError, len(r.diags))
	copy(out, r.diags)
	return out
}

// Reset forgets the received diagnostics
func (r *BufferedReporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = nil
}

func joinValues(values ...any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}

// runCapture sits between the interpreter and the host sinks for the length
// of one run, keeping a copy for the recorder.
type runCapture struct {
	logger   Logger
	reporter Reporter
	output   []string
	diags    []*errors.BendayError
}

func (c *runCapture) Log(values ...any) {
	c.logger.Log(values...)
}

func (c *runCapture) LogLine(values ...any) {
	c.output = append(c.output, joinValues(values...))
	c.logger.LogLine(values...)
}

func (c *runCapture) Report(diag *errors.BendayError) {
	c.diags = append(c.diags, diag)
	c.reporter.Report(diag)
}
