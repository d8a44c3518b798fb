// Package benday is the host entry point for running block programs.
//
// A Session owns one variable table for as long as the host keeps it, so a
// program run twice sees the variables left by the first run. Each Run turns
// the block tree into an execution tree and interprets it.
package benday

import (
	"context"
	"sync"
	"time"

	"github.com/sambeau/benday/pkg/benday/blocks"
	"github.com/sambeau/benday/pkg/benday/errors"
	"github.com/sambeau/benday/pkg/benday/evaluator"
)

// Run statuses stored by recorders.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RunRecord describes one finished run
type RunRecord struct {
	Started     time.Time
	Duration    time.Duration
	Status      string
	Result      string
	Program     string
	Output      []string
	Diagnostics []*errors.BendayError
}

// Recorder stores run records, e.g. the SQL journal
type Recorder interface {
	Record(ctx context.Context, rec RunRecord) error
}

// Option configures a Session
type Option func(*Session)

// WithLogger sends print output to l
func WithLogger(l Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithReporter sends diagnostics to r
func WithReporter(r Reporter) Option {
	return func(s *Session) { s.reporter = r }
}

// WithRecorder records every run to r
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// Session runs block programs against a persistent environment
type Session struct {
	mu       sync.Mutex
	env      *evaluator.Environment
	logger   Logger
	reporter Reporter
	recorder Recorder
	now      func() time.Time
}

// NewSession creates a session with an empty variable table
func NewSession(opts ...Option) *Session {
	s := &Session{
		env:      evaluator.NewEnvironment(),
		logger:   StdoutLogger(),
		reporter: evaluator.DefaultReporter,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes root and returns its result. A runtime error aborts the run,
// is reported once and is returned; variables written before it are kept.
// Loop notices are reported but do not fail the run.
func (s *Session) Run(ctx context.Context, root *blocks.Block) (evaluator.Object, error) {
	return s.RunWith(ctx, root, nil, nil)
}

// RunWith is Run with per-call output and diagnostic sinks. Nil sinks fall
// back to the session's own.
func (s *Session) RunWith(ctx context.Context, root *blocks.Block, logger Logger, reporter Reporter) (evaluator.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = s.logger
	}
	if reporter == nil {
		reporter = s.reporter
	}

	tree := blocks.ToAST(root)

	s.mu.Lock()
	capture := &runCapture{logger: logger, reporter: reporter}
	s.env.Logger = capture
	s.env.Reporter = capture
	started := s.now()
	result := evaluator.Run(tree, s.env)
	duration := s.now().Sub(started)
	s.mu.Unlock()

	rec := RunRecord{
		Started:     started,
		Duration:    duration,
		Status:      StatusOK,
		Result:      result.Inspect(),
		Program:     tree.String(),
		Output:      capture.output,
		Diagnostics: capture.diags,
	}

	var runErr error
	if errObj, ok := result.(*evaluator.Error); ok {
		rec.Status = StatusError
		rec.Result = ""
		runErr = errObj.Err
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, rec); err != nil {
			reporter.Report(errors.New("PROG-0004", map[string]any{"Reason": err.Error()}))
		}
	}

	if runErr != nil {
		return nil, runErr
	}
	return result, nil
}

// Reset clears every variable
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.env.Reset()
}

// Variables returns the current variables by name
func (s *Session) Variables() map[string]evaluator.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	vars := make(map[string]evaluator.Object, s.env.Len())
	for _, name := range s.env.Names() {
		vars[name], _ = s.env.Get(name)
	}
	return vars
}

// Names returns the defined variable names in sorted order
func (s *Session) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.Names()
}
