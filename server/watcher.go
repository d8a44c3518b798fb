package server

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sambeau/benday/pkg/benday/benday"
	"github.com/sambeau/benday/pkg/benday/format"
	"github.com/sambeau/benday/pkg/benday/program"
)

// DefaultDebounce is used when watch.debounce is zero.
const DefaultDebounce = 200 * time.Millisecond

// Watcher re-runs the program file whenever it changes. Changes are
// debounced: the program runs once the file has been quiet for the debounce
// period, so an editor writing in several steps triggers one run.
type Watcher struct {
	watcher  *fsnotify.Watcher
	server   *Server
	program  string
	debounce time.Duration
	stdout   io.Writer
	stderr   io.Writer

	mu    sync.Mutex
	timer *time.Timer
	runs  uint64
}

// NewWatcher creates a watcher for the program file in dev mode.
func NewWatcher(s *Server, programPath string, debounce time.Duration, stdout, stderr io.Writer) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(programPath)
	if err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return &Watcher{
		watcher:  fsWatcher,
		server:   s,
		program:  abs,
		debounce: debounce,
		stdout:   stdout,
		stderr:   stderr,
	}, nil
}

// Start begins watching. The directory is watched rather than the file, so
// editors that save by renaming a temporary file are still seen.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.program)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logInfo("watching program: %s", w.program)

	go w.eventLoop(ctx)
	return nil
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.program {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.schedule(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logError("watcher error: %v", err)
		}
	}
}

// schedule (re)starts the debounce timer.
func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.logInfo("program changed: %s", w.program)
		w.RunProgram(ctx)
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// RunProgram loads and runs the program file in the server's session,
// writing its output as [RUN] lines.
func (w *Watcher) RunProgram(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	root, err := program.Load(w.program)
	if err != nil {
		w.logError("%v", err)
		return
	}

	logger := benday.NewBufferedLogger()
	reporter := &benday.BufferedReporter{}
	result, err := w.server.session.RunWith(ctx, root, logger, reporter)

	w.mu.Lock()
	w.runs++
	w.mu.Unlock()

	for _, line := range logger.Lines() {
		fmt.Fprintf(w.stdout, "[RUN] %s\n", line)
	}
	for _, diag := range reporter.Diagnostics() {
		if diag.IsNotice() {
			fmt.Fprintf(w.stdout, "[RUN] notice: %s\n", diag)
		} else {
			fmt.Fprintf(w.stderr, "[RUN ERROR] %s\n", diag)
		}
	}
	if err == nil {
		fmt.Fprintf(w.stdout, "[RUN] => %s\n", format.FormatValue(result))
	}
}

// Runs returns how many times the program has been run.
func (w *Watcher) Runs() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

// Close stops the watcher
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}

func (w *Watcher) logInfo(format string, args ...any) {
	fmt.Fprintf(w.stdout, "[WATCH] "+format+"\n", args...)
}

func (w *Watcher) logError(format string, args ...any) {
	fmt.Fprintf(w.stderr, "[WATCH ERROR] "+format+"\n", args...)
}
