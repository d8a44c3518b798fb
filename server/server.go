package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/sambeau/benday/config"
	"github.com/sambeau/benday/pkg/benday/benday"
	"github.com/sambeau/benday/pkg/benday/journal"
)

// Server runs block programs over HTTP against one shared session.
type Server struct {
	config     *config.Config
	configPath string
	stdout     io.Writer
	stderr     io.Writer
	logOut     io.Closer // non-nil when logging.output is a file
	mux        *http.ServeMux
	server     *http.Server
	session    *benday.Session
	journal    *journal.Journal
	watcher    *Watcher
}

// New creates a server with the given configuration. When the journal is
// enabled its database is opened here, so a bad DSN fails early.
func New(cfg *config.Config, configPath string, stdout, stderr io.Writer) (*Server, error) {
	s := &Server{
		config:     cfg,
		configPath: configPath,
		stdout:     stdout,
		stderr:     stderr,
		mux:        http.NewServeMux(),
	}

	if err := s.openLogOutput(); err != nil {
		return nil, err
	}

	opts := []benday.Option{
		benday.WithLogger(benday.NullLogger()),
		benday.WithReporter(benday.NullReporter()),
	}
	if cfg.Journal.Enabled {
		j, err := journal.Open(context.Background(), journal.Config{
			Driver:  cfg.Journal.Driver,
			DSN:     cfg.Journal.DSN,
			MaxRuns: cfg.Journal.MaxRuns,
		})
		if err != nil {
			s.closeLogOutput()
			return nil, fmt.Errorf("opening journal: %w", err)
		}
		s.journal = j
		opts = append(opts, benday.WithRecorder(j))
	}
	s.session = benday.NewSession(opts...)

	s.setupRoutes()
	return s, nil
}

// openLogOutput points request and server logs at logging.output.
func (s *Server) openLogOutput() error {
	switch out := s.config.Logging.Output; out {
	case "", "stderr":
	case "stdout":
		s.stderr = s.stdout
	default:
		f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log output: %w", err)
		}
		s.stdout, s.stderr = f, f
		s.logOut = f
	}
	return nil
}

func (s *Server) closeLogOutput() {
	if s.logOut != nil {
		s.logOut.Close()
		s.logOut = nil
	}
}

// setupRoutes registers the run API.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("POST /run", s.handleRun)
	s.mux.HandleFunc("POST /reset", s.handleReset)
	s.mux.HandleFunc("GET /vars", s.handleVars)
	s.mux.HandleFunc("GET /journal", s.handleJournal)
	s.mux.HandleFunc("GET /journal/{id}", s.handleJournalRun)
	s.mux.HandleFunc("DELETE /journal", s.handleJournalClear)
	s.mux.HandleFunc("GET /help", s.handleHelpIndex)
	s.mux.HandleFunc("GET /help/{topic}", s.handleHelp)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})
}

// Handler returns the full handler chain: compression, then request logging.
func (s *Server) Handler() http.Handler {
	handler := newCompressionHandler(s.mux, s.config.Compression)

	if s.config.Logging.Level != "error" && !s.config.Logging.Quiet {
		handler = newRequestLogger(handler, s.stdout, s.config.Logging.Format, s.config.Logging.Level)
	}
	return handler
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()
	addr := s.listenAddr()

	if s.journal != nil {
		s.logInfo("journal: recording runs with %s (keeping %d)", s.config.Journal.Driver, s.journal.MaxRuns())
	}

	if s.config.Server.Dev && s.config.Program != "" {
		watcher, err := NewWatcher(s, s.config.Program, s.config.Watch.Debounce, s.stdout, s.stderr)
		if err != nil {
			s.logError("failed to create watcher: %v", err)
		} else {
			s.watcher = watcher
			if err := s.watcher.Start(ctx); err != nil {
				s.logError("failed to start watcher: %v", err)
			}
			defer s.watcher.Close()
			s.watcher.RunProgram(ctx)
		}
	}

	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		if s.config.Server.Dev {
			fmt.Fprintf(s.stdout, "Starting Benday in development mode on http://%s\n", addr)
		} else {
			fmt.Fprintf(s.stdout, "Starting Benday on http://%s\n", addr)
		}
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintf(s.stdout, "\nShutting down gracefully...\n")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

// Close releases the journal and the log file.
func (s *Server) Close() error {
	var err error
	if s.journal != nil {
		err = s.journal.Close()
		s.journal = nil
	}
	s.closeLogOutput()
	return err
}

// listenAddr returns the address to listen on based on configuration.
func (s *Server) listenAddr() string {
	host := s.config.Server.Host
	port := s.config.Server.Port

	if s.config.Server.Dev && host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

func (s *Server) logInfo(format string, args ...any) {
	switch s.config.Logging.Level {
	case "warn", "error":
		return
	}
	fmt.Fprintf(s.stdout, "[INFO] "+format+"\n", args...)
}

func (s *Server) logError(format string, args ...any) {
	fmt.Fprintf(s.stderr, "[ERROR] "+format+"\n", args...)
}
