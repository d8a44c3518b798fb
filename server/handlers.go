package server

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"

	"github.com/sambeau/benday/pkg/benday/benday"
	"github.com/sambeau/benday/pkg/benday/errors"
	"github.com/sambeau/benday/pkg/benday/format"
	"github.com/sambeau/benday/pkg/benday/help"
	"github.com/sambeau/benday/pkg/benday/program"
)

// maxProgramSize caps the body of POST /run.
const maxProgramSize = 1 << 20

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 500
)

// RunResponse is the body returned by POST /run.
type RunResponse struct {
	Status      string                `json:"status"` // ok or error
	Result      string                `json:"result,omitempty"`
	Output      []string              `json:"output"`
	Diagnostics []*errors.BendayError `json:"diagnostics,omitempty"`
	Error       *errors.BendayError   `json:"error,omitempty"`
}

// handleRun decodes a YAML program from the body and runs it in the shared
// session. ?reset clears the variables first. A program that fails at run
// time is still a 200: the failure is part of the result.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxProgramSize))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, err)
		return
	}
	root, err := program.Decode(data)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if r.URL.Query().Has("reset") {
		s.session.Reset()
	}

	logger := benday.NewBufferedLogger()
	reporter := &benday.BufferedReporter{}
	result, err := s.session.RunWith(r.Context(), root, logger, reporter)

	resp := RunResponse{
		Status:      benday.StatusOK,
		Output:      logger.Lines(),
		Diagnostics: reporter.Diagnostics(),
	}
	if err != nil {
		be, ok := err.(*errors.BendayError)
		if !ok {
			s.writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		resp.Status = benday.StatusError
		resp.Error = be
	} else {
		resp.Result = format.FormatValue(result)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.session.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVars(w http.ResponseWriter, r *http.Request) {
	vars := make(map[string]string)
	for name, val := range s.session.Variables() {
		vars[name] = format.FormatValue(val)
	}
	s.writeJSON(w, http.StatusOK, vars)
}

// handleJournal lists recent runs, newest first. ?limit=N picks how many.
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if !s.requireJournal(w) {
		return
	}

	limit := defaultJournalLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = min(n, maxJournalLimit)
	}

	runs, err := s.journal.Runs(r.Context(), limit)
	if err != nil {
		s.logError("failed to read journal: %v", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleJournalRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireJournal(w) {
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid run id %q", r.PathValue("id")))
		return
	}
	run, err := s.journal.Get(r.Context(), id)
	if stderrors.Is(err, sql.ErrNoRows) {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("no run %d", id))
		return
	}
	if err != nil {
		s.logError("failed to read run %d: %v", id, err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleJournalClear(w http.ResponseWriter, r *http.Request) {
	if !s.requireJournal(w) {
		return
	}
	if err := s.journal.Clear(r.Context()); err != nil {
		s.logError("failed to clear journal: %v", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requireJournal(w http.ResponseWriter) bool {
	if s.journal == nil {
		s.writeError(w, http.StatusNotFound, stderrors.New("the run journal is disabled (set journal.enabled in benday.yaml)"))
		return false
	}
	return true
}

func (s *Server) handleHelpIndex(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string][]string{"topics": help.Topics()})
}

// handleHelp renders one help topic as an HTML page, or as JSON or Markdown
// with ?format=json or ?format=md.
func (s *Server) handleHelp(w http.ResponseWriter, r *http.Request) {
	result, err := help.DescribeTopic(r.PathValue("topic"))
	if err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintln(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "json":
		data, err := help.FormatJSON(result)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write(data)
	case "md", "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		io.WriteString(w, help.Markdown(result))
	default:
		body, err := help.HTML(result)
		if err != nil {
			s.logError("failed to render help for %s: %v", result.Name, err)
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, helpPage, html.EscapeString(result.Name), body)
	}
}

const helpPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s - Benday help</title>
</head>
<body>
%s</body>
</html>
`

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logError("failed to marshal JSON: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends {"error": ...}: the full diagnostic for Benday errors,
// just the message otherwise.
func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	var body any = map[string]string{"message": err.Error()}
	if be, ok := err.(*errors.BendayError); ok {
		body = be
	}
	s.writeJSON(w, status, map[string]any{"error": body})
}
