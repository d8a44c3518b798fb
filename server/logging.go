package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// requestLogger is middleware that logs HTTP requests. At level warn only
// failed requests (status 400 and up) are logged.
type requestLogger struct {
	handler   http.Handler
	mu        sync.Mutex
	output    io.Writer
	format    string // "json" or "text"
	minStatus int
}

// RequestLogEntry represents a single request log entry
type RequestLogEntry struct {
	Timestamp  string `json:"timestamp"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Query      string `json:"query,omitempty"`
	Status     int    `json:"status"`
	Bytes      int    `json:"bytes"`
	Duration   string `json:"duration"`
	DurationMs int64  `json:"duration_ms"`
	ClientIP   string `json:"client_ip"`
	UserAgent  string `json:"user_agent,omitempty"`
}

// responseCapture wraps http.ResponseWriter to capture the status code and
// the body size
type responseCapture struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rc *responseCapture) WriteHeader(code int) {
	if rc.status == 0 {
		rc.status = code
	}
	rc.ResponseWriter.WriteHeader(code)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	if rc.status == 0 {
		rc.status = http.StatusOK
	}
	n, err := rc.ResponseWriter.Write(b)
	rc.bytes += n
	return n, err
}

// newRequestLogger creates request logging middleware
func newRequestLogger(handler http.Handler, output io.Writer, format, level string) *requestLogger {
	if format == "" {
		format = "text"
	}
	minStatus := 0
	if level == "warn" {
		minStatus = http.StatusBadRequest
	}
	return &requestLogger{
		handler:   handler,
		output:    output,
		format:    format,
		minStatus: minStatus,
	}
}

func (rl *requestLogger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rc := &responseCapture{ResponseWriter: w}

	rl.handler.ServeHTTP(rc, r)

	duration := time.Since(start)
	if rc.status == 0 {
		rc.status = http.StatusOK
	}
	if rc.status < rl.minStatus {
		return
	}

	// X-Forwarded-For wins when a proxy sets it
	clientIP := r.RemoteAddr
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		clientIP = xff
	}

	entry := RequestLogEntry{
		Timestamp:  start.Format(time.RFC3339),
		Method:     r.Method,
		Path:       r.URL.Path,
		Query:      r.URL.RawQuery,
		Status:     rc.status,
		Bytes:      rc.bytes,
		Duration:   duration.String(),
		DurationMs: duration.Milliseconds(),
		ClientIP:   clientIP,
		UserAgent:  r.UserAgent(),
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.format == "json" {
		rl.writeJSON(entry)
	} else {
		rl.writeText(entry)
	}
}

func (rl *requestLogger) writeJSON(entry RequestLogEntry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	fmt.Fprintf(rl.output, "%s\n", data)
}

func (rl *requestLogger) writeText(entry RequestLogEntry) {
	path := entry.Path
	if entry.Query != "" {
		path += "?" + entry.Query
	}
	fmt.Fprintf(rl.output, "[HTTP] %s %s %s %d %dB %s\n",
		entry.Timestamp,
		entry.Method,
		path,
		entry.Status,
		entry.Bytes,
		entry.Duration,
	)
}
