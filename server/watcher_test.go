package server

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe to write from the debounce timer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestWatcher(t *testing.T, source string) (*Watcher, string, *syncBuffer, *syncBuffer) {
	t.Helper()
	cfg := testConfig(t)
	path := filepath.Join(cfg.BaseDir, "program.yaml")
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, cfg)

	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	w, err := NewWatcher(s, path, 20*time.Millisecond, stdout, stderr)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w, path, stdout, stderr
}

func TestWatcher_RunProgram(t *testing.T) {
	w, _, stdout, stderr := newTestWatcher(t, "- print: hello\n- return: \"1 + 1\"\n")

	w.RunProgram(context.Background())

	if got := stdout.String(); got != "[RUN] hello\n[RUN] => 2\n" {
		t.Errorf("stdout = %q", got)
	}
	if stderr.String() != "" {
		t.Errorf("stderr = %q", stderr.String())
	}
	if w.Runs() != 1 {
		t.Errorf("Runs() = %d", w.Runs())
	}
}

func TestWatcher_RunErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		prefix string
	}{
		{"bad program", "- nope: 1\n", "[WATCH ERROR] "},
		{"runtime error", "- print: \"{ghost}\"\n", "[RUN ERROR] "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _, stdout, stderr := newTestWatcher(t, tt.source)
			w.RunProgram(context.Background())
			if !strings.HasPrefix(stderr.String(), tt.prefix) {
				t.Errorf("stderr = %q, want prefix %q", stderr.String(), tt.prefix)
			}
			if strings.Contains(stdout.String(), "=>") {
				t.Errorf("a failed run printed a result: %q", stdout.String())
			}
		})
	}
}

func TestWatcher_RerunsOnChange(t *testing.T) {
	w, path, stdout, _ := newTestWatcher(t, "- print: before\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}

	// several quick writes settle into one run
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("- print: after\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(stdout.String(), "[RUN] after") {
		if time.Now().After(deadline) {
			t.Fatalf("program was not re-run; output:\n%s", stdout.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !strings.Contains(stdout.String(), "[WATCH] program changed") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	w, path, stdout, _ := newTestWatcher(t, "- print: x\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(filepath.Dir(path), "notes.txt"), []byte("hi"), 0644)
	time.Sleep(200 * time.Millisecond)

	if w.Runs() != 0 || strings.Contains(stdout.String(), "[RUN]") {
		t.Errorf("unrelated file triggered a run: %q", stdout.String())
	}
}
