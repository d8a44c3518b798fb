package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestBendayError_String(t *testing.T) {
	tests := []struct {
		name     string
		err      *BendayError
		expected string
	}{
		{
			name:     "message only",
			err:      &BendayError{Message: "something went wrong"},
			expected: "something went wrong",
		},
		{
			name:     "with path",
			err:      &BendayError{Message: "slot 3 out of range (1 slots)", Path: "(0,1)/3"},
			expected: "at (0,1)/3: slot 3 out of range (1 slots)",
		},
		{
			name:     "with file and hints",
			err:      &BendayError{Message: "unknown variable 'cout'", File: "loop.yaml", Hints: []string{"Did you mean `count`?"}},
			expected: "loop.yaml: unknown variable 'cout'\n  Did you mean `count`?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestBendayError_PrettyString(t *testing.T) {
	tests := []struct {
		name     string
		err      *BendayError
		contains []string
	}{
		{
			name:     "notice",
			err:      New("LOOP-0001", map[string]any{"Limit": 99}),
			contains: []string{"Notice", "loop stopped after 99 iterations"},
		},
		{
			name:     "editor error",
			err:      New("PATH-0003", map[string]any{"What": "slot 0"}).WithPath("0"),
			contains: []string{"Editor error: 0", "slot 0 holds no block"},
		},
		{
			name:     "runtime error with hint",
			err:      NewUnknownVariable("cout", []string{"count"}),
			contains: []string{"Runtime error", "unknown variable 'cout'", "Hint: Did you mean `count`?"},
		},
		{
			name:     "program error with file",
			err:      New("PROG-0002", map[string]any{"Type": "loop"}).WithFile("a.yaml"),
			contains: []string{"Program error", "in: a.yaml", "unknown block type 'loop'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.PrettyString()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("PrettyString() = %q, should contain %q", got, want)
				}
			}
		})
	}
}

func TestNew_Catalog(t *testing.T) {
	err := New("ARITH-0001", map[string]any{"Expr": "1 / 0"})
	if err.Class != ClassArithmetic {
		t.Errorf("Class = %q, want %q", err.Class, ClassArithmetic)
	}
	if err.Message != "division by zero in '1 / 0'" {
		t.Errorf("Message = %q", err.Message)
	}

	unknown := New("NOPE-0001", map[string]any{"message": "custom"})
	if unknown.Message != "custom" {
		t.Errorf("unknown code message = %q, want %q", unknown.Message, "custom")
	}
}

func TestNew_EveryCatalogEntryRenders(t *testing.T) {
	for code, def := range ErrorCatalog {
		t.Run(code, func(t *testing.T) {
			err := New(code, map[string]any{})
			if err.Class != def.Class {
				t.Errorf("Class = %q, want %q", err.Class, def.Class)
			}
			if err.Message == "" {
				t.Error("empty message")
			}
		})
	}
}

func TestErrorsIs(t *testing.T) {
	err := NewUnknownVariable("x", nil)
	wrapped := fmt.Errorf("run failed: %w", err)

	if !stderrors.Is(wrapped, ErrUnknownVariable) {
		t.Error("expected wrapped error to match ErrUnknownVariable")
	}
	if stderrors.Is(wrapped, ErrDivisionByZero) {
		t.Error("did not expect match with ErrDivisionByZero")
	}
}

func TestToJSON(t *testing.T) {
	err := New("PATH-0001", map[string]any{"Index": 2, "Count": 1}).WithPath("2")
	data, jerr := err.ToJSON()
	if jerr != nil {
		t.Fatalf("ToJSON() error: %v", jerr)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["code"] != "PATH-0001" {
		t.Errorf("code = %v", decoded["code"])
	}
	if decoded["path"] != "2" {
		t.Errorf("path = %v", decoded["path"])
	}
}

func TestFindClosestMatch(t *testing.T) {
	tests := []struct {
		input      string
		candidates []string
		want       string
	}{
		{"cout", []string{"count", "total"}, "count"},
		{"totl", []string{"count", "total"}, "total"},
		{"x", []string{"x"}, ""},
		{"zzzzzz", []string{"count"}, ""},
		{"", []string{"count"}, ""},
		{"a", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := FindClosestMatch(tt.input, tt.candidates); got != tt.want {
				t.Errorf("FindClosestMatch(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsPathError(t *testing.T) {
	if !IsPathError(New("PATH-0002", nil)) {
		t.Error("PATH-0002 should be a path error")
	}
	if IsPathError(New("UNDEF-0001", nil)) {
		t.Error("UNDEF-0001 should not be a path error")
	}
	if IsPathError(stderrors.New("plain")) {
		t.Error("plain error should not be a path error")
	}
}

func TestErrorsIs_PathClass(t *testing.T) {
	for _, code := range []string{"PATH-0001", "PATH-0002", "PATH-0003", "PATH-0004"} {
		if !stderrors.Is(New(code, nil), ErrInvalidPath) {
			t.Errorf("%s should match ErrInvalidPath", code)
		}
	}
	if stderrors.Is(New("BLOCK-0001", nil), ErrInvalidPath) {
		t.Error("BLOCK-0001 should not match ErrInvalidPath")
	}
}
