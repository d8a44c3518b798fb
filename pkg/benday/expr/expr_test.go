package expr

import (
	stderrors "errors"
	"testing"

	"github.com/sambeau/benday/pkg/benday/errors"
)

func TestIsParsable(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"5", true},
		{"-3.5", true},
		{"2 + 3 * 4", true},
		{"  1   <  2 ", true},
		{"1e3 / 10", true},
		{"", false},
		{"   ", false},
		{"+", false},
		{"2 +", false},
		{"+ 2", false},
		{"2 3", false},
		{"2 + + 3", false},
		{"hello", false},
		{"x + 1", false},
		{"2+3", false},
		{"True", false},
		{"inf", false},
		{"NaN + 1", false},
		{"2 % 3", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsParsable(tt.input); got != tt.want {
				t.Errorf("IsParsable(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		input string
		want  string
		kind  Kind
	}{
		{"2 + 3 * 4", "20", Integer},
		{"10 / 2 - 3", "2", Integer},
		{"1 < 2", "True", Boolean},
		{"3 > 4", "False", Boolean},
		{"5", "5", Integer},
		{"5.0", "5", Integer},
		{"10 / 4", "2.5", Float},
		{"0.1 * 3", "0.30000000000000004", Float},
		{"1 < 2 + 1", "2", Integer},
		{"3 > 2 > 0", "True", Boolean},
		{"-4 - -4", "0", Integer},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Eval(tt.input)
			if err != nil {
				t.Fatalf("Eval(%q) error: %v", tt.input, err)
			}
			if got.Kind != tt.kind {
				t.Errorf("Eval(%q) kind = %v, want %v", tt.input, got.Kind, tt.kind)
			}
			if got.String() != tt.want {
				t.Errorf("Eval(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestEval_DivisionByZero(t *testing.T) {
	for _, input := range []string{"1 / 0", "4 - 4 / 0", "1 / 0.0"} {
		t.Run(input, func(t *testing.T) {
			_, err := Eval(input)
			if !stderrors.Is(err, errors.ErrDivisionByZero) {
				t.Errorf("Eval(%q) error = %v, want division by zero", input, err)
			}
		})
	}
}

func TestEval_NotParsable(t *testing.T) {
	_, err := Eval("hello world")
	if err == nil {
		t.Fatal("expected error for unparsable text")
	}
	if stderrors.Is(err, errors.ErrDivisionByZero) {
		t.Error("unparsable text is not a division by zero")
	}
}

func TestResultNumber(t *testing.T) {
	if n := (Result{Kind: Boolean, Bool: true}).Number(); n != 1 {
		t.Errorf("true.Number() = %v, want 1", n)
	}
	if n := (Result{Kind: Boolean}).Number(); n != 0 {
		t.Errorf("false.Number() = %v, want 0", n)
	}
	if n := (Result{Kind: Float, Float: 1.5}).Number(); n != 1.5 {
		t.Errorf("Number() = %v, want 1.5", n)
	}
}
