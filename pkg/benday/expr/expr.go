// Package expr evaluates the arithmetic and comparison text found in block
// slots.
//
// The language is deliberately tiny: numbers and the operators + - * / > <
// separated by whitespace, combined strictly left to right with no operator
// precedence. "2 + 3 * 4" is 20. Text that does not fit this shape is not an
// expression at all and callers treat it as a plain string, so IsParsable must
// be checked before Eval.
package expr

import (
	"math"
	"strconv"
	"strings"

	"github.com/sambeau/benday/pkg/benday/errors"
)

// Kind identifies the type of a Result.
type Kind int

const (
	Integer Kind = iota
	Float
	Boolean
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Boolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Result is the value of an evaluated expression.
type Result struct {
	Kind  Kind
	Int   int64
	Float float64
	Bool  bool
}

// Number returns the result as a float; booleans count as 1 and 0.
func (r Result) Number() float64 {
	switch r.Kind {
	case Integer:
		return float64(r.Int)
	case Boolean:
		if r.Bool {
			return 1
		}
		return 0
	default:
		return r.Float
	}
}

func (r Result) String() string {
	switch r.Kind {
	case Integer:
		return strconv.FormatInt(r.Int, 10)
	case Boolean:
		if r.Bool {
			return "True"
		}
		return "False"
	default:
		return strconv.FormatFloat(r.Float, 'g', -1, 64)
	}
}

// Tokenize splits text into whitespace separated tokens.
func Tokenize(s string) []string {
	return strings.Fields(s)
}

// IsOperator reports whether tok is one of the six operators.
func IsOperator(tok string) bool {
	switch tok {
	case "+", "-", "*", "/", ">", "<":
		return true
	}
	return false
}

func operand(tok string) (float64, bool) {
	if IsOperator(tok) {
		return 0, false
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// IsParsable reports whether s is an expression: one or more numbers joined
// by operators, starting and ending with a number. It never fails.
func IsParsable(s string) bool {
	toks := Tokenize(s)
	if len(toks)%2 == 0 {
		return false
	}
	for i, tok := range toks {
		if i%2 == 1 {
			if !IsOperator(tok) {
				return false
			}
			continue
		}
		if _, ok := operand(tok); !ok {
			return false
		}
	}
	return true
}

// Eval evaluates s left to right. The only runtime failure is division by
// zero; text that is not parsable returns an ARITH-0002 error.
func Eval(s string) (Result, error) {
	if !IsParsable(s) {
		return Result{}, errors.New("ARITH-0002", map[string]any{"Expr": s})
	}

	toks := Tokenize(s)
	first, _ := operand(toks[0])
	acc := normalize(first)

	for i := 1; i < len(toks); i += 2 {
		rhs, _ := operand(toks[i+1])
		lhs := acc.Number()

		switch toks[i] {
		case "+":
			acc = normalize(lhs + rhs)
		case "-":
			acc = normalize(lhs - rhs)
		case "*":
			acc = normalize(lhs * rhs)
		case "/":
			if rhs == 0 {
				return Result{}, errors.New("ARITH-0001", map[string]any{"Expr": s})
			}
			acc = normalize(lhs / rhs)
		case ">":
			acc = Result{Kind: Boolean, Bool: lhs > rhs}
		case "<":
			acc = Result{Kind: Boolean, Bool: lhs < rhs}
		default:
			panic("expr: unknown operator " + toks[i])
		}
	}

	return acc, nil
}

// normalize turns integral floats into integers.
func normalize(f float64) Result {
	if f == math.Trunc(f) && math.Abs(f) < math.MaxInt64 {
		return Result{Kind: Integer, Int: int64(f)}
	}
	return Result{Kind: Float, Float: f}
}
