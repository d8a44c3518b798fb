package evaluator

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/sambeau/benday/pkg/benday/ast"
	"github.com/sambeau/benday/pkg/benday/errors"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Log(values ...interface{}) {}
func (l *recordingLogger) LogLine(values ...interface{}) {
	l.lines = append(l.lines, fmt.Sprint(values...))
}

type recordingReporter struct {
	diags []*errors.BendayError
}

func (r *recordingReporter) Report(diag *errors.BendayError) {
	r.diags = append(r.diags, diag)
}

func newTestEnv() (*Environment, *recordingLogger, *recordingReporter) {
	env := NewEnvironment()
	logger := &recordingLogger{}
	reporter := &recordingReporter{}
	env.Logger = logger
	env.Reporter = reporter
	return env, logger, reporter
}

func val(text string) *ast.Value { return ast.NewValue(text) }

func seq(nodes ...ast.Node) *ast.Sequence { return &ast.Sequence{Elements: nodes} }

func assign(name, text string) *ast.Assign { return &ast.Assign{Name: name, Value: val(text)} }

func print_(text string) *ast.Print { return &ast.Print{Value: val(text)} }

func TestEvalValue(t *testing.T) {
	tests := []struct {
		text string
		want string
		typ  ObjectType
	}{
		{"2 + 3 * 4", "20", INTEGER_OBJ},
		{"10 / 2 - 3", "2", INTEGER_OBJ},
		{"1 < 2", "True", BOOLEAN_OBJ},
		{"7 / 2", "3.5", FLOAT_OBJ},
		{"hello world", "hello world", STRING_OBJ},
		{"2+3", "2+3", STRING_OBJ},
		{"{x} + 1", "6", INTEGER_OBJ},
		{"x is {x}", "x is 5", STRING_OBJ},
		{"{name}!", "Ada!", STRING_OBJ},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			env, _, _ := newTestEnv()
			env.Set("x", &Integer{Value: 5})
			env.Set("name", &String{Value: "Ada"})

			got := Eval(val(tt.text), env)
			if got.Type() != tt.typ || got.Inspect() != tt.want {
				t.Errorf("Eval(%q) = %s %s, want %s %s", tt.text, got.Type(), got.Inspect(), tt.typ, tt.want)
			}
		})
	}
}

func TestEvalValue_Absent(t *testing.T) {
	env, _, _ := newTestEnv()
	if got := Eval(ast.Absent(), env); got != NONE {
		t.Errorf("absent value = %v, want NONE", got)
	}
	if got := Eval(val(""), env); got.Type() != STRING_OBJ {
		t.Errorf("empty text = %s, want an empty string", got.Type())
	}
}

func TestInterpolate(t *testing.T) {
	env, _, _ := newTestEnv()
	env.Set("a", &Integer{Value: 1})
	env.Set("b", &String{Value: "a"})
	env.Set("c", &String{Value: "b"})
	env.Set("ab", &String{Value: "both"})
	env.Set("self", &String{Value: "{self}"})

	tests := []struct {
		text string
		want string
	}{
		{"no braces", "no braces"},
		{"{a}{a}", "11"},
		{"{{b}}", "1"},
		{"{a{c}}", "both"},
		{"} {a} {", "} 1 {"},
		{"{ unclosed", "{ unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := Interpolate(tt.text, env)
			if err != nil {
				t.Fatalf("Interpolate(%q) error: %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("Interpolate(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}

	if _, err := Interpolate("{self}", env); err == nil || err.Code != "INTERP-0001" {
		t.Errorf("self reference error = %v, want INTERP-0001", err)
	}
}

func TestUnknownVariable(t *testing.T) {
	env, logger, reporter := newTestEnv()
	program := seq(
		assign("count", "1"),
		print_("{cout}"),
		print_("never"),
	)

	result := Run(program, env)
	errObj, ok := result.(*Error)
	if !ok {
		t.Fatalf("Run() = %s, want error", result.Inspect())
	}
	if !stderrors.Is(errObj.Err, errors.ErrUnknownVariable) {
		t.Errorf("error = %v, want unknown variable", errObj.Err)
	}
	if len(errObj.Err.Hints) == 0 {
		t.Error("expected a did-you-mean hint")
	}
	if len(logger.lines) != 0 {
		t.Errorf("output after the error: %v", logger.lines)
	}
	if len(reporter.diags) != 1 {
		t.Errorf("reported %d diagnostics, want 1", len(reporter.diags))
	}
	if v, ok := env.Get("count"); !ok || v.Inspect() != "1" {
		t.Error("assignments before the error must be kept")
	}
}

func TestDivisionByZero(t *testing.T) {
	env, _, reporter := newTestEnv()
	result := Run(seq(assign("x", "2"), assign("y", "{x} / 0"), assign("z", "3")), env)

	errObj, ok := result.(*Error)
	if !ok || !stderrors.Is(errObj.Err, errors.ErrDivisionByZero) {
		t.Fatalf("Run() = %s, want division by zero", result.Inspect())
	}
	if len(reporter.diags) != 1 {
		t.Errorf("reported %d diagnostics, want 1", len(reporter.diags))
	}
	if _, ok := env.Get("x"); !ok {
		t.Error("x should be kept")
	}
	if _, ok := env.Get("z"); ok {
		t.Error("z should never be assigned")
	}
}

func TestSequence_EarlyReturn(t *testing.T) {
	env, logger, _ := newTestEnv()
	program := seq(
		print_("before"),
		&ast.IfElse{
			Condition: val("1 < 2"),
			Body:      seq(&ast.Return{Value: val("42")}),
		},
		print_("after"),
	)

	result := Run(program, env)
	if result.Inspect() != "42" {
		t.Errorf("Run() = %s, want 42", result.Inspect())
	}
	if len(logger.lines) != 1 || logger.lines[0] != "before" {
		t.Errorf("output = %v, want [before]", logger.lines)
	}
}

func TestSequence_NoReturnYieldsNone(t *testing.T) {
	env, _, _ := newTestEnv()
	if got := Run(seq(assign("a", "1")), env); got != NONE {
		t.Errorf("Run() = %s, want None", got.Inspect())
	}
}

func TestIfElse_FirstMatch(t *testing.T) {
	env, logger, _ := newTestEnv()
	program := seq(&ast.IfElse{
		Condition: val("False"),
		Body:      seq(print_("if")),
		Elifs: []ast.Branch{
			{Condition: val("1"), Body: seq(print_("first elif"))},
			{Condition: val("True"), Body: seq(print_("second elif"))},
		},
		Else: seq(print_("else")),
	})

	Run(program, env)
	if len(logger.lines) != 1 || logger.lines[0] != "first elif" {
		t.Errorf("output = %v, want [first elif]", logger.lines)
	}
}

func TestIfElse_ElseAndNoBranch(t *testing.T) {
	env, logger, _ := newTestEnv()
	Run(seq(
		&ast.IfElse{Condition: val("0"), Body: seq(print_("if")), Else: seq(print_("else"))},
		&ast.IfElse{Condition: ast.Absent(), Body: seq(print_("never"))},
	), env)

	if len(logger.lines) != 1 || logger.lines[0] != "else" {
		t.Errorf("output = %v, want [else]", logger.lines)
	}
}

func TestWhile_Counts(t *testing.T) {
	env, logger, reporter := newTestEnv()
	program := seq(
		assign("i", "0"),
		&ast.While{
			Condition: val("{i} < 3"),
			Body:      seq(print_("{i}"), assign("i", "{i} + 1")),
		},
	)

	Run(program, env)
	if got := fmt.Sprint(logger.lines); got != "[0 1 2]" {
		t.Errorf("output = %s, want [0 1 2]", got)
	}
	if len(reporter.diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", reporter.diags)
	}
}

func TestWhile_DoWhileRunsOnce(t *testing.T) {
	env, logger, _ := newTestEnv()
	Run(seq(&ast.While{Condition: val("False"), Body: seq(print_("once")), DoWhile: true}), env)

	if len(logger.lines) != 1 {
		t.Errorf("body ran %d times, want 1", len(logger.lines))
	}
}

func TestWhile_BoundedIteration(t *testing.T) {
	tests := []struct {
		name    string
		doWhile bool
		want    int
	}{
		{"while", false, MaxIterations},
		{"do while", true, MaxIterations + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, logger, reporter := newTestEnv()
			result := Run(seq(
				&ast.While{Condition: val("1 < 2"), Body: seq(print_("tick")), DoWhile: tt.doWhile},
				print_("done"),
			), env)

			if isError(result) {
				t.Fatalf("bounded loop should not abort the run: %s", result.Inspect())
			}
			ticks := len(logger.lines) - 1
			if ticks != tt.want {
				t.Errorf("body ran %d times, want %d", ticks, tt.want)
			}
			if logger.lines[len(logger.lines)-1] != "done" {
				t.Error("run should continue after the loop")
			}
			if len(reporter.diags) != 1 || !stderrors.Is(reporter.diags[0], errors.ErrBoundedIteration) {
				t.Errorf("diagnostics = %v, want one bounded-iteration notice", reporter.diags)
			}
			if !reporter.diags[0].IsNotice() {
				t.Error("bounded iteration should be a notice")
			}
		})
	}
}

func TestWhile_ReturnStopsLoop(t *testing.T) {
	env, logger, reporter := newTestEnv()
	program := seq(
		assign("i", "0"),
		&ast.While{
			Condition: val("True"),
			Body: seq(
				assign("i", "{i} + 1"),
				&ast.IfElse{Condition: val("{i} > 4"), Body: seq(&ast.Return{Value: val("{i}")})},
				print_("{i}"),
			),
		},
		print_("unreachable"),
	)

	result := Run(program, env)
	if result.Inspect() != "5" {
		t.Errorf("Run() = %s, want 5", result.Inspect())
	}
	if len(logger.lines) != 4 {
		t.Errorf("output = %v", logger.lines)
	}
	if len(reporter.diags) != 0 {
		t.Error("a returning loop should not report a notice")
	}
}

func TestReturnInSlotIsAValue(t *testing.T) {
	env, logger, _ := newTestEnv()
	program := seq(
		&ast.Print{Value: &ast.Return{Value: val("3 * 3")}},
		print_("still running"),
	)

	if got := Run(program, env); got != NONE {
		t.Errorf("Run() = %s, want None", got.Inspect())
	}
	if fmt.Sprint(logger.lines) != "[9 still running]" {
		t.Errorf("output = %v", logger.lines)
	}
}

func TestVariablesPersistAcrossRuns(t *testing.T) {
	env, _, _ := newTestEnv()
	Run(seq(assign("x", "5")), env)

	result := Run(seq(&ast.Return{Value: val("{x} + 1")}), env)
	if result.Inspect() != "6" {
		t.Errorf("second run = %s, want 6", result.Inspect())
	}

	env.Reset()
	if env.Len() != 0 {
		t.Error("Reset should clear variables")
	}
}

func TestIndependentEnvironments(t *testing.T) {
	a, _, _ := newTestEnv()
	b, _, _ := newTestEnv()
	Run(seq(assign("x", "1")), a)
	if _, ok := b.Get("x"); ok {
		t.Error("environments must not share variables")
	}
}

func TestIsTruthy(t *testing.T) {
	tests := []struct {
		obj  Object
		want bool
	}{
		{TRUE, true},
		{FALSE, false},
		{&Integer{Value: 0}, false},
		{&Integer{Value: -1}, true},
		{&Float{Value: 0.5}, true},
		{&Float{Value: 0}, false},
		{&String{Value: ""}, false},
		{&String{Value: "false"}, false},
		{&String{Value: "FALSE"}, false},
		{&String{Value: "no"}, true},
		{NONE, false},
	}
	for _, tt := range tests {
		if got := IsTruthy(tt.obj); got != tt.want {
			t.Errorf("IsTruthy(%s %q) = %v, want %v", tt.obj.Type(), tt.obj.Inspect(), got, tt.want)
		}
	}
}

func TestAssignStoresTypedValues(t *testing.T) {
	env, _, _ := newTestEnv()
	Run(seq(assign("b", "3 > 2"), assign("f", "1 / 4"), assign("s", "text"), &ast.Assign{Name: "-", Value: ast.Absent()}), env)

	checks := map[string]ObjectType{"b": BOOLEAN_OBJ, "f": FLOAT_OBJ, "s": STRING_OBJ, "-": NONE_OBJ}
	for name, typ := range checks {
		v, ok := env.Get(name)
		if !ok || v.Type() != typ {
			t.Errorf("%s = %v, want %s", name, v, typ)
		}
	}
	if names := env.Names(); fmt.Sprint(names) != "[- b f s]" {
		t.Errorf("Names() = %v", names)
	}
}
