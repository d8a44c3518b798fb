package repl

import (
	"bytes"
	stderrors "errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/sambeau/benday/pkg/benday/blocks"
	"github.com/sambeau/benday/pkg/benday/errors"
)

// session runs lines through a fresh editor and fails on the first error.
func session(t *testing.T, lines ...string) (*Editor, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	e := NewEditor(&out)
	for _, line := range lines {
		if _, err := e.Exec(line); err != nil {
			t.Fatalf("Exec(%q) error: %v", line, err)
		}
	}
	return e, &out
}

func programText(e *Editor) string {
	return blocks.ToAST(e.Root()).String()
}

func TestEditor_BuildAndRun(t *testing.T) {
	e, out := session(t,
		"add (0,0) assign x = 5",
		"add (0,1) pr {x} + 1",
	)
	if !strings.Contains(out.String(), "added assign x at (0,0)") || !strings.Contains(out.String(), "added print at (0,1)") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if _, err := e.Exec("run"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "6\n=> None\n" {
		t.Errorf("run output = %q", out.String())
	}

	out.Reset()
	e.Exec("vars")
	if !strings.Contains(out.String(), "x = 5") {
		t.Errorf("vars = %q", out.String())
	}
}

func TestEditor_IfElifElse(t *testing.T) {
	e, out := session(t,
		"add (0,0) if {x} > 3",
		"elif (0,0)",
		"else (0,0)",
		"set (0,0)/1 {x} > 1",
		"add (0,0)/(0,0) print big",
		"add (0,0)/(1,0) print medium",
		"add (0,0)/(2,0) print small",
		"add (0,0) assign x = 2",
	)
	if !strings.Contains(out.String(), "else on") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	e.Exec("run")
	if out.String() != "medium\n=> None\n" {
		t.Errorf("run output = %q", out.String())
	}

	if _, err := e.Exec("unelif (0,1) 1"); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	e.Exec("run")
	if out.String() != "small\n=> None\n" {
		t.Errorf("run after unelif = %q", out.String())
	}
}

func TestEditor_CopyMove(t *testing.T) {
	e, out := session(t,
		"add (0,0) print a",
		"add (0,1) print b",
		"cp (0,0)",
		"mv (0,2) (0,0)",
	)
	if !strings.Contains(out.String(), "copied to (0,1)") || !strings.Contains(out.String(), "moved to (0,0)") {
		t.Errorf("output = %q", out.String())
	}
	if got := programText(e); got != `{print "b"; print "a"; print "a"}` {
		t.Errorf("program = %s", got)
	}

	if _, err := e.Exec("rm (0,1)"); err != nil {
		t.Fatal(err)
	}
	if got := programText(e); got != `{print "b"; print "a"}` {
		t.Errorf("program after rm = %s", got)
	}
}

func TestEditor_DoWhile(t *testing.T) {
	e, out := session(t,
		"add (0,0) while False",
		"dowhile (0,0)",
		"add (0,0)/(0,0) print once",
	)
	if !strings.Contains(out.String(), "do-while on") {
		t.Errorf("output = %q", out.String())
	}
	out.Reset()
	e.Exec("run")
	if out.String() != "once\n=> None\n" {
		t.Errorf("run output = %q", out.String())
	}
}

func TestEditor_NameAndNestedSlot(t *testing.T) {
	e, _ := session(t,
		"add (0,0) assign",
		"name (0,0) total",
		"add (0,0)/0 return 1 + 1",
		"add (0,1) print {total}",
	)
	if got := programText(e); got != `{total = return "1 + 1"; print "{total}"}` {
		t.Errorf("program = %s", got)
	}
}

func TestEditor_RunErrorReportedOnce(t *testing.T) {
	e, out := session(t, "add (0,0) print {nope}")
	out.Reset()

	if _, err := e.Exec("run"); err != nil {
		t.Fatalf("a reported run error must not be returned again: %v", err)
	}
	if n := strings.Count(out.String(), "unknown variable 'nope'"); n != 1 {
		t.Errorf("error shown %d times:\n%s", n, out.String())
	}
}

func TestEditor_Errors(t *testing.T) {
	tests := []struct {
		line string
		code string // empty for plain usage errors
	}{
		{"frobnicate", ""},
		{"add", ""},
		{"add (0,0) zz", ""},
		{"add (0 print", "PATH-0004"},
		{"rm (0,5)", "PATH-0002"},
		{"add / print", "PATH-0005"},
		{"else (0,0)", "PATH-0002"},
		{"unelif (0,0)", ""},
		{"save", ""},
		{"help nothing-like-this", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			var out bytes.Buffer
			e := NewEditor(&out)
			_, err := e.Exec(tt.line)
			if err == nil {
				t.Fatal("expected an error")
			}
			var be *errors.BendayError
			isBendayErr := stderrors.As(err, &be)
			if tt.code == "" {
				if isBendayErr {
					t.Errorf("err = %v, want a plain error", err)
				}
				return
			}
			if !isBendayErr || be.Code != tt.code {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestEditor_WrongKind(t *testing.T) {
	var out bytes.Buffer
	e := NewEditor(&out)
	e.Exec("add (0,0) print x")
	for _, line := range []string{"else (0,0)", "dowhile (0,0)", "elif (0,0)", "name (0,0) x"} {
		_, err := e.Exec(line)
		var be *errors.BendayError
		if !stderrors.As(err, &be) || be.Code != "BLOCK-0002" {
			t.Errorf("Exec(%q) err = %v, want BLOCK-0002", line, err)
		}
	}
}

func TestEditor_SaveLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), "prog.yaml")
	e, out := session(t,
		"add (0,0) print hello",
		"save "+file,
		"clear",
	)
	if !strings.Contains(out.String(), "saved "+file) {
		t.Errorf("output = %q", out.String())
	}
	if got := programText(e); got != "{}" {
		t.Errorf("program after clear = %s", got)
	}

	if _, err := e.Exec("load"); err != nil {
		t.Fatal(err)
	}
	if got := programText(e); got != `{print "hello"}` {
		t.Errorf("program after load = %s", got)
	}
	if e.File() != file {
		t.Errorf("File() = %q", e.File())
	}
}

func TestEditor_ShowAndDescribe(t *testing.T) {
	e, out := session(t, "add (0,0) print hi")
	out.Reset()

	e.Exec("show")
	if !strings.Contains(out.String(), "(0,0)") || !strings.Contains(out.String(), `print "hi"`) {
		t.Errorf("show = %q", out.String())
	}

	out.Reset()
	e.Exec("describe (0,0)")
	if !strings.Contains(out.String(), "print: Prints the value of its slot.") {
		t.Errorf("describe = %q", out.String())
	}

	out.Reset()
	e.Exec("find wh")
	if !strings.HasPrefix(out.String(), "while") {
		t.Errorf("find = %q", out.String())
	}
}

func TestEditor_Help(t *testing.T) {
	e, out := session(t, "help")
	if !strings.Contains(out.String(), "add <path> <type> [text]") {
		t.Errorf("help = %q", out.String())
	}
	out.Reset()
	e.Exec("help while")
	if !strings.Contains(out.String(), "while") {
		t.Errorf("help while = %q", out.String())
	}
}

func TestEditor_ResetAndExit(t *testing.T) {
	e, out := session(t, "add (0,0) assign x = 1", "run", "reset")
	out.Reset()
	e.Exec("vars")
	if out.String() != "" {
		t.Errorf("vars after reset = %q", out.String())
	}

	for _, line := range []string{"exit", "quit", ":exit"} {
		if quit, err := e.Exec(line); !quit || err != nil {
			t.Errorf("Exec(%q) = %v, %v", line, quit, err)
		}
	}
	if quit, err := e.Exec("   "); quit || err != nil {
		t.Errorf("blank line = %v, %v", quit, err)
	}
}

func TestPickKind(t *testing.T) {
	tests := map[string]blocks.Kind{
		"pr":     blocks.KindPrint,
		"wh":     blocks.KindWhile,
		"ret":    blocks.KindReturn,
		"SEQ":    blocks.KindSequence,
		"assign": blocks.KindAssign,
		"if":     blocks.KindIfElse,
	}
	for query, want := range tests {
		got, err := pickKind(query)
		if err != nil || got != want {
			t.Errorf("pickKind(%q) = %v, %v; want %v", query, got, err, want)
		}
	}
}

func TestFilterCompletions(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"", nil},
		{"ru", []string{"run"}},
		{"r", []string{"reset", "rm", "run"}},
		{"add (0,0) wh", []string{"add (0,0) while"}},
		{"help op", []string{"help operators"}},
		{"run ", nil},
	}
	for _, tt := range tests {
		if got := filterCompletions(tt.line); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("filterCompletions(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
