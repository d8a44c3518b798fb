package format

import (
	"strings"
	"testing"

	"github.com/sambeau/benday/pkg/benday/ast"
	"github.com/sambeau/benday/pkg/benday/blocks"
	"github.com/sambeau/benday/pkg/benday/evaluator"
)

func sampleBlocks() *blocks.Block {
	ifBlock := blocks.NewIfElse("{x} > 3", blocks.NewPrint("big"))
	ifBlock.AddElif(0)
	ifBlock.ToggleElse()
	elseSeq, _ := ifBlock.Sequence(2)
	elseSeq.Append(blocks.NewPrint("small"))

	loop := blocks.NewWhile("{x} > 0", blocks.NewAssign("x", "{x} - 1"))
	loop.ToggleDoWhile()

	printReturn := blocks.New(blocks.KindPrint)
	slot, _ := printReturn.Slot(0)
	slot.SetBlock(blocks.NewReturn("{x}"))

	return blocks.NewSequence(blocks.NewAssign("x", "5"), ifBlock, loop, printReturn)
}

func TestFormatBlocks(t *testing.T) {
	want := strings.Join([]string{
		"/                sequence",
		"(0,0)            \tassign x = \"5\"",
		"(0,1)            \tif \"{x} > 3\"",
		"(0,1)/(0,0)      \t\tprint \"big\"",
		"(0,1)/1          \telif <False>",
		"(0,1)            \telse",
		"(0,1)/(2,0)      \t\tprint \"small\"",
		"(0,2)            \tdo-while \"{x} > 0\"",
		"(0,2)/(0,0)      \t\tassign x = \"{x} - 1\"",
		"(0,3)            \tprint [return]",
		"(0,3)/0          \t\treturn \"{x}\"",
		"",
	}, "\n")

	if got := FormatBlocks(sampleBlocks()); got != want {
		t.Errorf("FormatBlocks() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatBlocks_Gap(t *testing.T) {
	root := blocks.NewSequence(blocks.NewPrint("a"))
	seq, _ := root.Sequence(0)
	seq.SetGap(0, blocks.Vec{X: 1, Y: 1})

	got := FormatBlocks(root)
	if !strings.Contains(got, "(0,0)            \t~\n") || !strings.Contains(got, "(0,1)            \tprint \"a\"") {
		t.Errorf("FormatBlocks() =\n%s", got)
	}
}

func TestFormatAST(t *testing.T) {
	want := strings.Join([]string{
		`x = "5"`,
		`if "{x} > 3":`,
		`	print "big"`,
		`elif None:`,
		`	(empty)`,
		`else:`,
		`	print "small"`,
		`do:`,
		`	x = "{x} - 1"`,
		`while "{x} > 0"`,
		`print (return "{x}")`,
		``,
	}, "\n")

	if got := FormatAST(blocks.ToAST(sampleBlocks())); got != want {
		t.Errorf("FormatAST() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatAST_LongSlotBlock(t *testing.T) {
	long := strings.Repeat("word ", 30)
	node := &ast.Print{Value: &ast.Return{Value: ast.NewValue(long)}}
	if got := FormatAST(node); got != "print (return ...)\n" {
		t.Errorf("FormatAST() = %q", got)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		obj  evaluator.Object
		want string
	}{
		{&evaluator.Integer{Value: 7}, "7"},
		{&evaluator.Float{Value: 0.25}, "0.25"},
		{evaluator.TRUE, "True"},
		{&evaluator.String{Value: "hi"}, `"hi"`},
		{evaluator.NONE, "None"},
		{nil, "None"},
		{&evaluator.ReturnValue{Value: &evaluator.Integer{Value: 1}}, "1"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.obj); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.obj, got, tt.want)
		}
	}
}

func TestFormatVariables(t *testing.T) {
	vars := map[string]evaluator.Object{
		"a": &evaluator.Integer{Value: 1},
		"b": &evaluator.String{Value: "two"},
	}
	lookup := func(name string) (evaluator.Object, bool) {
		v, ok := vars[name]
		return v, ok
	}

	got := FormatVariables([]string{"a", "b", "missing"}, lookup)
	if got != "a = 1\nb = \"two\"\n" {
		t.Errorf("FormatVariables() = %q", got)
	}
}
