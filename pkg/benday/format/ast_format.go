package format

import (
	"strings"

	"github.com/sambeau/benday/pkg/benday/ast"
)

// EmptyBody is written for a branch or loop with nothing in it
const EmptyBody = "(empty)"

// FormatAST renders an execution tree as indented pseudo-source, one
// statement per line.
func FormatAST(node ast.Node) string {
	p := NewPrinter()
	if seq, ok := node.(*ast.Sequence); ok {
		p.formatStatements(seq)
	} else {
		p.formatStatement(node)
	}
	return p.String()
}

func (p *Printer) formatStatements(seq *ast.Sequence) {
	for _, el := range seq.Elements {
		p.formatStatement(el)
	}
}

func (p *Printer) formatBody(seq *ast.Sequence) {
	p.indentInc()
	if seq == nil || len(seq.Elements) == 0 {
		p.line(EmptyBody)
	} else {
		p.formatStatements(seq)
	}
	p.indentDec()
}

func (p *Printer) formatStatement(node ast.Node) {
	switch n := node.(type) {
	case *ast.Assign:
		p.line(n.Name + " = " + p.slotText(n.Value))
	case *ast.Print:
		p.line("print " + p.slotText(n.Value))
	case *ast.Return:
		p.line("return " + p.slotText(n.Value))
	case *ast.IfElse:
		p.line("if " + p.slotText(n.Condition) + ":")
		p.formatBody(n.Body)
		for _, br := range n.Elifs {
			p.line("elif " + p.slotText(br.Condition) + ":")
			p.formatBody(br.Body)
		}
		if n.Else != nil {
			p.line("else:")
			p.formatBody(n.Else)
		}
	case *ast.While:
		if n.DoWhile {
			p.line("do:")
			p.formatBody(n.Body)
			p.line("while " + p.slotText(n.Condition))
		} else {
			p.line("while " + p.slotText(n.Condition) + ":")
			p.formatBody(n.Body)
		}
	case *ast.Sequence:
		p.line("sequence:")
		p.formatBody(n)
	case *ast.Value:
		p.line(n.String())
	default:
		panic("format: unknown node " + node.String())
	}
}

// slotText renders a slot's content inline. A block in a slot is shown in
// parentheses, cut short when it would overflow the line.
func (p *Printer) slotText(node ast.Node) string {
	if v, ok := node.(*ast.Value); ok {
		return v.String()
	}
	inline := "(" + node.String() + ")"
	if p.fitsInThreshold(inline, MaxLineWidth) {
		return inline
	}
	head, _, _ := strings.Cut(node.String(), " ")
	return "(" + head + " ...)"
}
