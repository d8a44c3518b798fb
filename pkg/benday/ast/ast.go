// Package ast defines the execution tree synthesized from a block program.
//
// Nodes are built fresh from the block tree on every run and are never
// mutated afterwards. Each node owns its children; there is no sharing.
package ast

import (
	"bytes"
	"strconv"
	"strings"
)

// Node represents any node in the AST. The unexported marker keeps the set of
// node types closed to this package.
type Node interface {
	String() string
	node()
}

// AbsentLiteral is how an empty slot renders.
const AbsentLiteral = "None"

// Value is the content of a slot: either text to be interpolated and
// evaluated, or the absence sentinel for a slot with nothing in it.
type Value struct {
	Text   string
	Absent bool
}

// NewValue returns a Value holding text.
func NewValue(text string) *Value { return &Value{Text: text} }

// Absent returns a Value for an empty slot.
func Absent() *Value { return &Value{Absent: true} }

func (v *Value) node() {}
func (v *Value) String() string {
	if v.Absent {
		return AbsentLiteral
	}
	return strconv.Quote(v.Text)
}

// Sequence is an ordered list of nodes executed in turn.
type Sequence struct {
	Elements []Node
}

func (s *Sequence) node() {}
func (s *Sequence) String() string {
	parts := make([]string, len(s.Elements))
	for i, el := range s.Elements {
		parts[i] = el.String()
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

// Branch is one condition/body pair of an elif.
type Branch struct {
	Condition Node
	Body      *Sequence
}

// IfElse is a conditional with any number of elif branches and an optional
// else body.
type IfElse struct {
	Condition Node
	Body      *Sequence
	Elifs     []Branch
	Else      *Sequence // nil when the block has no else branch
}

func (ie *IfElse) node() {}
func (ie *IfElse) String() string {
	var out bytes.Buffer

	out.WriteString("if ")
	out.WriteString(ie.Condition.String())
	out.WriteString(" ")
	out.WriteString(ie.Body.String())

	for _, b := range ie.Elifs {
		out.WriteString(" elif ")
		out.WriteString(b.Condition.String())
		out.WriteString(" ")
		out.WriteString(b.Body.String())
	}

	if ie.Else != nil {
		out.WriteString(" else ")
		out.WriteString(ie.Else.String())
	}

	return out.String()
}

// While is a loop. DoWhile runs the body once before the first check.
type While struct {
	Condition Node
	Body      *Sequence
	DoWhile   bool
}

func (w *While) node() {}
func (w *While) String() string {
	if w.DoWhile {
		return "do " + w.Body.String() + " while " + w.Condition.String()
	}
	return "while " + w.Condition.String() + " " + w.Body.String()
}

// Assign stores a value in the variable table.
type Assign struct {
	Name  string
	Value Node
}

func (a *Assign) node() {}
func (a *Assign) String() string {
	return a.Name + " = " + a.Value.String()
}

// Print emits a value to the host output.
type Print struct {
	Value Node
}

func (p *Print) node()          {}
func (p *Print) String() string { return "print " + p.Value.String() }

// Return ends the enclosing program with a value.
type Return struct {
	Value Node
}

func (r *Return) node()          {}
func (r *Return) String() string { return "return " + r.Value.String() }

// Equal reports whether two trees have the same shape and content.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Value:
		y, ok := b.(*Value)
		return ok && x.Absent == y.Absent && x.Text == y.Text
	case *Sequence:
		y, ok := b.(*Sequence)
		return ok && equalSequences(x, y)
	case *IfElse:
		y, ok := b.(*IfElse)
		if !ok || len(x.Elifs) != len(y.Elifs) {
			return false
		}
		if !Equal(x.Condition, y.Condition) || !equalSequences(x.Body, y.Body) {
			return false
		}
		for i := range x.Elifs {
			if !Equal(x.Elifs[i].Condition, y.Elifs[i].Condition) ||
				!equalSequences(x.Elifs[i].Body, y.Elifs[i].Body) {
				return false
			}
		}
		if (x.Else == nil) != (y.Else == nil) {
			return false
		}
		return x.Else == nil || equalSequences(x.Else, y.Else)
	case *While:
		y, ok := b.(*While)
		return ok && x.DoWhile == y.DoWhile &&
			Equal(x.Condition, y.Condition) && equalSequences(x.Body, y.Body)
	case *Assign:
		y, ok := b.(*Assign)
		return ok && x.Name == y.Name && Equal(x.Value, y.Value)
	case *Print:
		y, ok := b.(*Print)
		return ok && Equal(x.Value, y.Value)
	case *Return:
		y, ok := b.(*Return)
		return ok && Equal(x.Value, y.Value)
	case nil:
		return b == nil
	}
	return false
}

func equalSequences(a, b *Sequence) bool {
	if len(a.Elements) != len(b.Elements) {
		return false
	}
	for i := range a.Elements {
		if !Equal(a.Elements[i], b.Elements[i]) {
			return false
		}
	}
	return true
}
