// Package blocks is the editable program model: a tree of typed blocks whose
// slots and sequences hold nested blocks, addressed by hierarchy paths.
//
// The tree is mutable and owned by the editor. It never runs directly; ToAST
// synthesizes a fresh execution tree from it whenever the program is run.
package blocks

import (
	"fmt"

	"github.com/sambeau/benday/pkg/benday/ast"
	"github.com/sambeau/benday/pkg/benday/errors"
)

// UnnamedVariable is the name an assignment gets while its name is empty.
const UnnamedVariable = "-"

// ConditionHint is the placeholder shown in empty condition slots.
const ConditionHint = "False"

// Block is one program construct. Which slots and sequences it owns depends
// on its Kind:
//
//	sequence  no slots, one sequence
//	if        one slot per if/elif branch, one sequence per branch,
//	          plus a trailing else sequence when HasElse
//	while     one condition slot, one body sequence
//	assign    one value slot and a variable name
//	print     one value slot
//	return    one value slot
type Block struct {
	kind      Kind
	slots     []*Slot
	sequences []*Sequence
	hasElse   bool
	doWhile   bool
	name      string
}

// New returns an empty block of the given kind.
func New(kind Kind) *Block {
	switch kind {
	case KindSequence:
		return &Block{kind: kind, sequences: []*Sequence{newSequence()}}
	case KindIfElse:
		return &Block{
			kind:      kind,
			slots:     []*Slot{NewSlot(ConditionHint)},
			sequences: []*Sequence{newSequence()},
		}
	case KindWhile:
		return &Block{
			kind:      kind,
			slots:     []*Slot{NewSlot(ConditionHint)},
			sequences: []*Sequence{newSequence()},
		}
	case KindAssign, KindPrint, KindReturn:
		return &Block{kind: kind, slots: []*Slot{NewSlot("")}}
	default:
		panic("blocks: unknown kind " + kind.String())
	}
}

// NewSequence returns a sequence block holding the given blocks.
func NewSequence(children ...*Block) *Block {
	b := New(KindSequence)
	b.sequences[0] = newSequence(children...)
	return b
}

// NewIfElse returns an if block with a condition and body.
func NewIfElse(condition string, body ...*Block) *Block {
	b := New(KindIfElse)
	b.slots[0].SetText(condition)
	b.sequences[0] = newSequence(body...)
	return b
}

// NewWhile returns a while loop with a condition and body.
func NewWhile(condition string, body ...*Block) *Block {
	b := New(KindWhile)
	b.slots[0].SetText(condition)
	b.sequences[0] = newSequence(body...)
	return b
}

// NewAssign returns an assignment of value text to name.
func NewAssign(name, value string) *Block {
	b := New(KindAssign)
	b.name = name
	b.slots[0].SetText(value)
	return b
}

// NewPrint returns a print block.
func NewPrint(value string) *Block {
	b := New(KindPrint)
	b.slots[0].SetText(value)
	return b
}

// NewReturn returns a return block.
func NewReturn(value string) *Block {
	b := New(KindReturn)
	b.slots[0].SetText(value)
	return b
}

func (b *Block) Kind() Kind { return b.kind }

// Slots returns the block's slots in order.
func (b *Block) Slots() []*Slot { return append([]*Slot(nil), b.slots...) }

// Sequences returns the block's sequences in order.
func (b *Block) Sequences() []*Sequence { return append([]*Sequence(nil), b.sequences...) }

// Slot returns slot i.
func (b *Block) Slot(i int) (*Slot, error) {
	if i < 0 || i >= len(b.slots) {
		return nil, errors.New("PATH-0001", map[string]any{"Index": i, "Count": len(b.slots)})
	}
	return b.slots[i], nil
}

// Sequence returns sequence i.
func (b *Block) Sequence(i int) (*Sequence, error) {
	if i < 0 || i >= len(b.sequences) {
		return nil, errors.New("PATH-0002", map[string]any{"Sequence": i, "Element": "-"})
	}
	return b.sequences[i], nil
}

// HasElse reports whether an if block has an else branch.
func (b *Block) HasElse() bool { return b.hasElse }

// DoWhile reports whether a while loop runs its body before the first check.
func (b *Block) DoWhile() bool { return b.doWhile }

// Name returns an assignment's variable name as typed.
func (b *Block) Name() string { return b.name }

// VariableName returns the name used at run time.
func (b *Block) VariableName() string {
	if b.name == "" {
		return UnnamedVariable
	}
	return b.name
}

// SetName renames an assignment.
func (b *Block) SetName(name string) error {
	if b.kind != KindAssign {
		return unsupported("name", b.kind)
	}
	b.name = name
	return nil
}

// AddElif inserts an elif branch directly after branch after (0 is the if
// branch). It always reports that the size changed.
func (b *Block) AddElif(after int) (bool, error) {
	if b.kind != KindIfElse {
		return false, unsupported("elif", b.kind)
	}
	if after < 0 || after >= len(b.slots) {
		return false, errors.New("BLOCK-0001", map[string]any{"Index": after})
	}
	at := after + 1
	b.slots = insertAt(b.slots, at, NewSlot(ConditionHint))
	b.sequences = insertAt(b.sequences, at, newSequence())
	return true, nil
}

// RemoveElif removes elif branch index (1 is the first elif).
func (b *Block) RemoveElif(index int) (bool, error) {
	if b.kind != KindIfElse {
		return false, unsupported("elif", b.kind)
	}
	if index < 1 || index >= len(b.slots) {
		return false, errors.New("BLOCK-0001", map[string]any{"Index": index})
	}
	b.slots = append(b.slots[:index], b.slots[index+1:]...)
	b.sequences = append(b.sequences[:index], b.sequences[index+1:]...)
	return true, nil
}

// ToggleElse adds or removes the trailing else sequence.
func (b *Block) ToggleElse() (bool, error) {
	if b.kind != KindIfElse {
		return false, unsupported("else", b.kind)
	}
	if b.hasElse {
		b.sequences = b.sequences[:len(b.sequences)-1]
	} else {
		b.sequences = append(b.sequences, newSequence())
	}
	b.hasElse = !b.hasElse
	return true, nil
}

// ToggleDoWhile flips a loop between while and do-while. The structure is
// unchanged but the condition moves, so the layout changes too.
func (b *Block) ToggleDoWhile() (bool, error) {
	if b.kind != KindWhile {
		return false, unsupported("do-while", b.kind)
	}
	b.doWhile = !b.doWhile
	return true, nil
}

// Clone returns a deep copy. Gaps are not copied.
func (b *Block) Clone() *Block {
	c := &Block{
		kind:    b.kind,
		hasElse: b.hasElse,
		doWhile: b.doWhile,
		name:    b.name,
	}
	for _, s := range b.slots {
		c.slots = append(c.slots, s.clone())
	}
	for _, s := range b.sequences {
		c.sequences = append(c.sequences, s.clone())
	}
	return c
}

// Size returns the block's size under DefaultMetrics.
func (b *Block) Size() Vec { return DefaultMetrics.Size(b) }

// ChildPositions returns the offset of every slot and sequence element
// relative to the block, in path order, under DefaultMetrics.
func (b *Block) ChildPositions() []ChildPosition { return DefaultMetrics.ChildPositions(b) }

// ToAST synthesizes the execution tree for this block and everything it
// contains. It does not modify the block.
func (b *Block) ToAST() ast.Node {
	switch b.kind {
	case KindSequence:
		return b.sequences[0].ToAST()
	case KindIfElse:
		node := &ast.IfElse{
			Condition: b.slots[0].ToAST(),
			Body:      b.sequences[0].ToAST(),
		}
		for i := 1; i < len(b.slots); i++ {
			node.Elifs = append(node.Elifs, ast.Branch{
				Condition: b.slots[i].ToAST(),
				Body:      b.sequences[i].ToAST(),
			})
		}
		if b.hasElse {
			node.Else = b.sequences[len(b.sequences)-1].ToAST()
		}
		return node
	case KindWhile:
		return &ast.While{
			Condition: b.slots[0].ToAST(),
			Body:      b.sequences[0].ToAST(),
			DoWhile:   b.doWhile,
		}
	case KindAssign:
		return &ast.Assign{Name: b.VariableName(), Value: b.slots[0].ToAST()}
	case KindPrint:
		return &ast.Print{Value: b.slots[0].ToAST()}
	case KindReturn:
		return &ast.Return{Value: b.slots[0].ToAST()}
	default:
		panic("blocks: unknown kind " + b.kind.String())
	}
}

// ToAST synthesizes the execution tree rooted at root.
func ToAST(root *Block) ast.Node {
	return root.ToAST()
}

func (b *Block) String() string {
	if b.kind == KindAssign {
		return fmt.Sprintf("assign %s", b.VariableName())
	}
	return b.kind.String()
}

func unsupported(op string, kind Kind) error {
	return errors.New("BLOCK-0002", map[string]any{"Op": op, "Kind": kind.String()})
}

func insertAt[T any](s []T, i int, v T) []T {
	s = append(s, v)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
