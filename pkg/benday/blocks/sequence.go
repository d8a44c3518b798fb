package blocks

import (
	"fmt"

	"github.com/sambeau/benday/pkg/benday/ast"
	"github.com/sambeau/benday/pkg/benday/errors"
)

// Element is an entry of a Sequence: a *BlockElement or a *Gap.
type Element interface {
	element()
}

// BlockElement is a block placed in a sequence.
type BlockElement struct {
	Block *Block
}

// Gap marks where a dragged block would land. It only carries the size of
// the block being dragged.
type Gap struct {
	Size Vec
}

func (*BlockElement) element() {}
func (*Gap) element()          {}

// Sequence is an ordered list of blocks with at most one gap.
type Sequence struct {
	elements []Element
}

// newSequence returns a sequence holding blocks in order.
func newSequence(blocks ...*Block) *Sequence {
	s := &Sequence{}
	for _, b := range blocks {
		s.elements = append(s.elements, &BlockElement{Block: b})
	}
	return s
}

// Len returns the number of elements, gap included.
func (s *Sequence) Len() int { return len(s.elements) }

// At returns the element at i.
func (s *Sequence) At(i int) (Element, error) {
	if i < 0 || i >= len(s.elements) {
		return nil, errors.New("PATH-0002", map[string]any{"Sequence": "-", "Element": i})
	}
	return s.elements[i], nil
}

// BlockAt returns the block at i. It fails when i is out of range or names
// the gap.
func (s *Sequence) BlockAt(i int) (*Block, error) {
	el, err := s.At(i)
	if err != nil {
		return nil, err
	}
	be, ok := el.(*BlockElement)
	if !ok {
		return nil, errors.New("PATH-0003", map[string]any{"What": fmt.Sprintf("element %d", i)})
	}
	return be.Block, nil
}

// Blocks returns the blocks in order, skipping the gap.
func (s *Sequence) Blocks() []*Block {
	out := make([]*Block, 0, len(s.elements))
	for _, el := range s.elements {
		if be, ok := el.(*BlockElement); ok {
			out = append(out, be.Block)
		}
	}
	return out
}

// Insert places b before element i. i may equal Len to append.
func (s *Sequence) Insert(i int, b *Block) error {
	if i < 0 || i > len(s.elements) {
		return errors.New("PATH-0002", map[string]any{"Sequence": "-", "Element": i})
	}
	s.elements = append(s.elements, nil)
	copy(s.elements[i+1:], s.elements[i:])
	s.elements[i] = &BlockElement{Block: b}
	return nil
}

// Append adds b at the end.
func (s *Sequence) Append(b *Block) {
	s.elements = append(s.elements, &BlockElement{Block: b})
}

// Remove takes the block at i out of the sequence.
func (s *Sequence) Remove(i int) (*Block, error) {
	b, err := s.BlockAt(i)
	if err != nil {
		return nil, err
	}
	s.elements = append(s.elements[:i], s.elements[i+1:]...)
	return b, nil
}

// Replace swaps the block at i for b and returns the old one.
func (s *Sequence) Replace(i int, b *Block) (*Block, error) {
	old, err := s.BlockAt(i)
	if err != nil {
		return nil, err
	}
	s.elements[i] = &BlockElement{Block: b}
	return old, nil
}

// GapIndex returns the index of the gap, or -1.
func (s *Sequence) GapIndex() int {
	for i, el := range s.elements {
		if _, ok := el.(*Gap); ok {
			return i
		}
	}
	return -1
}

// SetGap moves the gap to position i, counted without the current gap.
func (s *Sequence) SetGap(i int, size Vec) error {
	s.ClearGap()
	if i < 0 || i > len(s.elements) {
		return errors.New("PATH-0002", map[string]any{"Sequence": "-", "Element": i})
	}
	s.elements = append(s.elements, nil)
	copy(s.elements[i+1:], s.elements[i:])
	s.elements[i] = &Gap{Size: size}
	return nil
}

// ClearGap removes the gap if there is one and reports whether it did.
func (s *Sequence) ClearGap() bool {
	i := s.GapIndex()
	if i < 0 {
		return false
	}
	s.elements = append(s.elements[:i], s.elements[i+1:]...)
	return true
}

// Place fills the gap with b and returns its index.
func (s *Sequence) Place(b *Block) (int, error) {
	i := s.GapIndex()
	if i < 0 {
		return -1, errors.New("BLOCK-0004", nil)
	}
	s.elements[i] = &BlockElement{Block: b}
	return i, nil
}

// ToAST synthesizes the sequence. A gap here means a drag is still in
// progress, which callers must never let reach synthesis.
func (s *Sequence) ToAST() *ast.Sequence {
	nodes := make([]ast.Node, 0, len(s.elements))
	for i, el := range s.elements {
		switch el := el.(type) {
		case *BlockElement:
			nodes = append(nodes, el.Block.ToAST())
		case *Gap:
			panic(fmt.Sprintf("blocks: gap at element %d reached synthesis", i))
		default:
			panic(fmt.Sprintf("blocks: unknown element %T", el))
		}
	}
	return &ast.Sequence{Elements: nodes}
}

func (s *Sequence) clone() *Sequence {
	c := &Sequence{}
	for _, b := range s.Blocks() {
		c.elements = append(c.elements, &BlockElement{Block: b.Clone()})
	}
	return c
}
