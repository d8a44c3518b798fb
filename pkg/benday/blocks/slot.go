package blocks

import "github.com/sambeau/benday/pkg/benday/ast"

// Slot holds either literal text or a single block, never both.
type Slot struct {
	text  string
	block *Block

	// Hint is the placeholder an editor shows while the slot is empty.
	// It is display only and never reaches the AST.
	Hint string
}

// NewSlot returns an empty slot with a placeholder hint.
func NewSlot(hint string) *Slot {
	return &Slot{Hint: hint}
}

// Text returns the literal text, or "" when the slot holds a block.
func (s *Slot) Text() string { return s.text }

// Block returns the contained block, or nil.
func (s *Slot) Block() *Block { return s.block }

// HasBlock reports whether the slot holds a block.
func (s *Slot) HasBlock() bool { return s.block != nil }

// IsEmpty reports whether the slot holds neither text nor a block.
func (s *Slot) IsEmpty() bool { return s.block == nil && s.text == "" }

// SetText stores literal text, dropping any block.
func (s *Slot) SetText(text string) {
	s.block = nil
	s.text = text
}

// SetBlock stores a block, dropping any text. A nil block empties the slot.
func (s *Slot) SetBlock(b *Block) {
	s.text = ""
	s.block = b
}

// Take removes and returns the contained block.
func (s *Slot) Take() *Block {
	b := s.block
	s.block = nil
	return b
}

// Clear empties the slot.
func (s *Slot) Clear() {
	s.text = ""
	s.block = nil
}

// ToAST returns the block's node, the text as a value, or the absence
// sentinel for an empty slot.
func (s *Slot) ToAST() ast.Node {
	if s.block != nil {
		return s.block.ToAST()
	}
	if s.text == "" {
		return ast.Absent()
	}
	return ast.NewValue(s.text)
}

func (s *Slot) clone() *Slot {
	c := &Slot{text: s.text, Hint: s.Hint}
	if s.block != nil {
		c.block = s.block.Clone()
	}
	return c
}
