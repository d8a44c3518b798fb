package format

import (
	"fmt"
	"strconv"

	"github.com/sambeau/benday/pkg/benday/blocks"
)

// FormatBlocks renders a block tree as an outline, one block per line with
// its hierarchy path in the first column. Blocks held in slots are listed
// under the line of their slot.
func FormatBlocks(root *blocks.Block) string {
	p := NewPrinter()
	p.outlineBlock(root, blocks.Path{})
	return p.String()
}

func (p *Printer) outlineLine(path blocks.Path, text string) {
	label := path.String()
	if label == "" {
		label = "/"
	}
	p.write(fmt.Sprintf("%-*s ", PathColumn, label))
	p.writeIndent()
	p.write(text)
	p.newline()
}

func (p *Printer) outlineBlock(b *blocks.Block, path blocks.Path) {
	slots := b.Slots()

	switch b.Kind() {
	case blocks.KindSequence:
		p.outlineLine(path, "sequence")
		p.outlineSequence(b, 0, path)

	case blocks.KindIfElse:
		p.outlineLine(path, "if "+slotSummary(slots[0]))
		p.outlineSlotBlock(slots[0], 0, path)
		p.outlineSequence(b, 0, path)
		for i := 1; i < len(slots); i++ {
			p.outlineLine(path.Child(blocks.AtSlot(i)), "elif "+slotSummary(slots[i]))
			p.outlineSlotBlock(slots[i], i, path)
			p.outlineSequence(b, i, path)
		}
		if b.HasElse() {
			p.outlineLine(path, "else")
			p.outlineSequence(b, len(slots), path)
		}

	case blocks.KindWhile:
		keyword := "while "
		if b.DoWhile() {
			keyword = "do-while "
		}
		p.outlineLine(path, keyword+slotSummary(slots[0]))
		p.outlineSlotBlock(slots[0], 0, path)
		p.outlineSequence(b, 0, path)

	case blocks.KindAssign:
		p.outlineLine(path, "assign "+b.VariableName()+" = "+slotSummary(slots[0]))
		p.outlineSlotBlock(slots[0], 0, path)

	case blocks.KindPrint, blocks.KindReturn:
		p.outlineLine(path, b.Kind().String()+" "+slotSummary(slots[0]))
		p.outlineSlotBlock(slots[0], 0, path)

	default:
		panic("format: unknown kind " + b.Kind().String())
	}
}

func (p *Printer) outlineSlotBlock(s *blocks.Slot, index int, path blocks.Path) {
	if !s.HasBlock() {
		return
	}
	p.indentInc()
	p.outlineBlock(s.Block(), path.Child(blocks.AtSlot(index)))
	p.indentDec()
}

func (p *Printer) outlineSequence(b *blocks.Block, index int, path blocks.Path) {
	seq, err := b.Sequence(index)
	if err != nil {
		return
	}
	p.indentInc()
	for i := 0; i < seq.Len(); i++ {
		el, _ := seq.At(i)
		child := path.Child(blocks.AtElement(index, i))
		switch el := el.(type) {
		case *blocks.BlockElement:
			p.outlineBlock(el.Block, child)
		case *blocks.Gap:
			p.outlineLine(child, "~")
		}
	}
	p.indentDec()
}

// slotSummary shows a slot's text quoted, its hint in angle brackets when
// empty, or [block] when it holds a block.
func slotSummary(s *blocks.Slot) string {
	switch {
	case s.HasBlock():
		return "[" + s.Block().String() + "]"
	case s.IsEmpty() && s.Hint != "":
		return "<" + s.Hint + ">"
	case s.IsEmpty():
		return "<>"
	default:
		return strconv.Quote(s.Text())
	}
}
