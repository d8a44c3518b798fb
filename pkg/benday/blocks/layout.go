package blocks

import "unicode/utf8"

// Vec is a 2D integer offset or size in editor units.
type Vec struct {
	X, Y int
}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Layout supplies the geometry LocateOffset walks. Offsets are relative to
// the parent block (or, for elements, the parent sequence).
type Layout interface {
	SlotOffset(b *Block, slot int) Vec
	SequenceOffset(b *Block, seq int) Vec
	ElementOffset(s *Sequence, elem int) Vec
}

// ChildPosition is the offset of one direct child of a block.
type ChildPosition struct {
	Step   Step
	Offset Vec
}

// Metrics is the built-in box layout: blocks are padded boxes, slots sit to
// the right of their keyword, sequences stack their blocks vertically.
type Metrics struct {
	Margin         int
	InnerMargin    int
	SequenceMargin int
	CharWidth      int
	ButtonWidth    int
	SlotSize       Vec
	SequenceSize   Vec
	NameBoxSize    Vec
}

// DefaultMetrics matches the editor's stock sizes.
var DefaultMetrics = &Metrics{
	Margin:         12,
	InnerMargin:    6,
	SequenceMargin: 7,
	CharWidth:      9,
	ButtonWidth:    16,
	SlotSize:       Vec{80, 25},
	SequenceSize:   Vec{120, 80},
	NameBoxSize:    Vec{60, 25},
}

func (m *Metrics) textWidth(s string) int {
	return utf8.RuneCountInString(s) * m.CharWidth
}

// keyword is the label drawn before a block's first slot.
func (m *Metrics) keyword(b *Block) string {
	switch b.kind {
	case KindIfElse:
		if len(b.slots) > 1 {
			return "elif"
		}
		return "if"
	case KindWhile:
		if b.doWhile {
			return "do while"
		}
		return "while"
	case KindPrint:
		return "print"
	case KindReturn:
		return "return"
	case KindAssign:
		return "="
	case KindSequence:
		return ""
	default:
		panic("blocks: unknown kind " + b.kind.String())
	}
}

// SlotSizeOf returns the size of a slot: its block, or a text box that grows
// with the text it shows.
func (m *Metrics) SlotSizeOf(s *Slot) Vec {
	if s.block != nil {
		return m.Size(s.block)
	}
	text := s.text
	if text == "" {
		text = s.Hint
	}
	return Vec{max(m.SlotSize.X, m.textWidth(text)+2*m.InnerMargin), m.SlotSize.Y}
}

func (m *Metrics) elementSize(el Element) Vec {
	switch el := el.(type) {
	case *BlockElement:
		return m.Size(el.Block)
	case *Gap:
		return el.Size
	default:
		panic("blocks: unknown element")
	}
}

// SequenceSizeOf returns the size of a sequence, gap included.
func (m *Metrics) SequenceSizeOf(s *Sequence) Vec {
	if len(s.elements) == 0 {
		return m.SequenceSize
	}
	width, height := 0, 0
	for _, el := range s.elements {
		size := m.elementSize(el)
		width = max(width, size.X)
		height += size.Y
	}
	height = max(height, m.SequenceSize.Y)
	n := len(s.elements)
	return Vec{width + m.SequenceMargin, height + n*m.SequenceMargin}
}

func (m *Metrics) nameWidth(b *Block) int {
	return max(m.NameBoxSize.X, m.textWidth(b.name)+2*m.InnerMargin)
}

// ifLine returns the height of line l of an if block. The else line has no
// slot.
func (m *Metrics) ifLine(b *Block, l int) int {
	seq := m.SequenceSizeOf(b.sequences[l]).Y
	if l >= len(b.slots) {
		return seq
	}
	return max(m.SlotSizeOf(b.slots[l]).Y, seq)
}

func (m *Metrics) ifLineTop(b *Block, l int) int {
	y := m.Margin + l*m.InnerMargin
	for i := 0; i < l; i++ {
		y += m.ifLine(b, i)
	}
	return y
}

func (m *Metrics) widest(b *Block) (slotW, seqW int) {
	for _, s := range b.slots {
		slotW = max(slotW, m.SlotSizeOf(s).X)
	}
	for _, s := range b.sequences {
		seqW = max(seqW, m.SequenceSizeOf(s).X)
	}
	return slotW, seqW
}

// Size returns the size of a block.
func (m *Metrics) Size(b *Block) Vec {
	pad := Vec{2 * m.Margin, 2 * m.Margin}
	switch b.kind {
	case KindSequence:
		return m.SequenceSizeOf(b.sequences[0]).Add(pad)
	case KindPrint, KindReturn:
		slot := m.SlotSizeOf(b.slots[0])
		return Vec{slot.X + m.textWidth(m.keyword(b)) + m.InnerMargin, slot.Y}.Add(pad)
	case KindAssign:
		slot := m.SlotSizeOf(b.slots[0])
		width := slot.X + m.nameWidth(b) + m.textWidth(m.keyword(b)) + 2*m.InnerMargin
		return Vec{width, slot.Y}.Add(pad)
	case KindWhile:
		slot := m.SlotSizeOf(b.slots[0])
		seq := m.SequenceSizeOf(b.sequences[0])
		width := seq.X + slot.X + m.textWidth(m.keyword(b)) + 3*m.InnerMargin
		return Vec{width, max(slot.Y, seq.Y)}.Add(pad)
	case KindIfElse:
		slotW, seqW := m.widest(b)
		width := seqW + slotW + m.textWidth(m.keyword(b)) + m.ButtonWidth + 3*m.InnerMargin
		height := (len(b.sequences) - 1) * m.InnerMargin
		for l := range b.sequences {
			height += m.ifLine(b, l)
		}
		return Vec{width, height}.Add(pad)
	default:
		panic("blocks: unknown kind " + b.kind.String())
	}
}

// SlotOffset returns where slot i sits inside b.
func (m *Metrics) SlotOffset(b *Block, i int) Vec {
	kw := m.textWidth(m.keyword(b))
	switch b.kind {
	case KindPrint, KindReturn:
		return Vec{kw + m.InnerMargin + m.Margin, m.Margin}
	case KindAssign:
		return Vec{m.nameWidth(b) + kw + 2*m.InnerMargin + m.Margin, m.Margin}
	case KindWhile:
		x := kw + m.InnerMargin + m.Margin
		if b.doWhile {
			return Vec{x, m.Size(b).Y - m.SlotSizeOf(b.slots[0]).Y - m.Margin}
		}
		return Vec{x, m.Margin}
	case KindIfElse:
		slotW, _ := m.widest(b)
		slot := m.SlotSizeOf(b.slots[i])
		x := slotW - slot.X + kw + m.Margin + m.InnerMargin
		y := m.ifLineTop(b, i) + (m.ifLine(b, i)-slot.Y)/2
		return Vec{x, y}
	case KindSequence:
		panic("blocks: sequence blocks have no slots")
	default:
		panic("blocks: unknown kind " + b.kind.String())
	}
}

// SequenceOffset returns where sequence i sits inside b.
func (m *Metrics) SequenceOffset(b *Block, i int) Vec {
	switch b.kind {
	case KindSequence:
		return Vec{m.Margin, m.Margin}
	case KindWhile:
		x := m.SlotSizeOf(b.slots[0]).X + m.textWidth(m.keyword(b)) + 3*m.InnerMargin + m.Margin
		return Vec{x, m.Margin}
	case KindIfElse:
		slotW, _ := m.widest(b)
		seq := m.SequenceSizeOf(b.sequences[i])
		x := slotW + m.textWidth(m.keyword(b)) + m.ButtonWidth + m.Margin + 3*m.InnerMargin
		y := m.ifLineTop(b, i) + (m.ifLine(b, i)-seq.Y)/2
		return Vec{x, y}
	case KindAssign, KindPrint, KindReturn:
		panic("blocks: " + b.kind.String() + " blocks have no sequences")
	default:
		panic("blocks: unknown kind " + b.kind.String())
	}
}

// ElementOffset returns where element i sits inside s.
func (m *Metrics) ElementOffset(s *Sequence, i int) Vec {
	y := 0
	for j := 0; j < i && j < len(s.elements); j++ {
		y += m.elementSize(s.elements[j]).Y + m.SequenceMargin
	}
	return Vec{0, y}
}

// ChildPositions returns the offsets of b's slots, then of each element of
// each sequence, relative to b.
func (m *Metrics) ChildPositions(b *Block) []ChildPosition {
	var out []ChildPosition
	for i := range b.slots {
		out = append(out, ChildPosition{Step: AtSlot(i), Offset: m.SlotOffset(b, i)})
	}
	for si, s := range b.sequences {
		base := m.SequenceOffset(b, si)
		for ei := range s.elements {
			out = append(out, ChildPosition{
				Step:   AtElement(si, ei),
				Offset: base.Add(m.ElementOffset(s, ei)),
			})
		}
	}
	return out
}
