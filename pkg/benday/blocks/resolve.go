package blocks

import (
	"fmt"

	"github.com/sambeau/benday/pkg/benday/errors"
)

// Container is what LocateContainer returns: a *SlotContainer or a
// *SequenceContainer.
type Container interface {
	container()
}

// SlotContainer is a slot addressed by the last step of a path.
type SlotContainer struct {
	Slot *Slot
}

// SequenceContainer is a position in a sequence. Index may equal the
// sequence length when the path addresses an insertion point at the end.
type SequenceContainer struct {
	Sequence *Sequence
	Index    int
}

func (*SlotContainer) container()     {}
func (*SequenceContainer) container() {}

// descend follows one step from b to the block it addresses.
func descend(b *Block, step Step) (*Block, error) {
	switch s := step.(type) {
	case *SlotStep:
		slot, err := b.Slot(s.Index)
		if err != nil {
			return nil, err
		}
		if slot.block == nil {
			return nil, errors.New("PATH-0003", map[string]any{"What": fmt.Sprintf("slot %d", s.Index)})
		}
		return slot.block, nil
	case *ElementStep:
		seq, err := b.Sequence(s.Sequence)
		if err != nil {
			return nil, err
		}
		if s.Element < 0 || s.Element >= seq.Len() {
			return nil, errors.New("PATH-0002", map[string]any{"Sequence": s.Sequence, "Element": s.Element})
		}
		return seq.BlockAt(s.Element)
	default:
		panic(fmt.Sprintf("blocks: unknown step %T", step))
	}
}

func walkTo(root *Block, steps Path, full Path) (*Block, error) {
	b := root
	for i, step := range steps {
		next, err := descend(b, step)
		if err != nil {
			return nil, withPath(err, full[:i+1])
		}
		b = next
	}
	return b, nil
}

func withPath(err error, p Path) error {
	if be, ok := err.(*errors.BendayError); ok {
		return be.WithPath(p.String())
	}
	return err
}

// LocateBlock returns the block addressed by path. The empty path is root.
func LocateBlock(root *Block, path Path) (*Block, error) {
	return walkTo(root, path, path)
}

// LocateContainer returns the container of the element addressed by path,
// resolving every step but the last to a block. It returns nil for the
// empty path: the root has no container.
func LocateContainer(root *Block, path Path) (Container, error) {
	if len(path) == 0 {
		return nil, nil
	}
	parent, err := walkTo(root, path.Parent(), path)
	if err != nil {
		return nil, err
	}

	switch s := path.Last().(type) {
	case *SlotStep:
		slot, err := parent.Slot(s.Index)
		if err != nil {
			return nil, withPath(err, path)
		}
		return &SlotContainer{Slot: slot}, nil
	case *ElementStep:
		seq, err := parent.Sequence(s.Sequence)
		if err != nil {
			return nil, withPath(err, path)
		}
		if s.Element < 0 || s.Element > seq.Len() {
			return nil, withPath(errors.New("PATH-0002",
				map[string]any{"Sequence": s.Sequence, "Element": s.Element}), path)
		}
		return &SequenceContainer{Sequence: seq, Index: s.Element}, nil
	default:
		panic(fmt.Sprintf("blocks: unknown step %T", s))
	}
}

// LocateOffset sums the offsets contributed by each step of path, giving the
// position of the addressed block relative to root.
func LocateOffset(root *Block, path Path, layout Layout) (Vec, error) {
	var pos Vec
	b := root
	for i, step := range path {
		switch s := step.(type) {
		case *SlotStep:
			if _, err := b.Slot(s.Index); err == nil {
				pos = pos.Add(layout.SlotOffset(b, s.Index))
			}
		case *ElementStep:
			if seq, err := b.Sequence(s.Sequence); err == nil {
				pos = pos.Add(layout.SequenceOffset(b, s.Sequence))
				pos = pos.Add(layout.ElementOffset(seq, s.Element))
			}
		}
		next, err := descend(b, step)
		if err != nil {
			return Vec{}, withPath(err, path[:i+1])
		}
		b = next
	}
	return pos, nil
}

// Walk visits root and every block below it depth first, in path order.
// Returning false from fn skips the block's children.
func Walk(root *Block, fn func(path Path, b *Block) bool) {
	walk(root, Path{}, fn)
}

func walk(b *Block, path Path, fn func(Path, *Block) bool) {
	if !fn(path, b) {
		return
	}
	for i, slot := range b.slots {
		if slot.block != nil {
			walk(slot.block, path.Child(AtSlot(i)), fn)
		}
	}
	for si, seq := range b.sequences {
		for ei, el := range seq.elements {
			if be, ok := el.(*BlockElement); ok {
				walk(be.Block, path.Child(AtElement(si, ei)), fn)
			}
		}
	}
}
