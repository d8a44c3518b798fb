package blocks

import (
	"fmt"

	"github.com/sambeau/benday/pkg/benday/errors"
)

// Structural edits. Each resolves only the container of the last step, so
// the earlier steps of the path stay valid for the duration of the edit, and
// each reports whether the layout must be recomputed.

func containerOf(root *Block, path Path) (Container, error) {
	c, err := LocateContainer(root, path)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.New("PATH-0005", nil)
	}
	return c, nil
}

// InsertAt places b at path: into an empty slot, or before the addressed
// element of a sequence (an index equal to the length appends).
func InsertAt(root *Block, path Path, b *Block) (bool, error) {
	c, err := containerOf(root, path)
	if err != nil {
		return false, err
	}
	switch c := c.(type) {
	case *SlotContainer:
		if c.Slot.block != nil {
			return false, errors.New("BLOCK-0003", map[string]any{"What": "slot " + path.Last().String()}).
				WithPath(path.String())
		}
		c.Slot.SetBlock(b)
	case *SequenceContainer:
		if err := c.Sequence.Insert(c.Index, b); err != nil {
			return false, withPath(err, path)
		}
	}
	return true, nil
}

// RemoveAt takes the block at path out of the tree and returns it.
func RemoveAt(root *Block, path Path) (*Block, bool, error) {
	c, err := containerOf(root, path)
	if err != nil {
		return nil, false, err
	}
	switch c := c.(type) {
	case *SlotContainer:
		if c.Slot.block == nil {
			return nil, false, errors.New("PATH-0003", map[string]any{"What": "slot " + path.Last().String()}).
				WithPath(path.String())
		}
		return c.Slot.Take(), true, nil
	case *SequenceContainer:
		b, err := c.Sequence.Remove(c.Index)
		if err != nil {
			return nil, false, withPath(err, path)
		}
		return b, true, nil
	}
	panic(fmt.Sprintf("blocks: unknown container %T", c))
}

// ReplaceAt swaps the contents at path for b and returns what was there.
// Replacing the contents of a slot that holds text returns nil and drops the
// text.
func ReplaceAt(root *Block, path Path, b *Block) (*Block, bool, error) {
	c, err := containerOf(root, path)
	if err != nil {
		return nil, false, err
	}
	switch c := c.(type) {
	case *SlotContainer:
		old := c.Slot.Take()
		c.Slot.SetBlock(b)
		return old, true, nil
	case *SequenceContainer:
		old, err := c.Sequence.Replace(c.Index, b)
		if err != nil {
			return nil, false, withPath(err, path)
		}
		return old, true, nil
	}
	panic(fmt.Sprintf("blocks: unknown container %T", c))
}

// SetTextAt stores literal text in the slot at path, dropping any block.
// The layout changes only when the slot's size does.
func SetTextAt(root *Block, path Path, text string) (bool, error) {
	c, err := containerOf(root, path)
	if err != nil {
		return false, err
	}
	sc, ok := c.(*SlotContainer)
	if !ok {
		return false, errors.New("PATH-0004", map[string]any{
			"Path": path.String(), "Reason": "text can only be set in a slot",
		})
	}
	before := DefaultMetrics.SlotSizeOf(sc.Slot)
	sc.Slot.SetText(text)
	return DefaultMetrics.SlotSizeOf(sc.Slot) != before, nil
}

// CopyAt inserts a copy of the block at path directly after it and returns
// the copy's path. Only blocks in sequences can be copied in place.
func CopyAt(root *Block, path Path) (Path, error) {
	b, err := LocateBlock(root, path)
	if err != nil {
		return nil, err
	}
	c, err := containerOf(root, path)
	if err != nil {
		return nil, err
	}
	sc, ok := c.(*SequenceContainer)
	if !ok {
		return nil, errors.New("BLOCK-0006", map[string]any{"What": "slot " + path.Last().String()}).
			WithPath(path.String())
	}
	if err := sc.Sequence.Insert(sc.Index+1, b.Clone()); err != nil {
		return nil, withPath(err, path)
	}
	last := path.Last().(*ElementStep)
	return path.Parent().Child(AtElement(last.Sequence, last.Element+1)), nil
}

// MoveAt moves the block at from to the insertion point to, where to is
// read against the tree as it is before the move. It returns the block's new
// path. On failure the tree is left unchanged.
func MoveAt(root *Block, from, to Path) (Path, error) {
	if len(from) == 0 {
		return nil, errors.New("PATH-0005", nil)
	}
	if equalPaths(from, to) {
		return from, nil
	}
	if hasPrefix(to, from) {
		return nil, errors.New("BLOCK-0005", nil).WithPath(to.String())
	}
	if _, err := LocateContainer(root, to); err != nil {
		return nil, err
	}

	dest := adjustForRemoval(from, to)
	b, _, err := RemoveAt(root, from)
	if err != nil {
		return nil, err
	}
	if _, err := InsertAt(root, dest, b); err != nil {
		if _, rerr := InsertAt(root, from, b); rerr != nil {
			panic("blocks: could not restore moved block: " + rerr.Error())
		}
		return nil, err
	}
	return dest, nil
}

// adjustForRemoval shifts to so it still names the same place once the
// element at from has been removed from its sequence.
func adjustForRemoval(from, to Path) Path {
	last, ok := from.Last().(*ElementStep)
	if !ok {
		return to
	}
	depth := len(from) - 1
	if len(to) <= depth || !hasPrefix(to, from.Parent()) {
		return to
	}
	step, ok := to[depth].(*ElementStep)
	if !ok || step.Sequence != last.Sequence || step.Element <= last.Element {
		return to
	}
	out := append(Path(nil), to...)
	out[depth] = AtElement(step.Sequence, step.Element-1)
	return out
}

func stepsEqual(a, b Step) bool {
	switch x := a.(type) {
	case *SlotStep:
		y, ok := b.(*SlotStep)
		return ok && x.Index == y.Index
	case *ElementStep:
		y, ok := b.(*ElementStep)
		return ok && x.Sequence == y.Sequence && x.Element == y.Element
	}
	return false
}

func hasPrefix(p, prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if !stepsEqual(p[i], prefix[i]) {
			return false
		}
	}
	return true
}

func equalPaths(a, b Path) bool {
	return len(a) == len(b) && hasPrefix(a, b)
}
