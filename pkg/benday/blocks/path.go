package blocks

import (
	"strconv"
	"strings"

	"github.com/sambeau/benday/pkg/benday/errors"
)

// Step is one descent in a hierarchy path: a *SlotStep or an *ElementStep.
type Step interface {
	String() string
	step()
}

// SlotStep descends into slots[Index].
type SlotStep struct {
	Index int
}

// ElementStep descends into sequences[Sequence], element Element.
type ElementStep struct {
	Sequence int
	Element  int
}

func (*SlotStep) step()    {}
func (*ElementStep) step() {}

func (s *SlotStep) String() string { return strconv.Itoa(s.Index) }
func (s *ElementStep) String() string {
	return "(" + strconv.Itoa(s.Sequence) + "," + strconv.Itoa(s.Element) + ")"
}

// Path addresses a block from a root. The empty path is the root itself.
// Paths are only valid until the next structural edit.
type Path []Step

// AtSlot returns a step into slot i.
func AtSlot(i int) Step { return &SlotStep{Index: i} }

// AtElement returns a step into element elem of sequence seq.
func AtElement(seq, elem int) Step { return &ElementStep{Sequence: seq, Element: elem} }

// Child returns a new path with s appended.
func (p Path) Child(s Step) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, s)
}

// Parent returns the path without its last step.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Last returns the final step, or nil for the root.
func (p Path) Last() Step {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// String renders the path as steps joined by "/", e.g. "0/(1,2)/3".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}

// ParsePath reads the form written by Path.String. Blank text and "/" are
// the root.
func ParsePath(text string) (Path, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == "/" {
		return Path{}, nil
	}

	fail := func(reason string) (Path, error) {
		return nil, errors.New("PATH-0004", map[string]any{"Path": text, "Reason": reason})
	}

	var path Path
	for _, part := range strings.Split(strings.Trim(text, "/"), "/") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "(") && strings.HasSuffix(part, ")") {
			pair := strings.Split(part[1:len(part)-1], ",")
			if len(pair) != 2 {
				return fail("element steps need two indices")
			}
			seq, err1 := strconv.Atoi(strings.TrimSpace(pair[0]))
			elem, err2 := strconv.Atoi(strings.TrimSpace(pair[1]))
			if err1 != nil || err2 != nil || seq < 0 || elem < 0 {
				return fail("bad index in " + part)
			}
			path = append(path, &ElementStep{Sequence: seq, Element: elem})
			continue
		}
		i, err := strconv.Atoi(part)
		if err != nil || i < 0 {
			return fail("bad step " + strconv.Quote(part))
		}
		path = append(path, &SlotStep{Index: i})
	}
	return path, nil
}
