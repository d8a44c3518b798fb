package blocks

import "strings"

// Kind identifies a block variant. The set is closed; every switch over Kind
// panics on a value it does not know.
type Kind int

const (
	KindSequence Kind = iota
	KindIfElse
	KindWhile
	KindAssign
	KindPrint
	KindReturn
)

var kindNames = map[Kind]string{
	KindSequence: "sequence",
	KindIfElse:   "if",
	KindWhile:    "while",
	KindAssign:   "assign",
	KindPrint:    "print",
	KindReturn:   "return",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Describe returns the one-line summary shown next to a block.
func (k Kind) Describe() string {
	switch k {
	case KindSequence:
		return "Runs the blocks it contains from top to bottom."
	case KindIfElse:
		return "Runs the first branch whose condition is true, or the else branch."
	case KindWhile:
		return "Repeats its body while the condition is true."
	case KindAssign:
		return "Stores the value of its slot in a variable."
	case KindPrint:
		return "Prints the value of its slot."
	case KindReturn:
		return "Stops the program and returns the value of its slot."
	default:
		panic("blocks: unknown kind " + k.String())
	}
}

// Kinds lists every block kind in menu order.
func Kinds() []Kind {
	return []Kind{KindSequence, KindIfElse, KindWhile, KindAssign, KindPrint, KindReturn}
}

// ParseKind maps a kind name back to its Kind. Matching ignores case.
func ParseKind(name string) (Kind, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}
