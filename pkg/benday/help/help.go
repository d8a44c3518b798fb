// Package help provides topic-based documentation for block types, the
// expression operators and the value rules, shared by the CLI
// (`blocks describe`), the REPL (`:help`) and the server (`/help/{topic}`).
package help

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/sambeau/benday/pkg/benday/blocks"
	"github.com/sambeau/benday/pkg/benday/errors"
	"github.com/sambeau/benday/pkg/benday/evaluator"
	"github.com/sambeau/benday/pkg/benday/fuzzy"
)

// TopicResult represents the help output for a topic
type TopicResult struct {
	Kind        string         `json:"kind"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Slots       []string       `json:"slots,omitempty"`
	Sequences   []string       `json:"sequences,omitempty"`
	Notes       []string       `json:"notes,omitempty"`
	Example     string         `json:"example,omitempty"`
	Operators   []OperatorInfo `json:"operators,omitempty"`
	Topics      []string       `json:"topics,omitempty"`
}

// OperatorInfo describes one expression operator
type OperatorInfo struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
}

// Result kinds
const (
	KindBlock     = "block"
	KindBlockList = "block-list"
	KindOperators = "operator-list"
	KindGuide     = "guide"
)

type blockDoc struct {
	slots     []string
	sequences []string
	notes     []string
	example   string
}

var blockDocs = map[blocks.Kind]blockDoc{
	blocks.KindSequence: {
		sequences: []string{"the blocks to run, top to bottom"},
		notes: []string{
			"A return anywhere inside stops the whole program, not just the sequence.",
		},
		example: "- sequence:\n    - print: one\n    - print: two",
	},
	blocks.KindIfElse: {
		slots:     []string{"condition (one per if and elif branch)"},
		sequences: []string{"one body per branch", "else body (optional)"},
		notes: []string{
			"Conditions are checked in order; only the first true branch runs.",
			"Add branches with elif and the else body with else in the editor.",
		},
		example: "- if: \"{x} > 3\"\n  then:\n    - print: big\n  else:\n    - print: small",
	},
	blocks.KindWhile: {
		slots:     []string{"condition"},
		sequences: []string{"body"},
		notes: []string{
			"A do-while loop runs its body once before the first check.",
			fmt.Sprintf("A loop stops on its own after %d iterations and reports a notice.", evaluator.MaxIterations),
		},
		example: "- while: \"{i} < 3\"\n  do:\n    - assign: i\n      value: \"{i} + 1\"",
	},
	blocks.KindAssign: {
		slots: []string{"value"},
		notes: []string{
			fmt.Sprintf("An assignment with no name stores into the variable %q.", blocks.UnnamedVariable),
			"Variables are global and keep their values between runs until reset.",
		},
		example: "- assign: x\n  value: \"2 + 3\"",
	},
	blocks.KindPrint: {
		slots:   []string{"value"},
		notes:   []string{"An empty slot prints None."},
		example: "- print: \"x is {x}\"",
	},
	blocks.KindReturn: {
		slots: []string{"value"},
		notes: []string{
			"Inside a slot, a return block just gives its value to the slot.",
		},
		example: "- return: \"{x} * 2\"",
	},
}

var operatorDocs = []OperatorInfo{
	{"+", "addition"},
	{"-", "subtraction"},
	{"*", "multiplication"},
	{"/", "division; dividing by zero stops the program"},
	{">", "greater than; gives True or False"},
	{"<", "less than; gives True or False"},
}

var guides = map[string]*TopicResult{
	"values": {
		Kind:        KindGuide,
		Name:        "values",
		Description: "How slot text becomes a value.",
		Notes: []string{
			"Each {name} in a slot is replaced by the value of the variable name, innermost braces first.",
			"If the result is numbers separated by operators with spaces around them, it is evaluated; otherwise it stays text.",
			"Expressions are evaluated strictly left to right: 2 + 3 * 4 is 20.",
			"Whole-number results are integers; others are floats.",
			"False, 0, empty text, the text false and None count as false in conditions. Everything else is true.",
		},
		Example: "- assign: x\n  value: \"5\"\n- print: \"{x} + 1\"",
	},
	"paths": {
		Kind:        KindGuide,
		Name:        "paths",
		Description: "How blocks are addressed inside a program.",
		Notes: []string{
			"A path is a list of steps from the root, separated by /.",
			"A number n steps into slot n of the current block.",
			"A pair (s,e) steps into element e of sequence s.",
			"The empty path (or /) is the root block itself.",
		},
		Example: "(0,1)/(0,0)   first block in the body of the second block",
	},
}

// DescribeTopic returns help information for the given topic: a block type
// (if, while, ...), "blocks", "operators", or one of the guides.
func DescribeTopic(topic string) (*TopicResult, error) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return nil, fmt.Errorf("no topic specified (try: %s)", strings.Join(Topics(), ", "))
	}

	if kind, ok := blocks.ParseKind(topic); ok {
		return describeBlock(kind), nil
	}

	switch topic {
	case "blocks":
		return describeBlocks(), nil
	case "operators":
		return &TopicResult{
			Kind:        KindOperators,
			Name:        "operators",
			Description: "Operators of the expression language. There is no precedence.",
			Operators:   operatorDocs,
		}, nil
	}

	if g, ok := guides[topic]; ok {
		return g, nil
	}

	return nil, unknownTopicError(topic)
}

// Topics lists every topic name
func Topics() []string {
	var topics []string
	for _, k := range blocks.Kinds() {
		topics = append(topics, k.String())
	}
	topics = append(topics, "blocks", "operators")
	for name := range guides {
		topics = append(topics, name)
	}
	sort.Strings(topics[len(blocks.Kinds())+2:])
	return topics
}

func describeBlock(kind blocks.Kind) *TopicResult {
	doc, ok := blockDocs[kind]
	if !ok {
		panic("help: undocumented kind " + kind.String())
	}
	return &TopicResult{
		Kind:        KindBlock,
		Name:        kind.String(),
		Description: kind.Describe(),
		Slots:       doc.slots,
		Sequences:   doc.sequences,
		Notes:       doc.notes,
		Example:     doc.example,
	}
}

func describeBlocks() *TopicResult {
	result := &TopicResult{
		Kind:        KindBlockList,
		Name:        "blocks",
		Description: "Every block type.",
	}
	for _, k := range blocks.Kinds() {
		result.Topics = append(result.Topics, k.String())
		result.Notes = append(result.Notes, k.String()+": "+k.Describe())
	}
	return result
}

func unknownTopicError(topic string) error {
	topics := Topics()
	suggestions := fuzzy.Find(topics, topic)
	if len(suggestions) > 3 {
		suggestions = suggestions[:3]
	}
	if closest := errors.FindClosestMatch(topic, topics); closest != "" && !slices.Contains(suggestions, closest) {
		suggestions = append([]string{closest}, suggestions...)
	}

	if len(suggestions) > 0 {
		return fmt.Errorf("unknown topic: %s\nDid you mean: %s?", topic, strings.Join(suggestions, ", "))
	}
	return fmt.Errorf("unknown topic: %s\nTry: %s", topic, strings.Join(topics, ", "))
}
