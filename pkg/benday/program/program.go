// Package program reads and writes block programs as YAML files.
//
// A program file is a list of blocks, the contents of the root sequence:
//
//	- assign: x
//	  value: "5"
//	- if: "{x} > 3"
//	  then:
//	    - print: big
//	  elif:
//	    - if: "{x} > 1"
//	      then:
//	        - print: medium
//	  else:
//	    - print: small
//	- while: "{x} > 0"
//	  do_while: true
//	  do:
//	    - assign: x
//	      value: "{x} - 1"
//	- print:
//	    return: "{x}"
//
// A slot holds either text or a nested block written as a mapping. A missing
// or null slot is empty. Gaps are editor state and are never written.
package program

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sambeau/benday/pkg/benday/blocks"
	"github.com/sambeau/benday/pkg/benday/errors"
)

// Keys used in program files.
const (
	keyAssign   = "assign"
	keyValue    = "value"
	keyPrint    = "print"
	keyReturn   = "return"
	keyIf       = "if"
	keyThen     = "then"
	keyElif     = "elif"
	keyElse     = "else"
	keyWhile    = "while"
	keyDo       = "do"
	keyDoWhile  = "do_while"
	keySequence = "sequence"
)

// typeKeys are the keys that name a block's type, in lookup order.
var typeKeys = []string{keyAssign, keyPrint, keyReturn, keyIf, keyWhile, keySequence}

// Decode parses a program file into a root sequence block.
func Decode(data []byte) (*blocks.Block, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.New("PROG-0001", map[string]any{"Reason": err.Error()})
	}

	root := blocks.New(blocks.KindSequence)
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return root, nil
	}

	top := doc.Content[0]
	switch top.Kind {
	case yaml.SequenceNode:
		seq, _ := root.Sequence(0)
		if err := decodeList(top, seq, blocks.Path{}, 0); err != nil {
			return nil, err
		}
		return root, nil
	case yaml.MappingNode:
		b, err := decodeBlock(top, blocks.Path{})
		if err != nil {
			return nil, err
		}
		if b.Kind() == blocks.KindSequence {
			return b, nil
		}
		return blocks.NewSequence(b), nil
	case yaml.ScalarNode:
		if top.Tag == "!!null" {
			return root, nil
		}
	}
	return nil, errors.New("PROG-0001", map[string]any{
		"Reason": fmt.Sprintf("line %d: a program is a list of blocks", top.Line),
	})
}

// Load reads and decodes a program file.
func Load(path string) (*blocks.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("PROG-0001", map[string]any{"Reason": err.Error()}).WithFile(path)
	}
	root, err := Decode(data)
	if err != nil {
		if be, ok := err.(*errors.BendayError); ok {
			return nil, be.WithFile(path)
		}
		return nil, err
	}
	return root, nil
}

func decodeList(node *yaml.Node, seq *blocks.Sequence, parent blocks.Path, seqIndex int) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.SequenceNode {
		return malformed("sequence", parent, node, "expected a list of blocks")
	}
	for i, item := range node.Content {
		b, err := decodeBlock(item, parent.Child(blocks.AtElement(seqIndex, i)))
		if err != nil {
			return err
		}
		seq.Append(b)
	}
	return nil
}

func decodeBlock(node *yaml.Node, path blocks.Path) (*blocks.Block, error) {
	if node.Kind != yaml.MappingNode {
		return nil, malformed("block", path, node, "expected a mapping")
	}

	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		fields[node.Content[i].Value] = node.Content[i+1]
	}

	typeKey := ""
	for _, k := range typeKeys {
		if _, ok := fields[k]; ok {
			typeKey = k
			break
		}
	}
	if typeKey == "" {
		name := ""
		if len(node.Content) > 0 {
			name = node.Content[0].Value
		}
		return nil, errors.New("PROG-0002", map[string]any{"Type": name}).WithPath(path.String())
	}

	switch typeKey {
	case keyAssign:
		name := fields[keyAssign]
		if name.Kind != yaml.ScalarNode {
			return nil, malformed(typeKey, path, name, "the variable name must be text")
		}
		b := blocks.NewAssign(scalarText(name), "")
		return b, decodeSlot(b, 0, fields[keyValue], path)

	case keyPrint, keyReturn:
		b := blocks.New(blocks.KindPrint)
		if typeKey == keyReturn {
			b = blocks.New(blocks.KindReturn)
		}
		return b, decodeSlot(b, 0, fields[typeKey], path)

	case keyIf:
		return decodeIf(fields, path)

	case keyWhile:
		b := blocks.New(blocks.KindWhile)
		if err := decodeSlot(b, 0, fields[keyWhile], path); err != nil {
			return nil, err
		}
		if dw, ok := fields[keyDoWhile]; ok {
			var on bool
			if err := dw.Decode(&on); err != nil {
				return nil, malformed(typeKey, path, dw, "do_while must be true or false")
			}
			if on {
				b.ToggleDoWhile()
			}
		}
		seq, _ := b.Sequence(0)
		return b, decodeBody(fields[keyDo], seq, path, 0)

	case keySequence:
		b := blocks.New(blocks.KindSequence)
		seq, _ := b.Sequence(0)
		return b, decodeList(fields[keySequence], seq, path, 0)

	default:
		panic("program: unhandled block key " + typeKey)
	}
}

func decodeIf(fields map[string]*yaml.Node, path blocks.Path) (*blocks.Block, error) {
	b := blocks.New(blocks.KindIfElse)
	if err := decodeSlot(b, 0, fields[keyIf], path); err != nil {
		return nil, err
	}
	seq, _ := b.Sequence(0)
	if err := decodeBody(fields[keyThen], seq, path, 0); err != nil {
		return nil, err
	}

	if elifs, ok := fields[keyElif]; ok && elifs.Tag != "!!null" {
		if elifs.Kind != yaml.SequenceNode {
			return nil, malformed(keyIf, path, elifs, "elif must be a list of branches")
		}
		for i, branch := range elifs.Content {
			index := i + 1
			if branch.Kind != yaml.MappingNode {
				return nil, malformed(keyIf, path, branch, "each elif needs an if and a then")
			}
			b.AddElif(index - 1)
			var cond, body *yaml.Node
			for j := 0; j+1 < len(branch.Content); j += 2 {
				switch branch.Content[j].Value {
				case keyIf:
					cond = branch.Content[j+1]
				case keyThen:
					body = branch.Content[j+1]
				}
			}
			if err := decodeSlot(b, index, cond, path); err != nil {
				return nil, err
			}
			seq, _ := b.Sequence(index)
			if err := decodeBody(body, seq, path, index); err != nil {
				return nil, err
			}
		}
	}

	if els, ok := fields[keyElse]; ok {
		b.ToggleElse()
		seq, _ := b.Sequence(len(b.Slots()))
		if err := decodeBody(els, seq, path, len(b.Slots())); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func decodeBody(node *yaml.Node, seq *blocks.Sequence, path blocks.Path, seqIndex int) error {
	if node == nil {
		return nil
	}
	return decodeList(node, seq, path, seqIndex)
}

func decodeSlot(b *blocks.Block, index int, node *yaml.Node, path blocks.Path) error {
	if node == nil {
		return nil
	}
	slot, _ := b.Slot(index)
	switch node.Kind {
	case yaml.ScalarNode:
		slot.SetText(scalarText(node))
		return nil
	case yaml.MappingNode:
		inner, err := decodeBlock(node, path.Child(blocks.AtSlot(index)))
		if err != nil {
			return err
		}
		slot.SetBlock(inner)
		return nil
	default:
		return malformed(b.Kind().String(), path, node, "a slot holds text or one block")
	}
}

func scalarText(node *yaml.Node) string {
	if node.Tag == "!!null" {
		return ""
	}
	return node.Value
}

func malformed(typ string, path blocks.Path, node *yaml.Node, reason string) error {
	return errors.New("PROG-0003", map[string]any{
		"Type":   typ,
		"Reason": fmt.Sprintf("line %d: %s", node.Line, reason),
	}).WithPath(path.String())
}

// Encode writes root as a program file. A sequence root is written as a bare
// list; any other block is written on its own.
func Encode(root *blocks.Block) ([]byte, error) {
	var node *yaml.Node
	if root.Kind() == blocks.KindSequence {
		seq, _ := root.Sequence(0)
		node = encodeList(seq)
	} else {
		node = encodeBlock(root)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save encodes root and writes it to path.
func Save(path string, root *blocks.Block) error {
	data, err := Encode(root)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func encodeList(seq *blocks.Sequence) *yaml.Node {
	list := &yaml.Node{Kind: yaml.SequenceNode}
	for _, b := range seq.Blocks() {
		list.Content = append(list.Content, encodeBlock(b))
	}
	return list
}

func encodeBlock(b *blocks.Block) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, value *yaml.Node) {
		m.Content = append(m.Content, text(key), value)
	}
	slots := b.Slots()
	seqs := b.Sequences()

	switch b.Kind() {
	case blocks.KindSequence:
		add(keySequence, encodeList(seqs[0]))
	case blocks.KindAssign:
		add(keyAssign, text(b.Name()))
		add(keyValue, encodeSlot(slots[0]))
	case blocks.KindPrint:
		add(keyPrint, encodeSlot(slots[0]))
	case blocks.KindReturn:
		add(keyReturn, encodeSlot(slots[0]))
	case blocks.KindWhile:
		add(keyWhile, encodeSlot(slots[0]))
		if b.DoWhile() {
			add(keyDoWhile, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"})
		}
		add(keyDo, encodeList(seqs[0]))
	case blocks.KindIfElse:
		add(keyIf, encodeSlot(slots[0]))
		add(keyThen, encodeList(seqs[0]))
		if len(slots) > 1 {
			elifs := &yaml.Node{Kind: yaml.SequenceNode}
			for i := 1; i < len(slots); i++ {
				elifs.Content = append(elifs.Content, &yaml.Node{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						text(keyIf), encodeSlot(slots[i]),
						text(keyThen), encodeList(seqs[i]),
					},
				})
			}
			add(keyElif, elifs)
		}
		if b.HasElse() {
			add(keyElse, encodeList(seqs[len(seqs)-1]))
		}
	default:
		panic("program: unknown kind " + b.Kind().String())
	}
	return m
}

func encodeSlot(s *blocks.Slot) *yaml.Node {
	if s.HasBlock() {
		return encodeBlock(s.Block())
	}
	if s.IsEmpty() {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	return text(s.Text())
}

func text(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}
