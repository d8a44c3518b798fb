package repl

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/sambeau/benday/pkg/benday/benday"
	"github.com/sambeau/benday/pkg/benday/blocks"
	"github.com/sambeau/benday/pkg/benday/errors"
	"github.com/sambeau/benday/pkg/benday/evaluator"
	"github.com/sambeau/benday/pkg/benday/format"
	"github.com/sambeau/benday/pkg/benday/fuzzy"
	"github.com/sambeau/benday/pkg/benday/help"
	"github.com/sambeau/benday/pkg/benday/program"
)

// command is one editor command. args is the rest of the line after the
// command name, split on spaces.
type command struct {
	usage string
	about string
	run   func(e *Editor, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"add":      {"add <path> <type> [text]", "insert a new block at path; the type may be abbreviated", (*Editor).add},
		"set":      {"set <path> [text]", "set the text of the slot at path", (*Editor).set},
		"name":     {"name <path> <name>", "rename the variable of an assign block", (*Editor).name},
		"rm":       {"rm <path>", "remove the block at path", (*Editor).remove},
		"cp":       {"cp <path>", "copy the block at path to just below it", (*Editor).copy},
		"mv":       {"mv <from> <to>", "move a block to another place", (*Editor).move},
		"elif":     {"elif <path> [after]", "add an elif branch to an if block", (*Editor).elif},
		"unelif":   {"unelif <path> <branch>", "remove an elif branch", (*Editor).unelif},
		"else":     {"else <path>", "turn the else branch of an if block on or off", (*Editor).toggleElse},
		"dowhile":  {"dowhile <path>", "switch a while block between while and do-while", (*Editor).toggleDoWhile},
		"describe": {"describe <path>", "explain the block at path", (*Editor).describe},
		"find":     {"find <query>", "list block types matching query", (*Editor).find},
		"show":     {"show", "print the block tree with paths", (*Editor).show},
		"ast":      {"ast", "print the program the tree runs as", (*Editor).showAST},
		"run":      {"run", "run the program", (*Editor).run},
		"vars":     {"vars", "list variables", (*Editor).vars},
		"reset":    {"reset", "forget every variable", (*Editor).reset},
		"clear":    {"clear", "start an empty program", (*Editor).clear},
		"save":     {"save [file]", "write the program to a YAML file", (*Editor).save},
		"load":     {"load [file]", "read a program from a YAML file", (*Editor).load},
		"help":     {"help [topic]", "list commands, or describe a block type or guide", (*Editor).help},
		"exit":     {"exit", "leave the editor", nil},
	}
}

// commandNames returns the editor commands in sorted order.
func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func kindNames() []string {
	var names []string
	for _, k := range blocks.Kinds() {
		names = append(names, k.String())
	}
	return names
}

// Editor holds a program being built one command at a time.
type Editor struct {
	root    *blocks.Block
	session *benday.Session
	out     io.Writer
	file    string
}

// NewEditor creates an editor with an empty program. Print output and
// diagnostics go to out unless opts say otherwise.
func NewEditor(out io.Writer, opts ...benday.Option) *Editor {
	opts = append([]benday.Option{
		benday.WithLogger(benday.WriterLogger(out)),
		benday.WithReporter(benday.WriterReporter(out)),
	}, opts...)
	return &Editor{
		root:    blocks.New(blocks.KindSequence),
		session: benday.NewSession(opts...),
		out:     out,
	}
}

// Root returns the program's root sequence.
func (e *Editor) Root() *blocks.Block { return e.root }

// File returns the file the program was last loaded from or saved to.
func (e *Editor) File() string { return e.file }

// Exec runs one command line. It reports true when the editor should quit.
func (e *Editor) Exec(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name := strings.TrimPrefix(fields[0], ":")
	if name == "exit" || name == "quit" {
		return true, nil
	}
	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("unknown command: %s (type help for commands)", name)
	}
	return false, cmd.run(e, fields[1:])
}

func usage(name string) error {
	return fmt.Errorf("usage: %s", commands[name].usage)
}

func (e *Editor) path(text string) (blocks.Path, error) {
	return blocks.ParsePath(text)
}

func (e *Editor) blockAt(text string) (*blocks.Block, error) {
	p, err := e.path(text)
	if err != nil {
		return nil, err
	}
	return blocks.LocateBlock(e.root, p)
}

// pickKind resolves a possibly abbreviated block type.
func pickKind(query string) (blocks.Kind, error) {
	if k, ok := blocks.ParseKind(query); ok {
		return k, nil
	}
	name, ok := fuzzy.Best(kindNames(), query)
	if !ok {
		return 0, fmt.Errorf("no block type matches %q (types: %s)", query, strings.Join(kindNames(), ", "))
	}
	k, _ := blocks.ParseKind(name)
	return k, nil
}

func (e *Editor) add(args []string) error {
	if len(args) < 2 {
		return usage("add")
	}
	p, err := e.path(args[0])
	if err != nil {
		return err
	}
	kind, err := pickKind(args[1])
	if err != nil {
		return err
	}

	b := blocks.New(kind)
	text := strings.Join(args[2:], " ")
	if kind == blocks.KindAssign {
		if name, value, ok := strings.Cut(text, "="); ok {
			b.SetName(strings.TrimSpace(name))
			text = strings.TrimSpace(value)
		}
	}
	if text != "" && len(b.Slots()) > 0 {
		slot, _ := b.Slot(0)
		slot.SetText(text)
	}

	if _, err := blocks.InsertAt(e.root, p, b); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "added %s at %s\n", b, display(p))
	return nil
}

func (e *Editor) set(args []string) error {
	if len(args) < 1 {
		return usage("set")
	}
	p, err := e.path(args[0])
	if err != nil {
		return err
	}
	_, err = blocks.SetTextAt(e.root, p, strings.Join(args[1:], " "))
	return err
}

func (e *Editor) name(args []string) error {
	if len(args) != 2 {
		return usage("name")
	}
	b, err := e.blockAt(args[0])
	if err != nil {
		return err
	}
	return b.SetName(args[1])
}

func (e *Editor) remove(args []string) error {
	if len(args) != 1 {
		return usage("rm")
	}
	p, err := e.path(args[0])
	if err != nil {
		return err
	}
	b, _, err := blocks.RemoveAt(e.root, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "removed %s\n", b)
	return nil
}

func (e *Editor) copy(args []string) error {
	if len(args) != 1 {
		return usage("cp")
	}
	p, err := e.path(args[0])
	if err != nil {
		return err
	}
	dest, err := blocks.CopyAt(e.root, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "copied to %s\n", display(dest))
	return nil
}

func (e *Editor) move(args []string) error {
	if len(args) != 2 {
		return usage("mv")
	}
	from, err := e.path(args[0])
	if err != nil {
		return err
	}
	to, err := e.path(args[1])
	if err != nil {
		return err
	}
	dest, err := blocks.MoveAt(e.root, from, to)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "moved to %s\n", display(dest))
	return nil
}

func (e *Editor) elif(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("elif")
	}
	b, err := e.blockAt(args[0])
	if err != nil {
		return err
	}
	after := len(b.Slots()) - 1
	if len(args) == 2 {
		if after, err = strconv.Atoi(args[1]); err != nil {
			return usage("elif")
		}
	}
	_, err = b.AddElif(after)
	return err
}

func (e *Editor) unelif(args []string) error {
	if len(args) != 2 {
		return usage("unelif")
	}
	b, err := e.blockAt(args[0])
	if err != nil {
		return err
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return usage("unelif")
	}
	_, err = b.RemoveElif(index)
	return err
}

func (e *Editor) toggleElse(args []string) error {
	if len(args) != 1 {
		return usage("else")
	}
	b, err := e.blockAt(args[0])
	if err != nil {
		return err
	}
	if _, err := b.ToggleElse(); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "else %s\n", onOff(b.HasElse()))
	return nil
}

func (e *Editor) toggleDoWhile(args []string) error {
	if len(args) != 1 {
		return usage("dowhile")
	}
	b, err := e.blockAt(args[0])
	if err != nil {
		return err
	}
	if _, err := b.ToggleDoWhile(); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "do-while %s\n", onOff(b.DoWhile()))
	return nil
}

func (e *Editor) describe(args []string) error {
	if len(args) != 1 {
		return usage("describe")
	}
	b, err := e.blockAt(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s: %s\n", b, b.Kind().Describe())
	fmt.Fprintf(e.out, "runs as: %s\n", b.ToAST())
	return nil
}

func (e *Editor) find(args []string) error {
	for _, name := range fuzzy.Find(kindNames(), strings.Join(args, "")) {
		k, _ := blocks.ParseKind(name)
		fmt.Fprintf(e.out, "%-10s %s\n", name, k.Describe())
	}
	return nil
}

func (e *Editor) show(args []string) error {
	io.WriteString(e.out, format.FormatBlocks(e.root))
	return nil
}

func (e *Editor) showAST(args []string) error {
	io.WriteString(e.out, format.FormatAST(blocks.ToAST(e.root)))
	return nil
}

func (e *Editor) run(args []string) error {
	result, err := e.session.Run(context.Background(), e.root)
	if err != nil {
		if _, ok := err.(*errors.BendayError); ok {
			// already reported by the session
			return nil
		}
		return err
	}
	fmt.Fprintf(e.out, "=> %s\n", format.FormatValue(result))
	return nil
}

func (e *Editor) vars(args []string) error {
	vars := e.session.Variables()
	io.WriteString(e.out, format.FormatVariables(e.session.Names(), func(name string) (evaluator.Object, bool) {
		v, ok := vars[name]
		return v, ok
	}))
	return nil
}

func (e *Editor) reset(args []string) error {
	e.session.Reset()
	return nil
}

func (e *Editor) clear(args []string) error {
	e.root = blocks.New(blocks.KindSequence)
	return nil
}

func (e *Editor) fileArg(name string, args []string) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case len(args) == 0 && e.file != "":
		return e.file, nil
	default:
		return "", usage(name)
	}
}

func (e *Editor) save(args []string) error {
	file, err := e.fileArg("save", args)
	if err != nil {
		return err
	}
	if err := program.Save(file, e.root); err != nil {
		return err
	}
	e.file = file
	fmt.Fprintf(e.out, "saved %s\n", file)
	return nil
}

func (e *Editor) load(args []string) error {
	file, err := e.fileArg("load", args)
	if err != nil {
		return err
	}
	return e.Load(file)
}

// Load replaces the program with the one in file.
func (e *Editor) Load(file string) error {
	root, err := program.Load(file)
	if err != nil {
		return err
	}
	e.root = root
	e.file = file
	return nil
}

func (e *Editor) help(args []string) error {
	if len(args) == 0 {
		for _, name := range commandNames() {
			cmd := commands[name]
			fmt.Fprintf(e.out, "  %-26s %s\n", cmd.usage, cmd.about)
		}
		fmt.Fprintln(e.out)
		fmt.Fprintln(e.out, "Paths look like (0,1)/0: (sequence,element) steps into a sequence,")
		fmt.Fprintln(e.out, "plain numbers into a slot. Type 'show' to see every path.")
		return nil
	}
	result, err := help.DescribeTopic(strings.Join(args, " "))
	if err != nil {
		return err
	}
	io.WriteString(e.out, help.FormatText(result, 80))
	return nil
}

func display(p blocks.Path) string {
	if len(p) == 0 {
		return "/"
	}
	return p.String()
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
