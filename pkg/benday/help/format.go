package help

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkParser "github.com/yuin/goldmark/parser"
)

// FormatText formats a TopicResult for terminal output with the given width
func FormatText(result *TopicResult, width int) string {
	if width <= 0 {
		width = 80
	}

	var sb strings.Builder
	switch result.Kind {
	case KindBlock:
		fmt.Fprintf(&sb, "Block: %s\n", result.Name)
	case KindBlockList:
		sb.WriteString("Blocks\n")
	case KindOperators:
		sb.WriteString("Operators\n")
	case KindGuide:
		fmt.Fprintf(&sb, "Guide: %s\n", result.Name)
	default:
		fmt.Fprintf(&sb, "Unknown result kind: %s\n", result.Kind)
		return sb.String()
	}

	if result.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(wrap(result.Description, width, ""))
	}
	writeList(&sb, "Slots", result.Slots, width)
	writeList(&sb, "Sequences", result.Sequences, width)

	if len(result.Operators) > 0 {
		sb.WriteString("\n")
		for _, op := range result.Operators {
			fmt.Fprintf(&sb, "  %-3s %s\n", op.Symbol, op.Description)
		}
	}

	writeList(&sb, "Notes", result.Notes, width)

	if result.Example != "" {
		sb.WriteString("\nExample:\n")
		for _, line := range strings.Split(result.Example, "\n") {
			sb.WriteString("  ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string, width int) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", title)
	for _, item := range items {
		sb.WriteString(wrap("- "+item, width, "    "))
	}
}

// wrap breaks text into lines of at most width columns. Continuation lines
// get the indent.
func wrap(text string, width int, indent string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return "\n"
	}
	var sb strings.Builder
	line := "  " + words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			sb.WriteString(line)
			sb.WriteString("\n")
			line = indent + w
			continue
		}
		line += " " + w
	}
	sb.WriteString(line)
	sb.WriteString("\n")
	return sb.String()
}

// FormatJSON formats a TopicResult as JSON
func FormatJSON(result *TopicResult) ([]byte, error) {
	return json.MarshalIndent(result, "", "  ")
}

// Markdown renders a TopicResult as a markdown document
func Markdown(result *TopicResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", result.Name)
	if result.Description != "" {
		sb.WriteString(result.Description)
		sb.WriteString("\n\n")
	}

	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "## %s\n\n", title)
		for _, item := range items {
			fmt.Fprintf(&sb, "- %s\n", item)
		}
		sb.WriteString("\n")
	}
	section("Slots", result.Slots)
	section("Sequences", result.Sequences)

	if len(result.Operators) > 0 {
		sb.WriteString("| Operator | Meaning |\n| --- | --- |\n")
		for _, op := range result.Operators {
			fmt.Fprintf(&sb, "| `%s` | %s |\n", op.Symbol, op.Description)
		}
		sb.WriteString("\n")
	}

	section("Notes", result.Notes)

	if result.Example != "" {
		fmt.Fprintf(&sb, "## Example\n\n```yaml\n%s\n```\n", result.Example)
	}
	return sb.String()
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(goldmarkParser.WithAutoHeadingID()),
)

// HTML renders a TopicResult as an HTML fragment
func HTML(result *TopicResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(result)), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
