package format

import (
	"strings"
)

// Printer manages indentation and output
type Printer struct {
	output  strings.Builder
	indent  int
	linePos int
}

// NewPrinter creates a new Printer instance
func NewPrinter() *Printer {
	return &Printer{}
}

// String returns the formatted output
func (p *Printer) String() string {
	return p.output.String()
}

// Reset clears the printer state for reuse
func (p *Printer) Reset() {
	p.output.Reset()
	p.indent = 0
	p.linePos = 0
}

func (p *Printer) write(s string) {
	p.output.WriteString(s)
	if idx := strings.LastIndex(s, "\n"); idx >= 0 {
		p.linePos = len(s) - idx - 1
	} else {
		p.linePos += len(s)
	}
}

// line writes one indented line
func (p *Printer) line(s string) {
	p.writeIndent()
	p.write(s)
	p.newline()
}

func (p *Printer) newline() {
	p.output.WriteString("\n")
	p.linePos = 0
}

func (p *Printer) writeIndent() {
	p.write(strings.Repeat(IndentString, p.indent))
}

func (p *Printer) indentInc() {
	p.indent++
}

func (p *Printer) indentDec() {
	if p.indent > 0 {
		p.indent--
	}
}

// fitsInThreshold checks if a string fits within the threshold from the
// current indentation
func (p *Printer) fitsInThreshold(s string, threshold int) bool {
	if strings.Contains(s, "\n") {
		return false
	}
	return p.indent*IndentWidth+len(s) <= threshold
}
