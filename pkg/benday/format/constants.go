// Package format pretty-prints block trees, execution trees and runtime
// values for the CLI, the REPL and the server.
package format

// Indentation - tabs for nesting, matching gofmt
const (
	TabWidth     = 4
	IndentWidth  = TabWidth
	IndentString = "\t"
)

// MaxLineWidth is the target line length for inline slot blocks. Longer
// nested blocks are elided with "..."
const MaxLineWidth = 92

// PathColumn is the width reserved for the path column of an outline
const PathColumn = 16
