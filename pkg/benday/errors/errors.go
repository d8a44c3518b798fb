// Package errors provides structured error types for Benday programs.
//
// BendayError is the single diagnostic type shared by the block tree, the
// interpreter and the host tools. Errors are built from a code catalog so the
// same condition always renders the same message, and carry enough metadata
// (class, code, hierarchy path, template data) for display and JSON output.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// ErrorClass categorizes errors for filtering and templating.
type ErrorClass string

const (
	ClassPath       ErrorClass = "path"       // Hierarchy path traversal
	ClassBlock      ErrorClass = "block"      // Block structure contract
	ClassUndefined  ErrorClass = "undefined"  // Unknown variable
	ClassArithmetic ErrorClass = "arithmetic" // Expression evaluation
	ClassInterp     ErrorClass = "interpolation"
	ClassProgram    ErrorClass = "program" // Program file decoding
	ClassNotice     ErrorClass = "notice"  // Reported, not fatal
)

// BendayError represents any diagnostic raised while editing or running a
// block program.
type BendayError struct {
	Class   ErrorClass     `json:"class"`           // Error category
	Code    string         `json:"code"`            // Error code (e.g., "UNDEF-0001")
	Message string         `json:"message"`         // Human-readable message
	Hints   []string       `json:"hints,omitempty"` // Suggestions for fixing
	Path    string         `json:"path,omitempty"`  // Hierarchy path (if known)
	File    string         `json:"file,omitempty"`  // Program file (if known)
	Data    map[string]any `json:"data,omitempty"`  // Template variables
}

// Error implements the error interface.
func (e *BendayError) Error() string {
	return e.String()
}

// Is matches the exported sentinels: by code, or by class when the sentinel
// has no code.
func (e *BendayError) Is(target error) bool {
	t, ok := target.(*BendayError)
	if !ok {
		return false
	}
	if t.Code == "" {
		return t.Class != "" && t.Class == e.Class
	}
	return t.Code == e.Code
}

// String returns a formatted string representation of the error.
func (e *BendayError) String() string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	if e.Path != "" {
		sb.WriteString(fmt.Sprintf("at %s: ", e.Path))
	}

	sb.WriteString(e.Message)

	for _, hint := range e.Hints {
		sb.WriteString("\n  ")
		sb.WriteString(hint)
	}

	return sb.String()
}

// PrettyString returns a multi-line formatted string for display.
func (e *BendayError) PrettyString() string {
	var sb strings.Builder

	switch e.Class {
	case ClassNotice:
		sb.WriteString("Notice")
	case ClassPath, ClassBlock:
		sb.WriteString("Editor error")
	case ClassProgram:
		sb.WriteString("Program error")
	default:
		sb.WriteString("Runtime error")
	}

	if e.File != "" {
		sb.WriteString(":\n  in: ")
		sb.WriteString(e.File)
		if e.Path != "" {
			sb.WriteString("\n  at: ")
			sb.WriteString(e.Path)
		}
		sb.WriteString("\n  ")
	} else if e.Path != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Path)
		sb.WriteString("\n  ")
	} else {
		sb.WriteString(":\n  ")
	}

	sb.WriteString(e.Message)

	for i, hint := range e.Hints {
		sb.WriteString("\n  ")
		if i == 0 {
			sb.WriteString("Hint: ")
		} else {
			sb.WriteString("  or: ")
		}
		sb.WriteString(hint)
	}

	return sb.String()
}

// ToJSON returns the error as JSON bytes.
func (e *BendayError) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// WithPath returns a copy of the error with the hierarchy path set.
func (e *BendayError) WithPath(path string) *BendayError {
	copy := *e
	copy.Path = path
	return &copy
}

// WithFile returns a copy of the error with the program file set.
func (e *BendayError) WithFile(file string) *BendayError {
	copy := *e
	copy.File = file
	return &copy
}

// IsNotice returns true for diagnostics that do not abort a run.
func (e *BendayError) IsNotice() bool {
	return e.Class == ClassNotice
}

// ErrorDef defines an error in the catalog.
type ErrorDef struct {
	Class    ErrorClass // Error category
	Template string     // Message template with {{.placeholders}}
	Hints    []string   // Hint templates (may use {{.placeholders}})
}

// ErrorCatalog maps error codes to their definitions.
var ErrorCatalog = map[string]ErrorDef{
	// Hierarchy paths (PATH-0xxx)
	"PATH-0001": {
		Class:    ClassPath,
		Template: "slot {{.Index}} out of range ({{.Count}} slots)",
	},
	"PATH-0002": {
		Class:    ClassPath,
		Template: "element ({{.Sequence}},{{.Element}}) out of range",
	},
	"PATH-0003": {
		Class:    ClassPath,
		Template: "{{.What}} holds no block",
	},
	"PATH-0004": {
		Class:    ClassPath,
		Template: "invalid path {{.Path}}: {{.Reason}}",
		Hints:    []string{"paths look like 0/(1,2)/3"},
	},
	"PATH-0005": {
		Class:    ClassPath,
		Template: "the root block has no container",
	},

	// Block structure (BLOCK-0xxx)
	"BLOCK-0001": {
		Class:    ClassBlock,
		Template: "no elif branch at {{.Index}}",
	},
	"BLOCK-0002": {
		Class:    ClassBlock,
		Template: "{{.Op}} is not supported by {{.Kind}} blocks",
	},
	"BLOCK-0003": {
		Class:    ClassBlock,
		Template: "{{.What}} already holds a block",
		Hints:    []string{"replace the block instead"},
	},
	"BLOCK-0004": {
		Class:    ClassBlock,
		Template: "sequence has no gap to fill",
	},
	"BLOCK-0005": {
		Class:    ClassBlock,
		Template: "cannot move a block into itself",
	},
	"BLOCK-0006": {
		Class:    ClassBlock,
		Template: "the block in {{.What}} can only be copied from a sequence",
	},

	// Variables (UNDEF-0xxx)
	"UNDEF-0001": {
		Class:    ClassUndefined,
		Template: "unknown variable '{{.Name}}'",
	},

	// Expressions (ARITH-0xxx)
	"ARITH-0001": {
		Class:    ClassArithmetic,
		Template: "division by zero in '{{.Expr}}'",
	},
	"ARITH-0002": {
		Class:    ClassArithmetic,
		Template: "'{{.Expr}}' is not an expression",
	},

	// Interpolation (INTERP-0xxx)
	"INTERP-0001": {
		Class:    ClassInterp,
		Template: "interpolation of '{{.Text}}' did not settle after {{.Limit}} substitutions",
		Hints:    []string{"a variable probably refers to itself"},
	},

	// Loops (LOOP-0xxx)
	"LOOP-0001": {
		Class:    ClassNotice,
		Template: "loop stopped after {{.Limit}} iterations",
	},

	// Program files (PROG-0xxx)
	"PROG-0001": {
		Class:    ClassProgram,
		Template: "cannot read program: {{.Reason}}",
	},
	"PROG-0002": {
		Class:    ClassProgram,
		Template: "unknown block type '{{.Type}}'",
	},
	"PROG-0003": {
		Class:    ClassProgram,
		Template: "malformed {{.Type}} block: {{.Reason}}",
	},
	"PROG-0004": {
		Class:    ClassProgram,
		Template: "run was not recorded: {{.Reason}}",
	},
}

// Sentinels for errors.Is matching against catalog codes.
var (
	ErrInvalidPath      = &BendayError{Class: ClassPath}
	ErrUnknownVariable  = &BendayError{Code: "UNDEF-0001"}
	ErrDivisionByZero   = &BendayError{Code: "ARITH-0001"}
	ErrBoundedIteration = &BendayError{Code: "LOOP-0001"}
)

// New creates a BendayError from the catalog.
// If the code is not found, creates a generic error with the message.
func New(code string, data map[string]any) *BendayError {
	def, ok := ErrorCatalog[code]
	if !ok {
		msg := code
		if data != nil {
			if m, ok := data["message"].(string); ok {
				msg = m
			}
		}
		return &BendayError{
			Class:   ClassBlock,
			Code:    code,
			Message: msg,
			Data:    data,
		}
	}

	msg := renderTemplate(def.Template, data)

	var hints []string
	for _, hintTmpl := range def.Hints {
		rendered := renderTemplate(hintTmpl, data)
		if rendered != "" {
			hints = append(hints, rendered)
		}
	}

	return &BendayError{
		Class:   def.Class,
		Code:    code,
		Message: msg,
		Hints:   hints,
		Data:    data,
	}
}

// IsPathError reports whether err is a hierarchy path error of any code.
func IsPathError(err error) bool {
	be, ok := err.(*BendayError)
	return ok && be.Class == ClassPath
}

// renderTemplate renders a Go template with the given data.
func renderTemplate(tmplStr string, data map[string]any) string {
	if data == nil {
		return tmplStr
	}

	tmpl, err := template.New("").Parse(tmplStr)
	if err != nil {
		return tmplStr
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return tmplStr
	}

	return buf.String()
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

// threshold allows more edits for longer names.
func threshold(input string) int {
	switch {
	case len(input) >= 7:
		return 3
	case len(input) >= 4:
		return 2
	default:
		return 1
	}
}

// FindClosestMatch finds the closest match to the given string from candidates.
// Returns the best match if the distance is within the threshold, otherwise empty string.
func FindClosestMatch(input string, candidates []string) string {
	if len(input) == 0 || len(candidates) == 0 {
		return ""
	}

	inputLower := strings.ToLower(input)

	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)

	var bestMatch string
	bestDistance := -1
	for _, candidate := range sorted {
		dist := levenshteinDistance(inputLower, strings.ToLower(candidate))
		if bestDistance == -1 || dist < bestDistance {
			bestDistance = dist
			bestMatch = candidate
		}
	}

	if bestDistance <= 0 || bestDistance > threshold(input) {
		return ""
	}
	return bestMatch
}

// NewUnknownVariable creates an unknown variable error, suggesting the
// closest defined name when one is near enough.
func NewUnknownVariable(name string, defined []string) *BendayError {
	err := New("UNDEF-0001", map[string]any{"Name": name})
	if suggestion := FindClosestMatch(name, defined); suggestion != "" {
		err.Hints = append(err.Hints, "Did you mean `"+suggestion+"`?")
	}
	return err
}
