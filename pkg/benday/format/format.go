package format

import (
	"strconv"
	"strings"

	"github.com/sambeau/benday/pkg/benday/evaluator"
)

// FormatValue formats a runtime value for display. Strings are quoted so
// that "5" and 5 read differently.
func FormatValue(obj evaluator.Object) string {
	if obj == nil {
		return evaluator.NoneLiteral
	}
	switch obj := obj.(type) {
	case *evaluator.String:
		return strconv.Quote(obj.Value)
	case *evaluator.ReturnValue:
		return FormatValue(obj.Value)
	case *evaluator.Error:
		return obj.Err.PrettyString()
	default:
		return obj.Inspect()
	}
}

// FormatVariables lists variables one per line as name = value, in the
// order given.
func FormatVariables(names []string, lookup func(string) (evaluator.Object, bool)) string {
	var sb strings.Builder
	for _, name := range names {
		val, ok := lookup(name)
		if !ok {
			continue
		}
		sb.WriteString(name)
		sb.WriteString(" = ")
		sb.WriteString(FormatValue(val))
		sb.WriteByte('\n')
	}
	return sb.String()
}
