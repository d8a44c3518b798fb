package evaluator

import (
	"strconv"
	"strings"

	"github.com/sambeau/benday/pkg/benday/errors"
	"github.com/sambeau/benday/pkg/benday/expr"
)

// ObjectType represents the type of runtime values
type ObjectType string

const (
	INTEGER_OBJ = "INTEGER"
	FLOAT_OBJ   = "FLOAT"
	BOOLEAN_OBJ = "BOOLEAN"
	STRING_OBJ  = "STRING"
	NONE_OBJ    = "NONE"
	RETURN_OBJ  = "RETURN_VALUE"
	ERROR_OBJ   = "ERROR"
)

// How None and booleans print and interpolate.
const (
	NoneLiteral  = "None"
	TrueLiteral  = "True"
	FalseLiteral = "False"
)

// Object represents all runtime values
type Object interface {
	Type() ObjectType
	Inspect() string
}

// Integer represents integer objects
type Integer struct {
	Value int64
}

func (i *Integer) Inspect() string  { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) Type() ObjectType { return INTEGER_OBJ }

// Float represents floating-point objects
type Float struct {
	Value float64
}

func (f *Float) Inspect() string  { return strconv.FormatFloat(f.Value, 'g', -1, 64) }
func (f *Float) Type() ObjectType { return FLOAT_OBJ }

// Boolean represents boolean objects
type Boolean struct {
	Value bool
}

func (b *Boolean) Inspect() string {
	if b.Value {
		return TrueLiteral
	}
	return FalseLiteral
}
func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }

// String represents text that is not an expression
type String struct {
	Value string
}

func (s *String) Inspect() string  { return s.Value }
func (s *String) Type() ObjectType { return STRING_OBJ }

// None is the result of an empty slot and of statements that produce nothing
type None struct{}

func (n *None) Inspect() string  { return NoneLiteral }
func (n *None) Type() ObjectType { return NONE_OBJ }

// ReturnValue wraps the value of a return block while it unwinds
type ReturnValue struct {
	Value Object
}

func (rv *ReturnValue) Type() ObjectType { return RETURN_OBJ }
func (rv *ReturnValue) Inspect() string  { return rv.Value.Inspect() }

// Error carries a run-aborting diagnostic through evaluation
type Error struct {
	Err *errors.BendayError
}

func (e *Error) Type() ObjectType { return ERROR_OBJ }
func (e *Error) Inspect() string  { return "ERROR: " + e.Err.Message }

var (
	NONE  = &None{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func nativeBoolToBooleanObject(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

func fromResult(r expr.Result) Object {
	switch r.Kind {
	case expr.Integer:
		return &Integer{Value: r.Int}
	case expr.Float:
		return &Float{Value: r.Float}
	case expr.Boolean:
		return nativeBoolToBooleanObject(r.Bool)
	default:
		panic("evaluator: unknown result kind " + r.Kind.String())
	}
}

func isError(obj Object) bool {
	if obj != nil {
		return obj.Type() == ERROR_OBJ
	}
	return false
}

func unwrapReturnValue(obj Object) Object {
	if returnValue, ok := obj.(*ReturnValue); ok {
		return returnValue.Value
	}
	return obj
}

// IsTruthy decides conditions. Numbers are true unless zero; text is true
// unless empty or "false" in any case; None is false.
func IsTruthy(obj Object) bool {
	switch obj := obj.(type) {
	case *Boolean:
		return obj.Value
	case *Integer:
		return obj.Value != 0
	case *Float:
		return obj.Value != 0
	case *String:
		return obj.Value != "" && !strings.EqualFold(obj.Value, FalseLiteral)
	case *None:
		return false
	case *ReturnValue:
		return IsTruthy(obj.Value)
	default:
		return false
	}
}
