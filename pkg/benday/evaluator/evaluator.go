// Package evaluator runs the execution tree produced from a block program.
//
// Evaluation is a plain recursive walk. Runtime errors travel up as *Error
// objects and a return block's value travels up as a *ReturnValue until Run
// unwraps it. Print output and diagnostics go to the Logger and Reporter held
// by the Environment.
package evaluator

import (
	"strings"

	"github.com/sambeau/benday/pkg/benday/ast"
	"github.com/sambeau/benday/pkg/benday/errors"
	"github.com/sambeau/benday/pkg/benday/expr"
)

// MaxIterations caps how many times a loop checks its condition and runs its
// body. A do-while's first pass is not counted.
const MaxIterations = 99

// MaxInterpolations caps substitutions in one slot so a variable holding its
// own reference cannot hang a run.
const MaxInterpolations = 1000

// Run evaluates a whole program. A returned value is unwrapped, and a runtime
// error is reported once before being returned.
func Run(node ast.Node, env *Environment) Object {
	result := unwrapReturnValue(Eval(node, env))
	if errObj, ok := result.(*Error); ok {
		env.report(errObj.Err)
	}
	return result
}

// Eval evaluates one node.
func Eval(node ast.Node, env *Environment) Object {
	switch node := node.(type) {
	case *ast.Value:
		return evalValue(node, env)

	case *ast.Sequence:
		return evalSequence(node, env)

	case *ast.IfElse:
		return evalIfElse(node, env)

	case *ast.While:
		return evalWhile(node, env)

	case *ast.Assign:
		val := evalSlot(node.Value, env)
		if isError(val) {
			return val
		}
		env.Set(node.Name, val)
		return NONE

	case *ast.Print:
		val := evalSlot(node.Value, env)
		if isError(val) {
			return val
		}
		env.emit(val)
		return NONE

	case *ast.Return:
		val := evalSlot(node.Value, env)
		if isError(val) {
			return val
		}
		return &ReturnValue{Value: val}

	default:
		panic("evaluator: unknown node " + node.String())
	}
}

// evalSlot evaluates a node used as a value. A return block sitting in a slot
// gives its value to the slot rather than ending the program.
func evalSlot(node ast.Node, env *Environment) Object {
	return unwrapReturnValue(Eval(node, env))
}

func evalSequence(seq *ast.Sequence, env *Environment) Object {
	for _, el := range seq.Elements {
		result := Eval(el, env)
		if rt := result.Type(); rt == RETURN_OBJ || rt == ERROR_OBJ {
			return result
		}
	}
	return NONE
}

func evalIfElse(node *ast.IfElse, env *Environment) Object {
	cond := evalSlot(node.Condition, env)
	if isError(cond) {
		return cond
	}
	if IsTruthy(cond) {
		return evalSequence(node.Body, env)
	}

	for _, branch := range node.Elifs {
		cond := evalSlot(branch.Condition, env)
		if isError(cond) {
			return cond
		}
		if IsTruthy(cond) {
			return evalSequence(branch.Body, env)
		}
	}

	if node.Else != nil {
		return evalSequence(node.Else, env)
	}
	return NONE
}

func evalWhile(node *ast.While, env *Environment) Object {
	if node.DoWhile {
		result := evalSequence(node.Body, env)
		if rt := result.Type(); rt == RETURN_OBJ || rt == ERROR_OBJ {
			return result
		}
	}

	for i := 0; ; i++ {
		cond := evalSlot(node.Condition, env)
		if isError(cond) {
			return cond
		}
		if !IsTruthy(cond) {
			return NONE
		}
		if i >= MaxIterations {
			env.report(errors.New("LOOP-0001", map[string]any{"Limit": MaxIterations}))
			return NONE
		}
		result := evalSequence(node.Body, env)
		if rt := result.Type(); rt == RETURN_OBJ || rt == ERROR_OBJ {
			return result
		}
	}
}

func evalValue(node *ast.Value, env *Environment) Object {
	if node.Absent {
		return NONE
	}

	text, err := Interpolate(node.Text, env)
	if err != nil {
		return &Error{Err: err}
	}

	if !expr.IsParsable(text) {
		return &String{Value: text}
	}
	result, evalErr := expr.Eval(text)
	if evalErr != nil {
		if be, ok := evalErr.(*errors.BendayError); ok {
			return &Error{Err: be}
		}
		return &Error{Err: errors.New("ARITH-0002", map[string]any{"Expr": text})}
	}
	return fromResult(result)
}

// Interpolate replaces each {name} with the current value of name, innermost
// and left-most first, until no complete pair of braces is left. Unbalanced
// braces are kept as they are.
func Interpolate(text string, env *Environment) (string, *errors.BendayError) {
	original := text
	for n := 0; ; n++ {
		start, end, ok := innermostPair(text)
		if !ok {
			return text, nil
		}
		if n >= MaxInterpolations {
			return "", errors.New("INTERP-0001", map[string]any{"Text": original, "Limit": MaxInterpolations})
		}

		name := text[start+1 : end]
		val, found := env.Get(name)
		if !found {
			return "", errors.NewUnknownVariable(name, env.Names())
		}
		text = text[:start] + val.Inspect() + text[end+1:]
	}
}

// innermostPair finds the first '}' preceded by a '{' and the nearest such
// '{'. Nothing lies between them but the name.
func innermostPair(text string) (start, end int, ok bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != '}' {
			continue
		}
		if j := strings.LastIndexByte(text[:i], '{'); j >= 0 {
			return j, i, true
		}
	}
	return 0, 0, false
}
