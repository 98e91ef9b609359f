package object

import (
	"context"
	"go/token"
	"io"
)

// BuiltinContext provides what a special form needs to run. The evaluator
// builds one per call, bound to the caller's context and environment.
type BuiltinContext struct {
	Context context.Context
	Stdout  io.Writer
	Fset    *token.FileSet
	Env     *Environment

	// Eval evaluates node in Env.
	Eval func(node Node) (Result, error)
	// NewError creates an error carrying the current call stack.
	NewError func(kind error, node Node, format string, args ...any) *Error
}
