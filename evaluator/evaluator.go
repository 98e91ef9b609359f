// Package evaluator walks a flang syntax tree and computes its value.
//
// Every node is evaluated against an *object.Environment. A non-empty list
// is a call: its head is resolved to a callable and the remaining elements
// are handed to it unevaluated. Special forms decide what to evaluate;
// simple functions and lambdas get their arguments evaluated left to right.
package evaluator

import (
	"context"
	"go/token"
	"io"
	"log/slog"
	"os"

	"github.com/podhmo/flang/object"
)

// DefaultMaxDepth is the call depth used when Config.MaxDepth is zero.
const DefaultMaxDepth = 10000

// Evaluator is the core of the interpreter.
type Evaluator struct {
	fset     *token.FileSet
	sources  map[string][]byte
	stdout   io.Writer
	logger   *slog.Logger
	maxDepth int

	callStack []*object.CallFrame
}

// Config holds the dependencies of an Evaluator.
type Config struct {
	Fset *token.FileSet
	// Sources maps filenames to their content for error excerpts. The map
	// is shared, so files added later are visible to the evaluator.
	Sources  map[string][]byte
	Stdout   io.Writer
	Logger   *slog.Logger
	MaxDepth int
}

// New creates a new evaluator.
func New(cfg Config) *Evaluator {
	e := &Evaluator{
		fset:      cfg.Fset,
		sources:   cfg.Sources,
		stdout:    cfg.Stdout,
		logger:    cfg.Logger,
		maxDepth:  cfg.MaxDepth,
		callStack: make([]*object.CallFrame, 0),
	}
	if e.fset == nil {
		e.fset = token.NewFileSet()
	}
	if e.stdout == nil {
		e.stdout = os.Stdout
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	if e.maxDepth <= 0 {
		e.maxDepth = DefaultMaxDepth
	}
	return e
}

// Fset returns the file set used to resolve positions.
func (e *Evaluator) Fset() *token.FileSet { return e.fset }

// CallDepth returns the number of active calls.
func (e *Evaluator) CallDepth() int { return len(e.callStack) }

// Eval evaluates node in env.
//
// Literals, identifiers and callables evaluate to themselves, an atom to
// its binding, a quote to the quoted node and the empty list to itself.
// A non-empty list is a call. A program evaluates its elements in order
// and yields the last value, or null when empty.
//
// A RETURN or BREAK result is passed to the caller unchanged; only lambda
// calls and loops consume them.
func (e *Evaluator) Eval(ctx context.Context, node object.Node, env *object.Environment) (object.Result, error) {
	switch n := node.(type) {
	case *object.Literal, *object.Identifier, *object.SpecialForm, *object.Lambda:
		return object.Ok(node), nil
	case *object.Atom:
		return e.evalAtom(ctx, n, env)
	case *object.Quote:
		return object.Ok(n.X), nil
	case *object.List:
		if len(n.Elements) == 0 {
			return object.Ok(n), nil
		}
		return e.evalCall(ctx, n, env)
	case *object.Program:
		return e.evalProgram(ctx, n, env)
	case nil:
		return object.Ok(object.NULL), nil
	default:
		return object.Result{}, e.newError(ctx, object.ErrMalformedForm, node, "cannot evaluate %s", node.Type())
	}
}

func (e *Evaluator) evalAtom(ctx context.Context, n *object.Atom, env *object.Environment) (object.Result, error) {
	val, ok := env.Get(n.Name())
	if !ok {
		return object.Result{}, e.newError(ctx, object.ErrUnboundVariable, n, "%s", n.Name())
	}
	return object.Ok(val), nil
}

func (e *Evaluator) evalProgram(ctx context.Context, prog *object.Program, env *object.Environment) (object.Result, error) {
	result := object.Ok(object.NULL)
	for _, elem := range prog.Elements {
		r, err := e.Eval(ctx, elem, env)
		if err != nil {
			return object.Result{}, err
		}
		if !r.IsOK() {
			return r, nil
		}
		result = r
	}
	return result, nil
}
