package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/podhmo/flang/object"
)

// evalCall evaluates a non-empty list.
func (e *Evaluator) evalCall(ctx context.Context, call *object.List, env *object.Environment) (object.Result, error) {
	if err := ctx.Err(); err != nil {
		return object.Result{}, err
	}

	head, args := call.Elements[0], call.Elements[1:]
	if atom, ok := head.(*object.Atom); ok {
		callee, err := e.lookupCallee(ctx, atom, env)
		if err != nil {
			return object.Result{}, err
		}
		return e.Apply(ctx, call, callee, args, env)
	}

	r, err := e.Eval(ctx, head, env)
	if err != nil {
		return object.Result{}, err
	}
	if !r.IsOK() {
		return r, nil
	}

	switch v := r.Value.(type) {
	case *object.Atom:
		callee, err := e.lookupCallee(ctx, v, env)
		if err != nil {
			return object.Result{}, err
		}
		return e.Apply(ctx, call, callee, args, env)
	case *object.SpecialForm, *object.Lambda:
		return e.Apply(ctx, call, v, args, env)
	}

	if _, ok := head.(*object.List); ok {
		return e.evalBlock(ctx, r, args, env)
	}
	return object.Result{}, e.newError(ctx, object.ErrNotCallable, head, "%s", r.Value.Inspect())
}

// evalBlock evaluates the rest of a list whose head was a list that did not
// produce a callable. The value of the last element is the value of the block.
func (e *Evaluator) evalBlock(ctx context.Context, first object.Result, rest []object.Node, env *object.Environment) (object.Result, error) {
	result := first
	for _, n := range rest {
		r, err := e.Eval(ctx, n, env)
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

func (e *Evaluator) lookupCallee(ctx context.Context, atom *object.Atom, env *object.Environment) (object.Node, error) {
	callee, ok := env.Get(atom.Name())
	if !ok {
		return nil, e.newError(ctx, object.ErrUndefinedFunction, atom, "%s", atom.Name())
	}
	if !object.IsCallable(callee) {
		return nil, e.newError(ctx, object.ErrNotCallable, atom, "%s is bound to %s", atom.Name(), callee.Inspect())
	}
	return callee, nil
}

// Apply invokes callee with the unevaluated argument nodes of call in env.
// Errors that do not point at a node yet are anchored to call.
func (e *Evaluator) Apply(ctx context.Context, call *object.List, callee object.Node, args []object.Node, env *object.Environment) (object.Result, error) {
	name := calleeName(callee)
	if len(e.callStack) >= e.maxDepth {
		return object.Result{}, e.newError(ctx, object.ErrStackOverflow, call, "maximum call depth %d exceeded in %s", e.maxDepth, name)
	}

	e.callStack = append(e.callStack, &object.CallFrame{Pos: call.Pos(), Function: name})
	defer func() {
		e.callStack = e.callStack[:len(e.callStack)-1]
	}()
	e.logc(ctx, slog.LevelDebug, "apply", "callee", name, "nargs", len(args))

	var r object.Result
	var err error
	switch fn := callee.(type) {
	case *object.SpecialForm:
		r, err = e.applySpecialForm(ctx, call, fn, args, env)
	case *object.Lambda:
		r, err = e.applyLambda(ctx, call, fn, args, env)
	default:
		err = e.newError(ctx, object.ErrNotCallable, call, "%s", callee.Inspect())
	}

	if err != nil {
		var rerr *object.Error
		if errors.As(err, &rerr) && !rerr.Anchored() {
			rerr.Anchor(call)
		}
		return object.Result{}, err
	}
	return r, nil
}

func (e *Evaluator) applySpecialForm(ctx context.Context, call *object.List, sf *object.SpecialForm, args []object.Node, env *object.Environment) (object.Result, error) {
	bctx := e.builtinContext(ctx, env)
	if sf.IsRaw() {
		if len(args) < sf.MinArgs || (sf.MaxArgs >= 0 && len(args) > sf.MaxArgs) {
			return object.Result{}, e.arityError(ctx, call, sf.Name, len(args), sf.MinArgs, sf.MaxArgs)
		}
		return sf.Fn(bctx, call, args)
	}

	if len(args) != len(sf.Params) {
		return object.Result{}, e.arityError(ctx, call, sf.Name, len(args), len(sf.Params), len(sf.Params))
	}

	// Arguments are evaluated left to right. The first failure, an error,
	// a value of the wrong kind or a RETURN/BREAK, stops evaluation and is
	// what the call reports.
	values := make([]object.Node, len(sf.Params))
	for i, kind := range sf.Params {
		r, err := e.Eval(ctx, args[i], env)
		if err != nil {
			return object.Result{}, err
		}
		if !r.IsOK() {
			return r, nil
		}
		if !kind.Accepts(r.Value) {
			return object.Result{}, e.newError(ctx, object.ErrTypeError, args[i], "%s: argument %d must be a %s, got %s", sf.Name, i+1, kind, r.Value.Inspect())
		}
		values[i] = r.Value
	}
	return sf.Fn(bctx, call, values)
}

func (e *Evaluator) applyLambda(ctx context.Context, call *object.List, fn *object.Lambda, args []object.Node, env *object.Environment) (object.Result, error) {
	if len(args) != len(fn.Params) {
		return object.Result{}, e.arityError(ctx, call, calleeName(fn), len(args), len(fn.Params), len(fn.Params))
	}

	values := make([]object.Node, len(args))
	for i, arg := range args {
		r, err := e.Eval(ctx, arg, env)
		if err != nil {
			return object.Result{}, err
		}
		if !r.IsOK() {
			return r, nil
		}
		values[i] = r.Value
	}

	leave := env.Enter()
	e.logc(ctx, slog.LevelDebug, "enter layer", "func", calleeName(fn), "depth", env.Depth())
	defer func() {
		leave()
		e.logc(ctx, slog.LevelDebug, "leave layer", "func", calleeName(fn), "depth", env.Depth())
	}()
	for i, param := range fn.Params {
		env.Set(param, values[i])
	}

	r, err := e.Eval(ctx, fn.Body, env)
	if err != nil {
		return object.Result{}, err
	}
	switch r.Kind {
	case object.RETURN:
		return object.Ok(r.Value), nil
	case object.BREAK:
		return object.Result{}, e.newError(ctx, object.ErrBreakOutsideLoop, call, "in %s", calleeName(fn))
	default:
		return r, nil
	}
}

func (e *Evaluator) arityError(ctx context.Context, call *object.List, name string, got, lo, hi int) *object.Error {
	want := fmt.Sprintf("%d", lo)
	switch {
	case hi < 0:
		want = fmt.Sprintf("%d or more", lo)
	case hi != lo:
		want = fmt.Sprintf("%d..%d", lo, hi)
	}
	return e.newError(ctx, object.ErrArity, call, "%s: got=%d, want=%s", name, got, want)
}

func (e *Evaluator) builtinContext(ctx context.Context, env *object.Environment) *object.BuiltinContext {
	return &object.BuiltinContext{
		Context: ctx,
		Stdout:  e.stdout,
		Fset:    e.fset,
		Env:     env,
		Eval: func(node object.Node) (object.Result, error) {
			return e.Eval(ctx, node, env)
		},
		NewError: func(kind error, node object.Node, format string, args ...any) *object.Error {
			return e.newErrorWithCallerDepth(ctx, 3, kind, node, format, args...)
		},
	}
}

func calleeName(callee object.Node) string {
	switch fn := callee.(type) {
	case *object.SpecialForm:
		return fn.Name
	case *object.Lambda:
		if fn.Name != "" {
			return fn.Name
		}
		return "anonymous"
	default:
		return callee.Inspect()
	}
}
