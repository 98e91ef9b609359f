package evaluator

import (
	"github.com/podhmo/flang/object"
)

// evalTo evaluates node and narrows the value to T. A RETURN or BREAK
// result is handed back for the caller to propagate.
func evalTo[T object.Node](ctx *object.BuiltinContext, node object.Node, what string) (T, object.Result, error) {
	var zero T
	r, err := ctx.Eval(node)
	if err != nil {
		return zero, object.Result{}, err
	}
	if !r.IsOK() {
		return zero, r, nil
	}
	v, ok := r.Value.(T)
	if !ok {
		return zero, object.Result{}, ctx.NewError(object.ErrTypeError, node, "expected %s, got %s", what, r.Value.Inspect())
	}
	return v, r, nil
}

// evalCondition evaluates a test that must produce a boolean literal.
func evalCondition(ctx *object.BuiltinContext, node object.Node, form string) (bool, object.Result, error) {
	l, r, err := evalTo[*object.Literal](ctx, node, "a boolean")
	if err != nil || !r.IsOK() {
		return false, r, err
	}
	b, ok := l.Bool()
	if !ok {
		return false, object.Result{}, ctx.NewError(object.ErrTypeError, node, "%s: condition must be a boolean, got %s", form, l.Inspect())
	}
	return b, r, nil
}

// atomNames reads a list of atoms, as used for parameter and exception lists.
func atomNames(ctx *object.BuiltinContext, node object.Node, form string) ([]string, error) {
	l, ok := node.(*object.List)
	if !ok {
		return nil, ctx.NewError(object.ErrMalformedForm, node, "%s: expected a list of names, got %s", form, node.Inspect())
	}
	names := make([]string, len(l.Elements))
	for i, elem := range l.Elements {
		atom, ok := elem.(*object.Atom)
		if !ok {
			return nil, ctx.NewError(object.ErrMalformedForm, elem, "%s: expected a name, got %s", form, elem.Inspect())
		}
		names[i] = atom.Name()
	}
	return names, nil
}

func evalQuote(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	return object.Ok(args[0]), nil
}

func evalSetq(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	atom, ok := args[0].(*object.Atom)
	if !ok {
		return object.Result{}, ctx.NewError(object.ErrMalformedForm, args[0], "setq: expected a name, got %s", args[0].Inspect())
	}
	r, err := ctx.Eval(args[1])
	if err != nil || !r.IsOK() {
		return r, err
	}
	ctx.Env.Set(atom.Name(), r.Value)
	return object.Ok(object.NULL), nil
}

func newLambda(ctx *object.BuiltinContext, call *object.List, name string, params, body object.Node, form string) (*object.Lambda, error) {
	names, err := atomNames(ctx, params, form)
	if err != nil {
		return nil, err
	}
	return &object.Lambda{
		Span:   object.Span{From: call.Pos(), To: call.End()},
		Name:   name,
		Params: names,
		Body:   body,
	}, nil
}

func evalLambda(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	fn, err := newLambda(ctx, call, "", args[0], args[1], "lambda")
	if err != nil {
		return object.Result{}, err
	}
	return object.Ok(fn), nil
}

func evalFunc(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	atom, ok := args[0].(*object.Atom)
	if !ok {
		return object.Result{}, ctx.NewError(object.ErrMalformedForm, args[0], "func: expected a name, got %s", args[0].Inspect())
	}
	fn, err := newLambda(ctx, call, atom.Name(), args[1], args[2], "func")
	if err != nil {
		return object.Result{}, err
	}
	ctx.Env.Set(atom.Name(), fn)
	return object.Ok(object.NULL), nil
}

func evalCond(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	ok, r, err := evalCondition(ctx, args[0], "cond")
	if err != nil || !r.IsOK() {
		return r, err
	}
	switch {
	case ok:
		return ctx.Eval(args[1])
	case len(args) == 3:
		return ctx.Eval(args[2])
	default:
		return object.Ok(object.NULL), nil
	}
}

func evalWhile(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	for {
		if err := ctx.Context.Err(); err != nil {
			return object.Result{}, err
		}
		ok, r, err := evalCondition(ctx, args[0], "while")
		if err != nil || !r.IsOK() {
			return r, err
		}
		if !ok {
			break
		}

		r, err = ctx.Eval(args[1])
		if err != nil {
			return object.Result{}, err
		}
		if r.Kind == object.BREAK {
			break
		}
		if r.Kind == object.RETURN {
			return r, nil
		}
	}
	return object.Ok(object.NULL), nil
}

func evalBreak(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	return object.Break(), nil
}

func evalReturn(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	r, err := ctx.Eval(args[0])
	if err != nil || !r.IsOK() {
		return r, err
	}
	return object.Return(r.Value), nil
}

// evalProg runs the body in a layer whose bindings, except the listed
// names, are kept in the enclosing layer afterwards.
func evalProg(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	except, err := atomNames(ctx, args[0], "prog")
	if err != nil {
		return object.Result{}, err
	}
	body, ok := args[1].(*object.List)
	if !ok {
		return object.Result{}, ctx.NewError(object.ErrMalformedForm, args[1], "prog: expected a list of expressions, got %s", args[1].Inspect())
	}

	leave := ctx.Env.EnterRetaining(except)
	defer leave()

	result := object.Ok(object.NULL)
	for _, n := range body.Elements {
		r, err := ctx.Eval(n)
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
