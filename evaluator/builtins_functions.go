package evaluator

import (
	"fmt"

	"github.com/podhmo/flang/object"
)

// argNode returns the source node of the i-th argument of call, used to
// point errors at the offending argument.
func argNode(call *object.List, i int) object.Node {
	if call == nil || i+1 >= len(call.Elements) {
		return nil
	}
	return call.Elements[i+1]
}

// number is an operand of an arithmetic builtin.
type number struct {
	i    int64
	f    float64
	real bool
}

func (n number) float() float64 {
	if n.real {
		return n.f
	}
	return float64(n.i)
}

func toNumber(ctx *object.BuiltinContext, call *object.List, name string, args []object.Node, i int) (number, error) {
	l := args[i].(*object.Literal)
	if v, ok := l.Int(); ok {
		return number{i: v}, nil
	}
	if v, ok := l.Real(); ok {
		return number{f: v, real: true}, nil
	}
	return number{}, ctx.NewError(object.ErrTypeError, argNode(call, i), "%s: argument %d must be a number, got %s", name, i+1, l.Inspect())
}

type arithOp struct {
	ints  func(a, b int64) (int64, error)
	reals func(a, b float64) float64
}

var (
	opPlus = arithOp{
		ints:  func(a, b int64) (int64, error) { return a + b, nil },
		reals: func(a, b float64) float64 { return a + b },
	}
	opMinus = arithOp{
		ints:  func(a, b int64) (int64, error) { return a - b, nil },
		reals: func(a, b float64) float64 { return a - b },
	}
	opTimes = arithOp{
		ints:  func(a, b int64) (int64, error) { return a * b, nil },
		reals: func(a, b float64) float64 { return a * b },
	}
	opDivide = arithOp{
		ints: func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, object.ErrDivisionByZero
			}
			return a / b, nil
		},
		reals: func(a, b float64) float64 { return a / b },
	}
)

// arithmetic builds a two-operand numeric builtin. The result is real when
// either operand is real, integer otherwise.
func arithmetic(name string, op arithOp) object.SpecialFormFunction {
	return func(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
		a, err := toNumber(ctx, call, name, args, 0)
		if err != nil {
			return object.Result{}, err
		}
		b, err := toNumber(ctx, call, name, args, 1)
		if err != nil {
			return object.Result{}, err
		}
		if a.real || b.real {
			return object.Ok(object.NewReal(op.reals(a.float(), b.float()))), nil
		}
		v, err := op.ints(a.i, b.i)
		if err != nil {
			return object.Result{}, ctx.NewError(err, nil, "%s %d by %d", name, a.i, b.i)
		}
		return object.Ok(object.NewInteger(v)), nil
	}
}

func builtinMod(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	var operands [2]int64
	for i := range operands {
		v, ok := args[i].(*object.Literal).Int()
		if !ok {
			return object.Result{}, ctx.NewError(object.ErrTypeError, argNode(call, i), "mod: argument %d must be an integer, got %s", i+1, args[i].Inspect())
		}
		operands[i] = v
	}
	if operands[1] == 0 {
		return object.Result{}, ctx.NewError(object.ErrDivisionByZero, nil, "mod %d by 0", operands[0])
	}
	return object.Ok(object.NewInteger(operands[0] % operands[1])), nil
}

// toOrdered converts a literal to a number for ordering; booleans
// count as 0 and 1.
func toOrdered(ctx *object.BuiltinContext, call *object.List, name string, args []object.Node, i int) (number, error) {
	l := args[i].(*object.Literal)
	if b, ok := l.Bool(); ok {
		if b {
			return number{i: 1}, nil
		}
		return number{i: 0}, nil
	}
	if l.IsNull() {
		return number{}, ctx.NewError(object.ErrTypeError, argNode(call, i), "%s: cannot compare null", name)
	}
	return toNumber(ctx, call, name, args, i)
}

func less(a, b number) bool {
	if !a.real && !b.real {
		return a.i < b.i
	}
	return a.float() < b.float()
}

// Every comparison is derived from less.
func cmpLess(a, b number) bool      { return less(a, b) }
func cmpEqual(a, b number) bool     { return !less(a, b) && !less(b, a) }
func cmpNonEqual(a, b number) bool  { return !cmpEqual(a, b) }
func cmpLessEq(a, b number) bool    { return less(a, b) || cmpEqual(a, b) }
func cmpGreater(a, b number) bool   { return !less(a, b) && !cmpEqual(a, b) }
func cmpGreaterEq(a, b number) bool { return cmpGreater(a, b) || cmpEqual(a, b) }

func comparison(name string, pred func(a, b number) bool) object.SpecialFormFunction {
	return func(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
		a, err := toOrdered(ctx, call, name, args, 0)
		if err != nil {
			return object.Result{}, err
		}
		b, err := toOrdered(ctx, call, name, args, 1)
		if err != nil {
			return object.Result{}, err
		}
		return object.Ok(object.NativeBoolean(pred(a, b))), nil
	}
}

func builtinHead(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	l := args[0].(*object.List)
	if len(l.Elements) == 0 {
		return object.Result{}, ctx.NewError(object.ErrEmptyList, nil, "head of ()")
	}
	return object.Ok(l.Elements[0]), nil
}

func builtinTail(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	l := args[0].(*object.List)
	if len(l.Elements) == 0 {
		return object.Result{}, ctx.NewError(object.ErrEmptyList, nil, "tail of ()")
	}
	rest := make([]object.Node, len(l.Elements)-1)
	copy(rest, l.Elements[1:])
	return object.Ok(object.NewList(rest...)), nil
}

func builtinCons(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	l := args[1].(*object.List)
	elems := make([]object.Node, 0, len(l.Elements)+1)
	elems = append(elems, args[0])
	elems = append(elems, l.Elements...)
	return object.Ok(object.NewList(elems...)), nil
}

func builtinLength(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	return object.Ok(object.NewInteger(int64(len(args[0].(*object.List).Elements)))), nil
}

func literalKindIs(kind object.LiteralKind) object.SpecialFormFunction {
	return func(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
		l, ok := args[0].(*object.Literal)
		return object.Ok(object.NativeBoolean(ok && l.Kind == kind)), nil
	}
}

func nodeTypeIs(typ object.NodeType) object.SpecialFormFunction {
	return func(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
		return object.Ok(object.NativeBoolean(args[0].Type() == typ)), nil
	}
}

func toBool(ctx *object.BuiltinContext, call *object.List, name string, args []object.Node, i int) (bool, error) {
	b, ok := args[i].(*object.Literal).Bool()
	if !ok {
		return false, ctx.NewError(object.ErrTypeError, argNode(call, i), "%s: argument %d must be a boolean, got %s", name, i+1, args[i].Inspect())
	}
	return b, nil
}

func logical(name string, op func(a, b bool) bool) object.SpecialFormFunction {
	return func(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
		a, err := toBool(ctx, call, name, args, 0)
		if err != nil {
			return object.Result{}, err
		}
		b, err := toBool(ctx, call, name, args, 1)
		if err != nil {
			return object.Result{}, err
		}
		return object.Ok(object.NativeBoolean(op(a, b))), nil
	}
}

func builtinNot(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	b, err := toBool(ctx, call, "not", args, 0)
	if err != nil {
		return object.Result{}, err
	}
	return object.Ok(object.NativeBoolean(!b)), nil
}

func builtinEval(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	return object.Ok(args[0]), nil
}

func builtinPrint(ctx *object.BuiltinContext, call *object.List, args []object.Node) (object.Result, error) {
	if _, err := fmt.Fprintln(ctx.Stdout, args[0].Inspect()); err != nil {
		return object.Result{}, fmt.Errorf("print: %w", err)
	}
	return object.Ok(object.NULL), nil
}
