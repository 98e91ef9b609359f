package evaluator

import "github.com/podhmo/flang/object"

var (
	pLit  = object.ParamLiteral
	pList = object.ParamList
	pAny  = object.ParamAny
)

// Builtins returns a fresh set of every builtin special form and function.
func Builtins() []*object.SpecialForm {
	return []*object.SpecialForm{
		// raw forms
		{Name: "quote", MinArgs: 1, MaxArgs: 1, Fn: evalQuote},
		{Name: "setq", MinArgs: 2, MaxArgs: 2, Fn: evalSetq},
		{Name: "lambda", MinArgs: 2, MaxArgs: 2, Fn: evalLambda},
		{Name: "func", MinArgs: 3, MaxArgs: 3, Fn: evalFunc},
		{Name: "cond", MinArgs: 2, MaxArgs: 3, Fn: evalCond},
		{Name: "while", MinArgs: 2, MaxArgs: 2, Fn: evalWhile},
		{Name: "break", MinArgs: 0, MaxArgs: 0, Fn: evalBreak},
		{Name: "return", MinArgs: 1, MaxArgs: 1, Fn: evalReturn},
		{Name: "prog", MinArgs: 2, MaxArgs: 2, Fn: evalProg},

		// arithmetic
		{Name: "plus", Params: []object.ParamKind{pLit, pLit}, Fn: arithmetic("plus", opPlus)},
		{Name: "minus", Params: []object.ParamKind{pLit, pLit}, Fn: arithmetic("minus", opMinus)},
		{Name: "times", Params: []object.ParamKind{pLit, pLit}, Fn: arithmetic("times", opTimes)},
		{Name: "divide", Params: []object.ParamKind{pLit, pLit}, Fn: arithmetic("divide", opDivide)},
		{Name: "mod", Params: []object.ParamKind{pLit, pLit}, Fn: builtinMod},

		// comparison
		{Name: "equal", Params: []object.ParamKind{pLit, pLit}, Fn: comparison("equal", cmpEqual)},
		{Name: "nonequal", Params: []object.ParamKind{pLit, pLit}, Fn: comparison("nonequal", cmpNonEqual)},
		{Name: "less", Params: []object.ParamKind{pLit, pLit}, Fn: comparison("less", cmpLess)},
		{Name: "lesseq", Params: []object.ParamKind{pLit, pLit}, Fn: comparison("lesseq", cmpLessEq)},
		{Name: "greater", Params: []object.ParamKind{pLit, pLit}, Fn: comparison("greater", cmpGreater)},
		{Name: "greatereq", Params: []object.ParamKind{pLit, pLit}, Fn: comparison("greatereq", cmpGreaterEq)},

		// lists
		{Name: "head", Params: []object.ParamKind{pList}, Fn: builtinHead},
		{Name: "tail", Params: []object.ParamKind{pList}, Fn: builtinTail},
		{Name: "cons", Params: []object.ParamKind{pAny, pList}, Fn: builtinCons},
		{Name: "length", Params: []object.ParamKind{pList}, Fn: builtinLength},

		// predicates
		{Name: "isint", Params: []object.ParamKind{pAny}, Fn: literalKindIs(object.IntegerLiteral)},
		{Name: "isreal", Params: []object.ParamKind{pAny}, Fn: literalKindIs(object.RealLiteral)},
		{Name: "isbool", Params: []object.ParamKind{pAny}, Fn: literalKindIs(object.BooleanLiteral)},
		{Name: "isnull", Params: []object.ParamKind{pAny}, Fn: literalKindIs(object.NullLiteral)},
		{Name: "isatom", Params: []object.ParamKind{pAny}, Fn: nodeTypeIs(object.ATOM_NODE)},
		{Name: "islist", Params: []object.ParamKind{pAny}, Fn: nodeTypeIs(object.LIST_NODE)},

		// logic
		{Name: "and", Params: []object.ParamKind{pLit, pLit}, Fn: logical("and", func(a, b bool) bool { return a && b })},
		{Name: "or", Params: []object.ParamKind{pLit, pLit}, Fn: logical("or", func(a, b bool) bool { return a || b })},
		{Name: "xor", Params: []object.ParamKind{pLit, pLit}, Fn: logical("xor", func(a, b bool) bool { return a != b })},
		{Name: "not", Params: []object.ParamKind{pLit}, Fn: builtinNot},

		// misc
		{Name: "eval", Params: []object.ParamKind{pAny}, Fn: builtinEval},
		{Name: "print", Params: []object.ParamKind{pAny}, Fn: builtinPrint},
	}
}

// RegisterBuiltins binds every builtin in the root layer of env.
func RegisterBuiltins(env *object.Environment) {
	for _, sf := range Builtins() {
		if !sf.IsRaw() {
			sf.MinArgs, sf.MaxArgs = len(sf.Params), len(sf.Params)
		}
		env.SetRoot(sf.Name, sf)
	}
}
