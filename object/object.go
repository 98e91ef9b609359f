package object

import (
	"fmt"
	"go/token"
	"math"
	"strconv"
	"strings"
)

// NodeType is a string representation of a node's variant.
type NodeType string

const (
	LITERAL_NODE      NodeType = "LITERAL"
	IDENTIFIER_NODE   NodeType = "IDENTIFIER"
	ATOM_NODE         NodeType = "ATOM"
	LIST_NODE         NodeType = "LIST"
	QUOTE_NODE        NodeType = "QUOTE"
	PROGRAM_NODE      NodeType = "PROGRAM"
	SPECIAL_FORM_NODE NodeType = "SPECIAL_FORM"
	LAMBDA_NODE       NodeType = "LAMBDA"
)

// Node is the interface implemented by every syntax tree node and every value.
// The language does not separate code from data: evaluating a node yields
// another node.
type Node interface {
	// Type returns the variant of the node.
	Type() NodeType
	// Inspect returns the textual form of the node.
	Inspect() string
	// Pos returns the position of the first character of the node, or
	// token.NoPos for values built at run time.
	Pos() token.Pos
	// End returns the position just past the node.
	End() token.Pos
}

// Span is the [From, To) source range of a parsed node.
type Span struct {
	From token.Pos
	To   token.Pos
}

func (s Span) Pos() token.Pos { return s.From }
func (s Span) End() token.Pos { return s.To }

// --- Literal ---

// LiteralKind tags the payload of a Literal.
type LiteralKind int

const (
	IntegerLiteral LiteralKind = iota
	RealLiteral
	BooleanLiteral
	NullLiteral
)

func (k LiteralKind) String() string {
	switch k {
	case IntegerLiteral:
		return "integer"
	case RealLiteral:
		return "real"
	case BooleanLiteral:
		return "boolean"
	case NullLiteral:
		return "null"
	default:
		return fmt.Sprintf("LiteralKind(%d)", int(k))
	}
}

// Literal is an immutable integer, real, boolean or null value.
// The payload is only reachable through the accessor matching Kind.
type Literal struct {
	Span
	Kind LiteralKind

	i int64
	f float64
	b bool
}

var (
	TRUE  = &Literal{Kind: BooleanLiteral, b: true}
	FALSE = &Literal{Kind: BooleanLiteral, b: false}
	NULL  = &Literal{Kind: NullLiteral}
)

// NewInteger returns an integer literal.
func NewInteger(v int64) *Literal { return &Literal{Kind: IntegerLiteral, i: v} }

// NewReal returns a real literal.
func NewReal(v float64) *Literal { return &Literal{Kind: RealLiteral, f: v} }

// NativeBoolean returns the shared TRUE or FALSE literal.
func NativeBoolean(v bool) *Literal {
	if v {
		return TRUE
	}
	return FALSE
}

// WithSpan returns a copy of the literal located at span.
func (l *Literal) WithSpan(span Span) *Literal {
	c := *l
	c.Span = span
	return &c
}

// Int returns the integer payload.
func (l *Literal) Int() (int64, bool) { return l.i, l.Kind == IntegerLiteral }

// Real returns the real payload.
func (l *Literal) Real() (float64, bool) { return l.f, l.Kind == RealLiteral }

// Bool returns the boolean payload.
func (l *Literal) Bool() (bool, bool) { return l.b, l.Kind == BooleanLiteral }

// IsNull reports whether the literal is null.
func (l *Literal) IsNull() bool { return l.Kind == NullLiteral }

// IsNumber reports whether the literal is an integer or a real.
func (l *Literal) IsNumber() bool { return l.Kind == IntegerLiteral || l.Kind == RealLiteral }

func (l *Literal) Type() NodeType { return LITERAL_NODE }

func (l *Literal) Inspect() string {
	switch l.Kind {
	case IntegerLiteral:
		return strconv.FormatInt(l.i, 10)
	case RealLiteral:
		return formatReal(l.f)
	case BooleanLiteral:
		if l.b {
			return "true"
		}
		return "false"
	default:
		return "null"
	}
}

// formatReal always keeps a decimal point or an exponent so that a real
// never reads back as an integer.
func formatReal(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// --- Identifier ---

// Identifier is a bare name. It evaluates to itself.
type Identifier struct {
	Span
	Name string
}

func (i *Identifier) Type() NodeType  { return IDENTIFIER_NODE }
func (i *Identifier) Inspect() string { return i.Name }

// --- Atom ---

// Atom is a name in evaluated position; evaluating it looks the name up.
type Atom struct {
	Ident *Identifier
}

// NewAtom returns an atom for name without a source position.
func NewAtom(name string) *Atom { return &Atom{Ident: &Identifier{Name: name}} }

// Name returns the atom's name.
func (a *Atom) Name() string    { return a.Ident.Name }
func (a *Atom) Type() NodeType  { return ATOM_NODE }
func (a *Atom) Inspect() string { return a.Ident.Name }
func (a *Atom) Pos() token.Pos  { return a.Ident.Pos() }
func (a *Atom) End() token.Pos  { return a.Ident.End() }

// --- List ---

// List is an ordered sequence of nodes. Whether it is a call or data is
// decided by the context it is evaluated in.
type List struct {
	Lparen   token.Pos
	Rparen   token.Pos
	Elements []Node
}

// NewList returns a list without a source position.
func NewList(elems ...Node) *List { return &List{Elements: elems} }

func (l *List) Type() NodeType { return LIST_NODE }
func (l *List) Pos() token.Pos { return l.Lparen }
func (l *List) End() token.Pos {
	if !l.Rparen.IsValid() {
		return token.NoPos
	}
	return l.Rparen + 1
}

func (l *List) Inspect() string {
	var out strings.Builder
	out.WriteByte('(')
	for i, e := range l.Elements {
		if i > 0 {
			out.WriteByte(' ')
		}
		out.WriteString(e.Inspect())
	}
	out.WriteByte(')')
	return out.String()
}

// Len returns the number of elements.
func (l *List) Len() int { return len(l.Elements) }

// --- Quote ---

// Quote holds a node that is returned unevaluated.
type Quote struct {
	Quote token.Pos // position of the ' or ` character
	X     Node
}

func (q *Quote) Type() NodeType  { return QUOTE_NODE }
func (q *Quote) Inspect() string { return "'" + q.X.Inspect() }
func (q *Quote) Pos() token.Pos  { return q.Quote }
func (q *Quote) End() token.Pos  { return q.X.End() }

// --- Program ---

// Program is the top-level sequence of a source file.
type Program struct {
	Filename string
	Elements []Node
}

func (p *Program) Type() NodeType { return PROGRAM_NODE }

func (p *Program) Inspect() string {
	var out strings.Builder
	for i, e := range p.Elements {
		if i > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(e.Inspect())
	}
	return out.String()
}

func (p *Program) Pos() token.Pos {
	if len(p.Elements) == 0 {
		return token.NoPos
	}
	return p.Elements[0].Pos()
}

func (p *Program) End() token.Pos {
	if len(p.Elements) == 0 {
		return token.NoPos
	}
	return p.Elements[len(p.Elements)-1].End()
}

// --- SpecialForm ---

// ParamKind is the expected kind of an evaluated argument of a simple function.
type ParamKind int

const (
	ParamAny ParamKind = iota
	ParamLiteral
	ParamList
)

func (k ParamKind) String() string {
	switch k {
	case ParamLiteral:
		return "literal"
	case ParamList:
		return "list"
	default:
		return "any"
	}
}

// Accepts reports whether n satisfies the parameter kind.
func (k ParamKind) Accepts(n Node) bool {
	switch k {
	case ParamLiteral:
		_, ok := n.(*Literal)
		return ok
	case ParamList:
		_, ok := n.(*List)
		return ok
	default:
		return true
	}
}

// SpecialFormFunction is the Go implementation of a builtin.
// For raw forms args are the unevaluated argument nodes; for simple
// functions they are the evaluated values, already checked against Params.
type SpecialFormFunction func(ctx *BuiltinContext, call *List, args []Node) (Result, error)

// SpecialForm is a builtin callable.
//
// A nil Params marks a raw form: the argument count is checked against
// [MinArgs, MaxArgs] and the form decides what to evaluate. Otherwise the
// form is a simple function taking exactly len(Params) evaluated arguments.
type SpecialForm struct {
	Name    string
	MinArgs int
	MaxArgs int
	Params  []ParamKind
	Fn      SpecialFormFunction
}

// IsRaw reports whether the form receives unevaluated arguments.
func (sf *SpecialForm) IsRaw() bool { return sf.Params == nil }

func (sf *SpecialForm) Type() NodeType  { return SPECIAL_FORM_NODE }
func (sf *SpecialForm) Inspect() string { return "<special form " + sf.Name + ">" }
func (sf *SpecialForm) Pos() token.Pos  { return token.NoPos }
func (sf *SpecialForm) End() token.Pos  { return token.NoPos }

// --- Lambda ---

// Lambda is a user-defined function. It captures no environment: free
// variables in Body resolve through the layers live at call time.
type Lambda struct {
	Span
	Name   string // empty for anonymous lambdas
	Params []string
	Body   Node
}

func (l *Lambda) Type() NodeType { return LAMBDA_NODE }

func (l *Lambda) Inspect() string {
	name := l.Name
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("<lambda %s (%s)>", name, strings.Join(l.Params, " "))
}

// IsCallable reports whether n can be applied.
func IsCallable(n Node) bool {
	switch n.(type) {
	case *SpecialForm, *Lambda:
		return true
	default:
		return false
	}
}

// Equal reports whether a and b are structurally equal, ignoring positions.
// Callables compare by identity.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch a := a.(type) {
	case *Literal:
		b, ok := b.(*Literal)
		if !ok || a.Kind != b.Kind {
			return false
		}
		switch a.Kind {
		case IntegerLiteral:
			return a.i == b.i
		case RealLiteral:
			return a.f == b.f
		case BooleanLiteral:
			return a.b == b.b
		default:
			return true
		}
	case *Identifier:
		b, ok := b.(*Identifier)
		return ok && a.Name == b.Name
	case *Atom:
		b, ok := b.(*Atom)
		return ok && a.Name() == b.Name()
	case *List:
		b, ok := b.(*List)
		if !ok || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Equal(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	case *Quote:
		b, ok := b.(*Quote)
		return ok && Equal(a.X, b.X)
	case *Program:
		b, ok := b.(*Program)
		if !ok || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !Equal(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
