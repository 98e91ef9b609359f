package object

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNodeTypes(t *testing.T) {
	inc := &Lambda{Name: "inc", Params: []string{"n"}, Body: NewInteger(1)}
	tests := []struct {
		node            Node
		expectedType    NodeType
		expectedInspect string
	}{
		{node: NewInteger(42), expectedType: LITERAL_NODE, expectedInspect: "42"},
		{node: NewInteger(-7), expectedType: LITERAL_NODE, expectedInspect: "-7"},
		{node: NewReal(1.5), expectedType: LITERAL_NODE, expectedInspect: "1.5"},
		{node: NewReal(2), expectedType: LITERAL_NODE, expectedInspect: "2.0"},
		{node: NewReal(1e21), expectedType: LITERAL_NODE, expectedInspect: "1e+21"},
		{node: TRUE, expectedType: LITERAL_NODE, expectedInspect: "true"},
		{node: FALSE, expectedType: LITERAL_NODE, expectedInspect: "false"},
		{node: NULL, expectedType: LITERAL_NODE, expectedInspect: "null"},
		{node: &Identifier{Name: "x"}, expectedType: IDENTIFIER_NODE, expectedInspect: "x"},
		{node: NewAtom("🍕"), expectedType: ATOM_NODE, expectedInspect: "🍕"},
		{node: NewList(NewAtom("a"), NewAtom("b"), NewAtom("c")), expectedType: LIST_NODE, expectedInspect: "(a b c)"},
		{node: NewList(), expectedType: LIST_NODE, expectedInspect: "()"},
		{node: &Quote{X: NewAtom("x")}, expectedType: QUOTE_NODE, expectedInspect: "'x"},
		{node: &Program{Elements: []Node{NewInteger(1), NewList()}}, expectedType: PROGRAM_NODE, expectedInspect: "1\n()"},
		{node: &SpecialForm{Name: "plus"}, expectedType: SPECIAL_FORM_NODE, expectedInspect: "<special form plus>"},
		{node: inc, expectedType: LAMBDA_NODE, expectedInspect: "<lambda inc (n)>"},
		{node: &Lambda{Params: []string{"a", "b"}}, expectedType: LAMBDA_NODE, expectedInspect: "<lambda anonymous (a b)>"},
	}

	for _, tt := range tests {
		if tt.node.Type() != tt.expectedType {
			t.Errorf("wrong type: expected=%q, got=%q", tt.expectedType, tt.node.Type())
		}
		if tt.node.Inspect() != tt.expectedInspect {
			t.Errorf("wrong inspect: expected=%q, got=%q", tt.expectedInspect, tt.node.Inspect())
		}
	}
}

func TestLiteralAccessors(t *testing.T) {
	i := NewInteger(3)
	if v, ok := i.Int(); !ok || v != 3 {
		t.Errorf("Int() = %d, %v", v, ok)
	}
	if _, ok := i.Real(); ok {
		t.Error("integer literal must not expose a real payload")
	}
	if _, ok := i.Bool(); ok {
		t.Error("integer literal must not expose a boolean payload")
	}

	r := NewReal(0.5)
	if v, ok := r.Real(); !ok || v != 0.5 {
		t.Errorf("Real() = %v, %v", v, ok)
	}
	if _, ok := r.Int(); ok {
		t.Error("real literal must not expose an integer payload")
	}

	if v, ok := TRUE.Bool(); !ok || !v {
		t.Errorf("TRUE.Bool() = %v, %v", v, ok)
	}
	if NativeBoolean(false) != FALSE {
		t.Error("NativeBoolean(false) must return the shared FALSE")
	}
	if !NULL.IsNull() || TRUE.IsNull() {
		t.Error("IsNull mismatch")
	}

	moved := TRUE.WithSpan(Span{From: 10, To: 14})
	if moved == TRUE || moved.Pos() != 10 || TRUE.Pos() != token.NoPos {
		t.Error("WithSpan must copy, not mutate the shared literal")
	}
	if v, _ := moved.Bool(); !v {
		t.Error("WithSpan lost the payload")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b Node
		want bool
	}{
		{NewInteger(1), NewInteger(1), true},
		{NewInteger(1), NewReal(1), false},
		{NULL, NULL.WithSpan(Span{From: 3, To: 7}), true},
		{NewList(NewAtom("a"), NewInteger(1)), NewList(NewAtom("a"), NewInteger(1)), true},
		{NewList(NewAtom("a")), NewList(NewAtom("b")), false},
		{NewList(NewAtom("a")), NewList(NewAtom("a"), NewAtom("a")), false},
		{&Quote{X: NewAtom("x")}, &Quote{X: NewAtom("x")}, true},
		{NewAtom("x"), &Identifier{Name: "x"}, false},
		{&Lambda{Name: "f"}, &Lambda{Name: "f"}, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s=%s", tt.a.Inspect(), tt.b.Inspect()), func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResult(t *testing.T) {
	if r := Ok(NewInteger(1)); !r.IsOK() || r.String() != "1" {
		t.Errorf("Ok: %v", r)
	}
	if r := Return(NewInteger(2)); r.IsOK() || r.Kind != RETURN || r.String() != "RETURN(2)" {
		t.Errorf("Return: %v", r)
	}
	if r := Break(); r.IsOK() || r.Kind != BREAK || r.Value != nil {
		t.Errorf("Break: %v", r)
	}
}

func TestEnvironment(t *testing.T) {
	t.Run("lookup goes innermost first", func(t *testing.T) {
		env := NewEnvironment()
		env.Set("x", NewInteger(1))
		leave := env.Enter()
		env.Set("x", NewInteger(2))
		if v, _ := env.Get("x"); v.Inspect() != "2" {
			t.Errorf("inner x = %s", v.Inspect())
		}
		leave()
		if v, _ := env.Get("x"); v.Inspect() != "1" {
			t.Errorf("outer x = %s", v.Inspect())
		}
		if env.Depth() != 1 {
			t.Errorf("depth = %d", env.Depth())
		}
	})

	t.Run("plain layer drops its bindings", func(t *testing.T) {
		env := NewEnvironment()
		leave := env.Enter()
		env.Set("tmp", TRUE)
		leave()
		if _, ok := env.Get("tmp"); ok {
			t.Error("tmp must not survive a plain layer")
		}
	})

	t.Run("retaining layer keeps all but the exceptions", func(t *testing.T) {
		env := NewEnvironment()
		leave := env.EnterRetaining([]string{"i"})
		env.Set("i", NewInteger(3))
		env.Set("result", NewInteger(6))
		leave()
		if _, ok := env.Get("i"); ok {
			t.Error("excepted binding i must be dropped")
		}
		if v, ok := env.Get("result"); !ok || v.Inspect() != "6" {
			t.Errorf("result = %v, %v", v, ok)
		}
		if diff := cmp.Diff([]string{"result"}, env.Root().Names()); diff != "" {
			t.Errorf("root names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("SetRoot writes the root from inside a layer", func(t *testing.T) {
		env := NewEnvironment()
		leave := env.Enter()
		env.SetRoot("plus", &SpecialForm{Name: "plus"})
		leave()
		if _, ok := env.Get("plus"); !ok {
			t.Error("plus must be bound in the root")
		}
	})

	t.Run("leave is idempotent and the root is never popped", func(t *testing.T) {
		env := NewEnvironment()
		outer := env.Enter()
		inner := env.Enter()
		outer() // also discards the forgotten inner layer
		inner()
		outer()
		if env.Depth() != 1 {
			t.Errorf("depth = %d, want 1", env.Depth())
		}
	})
}

func TestError(t *testing.T) {
	src := []byte("(setq x 1)\n(plus x (head (quote ())))\n")
	fset := token.NewFileSet()
	f := fset.AddFile("main.fl", -1, len(src))
	f.SetLinesForContent(src)

	call := &List{Lparen: f.Pos(19), Rparen: f.Pos(35)}
	err := NewError(ErrEmptyList, nil, "head of ()")
	if err.Anchored() {
		t.Fatal("error created without a node must not be anchored")
	}
	err.Anchor(call)
	err.CallStack = []*CallFrame{{Pos: f.Pos(11), Function: ""}, {Pos: f.Pos(19), Function: "head"}}
	err.AttachFileSet(fset, map[string][]byte{"main.fl": src})

	if !errors.Is(err, ErrEmptyList) {
		t.Error("errors.Is must match the kind")
	}
	if errors.Is(err, ErrTypeError) {
		t.Error("errors.Is must not match another kind")
	}
	if got, want := err.Error(), "main.fl:2:9: empty list: head of ()"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	want := strings.Join([]string{
		"runtime error: empty list: head of ()",
		"\tmain.fl:2:9:",
		"\t\t2: (plus x (head (quote ())))",
		"\t\t           ~~~~~~~~~~~~~~~~~",
		"\tmain.fl:2:9:\tin head",
		"\tmain.fl:2:1:\tin <program>",
		"",
	}, "\n")
	if diff := cmp.Diff(want, err.Inspect()); diff != "" {
		t.Errorf("Inspect() mismatch (-want +got):\n%s", diff)
	}
}
