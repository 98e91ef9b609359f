package evaluator

import (
	"bytes"
	"context"
	"errors"
	"go/token"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/podhmo/flang/object"
	"github.com/podhmo/flang/parser"
)

type evalResult struct {
	result object.Result
	err    error
	stdout string
	env    *object.Environment
	eval   *Evaluator
}

// testEval is a helper function to parse and evaluate a string of code
// in a fresh environment.
func testEval(t *testing.T, input string) evalResult {
	t.Helper()
	return testEvalWithConfig(t, Config{}, input)
}

func testEvalWithConfig(t *testing.T, cfg Config, input string) evalResult {
	t.Helper()
	if cfg.Fset == nil {
		cfg.Fset = token.NewFileSet()
	}
	prog, err := parser.ParseFile(cfg.Fset, "test.fl", []byte(input))
	if err != nil {
		t.Fatalf("failed to parse %q: %v", input, err)
	}

	var stdout bytes.Buffer
	cfg.Stdout = &stdout
	cfg.Sources = map[string][]byte{"test.fl": []byte(input)}
	e := New(cfg)
	env := object.NewEnvironment()
	RegisterBuiltins(env)

	r, err := e.Eval(context.Background(), prog, env)
	return evalResult{result: r, err: err, stdout: stdout.String(), env: env, eval: e}
}

func testValue(t *testing.T, input string) object.Node {
	t.Helper()
	got := testEval(t, input)
	if got.err != nil {
		t.Fatalf("eval %q: unexpected error: %v", input, got.err)
	}
	if !got.result.IsOK() {
		t.Fatalf("eval %q: unexpected %s result", input, got.result.Kind)
	}
	return got.result.Value
}

func TestEval(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "null"},
		{"42", "42"},
		{"-3.5", "-3.5"},
		{"'foo", "foo"},
		{"()", "()"},
		{"(quote (a (b c)))", "(a (b c))"},

		// arithmetic
		{"(plus 1 2)", "3"},
		{"(plus 1 2.5)", "3.5"},
		{"(plus 1.5 1.5)", "3.0"},
		{"(minus 10 4)", "6"},
		{"(times 3 4)", "12"},
		{"(divide 7 2)", "3"},
		{"(divide -7 2)", "-3"},
		{"(divide 7 2.0)", "3.5"},
		{"(mod 7 3)", "1"},
		{"(mod -7 3)", "-1"},

		// comparison
		{"(less 1 2)", "true"},
		{"(less 2 1)", "false"},
		{"(equal 1 1.0)", "true"},
		{"(equal true 1)", "true"},
		{"(greater false true)", "false"},
		{"(lesseq 2 2)", "true"},
		{"(greatereq 1 2)", "false"},
		{"(nonequal 1 2)", "true"},

		// lists
		{"(head '(1 2 3))", "1"},
		{"(tail '(1 2 3))", "(2 3)"},
		{"(cons 0 '(1 2))", "(0 1 2)"},
		{"(cons '(a) ())", "((a))"},
		{"(length '(a b c))", "3"},
		{"(length ())", "0"},

		// predicates
		{"(isint 1)", "true"},
		{"(isreal 1)", "false"},
		{"(isreal 1.0)", "true"},
		{"(isbool false)", "true"},
		{"(isnull null)", "true"},
		{"(isnull 'x)", "false"},
		{"(isatom 'x)", "true"},
		{"(islist '(1))", "true"},
		{"(islist 1)", "false"},

		// logic
		{"(and true false)", "false"},
		{"(or true false)", "true"},
		{"(xor true true)", "false"},
		{"(not false)", "true"},
		{"(eval 'x)", "x"},

		// forms
		{"(setq x 5) (setq y (plus x 3)) y", "8"},
		{"(setq x 5)", "null"},
		{"(func inc (n) (plus n 1)) (inc 41)", "42"},
		{"(prog () ((setq i 0) (while (less i 3) ((setq i (plus i 1)))) i))", "3"},
		{"((lambda (x) (times x x)) 7)", "49"},
		{"(setq sq (lambda (x) (times x x))) (sq 5)", "25"},
		{"(lambda (a b) a)", "<lambda anonymous (a b)>"},
		{"(func f (n) n) f", "<lambda f (n)>"},
		{"plus", "<special form plus>"},
		{"(cond true 1 2)", "1"},
		{"(cond false 1 2)", "2"},
		{"(cond false 1)", "null"},
		{"(func f (n) ((cond (less n 0) (return 0)) (plus n 1))) (f -5)", "0"},
		{"(func f (n) ((cond (less n 0) (return 0)) (plus n 1))) (f 2)", "3"},
		{"(setq i 0) (while true ((setq i (plus i 1)) (cond (equal i 5) (break)))) i", "5"},
		{"(func fact (n) (cond (lesseq n 1) 1 (times n (fact (minus n 1))))) (fact 10)", "3628800"},
		{"(func last (l) (cond (equal (length l) 1) (head l) (last (tail l)))) (last '(1 2 3))", "3"},
		{"(func getx () x) (func f (x) (getx)) (f 7)", "7"},
		{"(setq a 10) (func f (a b) b) (f 1 a)", "10"},
		{"(setq a 10) (func f (a b) (plus a b)) (f (plus a 1) a)", "21"},
		{"((setq a 1) (setq b 2)) (plus a b)", "3"},
		{"('plus 1 2)", "3"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := testValue(t, tt.input)
			if diff := cmp.Diff(tt.expected, got.Inspect()); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEval_ControlSignals(t *testing.T) {
	tests := []struct {
		input string
		kind  object.ResultKind
		value string
	}{
		{"(return 5)", object.RETURN, "5"},
		{"1 (return (plus 1 1)) 3", object.RETURN, "2"},
		{"(break)", object.BREAK, "<nil>"},
		{"(setq x 1) (break) (setq x 2)", object.BREAK, "<nil>"},
		{"(prog () ((return 1) 2))", object.RETURN, "1"},
		{"(while true (return 7))", object.RETURN, "7"},
		{"(plus (return 1) (head ()))", object.RETURN, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := testEval(t, tt.input)
			if got.err != nil {
				t.Fatalf("unexpected error: %v", got.err)
			}
			if got.result.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", got.result.Kind, tt.kind)
			}
			if got.result.Value == nil {
				if tt.value != "<nil>" {
					t.Errorf("value = nil, want %s", tt.value)
				}
			} else if got.result.Value.Inspect() != tt.value {
				t.Errorf("value = %s, want %s", got.result.Value.Inspect(), tt.value)
			}
		})
	}
}

func TestEval_Errors(t *testing.T) {
	tests := []struct {
		input string
		kind  error
	}{
		{"(head (quote ()))", object.ErrEmptyList},
		{"(tail ())", object.ErrEmptyList},
		{"(nosuchfn 1 2)", object.ErrUndefinedFunction},
		{"x", object.ErrUnboundVariable},
		{"(plus x 1)", object.ErrUnboundVariable},
		{"(func g (a b) b) (g 1 a)", object.ErrUnboundVariable},
		{"(1 2)", object.ErrNotCallable},
		{"(setq x 1) (x 2)", object.ErrNotCallable},
		{"('1 2)", object.ErrNotCallable},
		{"(plus 1)", object.ErrArity},
		{"(quote)", object.ErrArity},
		{"(quote 1 2)", object.ErrArity},
		{"(cond true)", object.ErrArity},
		{"(break 1)", object.ErrArity},
		{"(func inc (n) n) (inc)", object.ErrArity},
		{"(plus 1 'a)", object.ErrTypeError},
		{"(plus 1 true)", object.ErrTypeError},
		{"(plus 1 '(1))", object.ErrTypeError},
		{"(less null 1)", object.ErrTypeError},
		{"(equal 1 null)", object.ErrTypeError},
		{"(mod 1.5 2)", object.ErrTypeError},
		{"(and 1 true)", object.ErrTypeError},
		{"(not null)", object.ErrTypeError},
		{"(cond 1 2)", object.ErrTypeError},
		{"(while 1 (break))", object.ErrTypeError},
		{"(divide 1 0)", object.ErrDivisionByZero},
		{"(mod 1 0)", object.ErrDivisionByZero},
		{"(setq 1 2)", object.ErrMalformedForm},
		{"(lambda (1) x)", object.ErrMalformedForm},
		{"(lambda x x)", object.ErrMalformedForm},
		{"(func 'f () 1)", object.ErrMalformedForm},
		{"(prog () 1)", object.ErrMalformedForm},
		{"(prog (1) ())", object.ErrMalformedForm},
		{"(func f () (break)) (f)", object.ErrBreakOutsideLoop},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := testEval(t, tt.input)
			if got.err == nil {
				t.Fatalf("expected error %v, got %s", tt.kind, got.result)
			}
			if !errors.Is(got.err, tt.kind) {
				t.Errorf("error = %v, want kind %v", got.err, tt.kind)
			}
			var rerr *object.Error
			if !errors.As(got.err, &rerr) {
				t.Fatalf("expected *object.Error, got %T", got.err)
			}
			if !rerr.Anchored() {
				t.Errorf("error %v is not anchored to a node", got.err)
			}
		})
	}
}

func TestEval_ErrorAnchors(t *testing.T) {
	tests := []struct {
		input string
		pos   string // line:column of the anchor
	}{
		// raised by head without a node: anchored to the calling list
		{"(plus 1\n  (head ()))", "2:3"},
		// type error on an argument: anchored to the argument
		{"(plus 1 'a)", "1:9"},
		// unknown function: anchored to the head
		{"(nosuchfn 1)", "1:2"},
		{"(setq y 1)\n(plus y z)", "2:9"},
		// arity: anchored to the call
		{"  (plus 1)", "1:3"},
		// non-boolean condition: anchored to the condition
		{"(cond 1 2)", "1:7"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := testEval(t, tt.input)
			var rerr *object.Error
			if !errors.As(got.err, &rerr) {
				t.Fatalf("expected *object.Error, got %v", got.err)
			}
			pos := got.eval.Fset().Position(rerr.Pos)
			if diff := cmp.Diff(tt.pos, strings.TrimPrefix(pos.String(), "test.fl:")); diff != "" {
				t.Errorf("anchor mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEval_ErrorCallStack(t *testing.T) {
	got := testEval(t, "(func f (l) (head l))\n(f ())")
	var rerr *object.Error
	if !errors.As(got.err, &rerr) {
		t.Fatalf("expected *object.Error, got %v", got.err)
	}
	var names []string
	for _, f := range rerr.CallStack {
		names = append(names, f.Function)
	}
	if diff := cmp.Diff([]string{"f", "head"}, names); diff != "" {
		t.Errorf("call stack mismatch (-want +got):\n%s", diff)
	}

	want := strings.Join([]string{
		"runtime error: empty list: head of ()",
		"\ttest.fl:1:13:",
		"\t\t1: (func f (l) (head l))",
		"\t\t               ~~~~~~~~",
		"\ttest.fl:1:13:\tin head",
		"\ttest.fl:2:1:\tin f",
		"",
	}, "\n")
	if diff := cmp.Diff(want, rerr.Inspect()); diff != "" {
		t.Errorf("Inspect() mismatch (-want +got):\n%s", diff)
	}
}

func TestEval_ErrorExcerptUnicode(t *testing.T) {
	got := testEval(t, "(setq 🍕 1) (plus 🍕 'a)")
	var rerr *object.Error
	if !errors.As(got.err, &rerr) {
		t.Fatalf("expected *object.Error, got %v", got.err)
	}

	want := strings.Join([]string{
		"runtime error: type error: plus: argument 2 must be a literal, got a",
		"\ttest.fl:1:26:",
		"\t\t1: (setq 🍕 1) (plus 🍕 'a)",
		"\t\t" + strings.Repeat(" ", 22) + "~~",
		"\ttest.fl:1:15:\tin plus",
		"",
	}, "\n")
	if diff := cmp.Diff(want, rerr.Inspect()); diff != "" {
		t.Errorf("Inspect() mismatch (-want +got):\n%s", diff)
	}
}

func TestEval_FirstErrorWins(t *testing.T) {
	tests := []struct {
		input  string
		kind   error
		stdout string
	}{
		{"(plus (head ()) (print 1))", object.ErrEmptyList, ""},
		{"(plus 'a (print 1))", object.ErrTypeError, ""},
		{"(cons (print 1) (head ()))", object.ErrEmptyList, "1\n"},
		{"(func f (a b) a) (f (head ()) (print 1))", object.ErrEmptyList, ""},
		{"(while (quote ()) (print 1))", object.ErrTypeError, ""},
		{"(while (quote) (print 1))", object.ErrArity, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := testEval(t, tt.input)
			if !errors.Is(got.err, tt.kind) {
				t.Errorf("error = %v, want kind %v", got.err, tt.kind)
			}
			if diff := cmp.Diff(tt.stdout, got.stdout); diff != "" {
				t.Errorf("stdout mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEval_Layers(t *testing.T) {
	t.Run("layers are released after errors", func(t *testing.T) {
		for _, input := range []string{
			"(func f (x) (head ())) (f 1)",
			"(prog () ((setq y 1) (head ())))",
			"(func f (x) (prog (x) ((setq z x) (cond (equal x 0) (head ()) (f (minus x 1)))))) (f 3)",
		} {
			got := testEval(t, input)
			if got.err == nil {
				t.Errorf("%q: expected an error", input)
			}
			if got.env.Depth() != 1 {
				t.Errorf("%q: environment depth = %d, want 1", input, got.env.Depth())
			}
			if got.eval.CallDepth() != 0 {
				t.Errorf("%q: call depth = %d, want 0", input, got.eval.CallDepth())
			}
		}
	})

	t.Run("prog keeps bindings except the listed ones", func(t *testing.T) {
		if got := testValue(t, "(prog (tmp) ((setq tmp 1) (setq keep 2))) keep"); got.Inspect() != "2" {
			t.Errorf("keep = %s", got.Inspect())
		}
		got := testEval(t, "(prog (tmp) ((setq tmp 1) (setq keep 2))) tmp")
		if !errors.Is(got.err, object.ErrUnboundVariable) {
			t.Errorf("tmp must be dropped, got %v", got.err)
		}
	})

	t.Run("lambda locals are dropped", func(t *testing.T) {
		got := testEval(t, "(func f (a) (setq b a)) (f 1) b")
		if !errors.Is(got.err, object.ErrUnboundVariable) {
			t.Errorf("b must not survive the call, got %v", got.err)
		}
		got = testEval(t, "(func f (a) a) (f 1) a")
		if !errors.Is(got.err, object.ErrUnboundVariable) {
			t.Errorf("parameter a must not survive the call, got %v", got.err)
		}
	})

	t.Run("setq writes the innermost layer", func(t *testing.T) {
		if got := testValue(t, "(setq x 1) (func f () (setq x 2)) (f) x"); got.Inspect() != "1" {
			t.Errorf("x = %s, want 1", got.Inspect())
		}
	})
}

func TestEval_StackOverflow(t *testing.T) {
	got := testEvalWithConfig(t, Config{MaxDepth: 50}, "(func f (n) (f n)) (f 1)")
	if !errors.Is(got.err, object.ErrStackOverflow) {
		t.Fatalf("error = %v, want stack overflow", got.err)
	}
	if got.env.Depth() != 1 || got.eval.CallDepth() != 0 {
		t.Errorf("depth after overflow: env=%d calls=%d", got.env.Depth(), got.eval.CallDepth())
	}
}

func TestEval_Print(t *testing.T) {
	got := testEval(t, "(print (plus 1 2)) (print '(a 1.0)) (print print)")
	if got.err != nil {
		t.Fatalf("unexpected error: %v", got.err)
	}
	if diff := cmp.Diff("3\n(a 1.0)\n<special form print>\n", got.stdout); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
	if !object.Equal(object.NULL, got.result.Value) {
		t.Errorf("print must return null, got %s", got.result.Value.Inspect())
	}
}

func TestEval_Canceled(t *testing.T) {
	fset := token.NewFileSet()
	prog, err := parser.ParseFile(fset, "loop.fl", []byte("(while true 1)"))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := object.NewEnvironment()
	RegisterBuiltins(env)
	_, err = New(Config{Fset: fset}).Eval(ctx, prog, env)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestEval_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	got := testEvalWithConfig(t, Config{Logger: logger}, "(func f (x) (plus x 2)) (f 1)")
	if got.err != nil {
		t.Fatalf("unexpected error: %v", got.err)
	}
	for _, want := range []string{"msg=apply", "callee=plus", "in_func=plus", "exec_pos=", `msg="enter layer"`, `msg="leave layer"`, "func=f"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log output does not contain %q:\n%s", want, buf.String())
		}
	}
}
