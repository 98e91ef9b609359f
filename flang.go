// Package flang is the embedding API of the flang interpreter.
//
//	interp, err := flang.NewInterpreter(flang.WithStdout(w))
//	if err != nil { ... }
//	r, err := interp.EvalString(ctx, "(func inc (n) (plus n 1)) (inc 41)")
package flang

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"io"
	"log/slog"
	"os"

	"github.com/podhmo/flang/evaluator"
	"github.com/podhmo/flang/object"
	"github.com/podhmo/flang/parser"
)

// LanguageVersion is the version of the language this interpreter implements.
const LanguageVersion = "v1.0.0"

// Interpreter holds the state of one program run: the file set, the loaded
// sources and the global environment. It is not safe for concurrent use.
type Interpreter struct {
	fset      *token.FileSet
	sources   map[string][]byte
	eval      *evaluator.Evaluator
	globalEnv *object.Environment
	replLines int

	stdout   io.Writer
	logger   *slog.Logger
	maxDepth int
}

// Option is a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithStdout sets the writer used by print.
func WithStdout(w io.Writer) Option {
	return func(i *Interpreter) {
		i.stdout = w
	}
}

// WithLogger sets the logger of the evaluator.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) {
		i.logger = l
	}
}

// WithMaxDepth limits the depth of nested calls. Zero means the default.
func WithMaxDepth(n int) Option {
	return func(i *Interpreter) {
		i.maxDepth = n
	}
}

// WithFileSet makes the interpreter register parsed files in fset.
func WithFileSet(fset *token.FileSet) Option {
	return func(i *Interpreter) {
		i.fset = fset
	}
}

// NewInterpreter creates a new interpreter instance, configured with options.
// Every builtin is registered in the root layer of its global environment.
func NewInterpreter(options ...Option) (*Interpreter, error) {
	i := &Interpreter{
		fset:      token.NewFileSet(),
		sources:   make(map[string][]byte),
		globalEnv: object.NewEnvironment(),
		stdout:    os.Stdout,
	}
	for _, opt := range options {
		opt(i)
	}
	if i.maxDepth < 0 {
		return nil, fmt.Errorf("invalid max depth %d", i.maxDepth)
	}

	i.eval = evaluator.New(evaluator.Config{
		Fset:     i.fset,
		Sources:  i.sources,
		Stdout:   i.stdout,
		Logger:   i.logger,
		MaxDepth: i.maxDepth,
	})
	evaluator.RegisterBuiltins(i.globalEnv)
	return i, nil
}

// RegisterSpecial registers a special form taking any number of
// unevaluated arguments. It is available in the global scope.
func (i *Interpreter) RegisterSpecial(name string, fn object.SpecialFormFunction) {
	i.globalEnv.SetRoot(name, &object.SpecialForm{Name: name, MinArgs: 0, MaxArgs: -1, Fn: fn})
}

// RegisterFunction registers a builtin whose arguments are evaluated and
// checked against params before fn is called.
func (i *Interpreter) RegisterFunction(name string, params []object.ParamKind, fn object.SpecialFormFunction) {
	if params == nil {
		params = []object.ParamKind{}
	}
	i.globalEnv.SetRoot(name, &object.SpecialForm{Name: name, MinArgs: len(params), MaxArgs: len(params), Params: params, Fn: fn})
}

// Parse parses src as filename and keeps the source for error excerpts.
func (i *Interpreter) Parse(filename string, src []byte) (*object.Program, error) {
	i.sources[filename] = src
	prog, err := parser.ParseFile(i.fset, filename, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	return prog, nil
}

// EvalProgram evaluates prog in the global environment. A top-level RETURN
// or BREAK result is returned unchanged.
func (i *Interpreter) EvalProgram(ctx context.Context, prog *object.Program) (object.Result, error) {
	return i.eval.Eval(ctx, prog, i.globalEnv)
}

// EvalString parses and evaluates source.
func (i *Interpreter) EvalString(ctx context.Context, source string) (object.Result, error) {
	prog, err := i.Parse("<string>", []byte(source))
	if err != nil {
		return object.Result{}, err
	}
	return i.EvalProgram(ctx, prog)
}

// EvalFile reads, parses and evaluates filename.
func (i *Interpreter) EvalFile(ctx context.Context, filename string) (object.Result, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return object.Result{}, fmt.Errorf("reading %s: %w", filename, err)
	}
	prog, err := i.Parse(filename, src)
	if err != nil {
		return object.Result{}, err
	}
	return i.EvalProgram(ctx, prog)
}

// EvalLine evaluates one chunk of REPL input. Bindings persist between
// calls. An error satisfying parser.IsIncomplete means more input is needed.
func (i *Interpreter) EvalLine(ctx context.Context, line string) (object.Result, error) {
	i.replLines++
	prog, err := i.Parse(fmt.Sprintf("<repl:%d>", i.replLines), []byte(line))
	if err != nil {
		return object.Result{}, err
	}
	return i.EvalProgram(ctx, prog)
}

// Get retrieves a binding from the global environment.
func (i *Interpreter) Get(name string) (object.Node, bool) {
	return i.globalEnv.Get(name)
}

// Fset returns the file set of the parsed sources.
func (i *Interpreter) Fset() *token.FileSet {
	return i.fset
}

// FormatResult renders the outcome of a program the way the command line
// driver prints it.
func FormatResult(r object.Result) string {
	switch r.Kind {
	case object.BREAK:
		return "exited with break"
	default:
		if r.Value == nil {
			return object.NULL.Inspect()
		}
		return r.Value.Inspect()
	}
}

// FormatError renders err with its source excerpt and call stack when it
// carries them.
func FormatError(err error) string {
	var inspector interface{ Inspect() string }
	if errors.As(err, &inspector) {
		return inspector.Inspect()
	}
	return err.Error() + "\n"
}
