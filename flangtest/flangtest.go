// Package flangtest provides helpers for running flang programs in tests.
package flangtest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/podhmo/flang"
	"github.com/podhmo/flang/object"
)

// Result provides access to the results of a program run.
type Result struct {
	Value  object.Result
	Stdout string
	interp *flang.Interpreter
}

// Get retrieves a global binding by name.
func (r *Result) Get(name string) (object.Node, bool) {
	return r.interp.Get(name)
}

// String returns the value the way the command line driver prints it.
func (r *Result) String() string {
	return flang.FormatResult(r.Value)
}

// Run evaluates src in a fresh interpreter.
func Run(ctx context.Context, src string, options ...flang.Option) (*Result, error) {
	return RunFiles(ctx, map[string]string{"main.fl": src}, options...)
}

// RunFiles evaluates files in a single fresh interpreter, in filename
// order. The value is that of the last file.
func RunFiles(ctx context.Context, files map[string]string, options ...flang.Option) (*Result, error) {
	var stdout bytes.Buffer
	interp, err := flang.NewInterpreter(append([]flang.Option{flang.WithStdout(&stdout)}, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create interpreter: %w", err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &Result{interp: interp}
	for _, name := range names {
		prog, err := interp.Parse(name, []byte(files[name]))
		if err != nil {
			return nil, err
		}
		r, err := interp.EvalProgram(ctx, prog)
		result.Stdout = stdout.String()
		if err != nil {
			return result, fmt.Errorf("evaluation of %s failed: %w", name, err)
		}
		result.Value = r
	}
	return result, nil
}

// Eval runs src and returns the printed value, failing the test on error.
func Eval(t testing.TB, src string, options ...flang.Option) string {
	t.Helper()
	r, err := Run(context.Background(), src, options...)
	if err != nil {
		t.Fatalf("unexpected error:\n%s", flang.FormatError(err))
	}
	return r.String()
}

// EvalError runs src and returns the error, failing the test when the
// program succeeds.
func EvalError(t testing.TB, src string, options ...flang.Option) error {
	t.Helper()
	r, err := Run(context.Background(), src, options...)
	if err == nil {
		t.Fatalf("expected an error, got %s", r)
	}
	return err
}

// WriteFiles creates a temporary directory populated with files and returns
// its path. Names may contain slashes.
func WriteFiles(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll(%q): %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile(%q): %v", path, err)
		}
	}
	return dir
}
