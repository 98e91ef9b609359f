// Command flang runs flang programs.
//
//	flang [flags] file.fl         run a program and print its value
//	flang [flags] a.fl b.fl ...   run each program in its own interpreter, in parallel
//	flang -e '(plus 1 2)'         evaluate an expression
//	flang                         start a REPL
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/podhmo/flang"
	"github.com/podhmo/flang/internal/config"
	"github.com/podhmo/flang/parser"
	"golang.org/x/sync/errgroup"
)

// errProgramFailed is returned by run after a program error has been reported.
var errProgramFailed = errors.New("program failed")

type options struct {
	Expr       string
	DumpAST    bool
	Parallel   int
	MaxDepth   int
	ConfigPath string
	LogLevel   slog.Level
	Files      []string

	logLevelSet bool // -log-level given explicitly
}

func main() {
	var opts options
	flag.StringVar(&opts.Expr, "e", "", "evaluate the expression and print its value (no file arguments allowed)")
	flag.BoolVar(&opts.DumpAST, "ast", false, "print the parsed program instead of evaluating it")
	flag.IntVar(&opts.Parallel, "j", 0, "number of programs run at once in batch mode (default: config or number of CPUs)")
	flag.IntVar(&opts.MaxDepth, "max-depth", 0, "maximum call depth (default: config or 10000)")
	flag.StringVar(&opts.ConfigPath, "config", "", "path to "+config.DefaultFilename+" (default: searched upwards from the current directory)")
	opts.LogLevel = slog.LevelWarn
	flag.TextVar(&opts.LogLevel, "log-level", &opts.LogLevel, "Log level (debug, info, warn, error)")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "log-level" {
			opts.logLevelSet = true
		}
	})
	opts.Files = flag.Args()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdout, os.Stderr, opts); err != nil {
		if errors.Is(err, errProgramFailed) {
			os.Exit(1)
		}
		log.Fatalf("!! %+v", err)
	}
}

// run executes the command. Program errors are written to stderr and
// reported as errProgramFailed.
func run(ctx context.Context, stdout, stderr io.Writer, opts options) error {
	if opts.Expr != "" && len(opts.Files) > 0 {
		return fmt.Errorf("-e cannot be combined with file arguments: %s", strings.Join(opts.Files, " "))
	}
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.CheckVersion(flang.LanguageVersion); err != nil {
		return err
	}

	level := opts.LogLevel
	if !opts.logLevelSet {
		if level, err = cfg.Level(opts.LogLevel); err != nil {
			return err
		}
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	if opts.MaxDepth == 0 {
		opts.MaxDepth = cfg.MaxDepth
	}
	if opts.Parallel == 0 {
		opts.Parallel = cfg.Parallel
	}
	if opts.Parallel <= 0 {
		opts.Parallel = runtime.GOMAXPROCS(0)
	}
	logger.DebugContext(ctx, "starting flang", "config", cfg.Path, "files", opts.Files, "max-depth", opts.MaxDepth)

	r := &runner{logger: logger, maxDepth: opts.MaxDepth, prelude: cfg.Prelude, dumpAST: opts.DumpAST}
	switch {
	case opts.Expr != "":
		return r.runSource(ctx, stdout, stderr, "<expr>", []byte(opts.Expr))
	case len(opts.Files) == 1:
		return r.runFile(ctx, stdout, stderr, opts.Files[0])
	case len(opts.Files) > 1:
		return r.runBatch(ctx, stdout, stderr, opts.Files, opts.Parallel)
	default:
		interp, err := r.newInterpreter(ctx, stdout, stderr)
		if err != nil {
			return err
		}
		return repl(ctx, interp, stdout, stderr)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		found, ok := config.Find(".")
		if !ok {
			return &config.Config{}, nil
		}
		path = found
	}
	return config.Load(path)
}

type runner struct {
	logger   *slog.Logger
	maxDepth int
	prelude  []string
	dumpAST  bool
}

// newInterpreter creates an interpreter with the prelude files loaded.
func (r *runner) newInterpreter(ctx context.Context, stdout, stderr io.Writer) (*flang.Interpreter, error) {
	interp, err := flang.NewInterpreter(
		flang.WithStdout(stdout),
		flang.WithLogger(r.logger),
		flang.WithMaxDepth(r.maxDepth),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing interpreter: %w", err)
	}
	for _, filename := range r.prelude {
		if _, err := interp.EvalFile(ctx, filename); err != nil {
			fmt.Fprint(stderr, flang.FormatError(err))
			return nil, errProgramFailed
		}
	}
	return interp, nil
}

func (r *runner) runFile(ctx context.Context, stdout, stderr io.Writer, filename string) error {
	src, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}
	return r.runSource(ctx, stdout, stderr, filename, src)
}

// runSource evaluates src and prints its value, or the parsed program
// when dumpAST is set.
func (r *runner) runSource(ctx context.Context, stdout, stderr io.Writer, filename string, src []byte) error {
	interp, err := r.newInterpreter(ctx, stdout, stderr)
	if err != nil {
		return err
	}
	prog, err := interp.Parse(filename, src)
	if err != nil {
		fmt.Fprint(stderr, flang.FormatError(err))
		return errProgramFailed
	}
	if r.dumpAST {
		return parser.Fprint(stdout, interp.Fset(), prog)
	}

	result, err := interp.EvalProgram(ctx, prog)
	if err != nil {
		fmt.Fprint(stderr, flang.FormatError(err))
		return errProgramFailed
	}
	fmt.Fprintln(stdout, flang.FormatResult(result))
	return nil
}

// runBatch runs every file in its own interpreter, at most parallel at a
// time, and prints the outputs in argument order.
func (r *runner) runBatch(ctx context.Context, stdout, stderr io.Writer, files []string, parallel int) error {
	type output struct {
		stdout, stderr bytes.Buffer
		err            error
	}
	outputs := make([]*output, len(files))

	g := new(errgroup.Group)
	g.SetLimit(parallel)
	for i, filename := range files {
		out := &output{}
		outputs[i] = out
		g.Go(func() error {
			r.logger.DebugContext(ctx, "batch: start", "file", filename)
			out.err = r.runFile(ctx, &out.stdout, &out.stderr, filename)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for i, out := range outputs {
		fmt.Fprintf(stdout, "== %s ==\n", files[i])
		io.Copy(stdout, &out.stdout)
		if out.stderr.Len() > 0 {
			fmt.Fprintf(stderr, "== %s ==\n", files[i])
			io.Copy(stderr, &out.stderr)
		}
		if out.err != nil {
			failed++
			if !errors.Is(out.err, errProgramFailed) {
				fmt.Fprintf(stderr, "%s: %v\n", files[i], out.err)
			}
		}
	}
	if failed > 0 {
		fmt.Fprintf(stderr, "%d of %d programs failed\n", failed, len(files))
		return errProgramFailed
	}
	return nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flang_history")
}

// trimmedHistory turns a possibly multi-line input into one history entry.
func trimmedHistory(src string) string {
	return strings.Join(strings.Fields(src), " ")
}
