package main

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"
	"github.com/podhmo/flang"
	"github.com/podhmo/flang/parser"
)

const (
	promptMain = "flang> "
	promptCont = "...... "
)

// lineReader is the part of *liner.State the REPL uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func repl(ctx context.Context, interp *flang.Interpreter, stdout, stderr io.Writer) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if path := historyPath(); path != "" {
		if f, err := os.Open(path); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(path); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	fmt.Fprintf(stdout, "flang %s REPL\nCtrl+C cancels input or a running evaluation, Ctrl+D exits.\n", flang.LanguageVersion)
	return loop(ctx, interp, ln, stdout, stderr)
}

// loop reads inputs until EOF and prints the value of each. Evaluation
// errors are reported and the loop continues; bindings persist.
func loop(ctx context.Context, interp *flang.Interpreter, ln lineReader, stdout, stderr io.Writer) error {
	// A Ctrl+C during evaluation cancels that evaluation only.
	base := context.WithoutCancel(ctx)
	for {
		src, ok := readInput(ln, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(stdout)
			return nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		if strings.TrimSpace(src) == ":quit" {
			return nil
		}
		ln.AppendHistory(trimmedHistory(src))

		evalCtx, stop := signal.NotifyContext(base, os.Interrupt)
		r, err := interp.EvalLine(evalCtx, src)
		stop()
		if err != nil {
			fmt.Fprint(stderr, flang.FormatError(err))
			continue
		}
		fmt.Fprintln(stdout, flang.FormatResult(r))
	}
}

// readInput reads lines until they form a complete program, using the
// parser to decide whether more input is needed.
func readInput(ln lineReader, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, perr := parser.ParseFile(token.NewFileSet(), "<probe>", []byte(src)); parser.IsIncomplete(perr) {
			continue
		}
		return src, true
	}
}
