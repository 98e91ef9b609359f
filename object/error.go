package object

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"strings"

	"github.com/podhmo/flang/diagnostic"
)

// Error kinds. Match them with errors.Is.
var (
	ErrUnboundVariable   = errors.New("unbound variable")
	ErrUndefinedFunction = errors.New("undefined function")
	ErrNotCallable       = errors.New("not callable")
	ErrArity             = errors.New("wrong number of arguments")
	ErrTypeError         = errors.New("type error")
	ErrEmptyList         = errors.New("empty list")
	ErrMalformedForm     = errors.New("malformed form")
	ErrBreakOutsideLoop  = errors.New("break outside loop")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrStackOverflow     = errors.New("stack overflow")
)

// maxInspectFrames bounds the frames Inspect prints, so a stack overflow
// does not print the whole stack.
const maxInspectFrames = 32

// CallFrame represents a single frame in the call stack.
type CallFrame struct {
	Pos      token.Pos
	Function string
}

// Format formats the call frame into a readable string.
func (cf *CallFrame) Format(fset *token.FileSet) string {
	name := cf.Function
	if name == "" {
		name = "<program>"
	}
	if fset == nil || !cf.Pos.IsValid() {
		return "\tin " + name
	}
	return fmt.Sprintf("\t%s:\tin %s", diagnostic.Location(fset.Position(cf.Pos)), name)
}

// Error is a runtime error raised while evaluating a program.
type Error struct {
	Kind      error
	Message   string
	Node      Node // the node the error is anchored to; nil until anchored
	Pos       token.Pos
	End       token.Pos
	CallStack []*CallFrame

	fset    *token.FileSet
	sources map[string][]byte
}

// NewError creates an error of the given kind anchored at node (which may be nil).
func NewError(kind error, node Node, format string, args ...any) *Error {
	e := &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if node != nil {
		e.Anchor(node)
	}
	return e
}

// Anchored reports whether the error points at a node.
func (e *Error) Anchored() bool { return e.Node != nil }

// Anchor points the error at node.
func (e *Error) Anchor(node Node) {
	e.Node = node
	e.Pos = node.Pos()
	e.End = node.End()
}

// AttachFileSet attaches what Inspect needs to resolve positions. sources
// maps a filename to its content; files missing from it are read from disk.
func (e *Error) AttachFileSet(fset *token.FileSet, sources map[string][]byte) {
	e.fset = fset
	e.sources = sources
}

// Error makes it a valid Go error.
func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.fset != nil && e.Pos.IsValid() {
		return diagnostic.Location(e.fset.Position(e.Pos)) + ": " + msg
	}
	return msg
}

// Unwrap returns the kind, so errors.Is(err, ErrTypeError) works.
func (e *Error) Unwrap() error { return e.Kind }

// Inspect returns the message, the location with an excerpt of the source
// and the call stack, most recent call first.
func (e *Error) Inspect() string {
	var out strings.Builder

	out.WriteString("runtime error: ")
	out.WriteString(e.Kind.Error())
	if e.Message != "" {
		out.WriteString(": ")
		out.WriteString(e.Message)
	}

	if e.fset != nil && e.Pos.IsValid() {
		from := e.fset.Position(e.Pos)
		fmt.Fprintf(&out, "\n\t%s:", diagnostic.Location(from))
		var to token.Position
		if e.End.IsValid() {
			to = e.fset.Position(e.End)
		}
		if src := e.source(from.Filename); src != nil {
			if excerpt := diagnostic.Excerpt(src, from, to); excerpt != "" {
				for _, line := range strings.Split(excerpt, "\n") {
					out.WriteString("\n\t\t")
					out.WriteString(line)
				}
			}
		}
	}
	out.WriteString("\n")

	shown := 0
	for i := len(e.CallStack) - 1; i >= 0; i-- {
		if shown == maxInspectFrames {
			fmt.Fprintf(&out, "\t... %d more frames\n", i+1)
			break
		}
		out.WriteString(e.CallStack[i].Format(e.fset))
		out.WriteString("\n")
		shown++
	}
	return out.String()
}

func (e *Error) source(filename string) []byte {
	if src, ok := e.sources[filename]; ok {
		return src
	}
	if filename == "" {
		return nil
	}
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil
	}
	return src
}
