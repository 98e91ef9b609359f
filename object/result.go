package object

import "fmt"

// ResultKind distinguishes normal completion from the control signals.
type ResultKind int

const (
	OK ResultKind = iota
	RETURN
	BREAK
)

func (k ResultKind) String() string {
	switch k {
	case OK:
		return "OK"
	case RETURN:
		return "RETURN"
	case BREAK:
		return "BREAK"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// Result is the outcome of evaluating a node that did not fail.
// Value is nil for BREAK.
type Result struct {
	Kind  ResultKind
	Value Node
}

// Ok wraps a plain value.
func Ok(v Node) Result { return Result{Kind: OK, Value: v} }

// Return wraps the value of a (return ...) form.
func Return(v Node) Result { return Result{Kind: RETURN, Value: v} }

// Break is the result of a (break) form.
func Break() Result { return Result{Kind: BREAK} }

// IsOK reports whether the result is a plain value.
func (r Result) IsOK() bool { return r.Kind == OK }

func (r Result) String() string {
	switch r.Kind {
	case BREAK:
		return "BREAK"
	case RETURN:
		return "RETURN(" + inspect(r.Value) + ")"
	default:
		return inspect(r.Value)
	}
}

func inspect(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.Inspect()
}
