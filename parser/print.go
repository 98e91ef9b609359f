package parser

import (
	"fmt"
	"go/token"
	"io"
	"strings"

	"github.com/podhmo/flang/object"
)

// Fprint writes the tree rooted at node to w, one node per line, indented
// by depth and annotated with its position when fset is not nil.
func Fprint(w io.Writer, fset *token.FileSet, node object.Node) error {
	p := &printer{w: w, fset: fset}
	p.print(node, 0)
	return p.err
}

type printer struct {
	w    io.Writer
	fset *token.FileSet
	err  error
}

func (p *printer) printf(depth int, format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), fmt.Sprintf(format, args...))
}

func (p *printer) at(n object.Node) string {
	if p.fset == nil || !n.Pos().IsValid() {
		return ""
	}
	pos := p.fset.Position(n.Pos())
	return fmt.Sprintf(" @%d:%d", pos.Line, pos.Column)
}

func (p *printer) print(node object.Node, depth int) {
	switch n := node.(type) {
	case *object.Program:
		p.printf(depth, "Program %s", n.Filename)
		for _, e := range n.Elements {
			p.print(e, depth+1)
		}
	case *object.List:
		p.printf(depth, "List%s", p.at(n))
		for _, e := range n.Elements {
			p.print(e, depth+1)
		}
	case *object.Quote:
		p.printf(depth, "Quote%s", p.at(n))
		p.print(n.X, depth+1)
	case *object.Atom:
		p.printf(depth, "Atom %s%s", n.Name(), p.at(n))
	case *object.Literal:
		p.printf(depth, "Literal %s %s%s", n.Kind, n.Inspect(), p.at(n))
	default:
		p.printf(depth, "%s %s%s", node.Type(), node.Inspect(), p.at(node))
	}
}
