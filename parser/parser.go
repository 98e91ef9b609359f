// Package parser builds a Program from source text.
//
//	program := element*
//	element := INT | REAL | true | false | null | IDENT | list | quote element
//	list    := '(' element* ')'
//
// Every node it produces carries its [Pos, End) span in the given FileSet.
package parser

import (
	"errors"
	"fmt"
	"go/token"
	"strconv"
	"strings"

	"github.com/podhmo/flang/diagnostic"
	"github.com/podhmo/flang/lexer"
	"github.com/podhmo/flang/object"
)

// Error is a lexical or syntax error.
type Error struct {
	Pos        token.Position
	End        token.Position
	Msg        string
	Incomplete bool // the input ended before the construct was closed

	src []byte
}

func (e *Error) Error() string {
	return diagnostic.Location(e.Pos) + ": " + e.Msg
}

// Inspect returns the message followed by an excerpt of the source.
func (e *Error) Inspect() string {
	var out strings.Builder
	out.WriteString("syntax error: ")
	out.WriteString(e.Msg)
	fmt.Fprintf(&out, "\n\t%s:", diagnostic.Location(e.Pos))
	if excerpt := diagnostic.Excerpt(e.src, e.Pos, e.End); excerpt != "" {
		for _, line := range strings.Split(excerpt, "\n") {
			out.WriteString("\n\t\t")
			out.WriteString(line)
		}
	}
	out.WriteString("\n")
	return out.String()
}

// IsIncomplete reports whether err was caused by input that ended inside an
// unterminated list or after a dangling quote. A REPL uses it to ask for
// more lines.
func IsIncomplete(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Incomplete
}

// ParseFile parses src as the content of filename, registering the file in
// fset. It stops at the first error.
func ParseFile(fset *token.FileSet, filename string, src []byte) (*object.Program, error) {
	file := fset.AddFile(filename, -1, len(src))
	p := &parser{fset: fset, file: file, src: src, lex: lexer.New(file, src)}
	p.next()

	prog := &object.Program{Filename: filename}
	for p.tok != lexer.EOF {
		elem, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		prog.Elements = append(prog.Elements, elem)
	}
	return prog, nil
}

type parser struct {
	fset *token.FileSet
	file *token.File
	src  []byte
	lex  *lexer.Lexer

	pos token.Pos
	tok lexer.Token
	lit string
}

func (p *parser) next() {
	p.pos, p.tok, p.lit = p.lex.Scan()
}

func (p *parser) span() object.Span {
	return object.Span{From: p.pos, To: p.pos + token.Pos(len(p.lit))}
}

func (p *parser) errorf(from, to token.Pos, format string, args ...any) *Error {
	e := &Error{Pos: p.fset.Position(from), Msg: fmt.Sprintf(format, args...), src: p.src}
	if to.IsValid() {
		e.End = p.fset.Position(to)
	}
	return e
}

func (p *parser) incomplete(open token.Pos, what string) *Error {
	e := p.errorf(open, open+1, "unexpected end of input: unterminated %s", what)
	e.Incomplete = true
	return e
}

func (p *parser) parseElement() (object.Node, error) {
	switch p.tok {
	case lexer.LPAREN:
		return p.parseList()
	case lexer.QUOTE:
		return p.parseQuote()
	case lexer.IDENT:
		ident := &object.Identifier{Span: p.span(), Name: p.lit}
		p.next()
		return &object.Atom{Ident: ident}, nil
	case lexer.INT:
		v, err := strconv.ParseInt(p.lit, 10, 64)
		if err != nil {
			return nil, p.errorf(p.pos, p.span().To, "integer literal out of range: %s", p.lit)
		}
		lit := object.NewInteger(v).WithSpan(p.span())
		p.next()
		return lit, nil
	case lexer.REAL:
		v, err := strconv.ParseFloat(p.lit, 64)
		if err != nil {
			return nil, p.errorf(p.pos, p.span().To, "invalid real literal: %s", p.lit)
		}
		lit := object.NewReal(v).WithSpan(p.span())
		p.next()
		return lit, nil
	case lexer.TRUE, lexer.FALSE:
		lit := object.NativeBoolean(p.tok == lexer.TRUE).WithSpan(p.span())
		p.next()
		return lit, nil
	case lexer.NULL:
		lit := object.NULL.WithSpan(p.span())
		p.next()
		return lit, nil
	case lexer.RPAREN:
		return nil, p.errorf(p.pos, p.pos+1, "unexpected ')'")
	case lexer.ILLEGAL:
		return nil, p.errorf(p.pos, p.span().To, "illegal character %q", p.lit)
	default:
		return nil, p.errorf(p.pos, token.NoPos, "unexpected %s", p.tok)
	}
}

func (p *parser) parseList() (*object.List, error) {
	list := &object.List{Lparen: p.pos}
	p.next()
	for p.tok != lexer.RPAREN {
		if p.tok == lexer.EOF {
			return nil, p.incomplete(list.Lparen, "list")
		}
		elem, err := p.parseElement()
		if err != nil {
			return nil, err
		}
		list.Elements = append(list.Elements, elem)
	}
	list.Rparen = p.pos
	p.next()
	return list, nil
}

func (p *parser) parseQuote() (*object.Quote, error) {
	q := &object.Quote{Quote: p.pos}
	p.next()
	if p.tok == lexer.EOF {
		return nil, p.incomplete(q.Quote, "quote")
	}
	x, err := p.parseElement()
	if err != nil {
		return nil, err
	}
	q.X = x
	return q, nil
}
