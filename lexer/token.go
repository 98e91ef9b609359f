package lexer

import "strconv"

// Token is the set of lexical tokens.
type Token int

const (
	ILLEGAL Token = iota
	EOF

	QUOTE  // ' or `
	LPAREN // (
	RPAREN // )

	IDENT // plus, x, 🍕
	INT   // 42, -7
	REAL  // 1.5, -0.25

	TRUE
	FALSE
	NULL
)

var tokens = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	QUOTE:   "'",
	LPAREN:  "(",
	RPAREN:  ")",
	IDENT:   "IDENT",
	INT:     "INT",
	REAL:    "REAL",
	TRUE:    "true",
	FALSE:   "false",
	NULL:    "null",
}

func (tok Token) String() string {
	if 0 <= tok && int(tok) < len(tokens) {
		return tokens[tok]
	}
	return "token(" + strconv.Itoa(int(tok)) + ")"
}

var keywords = map[string]Token{
	"true":  TRUE,
	"false": FALSE,
	"null":  NULL,
}

// Lookup maps an identifier to its keyword token or IDENT.
func Lookup(ident string) Token {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
