// Package lexer turns source text into tokens.
//
// Whitespace and '#' line comments are skipped. Integers and reals may carry
// a leading '-'; a real needs digits on both sides of the '.'. Identifiers
// start with a letter, '_' or an emoji and continue with those or digits;
// true, false and null are keywords.
package lexer

import (
	"fmt"
	"go/token"
	"unicode"
	"unicode/utf8"
)

// Lexer holds the scanning state. It is not safe for concurrent use.
type Lexer struct {
	file *token.File
	src  []byte

	ch       rune // current character, -1 at the end
	offset   int  // offset of ch
	rdOffset int  // offset after ch
}

// New prepares a lexer for src. file must have been created with
// len(src) as its size; line offsets are recorded as the lexer advances.
func New(file *token.File, src []byte) *Lexer {
	if file.Size() != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)", file.Size(), len(src)))
	}
	l := &Lexer{file: file, src: src}
	l.next()
	return l
}

func (l *Lexer) next() {
	if l.rdOffset >= len(l.src) {
		l.offset = len(l.src)
		l.ch = -1
		return
	}
	l.offset = l.rdOffset
	if l.ch == '\n' {
		l.file.AddLine(l.offset)
	}
	r, w := rune(l.src[l.rdOffset]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRune(l.src[l.rdOffset:])
	}
	l.rdOffset += w
	l.ch = r
}

func (l *Lexer) peek() byte {
	if l.rdOffset < len(l.src) {
		return l.src[l.rdOffset]
	}
	return 0
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.next()
		case l.ch == '#':
			for l.ch != '\n' && l.ch >= 0 {
				l.next()
			}
		default:
			return
		}
	}
}

// Scan returns the next token with its position and literal text. At the
// end of input it returns EOF; an unexpected character is returned as
// ILLEGAL with the character as its literal.
func (l *Lexer) Scan() (pos token.Pos, tok Token, lit string) {
	l.skipWhitespaceAndComments()

	pos = l.file.Pos(l.offset)
	start := l.offset
	switch ch := l.ch; {
	case ch < 0:
		return pos, EOF, ""
	case ch == '(':
		l.next()
		return pos, LPAREN, "("
	case ch == ')':
		l.next()
		return pos, RPAREN, ")"
	case ch == '\'' || ch == '`':
		l.next()
		return pos, QUOTE, string(ch)
	case isDigit(ch) || (ch == '-' && isDigit(rune(l.peek()))):
		tok = l.scanNumber()
		return pos, tok, string(l.src[start:l.offset])
	case isIdentStart(ch):
		for isIdentPart(l.ch) {
			l.next()
		}
		lit = string(l.src[start:l.offset])
		return pos, Lookup(lit), lit
	default:
		l.next()
		return pos, ILLEGAL, string(ch)
	}
}

// scanNumber reads an integer or, when a '.' followed by a digit comes
// after the integer part, a real.
func (l *Lexer) scanNumber() Token {
	if l.ch == '-' {
		l.next()
	}
	for isDigit(l.ch) {
		l.next()
	}
	if l.ch == '.' && isDigit(rune(l.peek())) {
		l.next()
		for isDigit(l.ch) {
			l.next()
		}
		return REAL
	}
	return INT
}

// Offset returns the byte offset of the next unread character.
func (l *Lexer) Offset() int { return l.offset }

func isDigit(ch rune) bool { return '0' <= ch && ch <= '9' }

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch) || isEmoji(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch) ||
		unicode.In(ch, unicode.Mn, unicode.Mc, unicode.Pc) ||
		ch == 0x200D || ch == 0xFE0F // emoji joiner and presentation selector
}

// isEmoji reports whether ch lies in one of the pictograph blocks.
func isEmoji(ch rune) bool {
	switch {
	case 0x1F300 <= ch && ch <= 0x1F5FF: // Miscellaneous Symbols and Pictographs
		return true
	case 0x1F600 <= ch && ch <= 0x1F64F: // Emoticons
		return true
	case 0x1F680 <= ch && ch <= 0x1F6FF: // Transport and Map Symbols
		return true
	case 0x1F900 <= ch && ch <= 0x1F9FF: // Supplemental Symbols and Pictographs
		return true
	case 0x1FA70 <= ch && ch <= 0x1FAFF: // Symbols and Pictographs Extended-A
		return true
	}
	return false
}
