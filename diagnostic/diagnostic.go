// Package diagnostic renders source excerpts for error reporting.
//
// An excerpt prints every line touched by a span, prefixed with its line
// number, followed by a line of '~' marking the span:
//
//	3: (plus 1 (head (quote ())))
//	           ~~~~~~~~~~~~~~~~~
package diagnostic

import (
	"fmt"
	"go/token"
	"strings"
	"unicode/utf8"
)

// Excerpt renders the lines of src covered by [from, to).
// For a single-line span the underline covers the column range. For a
// multi-line span it covers the overall width of the non-blank text.
// Columns in from and to count bytes; the underline counts runes.
// It returns "" when the positions do not fall inside src.
func Excerpt(src []byte, from, to token.Position) string {
	if !from.IsValid() || from.Line <= 0 {
		return ""
	}
	if !to.IsValid() || to.Line < from.Line || (to.Line == from.Line && to.Column <= from.Column) {
		to = from
		to.Column = from.Column + 1
		to.Offset = from.Offset + 1
	}

	lines := strings.Split(string(src), "\n")
	if from.Line > len(lines) {
		return ""
	}
	last := to.Line
	if last > len(lines) {
		last = len(lines)
	}

	width := len(fmt.Sprintf("%d", last))
	prefix := width + 2 // "N: "

	var b strings.Builder
	minLeft, maxRight := -1, 0
	var first string
	for n := from.Line; n <= last; n++ {
		line := strings.TrimRight(lines[n-1], "\r")
		line = strings.ReplaceAll(line, "\t", " ")
		if n == from.Line {
			first = line
		}
		fmt.Fprintf(&b, "%*d: %s\n", width, n, line)
		col := 0
		for _, c := range line {
			col++
			if c == ' ' {
				continue
			}
			if minLeft < 0 || col < minLeft {
				minLeft = col
			}
			if col > maxRight {
				maxRight = col
			}
		}
	}

	if from.Line == last {
		left := runeColumn(first, from.Column)
		n := runeColumn(first, to.Column) - left
		if n < 1 {
			n = 1
		}
		b.WriteString(strings.Repeat(" ", prefix+left-1))
		b.WriteString(strings.Repeat("~", n))
	} else {
		if minLeft < 0 {
			minLeft, maxRight = 1, 1
		}
		b.WriteString(strings.Repeat(" ", prefix+minLeft-1))
		b.WriteString(strings.Repeat("~", maxRight-minLeft+1))
	}
	return b.String()
}

// runeColumn converts a 1-based byte column of line to a 1-based rune column.
// Columns past the end of the line keep counting one per byte.
func runeColumn(line string, col int) int {
	i := col - 1
	if i <= 0 {
		return 1
	}
	if i > len(line) {
		return utf8.RuneCountInString(line) + 1 + (i - len(line))
	}
	return utf8.RuneCountInString(line[:i]) + 1
}

// Location formats a position the way the go toolchain does ("file:line:col"),
// omitting the filename when it is empty.
func Location(pos token.Position) string {
	if pos.Filename == "" {
		return fmt.Sprintf("%d:%d", pos.Line, pos.Column)
	}
	return fmt.Sprintf("%s:%d:%d", pos.Filename, pos.Line, pos.Column)
}
