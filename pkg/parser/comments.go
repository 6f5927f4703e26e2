package parser

import "strings"

// StripComments blanks out // and /* */ comments so that code can be searched
// with regular expressions without matching commented-out text. The result
// has the same byte length and newlines as code, so offsets and line numbers
// carry over. Comment markers inside quoted strings are left alone.
func StripComments(code string) string {
	s := NewStream(code)

	var out strings.Builder
	out.Grow(len(code))

	// keep copies the next rune's bytes as they are, valid UTF-8 or not
	keep := func() {
		begin := s.Pos()
		s.Next()
		out.WriteString(code[begin:s.Pos()])
	}
	// drop replaces the next rune with one space per byte, keeping newlines
	drop := func() {
		begin := s.Pos()
		if s.Next() == '\n' {
			out.WriteByte('\n')
			return
		}
		out.WriteString(strings.Repeat(" ", s.Pos()-begin))
	}

	for !s.EOF() {
		r := s.Peek(0)
		switch {
		case r == '"' || r == '\'':
			keep()
			for !s.EOF() {
				c := s.Peek(0)
				if c == '\n' {
					break
				}
				keep()
				if c == '\\' && !s.EOF() {
					keep()
				} else if c == r {
					break
				}
			}

		case r == '/' && s.Peek(1) == '/':
			for !s.EOF() && s.Peek(0) != '\n' {
				drop()
			}

		case r == '/' && s.Peek(1) == '*':
			drop()
			drop()
			for !s.EOF() && !(s.Peek(0) == '*' && s.Peek(1) == '/') {
				drop()
			}
			if !s.EOF() {
				drop()
				drop()
			}

		default:
			keep()
		}
	}
	return out.String()
}
