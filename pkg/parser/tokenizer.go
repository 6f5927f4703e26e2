// Package parser implements the shader-toy directive front end: a mutable
// character stream, a tokenizer with one token of lookahead, and a parser
// that recognizes #iChannel, #include, #iUniform and friends inside GLSL.
package parser

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenType represents the class of a token
type TokenType int

const (
	TokenPunctuation TokenType = iota
	TokenOperator
	TokenString
	TokenInteger
	TokenFloat
	TokenIdentifier
	TokenPreprocessorKeyword
	TokenKeyword
	TokenTypeName
	TokenUnknown
)

var tokenTypeNames = map[TokenType]string{
	TokenPunctuation:         "PUNCTUATION",
	TokenOperator:            "OPERATOR",
	TokenString:              "STRING",
	TokenInteger:             "INTEGER",
	TokenFloat:               "FLOAT",
	TokenIdentifier:          "IDENTIFIER",
	TokenPreprocessorKeyword: "PREPROCESSOR",
	TokenKeyword:             "KEYWORD",
	TokenTypeName:            "TYPE",
	TokenUnknown:             "UNKNOWN",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return "INVALID"
}

// Token represents a single token
type Token struct {
	Type   TokenType
	Value  string
	Offset int // start in the stream's current text
	End    int // exclusive end in the stream's current text
	Line   int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("%s:%s", t.Type, t.Value)
}

// Is reports whether the token has the given type and value
func (t Token) Is(tokenType TokenType, value string) bool {
	return t.Type == tokenType && t.Value == value
}

// keywords may follow #iChannelN:: or appear inside #iUniform
var keywords = map[string]bool{
	"MinFilter": true,
	"MagFilter": true,
	"WrapMode":  true,
	"Type":      true,
	"in":        true,
	"step":      true,
}

// typeNames are the GLSL types a #iUniform may declare
var typeNames = map[string]bool{
	"float":  true,
	"vec2":   true,
	"vec3":   true,
	"vec4":   true,
	"int":    true,
	"ivec2":  true,
	"ivec3":  true,
	"ivec4":  true,
	"color3": true,
}

var preprocessorKeywords = map[string]bool{
	"include":              true,
	"iKeyboard":            true,
	"iUniform":             true,
	"iFirstPersonControls": true,
	"StrictCompatibility":  true,
}

const (
	punctuation = ".,:;()[]{}"
	operators   = "=*/+-%~&|<>?!^"
)

// Tokenizer pulls tokens out of a Stream, skipping whitespace and comments
type Tokenizer struct {
	stream *Stream
	peeked *Token
}

// NewTokenizer creates a tokenizer reading from stream
func NewTokenizer(stream *Stream) *Tokenizer {
	return &Tokenizer{stream: stream}
}

// Peek returns the next token without consuming it
func (t *Tokenizer) Peek() (Token, bool) {
	if t.peeked == nil {
		tok, ok := t.read()
		if !ok {
			return Token{}, false
		}
		t.peeked = &tok
	}
	return *t.peeked, true
}

// Next consumes and returns the next token
func (t *Tokenizer) Next() (Token, bool) {
	tok, ok := t.Peek()
	t.peeked = nil
	return tok, ok
}

// EOF reports whether no token is left
func (t *Tokenizer) EOF() bool {
	_, ok := t.Peek()
	return !ok
}

// Line returns the stream's current line
func (t *Tokenizer) Line() int {
	return t.stream.Line()
}

// Reset drops any lookahead and moves the stream to pos
func (t *Tokenizer) Reset(pos int) {
	t.peeked = nil
	t.stream.Reset(pos)
}

// Tokenize drains the tokenizer, mostly useful for debugging
func (t *Tokenizer) Tokenize() []Token {
	var tokens []Token
	for {
		tok, ok := t.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// read scans the next token; unknown # directives are consumed silently
func (t *Tokenizer) read() (Token, bool) {
	s := t.stream
	for {
		t.skipWhitespaceAndComments()
		if s.EOF() {
			return Token{}, false
		}

		start, line := s.Pos(), s.Line()
		r := s.Peek(0)

		var tokenType TokenType
		var value string

		switch {
		case r == '"' || r == '\'':
			tokenType, value = TokenString, t.scanString()

		case isNumberStart(r) && t.looksLikeNumber():
			tokenType, value = t.scanNumber()

		case isIdentifierStart(r):
			value = t.scanIdentifier()
			tokenType = classifyIdentifier(value)

		case r == '#':
			s.Next()
			if !isIdentifierStart(s.Peek(0)) {
				continue
			}
			value = t.scanIdentifier()
			if !isPreprocessorKeyword(value) {
				continue
			}
			tokenType = TokenPreprocessorKeyword

		case strings.ContainsRune(punctuation, r):
			s.Next()
			value = string(r)
			if r == ':' && s.Peek(0) == ':' {
				s.Next()
				value = "::"
			}
			tokenType = TokenPunctuation

		case strings.ContainsRune(operators, r):
			s.Next()
			tokenType, value = TokenOperator, string(r)

		default:
			s.Next()
			tokenType, value = TokenUnknown, string(r)
		}

		return Token{Type: tokenType, Value: value, Offset: start, End: s.Pos(), Line: line}, true
	}
}

// skipWhitespaceAndComments advances past blanks, // and /* */ comments
func (t *Tokenizer) skipWhitespaceAndComments() {
	s := t.stream
	for !s.EOF() {
		r := s.Peek(0)
		switch {
		case unicode.IsSpace(r):
			s.Next()
		case r == '/' && s.Peek(1) == '/':
			for !s.EOF() && s.Peek(0) != '\n' {
				s.Next()
			}
		case r == '/' && s.Peek(1) == '*':
			s.Next()
			s.Next()
			for !s.EOF() && !(s.Peek(0) == '*' && s.Peek(1) == '/') {
				s.Next()
			}
			s.Next()
			s.Next()
		default:
			return
		}
	}
}

// scanString scans a quoted string and returns its unescaped contents
func (t *Tokenizer) scanString() string {
	s := t.stream
	quote := s.Next()

	var value strings.Builder
	for !s.EOF() {
		r := s.Next()
		if r == quote {
			break
		}
		if r == '\\' && !s.EOF() {
			r = s.Next()
		}
		value.WriteRune(r)
	}
	return value.String()
}

// looksLikeNumber checks that a sign or dot is eventually followed by a digit
func (t *Tokenizer) looksLikeNumber() bool {
	s := t.stream
	i := 0
	if r := s.Peek(i); r == '+' || r == '-' {
		i++
	}
	if s.Peek(i) == '.' {
		i++
	}
	return isDigit(s.Peek(i))
}

// scanNumber scans an integer or float literal with optional exponent
func (t *Tokenizer) scanNumber() (TokenType, string) {
	s := t.stream

	var value strings.Builder
	hasDot, hasExponent, hasDigit := false, false, false

	if r := s.Peek(0); r == '+' || r == '-' {
		value.WriteRune(s.Next())
	}

	for !s.EOF() {
		r := s.Peek(0)
		switch {
		case isDigit(r):
			hasDigit = true
		case r == '.' && !hasDot && !hasExponent:
			hasDot = true
		case (r == 'e' || r == 'E') && hasDigit && !hasExponent && t.exponentFollows():
			hasExponent = true
			value.WriteRune(s.Next())
			if sign := s.Peek(0); sign == '+' || sign == '-' {
				value.WriteRune(s.Next())
			}
			continue
		default:
			return numberType(hasDot || hasExponent), value.String()
		}
		value.WriteRune(s.Next())
	}
	return numberType(hasDot || hasExponent), value.String()
}

// exponentFollows checks the runes after an e/E marker form an exponent
func (t *Tokenizer) exponentFollows() bool {
	s := t.stream
	i := 1
	if r := s.Peek(i); r == '+' || r == '-' {
		i++
	}
	return isDigit(s.Peek(i))
}

// scanIdentifier scans letters, digits and underscores
func (t *Tokenizer) scanIdentifier() string {
	s := t.stream
	var value strings.Builder
	for !s.EOF() {
		r := s.Peek(0)
		if !isIdentifierStart(r) && !isDigit(r) {
			break
		}
		value.WriteRune(s.Next())
	}
	return value.String()
}

func numberType(isFloat bool) TokenType {
	if isFloat {
		return TokenFloat
	}
	return TokenInteger
}

func classifyIdentifier(value string) TokenType {
	switch {
	case keywords[value]:
		return TokenKeyword
	case typeNames[value]:
		return TokenTypeName
	default:
		return TokenIdentifier
	}
}

func isPreprocessorKeyword(value string) bool {
	if preprocessorKeywords[value] {
		return true
	}
	_, ok := channelIndex(value)
	return ok
}

// maxChannelDigits bounds N in iChannelN so the index cannot overflow
const maxChannelDigits = 4

// channelIndex extracts N from iChannelN
func channelIndex(value string) (int, bool) {
	digits := strings.TrimPrefix(value, "iChannel")
	if len(digits) == len(value) || digits == "" || len(digits) > maxChannelDigits {
		return 0, false
	}
	n := 0
	for _, r := range digits {
		if !isDigit(r) {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

func isNumberStart(r rune) bool {
	return isDigit(r) || r == '+' || r == '-' || r == '.'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
