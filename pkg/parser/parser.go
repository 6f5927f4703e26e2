package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/stevensona/shader-toy-sub000/pkg/shader"
)

// Parser walks GLSL source and yields one directive object at a time. Code
// that is not a directive is skipped.
type Parser struct {
	stream    *Stream
	tokenizer *Tokenizer
	last      *SourceRange
	end       int // end of the last token consumed by the current directive
}

// NewParser creates a parser over content
func NewParser(content string) *Parser {
	stream := NewStream(content)
	return &Parser{
		stream:    stream,
		tokenizer: NewTokenizer(stream),
	}
}

// Stream exposes the underlying stream, e.g. for the final text and line map
func (p *Parser) Stream() *Stream {
	return p.stream
}

// Next returns the next directive, or false once the text is exhausted
func (p *Parser) Next() (Object, bool) {
	p.last = nil
	for {
		tok, ok := p.tokenizer.Next()
		if !ok {
			return nil, false
		}
		if tok.Type != TokenPreprocessorKeyword {
			continue
		}

		p.end = tok.End
		obj := p.parseDirective(tok)
		p.last = &SourceRange{Begin: tok.Offset, End: p.end}
		return obj, true
	}
}

// LastObjectRange returns where the directive returned by Next was
func (p *Parser) LastObjectRange() (SourceRange, bool) {
	if p.last == nil {
		return SourceRange{}, false
	}
	return *p.last, true
}

// Mutate replaces r with replacement and continues parsing after it
func (p *Parser) Mutate(r SourceRange, replacement string) {
	p.stream.Mutate(r.Begin, r.End, replacement)
	p.Reset(r.Begin + len(replacement))
}

// MutateFrom is Mutate for replacement text authored in another file
func (p *Parser) MutateFrom(r SourceRange, replacement string, src shader.SourceID, srcMap shader.LineMap) {
	p.stream.MutateFrom(r.Begin, r.End, replacement, src, srcMap)
	p.Reset(r.Begin + len(replacement))
}

// Reset moves parsing to pos in the current text
func (p *Parser) Reset(pos int) {
	p.last = nil
	p.tokenizer.Reset(pos)
}

// EOF reports whether no token is left
func (p *Parser) EOF() bool {
	return p.tokenizer.EOF()
}

// Line returns the current line in the mutated text
func (p *Parser) Line() int {
	return p.stream.Line()
}

// parseDirective dispatches on the preprocessor keyword
func (p *Parser) parseDirective(tok Token) Object {
	pos := position{line: tok.Line, originalLine: p.stream.OriginalLineOf(tok.Line)}

	switch tok.Value {
	case "include":
		return p.parseInclude(pos)
	case "iUniform":
		return p.parseUniform(pos)
	case "iKeyboard":
		return &KeyboardObject{pos}
	case "iFirstPersonControls":
		return &FirstPersonControlsObject{pos}
	case "StrictCompatibility":
		return &StrictCompatibilityObject{pos}
	}

	if index, ok := channelIndex(tok.Value); ok {
		return p.parseChannel(pos, index)
	}
	return p.errorf(pos, "unknown directive #%s", tok.Value)
}

// parseInclude handles #include "path"
func (p *Parser) parseInclude(pos position) Object {
	tok, ok := p.peekOnLine(pos.line)
	if !ok || tok.Type != TokenString {
		return p.errorf(pos, "expected a quoted path after #include")
	}
	p.consume()
	return &IncludeObject{position: pos, Path: tok.Value}
}

// parseChannel handles #iChannelN "uri" and #iChannelN::Setting Value
func (p *Parser) parseChannel(pos position, index int) Object {
	tok, ok := p.peekOnLine(pos.line)
	if !ok {
		return p.errorf(pos, "expected a texture path after #iChannel%d", index)
	}

	if tok.Is(TokenPunctuation, "::") {
		p.consume()
		name, ok := p.peekOnLine(pos.line)
		setting, known := settingNames[name.Value]
		if !ok || name.Type != TokenKeyword || !known {
			return p.errorf(pos, "expected MagFilter, MinFilter, WrapMode or Type after #iChannel%d::", index)
		}
		p.consume()

		value, ok := p.peekOnLine(pos.line)
		if !ok || (value.Type != TokenIdentifier && value.Type != TokenKeyword && value.Type != TokenTypeName) {
			return p.errorf(pos, "expected a value for #iChannel%d::%s", index, setting)
		}
		p.consume()
		return &TextureSettingObject{position: pos, Index: index, Setting: setting, Value: value.Value}
	}

	raw := tok.Value
	if tok.Type == TokenString {
		p.consume()
	} else {
		var ok bool
		if raw, ok = p.bareWord(tok); !ok {
			return p.errorf(pos, "unexpected text after the texture path of #iChannel%d", index)
		}
	}

	kind, path := classifyTexturePath(raw)
	return &TextureObject{position: pos, Index: index, Path: path, Kind: kind}
}

// bareWord takes an unquoted argument starting at tok, such as buf://self,
// from the raw text up to the next blank. The word may hold characters the
// tokenizer would split or read as a comment. Only a comment may follow it.
func (p *Parser) bareWord(tok Token) (string, bool) {
	text := p.stream.Text()

	end := tok.Offset
	for end < len(text) && !strings.ContainsRune(" \t\r\n", rune(text[end])) {
		end++
	}
	p.end = end
	p.tokenizer.Reset(end)

	rest := text[end:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.TrimSpace(rest)
	if rest != "" && !strings.HasPrefix(rest, "//") && !strings.HasPrefix(rest, "/*") {
		return "", false
	}
	return text[tok.Offset:end], true
}

// classifyTexturePath decides whether a channel URI is local, remote or self
func classifyTexturePath(raw string) (shader.TextureKind, string) {
	if raw == "self" {
		return shader.TextureSelf, raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return shader.TextureLocal, raw
	}

	scheme := strings.ToLower(u.Scheme)
	switch {
	case scheme == "":
		return shader.TextureLocal, raw
	case scheme == "file":
		if rest, ok := cutScheme(raw, "file://"); ok {
			return shader.TextureLocal, rest
		}
		return shader.TextureLocal, raw
	case scheme == "buf":
		rest, ok := cutScheme(raw, "buf://")
		if !ok {
			return shader.TextureLocal, raw
		}
		if rest == "self" {
			return shader.TextureSelf, rest
		}
		return shader.TextureLocal, rest
	case len(scheme) == 1:
		// a Windows drive letter, not a scheme
		return shader.TextureLocal, raw
	default:
		return shader.TextureRemote, raw
	}
}

// cutScheme removes prefix from raw regardless of its case
func cutScheme(raw, prefix string) (string, bool) {
	if len(raw) < len(prefix) || !strings.EqualFold(raw[:len(prefix)], prefix) {
		return raw, false
	}
	return raw[len(prefix):], true
}

// peekOnLine returns the next token if it sits on line
func (p *Parser) peekOnLine(line int) (Token, bool) {
	tok, ok := p.tokenizer.Peek()
	if !ok || tok.Line != line {
		return Token{}, false
	}
	return tok, true
}

// consume takes the peeked token as part of the current directive
func (p *Parser) consume() Token {
	tok, _ := p.tokenizer.Next()
	p.end = tok.End
	return tok
}

// expect consumes a punctuation or operator token with the given value
func (p *Parser) expect(line int, value string) error {
	tok, ok := p.peekOnLine(line)
	if !ok || (tok.Type != TokenPunctuation && tok.Type != TokenOperator) || tok.Value != value {
		return fmt.Errorf("expected %q", value)
	}
	p.consume()
	return nil
}

// errorf builds an error object covering the rest of the directive's line
func (p *Parser) errorf(pos position, format string, args ...interface{}) Object {
	for {
		if _, ok := p.peekOnLine(pos.line); !ok {
			break
		}
		p.consume()
	}
	return &ErrorObject{position: pos, Message: fmt.Sprintf(format, args...)}
}
