package parser

import (
	"fmt"
	"strconv"

	"github.com/stevensona/shader-toy-sub000/pkg/diagnostics"
)

// componentCounts maps a uniform type to its number of components
var componentCounts = map[string]int{
	"float":  1,
	"int":    1,
	"vec2":   2,
	"ivec2":  2,
	"vec3":   3,
	"ivec3":  3,
	"color3": 3,
	"vec4":   4,
	"ivec4":  4,
}

// parseUniform handles
//
//	#iUniform <type> <name> [= <value>] [in { <value>, <value> }] [step <value>]
//
// where a value is a number or a constructor such as vec3(1, 2, 3).
func (p *Parser) parseUniform(pos position) Object {
	typeTok, ok := p.peekOnLine(pos.line)
	if !ok || typeTok.Type != TokenTypeName {
		return p.errorf(pos, "expected a type (float, int, vecN, ivecN or color3) after #iUniform")
	}
	p.consume()

	nameTok, ok := p.peekOnLine(pos.line)
	if !ok || nameTok.Type != TokenIdentifier {
		return p.errorf(pos, "expected a name after #iUniform %s", typeTok.Value)
	}
	p.consume()

	u := &UniformObject{position: pos, Name: nameTok.Value, TypeName: typeTok.Value}

	var err error
	if tok, ok := p.peekOnLine(pos.line); ok && tok.Is(TokenOperator, "=") {
		p.consume()
		if u.Default, err = p.parseValue(pos.line); err != nil {
			return p.errorf(pos, "invalid default value for uniform %s: %v", u.Name, err)
		}
	}

	if tok, ok := p.peekOnLine(pos.line); ok && tok.Is(TokenKeyword, "in") {
		p.consume()
		if u.Min, u.Max, err = p.parseRange(pos.line); err != nil {
			return p.errorf(pos, "invalid range for uniform %s: %v", u.Name, err)
		}
	}

	if tok, ok := p.peekOnLine(pos.line); ok && tok.Is(TokenKeyword, "step") {
		p.consume()
		if u.Step, err = p.parseValue(pos.line); err != nil {
			return p.errorf(pos, "invalid step for uniform %s: %v", u.Name, err)
		}
	}

	if tok, ok := p.peekOnLine(pos.line); ok {
		return p.errorf(pos, "unexpected %q after uniform %s", tok.Value, u.Name)
	}

	if u.Default == nil && u.Min == nil {
		return &ErrorObject{position: pos, Message: fmt.Sprintf("uniform %s needs a default value or a range", u.Name)}
	}

	u.fit(componentCounts[u.TypeName])
	return u
}

// parseRange handles { <value>, <value> }
func (p *Parser) parseRange(line int) ([]float64, []float64, error) {
	if err := p.expect(line, "{"); err != nil {
		return nil, nil, err
	}
	lo, err := p.parseValue(line)
	if err != nil {
		return nil, nil, err
	}
	if err := p.expect(line, ","); err != nil {
		return nil, nil, err
	}
	hi, err := p.parseValue(line)
	if err != nil {
		return nil, nil, err
	}
	if err := p.expect(line, "}"); err != nil {
		return nil, nil, err
	}
	return lo, hi, nil
}

// parseValue handles a bare number or <type>(<number>, ...)
func (p *Parser) parseValue(line int) ([]float64, error) {
	tok, ok := p.peekOnLine(line)
	if !ok {
		return nil, fmt.Errorf("missing value")
	}

	if tok.Type == TokenInteger || tok.Type == TokenFloat {
		p.consume()
		v, err := parseNumber(tok)
		if err != nil {
			return nil, err
		}
		return []float64{v}, nil
	}

	if tok.Type != TokenTypeName {
		return nil, fmt.Errorf("expected a number or a constructor, got %q", tok.Value)
	}
	p.consume()
	if err := p.expect(line, "("); err != nil {
		return nil, err
	}

	var values []float64
	for {
		num, ok := p.peekOnLine(line)
		if !ok || (num.Type != TokenInteger && num.Type != TokenFloat) {
			return nil, fmt.Errorf("expected a number inside %s(...)", tok.Value)
		}
		p.consume()
		v, err := parseNumber(num)
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		sep, ok := p.peekOnLine(line)
		if !ok {
			return nil, fmt.Errorf("unterminated %s(...)", tok.Value)
		}
		p.consume()
		if sep.Value == ")" {
			return values, nil
		}
		if sep.Value != "," {
			return nil, fmt.Errorf("unexpected %q inside %s(...)", sep.Value, tok.Value)
		}
	}
}

func parseNumber(tok Token) (float64, error) {
	v, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", tok.Value, err)
	}
	return v, nil
}

// fit brings every value to n components. A scalar default broadcasts like a
// GLSL constructor; anything else that had to be adjusted is reported.
func (u *UniformObject) fit(n int) {
	if u.Default != nil {
		switch {
		case len(u.Default) == 1:
			u.Default = broadcast(u.Default[0], n)
		case len(u.Default) != n:
			u.note("default value of uniform %s has %d components, %s expects %d", u.Name, len(u.Default), u.TypeName, n)
			u.Default = resize(u.Default, n)
		}
	}

	u.Min = u.fitBound(u.Min, n, "minimum")
	u.Max = u.fitBound(u.Max, n, "maximum")
	u.Step = u.fitBound(u.Step, n, "step")

	if u.Default == nil {
		u.note("uniform %s has no default value, its minimum is used instead", u.Name)
		u.Default = append([]float64(nil), u.Min...)
	}
}

func (u *UniformObject) fitBound(values []float64, n int, what string) []float64 {
	switch {
	case values == nil || len(values) == n:
		return values
	case len(values) == 1:
		u.note("%s of uniform %s is a scalar, it applies to all %d components", what, u.Name, n)
		return broadcast(values[0], n)
	default:
		u.note("%s of uniform %s has %d components, %s expects %d", what, u.Name, len(values), u.TypeName, n)
		return resize(values, n)
	}
}

func (u *UniformObject) note(format string, args ...interface{}) {
	u.Issues = append(u.Issues, Issue{Severity: diagnostics.SeverityInformation, Message: fmt.Sprintf(format, args...)})
}

func broadcast(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// resize truncates values to n or pads it by repeating the first component
func resize(values []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if i < len(values) {
			out[i] = values[i]
		} else {
			out[i] = values[0]
		}
	}
	return out
}
