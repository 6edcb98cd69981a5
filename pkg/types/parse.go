package types

import (
	"fmt"
	"strings"
	"unicode"
)

// Resolver turns a named type reference into a Type. It is called for
// every name other than the built-in `any` and `void`.
type Resolver func(name string, args []Type) (Type, error)

// ParseError reports a malformed type expression.
type ParseError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("type %q at offset %d: %s", e.Input, e.Offset, e.Msg)
}

// Parse reads a type expression:
//
//	any | void | Name | Name<T, ...> | (name: T, ...) => T
func Parse(src string, resolve Resolver) (Type, error) {
	p := &typeParser{src: src, resolve: resolve}
	t, err := p.typ()
	if err != nil {
		return nil, err
	}
	p.space()
	if p.pos != len(p.src) {
		return nil, p.fail("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

type typeParser struct {
	src     string
	pos     int
	resolve Resolver
}

func (p *typeParser) fail(format string, args ...any) error {
	return &ParseError{Input: p.src, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *typeParser) space() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) accept(tok string) bool {
	p.space()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *typeParser) expect(tok string) error {
	if !p.accept(tok) {
		return p.fail("expected %q", tok)
	}
	return nil
}

func (p *typeParser) ident() (string, error) {
	p.space()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		p.pos++
	}
	if start == p.pos {
		return "", p.fail("expected a name")
	}
	return p.src[start:p.pos], nil
}

func (p *typeParser) typ() (Type, error) {
	if p.accept("(") {
		return p.lambda()
	}

	name, err := p.ident()
	if err != nil {
		return nil, err
	}

	var args []Type
	if p.accept("<") {
		for {
			arg, err := p.typ()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.accept(">") {
				break
			}
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}

	switch name {
	case "any":
		return Any, nil
	case "void":
		return Void, nil
	}
	if p.resolve == nil {
		return nil, p.fail("no resolver for %s", name)
	}
	return p.resolve(name, args)
}

// lambda parses the rest of a lambda type after its opening paren.
func (p *typeParser) lambda() (Type, error) {
	lt := &LambdaType{}
	if !p.accept(")") {
		for {
			name, err := p.ident()
			if err != nil {
				return nil, err
			}
			if err := p.expect(":"); err != nil {
				return nil, err
			}
			t, err := p.typ()
			if err != nil {
				return nil, err
			}
			lt.Params = append(lt.Params, Param{Name: name, Type: t})
			if p.accept(")") {
				break
			}
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect("=>"); err != nil {
		return nil, err
	}
	ret, err := p.typ()
	if err != nil {
		return nil, err
	}
	lt.Return = ret
	return lt, nil
}
