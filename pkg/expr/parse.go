package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ishanwen-byte/gpsr-go/internal/constants"
)

var ErrParse = errors.New("cannot parse expression")

// Parse reads a tree written as nested prefix calls, the format Tree.String produces.
// Numeric literals and the bare name "const" become constant slots, and are rejected
// when ps has no constant terminal.
func Parse(ps *PrimitiveSet, s string) (Tree, error) {
	p := &parser{ps: ps, src: s}
	p.tokens = tokenize(s)
	t, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("%w %q: unexpected %q", ErrParse, s, p.tokens[p.pos])
	}
	return t, nil
}

type parser struct {
	ps     *PrimitiveSet
	src    string
	tokens []string
	pos    int
}

func (p *parser) next() (string, bool) {
	if p.pos >= len(p.tokens) {
		return "", false
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, true
}

func (p *parser) expect(tok string) error {
	got, ok := p.next()
	if !ok || got != tok {
		return fmt.Errorf("%w %q: expected %q, got %q", ErrParse, p.src, tok, got)
	}
	return nil
}

func (p *parser) expr() (Tree, error) {
	tok, ok := p.next()
	if !ok {
		return nil, fmt.Errorf("%w %q: unexpected end of input", ErrParse, p.src)
	}

	v, numErr := strconv.ParseFloat(tok, 64)
	if tok == constants.ConstTag || numErr == nil {
		if !p.ps.HasConstant() {
			return nil, fmt.Errorf("%w %q: constant %s without a constant terminal", ErrParse, p.src, tok)
		}
		if tok == constants.ConstTag {
			v = constants.ConstInitial
		}
		return Tree{ConstNode(v)}, nil
	}
	if idx, ok := p.ps.VariableIndex(tok); ok {
		return Tree{p.ps.VariableNode(idx)}, nil
	}

	prim, ok := p.ps.Lookup(tok)
	if !ok {
		return nil, fmt.Errorf("%w %q: %w: %s", ErrParse, p.src, ErrUnknownPrimitive, tok)
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}
	t := Tree{PrimitiveNode(prim)}
	for i := 0; i < prim.Arity; i++ {
		if i > 0 {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
		sub, err := p.expr()
		if err != nil {
			return nil, err
		}
		t = append(t, sub...)
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return t, nil
}

func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			flush()
		case r == '(' || r == ')' || r == ',':
			flush()
			tokens = append(tokens, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}
