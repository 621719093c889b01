package expr

import (
	"fmt"
	"strconv"
)

// Grammar, lowest precedence first:
//
//	or      = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | primary
//	primary = "(" or ")" | operand [ compare literal ]
type parser struct {
	tokens []tok
	pos    int
}

func parse(tokens []tok) (node, error) {
	p := &parser{tokens: tokens}
	root, err := p.or()
	if err != nil {
		return nil, err
	}
	if t, ok := p.peek(); ok {
		return nil, fmt.Errorf("expr: unexpected %q at %d", t.text, t.pos)
	}
	return root, nil
}

func (p *parser) peek() (tok, bool) {
	if p.pos >= len(p.tokens) {
		return tok{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) accept(kinds ...tokKind) (tok, bool) {
	t, ok := p.peek()
	if !ok {
		return tok{}, false
	}
	for _, kind := range kinds {
		if t.kind == kind {
			p.pos++
			return t, true
		}
	}
	return tok{}, false
}

func (p *parser) or() (node, error) {
	first, err := p.and()
	if err != nil {
		return nil, err
	}
	terms := anyOf{first}
	for {
		if _, ok := p.accept(tokOr); !ok {
			break
		}
		next, err := p.and()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return terms, nil
}

func (p *parser) and() (node, error) {
	first, err := p.unary()
	if err != nil {
		return nil, err
	}
	terms := allOf{first}
	for {
		if _, ok := p.accept(tokAnd); !ok {
			break
		}
		next, err := p.unary()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return terms, nil
}

func (p *parser) unary() (node, error) {
	if _, ok := p.accept(tokNot); ok {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negate{inner}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	if open, ok := p.accept(tokLParen); ok {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if _, ok := p.accept(tokRParen); !ok {
			return nil, fmt.Errorf("expr: missing ')' for '(' at %d", open.pos)
		}
		return inner, nil
	}

	t, ok := p.accept(tokIdent, tokSelf)
	if !ok {
		if next, more := p.peek(); more {
			return nil, fmt.Errorf("expr: expected a path at %d, got %q", next.pos, next.text)
		}
		return nil, fmt.Errorf("expr: incomplete rule")
	}
	operand := ref{self: t.kind == tokSelf, path: t.text}

	op, ok := p.accept(tokEq, tokNeq, tokLt, tokLte, tokGt, tokGte)
	if !ok {
		return truthy{operand}, nil
	}
	want, err := p.literal(op)
	if err != nil {
		return nil, err
	}
	return comparison{operand: operand, op: op.kind, want: want}, nil
}

func (p *parser) literal(op tok) (literal, error) {
	t, ok := p.accept(tokString, tokNumber, tokTrue, tokFalse, tokNull, tokIdent)
	if !ok {
		return literal{}, fmt.Errorf("expr: %q at %d needs a value", op.text, op.pos)
	}

	var lit literal
	switch t.kind {
	case tokNumber:
		n, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return literal{}, fmt.Errorf("expr: invalid number %q at %d", t.text, t.pos)
		}
		lit = literal{kind: litNumber, num: n}
	case tokTrue, tokFalse:
		lit = literal{kind: litBool, flag: t.kind == tokTrue}
	case tokNull:
		lit = literal{kind: litNull}
	default:
		lit = literal{kind: litString, str: t.text}
	}

	if isOrdering(op.kind) && lit.kind != litNumber {
		return literal{}, fmt.Errorf("expr: %q at %d needs a number", op.text, op.pos)
	}
	return lit, nil
}

func isOrdering(kind tokKind) bool {
	return kind == tokLt || kind == tokLte || kind == tokGt || kind == tokGte
}
