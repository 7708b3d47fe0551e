package kaleido

import "fmt"

// PrecedenceTable maps binary operator runes to their precedence. Operators
// missing from the table, or mapped to a non-positive value, are not binary
// operators.
type PrecedenceTable map[rune]int

func DefaultPrecedence() PrecedenceTable {
	return PrecedenceTable{
		'<': 10,
		'+': 20,
		'-': 20,
		'*': 40,
	}
}

type Parser struct {
	tokenizer  Tokenizer
	precedence PrecedenceTable
	cur        Token
	primed     bool
}

// NewParser copies precedence, so later changes to the table do not affect the
// parser.
func NewParser(tokenizer Tokenizer, precedence PrecedenceTable) *Parser {
	table := make(PrecedenceTable, len(precedence))
	for op, prec := range precedence {
		table[op] = prec
	}

	return &Parser{
		tokenizer:  tokenizer,
		precedence: table,
	}
}

// Current returns the lookahead token, reading the first one if needed.
func (p *Parser) Current() Token {
	if !p.primed {
		p.cur = p.tokenizer.Next()
		p.primed = true
	}

	return p.cur
}

// Advance steps over the lookahead and returns the token after it. On a fresh
// parser the first token is read and skipped.
func (p *Parser) Advance() Token {
	if !p.primed {
		p.cur = p.tokenizer.Next()
	}

	p.cur = p.tokenizer.Next()
	p.primed = true

	return p.cur
}

func (p *Parser) errorf(l *Location, format string, args ...interface{}) error {
	return &ParseError{Loc: l, Msg: fmt.Sprintf(format, args...)}
}

// ParseDefinition parses 'def' prototype expression.
func (p *Parser) ParseDefinition() (*FuncDef, error) {
	p.Advance() // def keyword

	proto, err := p.ParsePrototype()
	if err != nil {
		return nil, err
	}

	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	return &FuncDef{Proto: proto, Body: body}, nil
}

// ParseExtern parses 'extern' prototype.
func (p *Parser) ParseExtern() (*Prototype, error) {
	p.Advance() // extern keyword
	return p.ParsePrototype()
}

// ParseTopLevelExpr wraps a bare expression in a zero-argument function named
// AnonymousFunc.
func (p *Parser) ParseTopLevelExpr() (*FuncDef, error) {
	loc := p.Current().Loc

	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	return &FuncDef{
		Proto: &Prototype{Loc: loc, Name: AnonymousFunc},
		Body:  body,
	}, nil
}

// ParsePrototype parses name '(' param* ')'. Parameters are bare identifiers
// with no separators.
func (p *Parser) ParsePrototype() (*Prototype, error) {
	name := p.Current()
	if name.Typ != TokenIdentifier {
		return nil, p.errorf(name.Loc, "expected function name in prototype, got %s", name)
	}

	if tok := p.Advance(); !tok.Is('(') {
		return nil, p.errorf(tok.Loc, "expected '(' in prototype, got %s", tok)
	}

	var params []string
	seen := make(map[string]bool)
	for tok := p.Advance(); tok.Typ == TokenIdentifier; tok = p.Advance() {
		if seen[tok.Value] {
			return nil, p.errorf(tok.Loc, "duplicate parameter '%s' in prototype of %s", tok.Value, name.Value)
		}

		seen[tok.Value] = true
		params = append(params, tok.Value)
	}

	if tok := p.Current(); !tok.Is(')') {
		return nil, p.errorf(tok.Loc, "expected ')' in prototype, got %s", tok)
	}
	p.Advance() // Skip )

	return &Prototype{
		Loc:    name.Loc,
		Name:   name.Value,
		Params: params,
	}, nil
}

func (p *Parser) ParseExpression() (Expr, error) {
	lhs, err := p.primary()
	if err != nil {
		return nil, err
	}

	return p.binOpRHS(0, lhs)
}

// binOpRHS absorbs every following operator binding at least as tightly as
// minPrec into lhs. Equal precedence associates to the left.
func (p *Parser) binOpRHS(minPrec int, lhs Expr) (Expr, error) {
	for {
		prec := p.tokPrecedence()
		if prec < minPrec {
			return lhs, nil
		}

		op := p.Current()
		p.Advance()

		rhs, err := p.primary()
		if err != nil {
			return nil, err
		}

		if prec < p.tokPrecedence() {
			rhs, err = p.binOpRHS(prec+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = &BinaryExpr{
			Loc: op.Loc,
			Op:  op.Char(),
			LHS: lhs,
			RHS: rhs,
		}
	}
}

// tokPrecedence returns -1 when the lookahead is not a binary operator.
func (p *Parser) tokPrecedence() int {
	tok := p.Current()
	if tok.Typ != TokenChar {
		return -1
	}

	prec, ok := p.precedence[tok.Char()]
	if !ok || prec <= 0 {
		return -1
	}

	return prec
}

func (p *Parser) primary() (Expr, error) {
	switch tok := p.Current(); {
	case tok.Typ == TokenIdentifier:
		return p.identifierExpr()
	case tok.Typ == TokenNumber:
		p.Advance()
		return &NumberExpr{Value: tok.Num}, nil
	case tok.Is('('):
		return p.parenthesisedExpression()
	default:
		return nil, p.errorf(tok.Loc, "unknown token %s when expecting an expression", tok)
	}
}

func (p *Parser) parenthesisedExpression() (Expr, error) {
	p.Advance() // Skip (

	exp, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}

	if tok := p.Current(); !tok.Is(')') {
		return nil, p.errorf(tok.Loc, "expected ')', got %s", tok)
	}
	p.Advance()

	return exp, nil
}

func (p *Parser) identifierExpr() (Expr, error) {
	id := p.Current()
	if !p.Advance().Is('(') {
		return &VariableExpr{Loc: id.Loc, Name: id.Value}, nil
	}
	p.Advance() // Skip (

	var args []Expr
	if !p.Current().Is(')') {
		for {
			arg, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.Current().Is(')') {
				break
			}

			if tok := p.Current(); !tok.Is(',') {
				return nil, p.errorf(tok.Loc, "expected ')' or ',' in argument list, got %s", tok)
			}
			p.Advance() // Skip the comma
		}
	}
	p.Advance() // Skip )

	return &CallExpr{
		Loc:    id.Loc,
		Callee: id.Value,
		Args:   args,
	}, nil
}
