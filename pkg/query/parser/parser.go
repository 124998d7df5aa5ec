package parser

import (
	"fmt"
	"strconv"

	"github.com/scarnyc/spacewalks/pkg/query/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int
}

type Error struct {
	message string
}

func NewParserError(format string, a ...any) *Error {
	return &Error{message: fmt.Sprintf(format, a...)}
}

func (e *Error) Error() string {
	return e.message
}

func (p *parser) current() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) currentKind() lexer.TokenKind {
	return p.current().Kind
}

func (p *parser) hasTokens() bool {
	return p.pos < len(p.tokens) && p.currentKind() != lexer.EOF
}

func (p *parser) advance() lexer.Token {
	tk := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}

	return tk
}

func (p *parser) unexpected(want string) *Error {
	tk := p.current()

	return NewParserError("expected %s, got %s at offset %d", want, tk.Debug(), tk.Pos)
}

func (p *parser) expect(kind lexer.TokenKind) (lexer.Token, error) {
	if p.currentKind() != kind {
		return lexer.Token{}, p.unexpected(kind.String())
	}

	return p.advance(), nil
}

// key | prefix.key | prefix."quoted key"
func (p *parser) parseIdentifier() (Identifier, error) {
	var first lexer.Token

	switch p.currentKind() {
	case lexer.Identifier, lexer.String:
		first = p.advance()
	default:
		return Identifier{}, p.unexpected("identifier")
	}

	if p.currentKind() != lexer.Dot {
		return Identifier{Key: first.Unquote()}, nil
	}

	if first.Kind != lexer.Identifier {
		return Identifier{}, NewParserError("quoted key %s cannot take a key", first.Value)
	}

	p.advance() // .

	switch p.currentKind() {
	case lexer.Identifier, lexer.String:
		return Identifier{Prefix: first.Value, Key: p.advance().Unquote()}, nil
	default:
		return Identifier{}, p.unexpected("identifier or string")
	}
}

func (p *parser) parseOperator() (OperatorKind, error) {
	operators := map[lexer.TokenKind]OperatorKind{
		lexer.Equals:        Equals,
		lexer.NotEquals:     NotEquals,
		lexer.Less:          Less,
		lexer.LessEquals:    LessEquals,
		lexer.Greater:       Greater,
		lexer.GreaterEquals: GreaterEquals,
		lexer.Like:          Like,
		lexer.ILike:         ILike,
	}

	op, ok := operators[p.currentKind()]
	if !ok {
		return -1, p.unexpected("operator")
	}

	p.advance()

	return op, nil
}

func (p *parser) parseValue() (Value, error) {
	switch p.currentKind() {
	case lexer.Number:
		tk := p.advance()

		n, err := strconv.ParseFloat(tk.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("number token could not be parsed to float: %w", err)
		}

		return NumberExpr{Value: n}, nil
	case lexer.String:
		return StringExpr{Value: p.advance().Unquote()}, nil
	default:
		return nil, p.unexpected("number or string")
	}
}

// ( 'a', 'b', ... )
func (p *parser) parseSet() (StringListExpr, error) {
	if _, err := p.expect(lexer.OpenParen); err != nil {
		return StringListExpr{}, err
	}

	set := make([]string, 0)

	for p.hasTokens() && p.currentKind() != lexer.CloseParen {
		tk, err := p.expect(lexer.String)
		if err != nil {
			return StringListExpr{}, err
		}

		set = append(set, tk.Unquote())

		if p.currentKind() != lexer.Comma {
			break
		}

		p.advance() // ,
	}

	if _, err := p.expect(lexer.CloseParen); err != nil {
		return StringListExpr{}, err
	}

	if len(set) == 0 {
		return StringListExpr{}, NewParserError("IN requires at least one value")
	}

	return StringListExpr{Values: set}, nil
}

func (p *parser) parseExpression() (*CompareExpr, error) {
	ident, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}

	operator := In

	switch p.currentKind() {
	case lexer.Not:
		p.advance() // NOT

		if p.currentKind() != lexer.In {
			return nil, p.unexpected("IN after NOT")
		}

		operator = NotIn

		fallthrough
	case lexer.In:
		p.advance() // IN

		set, err := p.parseSet()
		if err != nil {
			return nil, err
		}

		return &CompareExpr{Left: ident, Operator: operator, Right: set}, nil
	default:
		operator, err := p.parseOperator()
		if err != nil {
			return nil, err
		}

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}

		return &CompareExpr{Left: ident, Operator: operator, Right: value}, nil
	}
}

func (p *parser) parse() (*AndExpr, error) {
	first, err := p.parseExpression()
	if err != nil {
		return nil, fmt.Errorf("error while parsing initial expression: %w", err)
	}

	exprs := []*CompareExpr{first}

	for p.currentKind() == lexer.And {
		p.advance() // AND

		next, err := p.parseExpression()
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, next)
	}

	if p.hasTokens() {
		return nil, NewParserError(
			"unexpected leftover token(s) after parsing: %s",
			p.current().Debug(),
		)
	}

	return &AndExpr{Exprs: exprs}, nil
}

// Parse builds the conjunction of comparisons from a token stream ending in EOF.
func Parse(tokens []lexer.Token) (*AndExpr, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != lexer.EOF {
		return nil, NewParserError("token stream must end with eof")
	}

	p := &parser{tokens: tokens}

	return p.parse()
}
