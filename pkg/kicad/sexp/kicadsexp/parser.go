package kicadsexp

import (
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2/lexer"
)

// Parser reads S-expressions from a token stream
type Parser struct {
	lex     lexer.Lexer
	current lexer.Token
}

// NewParser creates a new parser from an io.Reader
func NewParser(r io.Reader) (*Parser, error) {
	lex, err := Lexer.Lex("", r)
	if err != nil {
		return nil, err
	}
	return &Parser{lex: lex}, nil
}

// next advances to the next significant token, skipping whitespace
func (p *Parser) next() error {
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return err
		}
		if tok.Type == tokWhitespace {
			continue
		}
		p.current = tok
		return nil
	}
}

// ParseAll parses all top-level S-expressions from the input
func (p *Parser) ParseAll() ([]Sexp, error) {
	var result []Sexp

	if err := p.next(); err != nil {
		return nil, err
	}

	for !p.current.EOF() {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		result = append(result, expr)

		if err := p.next(); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// parseExpr parses a single S-expression starting at the current token
func (p *Parser) parseExpr() (Sexp, error) {
	switch p.current.Type {
	case tokLParen:
		return p.parseList()
	case tokString:
		return Quoted(unquote(p.current.Value)), nil
	case tokAtom:
		return Symbol(p.current.Value), nil
	case tokRParen:
		return nil, fmt.Errorf("%s: unexpected ')'", p.current.Pos)
	case lexer.EOF:
		return nil, fmt.Errorf("%s: unexpected EOF", p.current.Pos)
	default:
		return nil, fmt.Errorf("%s: unexpected token %q", p.current.Pos, p.current.Value)
	}
}

// parseList parses a list: ( ... )
func (p *Parser) parseList() (Sexp, error) {
	list := &List{Line: p.current.Pos.Line}

	for {
		if err := p.next(); err != nil {
			return nil, err
		}

		if p.current.Type == tokRParen {
			return list, nil
		}
		if p.current.EOF() {
			return nil, fmt.Errorf("%s: unexpected EOF in list opened on line %d", p.current.Pos, list.Line)
		}

		elem, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list.elements = append(list.elements, elem)
	}
}
