package kicadsexp

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer is the token definition for KiCad S-expression text.
// Quoted strings are the only escaped construct; everything that is not a
// paren, a quote or whitespace is part of a bare atom.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Atom", Pattern: `[^\s()"]+`},
})

var (
	tokWhitespace = Lexer.Symbols()["Whitespace"]
	tokLParen     = Lexer.Symbols()["LParen"]
	tokRParen     = Lexer.Symbols()["RParen"]
	tokString     = Lexer.Symbols()["String"]
	tokAtom       = Lexer.Symbols()["Atom"]
)

// unquote strips the surrounding quotes of a String token and resolves
// backslash escapes. Unknown escapes keep the escaped character.
func unquote(raw string) string {
	body := raw[1 : len(raw)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		ch := body[i]
		if ch != '\\' || i+1 == len(body) {
			b.WriteByte(ch)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}
