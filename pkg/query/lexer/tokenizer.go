package lexer

import (
	"fmt"
	"regexp"
	"strings"
)

type Error struct {
	Pos     int
	message string
}

func newError(pos int, format string, a ...any) *Error {
	return &Error{Pos: pos, message: fmt.Sprintf(format, a...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (at offset %d)", e.message, e.Pos)
}

type handler func(lex *lexer, match string)

type pattern struct {
	regex   *regexp.Regexp
	handler handler
}

//nolint:gochecknoglobals
var patterns = []pattern{
	{regexp.MustCompile(`^\s+`), skip},
	{regexp.MustCompile(`^"[^"]*"`), literal(String)},
	{regexp.MustCompile(`^'[^']*'`), literal(String)},
	{regexp.MustCompile("^`[^`]*`"), literal(String)},
	{regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?`), literal(Number)},
	{regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*`), symbol},
	{regexp.MustCompile(`^\(`), literal(OpenParen)},
	{regexp.MustCompile(`^\)`), literal(CloseParen)},
	{regexp.MustCompile(`^!=`), literal(NotEquals)},
	{regexp.MustCompile(`^<>`), literal(NotEquals)},
	{regexp.MustCompile(`^==?`), literal(Equals)},
	{regexp.MustCompile(`^<=`), literal(LessEquals)},
	{regexp.MustCompile(`^<`), literal(Less)},
	{regexp.MustCompile(`^>=`), literal(GreaterEquals)},
	{regexp.MustCompile(`^>`), literal(Greater)},
	{regexp.MustCompile(`^\.`), literal(Dot)},
	{regexp.MustCompile(`^,`), literal(Comma)},
}

type lexer struct {
	source string
	pos    int
	tokens []Token
}

// Tokenize splits a filter string into tokens terminated by an EOF token.
func Tokenize(source string) ([]Token, error) {
	lex := &lexer{source: source, tokens: make([]Token, 0)}

	for lex.pos < len(lex.source) {
		remainder := lex.source[lex.pos:]
		matched := false

		for _, p := range patterns {
			if match := p.regex.FindString(remainder); match != "" {
				p.handler(lex, match)

				matched = true

				break
			}
		}

		if !matched {
			return lex.tokens, newError(lex.pos, "unrecognized token near %q", remainder)
		}
	}

	lex.tokens = append(lex.tokens, Token{Kind: EOF, Value: "EOF", Pos: lex.pos})

	return lex.tokens, nil
}

func literal(kind TokenKind) handler {
	return func(lex *lexer, match string) {
		lex.tokens = append(lex.tokens, Token{Kind: kind, Value: match, Pos: lex.pos})
		lex.pos += len(match)
	}
}

func symbol(lex *lexer, match string) {
	kind, found := reserved[strings.ToUpper(match)]
	if !found {
		kind = Identifier
	}

	literal(kind)(lex, match)
}

func skip(lex *lexer, match string) {
	lex.pos += len(match)
}
