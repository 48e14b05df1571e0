package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fernlang/flin/internal/types"
)

// TokenType represents the kind of token.
type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL

	// Punctuation
	LPAREN    // "("
	RPAREN    // ")"
	LBRACKET  // "["
	RBRACKET  // "]"
	LBRACE    // "{"
	RBRACE    // "}"
	COMMA     // ","
	BACKSLASH // "\"
	ARROW     // "->"
	EQUALS    // "="
	PIPE      // "|"
	COLON     // ":"
	DOT       // "."
	UNDERSCORE

	// Operators
	OPERATOR // any infix operator symbol: |> <| >> << && || == /= + - * / // ^ ++ :: < > <= >=

	// Literals and identifiers
	LOWER_IDENT  // starts lowercase: name, fooBar
	UPPER_IDENT  // starts uppercase: List, Just
	QUAL_IDENT   // dotted reference: List.map, Json.Decode.field
	INT_LIT
	FLOAT_LIT
	STRING_LIT
	CHAR_LIT

	// Keywords
	KW_MODULE
	KW_EXPOSING
	KW_IMPORT
	KW_AS
	KW_IF
	KW_THEN
	KW_ELSE
	KW_CASE
	KW_OF
	KW_LET
	KW_IN
	KW_TYPE
	KW_ALIAS
)

var keywords = map[string]TokenType{
	"module":   KW_MODULE,
	"exposing": KW_EXPOSING,
	"import":   KW_IMPORT,
	"as":       KW_AS,
	"if":       KW_IF,
	"then":     KW_THEN,
	"else":     KW_ELSE,
	"case":     KW_CASE,
	"of":       KW_OF,
	"let":      KW_LET,
	"in":       KW_IN,
	"type":     KW_TYPE,
	"alias":    KW_ALIAS,
}

// Token is a lexical token with its source position.
type Token struct {
	Type   TokenType
	Lexeme string
	Pos    types.Pos
}

// End returns the position one past the token's text.
func (t Token) End() types.Pos {
	return types.Pos{
		Offset: t.Pos.Offset + len(t.Lexeme),
		Line:   t.Pos.Line,
		Column: t.Pos.Column + len(t.Lexeme),
	}
}

// Lexer splits Fern source text into tokens.
type Lexer struct {
	src    string
	offset int
	line   int
	column int
}

// NewLexer creates a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, column: 1}
}

// Tokenize scans the whole input. Lexical errors surface as ILLEGAL
// tokens followed by EOF.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for {
		tok := l.next()
		toks = append(toks, tok)
		if tok.Type == EOF || tok.Type == ILLEGAL {
			return toks
		}
	}
}

func (l *Lexer) pos() types.Pos {
	return types.Pos{Offset: l.offset, Line: l.line, Column: l.column}
}

func (l *Lexer) peek() byte {
	if l.offset >= len(l.src) {
		return 0
	}
	return l.src[l.offset]
}

func (l *Lexer) peekAt(n int) byte {
	if l.offset+n >= len(l.src) {
		return 0
	}
	return l.src[l.offset+n]
}

func (l *Lexer) advance() byte {
	c := l.src[l.offset]
	l.offset++
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

func (l *Lexer) skipSpaceAndComments() {
	for l.offset < len(l.src) {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '-' && l.peekAt(1) == '-':
			for l.offset < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		case c == '{' && l.peekAt(1) == '-':
			depth := 0
			for l.offset < len(l.src) {
				if l.peek() == '{' && l.peekAt(1) == '-' {
					depth++
					l.advance()
					l.advance()
				} else if l.peek() == '-' && l.peekAt(1) == '}' {
					depth--
					l.advance()
					l.advance()
					if depth == 0 {
						break
					}
				} else {
					l.advance()
				}
			}
		default:
			return
		}
	}
}

const opChars = "+-*/=<>|&^:."

func isOpChar(c byte) bool {
	return strings.IndexByte(opChars, c) >= 0
}

func isIdentStart(c rune) bool {
	return unicode.IsLetter(c)
}

func isIdentPart(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
}

func (l *Lexer) next() Token {
	l.skipSpaceAndComments()
	start := l.pos()
	if l.offset >= len(l.src) {
		return Token{Type: EOF, Pos: start}
	}

	c := l.peek()
	switch {
	case c >= '0' && c <= '9':
		return l.scanNumber(start)
	case c == '"':
		return l.scanString(start)
	case c == '\'':
		return l.scanChar(start)
	case c == '_' && !isIdentPart(rune(l.peekAt(1))):
		l.advance()
		return Token{Type: UNDERSCORE, Lexeme: "_", Pos: start}
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.offset:])
	if isIdentStart(r) {
		return l.scanIdent(start)
	}

	switch c {
	case '(':
		l.advance()
		return Token{Type: LPAREN, Lexeme: "(", Pos: start}
	case ')':
		l.advance()
		return Token{Type: RPAREN, Lexeme: ")", Pos: start}
	case '[':
		l.advance()
		return Token{Type: LBRACKET, Lexeme: "[", Pos: start}
	case ']':
		l.advance()
		return Token{Type: RBRACKET, Lexeme: "]", Pos: start}
	case '{':
		l.advance()
		return Token{Type: LBRACE, Lexeme: "{", Pos: start}
	case '}':
		l.advance()
		return Token{Type: RBRACE, Lexeme: "}", Pos: start}
	case ',':
		l.advance()
		return Token{Type: COMMA, Lexeme: ",", Pos: start}
	case '\\':
		l.advance()
		return Token{Type: BACKSLASH, Lexeme: "\\", Pos: start}
	}

	if isOpChar(c) {
		return l.scanOperator(start)
	}

	l.advance()
	return Token{Type: ILLEGAL, Lexeme: string(c), Pos: start}
}

func (l *Lexer) scanNumber(start types.Pos) Token {
	for l.offset < len(l.src) && l.peek() >= '0' && l.peek() <= '9' {
		l.advance()
	}
	isFloat := false
	if l.peek() == '.' && l.peekAt(1) >= '0' && l.peekAt(1) <= '9' {
		isFloat = true
		l.advance()
		for l.offset < len(l.src) && l.peek() >= '0' && l.peek() <= '9' {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		saved := *l
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		if l.peek() >= '0' && l.peek() <= '9' {
			isFloat = true
			for l.offset < len(l.src) && l.peek() >= '0' && l.peek() <= '9' {
				l.advance()
			}
		} else {
			*l = saved
		}
	}
	lex := l.src[start.Offset:l.offset]
	typ := INT_LIT
	if isFloat {
		typ = FLOAT_LIT
	}
	return Token{Type: typ, Lexeme: lex, Pos: start}
}

func (l *Lexer) scanString(start types.Pos) Token {
	l.advance() // opening quote
	for l.offset < len(l.src) {
		c := l.advance()
		if c == '\\' && l.offset < len(l.src) {
			l.advance()
			continue
		}
		if c == '"' {
			return Token{Type: STRING_LIT, Lexeme: l.src[start.Offset:l.offset], Pos: start}
		}
	}
	return Token{Type: ILLEGAL, Lexeme: l.src[start.Offset:l.offset], Pos: start}
}

func (l *Lexer) scanChar(start types.Pos) Token {
	l.advance() // opening quote
	for l.offset < len(l.src) {
		c := l.advance()
		if c == '\\' && l.offset < len(l.src) {
			l.advance()
			continue
		}
		if c == '\'' {
			return Token{Type: CHAR_LIT, Lexeme: l.src[start.Offset:l.offset], Pos: start}
		}
	}
	return Token{Type: ILLEGAL, Lexeme: l.src[start.Offset:l.offset], Pos: start}
}

func (l *Lexer) scanIdent(start types.Pos) Token {
	first, _ := utf8.DecodeRuneInString(l.src[l.offset:])
	for l.offset < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.offset:])
		if !isIdentPart(r) {
			break
		}
		for i := 0; i < size; i++ {
			l.advance()
		}
	}

	// A dotted chain starting with an uppercase segment is one qualified
	// reference: List.map, Json.Decode.field, Maybe.Nothing.
	qualified := false
	if unicode.IsUpper(first) {
		for l.peek() == '.' {
			r, _ := utf8.DecodeRuneInString(l.src[l.offset+1:])
			if !isIdentStart(r) {
				break
			}
			qualified = true
			l.advance() // dot
			for l.offset < len(l.src) {
				r, size := utf8.DecodeRuneInString(l.src[l.offset:])
				if !isIdentPart(r) {
					break
				}
				for i := 0; i < size; i++ {
					l.advance()
				}
			}
		}
	}

	lex := l.src[start.Offset:l.offset]
	if qualified {
		return Token{Type: QUAL_IDENT, Lexeme: lex, Pos: start}
	}
	if kw, ok := keywords[lex]; ok {
		return Token{Type: kw, Lexeme: lex, Pos: start}
	}
	if unicode.IsUpper(first) {
		return Token{Type: UPPER_IDENT, Lexeme: lex, Pos: start}
	}
	return Token{Type: LOWER_IDENT, Lexeme: lex, Pos: start}
}

func (l *Lexer) scanOperator(start types.Pos) Token {
	for l.offset < len(l.src) && isOpChar(l.peek()) {
		l.advance()
	}
	lex := l.src[start.Offset:l.offset]
	switch lex {
	case "=":
		return Token{Type: EQUALS, Lexeme: lex, Pos: start}
	case "->":
		return Token{Type: ARROW, Lexeme: lex, Pos: start}
	case "|":
		return Token{Type: PIPE, Lexeme: lex, Pos: start}
	case ":":
		return Token{Type: COLON, Lexeme: lex, Pos: start}
	case ".":
		return Token{Type: DOT, Lexeme: lex, Pos: start}
	}
	return Token{Type: OPERATOR, Lexeme: lex, Pos: start}
}

// UnquoteString decodes the contents of a string literal token.
func UnquoteString(lexeme string) (string, error) {
	if len(lexeme) < 2 {
		return "", fmt.Errorf("malformed string literal %q", lexeme)
	}
	body := lexeme[1 : len(lexeme)-1]
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("dangling escape in %q", lexeme)
		}
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '\\':
			sb.WriteByte('\\')
		case '"':
			sb.WriteByte('"')
		case '\'':
			sb.WriteByte('\'')
		default:
			return "", fmt.Errorf("unknown escape \\%c in %q", body[i], lexeme)
		}
	}
	return sb.String(), nil
}
