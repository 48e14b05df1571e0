// Package parser turns Fern source text into the AST consumed by the
// analysis engine. The grammar follows the usual ML-family shape:
// application binds tightest, infix operators follow a precedence table,
// and let/case bodies obey a simplified offside rule keyed on the column
// of the construct's anchor token.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fernlang/flin/internal/ast"
	"github.com/fernlang/flin/internal/types"
)

type opInfo struct {
	prec       int
	rightAssoc bool
}

var binOps = map[string]opInfo{
	"<|": {0, true},
	"|>": {1, false},
	"||": {2, true},
	"&&": {3, true},
	"==": {4, false},
	"/=": {4, false},
	"<":  {4, false},
	">":  {4, false},
	"<=": {4, false},
	">=": {4, false},
	"++": {5, true},
	"::": {5, true},
	"+":  {6, false},
	"-":  {6, false},
	"*":  {7, false},
	"/":  {7, false},
	"//": {7, false},
	"^":  {8, true},
	"<<": {9, true},
	">>": {9, false},
}

// Parser is a recursive-descent parser over a token stream.
type Parser struct {
	toks      []Token
	pos       int
	prevEnd   types.Pos
	minIndent int
}

// ParseModule parses a complete Fern source file.
func ParseModule(src string) (*ast.Module, error) {
	p := newParser(src)
	return p.parseModule()
}

// ParseExpr parses a single standalone expression, mainly for tests.
func ParseExpr(src string) (ast.Expr, error) {
	p := newParser(src)
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur().Type != EOF {
		return nil, p.errf(p.cur(), "unexpected trailing input %q", p.cur().Lexeme)
	}
	return e, nil
}

func newParser(src string) *Parser {
	return &Parser{toks: NewLexer(src).Tokenize()}
}

func (p *Parser) cur() Token {
	return p.toks[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 < len(p.toks) {
		return p.toks[p.pos+1]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) advance() Token {
	tok := p.toks[p.pos]
	if tok.Type != EOF {
		p.prevEnd = tok.End()
		p.pos++
	}
	return tok
}

func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	if p.cur().Type != tt {
		return Token{}, p.errf(p.cur(), "expected %s, found %q", what, p.cur().Lexeme)
	}
	return p.advance(), nil
}

func (p *Parser) errf(tok Token, format string, args ...any) error {
	prefix := fmt.Sprintf("%d:%d: ", tok.Pos.Line, tok.Pos.Column)
	return fmt.Errorf(prefix+format, args...)
}

// blocked reports whether the current token belongs to an enclosing
// construct according to the offside rule.
func (p *Parser) blocked() bool {
	tok := p.cur()
	return tok.Type == EOF || tok.Type == ILLEGAL || tok.Pos.Column <= p.minIndent
}

func (p *Parser) rangeFrom(start types.Pos) types.Range {
	return types.Range{Start: start, End: p.prevEnd}
}

/* Module structure */

func (p *Parser) parseModule() (*ast.Module, error) {
	mod := &ast.Module{}
	start := p.cur().Pos

	if p.cur().Type == KW_MODULE {
		p.advance()
		name, err := p.parseModuleName()
		if err != nil {
			return nil, err
		}
		mod.Name = name
		if _, err := p.expect(KW_EXPOSING, "exposing"); err != nil {
			return nil, err
		}
		exp, err := p.parseExposing()
		if err != nil {
			return nil, err
		}
		mod.Exposing = *exp
	} else {
		mod.Exposing = ast.Exposing{All: true}
	}

	for p.cur().Type == KW_IMPORT {
		imp, err := p.parseImport()
		if err != nil {
			return nil, err
		}
		mod.Imports = append(mod.Imports, *imp)
	}

	for p.cur().Type != EOF {
		if p.cur().Type == ILLEGAL {
			return nil, p.errf(p.cur(), "unexpected character %q", p.cur().Lexeme)
		}
		decl, err := p.parseDecl()
		if err != nil {
			return nil, err
		}
		if decl != nil {
			mod.Decls = append(mod.Decls, decl)
		}
	}

	mod.Rng = p.rangeFrom(start)
	return mod, nil
}

func (p *Parser) parseModuleName() (string, error) {
	tok := p.cur()
	if tok.Type != UPPER_IDENT && tok.Type != QUAL_IDENT {
		return "", p.errf(tok, "expected module name, found %q", tok.Lexeme)
	}
	p.advance()
	return tok.Lexeme, nil
}

func (p *Parser) parseExposing() (*ast.Exposing, error) {
	if _, err := p.expect(LPAREN, "("); err != nil {
		return nil, err
	}
	exp := &ast.Exposing{}
	if p.cur().Type == OPERATOR && p.cur().Lexeme == ".." {
		p.advance()
		exp.All = true
	} else {
		for {
			tok := p.cur()
			switch tok.Type {
			case LOWER_IDENT, UPPER_IDENT:
				exp.Names = append(exp.Names, tok.Lexeme)
				p.advance()
				// Type exposed with constructors: Name(..)
				if p.cur().Type == LPAREN {
					p.advance()
					if p.cur().Type == OPERATOR && p.cur().Lexeme == ".." {
						p.advance()
					}
					if _, err := p.expect(RPAREN, ")"); err != nil {
						return nil, err
					}
				}
			case LPAREN:
				// operator export: (|>)
				p.advance()
				op := p.cur()
				if op.Type != OPERATOR {
					return nil, p.errf(op, "expected operator, found %q", op.Lexeme)
				}
				exp.Names = append(exp.Names, op.Lexeme)
				p.advance()
				if _, err := p.expect(RPAREN, ")"); err != nil {
					return nil, err
				}
			default:
				return nil, p.errf(tok, "expected exposed name, found %q", tok.Lexeme)
			}
			if p.cur().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(RPAREN, ")"); err != nil {
		return nil, err
	}
	return exp, nil
}

func (p *Parser) parseImport() (*ast.Import, error) {
	start := p.advance().Pos // import keyword
	name, err := p.parseModuleName()
	if err != nil {
		return nil, err
	}
	imp := &ast.Import{Module: name}
	if p.cur().Type == KW_AS {
		p.advance()
		alias, err := p.expect(UPPER_IDENT, "import alias")
		if err != nil {
			return nil, err
		}
		imp.Alias = alias.Lexeme
	}
	if p.cur().Type == KW_EXPOSING {
		p.advance()
		exp, err := p.parseExposing()
		if err != nil {
			return nil, err
		}
		imp.Exposing = exp
	}
	imp.Rng = p.rangeFrom(start)
	return imp, nil
}

func (p *Parser) parseDecl() (ast.Decl, error) {
	tok := p.cur()
	switch tok.Type {
	case KW_TYPE:
		return p.parseTypeDecl()
	case LOWER_IDENT:
		if p.peek().Type == COLON {
			p.skipAnnotation()
			return nil, nil
		}
		return p.parseFuncDecl()
	default:
		return nil, p.errf(tok, "expected declaration, found %q", tok.Lexeme)
	}
}

// skipAnnotation discards a type annotation: everything up to the next
// token back at the declaration's column.
func (p *Parser) skipAnnotation() {
	col := p.cur().Pos.Column
	line := p.cur().Pos.Line
	p.advance() // name
	p.advance() // colon
	for p.cur().Type != EOF {
		tok := p.cur()
		if tok.Pos.Line > line && tok.Pos.Column <= col {
			return
		}
		p.advance()
	}
}

func (p *Parser) parseFuncDecl() (ast.Decl, error) {
	nameTok := p.advance()
	start := nameTok.Pos
	decl := &ast.FuncDecl{Name: nameTok.Lexeme}

	for p.cur().Type != EQUALS {
		if p.cur().Type == EOF {
			return nil, p.errf(p.cur(), "unterminated declaration of %s", decl.Name)
		}
		pat, err := p.parsePatternAtom()
		if err != nil {
			return nil, err
		}
		decl.Params = append(decl.Params, pat)
	}
	p.advance() // =

	savedIndent := p.minIndent
	p.minIndent = start.Column
	body, err := p.parseExpr()
	p.minIndent = savedIndent
	if err != nil {
		return nil, err
	}
	decl.Body = body
	decl.Rng = p.rangeFrom(start)
	return decl, nil
}

func (p *Parser) parseTypeDecl() (ast.Decl, error) {
	start := p.advance().Pos // type keyword
	if p.cur().Type == KW_ALIAS {
		p.advance()
		return p.parseAliasDecl(start)
	}

	nameTok, err := p.expect(UPPER_IDENT, "type name")
	if err != nil {
		return nil, err
	}
	decl := &ast.UnionDecl{Name: nameTok.Lexeme}

	// type parameters
	for p.cur().Type == LOWER_IDENT {
		p.advance()
	}
	if _, err := p.expect(EQUALS, "="); err != nil {
		return nil, err
	}

	for {
		vTok, err := p.expect(UPPER_IDENT, "variant name")
		if err != nil {
			return nil, err
		}
		variant := ast.Variant{Rng: types.Range{Start: vTok.Pos, End: vTok.End()}, Name: vTok.Lexeme}
		variant.Arity = p.skipTypeAtoms(start.Column)
		decl.Variants = append(decl.Variants, variant)
		if p.cur().Type == PIPE && p.cur().Pos.Column > start.Column {
			p.advance()
			continue
		}
		break
	}
	decl.Rng = p.rangeFrom(start)
	return decl, nil
}

func (p *Parser) parseAliasDecl(start types.Pos) (ast.Decl, error) {
	nameTok, err := p.expect(UPPER_IDENT, "alias name")
	if err != nil {
		return nil, err
	}
	decl := &ast.AliasDecl{Name: nameTok.Lexeme}
	for p.cur().Type == LOWER_IDENT {
		p.advance()
	}
	if _, err := p.expect(EQUALS, "="); err != nil {
		return nil, err
	}

	if p.cur().Type == LBRACE {
		fields, err := p.parseRecordTypeFields()
		if err != nil {
			return nil, err
		}
		decl.Fields = fields
	} else {
		p.skipTypeAtoms(start.Column)
	}
	decl.Rng = p.rangeFrom(start)
	return decl, nil
}

// parseRecordTypeFields extracts the field names of a record type,
// skipping the field types themselves.
func (p *Parser) parseRecordTypeFields() ([]string, error) {
	if _, err := p.expect(LBRACE, "{"); err != nil {
		return nil, err
	}
	var fields []string
	for {
		nameTok, err := p.expect(LOWER_IDENT, "field name")
		if err != nil {
			return nil, err
		}
		fields = append(fields, nameTok.Lexeme)
		if _, err := p.expect(COLON, ":"); err != nil {
			return nil, err
		}
		depth := 0
		for {
			tok := p.cur()
			if tok.Type == EOF {
				return nil, p.errf(tok, "unterminated record type")
			}
			if depth == 0 && (tok.Type == COMMA || tok.Type == RBRACE) {
				break
			}
			switch tok.Type {
			case LBRACE, LPAREN, LBRACKET:
				depth++
			case RBRACE, RPAREN, RBRACKET:
				depth--
			}
			p.advance()
		}
		if p.cur().Type == COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(RBRACE, "}"); err != nil {
		return nil, err
	}
	return fields, nil
}

// skipTypeAtoms consumes the type atoms of a variant declaration and
// returns how many it saw. anchorCol is the column of the enclosing
// type keyword.
func (p *Parser) skipTypeAtoms(anchorCol int) int {
	count := 0
	for {
		tok := p.cur()
		if tok.Type == EOF || tok.Pos.Column <= anchorCol {
			return count
		}
		switch tok.Type {
		case UPPER_IDENT, QUAL_IDENT, LOWER_IDENT:
			p.advance()
			count++
		case LPAREN, LBRACE:
			open := tok.Type
			closing := RPAREN
			if open == LBRACE {
				closing = RBRACE
			}
			depth := 0
			for p.cur().Type != EOF {
				if p.cur().Type == open {
					depth++
				} else if p.cur().Type == closing {
					depth--
					if depth == 0 {
						p.advance()
						break
					}
				}
				p.advance()
			}
			count++
		default:
			return count
		}
	}
}

/* Expressions */

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseBinOp(0)
}

func (p *Parser) parseBinOp(minPrec int) (ast.Expr, error) {
	left, err := p.parseApply()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.cur()
		if p.blocked() || tok.Type != OPERATOR {
			return left, nil
		}
		info, known := binOps[tok.Lexeme]
		if !known || info.prec < minPrec {
			return left, nil
		}
		p.advance()
		nextMin := info.prec + 1
		if info.rightAssoc {
			nextMin = info.prec
		}
		right, err := p.parseBinOp(nextMin)
		if err != nil {
			return nil, err
		}
		left = &ast.BinOp{
			Rng:   types.Range{Start: left.Range().Start, End: right.Range().End},
			Op:    tok.Lexeme,
			Left:  left,
			Right: right,
		}
	}
}

func (p *Parser) parseApply() (ast.Expr, error) {
	switch p.cur().Type {
	case KW_IF:
		return p.parseIf()
	case KW_CASE:
		return p.parseCase()
	case KW_LET:
		return p.parseLet()
	case BACKSLASH:
		return p.parseLambda()
	}

	fn, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	var args []ast.Expr
	for !p.blocked() && p.startsAtom() {
		arg, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if len(args) == 0 {
		return fn, nil
	}
	return &ast.Apply{
		Rng:  types.Range{Start: fn.Range().Start, End: args[len(args)-1].Range().End},
		Fn:   fn,
		Args: args,
	}, nil
}

func (p *Parser) startsAtom() bool {
	switch p.cur().Type {
	case INT_LIT, FLOAT_LIT, STRING_LIT, CHAR_LIT,
		LOWER_IDENT, UPPER_IDENT, QUAL_IDENT,
		LPAREN, LBRACKET, LBRACE:
		return true
	case DOT:
		return p.peek().Type == LOWER_IDENT
	default:
		return false
	}
}

func (p *Parser) parseAtom() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Type {
	case INT_LIT:
		p.advance()
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, p.errf(tok, "bad integer literal %q", tok.Lexeme)
		}
		return p.postfix(&ast.IntLit{Rng: tokRange(tok), Value: v, Text: tok.Lexeme})
	case FLOAT_LIT:
		p.advance()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errf(tok, "bad float literal %q", tok.Lexeme)
		}
		return p.postfix(&ast.FloatLit{Rng: tokRange(tok), Value: v, Text: tok.Lexeme})
	case STRING_LIT:
		p.advance()
		v, err := UnquoteString(tok.Lexeme)
		if err != nil {
			return nil, p.errf(tok, "%v", err)
		}
		return p.postfix(&ast.StringLit{Rng: tokRange(tok), Value: v})
	case CHAR_LIT:
		p.advance()
		v, err := UnquoteString(tok.Lexeme)
		if err != nil || utf8.RuneCountInString(v) != 1 {
			return nil, p.errf(tok, "bad character literal %q", tok.Lexeme)
		}
		r, _ := utf8.DecodeRuneInString(v)
		return p.postfix(&ast.CharLit{Rng: tokRange(tok), Value: r})
	case LOWER_IDENT, UPPER_IDENT:
		p.advance()
		return p.postfix(&ast.Ident{Rng: tokRange(tok), Name: tok.Lexeme})
	case QUAL_IDENT:
		p.advance()
		module, name := splitQualified(tok.Lexeme)
		return p.postfix(&ast.Ident{Rng: tokRange(tok), Module: module, Name: name})
	case DOT:
		p.advance()
		fieldTok, err := p.expect(LOWER_IDENT, "field name")
		if err != nil {
			return nil, err
		}
		rng := types.Range{Start: tok.Pos, End: fieldTok.End()}
		return &ast.Accessor{Rng: rng, Field: fieldTok.Lexeme}, nil
	case OPERATOR:
		if tok.Lexeme == "-" {
			p.advance()
			operand, err := p.parseAtom()
			if err != nil {
				return nil, err
			}
			rng := types.Range{Start: tok.Pos, End: operand.Range().End}
			return &ast.Negate{Rng: rng, Operand: operand}, nil
		}
		return nil, p.errf(tok, "unexpected operator %q", tok.Lexeme)
	case LPAREN:
		e, err := p.parseParenOrTuple()
		if err != nil {
			return nil, err
		}
		return p.postfix(e)
	case LBRACKET:
		e, err := p.parseList()
		if err != nil {
			return nil, err
		}
		return p.postfix(e)
	case LBRACE:
		e, err := p.parseRecord()
		if err != nil {
			return nil, err
		}
		return p.postfix(e)
	default:
		return nil, p.errf(tok, "unexpected token %q", tok.Lexeme)
	}
}

// postfix attaches adjacent .field projections: r.field.inner
func (p *Parser) postfix(e ast.Expr) (ast.Expr, error) {
	for p.cur().Type == DOT &&
		p.cur().Pos.Offset == e.Range().End.Offset &&
		p.peek().Type == LOWER_IDENT {
		p.advance()
		fieldTok := p.advance()
		e = &ast.FieldAccess{
			Rng:    types.Range{Start: e.Range().Start, End: fieldTok.End()},
			Target: e,
			Field:  fieldTok.Lexeme,
		}
	}
	return e, nil
}

func (p *Parser) parseParenOrTuple() (ast.Expr, error) {
	open := p.advance() // (
	if p.cur().Type == RPAREN {
		closing := p.advance()
		return &ast.Unit{Rng: types.Range{Start: open.Pos, End: closing.End()}}, nil
	}

	// Operator section: (&&), (+), (::)
	if p.cur().Type == OPERATOR && p.peek().Type == RPAREN {
		opTok := p.advance()
		closing := p.advance()
		rng := types.Range{Start: open.Pos, End: closing.End()}
		return &ast.Ident{Rng: rng, Name: opTok.Lexeme}, nil
	}

	savedIndent := p.minIndent
	p.minIndent = 0
	defer func() { p.minIndent = savedIndent }()

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur().Type == COMMA {
		elems := []ast.Expr{first}
		for p.cur().Type == COMMA {
			p.advance()
			el, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
		}
		closing, err := p.expect(RPAREN, ")")
		if err != nil {
			return nil, err
		}
		return &ast.TupleLit{Rng: types.Range{Start: open.Pos, End: closing.End()}, Elems: elems}, nil
	}
	closing, err := p.expect(RPAREN, ")")
	if err != nil {
		return nil, err
	}
	paren := &ast.Paren{Rng: types.Range{Start: open.Pos, End: closing.End()}, Inner: first}
	p.minIndent = savedIndent
	return p.postfix(paren)
}

func (p *Parser) parseList() (ast.Expr, error) {
	open := p.advance() // [
	savedIndent := p.minIndent
	p.minIndent = 0
	defer func() { p.minIndent = savedIndent }()

	lit := &ast.ListLit{}
	if p.cur().Type != RBRACKET {
		for {
			el, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			lit.Elems = append(lit.Elems, el)
			if p.cur().Type != COMMA {
				break
			}
			p.advance()
		}
	}
	closing, err := p.expect(RBRACKET, "]")
	if err != nil {
		return nil, err
	}
	lit.Rng = types.Range{Start: open.Pos, End: closing.End()}
	return lit, nil
}

func (p *Parser) parseRecord() (ast.Expr, error) {
	open := p.advance() // {
	savedIndent := p.minIndent
	p.minIndent = 0
	defer func() { p.minIndent = savedIndent }()

	if p.cur().Type == RBRACE {
		closing := p.advance()
		return &ast.Record{Rng: types.Range{Start: open.Pos, End: closing.End()}}, nil
	}

	// { base | field = e, ... } is a record update.
	if p.cur().Type == LOWER_IDENT && p.peek().Type == PIPE {
		baseTok := p.advance()
		p.advance() // |
		fields, err := p.parseRecordFields()
		if err != nil {
			return nil, err
		}
		closing, err := p.expect(RBRACE, "}")
		if err != nil {
			return nil, err
		}
		return &ast.RecordUpdate{
			Rng:    types.Range{Start: open.Pos, End: closing.End()},
			Base:   baseTok.Lexeme,
			Fields: fields,
		}, nil
	}

	fields, err := p.parseRecordFields()
	if err != nil {
		return nil, err
	}
	closing, err := p.expect(RBRACE, "}")
	if err != nil {
		return nil, err
	}
	return &ast.Record{Rng: types.Range{Start: open.Pos, End: closing.End()}, Fields: fields}, nil
}

func (p *Parser) parseRecordFields() ([]ast.Field, error) {
	var fields []ast.Field
	for {
		nameTok, err := p.expect(LOWER_IDENT, "field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(EQUALS, "="); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.Field{
			Rng:   types.Range{Start: nameTok.Pos, End: value.Range().End},
			Name:  nameTok.Lexeme,
			Value: value,
		})
		if p.cur().Type != COMMA {
			return fields, nil
		}
		p.advance()
	}
}

func (p *Parser) parseIf() (ast.Expr, error) {
	start := p.advance().Pos // if
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KW_THEN, "then"); err != nil {
		return nil, err
	}
	thenExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KW_ELSE, "else"); err != nil {
		return nil, err
	}
	elseExpr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.If{
		Rng:  types.Range{Start: start, End: elseExpr.Range().End},
		Cond: cond,
		Then: thenExpr,
		Else: elseExpr,
	}, nil
}

func (p *Parser) parseCase() (ast.Expr, error) {
	start := p.advance().Pos // case
	subject, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KW_OF, "of"); err != nil {
		return nil, err
	}

	branchCol := p.cur().Pos.Column
	if branchCol <= p.minIndent {
		return nil, p.errf(p.cur(), "case branch must be indented")
	}

	caseExpr := &ast.Case{Subject: subject}
	for {
		branchStart := p.cur().Pos
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(ARROW, "->"); err != nil {
			return nil, err
		}
		savedIndent := p.minIndent
		p.minIndent = branchCol
		body, err := p.parseExpr()
		p.minIndent = savedIndent
		if err != nil {
			return nil, err
		}
		caseExpr.Branches = append(caseExpr.Branches, ast.CaseBranch{
			Rng:     types.Range{Start: branchStart, End: body.Range().End},
			Pattern: pat,
			Body:    body,
		})
		if p.cur().Type == EOF || p.cur().Pos.Column != branchCol || p.cur().Pos.Column <= p.minIndent {
			break
		}
	}
	caseExpr.Rng = p.rangeFrom(start)
	return caseExpr, nil
}

func (p *Parser) parseLet() (ast.Expr, error) {
	start := p.advance().Pos // let
	declCol := p.cur().Pos.Column

	letExpr := &ast.Let{}
	for p.cur().Type != KW_IN {
		if p.cur().Type == EOF {
			return nil, p.errf(p.cur(), "let without in")
		}
		decl, err := p.parseLetDecl(declCol)
		if err != nil {
			return nil, err
		}
		letExpr.Decls = append(letExpr.Decls, *decl)
	}
	p.advance() // in
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	letExpr.Body = body
	letExpr.Rng = types.Range{Start: start, End: body.Range().End}
	return letExpr, nil
}

func (p *Parser) parseLetDecl(declCol int) (*ast.LetDecl, error) {
	start := p.cur().Pos
	decl := &ast.LetDecl{}

	if p.cur().Type == LOWER_IDENT && p.peek().Type == COLON {
		// annotation inside let
		name := p.cur().Lexeme
		p.skipAnnotation()
		if p.cur().Type != LOWER_IDENT || p.cur().Lexeme != name {
			return nil, p.errf(p.cur(), "annotation for %s without a definition", name)
		}
		start = p.cur().Pos
	}

	if p.cur().Type == LOWER_IDENT {
		decl.Name = p.advance().Lexeme
		for p.cur().Type != EQUALS {
			if p.cur().Type == EOF {
				return nil, p.errf(p.cur(), "unterminated let declaration of %s", decl.Name)
			}
			pat, err := p.parsePatternAtom()
			if err != nil {
				return nil, err
			}
			decl.Params = append(decl.Params, pat)
		}
	} else {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		decl.Pattern = pat
	}
	if _, err := p.expect(EQUALS, "="); err != nil {
		return nil, err
	}

	savedIndent := p.minIndent
	p.minIndent = declCol
	body, err := p.parseExpr()
	p.minIndent = savedIndent
	if err != nil {
		return nil, err
	}
	decl.Body = body
	decl.Rng = p.rangeFrom(start)
	return decl, nil
}

func (p *Parser) parseLambda() (ast.Expr, error) {
	start := p.advance().Pos // backslash
	var params []ast.Pattern
	for p.cur().Type != ARROW {
		if p.cur().Type == EOF {
			return nil, p.errf(p.cur(), "unterminated lambda")
		}
		pat, err := p.parsePatternAtom()
		if err != nil {
			return nil, err
		}
		params = append(params, pat)
	}
	p.advance() // ->
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.Lambda{
		Rng:    types.Range{Start: start, End: body.Range().End},
		Params: params,
		Body:   body,
	}, nil
}

/* Patterns */

func (p *Parser) parsePattern() (ast.Pattern, error) {
	pat, err := p.parseConsPattern()
	if err != nil {
		return nil, err
	}
	if p.cur().Type == KW_AS {
		p.advance()
		nameTok, err := p.expect(LOWER_IDENT, "alias name")
		if err != nil {
			return nil, err
		}
		pat = &ast.PAlias{
			Rng:   types.Range{Start: pat.Range().Start, End: nameTok.End()},
			Inner: pat,
			Name:  nameTok.Lexeme,
		}
	}
	return pat, nil
}

func (p *Parser) parseConsPattern() (ast.Pattern, error) {
	head, err := p.parseTagPattern()
	if err != nil {
		return nil, err
	}
	if p.cur().Type == OPERATOR && p.cur().Lexeme == "::" {
		p.advance()
		tail, err := p.parseConsPattern()
		if err != nil {
			return nil, err
		}
		return &ast.PCons{
			Rng:  types.Range{Start: head.Range().Start, End: tail.Range().End},
			Head: head,
			Tail: tail,
		}, nil
	}
	return head, nil
}

func (p *Parser) parseTagPattern() (ast.Pattern, error) {
	pat, err := p.parsePatternAtom()
	if err != nil {
		return nil, err
	}
	tag, ok := pat.(*ast.PTag)
	if !ok {
		return pat, nil
	}
	for p.startsPatternAtom() {
		arg, err := p.parsePatternAtom()
		if err != nil {
			return nil, err
		}
		tag.Args = append(tag.Args, arg)
		tag.Rng.End = arg.Range().End
	}
	return tag, nil
}

func (p *Parser) startsPatternAtom() bool {
	switch p.cur().Type {
	case UNDERSCORE, LOWER_IDENT, UPPER_IDENT, QUAL_IDENT,
		INT_LIT, STRING_LIT, CHAR_LIT, LPAREN, LBRACKET, LBRACE:
		return !p.blocked()
	default:
		return false
	}
}

func (p *Parser) parsePatternAtom() (ast.Pattern, error) {
	tok := p.cur()
	switch tok.Type {
	case UNDERSCORE:
		p.advance()
		return &ast.PWildcard{Rng: tokRange(tok)}, nil
	case LOWER_IDENT:
		p.advance()
		return &ast.PVar{Rng: tokRange(tok), Name: tok.Lexeme}, nil
	case UPPER_IDENT:
		p.advance()
		return &ast.PTag{Rng: tokRange(tok), Name: tok.Lexeme}, nil
	case QUAL_IDENT:
		p.advance()
		module, name := splitQualified(tok.Lexeme)
		return &ast.PTag{Rng: tokRange(tok), Module: module, Name: name}, nil
	case INT_LIT:
		p.advance()
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, p.errf(tok, "bad integer literal %q", tok.Lexeme)
		}
		return &ast.PInt{Rng: tokRange(tok), Value: v, Text: tok.Lexeme}, nil
	case STRING_LIT:
		p.advance()
		v, err := UnquoteString(tok.Lexeme)
		if err != nil {
			return nil, p.errf(tok, "%v", err)
		}
		return &ast.PString{Rng: tokRange(tok), Value: v}, nil
	case CHAR_LIT:
		p.advance()
		v, err := UnquoteString(tok.Lexeme)
		if err != nil || utf8.RuneCountInString(v) != 1 {
			return nil, p.errf(tok, "bad character literal %q", tok.Lexeme)
		}
		r, _ := utf8.DecodeRuneInString(v)
		return &ast.PChar{Rng: tokRange(tok), Value: r}, nil
	case LPAREN:
		open := p.advance()
		if p.cur().Type == RPAREN {
			closing := p.advance()
			return &ast.PUnit{Rng: types.Range{Start: open.Pos, End: closing.End()}}, nil
		}
		first, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if p.cur().Type == COMMA {
			elems := []ast.Pattern{first}
			for p.cur().Type == COMMA {
				p.advance()
				el, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				elems = append(elems, el)
			}
			closing, err := p.expect(RPAREN, ")")
			if err != nil {
				return nil, err
			}
			return &ast.PTuple{Rng: types.Range{Start: open.Pos, End: closing.End()}, Elems: elems}, nil
		}
		closing, err := p.expect(RPAREN, ")")
		if err != nil {
			return nil, err
		}
		return &ast.PParen{Rng: types.Range{Start: open.Pos, End: closing.End()}, Inner: first}, nil
	case LBRACKET:
		open := p.advance()
		plist := &ast.PList{}
		if p.cur().Type != RBRACKET {
			for {
				el, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				plist.Elems = append(plist.Elems, el)
				if p.cur().Type != COMMA {
					break
				}
				p.advance()
			}
		}
		closing, err := p.expect(RBRACKET, "]")
		if err != nil {
			return nil, err
		}
		plist.Rng = types.Range{Start: open.Pos, End: closing.End()}
		return plist, nil
	case LBRACE:
		open := p.advance()
		prec := &ast.PRecord{}
		for {
			nameTok, err := p.expect(LOWER_IDENT, "field name")
			if err != nil {
				return nil, err
			}
			prec.Fields = append(prec.Fields, nameTok.Lexeme)
			if p.cur().Type != COMMA {
				break
			}
			p.advance()
		}
		closing, err := p.expect(RBRACE, "}")
		if err != nil {
			return nil, err
		}
		prec.Rng = types.Range{Start: open.Pos, End: closing.End()}
		return prec, nil
	default:
		return nil, p.errf(tok, "unexpected token %q in pattern", tok.Lexeme)
	}
}

func tokRange(tok Token) types.Range {
	return types.Range{Start: tok.Pos, End: tok.End()}
}

func splitQualified(lexeme string) (module, name string) {
	idx := strings.LastIndexByte(lexeme, '.')
	if idx < 0 {
		return "", lexeme
	}
	return lexeme[:idx], lexeme[idx+1:]
}
