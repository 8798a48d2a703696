// Package parse is a minimal hand-written recursive-descent parser
// producing internal/syntax values from an internal/lex token stream.
// Like internal/lex, this is an external collaborator to the core
// (spec.md §1) — included only so cmd/lucidc and the end-to-end tests
// have a real front end.
//
// Grounded on the teacher's internal/parser: a Parser struct carrying
// cur/peek tokens advanced by nextToken, and one parse method per
// surface production (the teacher's prefixParseFns table collapses
// here into a single parseAtom switch, since this language's surface
// has far fewer expression forms than funxy's).
package parse

import (
	"fmt"

	"github.com/lucidlang/lucid/internal/lex"
	"github.com/lucidlang/lucid/internal/names"
	"github.com/lucidlang/lucid/internal/syntax"
	"github.com/lucidlang/lucid/internal/types"
)

// SyntaxError reports a parse failure at a source position.
type SyntaxError struct {
	Line, Column int
	Msg          string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Column, e.Msg)
}

// Parser consumes a token stream and builds syntax.Program values.
type Parser struct {
	l         *lex.Lexer
	cur, peek lex.Token
}

// New returns a Parser reading from l, primed with its first two
// tokens.
func New(l *lex.Lexer) *Parser {
	p := &Parser{l: l}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.cur.Line, Column: p.cur.Column, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(t lex.Type) error {
	if p.cur.Type != t {
		return p.errorf("expected %s, got %s", t, p.cur.Type)
	}
	p.nextToken()
	return nil
}

// ParseProgram parses a sequence of `type` declarations followed by
// exactly one expression (spec.md §6: a Program is ADT declarations
// plus the expression to check/lower/compile).
func ParseProgram(src string) (syntax.Program, error) {
	p := New(lex.New(src))
	var decls []syntax.TypeDecl
	for p.curIsWord("type") {
		d, err := p.parseTypeDecl()
		if err != nil {
			return syntax.Program{}, err
		}
		decls = append(decls, d)
	}
	expr, err := p.parseExpr()
	if err != nil {
		return syntax.Program{}, err
	}
	if p.cur.Type != lex.EOF {
		return syntax.Program{}, p.errorf("unexpected trailing token %s", p.cur.Type)
	}
	return syntax.Program{Decls: decls, Expr: expr}, nil
}

// curIsWord reports whether the current token is an IDENT literally
// spelling w. "type" has no reserved lex.Type of its own (spec.md's
// core expression grammar has no type keyword), so a type
// declaration's header is recognized this way instead.
func (p *Parser) curIsWord(w string) bool {
	return p.cur.Type == lex.IDENT && p.cur.Literal == w
}

func (p *Parser) parseExpr() (syntax.Expression, error) {
	switch {
	case p.cur.Type == lex.LET:
		return p.parseLet()
	case p.cur.Type == lex.IF:
		return p.parseIf()
	case p.cur.Type == lex.BACKSLASH:
		return p.parseLambda()
	case p.cur.Type == lex.MATCH:
		return p.parseMatch()
	default:
		return p.parseApp()
	}
}

func (p *Parser) parseLet() (syntax.Expression, error) {
	if err := p.expect(lex.LET); err != nil {
		return nil, err
	}
	recursive := false
	if p.cur.Type == lex.REC {
		recursive = true
		p.nextToken()
	}
	if p.cur.Type != lex.IDENT {
		return nil, p.errorf("expected a name after let, got %s", p.cur.Type)
	}
	name := names.Name(p.cur.Literal)
	p.nextToken()
	if err := p.expect(lex.ASSIGN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lex.IN); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return syntax.Let{Name: name, Recursive: recursive, Value: value, Body: body}, nil
}

func (p *Parser) parseIf() (syntax.Expression, error) {
	if err := p.expect(lex.IF); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lex.THEN); err != nil {
		return nil, err
	}
	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lex.ELSE); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return syntax.If{Cond: cond, Then: then, Else: els}, nil
}

func (p *Parser) parseLambda() (syntax.Expression, error) {
	if err := p.expect(lex.BACKSLASH); err != nil {
		return nil, err
	}
	if p.cur.Type != lex.IDENT {
		return nil, p.errorf("expected a parameter name, got %s", p.cur.Type)
	}
	param := names.Name(p.cur.Literal)
	p.nextToken()
	if err := p.expect(lex.ARROW); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return syntax.Lambda{Param: param, Body: body}, nil
}

func (p *Parser) parseMatch() (syntax.Expression, error) {
	if err := p.expect(lex.MATCH); err != nil {
		return nil, err
	}
	scrutinee, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(lex.WITH); err != nil {
		return nil, err
	}
	var cases []syntax.MatchCase
	for p.cur.Type == lex.PIPE {
		p.nextToken()
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lex.ARROW); err != nil {
			return nil, err
		}
		body, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		cases = append(cases, syntax.MatchCase{Pattern: pat, Body: body})
	}
	if err := p.expect(lex.END); err != nil {
		return nil, err
	}
	return syntax.Match{Scrutinee: scrutinee, Cases: cases}, nil
}

// parsePattern parses `name` (a variable pattern) or
// `Type::Ctor[(field, ...)]` (a constructor pattern).
func (p *Parser) parsePattern() (syntax.Pattern, error) {
	if p.cur.Type != lex.IDENT {
		return nil, p.errorf("expected a pattern, got %s", p.cur.Type)
	}
	first := p.cur.Literal
	p.nextToken()
	if p.cur.Type != lex.COLONCOLON {
		return syntax.PatternVar{Name: names.Name(first)}, nil
	}
	p.nextToken()
	if p.cur.Type != lex.IDENT {
		return nil, p.errorf("expected a constructor name after ::, got %s", p.cur.Type)
	}
	ctor := p.cur.Literal
	p.nextToken()

	var fields []syntax.Pattern
	if p.cur.Type == lex.LPAREN {
		p.nextToken()
		for {
			f, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
			if p.cur.Type == lex.COMMA {
				p.nextToken()
				continue
			}
			break
		}
		if err := p.expect(lex.RPAREN); err != nil {
			return nil, err
		}
	}
	return syntax.PatternConstructor{Type: names.Name(first), Ctor: names.Name(ctor), Fields: fields}, nil
}

// parseApp parses one or more juxtaposed atoms as left-associative
// application: `f x y` is App(App(f, x), y).
func (p *Parser) parseApp() (syntax.Expression, error) {
	head, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.startsAtom() {
		arg, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		head = syntax.App{Func: head, Arg: arg}
	}
	return head, nil
}

func (p *Parser) startsAtom() bool {
	switch p.cur.Type {
	case lex.INT, lex.TRUE, lex.FALSE, lex.IDENT, lex.LPAREN:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAtom() (syntax.Expression, error) {
	switch p.cur.Type {
	case lex.INT:
		return p.parseIntLiteral()
	case lex.TRUE:
		p.nextToken()
		return syntax.Bool{Value: true}, nil
	case lex.FALSE:
		p.nextToken()
		return syntax.Bool{Value: false}, nil
	case lex.LPAREN:
		p.nextToken()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(lex.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case lex.IDENT:
		return p.parseIdentOrConstruction()
	default:
		return nil, p.errorf("unexpected token %s", p.cur.Type)
	}
}

func (p *Parser) parseIntLiteral() (syntax.Expression, error) {
	var v int32
	for _, ch := range p.cur.Literal {
		v = v*10 + int32(ch-'0')
	}
	p.nextToken()
	return syntax.Int{Value: v}, nil
}

// parseIdentOrConstruction parses a bare variable reference, or, when
// followed by `::`, a constructor application `Type::Ctor(args...)`.
func (p *Parser) parseIdentOrConstruction() (syntax.Expression, error) {
	first := p.cur.Literal
	p.nextToken()
	if p.cur.Type != lex.COLONCOLON {
		return syntax.Var{Name: names.Name(first)}, nil
	}
	p.nextToken()
	if p.cur.Type != lex.IDENT {
		return nil, p.errorf("expected a constructor name after ::, got %s", p.cur.Type)
	}
	ctor := p.cur.Literal
	p.nextToken()

	var args []syntax.Expression
	if p.cur.Type == lex.LPAREN {
		p.nextToken()
		if p.cur.Type != lex.RPAREN {
			for {
				a, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.cur.Type == lex.COMMA {
					p.nextToken()
					continue
				}
				break
			}
		}
		if err := p.expect(lex.RPAREN); err != nil {
			return nil, err
		}
	}
	return syntax.Construction{Type: names.Name(first), Ctor: names.Name(ctor), Args: args}, nil
}

// parseTypeDecl parses `type Name a b = Ctor1 ty ty | Ctor2 ...;`. The
// trailing `;` is required — without it, a constructor's last argument
// type and the start of the expression following the declaration are
// both just identifiers, with nothing to tell them apart.
func (p *Parser) parseTypeDecl() (syntax.TypeDecl, error) {
	p.nextToken() // consume "type"
	if p.cur.Type != lex.IDENT {
		return syntax.TypeDecl{}, p.errorf("expected a type name, got %s", p.cur.Type)
	}
	name := p.cur.Literal
	p.nextToken()

	var tyArgs []names.TyVar
	for p.cur.Type == lex.IDENT && isLower(p.cur.Literal) {
		tyArgs = append(tyArgs, names.TyVar(p.cur.Literal))
		p.nextToken()
	}
	if err := p.expect(lex.ASSIGN); err != nil {
		return syntax.TypeDecl{}, err
	}

	var ctors []types.DataConstructor
	for {
		if p.cur.Type != lex.IDENT {
			return syntax.TypeDecl{}, p.errorf("expected a constructor name, got %s", p.cur.Type)
		}
		ctorName := p.cur.Literal
		p.nextToken()

		var argTypes []types.Monotype
		for p.cur.Type == lex.IDENT {
			t, err := p.parseTypeAtom()
			if err != nil {
				return syntax.TypeDecl{}, err
			}
			argTypes = append(argTypes, t)
		}
		ctors = append(ctors, types.DataConstructor{Name: names.Name(ctorName), ArgTypes: argTypes})

		if p.cur.Type == lex.PIPE {
			p.nextToken()
			continue
		}
		break
	}
	if err := p.expect(lex.SEMI); err != nil {
		return syntax.TypeDecl{}, err
	}
	return syntax.TypeDecl{Name: names.Name(name), TyArgs: tyArgs, Constructors: ctors}, nil
}

// parseTypeAtom parses one constructor-argument type: a lowercase
// identifier is a type-variable reference, an uppercase identifier is
// a nullary type constructor (e.g. Int, Bool, or an ADT used as a
// bare argument with no further type arguments of its own).
func (p *Parser) parseTypeAtom() (types.Monotype, error) {
	if p.cur.Type != lex.IDENT {
		return nil, p.errorf("expected a type, got %s", p.cur.Type)
	}
	lit := p.cur.Literal
	p.nextToken()
	if isLower(lit) {
		return types.Var{Name: names.TyVar(lit)}, nil
	}
	return types.Constructor{Name: names.Name(lit)}, nil
}

func isLower(s string) bool {
	return len(s) > 0 && s[0] >= 'a' && s[0] <= 'z'
}
