// Package parser implements the smog language parser: a recursive-descent
// parser producing the pkg/ast node set directly (no separate "parse tree"
// stage), following Smalltalk's classic unary > binary > keyword message
// precedence with left-to-right associativity within each tier.
//
// Token Management:
//
// The parser keeps a two-token lookahead window (curTok/peekTok) the same
// way the original hand-written lexer/parser pair in this tree always
// has: each parse*/parse-statement function leaves curTok on the LAST
// token it consumed, and the caller inspects peekTok to decide whether to
// continue (another binary operator, another keyword part, a cascade
// semicolon, …) before calling nextToken() itself.
//
// Grammar (informal):
//
//	Program      := Statement ('.' Statement)* '.'?
//	Statement    := Return | Expression
//	Return       := '^' Expression?
//	Expression   := (Ident ':=' Expression) | Cascade
//	Cascade      := Keyword (';' CascadePart)*
//	Keyword      := Binary (KeywordPart Binary)*
//	Binary       := Unary (BinarySelector Unary)*      -- except '>>', method-def sugar
//	Unary        := Primary (UnarySelector)*
//	Primary      := Literal | Ident | self | super | nil | true | false
//	              | '(' Expression ')' | Block | Array
//
// `ClassExpr >> selector [ body ]` (optionally `ClassExpr class >> ...`
// for a class-side method) is sugar recognized inline in the binary tier,
// desugaring to `ClassExpr selector:put: #selector [body]` (or
// `classSelector:put:`), per SPEC_FULL.md §4.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kristofer/smog/pkg/ast"
	"github.com/kristofer/smog/pkg/lexer"
)

// Parser is stateful and single-use: create a new one per source unit.
type Parser struct {
	l       *lexer.Lexer
	curTok  lexer.Token
	peekTok lexer.Token
	errors  []string
}

// New creates a parser for the given source text.
func New(input string) *Parser {
	p := &Parser{l: lexer.New(input), errors: []string{}}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.l.NextToken()
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("%s (line %d, column %d)", msg, p.curTok.Line, p.curTok.Column))
}

// Errors returns accumulated syntax errors from the last Parse call.
func (p *Parser) Errors() []string {
	return p.errors
}

// Parse parses the whole input as a Program: a flat statement sequence.
func (p *Parser) Parse() (*ast.Program, error) {
	stmts := p.parseStatementList(lexer.TokenEOF)
	if len(p.errors) > 0 {
		return &ast.Program{Statements: stmts}, fmt.Errorf("parser errors: %v", p.errors)
	}
	return &ast.Program{Statements: stmts}, nil
}

// parseStatementList parses statements separated by '.' until curTok is
// stop (exclusive) or EOF. A trailing '.' is optional.
func (p *Parser) parseStatementList(stop lexer.TokenType) []ast.Node {
	var stmts []ast.Node
	for p.curTok.Type != stop && p.curTok.Type != lexer.TokenEOF {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.peekTok.Type == lexer.TokenPeriod {
			p.nextToken()
		}
		p.nextToken()
	}
	return stmts
}

func isStatementEnd(tt lexer.TokenType) bool {
	return tt == lexer.TokenPeriod || tt == lexer.TokenRBracket || tt == lexer.TokenEOF
}

func (p *Parser) parseStatement() ast.Node {
	if p.curTok.Type == lexer.TokenCaret {
		return p.parseReturnStatement()
	}
	return p.parseExpression()
}

// parseReturnStatement parses `^expr` or a bare `^`, which the parser
// normalizes to `^self` per ast.Return's doc comment.
func (p *Parser) parseReturnStatement() ast.Node {
	if isStatementEnd(p.peekTok.Type) {
		return &ast.Return{Expr: &ast.PseudoVar{Kind: ast.PVSelf}}
	}
	p.nextToken()
	expr := p.parseExpression()
	if expr == nil {
		expr = &ast.PseudoVar{Kind: ast.PVSelf}
	}
	return &ast.Return{Expr: expr}
}

// parseExpression handles assignment (right-associative: `x := y := 5`
// parses as `x := (y := 5)`) and otherwise delegates to the cascade tier.
func (p *Parser) parseExpression() ast.Node {
	if p.curTok.Type == lexer.TokenIdentifier && p.peekTok.Type == lexer.TokenAssign {
		name := p.curTok.Literal
		p.nextToken() // curTok = ':='
		p.nextToken() // move to value's first token
		value := p.parseExpression()
		if value == nil {
			return nil
		}
		return &ast.Assign{Name: name, Expr: value}
	}
	return p.parseCascade()
}

// parseCascade parses a single keyword/binary/unary expression and, if
// followed by ';', turns its outermost message send into a Cascade: the
// receiver and first message come from that send, and each ';'-separated
// part after it is sent to the same receiver (spec §4.3 Cascade).
func (p *Parser) parseCascade() ast.Node {
	top := p.parseKeywordExpr()
	if p.peekTok.Type != lexer.TokenSemicolon {
		return top
	}
	msg, ok := top.(*ast.Message)
	if !ok {
		p.addError("cascade ';' must follow a message send")
		return top
	}
	cas := &ast.Cascade{
		Receiver: msg.Receiver,
		First:    ast.CascadeMessage{Selector: msg.Selector, Args: msg.Args},
	}
	for p.peekTok.Type == lexer.TokenSemicolon {
		p.nextToken() // curTok = ';'
		p.nextToken() // move to this part's first token
		sel, args := p.parseCascadePart()
		cas.Rest = append(cas.Rest, ast.CascadeMessage{Selector: sel, Args: args})
	}
	return cas
}

func (p *Parser) parseCascadePart() (string, []ast.Node) {
	switch p.curTok.Type {
	case lexer.TokenKeyword:
		var sb strings.Builder
		var args []ast.Node
		for p.curTok.Type == lexer.TokenKeyword {
			sb.WriteString(p.curTok.Literal)
			p.nextToken()
			args = append(args, p.parseBinaryExpr())
			if p.peekTok.Type == lexer.TokenKeyword {
				p.nextToken()
			} else {
				break
			}
		}
		return sb.String(), args
	case lexer.TokenBinarySelector:
		op := p.curTok.Literal
		p.nextToken()
		return op, []ast.Node{p.parseUnaryExpr()}
	case lexer.TokenIdentifier:
		return p.curTok.Literal, nil
	default:
		p.addError(fmt.Sprintf("invalid cascade message part: %s", p.curTok.Type))
		return "", nil
	}
}

// parseKeywordExpr parses the lowest-precedence tier: zero or more
// "keyword: arg" parts combined into a single send whose selector is
// their concatenation (e.g. "at:" + "put:" -> "at:put:").
func (p *Parser) parseKeywordExpr() ast.Node {
	left := p.parseBinaryExpr()
	if p.peekTok.Type != lexer.TokenKeyword {
		return left
	}
	var sb strings.Builder
	var args []ast.Node
	for p.peekTok.Type == lexer.TokenKeyword {
		p.nextToken() // curTok = keyword part
		sb.WriteString(p.curTok.Literal)
		p.nextToken() // move to this arg's first token
		args = append(args, p.parseBinaryExpr())
	}
	return p.buildSend(left, sb.String(), args)
}

// parseBinaryExpr parses a left-associative chain of binary-selector
// sends, except ">>", which is the `>>`-method-definition sugar and
// switches into parseMethodDefSugar instead of an ordinary send.
func (p *Parser) parseBinaryExpr() ast.Node {
	left := p.parseUnaryExpr()
	for p.peekTok.Type == lexer.TokenBinarySelector {
		if p.peekTok.Literal == ">>" {
			p.nextToken() // curTok = '>>'
			return p.parseMethodDefSugar(left)
		}
		p.nextToken() // curTok = operator
		op := p.curTok.Literal
		p.nextToken() // move to rhs's first token
		right := p.parseUnaryExpr()
		left = p.buildSend(left, op, []ast.Node{right})
	}
	return left
}

// parseUnaryExpr parses a left-associative chain of unary sends.
func (p *Parser) parseUnaryExpr() ast.Node {
	left := p.parsePrimary()
	for p.peekTok.Type == lexer.TokenIdentifier {
		p.nextToken()
		left = p.buildSend(left, p.curTok.Literal, nil)
	}
	return left
}

// buildSend wraps a message as an ordinary Message, unless receiver is
// the bare `super` pseudo-variable, in which case this one send (and
// only this one — the result of a super send is an ordinary value for
// any further chained sends) becomes a SuperSend (spec §4.6).
func (p *Parser) buildSend(receiver ast.Node, selector string, args []ast.Node) ast.Node {
	if pv, ok := receiver.(*ast.PseudoVar); ok && pv.Kind == ast.PVSuper {
		return &ast.SuperSend{Selector: selector, Args: args}
	}
	return &ast.Message{Receiver: receiver, Selector: selector, Args: args}
}

func (p *Parser) parsePrimary() ast.Node {
	switch p.curTok.Type {
	case lexer.TokenInteger:
		v, err := strconv.ParseInt(p.curTok.Literal, 10, 64)
		if err != nil {
			p.addError(fmt.Sprintf("could not parse %q as integer", p.curTok.Literal))
			return nil
		}
		return &ast.Literal{Kind: ast.LitInt, Int: v}
	case lexer.TokenFloat:
		v, err := strconv.ParseFloat(p.curTok.Literal, 64)
		if err != nil {
			p.addError(fmt.Sprintf("could not parse %q as float", p.curTok.Literal))
			return nil
		}
		return &ast.Literal{Kind: ast.LitFloat, Flt: v}
	case lexer.TokenString:
		return &ast.Literal{Kind: ast.LitString, Str: p.curTok.Literal}
	case lexer.TokenSymbol:
		return &ast.Literal{Kind: ast.LitSymbol, Str: p.curTok.Literal}
	case lexer.TokenTrue:
		return &ast.PseudoVar{Kind: ast.PVTrue}
	case lexer.TokenFalse:
		return &ast.PseudoVar{Kind: ast.PVFalse}
	case lexer.TokenNil:
		return &ast.PseudoVar{Kind: ast.PVNil}
	case lexer.TokenSelf:
		return &ast.PseudoVar{Kind: ast.PVSelf}
	case lexer.TokenSuper:
		return &ast.PseudoVar{Kind: ast.PVSuper}
	case lexer.TokenIdentifier:
		return &ast.Ident{Name: p.curTok.Literal}
	case lexer.TokenLParen:
		p.nextToken() // move into the parenthesized expression
		expr := p.parseExpression()
		if p.peekTok.Type != lexer.TokenRParen {
			p.addError("expected ) to close parenthesized expression")
			return expr
		}
		p.nextToken() // curTok = ')'
		return expr
	case lexer.TokenLBracket:
		return p.parseBlockLiteral()
	case lexer.TokenHashLParen:
		return p.parseArrayLiteral()
	case lexer.TokenBinarySelector:
		// A leading '-' directly against a numeric literal is unary
		// negation, not the binary `-` selector — the lexer has no
		// notion of "preceding operand" so this decision belongs here.
		if p.curTok.Literal == "-" && (p.peekTok.Type == lexer.TokenInteger || p.peekTok.Type == lexer.TokenFloat) {
			p.nextToken()
			if p.curTok.Type == lexer.TokenInteger {
				v, _ := strconv.ParseInt(p.curTok.Literal, 10, 64)
				return &ast.Literal{Kind: ast.LitInt, Int: -v}
			}
			v, _ := strconv.ParseFloat(p.curTok.Literal, 64)
			return &ast.Literal{Kind: ast.LitFloat, Flt: -v}
		}
		p.addError(fmt.Sprintf("unexpected token: %s", p.curTok.Type))
		return nil
	default:
		p.addError(fmt.Sprintf("unexpected token: %s", p.curTok.Type))
		return nil
	}
}

// parseBlockLiteral parses `[ (:param)* '|'? ('|' temp* '|')? statements ]`.
// A bare leading '|' (no preceding ':param') is the temporaries list, not
// an empty parameter list, since parameters always start with ':'.
func (p *Parser) parseBlockLiteral() ast.Node {
	p.nextToken() // skip '['

	var params []string
	if p.curTok.Type == lexer.TokenColon {
		for p.curTok.Type == lexer.TokenColon {
			p.nextToken()
			if p.curTok.Type != lexer.TokenIdentifier {
				p.addError("expected parameter name after ':' in block")
				break
			}
			params = append(params, p.curTok.Literal)
			p.nextToken()
		}
		if p.curTok.Type != lexer.TokenPipe {
			p.addError("expected '|' after block parameters")
		} else {
			p.nextToken()
		}
	}

	var temps []string
	if p.curTok.Type == lexer.TokenPipe {
		p.nextToken()
		for p.curTok.Type == lexer.TokenIdentifier {
			temps = append(temps, p.curTok.Literal)
			p.nextToken()
		}
		if p.curTok.Type != lexer.TokenPipe {
			p.addError("expected '|' to close block temporaries")
		} else {
			p.nextToken()
		}
	}

	body := p.parseStatementList(lexer.TokenRBracket)
	if p.curTok.Type != lexer.TokenRBracket {
		p.addError("expected ']' to close block")
	}
	return &ast.BlockNode{Parameters: params, Temporaries: temps, Body: body}
}

// parseArrayLiteral parses `#( element* )`. Bare identifiers (and
// keyword-shaped tokens like "at:") denote Symbols inside an array
// literal, per the classic Smalltalk array-literal convention — `#(x y)`
// is an array of the symbols `#x` and `#y`, used throughout spec §8's
// scenarios as `derive:`'s slot-name argument.
func (p *Parser) parseArrayLiteral() ast.Node {
	p.nextToken() // skip '#('
	var elems []ast.Node
	for p.curTok.Type != lexer.TokenRParen && p.curTok.Type != lexer.TokenEOF {
		elems = append(elems, p.parseArrayElement())
		p.nextToken()
	}
	if p.curTok.Type != lexer.TokenRParen {
		p.addError("expected ')' to close array literal")
	}
	return &ast.ArrayNode{Elements: elems}
}

func (p *Parser) parseArrayElement() ast.Node {
	switch p.curTok.Type {
	case lexer.TokenInteger:
		v, _ := strconv.ParseInt(p.curTok.Literal, 10, 64)
		return &ast.Literal{Kind: ast.LitInt, Int: v}
	case lexer.TokenFloat:
		v, _ := strconv.ParseFloat(p.curTok.Literal, 64)
		return &ast.Literal{Kind: ast.LitFloat, Flt: v}
	case lexer.TokenString:
		return &ast.Literal{Kind: ast.LitString, Str: p.curTok.Literal}
	case lexer.TokenSymbol:
		return &ast.Literal{Kind: ast.LitSymbol, Str: p.curTok.Literal}
	case lexer.TokenIdentifier, lexer.TokenKeyword:
		return &ast.Literal{Kind: ast.LitSymbol, Str: p.curTok.Literal}
	case lexer.TokenTrue:
		return &ast.PseudoVar{Kind: ast.PVTrue}
	case lexer.TokenFalse:
		return &ast.PseudoVar{Kind: ast.PVFalse}
	case lexer.TokenNil:
		return &ast.PseudoVar{Kind: ast.PVNil}
	case lexer.TokenHashLParen:
		return p.parseArrayLiteral()
	default:
		p.addError(fmt.Sprintf("unexpected token in array literal: %s", p.curTok.Type))
		return &ast.Literal{Kind: ast.LitInt}
	}
}

// parseMethodDefSugar parses the `>>` shorthand (spec's surface sugar,
// not a core grammar form): `ClassExpr >> sel [body]` or, for a
// class-side method, `ClassExpr class >> sel [body]`. curTok is '>>' on
// entry. Desugars to the spec-mandated `selector:put:`/
// `classSelector:put:` message send (SPEC_FULL.md §4).
func (p *Parser) parseMethodDefSugar(classExpr ast.Node) ast.Node {
	classSide := false
	if m, ok := classExpr.(*ast.Message); ok && m.Selector == "class" && len(m.Args) == 0 {
		classSide = true
		classExpr = m.Receiver
	}

	p.nextToken() // move past '>>' to the selector

	var selector string
	var params []string
	switch p.curTok.Type {
	case lexer.TokenIdentifier:
		selector = p.curTok.Literal
		p.nextToken() // move to '['
	case lexer.TokenKeyword:
		var sb strings.Builder
		for p.curTok.Type == lexer.TokenKeyword {
			sb.WriteString(p.curTok.Literal)
			p.nextToken()
			if p.curTok.Type != lexer.TokenIdentifier {
				p.addError("expected parameter name in method definition")
				break
			}
			params = append(params, p.curTok.Literal)
			p.nextToken()
		}
		selector = sb.String()
	case lexer.TokenBinarySelector:
		selector = p.curTok.Literal
		p.nextToken()
		if p.curTok.Type != lexer.TokenIdentifier {
			p.addError("expected parameter name in method definition")
		} else {
			params = append(params, p.curTok.Literal)
			p.nextToken()
		}
	default:
		p.addError("expected a method selector after '>>'")
		return nil
	}

	if p.curTok.Type != lexer.TokenLBracket {
		p.addError("expected '[' to begin method body")
		return nil
	}
	body := p.parseMethodBody(params)

	putSelector := "selector:put:"
	if classSide {
		putSelector = "classSelector:put:"
	}
	return &ast.Message{
		Receiver: classExpr,
		Selector: putSelector,
		Args: []ast.Node{
			&ast.Literal{Kind: ast.LitSymbol, Str: selector},
			body,
		},
	}
}

// parseMethodBody parses `[ ('|' temp* '|')? statements ]` for the '>>'
// sugar: unlike parseBlockLiteral, parameters are never read from source
// here — they come from the selector's keyword parts, supplied by the
// caller.
func (p *Parser) parseMethodBody(params []string) *ast.BlockNode {
	p.nextToken() // skip '['

	var temps []string
	if p.curTok.Type == lexer.TokenPipe {
		p.nextToken()
		for p.curTok.Type == lexer.TokenIdentifier {
			temps = append(temps, p.curTok.Literal)
			p.nextToken()
		}
		if p.curTok.Type != lexer.TokenPipe {
			p.addError("expected '|' to close method temporaries")
		} else {
			p.nextToken()
		}
	}

	stmts := p.parseStatementList(lexer.TokenRBracket)
	if p.curTok.Type != lexer.TokenRBracket {
		p.addError("expected ']' to close method body")
	}
	return &ast.BlockNode{Parameters: params, Temporaries: temps, Body: stmts}
}
