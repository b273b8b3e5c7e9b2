package expr

import (
	"strconv"

	"github.com/gonodes/exprgraph/ir"
)

// DefaultMaxDepth bounds expression nesting during parsing.
const DefaultMaxDepth = 96

// Parser parses a token stream into a Script.
type Parser struct {
	tokens   []Token
	pos      int
	source   string
	maxDepth int
	depth    int
	parens   int
}

// NewParser creates a parser for the given source. A maxDepth of zero
// selects DefaultMaxDepth.
func NewParser(source string, maxDepth int) *Parser {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Parser{source: source, maxDepth: maxDepth}
}

// ParseScript parses the whole source: zero or more let statements
// followed by the result expression.
func ParseScript(source string) (*Script, error) {
	return NewParser(source, 0).Parse()
}

// Parse tokenizes and parses the source.
func (p *Parser) Parse() (*Script, error) {
	tokens, err := NewLexer(p.source).Tokenize()
	if err != nil {
		return nil, err
	}
	p.tokens = tokens
	p.pos = 0

	script := &Script{}
	p.skipSeparators()
	for p.check(TokenLet) {
		stmt, err := p.letStatement()
		if err != nil {
			return nil, err
		}
		script.Lets = append(script.Lets, stmt)
		if err := p.expectSeparator(); err != nil {
			return nil, err
		}
		p.skipSeparators()
	}

	if p.check(TokenEOF) {
		return nil, p.errorAt(p.peek(), "expected result expression")
	}

	result, err := p.expression()
	if err != nil {
		return nil, err
	}
	script.Result = result

	p.skipSeparators()
	if !p.check(TokenEOF) {
		return nil, p.errorAt(p.peek(), "unexpected %s after result expression", p.peek().Kind)
	}
	return script, nil
}

func (p *Parser) letStatement() (*LetStmt, error) {
	p.advance() // let
	name, err := p.expect(TokenIdent, "binding name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenEqual, "'='"); err != nil {
		return nil, err
	}
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &LetStmt{Name: name.Lexeme, NameSpan: name.Span(), Value: value}, nil
}

// expression parses with precedence climbing, lowest binding first.
func (p *Parser) expression() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	return p.orExpr()
}

func (p *Parser) orExpr() (Expr, error) {
	left, err := p.andExpr()
	if err != nil {
		return nil, err
	}
	for p.check(TokenOr) {
		op := p.advance()
		right, err := p.andExpr()
		if err != nil {
			return nil, err
		}
		left, err = p.binary("or", op, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) andExpr() (Expr, error) {
	left, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.check(TokenAnd) {
		op := p.advance()
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		left, err = p.binary("and", op, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) comparison() (Expr, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	for {
		var name string
		switch p.peek().Kind {
		case TokenLess:
			name = "<"
		case TokenLessEqual:
			name = "<="
		case TokenGreater:
			name = ">"
		case TokenGreaterEqual:
			name = ">="
		case TokenEqualEqual:
			name = "=="
		case TokenBangEqual:
			name = "!="
		default:
			return left, nil
		}
		op := p.advance()
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		left, err = p.binary(name, op, left, right)
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) additive() (Expr, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(TokenPlus) || p.check(TokenMinus) {
		op := p.advance()
		name := "+"
		if op.Kind == TokenMinus {
			name = "-"
		}
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left, err = p.binary(name, op, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) multiplicative() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		var name string
		switch p.peek().Kind {
		case TokenStar:
			name = "*"
		case TokenSlash:
			name = "/"
		case TokenPercent:
			name = "%"
		default:
			return left, nil
		}
		op := p.advance()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left, err = p.binary(name, op, left, right)
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) unary() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	switch p.peek().Kind {
	case TokenMinus, TokenNot:
		op := p.advance()
		name := "neg"
		if op.Kind == TokenNot {
			name = "not"
		}
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		u := &Unary{Op: name, OpSpan: op.Span(), Operand: operand}
		u.Span = Span{Start: op.Span().Start, End: operand.Pos().End}
		u.height = operand.depth() + 1
		if err := p.checkHeight(u.height, op.Span()); err != nil {
			return nil, err
		}
		return u, nil
	}
	return p.primary()
}

func (p *Parser) primary() (Expr, error) {
	tok := p.peek()
	switch tok.Kind {
	case TokenIntLiteral:
		p.advance()
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid integer literal %q", tok.Lexeme)
		}
		lit := &Literal{Value: ir.ConstValue{Type: ir.TypeInteger, Int: v}}
		lit.Span = tok.Span()
		lit.height = 1
		return lit, nil

	case TokenFloatLiteral:
		p.advance()
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid decimal literal %q", tok.Lexeme)
		}
		lit := &Literal{Value: ir.ConstValue{Type: ir.TypeScalar, Float: v}}
		lit.Span = tok.Span()
		lit.height = 1
		return lit, nil

	case TokenBoolLiteral:
		p.advance()
		lit := &Literal{Value: ir.ConstValue{Type: ir.TypeBoolean, Bool: tok.Lexeme == "true"}}
		lit.Span = tok.Span()
		lit.height = 1
		return lit, nil

	case TokenIdent:
		p.advance()
		if p.check(TokenLeftParen) {
			return p.call(tok)
		}
		ref := &VariableRef{Name: tok.Lexeme}
		ref.Span = tok.Span()
		ref.height = 1
		return ref, nil

	case TokenLeftParen:
		p.advance()
		p.parens++
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, "')'"); err != nil {
			return nil, err
		}
		p.parens--
		return inner, nil

	default:
		return nil, p.errorAt(tok, "expected expression, found %s", tok.Kind)
	}
}

func (p *Parser) call(name Token) (Expr, error) {
	p.advance() // (
	p.parens++

	c := &Call{Name: name.Lexeme, NameSpan: name.Span()}
	if !p.check(TokenRightParen) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			c.Args = append(c.Args, arg)
			if !p.check(TokenComma) {
				break
			}
			p.advance()
		}
	}
	closer, err := p.expect(TokenRightParen, "')'")
	if err != nil {
		return nil, err
	}
	p.parens--
	c.Span = Span{Start: name.Span().Start, End: closer.Span().End}
	c.height = 1
	for _, arg := range c.Args {
		if d := arg.depth() + 1; d > c.height {
			c.height = d
		}
	}
	if err := p.checkHeight(c.height, name.Span()); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Parser) binary(name string, op Token, left, right Expr) (Expr, error) {
	b := &Binary{Op: name, OpSpan: op.Span(), Left: left, Right: right}
	b.Span = Span{Start: left.Pos().Start, End: right.Pos().End}
	b.height = left.depth() + 1
	if d := right.depth() + 1; d > b.height {
		b.height = d
	}
	if err := p.checkHeight(b.height, op.Span()); err != nil {
		return nil, err
	}
	return b, nil
}

// enter bounds the parser's own recursion: parentheses, unary chains
// and call arguments all descend through expression or unary.
func (p *Parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return newErrorf(CodeDepthLimitExceeded, p.peek().Span(), p.source,
			"expression nesting exceeds the limit of %d", p.maxDepth)
	}
	return nil
}

func (p *Parser) leave() { p.depth-- }

// checkHeight bounds the height of the tree being built. Operator
// chains grow iteratively in the precedence loops, so enter never
// counts them, yet resolution and synthesis recurse over the finished
// tree.
func (p *Parser) checkHeight(height int, span Span) error {
	if height > p.maxDepth {
		return newErrorf(CodeDepthLimitExceeded, span, p.source,
			"expression nesting exceeds the limit of %d", p.maxDepth)
	}
	return nil
}

// peek returns the current token. Inside parentheses, newlines are
// transparent so expressions can wrap across lines.
func (p *Parser) peek() Token {
	i := p.pos
	for p.parens > 0 && p.tokens[i].Kind == TokenNewline {
		i++
	}
	return p.tokens[i]
}

func (p *Parser) advance() Token {
	for p.parens > 0 && p.tokens[p.pos].Kind == TokenNewline {
		p.pos++
	}
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) expect(kind TokenKind, what string) (Token, error) {
	if !p.check(kind) {
		return Token{}, p.errorAt(p.peek(), "expected %s, found %s", what, p.peek().Kind)
	}
	return p.advance(), nil
}

func (p *Parser) expectSeparator() error {
	if p.check(TokenNewline) || p.check(TokenSemicolon) {
		p.advance()
		return nil
	}
	if p.check(TokenEOF) {
		return p.errorAt(p.peek(), "expected result expression after let bindings")
	}
	return p.errorAt(p.peek(), "expected newline or ';' after let binding, found %s", p.peek().Kind)
}

func (p *Parser) skipSeparators() {
	for p.check(TokenNewline) || p.check(TokenSemicolon) {
		p.advance()
	}
}

func (p *Parser) errorAt(tok Token, format string, args ...interface{}) error {
	return newErrorf(CodeParse, tok.Span(), p.source, format, args...)
}
