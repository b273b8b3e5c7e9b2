package expr

import (
	"unicode"
	"unicode/utf8"
)

// Lexer tokenizes expression source text.
type Lexer struct {
	source   string
	pos      int
	line     int
	column   int
	start    int
	startCol int
	tokens   []Token
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	estTokens := len(source) / 4
	if estTokens < 16 {
		estTokens = 16
	}
	return &Lexer{
		source: source,
		pos:    0,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, estTokens),
	}
}

// Tokenize returns all tokens from the source. Newlines are kept as
// tokens because they separate statements.
func (l *Lexer) Tokenize() ([]Token, error) {
	for !l.isAtEnd() {
		l.start = l.pos
		l.startCol = l.column
		if err := l.scanToken(); err != nil {
			return nil, err
		}
	}

	l.tokens = append(l.tokens, Token{
		Kind:   TokenEOF,
		Line:   l.line,
		Column: l.column,
	})

	return l.tokens, nil
}

func (l *Lexer) scanToken() error {
	r := l.advance()

	switch r {
	case '(':
		l.addToken(TokenLeftParen)
	case ')':
		l.addToken(TokenRightParen)
	case ',':
		l.addToken(TokenComma)
	case ';':
		l.addToken(TokenSemicolon)
	case '+':
		l.addToken(TokenPlus)
	case '-':
		l.addToken(TokenMinus)
	case '*':
		l.addToken(TokenStar)
	case '/':
		l.addToken(TokenSlash)
	case '%':
		l.addToken(TokenPercent)
	case '=':
		if l.match('=') {
			l.addToken(TokenEqualEqual)
		} else {
			l.addToken(TokenEqual)
		}
	case '!':
		if l.match('=') {
			l.addToken(TokenBangEqual)
		} else {
			return l.errorf("unexpected character '!'")
		}
	case '<':
		if l.match('=') {
			l.addToken(TokenLessEqual)
		} else {
			l.addToken(TokenLess)
		}
	case '>':
		if l.match('=') {
			l.addToken(TokenGreaterEqual)
		} else {
			l.addToken(TokenGreater)
		}
	case '#':
		for l.peek() != '\n' && !l.isAtEnd() {
			l.advance()
		}

	case ' ', '\r', '\t':
		// Ignore whitespace
	case '\n':
		l.addToken(TokenNewline)
		l.line++
		l.column = 1

	case '.':
		if isDigit(l.peek()) {
			l.number()
		} else {
			return l.errorf("unexpected character '.'")
		}

	default:
		if isDigit(r) {
			l.number()
		} else if isAlpha(r) || r == '_' {
			l.identifier()
		} else {
			return l.errorf("unexpected character %q", string(r))
		}
	}

	return nil
}

// number scans an integer or decimal literal. Decimal forms "1.5",
// ".5" and "2." are all accepted; exponents and hex are not part of
// the language.
func (l *Lexer) number() {
	for isDigit(l.peek()) {
		l.advance()
	}

	isFloat := l.source[l.start] == '.'
	if !isFloat && l.peek() == '.' {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
		isFloat = true
	}

	if isFloat {
		l.addToken(TokenFloatLiteral)
	} else {
		l.addToken(TokenIntLiteral)
	}
}

func (l *Lexer) identifier() {
	for isAlphaNumeric(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	text := l.source[l.start:l.pos]
	l.addToken(lookupKeyword(text))
}

var keywords = map[string]TokenKind{
	"let":   TokenLet,
	"and":   TokenAnd,
	"or":    TokenOr,
	"not":   TokenNot,
	"true":  TokenBoolLiteral,
	"false": TokenBoolLiteral,
}

func lookupKeyword(text string) TokenKind {
	if kind, ok := keywords[text]; ok {
		return kind
	}
	return TokenIdent
}

// addToken records the token starting at the scan position. The start
// column is tracked separately because columns count runes while start
// and pos count bytes.
func (l *Lexer) addToken(kind TokenKind) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Lexeme: l.source[l.start:l.pos],
		Line:   l.line,
		Column: l.startCol,
	})
}

func (l *Lexer) errorf(format string, args ...interface{}) error {
	span := Span{
		Start: Position{Line: l.line, Column: l.startCol},
		End:   Position{Line: l.line, Column: l.column},
	}
	return newErrorf(CodeLex, span, l.source, format, args...)
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	l.pos += size
	l.column++
	return r
}

func (l *Lexer) peek() rune {
	if l.isAtEnd() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.source[l.pos:])
	return r
}

func (l *Lexer) match(expected rune) bool {
	if l.isAtEnd() {
		return false
	}
	r, size := utf8.DecodeRuneInString(l.source[l.pos:])
	if r != expected {
		return false
	}
	l.pos += size
	l.column++
	return true
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlpha(r rune) bool {
	return unicode.IsLetter(r)
}

func isAlphaNumeric(r rune) bool {
	return isAlpha(r) || isDigit(r)
}
