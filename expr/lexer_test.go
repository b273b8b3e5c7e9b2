package expr

import (
	"errors"
	"testing"
)

func TestLexerBasicTokens(t *testing.T) {
	source := "a + b_2 * (c - 1) / 2.5 % x"
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		t.Fatal(err)
	}

	want := []TokenKind{
		TokenIdent, TokenPlus, TokenIdent, TokenStar, TokenLeftParen,
		TokenIdent, TokenMinus, TokenIntLiteral, TokenRightParen,
		TokenSlash, TokenFloatLiteral, TokenPercent, TokenIdent, TokenEOF,
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, kind := range want {
		if tokens[i].Kind != kind {
			t.Errorf("token %d: got %v, want %v", i, tokens[i].Kind, kind)
		}
	}
}

func TestLexerNumberForms(t *testing.T) {
	tests := []struct {
		source string
		kind   TokenKind
	}{
		{"42", TokenIntLiteral},
		{"0", TokenIntLiteral},
		{"1.5", TokenFloatLiteral},
		{".5", TokenFloatLiteral},
		{"2.", TokenFloatLiteral},
	}
	for _, tt := range tests {
		tokens, err := NewLexer(tt.source).Tokenize()
		if err != nil {
			t.Errorf("%q: %v", tt.source, err)
			continue
		}
		if tokens[0].Kind != tt.kind {
			t.Errorf("%q: got %v, want %v", tt.source, tokens[0].Kind, tt.kind)
		}
		if tokens[0].Lexeme != tt.source {
			t.Errorf("%q: lexeme = %q", tt.source, tokens[0].Lexeme)
		}
	}
}

func TestLexerComparisonOperators(t *testing.T) {
	tokens, err := NewLexer("< <= > >= == !=").Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	want := []TokenKind{
		TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual,
		TokenEqualEqual, TokenBangEqual, TokenEOF,
	}
	for i, kind := range want {
		if tokens[i].Kind != kind {
			t.Errorf("token %d: got %v, want %v", i, tokens[i].Kind, kind)
		}
	}
}

func TestLexerKeywords(t *testing.T) {
	tokens, err := NewLexer("let x and or not true false letter").Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	want := []TokenKind{
		TokenLet, TokenIdent, TokenAnd, TokenOr, TokenNot,
		TokenBoolLiteral, TokenBoolLiteral, TokenIdent, TokenEOF,
	}
	for i, kind := range want {
		if tokens[i].Kind != kind {
			t.Errorf("token %d: got %v, want %v", i, tokens[i].Kind, kind)
		}
	}
}

func TestLexerCommentsAndNewlines(t *testing.T) {
	source := "a # this is ignored\nb"
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	want := []TokenKind{TokenIdent, TokenNewline, TokenIdent, TokenEOF}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, kind := range want {
		if tokens[i].Kind != kind {
			t.Errorf("token %d: got %v, want %v", i, tokens[i].Kind, kind)
		}
	}
	if tokens[2].Line != 2 {
		t.Errorf("token after newline on line %d, want 2", tokens[2].Line)
	}
}

func TestLexerColumnsCountRunes(t *testing.T) {
	// Identifiers may contain multi-byte letters; columns must not
	// drift by their extra bytes.
	tokens, err := NewLexer("é + π2").Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		kind   TokenKind
		column int
	}{
		{TokenIdent, 1},
		{TokenPlus, 3},
		{TokenIdent, 5},
		{TokenEOF, 7},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(want))
	}
	for i, tt := range want {
		if tokens[i].Kind != tt.kind {
			t.Errorf("token %d: got %v, want %v", i, tokens[i].Kind, tt.kind)
		}
		if tokens[i].Column != tt.column {
			t.Errorf("token %d: column = %d, want %d", i, tokens[i].Column, tt.column)
		}
	}
}

func TestLexerRejectsUnknownCharacters(t *testing.T) {
	for _, source := range []string{"a $ b", "a ! b", "a & b"} {
		_, err := NewLexer(source).Tokenize()
		var se *SourceError
		if !errors.As(err, &se) {
			t.Errorf("%q: expected SourceError, got %v", source, err)
			continue
		}
		if se.Code != CodeLex {
			t.Errorf("%q: code = %s, want %s", source, se.Code, CodeLex)
		}
	}
}
