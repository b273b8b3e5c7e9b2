package expr

import (
	"errors"
	"strings"
	"testing"
)

func parseErr(t *testing.T, source string) *SourceError {
	t.Helper()
	_, err := ParseScript(source)
	var se *SourceError
	if !errors.As(err, &se) {
		t.Fatalf("%q: expected SourceError, got %v", source, err)
	}
	return se
}

func TestParsePrecedence(t *testing.T) {
	// a + b * c parses as a + (b * c)
	script, err := ParseScript("a + b * c")
	if err != nil {
		t.Fatal(err)
	}
	add, ok := script.Result.(*Binary)
	if !ok || add.Op != "+" {
		t.Fatalf("root = %T, want Binary +", script.Result)
	}
	mul, ok := add.Right.(*Binary)
	if !ok || mul.Op != "*" {
		t.Fatalf("right of + = %T, want Binary *", add.Right)
	}
}

func TestParseComparisonBindsLooserThanAdditive(t *testing.T) {
	script, err := ParseScript("a + 1 < b")
	if err != nil {
		t.Fatal(err)
	}
	cmp, ok := script.Result.(*Binary)
	if !ok || cmp.Op != "<" {
		t.Fatalf("root = %T, want Binary <", script.Result)
	}
}

func TestParseBooleanPrecedence(t *testing.T) {
	// a < b and c > d or e parses as ((a<b) and (c>d)) or e
	script, err := ParseScript("a < b and c > d or e")
	if err != nil {
		t.Fatal(err)
	}
	or, ok := script.Result.(*Binary)
	if !ok || or.Op != "or" {
		t.Fatalf("root = %T %v, want or", script.Result, script.Result)
	}
	and, ok := or.Left.(*Binary)
	if !ok || and.Op != "and" {
		t.Fatalf("left of or = %T, want and", or.Left)
	}
}

func TestParseUnary(t *testing.T) {
	script, err := ParseScript("-a * b")
	if err != nil {
		t.Fatal(err)
	}
	mul := script.Result.(*Binary)
	if mul.Op != "*" {
		t.Fatalf("root op = %s, want *", mul.Op)
	}
	neg, ok := mul.Left.(*Unary)
	if !ok || neg.Op != "neg" {
		t.Fatalf("left = %T, want Unary neg", mul.Left)
	}
}

func TestParseCall(t *testing.T) {
	script, err := ParseScript("clamp(x, 0, 1)")
	if err != nil {
		t.Fatal(err)
	}
	call, ok := script.Result.(*Call)
	if !ok {
		t.Fatalf("root = %T, want Call", script.Result)
	}
	if call.Name != "clamp" || len(call.Args) != 3 {
		t.Errorf("call = %s/%d args", call.Name, len(call.Args))
	}
}

func TestParseLetBindings(t *testing.T) {
	source := "let t = a * 2\nlet u = t + 1; u * u"
	script, err := ParseScript(source)
	if err != nil {
		t.Fatal(err)
	}
	if len(script.Lets) != 2 {
		t.Fatalf("got %d lets, want 2", len(script.Lets))
	}
	if script.Lets[0].Name != "t" || script.Lets[1].Name != "u" {
		t.Errorf("let names = %s, %s", script.Lets[0].Name, script.Lets[1].Name)
	}
	if _, ok := script.Result.(*Binary); !ok {
		t.Errorf("result = %T, want Binary", script.Result)
	}
}

func TestParseNewlinesInsideParens(t *testing.T) {
	source := "clamp(\n  x,\n  0,\n  1\n)"
	if _, err := ParseScript(source); err != nil {
		t.Fatal(err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		source string
		code   Code
	}{
		{"", CodeParse},
		{"a +", CodeParse},
		{"(a", CodeParse},
		{"a b", CodeParse},
		{"let = 1\n2", CodeParse},
		{"let x 1\n2", CodeParse},
		{"let x = 1", CodeParse}, // no result expression
		{"f(a,)", CodeParse},
	}
	for _, tt := range tests {
		se := parseErr(t, tt.source)
		if se.Code != tt.code {
			t.Errorf("%q: code = %s, want %s", tt.source, se.Code, tt.code)
		}
	}
}

func TestParseDepthLimit(t *testing.T) {
	source := strings.Repeat("(", 200) + "a" + strings.Repeat(")", 200)
	se := parseErr(t, source)
	if se.Code != CodeDepthLimitExceeded {
		t.Errorf("code = %s, want %s", se.Code, CodeDepthLimitExceeded)
	}

	// A generous limit admits the same source.
	if _, err := NewParser(source, 1024).Parse(); err != nil {
		t.Errorf("raised limit should parse: %v", err)
	}
}

func TestParseChainDepthLimit(t *testing.T) {
	// Left-associative chains are built iteratively, so the limit has
	// to bound the height of the resulting tree, not just the parse
	// recursion.
	source := strings.Repeat("1+", 5000) + "1"
	se := parseErr(t, source)
	if se.Code != CodeDepthLimitExceeded {
		t.Errorf("code = %s, want %s", se.Code, CodeDepthLimitExceeded)
	}

	short := strings.Repeat("1+", 50) + "1"
	if _, err := ParseScript(short); err != nil {
		t.Errorf("short chain should parse: %v", err)
	}

	// A raised limit admits the long chain.
	if _, err := NewParser(source, 8192).Parse(); err != nil {
		t.Errorf("raised limit should parse: %v", err)
	}
}

func TestParseErrorCarriesContext(t *testing.T) {
	se := parseErr(t, "a +")
	if se.Span.Start.Line != 1 {
		t.Errorf("line = %d, want 1", se.Span.Start.Line)
	}
	formatted := se.FormatWithContext()
	if !strings.Contains(formatted, "a +") || !strings.Contains(formatted, "^") {
		t.Errorf("formatted error missing context:\n%s", formatted)
	}
}
