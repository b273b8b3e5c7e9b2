package expr

import (
	"errors"
	"testing"

	"github.com/gonodes/exprgraph/catalog"
	"github.com/gonodes/exprgraph/ir"
)

func testEnv(t *testing.T) *Environment {
	t.Helper()
	env := NewEnvironment()
	for _, d := range []InputDecl{
		{"a", ir.TypeScalar},
		{"b", ir.TypeScalar},
		{"n", ir.TypeInteger},
		{"p", ir.TypeVector3},
		{"q", ir.TypeVector3},
		{"on", ir.TypeBoolean},
	} {
		if err := env.Declare(d.Name, d.Type); err != nil {
			t.Fatal(err)
		}
	}
	return env
}

func resolveSource(t *testing.T, source string, flavor catalog.Flavor) (*Script, error) {
	t.Helper()
	script, err := ParseScript(source)
	if err != nil {
		t.Fatalf("parse %q: %v", source, err)
	}
	return script, ResolveScript(script, testEnv(t), flavor, source)
}

func resolveErr(t *testing.T, source string, flavor catalog.Flavor) *SourceError {
	t.Helper()
	_, err := resolveSource(t, source, flavor)
	var se *SourceError
	if !errors.As(err, &se) {
		t.Fatalf("%q: expected SourceError, got %v", source, err)
	}
	return se
}

func TestResolveTypes(t *testing.T) {
	tests := []struct {
		source string
		want   ir.DataType
	}{
		{"a + b", ir.TypeScalar},
		{"n + n", ir.TypeScalar}, // integers promote to the scalar overload
		{"a < b", ir.TypeBoolean},
		{"a < b and a > 0", ir.TypeBoolean},
		{"p + q", ir.TypeVector3},
		{"dot(p, q)", ir.TypeScalar},
		{"2 * p", ir.TypeVector3},
		{"vec(a, b, 0)", ir.TypeVector3},
		{"rgba(a, b, 0, 1)", ir.TypeColor4},
		{"select(on, a, b)", ir.TypeScalar},
		{"let t = a * 2\nt + 1", ir.TypeScalar},
	}
	for _, tt := range tests {
		script, err := resolveSource(t, tt.source, catalog.FlavorGeometry)
		if err != nil {
			t.Errorf("%q: %v", tt.source, err)
			continue
		}
		if got := script.Result.ResolvedType(); got != tt.want {
			t.Errorf("%q: type = %s, want %s", tt.source, got, tt.want)
		}
	}
}

func TestResolveUnknownVariable(t *testing.T) {
	se := resolveErr(t, "a + missing", catalog.FlavorGeometry)
	if se.Code != CodeUnknownVariable {
		t.Errorf("code = %s, want %s", se.Code, CodeUnknownVariable)
	}
	if se.Span.Start.Column != 5 {
		t.Errorf("column = %d, want 5", se.Span.Start.Column)
	}
}

func TestResolveNoOverloadReportsOperatorSpan(t *testing.T) {
	se := resolveErr(t, "true + 1.5", catalog.FlavorGeometry)
	if se.Code != CodeNoApplicableOverload {
		t.Errorf("code = %s, want %s", se.Code, CodeNoApplicableOverload)
	}
	if se.Span.Start.Column != 6 {
		t.Errorf("column = %d, want 6 (the operator)", se.Span.Start.Column)
	}
}

func TestResolveUnknownFunction(t *testing.T) {
	se := resolveErr(t, "frobnicate(a)", catalog.FlavorGeometry)
	if se.Code != CodeNoApplicableOverload {
		t.Errorf("code = %s, want %s", se.Code, CodeNoApplicableOverload)
	}
}

func TestResolveArityMismatch(t *testing.T) {
	se := resolveErr(t, "sin(a, b)", catalog.FlavorGeometry)
	if se.Code != CodeArityMismatch {
		t.Errorf("code = %s, want %s", se.Code, CodeArityMismatch)
	}
}

func TestResolveUnsupportedOnFlavor(t *testing.T) {
	if _, err := resolveSource(t, "cross(p, q)", catalog.FlavorGeometry); err != nil {
		t.Fatalf("geometry supports cross: %v", err)
	}
	se := resolveErr(t, "cross(p, q)", catalog.FlavorCompositor)
	if se.Code != CodeUnsupportedOperator {
		t.Errorf("code = %s, want %s", se.Code, CodeUnsupportedOperator)
	}
}

func TestResolveLetRules(t *testing.T) {
	tests := []struct {
		source  string
		wantErr bool
	}{
		{"let t = a\nlet u = t\nu", false},
		{"let t = a\nlet t = b\nt", true},  // rebinding
		{"let a = 1\na", true},             // shadows an input
		{"let t = u\nlet u = a\nt", true},  // use before definition
	}
	for _, tt := range tests {
		_, err := resolveSource(t, tt.source, catalog.FlavorGeometry)
		if (err != nil) != tt.wantErr {
			t.Errorf("%q: err = %v, wantErr %v", tt.source, err, tt.wantErr)
		}
	}
}
