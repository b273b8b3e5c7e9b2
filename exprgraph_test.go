package exprgraph

import (
	"errors"
	"testing"

	"github.com/gonodes/exprgraph/catalog"
	"github.com/gonodes/exprgraph/expr"
	"github.com/gonodes/exprgraph/ir"
)

func scalarEnv(t *testing.T, names ...string) *expr.Environment {
	t.Helper()
	env := expr.NewEnvironment()
	for _, n := range names {
		if err := env.Declare(n, ir.TypeScalar); err != nil {
			t.Fatal(err)
		}
	}
	return env
}

func TestCompile(t *testing.T) {
	res, err := Compile("clamp(a + b, 0, 1)", Options{
		Flavor: catalog.FlavorGeometry,
		Env:    scalarEnv(t, "a", "b"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Graph.NodeCount() == 0 {
		t.Fatal("empty graph")
	}
	if got := res.Graph.Outputs[0].Type; got != ir.TypeScalar {
		t.Errorf("result type = %s, want Scalar", got)
	}
}

func TestCompileAllFlavors(t *testing.T) {
	for _, f := range catalog.Flavors() {
		_, err := Compile("lerp(a, b, 0.5)", Options{Flavor: f, Env: scalarEnv(t, "a", "b")})
		if err != nil {
			t.Errorf("%s: %v", f, err)
		}
	}
}

func TestCompileNilEnv(t *testing.T) {
	res, err := Compile("1 + 2", Options{Flavor: catalog.FlavorShader})
	if err != nil {
		t.Fatal(err)
	}
	n, _ := res.Graph.Node(res.Graph.Outputs[0].Node)
	if n.Const == nil || n.Const.Float != 3 {
		t.Errorf("const = %v, want 3", n.Const)
	}
}

func TestCompileInvalidFlavor(t *testing.T) {
	if _, err := Compile("1", Options{Flavor: catalog.Flavor(99)}); err == nil {
		t.Fatal("expected error for invalid flavor")
	}
}

func TestCompileReportsSourceErrors(t *testing.T) {
	_, err := Compile("a +", Options{Flavor: catalog.FlavorGeometry, Env: scalarEnv(t, "a")})
	var se *expr.SourceError
	if !errors.As(err, &se) {
		t.Fatalf("expected *expr.SourceError, got %v", err)
	}
	if se.Code != expr.CodeParse {
		t.Errorf("code = %s, want %s", se.Code, expr.CodeParse)
	}
}

func TestCompileMaxDepth(t *testing.T) {
	_, err := Compile("((((a))))", Options{
		Flavor:   catalog.FlavorGeometry,
		Env:      scalarEnv(t, "a"),
		MaxDepth: 4,
	})
	var se *expr.SourceError
	if !errors.As(err, &se) || se.Code != expr.CodeDepthLimitExceeded {
		t.Errorf("expected depth limit error, got %v", err)
	}
}
