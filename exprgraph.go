// Package exprgraph compiles arithmetic expression scripts into node
// graphs for three node-editor flavors: geometry, shader and
// compositor.
//
// A script is a sequence of let bindings followed by a result
// expression. Compilation resolves the script against the active
// flavor's operator catalog, folds constant subexpressions, and emits
// a graph of primitive operator nodes whose identities are content
// hashes. Because identities are content-derived, recompiling an
// edited script and diffing against the previous graph yields a
// minimal edit script instead of a rebuild (see the delta package).
//
// Example usage:
//
//	env := expr.NewEnvironment()
//	env.Declare("a", ir.TypeScalar)
//	env.Declare("b", ir.TypeScalar)
//
//	res, err := exprgraph.Compile("clamp(a + b, 0, 1)", exprgraph.Options{
//	    Flavor: catalog.FlavorGeometry,
//	    Env:    env,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(res.Graph.Dump())
//
// For incremental use, feed successive graphs to delta.Diff or drive a
// compile unit from the engine package.
package exprgraph

import (
	"fmt"

	"github.com/gonodes/exprgraph/catalog"
	"github.com/gonodes/exprgraph/expr"
	"github.com/gonodes/exprgraph/ir"
)

// Options configures a compilation.
type Options struct {
	// Flavor selects the target node editor's operator catalog.
	Flavor catalog.Flavor

	// Env declares the external inputs visible to the script. A nil
	// Env means the script may use no variables.
	Env *expr.Environment

	// MaxDepth bounds expression nesting; zero selects
	// expr.DefaultMaxDepth.
	MaxDepth int
}

// Result is the output of a successful compilation.
type Result struct {
	Graph  *ir.Graph
	Script *expr.Script
}

// Compile runs the full pipeline: parse, resolve, synthesize.
//
// Errors are *expr.SourceError values carrying an error code, a source
// span and enough context to render a caret diagnostic.
func Compile(source string, opts Options) (*Result, error) {
	if !opts.Flavor.Valid() {
		return nil, fmt.Errorf("invalid flavor %d", opts.Flavor)
	}
	env := opts.Env
	if env == nil {
		env = expr.NewEnvironment()
	}

	script, err := expr.NewParser(source, opts.MaxDepth).Parse()
	if err != nil {
		return nil, err
	}
	if err := expr.ResolveScript(script, env, opts.Flavor, source); err != nil {
		return nil, err
	}
	graph, err := expr.Synthesize(script, env, opts.Flavor)
	if err != nil {
		return nil, err
	}
	return &Result{Graph: graph, Script: script}, nil
}

// Parse parses source into a script without resolving it. Useful for
// syntax-only checks while the user is still typing.
func Parse(source string) (*expr.Script, error) {
	return expr.ParseScript(source)
}
