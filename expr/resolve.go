package expr

import (
	"errors"
	"fmt"

	"github.com/gonodes/exprgraph/catalog"
	"github.com/gonodes/exprgraph/ir"
)

// InputDecl is one declared external input of a script.
type InputDecl struct {
	Name string
	Type ir.DataType
}

// Environment holds the declared inputs, in declaration order.
// Declaration order is what makes graph synthesis deterministic for a
// given source, so it is preserved rather than sorted.
type Environment struct {
	decls  []InputDecl
	byName map[string]ir.DataType
}

// NewEnvironment returns an empty environment.
func NewEnvironment() *Environment {
	return &Environment{byName: make(map[string]ir.DataType, 8)}
}

// Declare adds an input. Redeclaring a name is an error.
func (e *Environment) Declare(name string, t ir.DataType) error {
	if _, ok := e.byName[name]; ok {
		return fmt.Errorf("input %q declared twice", name)
	}
	e.decls = append(e.decls, InputDecl{Name: name, Type: t})
	e.byName[name] = t
	return nil
}

// Inputs returns the declared inputs in declaration order.
func (e *Environment) Inputs() []InputDecl {
	return e.decls
}

// Lookup returns the type of a declared input.
func (e *Environment) Lookup(name string) (ir.DataType, bool) {
	t, ok := e.byName[name]
	return t, ok
}

// resolver assigns a type to every expression node, bottom-up, by
// consulting the operator catalog for the active flavor.
type resolver struct {
	source string
	flavor catalog.Flavor
	env    *Environment
	locals map[string]ir.DataType
}

// ResolveScript type-checks a parsed script in place. After a
// successful return every expression node reports a concrete type and
// the script's result type is Result.ResolvedType().
func ResolveScript(script *Script, env *Environment, flavor catalog.Flavor, source string) error {
	r := &resolver{
		source: source,
		flavor: flavor,
		env:    env,
		locals: make(map[string]ir.DataType, len(script.Lets)),
	}
	for _, stmt := range script.Lets {
		if _, ok := r.locals[stmt.Name]; ok {
			return newErrorf(CodeParse, stmt.NameSpan, source, "%q is already bound", stmt.Name)
		}
		if _, ok := env.Lookup(stmt.Name); ok {
			return newErrorf(CodeParse, stmt.NameSpan, source, "%q shadows a declared input", stmt.Name)
		}
		t, err := r.resolve(stmt.Value)
		if err != nil {
			return err
		}
		r.locals[stmt.Name] = t
	}
	_, err := r.resolve(script.Result)
	return err
}

func (r *resolver) resolve(e Expr) (ir.DataType, error) {
	switch n := e.(type) {
	case *Literal:
		n.Type = n.Value.Type
		return n.Type, nil

	case *VariableRef:
		if t, ok := r.locals[n.Name]; ok {
			n.Type = t
			return t, nil
		}
		if t, ok := r.env.Lookup(n.Name); ok {
			n.Type = t
			return t, nil
		}
		return ir.TypeUnknown, newErrorf(CodeUnknownVariable, n.Span, r.source,
			"unknown variable %q", n.Name)

	case *Unary:
		t, err := r.resolve(n.Operand)
		if err != nil {
			return ir.TypeUnknown, err
		}
		tmpl, err := catalog.Lookup(n.Op, []ir.DataType{t}, r.flavor)
		if err != nil {
			return ir.TypeUnknown, r.catalogError(err, n.OpSpan)
		}
		n.Type = tmpl.Result
		return n.Type, nil

	case *Binary:
		lt, err := r.resolve(n.Left)
		if err != nil {
			return ir.TypeUnknown, err
		}
		rt, err := r.resolve(n.Right)
		if err != nil {
			return ir.TypeUnknown, err
		}
		tmpl, err := catalog.Lookup(n.Op, []ir.DataType{lt, rt}, r.flavor)
		if err != nil {
			return ir.TypeUnknown, r.catalogError(err, n.OpSpan)
		}
		n.Type = tmpl.Result
		return n.Type, nil

	case *Call:
		args := make([]ir.DataType, len(n.Args))
		for i, a := range n.Args {
			t, err := r.resolve(a)
			if err != nil {
				return ir.TypeUnknown, err
			}
			args[i] = t
		}
		tmpl, err := catalog.Lookup(n.Name, args, r.flavor)
		if err != nil {
			return ir.TypeUnknown, r.catalogError(err, n.NameSpan)
		}
		n.Type = tmpl.Result
		return n.Type, nil

	default:
		return ir.TypeUnknown, fmt.Errorf("unhandled expression node %T", e)
	}
}

// catalogError converts a catalog lookup failure into a SourceError at
// the operator's span. Unknown names share a code with failed overload
// resolution: both mean no operation matches the written call.
func (r *resolver) catalogError(err error, span Span) error {
	var le *catalog.LookupError
	if !errors.As(err, &le) {
		return newErrorf(CodeNoApplicableOverload, span, r.source, "%v", err)
	}
	code := CodeNoApplicableOverload
	switch le.Kind {
	case catalog.KindBadArity:
		code = CodeArityMismatch
	case catalog.KindNotSupported:
		code = CodeUnsupportedOperator
	case catalog.KindAmbiguous:
		code = CodeAmbiguousPromotion
	}
	return NewError(code, le.Error(), span, r.source)
}
