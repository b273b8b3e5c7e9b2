// Package catalog maps (operator, operand types, flavor) to the
// primitive node templates that implement them.
//
// The catalog is pure data: per-flavor lookup tables declared in
// tables.go. Operators that a flavor's editor cannot represent are
// simply absent from its table, which surfaces as an unsupported
// operator error at resolve time rather than a silent fallback. Some
// operators expand to a chain of several primitives on flavors whose
// editor lacks a native node for them; the composition is fixed per
// flavor.
package catalog

import (
	"fmt"
	"strings"

	"github.com/gonodes/exprgraph/ir"
)

// StepInput describes where one input socket of a template step is fed
// from. Exactly one of the three sources is active: an operator
// operand (Operand >= 0), the output of an earlier step in the same
// template (Prev >= 0), or a fixed value injected by the template
// (Value != nil), which materializes as an embedded default parameter
// on the node rather than as a separate constant node.
type StepInput struct {
	Operand int
	Prev    int
	Value   *ir.ConstValue
}

// Step is one primitive node instantiated by a template. Inputs lists
// the node's input sockets in host order.
type Step struct {
	Kind      string
	Operation string
	Params    []ir.Param
	Inputs    []StepInput
	Output    ir.DataType
}

// Template describes how one operator overload lowers to primitives.
// The last step's output is the operator's result.
type Template struct {
	Operands []ir.DataType
	Result   ir.DataType
	Steps    []Step
}

// InputType returns the value type feeding the given step input.
func (t *Template) InputType(in StepInput) ir.DataType {
	switch {
	case in.Operand >= 0:
		return t.Operands[in.Operand]
	case in.Prev >= 0:
		return t.Steps[in.Prev].Output
	case in.Value != nil:
		return in.Value.Type
	default:
		return ir.TypeUnknown
	}
}

// LookupErrorKind classifies catalog lookup failures.
type LookupErrorKind uint8

const (
	// KindUnknownOperator means the operator name exists in no flavor.
	KindUnknownOperator LookupErrorKind = iota
	// KindBadArity means the call has the wrong number of arguments.
	KindBadArity
	// KindNotSupported means the operator is valid but the active
	// flavor's editor has no representation for it.
	KindNotSupported
	// KindNoOverload means no signature accepts the operand types,
	// even after promotions.
	KindNoOverload
	// KindAmbiguous means two overloads with different result types
	// tie on promotion cost.
	KindAmbiguous
)

// LookupError reports why an operator could not be resolved.
type LookupError struct {
	Kind     LookupErrorKind
	Operator string
	Operands []ir.DataType
	Flavor   Flavor
	WantArgs int
}

func (e *LookupError) Error() string {
	types := make([]string, len(e.Operands))
	for i, t := range e.Operands {
		types[i] = t.String()
	}
	sig := fmt.Sprintf("%s(%s)", e.Operator, strings.Join(types, ", "))
	switch e.Kind {
	case KindUnknownOperator:
		return fmt.Sprintf("unknown function or operator %q", e.Operator)
	case KindBadArity:
		return fmt.Sprintf("%s expects %d argument(s), got %d", e.Operator, e.WantArgs, len(e.Operands))
	case KindNotSupported:
		return fmt.Sprintf("%s is not available in the %s editor", sig, e.Flavor)
	case KindNoOverload:
		return fmt.Sprintf("no overload of %s accepts these operand types", sig)
	case KindAmbiguous:
		return fmt.Sprintf("ambiguous promotion for %s", sig)
	default:
		return fmt.Sprintf("cannot resolve %s", sig)
	}
}

// Lookup resolves an operator against the active flavor's table.
// Overload selection picks the signature requiring the fewest
// promotions; ties between overloads with the same result type break
// by declaration order in the table, and ties across different result
// types are an ambiguity error.
func Lookup(operator string, operands []ir.DataType, flavor Flavor) (*Template, error) {
	return lookupIn(tables[flavor], operator, operands, flavor)
}

func lookupIn(table map[string][]*Template, operator string, operands []ir.DataType, flavor Flavor) (*Template, error) {
	wantArity, known := arity[operator]
	if !known {
		return nil, &LookupError{Kind: KindUnknownOperator, Operator: operator, Operands: operands, Flavor: flavor}
	}
	if len(operands) != wantArity {
		return nil, &LookupError{Kind: KindBadArity, Operator: operator, Operands: operands, Flavor: flavor, WantArgs: wantArity}
	}

	candidates := table[operator]
	if len(candidates) == 0 {
		return nil, &LookupError{Kind: KindNotSupported, Operator: operator, Operands: operands, Flavor: flavor}
	}

	best := -1
	bestCost := 0
	ambiguous := false
	for i, tmpl := range candidates {
		cost, ok := signatureCost(tmpl.Operands, operands)
		if !ok {
			continue
		}
		switch {
		case best < 0 || cost < bestCost:
			best, bestCost, ambiguous = i, cost, false
		case cost == bestCost && tmpl.Result != candidates[best].Result:
			ambiguous = true
		}
	}
	if best < 0 {
		return nil, &LookupError{Kind: KindNoOverload, Operator: operator, Operands: operands, Flavor: flavor}
	}
	if ambiguous {
		return nil, &LookupError{Kind: KindAmbiguous, Operator: operator, Operands: operands, Flavor: flavor}
	}
	return candidates[best], nil
}

func signatureCost(want, got []ir.DataType) (int, bool) {
	if len(want) != len(got) {
		return 0, false
	}
	total := 0
	for i := range want {
		cost, ok := ir.PromotionCost(got[i], want[i])
		if !ok {
			return 0, false
		}
		total += cost
	}
	return total, true
}

// Arity returns the fixed argument count of an operator, if it exists
// in any flavor.
func Arity(operator string) (int, bool) {
	n, ok := arity[operator]
	return n, ok
}

// Functions returns the names of all registered named functions, in no
// particular order. Operators (symbols and keywords) are excluded.
func Functions() []string {
	names := make([]string, 0, len(arity))
	for name := range arity {
		if isFunctionName(name) {
			names = append(names, name)
		}
	}
	return names
}

func isFunctionName(name string) bool {
	if name == "and" || name == "or" || name == "not" || name == "neg" {
		return false
	}
	c := name[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
