package catalog

import "github.com/gonodes/exprgraph/ir"

// Table construction. Geometry and shader editors share most scalar
// and vector primitives; the compositor editor only has a scalar math
// node, so boolean logic, comparisons beyond </> and higher-level
// operators compose from scalar arithmetic there.

func opnd(i int) StepInput  { return StepInput{Operand: i, Prev: -1} }
func chain(i int) StepInput { return StepInput{Operand: -1, Prev: i} }
func fixed(f float64) StepInput {
	return StepInput{Operand: -1, Prev: -1, Value: &ir.ConstValue{Type: ir.TypeScalar, Float: f}}
}

// single builds a one-step template.
func single(kind, operation string, params []ir.Param, operands []ir.DataType, result ir.DataType, inputs ...StepInput) *Template {
	return &Template{
		Operands: operands,
		Result:   result,
		Steps: []Step{{
			Kind:      kind,
			Operation: operation,
			Params:    params,
			Inputs:    inputs,
			Output:    result,
		}},
	}
}

type tableBuilder struct {
	m map[string][]*Template
}

func newTableBuilder() *tableBuilder {
	return &tableBuilder{m: make(map[string][]*Template, 64)}
}

// add appends a template; declaration order is the overload tie-break
// order and must stay stable.
func (b *tableBuilder) add(operator string, t *Template) {
	b.m[operator] = append(b.m[operator], t)
}

const (
	sS = ir.TypeScalar
	sB = ir.TypeBoolean
	sV = ir.TypeVector3
	sC = ir.TypeColor4
)

var comparisonEpsilon = 0.000001

// addScalarMath registers the scalar arithmetic and math-function
// overloads shared by every flavor, parameterized by the flavor's
// math node kind.
func (b *tableBuilder) addScalarMath(mathKind string) {
	binary := []struct{ name, op string }{
		{"+", "ADD"},
		{"-", "SUBTRACT"},
		{"*", "MULTIPLY"},
		{"/", "DIVIDE"},
		{"%", "MODULO"},
		{"min", "MINIMUM"},
		{"max", "MAXIMUM"},
		{"pow", "POWER"},
		{"mod", "MODULO"},
		{"atan2", "ARCTAN2"},
		{"snap", "SNAP"},
		{"pingpong", "PINGPONG"},
		{"log", "LOGARITHM"},
	}
	for _, e := range binary {
		b.add(e.name, single(mathKind, e.op, nil, []ir.DataType{sS, sS}, sS, opnd(0), opnd(1)))
	}

	unary := []struct{ name, op string }{
		{"sin", "SINE"},
		{"cos", "COSINE"},
		{"tan", "TANGENT"},
		{"asin", "ARCSINE"},
		{"acos", "ARCCOSINE"},
		{"atan", "ARCTANGENT"},
		{"sqrt", "SQRT"},
		{"abs", "ABSOLUTE"},
		{"floor", "FLOOR"},
		{"ceil", "CEIL"},
		{"round", "ROUND"},
		{"trunc", "TRUNC"},
		{"frac", "FRACT"},
	}
	for _, e := range unary {
		b.add(e.name, single(mathKind, e.op, nil, []ir.DataType{sS}, sS, opnd(0)))
	}

	// Negation has no native primitive; multiply by -1.
	b.add("neg", single(mathKind, "MULTIPLY", nil, []ir.DataType{sS}, sS, opnd(0), fixed(-1)))
}

// addMathComparisons registers comparisons built from the scalar math
// node, for editors without a dedicated compare node. <= and >= invert
// the opposite strict comparison; equality uses the epsilon COMPARE
// operation.
func (b *tableBuilder) addMathComparisons(mathKind string) {
	b.add("<", single(mathKind, "LESS_THAN", nil, []ir.DataType{sS, sS}, sB, opnd(0), opnd(1)))
	b.add(">", single(mathKind, "GREATER_THAN", nil, []ir.DataType{sS, sS}, sB, opnd(0), opnd(1)))
	b.add("<=", &Template{
		Operands: []ir.DataType{sS, sS},
		Result:   sB,
		Steps: []Step{
			{Kind: mathKind, Operation: "GREATER_THAN", Inputs: []StepInput{opnd(0), opnd(1)}, Output: sS},
			{Kind: mathKind, Operation: "SUBTRACT", Inputs: []StepInput{fixed(1), chain(0)}, Output: sB},
		},
	})
	b.add(">=", &Template{
		Operands: []ir.DataType{sS, sS},
		Result:   sB,
		Steps: []Step{
			{Kind: mathKind, Operation: "LESS_THAN", Inputs: []StepInput{opnd(0), opnd(1)}, Output: sS},
			{Kind: mathKind, Operation: "SUBTRACT", Inputs: []StepInput{fixed(1), chain(0)}, Output: sB},
		},
	})
	b.add("==", single(mathKind, "COMPARE", nil, []ir.DataType{sS, sS}, sB, opnd(0), opnd(1), fixed(comparisonEpsilon)))
	b.add("!=", &Template{
		Operands: []ir.DataType{sS, sS},
		Result:   sB,
		Steps: []Step{
			{Kind: mathKind, Operation: "COMPARE", Inputs: []StepInput{opnd(0), opnd(1), fixed(comparisonEpsilon)}, Output: sS},
			{Kind: mathKind, Operation: "SUBTRACT", Inputs: []StepInput{fixed(1), chain(0)}, Output: sB},
		},
	})
}

// addMathBooleans registers and/or/not built from scalar math for
// editors without a boolean math node: and multiplies, or takes the
// maximum, not subtracts from one.
func (b *tableBuilder) addMathBooleans(mathKind string) {
	b.add("and", single(mathKind, "MULTIPLY", nil, []ir.DataType{sB, sB}, sB, opnd(0), opnd(1)))
	b.add("or", single(mathKind, "MAXIMUM", nil, []ir.DataType{sB, sB}, sB, opnd(0), opnd(1)))
	b.add("not", single(mathKind, "SUBTRACT", nil, []ir.DataType{sB}, sB, fixed(1), opnd(0)))
}

// addVectorMath registers the vector and color overloads available in
// the geometry and shader editors.
func (b *tableBuilder) addVectorMath(combineColorKind string) {
	const vm = "ShaderNodeVectorMath"

	b.add("+", single(vm, "ADD", nil, []ir.DataType{sV, sV}, sV, opnd(0), opnd(1)))
	b.add("-", single(vm, "SUBTRACT", nil, []ir.DataType{sV, sV}, sV, opnd(0), opnd(1)))
	b.add("*", single(vm, "MULTIPLY", nil, []ir.DataType{sV, sV}, sV, opnd(0), opnd(1)))
	b.add("*", single(vm, "SCALE", nil, []ir.DataType{sV, sS}, sV, opnd(0), opnd(1)))
	b.add("*", single(vm, "SCALE", nil, []ir.DataType{sS, sV}, sV, opnd(1), opnd(0)))
	b.add("/", single(vm, "DIVIDE", nil, []ir.DataType{sV, sV}, sV, opnd(0), opnd(1)))

	b.add("dot", single(vm, "DOT_PRODUCT", nil, []ir.DataType{sV, sV}, sS, opnd(0), opnd(1)))
	b.add("cross", single(vm, "CROSS_PRODUCT", nil, []ir.DataType{sV, sV}, sV, opnd(0), opnd(1)))
	b.add("distance", single(vm, "DISTANCE", nil, []ir.DataType{sV, sV}, sS, opnd(0), opnd(1)))
	b.add("reflect", single(vm, "REFLECT", nil, []ir.DataType{sV, sV}, sV, opnd(0), opnd(1)))
	b.add("length", single(vm, "LENGTH", nil, []ir.DataType{sV}, sS, opnd(0)))
	b.add("normalize", single(vm, "NORMALIZE", nil, []ir.DataType{sV}, sV, opnd(0)))
	b.add("scale", single(vm, "SCALE", nil, []ir.DataType{sV, sS}, sV, opnd(0), opnd(1)))
	b.add("min", single(vm, "MINIMUM", nil, []ir.DataType{sV, sV}, sV, opnd(0), opnd(1)))
	b.add("max", single(vm, "MAXIMUM", nil, []ir.DataType{sV, sV}, sV, opnd(0), opnd(1)))
	b.add("abs", single(vm, "ABSOLUTE", nil, []ir.DataType{sV}, sV, opnd(0)))
	b.add("floor", single(vm, "FLOOR", nil, []ir.DataType{sV}, sV, opnd(0)))
	b.add("ceil", single(vm, "CEIL", nil, []ir.DataType{sV}, sV, opnd(0)))
	b.add("frac", single(vm, "FRACTION", nil, []ir.DataType{sV}, sV, opnd(0)))
	b.add("neg", single(vm, "SCALE", nil, []ir.DataType{sV}, sV, opnd(0), fixed(-1)))

	b.add("vec", single("ShaderNodeCombineXYZ", "", nil, []ir.DataType{sS, sS, sS}, sV, opnd(0), opnd(1), opnd(2)))
	for _, comp := range []string{"X", "Y", "Z"} {
		name := map[string]string{"X": "x", "Y": "y", "Z": "z"}[comp]
		b.add(name, single("ShaderNodeSeparateXYZ", "",
			[]ir.Param{{Key: "component", Value: comp}}, []ir.DataType{sV}, sS, opnd(0)))
	}

	b.add("rgba", single(combineColorKind, "",
		[]ir.Param{{Key: "mode", Value: "RGB"}}, []ir.DataType{sS, sS, sS, sS}, sC,
		opnd(0), opnd(1), opnd(2), opnd(3)))

	// Color arithmetic rides on the mix node with a fixed factor of 1.
	for _, e := range []struct{ name, blend string }{
		{"+", "ADD"},
		{"-", "SUBTRACT"},
		{"*", "MULTIPLY"},
	} {
		b.add(e.name, single("ShaderNodeMixRGB", "",
			[]ir.Param{{Key: "blend_type", Value: e.blend}}, []ir.DataType{sC, sC}, sC,
			fixed(1), opnd(0), opnd(1)))
	}
}

// addMixFamily registers clamp, lerp and mix on editors that have the
// native clamp and mix nodes.
func (b *tableBuilder) addMixFamily() {
	b.add("clamp", single("ShaderNodeClamp", "",
		[]ir.Param{{Key: "clamp_type", Value: "MINMAX"}}, []ir.DataType{sS, sS, sS}, sS,
		opnd(0), opnd(1), opnd(2)))

	// lerp(a, b, t): the mix node wants its factor first.
	b.add("lerp", single("ShaderNodeMix", "",
		[]ir.Param{{Key: "data_type", Value: "FLOAT"}}, []ir.DataType{sS, sS, sS}, sS,
		opnd(2), opnd(0), opnd(1)))

	// mix(t, a, b) in all three socket families.
	b.add("mix", single("ShaderNodeMix", "",
		[]ir.Param{{Key: "data_type", Value: "FLOAT"}}, []ir.DataType{sS, sS, sS}, sS,
		opnd(0), opnd(1), opnd(2)))
	b.add("mix", single("ShaderNodeMix", "",
		[]ir.Param{{Key: "data_type", Value: "VECTOR"}}, []ir.DataType{sS, sV, sV}, sV,
		opnd(0), opnd(1), opnd(2)))
	b.add("mix", single("ShaderNodeMix", "",
		[]ir.Param{{Key: "data_type", Value: "RGBA"}}, []ir.DataType{sS, sC, sC}, sC,
		opnd(0), opnd(1), opnd(2)))
}

func buildGeometry() map[string][]*Template {
	b := newTableBuilder()
	b.addScalarMath("ShaderNodeMath")

	// Native compare node with a boolean output.
	for _, e := range []struct{ name, op string }{
		{"<", "LESS_THAN"},
		{"<=", "LESS_EQUAL"},
		{">", "GREATER_THAN"},
		{">=", "GREATER_EQUAL"},
		{"==", "EQUAL"},
		{"!=", "NOT_EQUAL"},
	} {
		b.add(e.name, single("FunctionNodeCompare", e.op,
			[]ir.Param{{Key: "data_type", Value: "FLOAT"}}, []ir.DataType{sS, sS}, sB,
			opnd(0), opnd(1)))
	}

	b.add("and", single("FunctionNodeBooleanMath", "AND", nil, []ir.DataType{sB, sB}, sB, opnd(0), opnd(1)))
	b.add("or", single("FunctionNodeBooleanMath", "OR", nil, []ir.DataType{sB, sB}, sB, opnd(0), opnd(1)))
	b.add("not", single("FunctionNodeBooleanMath", "NOT", nil, []ir.DataType{sB}, sB, opnd(0)))

	b.addVectorMath("FunctionNodeCombineColor")
	b.addMixFamily()

	// Switch node: inputs are (switch, false, true).
	for _, e := range []struct {
		inputType string
		t         ir.DataType
	}{
		{"FLOAT", sS},
		{"VECTOR", sV},
		{"RGBA", sC},
		{"BOOLEAN", sB},
	} {
		b.add("select", single("GeometryNodeSwitch", "",
			[]ir.Param{{Key: "input_type", Value: e.inputType}}, []ir.DataType{sB, e.t, e.t}, e.t,
			opnd(0), opnd(2), opnd(1)))
	}

	return b.m
}

func buildShader() map[string][]*Template {
	b := newTableBuilder()
	b.addScalarMath("ShaderNodeMath")
	b.addMathComparisons("ShaderNodeMath")
	b.addMathBooleans("ShaderNodeMath")
	b.addVectorMath("ShaderNodeCombineColor")
	b.addMixFamily()

	// No switch node: select rides on the mix node, condition as factor.
	b.add("select", single("ShaderNodeMix", "",
		[]ir.Param{{Key: "data_type", Value: "FLOAT"}}, []ir.DataType{sB, sS, sS}, sS,
		opnd(0), opnd(2), opnd(1)))
	b.add("select", single("ShaderNodeMix", "",
		[]ir.Param{{Key: "data_type", Value: "VECTOR"}}, []ir.DataType{sB, sV, sV}, sV,
		opnd(0), opnd(2), opnd(1)))
	b.add("select", single("ShaderNodeMix", "",
		[]ir.Param{{Key: "data_type", Value: "RGBA"}}, []ir.DataType{sB, sC, sC}, sC,
		opnd(0), opnd(2), opnd(1)))

	return b.m
}

func buildCompositor() map[string][]*Template {
	const math = "CompositorNodeMath"
	b := newTableBuilder()
	b.addScalarMath(math)
	b.addMathComparisons(math)
	b.addMathBooleans(math)

	// No clamp node: min(max(x, lo), hi).
	b.add("clamp", &Template{
		Operands: []ir.DataType{sS, sS, sS},
		Result:   sS,
		Steps: []Step{
			{Kind: math, Operation: "MAXIMUM", Inputs: []StepInput{opnd(0), opnd(1)}, Output: sS},
			{Kind: math, Operation: "MINIMUM", Inputs: []StepInput{chain(0), opnd(2)}, Output: sS},
		},
	})

	// No mix node: lerp(a, b, t) = a + t*(b-a).
	b.add("lerp", &Template{
		Operands: []ir.DataType{sS, sS, sS},
		Result:   sS,
		Steps: []Step{
			{Kind: math, Operation: "SUBTRACT", Inputs: []StepInput{opnd(1), opnd(0)}, Output: sS},
			{Kind: math, Operation: "MULTIPLY", Inputs: []StepInput{opnd(2), chain(0)}, Output: sS},
			{Kind: math, Operation: "ADD", Inputs: []StepInput{opnd(0), chain(1)}, Output: sS},
		},
	})
	b.add("mix", &Template{
		Operands: []ir.DataType{sS, sS, sS},
		Result:   sS,
		Steps: []Step{
			{Kind: math, Operation: "SUBTRACT", Inputs: []StepInput{opnd(2), opnd(1)}, Output: sS},
			{Kind: math, Operation: "MULTIPLY", Inputs: []StepInput{opnd(0), chain(0)}, Output: sS},
			{Kind: math, Operation: "ADD", Inputs: []StepInput{opnd(1), chain(1)}, Output: sS},
		},
	})

	// No switch node: select(c, a, b) = c*a + (1-c)*b.
	b.add("select", &Template{
		Operands: []ir.DataType{sB, sS, sS},
		Result:   sS,
		Steps: []Step{
			{Kind: math, Operation: "SUBTRACT", Inputs: []StepInput{fixed(1), opnd(0)}, Output: sS},
			{Kind: math, Operation: "MULTIPLY", Inputs: []StepInput{opnd(0), opnd(1)}, Output: sS},
			{Kind: math, Operation: "MULTIPLY", Inputs: []StepInput{chain(0), opnd(2)}, Output: sS},
			{Kind: math, Operation: "ADD", Inputs: []StepInput{chain(1), chain(2)}, Output: sS},
		},
	})

	return b.m
}

var tables map[Flavor]map[string][]*Template

// arity is the fixed argument count per operator, unioned across all
// flavors. An operator known here but absent from a flavor's table is
// unsupported there, which is a compile error distinct from an unknown
// name.
var arity map[string]int

func init() {
	tables = map[Flavor]map[string][]*Template{
		FlavorGeometry:   buildGeometry(),
		FlavorShader:     buildShader(),
		FlavorCompositor: buildCompositor(),
	}
	arity = make(map[string]int, 64)
	for _, f := range Flavors() {
		for name, tmpls := range tables[f] {
			if _, seen := arity[name]; !seen {
				arity[name] = len(tmpls[0].Operands)
			}
		}
	}
}
