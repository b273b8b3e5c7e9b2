package expr

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gonodes/exprgraph/catalog"
	"github.com/gonodes/exprgraph/ir"
)

// synthesizer lowers a resolved script into an operator graph.
//
// Literal operands do not become nodes of their own: they embed as
// default socket values on the consuming node, so editing a literal in
// the source keeps every node identity stable and surfaces as a
// constant update instead of a rebuild. Only a script whose entire
// result folds to a constant produces a standalone value node.
type synthesizer struct {
	graph   *ir.Graph
	flavor  catalog.Flavor
	env     *Environment
	locals  map[string]operand
	used    map[string]bool
	ordinal int
}

// operand is the synthesized form of a subexpression: either the
// output of a graph node or a folded constant value.
type operand struct {
	id      ir.Identity
	isConst bool
	val     ir.ConstValue
}

// Synthesize lowers a resolved script into a graph. ResolveScript must
// have succeeded on the script first.
func Synthesize(script *Script, env *Environment, flavor catalog.Flavor) (*ir.Graph, error) {
	s := &synthesizer{
		graph:  ir.NewGraph(),
		flavor: flavor,
		env:    env,
		locals: make(map[string]operand, len(script.Lets)),
		used:   make(map[string]bool, 8),
	}

	for _, stmt := range script.Lets {
		op, err := s.synth(stmt.Value)
		if err != nil {
			return nil, err
		}
		s.locals[stmt.Name] = op
	}

	result, err := s.synth(script.Result)
	if err != nil {
		return nil, err
	}

	resultType := script.Result.ResolvedType()
	if result.isConst {
		result = s.constNode(result.val, resultType)
	}

	for _, decl := range env.Inputs() {
		if s.used[decl.Name] {
			s.graph.Inputs = append(s.graph.Inputs, ir.PortDecl{
				Name: decl.Name,
				Type: decl.Type,
				Node: ir.InputIdentity(decl.Name, decl.Type),
			})
		}
	}
	s.graph.Outputs = []ir.PortDecl{{Name: "result", Type: resultType, Node: result.id}}
	return s.graph, nil
}

func (s *synthesizer) synth(e Expr) (operand, error) {
	switch n := e.(type) {
	case *Literal:
		return operand{isConst: true, val: n.Value}, nil

	case *VariableRef:
		if op, ok := s.locals[n.Name]; ok {
			return op, nil
		}
		t, ok := s.env.Lookup(n.Name)
		if !ok {
			return operand{}, fmt.Errorf("unresolved variable %q reached synthesis", n.Name)
		}
		return s.inputNode(n.Name, t), nil

	case *Unary:
		return s.apply(n.Op, []Expr{n.Operand}, n.ResolvedType())

	case *Binary:
		return s.apply(n.Op, []Expr{n.Left, n.Right}, n.ResolvedType())

	case *Call:
		return s.apply(n.Name, n.Args, n.ResolvedType())

	default:
		return operand{}, fmt.Errorf("unhandled expression node %T", e)
	}
}

func (s *synthesizer) apply(op string, args []Expr, result ir.DataType) (operand, error) {
	ops := make([]operand, len(args))
	types := make([]ir.DataType, len(args))
	for i, a := range args {
		o, err := s.synth(a)
		if err != nil {
			return operand{}, err
		}
		ops[i] = o
		types[i] = a.ResolvedType()
	}

	if allConst(ops) {
		if v, ok := fold(op, ops, result); ok {
			return operand{isConst: true, val: v}, nil
		}
	}

	tmpl, err := catalog.Lookup(op, types, s.flavor)
	if err != nil {
		return operand{}, fmt.Errorf("catalog lookup failed after resolution: %w", err)
	}
	return s.instantiate(tmpl, ops), nil
}

// inputNode materializes the group-input tap for a declared input.
// Identity depends only on the input's name and type, so the same node
// is shared by every reference and survives across compiles.
func (s *synthesizer) inputNode(name string, t ir.DataType) operand {
	s.used[name] = true
	id := ir.InputIdentity(name, t)
	s.graph.AddNode(&ir.OpNode{
		ID:     id,
		Kind:   "NodeGroupInput",
		Output: t,
		Params: []ir.Param{{Key: "socket", Value: name}},
	})
	return operand{id: id}
}

// instantiate emits the template's steps as nodes. Constant operands
// become embedded defaults on the consuming slot, marked in the
// identity hash by a synthesis-order ordinal rather than their value.
// Fixed template values hash by value: they are structure, not data.
//
// Ordinals are never reused, so a repeated subexpression that carries
// a literal hashes differently at each occurrence and is not shared;
// only literal-free subexpressions collapse into one node.
func (s *synthesizer) instantiate(tmpl *catalog.Template, ops []operand) operand {
	stepIDs := make([]ir.Identity, len(tmpl.Steps))
	for si, step := range tmpl.Steps {
		node := &ir.OpNode{
			Kind:      step.Kind,
			Operation: step.Operation,
			Output:    step.Output,
			Params:    append([]ir.Param(nil), step.Params...),
		}
		type pending struct {
			from ir.Identity
			slot int
		}
		var edges []pending
		var hashInputs []ir.Identity

		for slot, in := range step.Inputs {
			slotType := tmpl.InputType(in)
			node.Inputs = append(node.Inputs, ir.InputSlot{
				Name: "in" + strconv.Itoa(slot),
				Type: slotType,
			})
			switch {
			case in.Prev >= 0:
				edges = append(edges, pending{from: stepIDs[in.Prev], slot: slot})
				hashInputs = append(hashInputs, stepIDs[in.Prev])
			case in.Value != nil:
				node.Params = append(node.Params, ir.Param{
					Key:   "fixed:" + strconv.Itoa(slot),
					Value: in.Value.String(),
				})
				s.setDefault(node, slot, *in.Value)
			case ops[in.Operand].isConst:
				ord := s.nextOrdinal()
				node.Params = append(node.Params, ir.Param{
					Key:   "default:" + strconv.Itoa(slot),
					Value: "#" + strconv.Itoa(ord),
				})
				s.setDefault(node, slot, convertConst(ops[in.Operand].val, slotType))
			default:
				edges = append(edges, pending{from: ops[in.Operand].id, slot: slot})
				hashInputs = append(hashInputs, ops[in.Operand].id)
			}
		}

		node.ID = ir.NodeIdentity(node.Kind, node.Operation, node.Output, node.Params, hashInputs)
		s.graph.AddNode(node)
		for _, e := range edges {
			s.graph.AddEdge(ir.OpEdge{From: e.from, To: node.ID, ToSlot: e.slot})
		}
		stepIDs[si] = node.ID
	}
	return operand{id: stepIDs[len(stepIDs)-1]}
}

func (s *synthesizer) setDefault(node *ir.OpNode, slot int, v ir.ConstValue) {
	if node.Defaults == nil {
		node.Defaults = make(map[int]ir.ConstValue, 2)
	}
	node.Defaults[slot] = v
}

// constNode emits a standalone value node for a fully folded result.
func (s *synthesizer) constNode(v ir.ConstValue, t ir.DataType) operand {
	kind := "ShaderNodeValue"
	switch {
	case s.flavor == catalog.FlavorCompositor:
		kind = "CompositorNodeValue"
	case s.flavor == catalog.FlavorGeometry && t == ir.TypeBoolean:
		kind = "FunctionNodeInputBool"
	}
	id := ir.ConstIdentity(t, s.nextOrdinal())
	val := v
	s.graph.AddNode(&ir.OpNode{
		ID:     id,
		Kind:   kind,
		Output: t,
		Const:  &val,
	})
	return operand{id: id}
}

func (s *synthesizer) nextOrdinal() int {
	n := s.ordinal
	s.ordinal++
	return n
}

func allConst(ops []operand) bool {
	for _, o := range ops {
		if !o.isConst {
			return false
		}
	}
	return true
}

// convertConst coerces a constant into the type a socket expects,
// widening along the promotion lattice.
func convertConst(v ir.ConstValue, to ir.DataType) ir.ConstValue {
	if v.Type == to {
		return v
	}
	f := v.Float
	if v.Type == ir.TypeInteger {
		f = float64(v.Int)
	}
	switch to {
	case ir.TypeScalar:
		return ir.ConstValue{Type: ir.TypeScalar, Float: f}
	case ir.TypeVector3:
		if v.Type == ir.TypeVector3 {
			return v
		}
		return ir.ConstValue{Type: ir.TypeVector3, Vec: [3]float64{f, f, f}}
	case ir.TypeColor4:
		if v.Type == ir.TypeVector3 {
			return ir.ConstValue{Type: ir.TypeColor4, Col: [4]float64{v.Vec[0], v.Vec[1], v.Vec[2], 1}}
		}
		return ir.ConstValue{Type: ir.TypeColor4, Col: [4]float64{f, f, f, 1}}
	case ir.TypeBoolean:
		if v.Type == ir.TypeBoolean {
			return v
		}
		return ir.ConstValue{Type: ir.TypeBoolean, Bool: f != 0}
	default:
		return v
	}
}

const foldEpsilon = 0.000001

// fold evaluates an operator over constant operands. It returns false
// whenever the host node's behavior on degenerate inputs (division by
// zero, log of a non-positive) is not worth replicating; those cases
// materialize as nodes instead.
func fold(op string, ops []operand, result ir.DataType) (ir.ConstValue, bool) {
	if result != ir.TypeScalar && result != ir.TypeBoolean {
		return ir.ConstValue{}, false
	}

	num := func(i int) (float64, bool) {
		v := ops[i].val
		switch v.Type {
		case ir.TypeInteger:
			return float64(v.Int), true
		case ir.TypeScalar:
			return v.Float, true
		case ir.TypeBoolean:
			if v.Bool {
				return 1, true
			}
			return 0, true
		}
		return 0, false
	}
	boolean := func(i int) (bool, bool) {
		v := ops[i].val
		return v.Bool, v.Type == ir.TypeBoolean
	}
	scalar := func(f float64) (ir.ConstValue, bool) {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ir.ConstValue{}, false
		}
		return ir.ConstValue{Type: ir.TypeScalar, Float: f}, true
	}
	truth := func(b bool) (ir.ConstValue, bool) {
		return ir.ConstValue{Type: ir.TypeBoolean, Bool: b}, true
	}

	switch op {
	case "and":
		a, ok1 := boolean(0)
		b, ok2 := boolean(1)
		if !ok1 || !ok2 {
			return ir.ConstValue{}, false
		}
		return truth(a && b)
	case "or":
		a, ok1 := boolean(0)
		b, ok2 := boolean(1)
		if !ok1 || !ok2 {
			return ir.ConstValue{}, false
		}
		return truth(a || b)
	case "not":
		a, ok := boolean(0)
		if !ok {
			return ir.ConstValue{}, false
		}
		return truth(!a)
	case "select":
		c, ok := boolean(0)
		if !ok {
			return ir.ConstValue{}, false
		}
		if c {
			return convertConst(ops[1].val, result), true
		}
		return convertConst(ops[2].val, result), true
	}

	args := make([]float64, len(ops))
	for i := range ops {
		f, ok := num(i)
		if !ok {
			return ir.ConstValue{}, false
		}
		args[i] = f
	}

	switch op {
	case "+":
		return scalar(args[0] + args[1])
	case "-":
		return scalar(args[0] - args[1])
	case "*":
		return scalar(args[0] * args[1])
	case "/":
		if args[1] == 0 {
			return ir.ConstValue{}, false
		}
		return scalar(args[0] / args[1])
	case "%", "mod":
		if args[1] == 0 {
			return ir.ConstValue{}, false
		}
		return scalar(math.Mod(args[0], args[1]))
	case "neg":
		return scalar(-args[0])
	case "min":
		return scalar(math.Min(args[0], args[1]))
	case "max":
		return scalar(math.Max(args[0], args[1]))
	case "pow":
		return scalar(math.Pow(args[0], args[1]))
	case "abs":
		return scalar(math.Abs(args[0]))
	case "sqrt":
		if args[0] < 0 {
			return ir.ConstValue{}, false
		}
		return scalar(math.Sqrt(args[0]))
	case "sin":
		return scalar(math.Sin(args[0]))
	case "cos":
		return scalar(math.Cos(args[0]))
	case "tan":
		return scalar(math.Tan(args[0]))
	case "asin":
		if args[0] < -1 || args[0] > 1 {
			return ir.ConstValue{}, false
		}
		return scalar(math.Asin(args[0]))
	case "acos":
		if args[0] < -1 || args[0] > 1 {
			return ir.ConstValue{}, false
		}
		return scalar(math.Acos(args[0]))
	case "atan":
		return scalar(math.Atan(args[0]))
	case "atan2":
		return scalar(math.Atan2(args[0], args[1]))
	case "floor":
		return scalar(math.Floor(args[0]))
	case "ceil":
		return scalar(math.Ceil(args[0]))
	case "round":
		return scalar(math.Round(args[0]))
	case "trunc":
		return scalar(math.Trunc(args[0]))
	case "frac":
		return scalar(args[0] - math.Floor(args[0]))
	case "log":
		if args[0] <= 0 || args[1] <= 0 || args[1] == 1 {
			return ir.ConstValue{}, false
		}
		return scalar(math.Log(args[0]) / math.Log(args[1]))
	case "snap":
		if args[1] == 0 {
			return ir.ConstValue{}, false
		}
		return scalar(math.Floor(args[0]/args[1]) * args[1])
	case "clamp":
		return scalar(math.Min(math.Max(args[0], args[1]), args[2]))
	case "lerp":
		return scalar(args[0] + args[2]*(args[1]-args[0]))
	case "mix":
		return scalar(args[1] + args[0]*(args[2]-args[1]))
	case "<":
		return truth(args[0] < args[1])
	case "<=":
		return truth(args[0] <= args[1])
	case ">":
		return truth(args[0] > args[1])
	case ">=":
		return truth(args[0] >= args[1])
	case "==":
		return truth(math.Abs(args[0]-args[1]) <= foldEpsilon)
	case "!=":
		return truth(math.Abs(args[0]-args[1]) > foldEpsilon)
	}
	return ir.ConstValue{}, false
}
