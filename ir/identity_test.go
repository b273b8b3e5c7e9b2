package ir

import "testing"

func TestNodeIdentityDeterministic(t *testing.T) {
	a := InputIdentity("a", TypeScalar)
	b := InputIdentity("b", TypeScalar)

	id1 := NodeIdentity("ShaderNodeMath", "ADD", TypeScalar, nil, []Identity{a, b})
	id2 := NodeIdentity("ShaderNodeMath", "ADD", TypeScalar, nil, []Identity{a, b})
	if id1 != id2 {
		t.Error("identical structure must hash to identical identity")
	}
}

func TestNodeIdentityDistinguishesStructure(t *testing.T) {
	a := InputIdentity("a", TypeScalar)
	b := InputIdentity("b", TypeScalar)

	add := NodeIdentity("ShaderNodeMath", "ADD", TypeScalar, nil, []Identity{a, b})
	sub := NodeIdentity("ShaderNodeMath", "SUBTRACT", TypeScalar, nil, []Identity{a, b})
	if add == sub {
		t.Error("different operations must hash differently")
	}

	swapped := NodeIdentity("ShaderNodeMath", "ADD", TypeScalar, nil, []Identity{b, a})
	if add == swapped {
		t.Error("operand order must affect identity")
	}

	withParam := NodeIdentity("ShaderNodeMath", "ADD", TypeScalar,
		[]Param{{Key: "default:2", Value: "0.5"}}, []Identity{a, b})
	if add == withParam {
		t.Error("params must affect identity")
	}
}

func TestConstIdentityExcludesValue(t *testing.T) {
	// Same type and ordinal: the value does not participate.
	id1 := ConstIdentity(TypeScalar, 0)
	id2 := ConstIdentity(TypeScalar, 0)
	if id1 != id2 {
		t.Error("const identity must depend only on type and ordinal")
	}
	if ConstIdentity(TypeScalar, 0) == ConstIdentity(TypeScalar, 1) {
		t.Error("ordinal must affect const identity")
	}
	if ConstIdentity(TypeScalar, 0) == ConstIdentity(TypeInteger, 0) {
		t.Error("type must affect const identity")
	}
}

func TestIdentityDomainSeparation(t *testing.T) {
	// An input named like an op kind must not collide with op nodes.
	in := InputIdentity("x", TypeScalar)
	op := NodeIdentity("x", "", TypeScalar, nil, nil)
	if in == op {
		t.Error("input and op identities must be domain separated")
	}
	out := OutputIdentity("x", in)
	if out == in || out == op {
		t.Error("output identities must be domain separated")
	}
}

func TestGraphAddNodeDeduplicates(t *testing.T) {
	g := NewGraph()
	a := InputIdentity("a", TypeScalar)

	n1, added := g.AddNode(&OpNode{ID: a, Kind: "GroupInput", Output: TypeScalar})
	if !added {
		t.Fatal("first insert must add")
	}
	n2, added := g.AddNode(&OpNode{ID: a, Kind: "GroupInput", Output: TypeScalar})
	if added {
		t.Error("second insert of same identity must not add")
	}
	if n1 != n2 {
		t.Error("AddNode must return the stored node")
	}
	if g.NodeCount() != 1 || len(g.Order) != 1 {
		t.Errorf("expected 1 node, got %d (order %d)", g.NodeCount(), len(g.Order))
	}
}

func TestGraphDumpStable(t *testing.T) {
	g := NewGraph()
	a := InputIdentity("a", TypeScalar)
	g.AddNode(&OpNode{ID: a, Kind: "GroupInput", Params: []Param{{Key: "socket", Value: "a"}}, Output: TypeScalar})
	add := NodeIdentity("ShaderNodeMath", "ADD", TypeScalar, nil, []Identity{a, a})
	g.AddNode(&OpNode{
		ID: add, Kind: "ShaderNodeMath", Operation: "ADD", Output: TypeScalar,
		Inputs: []InputSlot{{Name: "Value", Type: TypeScalar}, {Name: "Value", Type: TypeScalar}},
	})
	g.AddEdge(OpEdge{From: a, To: add, ToSlot: 0})
	g.AddEdge(OpEdge{From: a, To: add, ToSlot: 1})
	g.Inputs = []PortDecl{{Name: "a", Type: TypeScalar, Node: a}}
	g.Outputs = []PortDecl{{Name: "result", Type: TypeScalar, Node: add}}

	want := "input a Scalar\n" +
		"n0 = GroupInput socket=a : Scalar\n" +
		"n1 = ShaderNodeMath ADD : Scalar\n" +
		"edge n0 -> n1:0\n" +
		"edge n0 -> n1:1\n" +
		"output result = n1 : Scalar\n"
	if got := g.Dump(); got != want {
		t.Errorf("Dump mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}
