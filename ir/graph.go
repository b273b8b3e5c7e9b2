package ir

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Identity is the content-addressed identity of an operator node.
// It is a pure function of the node's structural content, never a
// counter, so identical subexpressions across compiles share it.
type Identity [32]byte

// String returns the full hex form of the identity.
func (id Identity) String() string {
	const hex = "0123456789abcdef"
	b := make([]byte, 0, 64)
	for _, v := range id {
		b = append(b, hex[v>>4], hex[v&0x0f])
	}
	return string(b)
}

// Short returns an abbreviated hex form for logs and dumps.
func (id Identity) Short() string {
	return id.String()[:12]
}

// ConstValue is an embedded constant carried by a constant-emitting
// node. Only the field selected by Type is meaningful.
type ConstValue struct {
	Type  DataType
	Bool  bool
	Int   int64
	Float float64
	Vec   [3]float64
	Col   [4]float64
}

// Equal reports whether two constants hold the same value.
func (c ConstValue) Equal(o ConstValue) bool {
	if c.Type != o.Type {
		return false
	}
	switch c.Type {
	case TypeBoolean:
		return c.Bool == o.Bool
	case TypeInteger:
		return c.Int == o.Int
	case TypeScalar:
		return c.Float == o.Float
	case TypeVector3:
		return c.Vec == o.Vec
	case TypeColor4:
		return c.Col == o.Col
	default:
		return true
	}
}

// String formats the constant for dumps and diagnostics.
func (c ConstValue) String() string {
	switch c.Type {
	case TypeBoolean:
		return strconv.FormatBool(c.Bool)
	case TypeInteger:
		return strconv.FormatInt(c.Int, 10)
	case TypeScalar:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case TypeVector3:
		return fmt.Sprintf("(%g, %g, %g)", c.Vec[0], c.Vec[1], c.Vec[2])
	case TypeColor4:
		return fmt.Sprintf("(%g, %g, %g, %g)", c.Col[0], c.Col[1], c.Col[2], c.Col[3])
	default:
		return "?"
	}
}

// Param is a static parameter embedded in a node, such as a default
// socket value injected by a catalog template. Params participate in
// the identity hash.
type Param struct {
	Key   string
	Value string
}

// InputSlot describes one typed input socket of a node.
type InputSlot struct {
	Name string
	Type DataType
}

// OpNode is a primitive operator node in the graph.
//
// Const and Defaults carry literal values and are excluded from the
// identity hash: their slot positions are hashed (via Params markers)
// but their values are not, so tweaking a literal in the source keeps
// the node identity and surfaces as an UpdateConstant edit.
type OpNode struct {
	ID        Identity
	Kind      string // host node type, e.g. "ShaderNodeMath"
	Operation string // operation enum on the node, "" when none
	Output    DataType
	Inputs    []InputSlot
	Params    []Param
	Const     *ConstValue        // set only on constant-emitting nodes
	Defaults  map[int]ConstValue // unconnected input slots with literal values
}

// SameConstants reports whether two nodes of equal identity carry the
// same literal payload. A false result against the prior compile's
// node means an UpdateConstant edit.
func (n *OpNode) SameConstants(o *OpNode) bool {
	switch {
	case (n.Const == nil) != (o.Const == nil):
		return false
	case n.Const != nil && !n.Const.Equal(*o.Const):
		return false
	}
	if len(n.Defaults) != len(o.Defaults) {
		return false
	}
	for slot, v := range n.Defaults {
		ov, ok := o.Defaults[slot]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// OpEdge links one node's output to another node's input slot.
// Every node has a single output socket, so only the input slot
// needs an index.
type OpEdge struct {
	From   Identity
	To     Identity
	ToSlot int
}

// PortDecl declares an external input or output of the graph.
type PortDecl struct {
	Name string
	Type DataType
	Node Identity
}

// Graph is a DAG of operator nodes owned by one compile result.
// Order preserves synthesis order, which is deterministic for a given
// source text and is the basis for stable dumps.
type Graph struct {
	Nodes   map[Identity]*OpNode
	Edges   map[OpEdge]struct{}
	Order   []Identity
	Inputs  []PortDecl
	Outputs []PortDecl
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[Identity]*OpNode, 16),
		Edges: make(map[OpEdge]struct{}, 16),
	}
}

// AddNode inserts a node unless its identity is already present.
// It returns the node stored in the graph and whether it was added.
func (g *Graph) AddNode(n *OpNode) (*OpNode, bool) {
	if existing, ok := g.Nodes[n.ID]; ok {
		return existing, false
	}
	g.Nodes[n.ID] = n
	g.Order = append(g.Order, n.ID)
	return n, true
}

// AddEdge inserts an edge. Duplicate edges collapse to one.
func (g *Graph) AddEdge(e OpEdge) {
	g.Edges[e] = struct{}{}
}

// Node looks up a node by identity.
func (g *Graph) Node(id Identity) (*OpNode, bool) {
	n, ok := g.Nodes[id]
	return n, ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// SortedEdges returns edges in a deterministic order: by destination
// node position in Order, then destination slot, then source position.
func (g *Graph) SortedEdges() []OpEdge {
	pos := make(map[Identity]int, len(g.Order))
	for i, id := range g.Order {
		pos[id] = i
	}
	edges := make([]OpEdge, 0, len(g.Edges))
	for e := range g.Edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if pos[a.To] != pos[b.To] {
			return pos[a.To] < pos[b.To]
		}
		if a.ToSlot != b.ToSlot {
			return a.ToSlot < b.ToSlot
		}
		return pos[a.From] < pos[b.From]
	})
	return edges
}

// Dump renders the graph as stable text. Nodes are labeled n0, n1, ...
// in synthesis order so the output contains no raw hashes and is
// suitable for golden comparisons.
func (g *Graph) Dump() string {
	label := make(map[Identity]string, len(g.Order))
	for i, id := range g.Order {
		label[id] = "n" + strconv.Itoa(i)
	}

	var sb strings.Builder
	for _, in := range g.Inputs {
		fmt.Fprintf(&sb, "input %s %s\n", in.Name, in.Type)
	}
	for _, id := range g.Order {
		n := g.Nodes[id]
		fmt.Fprintf(&sb, "%s = %s", label[id], n.Kind)
		if n.Operation != "" {
			fmt.Fprintf(&sb, " %s", n.Operation)
		}
		for _, p := range n.Params {
			fmt.Fprintf(&sb, " %s=%s", p.Key, p.Value)
		}
		if n.Const != nil {
			fmt.Fprintf(&sb, " const %s", n.Const)
		}
		if len(n.Defaults) > 0 {
			slots := make([]int, 0, len(n.Defaults))
			for slot := range n.Defaults {
				slots = append(slots, slot)
			}
			sort.Ints(slots)
			for _, slot := range slots {
				v := n.Defaults[slot]
				fmt.Fprintf(&sb, " d%d=%s", slot, v.String())
			}
		}
		fmt.Fprintf(&sb, " : %s\n", n.Output)
	}
	for _, e := range g.SortedEdges() {
		fmt.Fprintf(&sb, "edge %s -> %s:%d\n", label[e.From], label[e.To], e.ToSlot)
	}
	for _, out := range g.Outputs {
		fmt.Fprintf(&sb, "output %s = %s : %s\n", out.Name, label[out.Node], out.Type)
	}
	return sb.String()
}
