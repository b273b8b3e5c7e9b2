// Package delta computes the edit script that turns one operator graph
// into another.
//
// Because node identities are content hashes, diffing is set algebra
// over identities: nodes present in both graphs are untouched unless
// their embedded constants changed. The resulting script is ordered so
// a materializer can replay it directly against a live editor: edges
// are removed before the nodes they touch, nodes are created before
// the edges that connect them, and constant updates come last.
package delta

import (
	"fmt"

	"github.com/gonodes/exprgraph/ir"
)

// OpKind identifies one edit operation.
type OpKind uint8

const (
	DeleteEdge OpKind = iota
	DeleteNode
	CreateNode
	CreateEdge
	UpdateConstant
)

// String returns the string representation of the op kind.
func (k OpKind) String() string {
	switch k {
	case DeleteEdge:
		return "DeleteEdge"
	case DeleteNode:
		return "DeleteNode"
	case CreateNode:
		return "CreateNode"
	case CreateEdge:
		return "CreateEdge"
	case UpdateConstant:
		return "UpdateConstant"
	default:
		return "Unknown"
	}
}

// Op is a single edit. Node is set for node and constant ops, Edge for
// edge ops. For CreateNode and UpdateConstant, Payload is the node as
// it must exist after the edit.
type Op struct {
	Kind    OpKind
	Node    ir.Identity
	Edge    ir.OpEdge
	Payload *ir.OpNode
}

// Script is an ordered edit script plus the port declarations of the
// target graph, which a materializer needs to rebind group inputs and
// the result socket.
type Script struct {
	Ops     []Op
	Inputs  []ir.PortDecl
	Outputs []ir.PortDecl
}

// Empty reports whether the script changes nothing. Port declarations
// are not considered: rebinding an unchanged output is a no-op.
func (s *Script) Empty() bool {
	return len(s.Ops) == 0
}

// Summary counts ops per kind, for logs.
func (s *Script) Summary() string {
	var del, delN, cre, creE, upd int
	for _, op := range s.Ops {
		switch op.Kind {
		case DeleteEdge:
			del++
		case DeleteNode:
			delN++
		case CreateNode:
			cre++
		case CreateEdge:
			creE++
		case UpdateConstant:
			upd++
		}
	}
	return fmt.Sprintf("-%de -%dn +%dn +%de ~%dc", del, delN, cre, creE, upd)
}

// Diff computes the script turning prev into next. A nil prev means a
// full build of next.
func Diff(prev, next *ir.Graph) *Script {
	if prev == nil {
		prev = ir.NewGraph()
	}
	script := &Script{
		Inputs:  next.Inputs,
		Outputs: next.Outputs,
	}

	for _, e := range prev.SortedEdges() {
		if _, ok := next.Edges[e]; !ok {
			script.Ops = append(script.Ops, Op{Kind: DeleteEdge, Edge: e})
		}
	}
	for _, id := range prev.Order {
		if _, ok := next.Nodes[id]; !ok {
			script.Ops = append(script.Ops, Op{Kind: DeleteNode, Node: id})
		}
	}
	for _, id := range next.Order {
		if _, ok := prev.Nodes[id]; !ok {
			script.Ops = append(script.Ops, Op{Kind: CreateNode, Node: id, Payload: next.Nodes[id]})
		}
	}
	for _, e := range next.SortedEdges() {
		if _, ok := prev.Edges[e]; !ok {
			script.Ops = append(script.Ops, Op{Kind: CreateEdge, Edge: e})
		}
	}
	for _, id := range next.Order {
		old, ok := prev.Nodes[id]
		if !ok {
			continue
		}
		if !next.Nodes[id].SameConstants(old) {
			script.Ops = append(script.Ops, Op{Kind: UpdateConstant, Node: id, Payload: next.Nodes[id]})
		}
	}
	return script
}
