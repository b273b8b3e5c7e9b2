// Package ir defines the operator-graph intermediate representation.
//
// The IR is an editor-agnostic directed acyclic graph of primitive
// operator nodes. It is produced by synthesizing a typed expression AST
// (package expr) against a per-flavor operator catalog (package
// catalog) and consumed by the incremental sync engine (package delta).
//
// Node identities are content hashes of the lowered subexpression, so
// structurally identical subexpressions produce identical identities
// across independent compiles. That property is what makes graph
// diffing between successive compiles possible.
package ir
