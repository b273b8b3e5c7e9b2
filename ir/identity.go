package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
)

// Identity hashing. Each constructor feeds a domain tag first so the
// different node classes can never collide, then the structural
// content of the node. Field boundaries are marked with a separator
// byte to keep the encoding unambiguous.

const hashSep = byte(0x1f)

func hashFields(tag string, fields ...string) Identity {
	h := sha256.New()
	h.Write([]byte(tag))
	for _, f := range fields {
		h.Write([]byte{hashSep})
		h.Write([]byte(f))
	}
	var id Identity
	h.Sum(id[:0])
	return id
}

// NodeIdentity hashes an operator node: its primitive kind, operation,
// result type, static params and the identities of its inputs in slot
// order. Two structurally identical subexpressions therefore resolve
// to the same identity.
func NodeIdentity(kind, operation string, out DataType, params []Param, inputs []Identity) Identity {
	fields := make([]string, 0, 3+2*len(params)+len(inputs))
	fields = append(fields, kind, operation, strconv.Itoa(int(out)))
	for _, p := range params {
		fields = append(fields, p.Key, p.Value)
	}
	for _, in := range inputs {
		fields = append(fields, in.String())
	}
	return hashFields("op", fields...)
}

// ConstIdentity hashes a constant-emitting node. The constant value is
// deliberately excluded: the identity depends only on the result type
// and the ordinal of the constant in synthesis order, so editing a
// literal in place keeps the node and becomes an UpdateConstant edit
// instead of a delete/create pair.
func ConstIdentity(t DataType, ordinal int) Identity {
	return hashFields("const", strconv.Itoa(int(t)), strconv.Itoa(ordinal))
}

// InputIdentity hashes an external-input node by name and declared
// type.
func InputIdentity(name string, t DataType) Identity {
	return hashFields("input", name, strconv.Itoa(int(t)))
}

// OutputIdentity hashes an output-binding node by name and the
// identity of the node feeding it.
func OutputIdentity(name string, src Identity) Identity {
	return hashFields("output", name, src.String())
}

// ParseIdentity decodes the hex form produced by Identity.String.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	if len(s) != 2*len(id) {
		return id, fmt.Errorf("identity must be %d hex chars, got %d", 2*len(id), len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("invalid identity %q: %w", s, err)
	}
	return id, nil
}
