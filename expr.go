package main

import (
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// kind enumerates the closed set of expression variants.
type kind uint8

const (
	kindInteger kind = iota
	kindRational
	kindReference
	kindBinary
)

var kindNames = [...]string{
	kindInteger:   "integer",
	kindRational:  "rational",
	kindReference: "reference",
	kindBinary:    "binary",
}

func (k kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "<unknown kind>"
}

// expression is an immutable node of an expression tree. The interface is
// sealed: the four variants below are the whole grammar.
//
// Nodes are compared by identity. Specialization returns the receiver itself
// when nothing changed, and compiled artifacts are cached per node.
type expression interface {
	kind() kind
	names() names
	specialize(sp *specializer) (expression, error)
	compile() artifact
	base() *node
}

// node holds the compute-once caches shared by all variants. Both caches are
// pure functions of the immutable node content and are filled at most once.
type node struct {
	namesOnce sync.Once
	nameInfo  names

	compileOnce sync.Once
	art         artifact
}

func (n *node) base() *node { return n }

type integerLit struct {
	node
	value starlark.Int
}

func newInteger(v starlark.Int) *integerLit {
	return &integerLit{value: v}
}

func (*integerLit) kind() kind { return kindInteger }

// rationalLit stores numerator and denominator as written; reduction happens
// when the value is constructed.
type rationalLit struct {
	node
	num, den starlark.Int
}

func newRational(num, den starlark.Int) *rationalLit {
	return &rationalLit{num: num, den: den}
}

func (*rationalLit) kind() kind { return kindRational }

type reference struct {
	node
	name string
}

func newReference(name string) *reference {
	return &reference{name: name}
}

func (*reference) kind() kind { return kindReference }

type binaryOp struct {
	node
	op          syntax.Token
	left, right expression
}

func newBinaryOp(op syntax.Token, left, right expression) *binaryOp {
	return &binaryOp{op: op, left: left, right: right}
}

func (*binaryOp) kind() kind { return kindBinary }
