package main

import "go.starlark.net/syntax"

// specializer holds state for one specialization pass.
type specializer struct {
	ns *namespace
	// cyclic caches, per identifier, whether its binding leads back to it.
	cyclic map[string]bool
}

func newSpecializer(ns *namespace) *specializer {
	return &specializer{
		ns:     ns,
		cyclic: make(map[string]bool),
	}
}

// specialize substitutes the bindings of ns into e and folds every subtree
// whose operands become fully known. The result is e itself when nothing
// applied.
func specialize(e expression, ns *namespace) (expression, error) {
	return e.specialize(newSpecializer(ns))
}

func (l *integerLit) specialize(*specializer) (expression, error)  { return l, nil }
func (l *rationalLit) specialize(*specializer) (expression, error) { return l, nil }

// A bound reference is replaced by its binding, which is specialized again so
// that chains of bindings resolve in one pass. A name on a binding cycle is
// never substituted; evaluating it reports the recursion.
func (r *reference) specialize(sp *specializer) (expression, error) {
	bound, ok := sp.ns.lookup(r.name)
	if !ok || sp.onCycle(r.name) {
		return r, nil
	}
	return bound.specialize(sp)
}

// onCycle reports whether the binding of name refers back to name, directly
// or through other bindings. The answer depends only on the namespace, so
// a name left in place stays in place on every later pass.
func (sp *specializer) onCycle(name string) bool {
	if c, ok := sp.cyclic[name]; ok {
		return c
	}
	c := sp.reaches(name, name, make(map[string]struct{}))
	sp.cyclic[name] = c
	return c
}

// reaches reports whether target is free in the binding of from or in any
// binding reachable from it.
func (sp *specializer) reaches(from, target string, seen map[string]struct{}) bool {
	bound, ok := sp.ns.lookup(from)
	if !ok {
		return false
	}
	for name := range bound.names().free {
		if name == target {
			return true
		}
		if _, done := seen[name]; done {
			continue
		}
		seen[name] = struct{}{}
		if sp.reaches(name, target, seen) {
			return true
		}
	}
	return false
}

// specialize builds a new node with children specialized, then folds it if
// both children are literals.
func (b *binaryOp) specialize(sp *specializer) (expression, error) {
	newLeft, err := b.left.specialize(sp)
	if err != nil {
		return nil, err
	}
	newRight, err := b.right.specialize(sp)
	if err != nil {
		return nil, err
	}
	newB := b
	if newLeft != b.left || newRight != b.right {
		newB = newBinaryOp(b.op, newLeft, newRight)
	}
	if !isLiteral(newLeft) || !isLiteral(newRight) {
		return newB, nil
	}
	folded, ok, err := tryFold(b.op, newLeft, newRight)
	if err != nil {
		return nil, err
	}
	if !ok {
		return newB, nil
	}
	return folded, nil
}

// tryFold applies op to the values of two literals and lifts the result back
// into a literal. An arithmetic failure leaves the node unfolded; evaluating
// it later reports the error.
func tryFold(op syntax.Token, left, right expression) (expression, bool, error) {
	x, err := evaluate(left, nil)
	if err != nil {
		return foldFailure(err)
	}
	y, err := evaluate(right, nil)
	if err != nil {
		return foldFailure(err)
	}
	val, err := binary(op, x, y)
	if err != nil {
		return foldFailure(err)
	}
	lit, err := liftValue(val)
	if err != nil {
		return nil, false, err
	}
	return lit, true, nil
}

func foldFailure(err error) (expression, bool, error) {
	if isRecoverable(err) {
		return nil, false, nil
	}
	return nil, false, err
}
