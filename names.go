package main

import (
	"sort"

	"go.starlark.net/starlark"
)

// Bound constant keys. User identifiers always start with a letter, so these
// can never collide with a namespace binding.
const (
	intConstant      = "__int__"
	fractionConstant = "__fraction__"
)

// literalConstructor builds a runtime value from the integers embedded in a
// compiled literal.
type literalConstructor func(args ...starlark.Int) (starlark.Value, error)

// names describes which identifiers an expression still needs (free) and
// which internal constants its compiled form expects (bound). Both maps are
// shared and must not be modified.
type names struct {
	free  map[string]struct{}
	bound map[string]interface{}
}

// sortedFree returns the free identifiers in lexical order.
func (n names) sortedFree() []string {
	out := make([]string, 0, len(n.free))
	for name := range n.free {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var (
	noFree = map[string]struct{}{}

	integerNames = names{
		free:  noFree,
		bound: map[string]interface{}{intConstant: literalConstructor(makeInt)},
	}
	rationalNames = names{
		free:  noFree,
		bound: map[string]interface{}{fractionConstant: literalConstructor(makeFraction)},
	}
)

func (*integerLit) names() names  { return integerNames }
func (*rationalLit) names() names { return rationalNames }

func (r *reference) names() names {
	r.namesOnce.Do(func() {
		r.nameInfo = names{
			free:  map[string]struct{}{r.name: {}},
			bound: map[string]interface{}{},
		}
	})
	return r.nameInfo
}

func (b *binaryOp) names() names {
	b.namesOnce.Do(func() {
		l, r := b.left.names(), b.right.names()
		free := make(map[string]struct{}, len(l.free)+len(r.free))
		mergeNameSet(free, l.free)
		mergeNameSet(free, r.free)
		bound := make(map[string]interface{}, len(l.bound)+len(r.bound))
		for k, v := range l.bound {
			bound[k] = v
		}
		for k, v := range r.bound {
			bound[k] = v
		}
		b.nameInfo = names{free: free, bound: bound}
	})
	return b.nameInfo
}

func mergeNameSet(dst, src map[string]struct{}) {
	for name := range src {
		dst[name] = struct{}{}
	}
}
