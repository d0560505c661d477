package main

import "github.com/benbjohnson/immutable"

// namespace maps user identifiers to already specialized expressions. It is
// persistent: bind returns a new namespace sharing structure with the
// receiver and never modifies it, so artifacts and trees derived from an
// older namespace stay valid.
//
// The nil *namespace is the empty namespace.
type namespace struct {
	bindings *immutable.SortedMap[string, expression]
}

func (ns *namespace) lookup(name string) (expression, bool) {
	if ns == nil {
		return nil, false
	}
	return ns.bindings.Get(name)
}

func (ns *namespace) has(name string) bool {
	_, ok := ns.lookup(name)
	return ok
}

func (ns *namespace) len() int {
	if ns == nil {
		return 0
	}
	return ns.bindings.Len()
}

func (ns *namespace) bind(name string, e expression) *namespace {
	m := immutable.NewSortedMap[string, expression](nil)
	if ns != nil {
		m = ns.bindings
	}
	return &namespace{bindings: m.Set(name, e)}
}

// identifiers returns the bound identifiers in lexical order.
func (ns *namespace) identifiers() []string {
	if ns == nil {
		return nil
	}
	out := make([]string, 0, ns.bindings.Len())
	for itr := ns.bindings.Iterator(); !itr.Done(); {
		name, _, _ := itr.Next()
		out = append(out, name)
	}
	return out
}
