package main

import (
	"fmt"
	"sync/atomic"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// artifact is the executable form of an expression.
type artifact interface {
	execute(env *environment) (starlark.Value, error)
	// String returns the generated form, for the code-generation channel.
	String() string
}

// environment is what an artifact executes in: the bound constants of the
// compiled node merged with the user namespace.
type environment struct {
	constants map[string]interface{}
	ns        *namespace
	// active holds identifiers whose bindings are being evaluated.
	active map[string]struct{}
}

// compilations counts compile() invocations across all nodes.
var compilations atomic.Int64

// compiled returns the artifact of e, compiling it on first use. The artifact
// is cached on the node instance, not on its structure.
func compiled(e expression) artifact {
	n := e.base()
	n.compileOnce.Do(func() {
		n.art = e.compile()
		compilations.Add(1)
		if debugEnabled(chanCodegen) {
			debugf(chanCodegen, "%s => %s", unparse(e), n.art)
		}
	})
	return n.art
}

// evaluate computes the value of e. References still free in e are resolved
// against ns when the artifact runs.
func evaluate(e expression, ns *namespace) (starlark.Value, error) {
	return evaluateIn(e, ns, make(map[string]struct{}))
}

func evaluateIn(e expression, ns *namespace, active map[string]struct{}) (starlark.Value, error) {
	bound := e.names().bound
	for key := range bound {
		if ns.has(key) {
			return nil, internalErrorf("bound constant %q collides with a namespace binding", key)
		}
	}
	env := &environment{constants: bound, ns: ns, active: active}
	return compiled(e).execute(env)
}

func (l *integerLit) compile() artifact {
	return &literalArtifact{constant: intConstant, args: []starlark.Int{l.value}}
}

func (l *rationalLit) compile() artifact {
	return &literalArtifact{constant: fractionConstant, args: []starlark.Int{l.num, l.den}}
}

func (r *reference) compile() artifact {
	return &lookupArtifact{name: r.name}
}

func (b *binaryOp) compile() artifact {
	return &operatorArtifact{op: b.op, left: compiled(b.left), right: compiled(b.right)}
}

// literalArtifact constructs a value through the constructor bound under
// constant. It ignores the namespace.
type literalArtifact struct {
	constant string
	args     []starlark.Int
}

func (a *literalArtifact) execute(env *environment) (starlark.Value, error) {
	ctor, ok := env.constants[a.constant].(literalConstructor)
	if !ok {
		return nil, internalErrorf("no code generation rule for constant %s", a.constant)
	}
	return ctor(a.args...)
}

func (a *literalArtifact) String() string {
	s := a.constant + "("
	for i, arg := range a.args {
		if i > 0 {
			s += ", "
		}
		s += arg.String()
	}
	return s + ")"
}

// lookupArtifact defers resolution of a free reference to execution time: it
// evaluates whatever expression the namespace binds at that point.
type lookupArtifact struct {
	name string
}

func (a *lookupArtifact) execute(env *environment) (starlark.Value, error) {
	if _, busy := env.active[a.name]; busy {
		return nil, &recursionError{name: a.name}
	}
	bound, ok := env.ns.lookup(a.name)
	if !ok {
		return nil, &nameError{name: a.name}
	}
	env.active[a.name] = struct{}{}
	defer delete(env.active, a.name)
	return evaluateIn(bound, env.ns, env.active)
}

func (a *lookupArtifact) String() string {
	return fmt.Sprintf("namespace[%q].evaluate(namespace)", a.name)
}

type operatorArtifact struct {
	op          syntax.Token
	left, right artifact
}

func (a *operatorArtifact) execute(env *environment) (starlark.Value, error) {
	x, err := a.left.execute(env)
	if err != nil {
		return nil, err
	}
	y, err := a.right.execute(env)
	if err != nil {
		return nil, err
	}
	return binary(a.op, x, y)
}

func (a *operatorArtifact) String() string {
	return fmt.Sprintf("(%s %s %s)", a.left, a.op, a.right)
}
