package main

import (
	"errors"
	"io"
)

// residualize specializes a whole program instruction by instruction and
// returns the specialized program: every assignment and evaluation carries
// its specialized expression, and assignments that no later instruction
// needs are dropped. Running the result gives the same results as running
// src.
func residualize(src instructionReader) ([]instruction, error) {
	var ns *namespace
	var out []instruction
	for {
		in, err := src.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch in := in.(type) {
		case *assign:
			e, err := specialize(in.expr, ns)
			if err != nil {
				return nil, err
			}
			ns = ns.bind(in.name, e)
			out = append(out, &assign{name: in.name, expr: e})
		case *evaluation:
			e, err := specialize(in.expr, ns)
			if err != nil {
				return nil, err
			}
			out = append(out, &evaluation{expr: e})
		default:
			return nil, internalErrorf("unknown instruction %T", in)
		}
	}
	return pruneDeadAssignments(out), nil
}

// pruneDeadAssignments removes assignments whose name is not read before it
// is reassigned or the program ends. Evaluations are always preserved.
func pruneDeadAssignments(instrs []instruction) []instruction {
	keep := make([]bool, len(instrs))
	live := make(map[string]struct{})

	// Backward liveness over the instruction list.
	for i := len(instrs) - 1; i >= 0; i-- {
		in := instrs[i]
		if a, ok := in.(*assign); ok {
			if _, needed := live[a.name]; !needed {
				continue
			}
		}

		keep[i] = true

		for name := range instrDefinedNames(in) {
			delete(live, name)
		}
		mergeNameSet(live, instrUsedNames(in))
	}

	var out []instruction
	for i, in := range instrs {
		if keep[i] {
			out = append(out, in)
		}
	}
	return out
}

func instrUsedNames(in instruction) map[string]struct{} {
	switch in := in.(type) {
	case *assign:
		return in.expr.names().free
	case *evaluation:
		return in.expr.names().free
	}
	return nil
}

func instrDefinedNames(in instruction) map[string]struct{} {
	if a, ok := in.(*assign); ok {
		return map[string]struct{}{a.name: {}}
	}
	return nil
}
