package main

import (
	"errors"
	"io"
	"strings"

	"go.starlark.net/starlark"
)

// instruction is either an *assign or an *evaluation. Only the parser builds
// instructions.
type instruction interface {
	isInstruction()
}

// assign binds name to expr, specialized against the namespace at the time
// of the assignment.
type assign struct {
	name string
	expr expression
}

// evaluation yields the value of expr.
type evaluation struct {
	expr expression
}

func (*assign) isInstruction()     {}
func (*evaluation) isInstruction() {}

// instructionReader is a source of instructions. next returns io.EOF after
// the last instruction.
type instructionReader interface {
	next() (instruction, error)
}

// result is the outcome of one evaluation: a value, or a diagnostic when
// the evaluation failed in a recoverable way.
type result struct {
	value      starlark.Value
	diagnostic string
}

func (r result) String() string {
	if r.value == nil {
		return r.diagnostic
	}
	return r.value.String()
}

// interpreter executes instructions in order. It owns the current namespace
// and replaces it on every assignment.
type interpreter struct {
	ns *namespace
}

func newInterpreter() *interpreter {
	return &interpreter{}
}

// step executes a single instruction. ok reports whether the instruction
// produced a result. A returned error is fatal for the run.
func (it *interpreter) step(in instruction) (res result, ok bool, err error) {
	switch in := in.(type) {
	case *assign:
		return result{}, false, it.assign(in)
	case *evaluation:
		res, err = it.evaluate(in)
		return res, err == nil, err
	default:
		return result{}, false, internalErrorf("unknown instruction %T", in)
	}
}

func (it *interpreter) assign(in *assign) error {
	expr, err := specialize(in.expr, it.ns)
	if err != nil {
		return err
	}
	if debugEnabled(chanInterpret) {
		if expr != in.expr {
			debugf(chanInterpret, "%s => %s", unparseInstruction(in), unparse(expr))
		} else {
			debugf(chanInterpret, "%s", unparseInstruction(in))
		}
	}
	it.ns = it.ns.bind(in.name, expr)
	return nil
}

func (it *interpreter) evaluate(in *evaluation) (result, error) {
	if debugEnabled(chanInterpret) {
		if free := in.expr.names().sortedFree(); len(free) > 0 {
			debugf(chanInterpret, "%s (resolving %s)", unparseInstruction(in), strings.Join(free, ", "))
		} else {
			debugf(chanInterpret, "%s", unparseInstruction(in))
		}
	}
	val, err := evaluate(in.expr, it.ns)
	if err != nil {
		if isRecoverable(err) {
			return result{diagnostic: err.Error()}, nil
		}
		return result{}, err
	}
	return result{value: val}, nil
}

// run returns the results of executing src, one per evaluation, in program
// order. Instructions are read and executed only as results are requested.
func (it *interpreter) run(src instructionReader) *results {
	return &results{it: it, src: src}
}

// results is a forward-only iterator over evaluation results, in the manner
// of bufio.Scanner:
//
//	rs := it.run(src)
//	for rs.Next() {
//		fmt.Println(rs.Result())
//	}
//	if err := rs.Err(); err != nil { ... }
type results struct {
	it   *interpreter
	src  instructionReader
	cur  result
	err  error
	done bool
}

// Next advances to the next result. It returns false at the end of the
// instruction stream or after a fatal error.
func (rs *results) Next() bool {
	for !rs.done {
		in, err := rs.src.next()
		if err != nil {
			rs.done = true
			if !errors.Is(err, io.EOF) {
				rs.err = err
			}
			return false
		}
		res, ok, err := rs.it.step(in)
		if err != nil {
			rs.done = true
			rs.err = err
			return false
		}
		if ok {
			rs.cur = res
			return true
		}
	}
	return false
}

func (rs *results) Result() result { return rs.cur }

func (rs *results) Err() error { return rs.err }
