package main

import (
	"fmt"
	"math/big"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// fraction is an exact rational runtime value. The wrapped *big.Rat is never
// modified after construction and is never whole: whole results collapse to
// starlark.Int (see fromRat).
type fraction struct {
	rat *big.Rat
}

var (
	_ starlark.HasBinary  = fraction{}
	_ starlark.Comparable = fraction{}
)

func (f fraction) String() string        { return f.rat.RatString() }
func (f fraction) Type() string          { return "fraction" }
func (f fraction) Freeze()               {}
func (f fraction) Truth() starlark.Bool  { return f.rat.Sign() != 0 }
func (f fraction) Hash() (uint32, error) { return starlark.String(f.String()).Hash() }

func (f fraction) numerator() starlark.Int {
	return starlark.MakeBigInt(new(big.Int).Set(f.rat.Num()))
}

func (f fraction) denominator() starlark.Int {
	return starlark.MakeBigInt(new(big.Int).Set(f.rat.Denom()))
}

// Binary implements starlark.HasBinary for mixed int/fraction arithmetic.
func (f fraction) Binary(op syntax.Token, y starlark.Value, side starlark.Side) (starlark.Value, error) {
	other, ok := toRat(y)
	if !ok {
		return nil, nil
	}
	if side == starlark.Left {
		return ratBinary(op, f.rat, other)
	}
	return ratBinary(op, other, f.rat)
}

func (f fraction) CompareSameType(op syntax.Token, y starlark.Value, depth int) (bool, error) {
	cmp := f.rat.Cmp(y.(fraction).rat)
	switch op {
	case syntax.EQL:
		return cmp == 0, nil
	case syntax.NEQ:
		return cmp != 0, nil
	case syntax.LT:
		return cmp < 0, nil
	case syntax.LE:
		return cmp <= 0, nil
	case syntax.GT:
		return cmp > 0, nil
	case syntax.GE:
		return cmp >= 0, nil
	}
	return false, fmt.Errorf("unsupported comparison %s", op)
}

// fromRat converts an exact result into its canonical runtime value.
func fromRat(r *big.Rat) starlark.Value {
	if r.IsInt() {
		return starlark.MakeBigInt(new(big.Int).Set(r.Num()))
	}
	return fraction{rat: r}
}

func toRat(v starlark.Value) (*big.Rat, bool) {
	switch v := v.(type) {
	case starlark.Int:
		return new(big.Rat).SetInt(v.BigInt()), true
	case fraction:
		return v.rat, true
	}
	return nil, false
}

func ratBinary(op syntax.Token, x, y *big.Rat) (starlark.Value, error) {
	z := new(big.Rat)
	switch op {
	case syntax.PLUS:
		z.Add(x, y)
	case syntax.MINUS:
		z.Sub(x, y)
	case syntax.STAR:
		z.Mul(x, y)
	case syntax.SLASH:
		if y.Sign() == 0 {
			return nil, errDivisionByZero
		}
		z.Quo(x, y)
	default:
		return nil, internalErrorf("no code generation rule for operator %s", op)
	}
	return fromRat(z), nil
}

// makeInt and makeFraction are the runtime constructors injected into every
// compiled literal through its bound constants.
func makeInt(args ...starlark.Int) (starlark.Value, error) {
	if len(args) != 1 {
		return nil, internalErrorf("int constructor takes 1 argument, got %d", len(args))
	}
	return args[0], nil
}

func makeFraction(args ...starlark.Int) (starlark.Value, error) {
	if len(args) != 2 {
		return nil, internalErrorf("fraction constructor takes 2 arguments, got %d", len(args))
	}
	num, den := args[0], args[1]
	if den.Sign() == 0 {
		return nil, errDivisionByZero
	}
	return fromRat(new(big.Rat).SetFrac(num.BigInt(), den.BigInt())), nil
}

// binary applies one of the four operator symbols to two runtime values.
// Division of two ints is exact; everything else starlark already knows how
// to do, with fraction.Binary covering the rational cases.
func binary(op syntax.Token, x, y starlark.Value) (starlark.Value, error) {
	if !isOperator(op) {
		return nil, internalErrorf("no code generation rule for operator %s", op)
	}
	xi, xInt := x.(starlark.Int)
	if op == syntax.SLASH && xInt {
		if yi, ok := y.(starlark.Int); ok {
			if yi.Sign() == 0 {
				return nil, errDivisionByZero
			}
			return fromRat(new(big.Rat).SetFrac(xi.BigInt(), yi.BigInt())), nil
		}
	}
	if f, ok := y.(fraction); ok && xInt {
		// starlark converts ints to float before consulting the right
		// operand for some operators, so dispatch directly.
		return f.Binary(op, x, starlark.Right)
	}
	v, err := starlark.Binary(op, x, y)
	if err != nil {
		if isRecoverable(err) {
			return nil, err
		}
		return nil, internalErrorf("%v", err)
	}
	return v, nil
}

func isOperator(op syntax.Token) bool {
	switch op {
	case syntax.PLUS, syntax.MINUS, syntax.STAR, syntax.SLASH:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Value registry
// ---------------------------------------------------------------------------

// literalKinds is the closed set of expression kinds that stand for a fully
// known value. Constant folding only fires when both operands are in it.
var literalKinds = map[kind]bool{
	kindInteger:  true,
	kindRational: true,
}

// liftRules converts a runtime value back into the literal expression that
// produces it. Every kind in literalKinds needs an entry here.
var liftRules = map[kind]func(starlark.Value) expression{
	kindInteger: func(v starlark.Value) expression {
		return newInteger(v.(starlark.Int))
	},
	kindRational: func(v starlark.Value) expression {
		f := v.(fraction)
		return newRational(f.numerator(), f.denominator())
	},
}

func valueKind(v starlark.Value) (kind, bool) {
	switch v.(type) {
	case starlark.Int:
		return kindInteger, true
	case fraction:
		return kindRational, true
	}
	return 0, false
}

func isLiteral(e expression) bool {
	return literalKinds[e.kind()]
}

// liftValue is the value registry lookup used by constant folding.
func liftValue(v starlark.Value) (expression, error) {
	k, ok := valueKind(v)
	if !ok {
		return nil, internalErrorf("no expression conversion for %s value %s", v.Type(), v)
	}
	lift, ok := liftRules[k]
	if !ok {
		return nil, internalErrorf("no expression conversion for %s", k)
	}
	return lift(v), nil
}
