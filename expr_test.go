package main

import (
	"math/big"
	"testing"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

func integer(v int64) *integerLit       { return newInteger(starlark.MakeInt64(v)) }
func rational(n, d int64) *rationalLit { return newRational(starlark.MakeInt64(n), starlark.MakeInt64(d)) }
func ref(name string) *reference        { return newReference(name) }

func add(l, r expression) *binaryOp { return newBinaryOp(syntax.PLUS, l, r) }
func sub(l, r expression) *binaryOp { return newBinaryOp(syntax.MINUS, l, r) }
func mul(l, r expression) *binaryOp { return newBinaryOp(syntax.STAR, l, r) }
func div(l, r expression) *binaryOp { return newBinaryOp(syntax.SLASH, l, r) }

func frac(n, d int64) starlark.Value { return fromRat(big.NewRat(n, d)) }

func mustExpr(t *testing.T, src string) expression {
	t.Helper()
	e, err := newParser().parseExpr(src)
	if err != nil {
		t.Fatalf("parseExpr(%q): %v", src, err)
	}
	return e
}

func assertValue(t *testing.T, got, want starlark.Value) {
	t.Helper()
	eq, err := starlark.Equal(got, want)
	if err != nil {
		t.Fatalf("comparing %v and %v: %v", got, want, err)
	}
	if !eq {
		t.Errorf("got %s %v, want %s %v", got.Type(), got, want.Type(), want)
	}
}

// sameTree reports whether a and b are structurally equal.
func sameTree(a, b expression) bool {
	switch a := a.(type) {
	case *integerLit:
		b, ok := b.(*integerLit)
		return ok && a.value.BigInt().Cmp(b.value.BigInt()) == 0
	case *rationalLit:
		b, ok := b.(*rationalLit)
		return ok && a.num.BigInt().Cmp(b.num.BigInt()) == 0 && a.den.BigInt().Cmp(b.den.BigInt()) == 0
	case *reference:
		b, ok := b.(*reference)
		return ok && a.name == b.name
	case *binaryOp:
		b, ok := b.(*binaryOp)
		return ok && a.op == b.op && sameTree(a.left, b.left) && sameTree(a.right, b.right)
	}
	return false
}

func TestKinds(t *testing.T) {
	for _, test := range []struct {
		e       expression
		want    kind
		literal bool
	}{
		{integer(1), kindInteger, true},
		{rational(1, 2), kindRational, true},
		{ref("a"), kindReference, false},
		{add(integer(1), integer(2)), kindBinary, false},
	} {
		if got := test.e.kind(); got != test.want {
			t.Errorf("%s: kind = %s, want %s", unparse(test.e), got, test.want)
		}
		if got := isLiteral(test.e); got != test.literal {
			t.Errorf("%s: isLiteral = %v, want %v", unparse(test.e), got, test.literal)
		}
	}
}

func TestRationalLiteralKeepsStoredParts(t *testing.T) {
	r := rational(9, 12)
	if r.num.String() != "9" || r.den.String() != "12" {
		t.Errorf("stored parts = %s, %s; want 9, 12", r.num, r.den)
	}
	got, err := evaluate(r, nil)
	if err != nil {
		t.Fatal(err)
	}
	assertValue(t, got, frac(3, 4))
}
