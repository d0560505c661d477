package main

import (
	"fmt"
	"strings"

	"github.com/bazelbuild/buildtools/build"
)

// unparse returns the canonical source form of e. Parsing the result yields
// an equal tree, though a decimal literal comes back as a fraction literal.
func unparse(e expression) string {
	return strings.TrimSpace(build.FormatString(exprToBuild(e)))
}

// unparseRules converts each expression kind into a buildtools syntax tree
// so that the buildtools printer lays it out. sub converts children.
var unparseRules = map[kind]func(e expression, sub func(expression) build.Expr) build.Expr{
	kindInteger: func(e expression, _ func(expression) build.Expr) build.Expr {
		return &build.LiteralExpr{Token: e.(*integerLit).value.String()}
	},
	kindRational: func(e expression, _ func(expression) build.Expr) build.Expr {
		r := e.(*rationalLit)
		return &build.LiteralExpr{Token: fmt.Sprintf("%s : %s", r.num, r.den)}
	},
	kindReference: func(e expression, _ func(expression) build.Expr) build.Expr {
		return &build.Ident{Name: e.(*reference).name}
	},
	kindBinary: func(e expression, sub func(expression) build.Expr) build.Expr {
		b := e.(*binaryOp)
		return &build.ParenExpr{X: &build.BinaryExpr{
			X:  sub(b.left),
			Op: b.op.String(),
			Y:  sub(b.right),
		}}
	},
}

func exprToBuild(e expression) build.Expr {
	rule, ok := unparseRules[e.kind()]
	if !ok {
		return &build.Ident{Name: fmt.Sprintf("<%s>", e.kind())}
	}
	return rule(e, exprToBuild)
}

func unparseInstruction(in instruction) string {
	switch in := in.(type) {
	case *assign:
		return fmt.Sprintf("%s := %s", in.name, unparse(in.expr))
	case *evaluation:
		return ">>> " + unparse(in.expr)
	default:
		return fmt.Sprintf("<%T>", in)
	}
}
