package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"

	"github.com/bazelbuild/buildtools/build"
	"github.com/bazelbuild/buildtools/convertast"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// errMalformed is wrapped by every error for source outside the grammar.
var errMalformed = errors.New("malformed source")

// evaluatePrefix introduces an evaluation; `name := expr` is an assignment.
const evaluatePrefix = ">>>"

// Internal names the source is rewritten to before the line is handed to
// the starlark parser. A fraction literal `n : d` becomes a ratioFunc call,
// and an identifier that starlark reserves gets keywordPrefix. Both start
// with an underscore, which no user identifier can.
const (
	ratioFunc     = "__ratio__"
	keywordPrefix = "__kw_"
)

var (
	identRE       = regexp.MustCompile(`^[A-Za-z][A-Za-z_]*$`)
	assignRE      = regexp.MustCompile(`^([A-Za-z][A-Za-z_]*)\s*:=\s*(.*)$`)
	fractionRE    = regexp.MustCompile(`\b(\d+)\s*:\s*([+-]?\d+)\b`)
	digitsRE      = regexp.MustCompile(`^\d+$`)
	decimalRE     = regexp.MustCompile(`^\d+\.\d+$`)
	wordRE        = regexp.MustCompile(`\b[A-Za-z][A-Za-z_]*\b`)
	underscoreRE  = regexp.MustCompile(`(^|[^A-Za-z0-9_])_`)
	leadingZeroRE = regexp.MustCompile(`(^|[^A-Za-z0-9_.])0+(\d)`)
)

// starlarkKeywords are the words the starlark scanner does not accept as
// identifiers.
var starlarkKeywords = map[string]bool{
	"and": true, "break": true, "continue": true, "def": true, "elif": true,
	"else": true, "for": true, "if": true, "in": true, "lambda": true,
	"load": true, "not": true, "or": true, "pass": true, "return": true,
	"while": true,
	"as": true, "assert": true, "async": true, "await": true, "class": true,
	"del": true, "except": true, "finally": true, "from": true, "global": true,
	"import": true, "is": true, "nonlocal": true, "raise": true, "try": true,
	"with": true, "yield": true,
}

// parser turns lines of source into instructions.
type parser struct {
	opts *syntax.FileOptions
}

func newParser() *parser {
	return &parser{opts: &syntax.FileOptions{}}
}

// parseLine parses one non-blank line. filename and lineno only label errors.
func (p *parser) parseLine(filename string, lineno int, line string) (instruction, error) {
	in, err := p.parseInstruction(line)
	if err != nil {
		return nil, fmt.Errorf("%s:%d: %w", filename, lineno, err)
	}
	if debugEnabled(chanParse) {
		debugf(chanParse, "%s:%d: %q => %s", filename, lineno, line, unparseInstruction(in))
	}
	return in, nil
}

func (p *parser) parseInstruction(line string) (instruction, error) {
	src := strings.TrimSpace(line)
	if strings.HasPrefix(src, evaluatePrefix) {
		e, err := p.parseExpr(strings.TrimPrefix(src, evaluatePrefix))
		if err != nil {
			return nil, err
		}
		return &evaluation{expr: e}, nil
	}
	if m := assignRE.FindStringSubmatch(src); m != nil {
		e, err := p.parseExpr(m[2])
		if err != nil {
			return nil, err
		}
		return &assign{name: m[1], expr: e}, nil
	}
	return nil, fmt.Errorf("%w: expected `name := expression` or `%s expression`", errMalformed, evaluatePrefix)
}

func (p *parser) parseExpr(src string) (expression, error) {
	rewritten, err := rewriteSource(src)
	if err != nil {
		return nil, err
	}
	f, err := p.opts.Parse("<expr>", rewritten, syntax.RetainComments)
	if err != nil {
		var serr syntax.Error
		if errors.As(err, &serr) {
			return nil, fmt.Errorf("%w: %s", errMalformed, serr.Msg)
		}
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if len(f.Stmts) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one expression", errMalformed)
	}
	stmt, ok := f.Stmts[0].(*syntax.ExprStmt)
	if !ok {
		return nil, fmt.Errorf("%w: expected an expression", errMalformed)
	}
	if debugEnabled(chanParse) {
		buildFile := convertast.ConvFile(f)
		buildFile.Type = build.TypeBuild
		debugf(chanParse, "%q => %s", src, strings.TrimSpace(string(build.Format(buildFile))))
	}
	return convertExpr(stmt.X)
}

// rewriteSource maps an expression of the line grammar onto source the
// starlark scanner accepts. Integers lose leading zeros, which starlark
// reads as obsolete octal.
func rewriteSource(src string) (string, error) {
	if i := strings.IndexByte(src, '#'); i >= 0 {
		src = src[:i]
	}
	// starlark rejects leading indentation on the first line.
	src = strings.TrimSpace(src)
	if underscoreRE.MatchString(src) {
		return "", fmt.Errorf("%w: identifiers must start with a letter", errMalformed)
	}
	src = leadingZeroRE.ReplaceAllString(src, "${1}${2}")
	src = fractionRE.ReplaceAllString(src, ratioFunc+"($1, $2)")
	return wordRE.ReplaceAllStringFunc(src, func(w string) string {
		if starlarkKeywords[w] {
			return keywordPrefix + w
		}
		return w
	}), nil
}

// convertExpr maps a starlark syntax tree onto the expression grammar.
func convertExpr(x syntax.Expr) (expression, error) {
	switch x := x.(type) {
	case *syntax.Ident:
		name := strings.TrimPrefix(x.Name, keywordPrefix)
		if !identRE.MatchString(name) {
			return nil, fmt.Errorf("%w: invalid identifier %q", errMalformed, name)
		}
		return newReference(name), nil

	case *syntax.Literal, *syntax.UnaryExpr, *syntax.CallExpr:
		return convertLiteral(x)

	case *syntax.ParenExpr:
		return convertExpr(x.X)

	case *syntax.BinaryExpr:
		if !isOperator(x.Op) {
			return nil, fmt.Errorf("%w: unsupported operator %s", errMalformed, x.Op)
		}
		left, err := convertExpr(x.X)
		if err != nil {
			return nil, err
		}
		right, err := convertExpr(x.Y)
		if err != nil {
			return nil, err
		}
		return newBinaryOp(x.Op, left, right), nil
	}
	return nil, fmt.Errorf("%w: unsupported expression %T", errMalformed, x)
}

// convertLiteral handles signed integer, decimal and fraction literals.
func convertLiteral(x syntax.Expr) (expression, error) {
	neg := false
	if u, ok := x.(*syntax.UnaryExpr); ok {
		if u.Op != syntax.MINUS && u.Op != syntax.PLUS {
			return nil, fmt.Errorf("%w: unsupported operator %s", errMalformed, u.Op)
		}
		neg = u.Op == syntax.MINUS
		x = u.X
	}
	switch x := x.(type) {
	case *syntax.Literal:
		switch x.Token {
		case syntax.INT:
			v, err := intLiteral(x)
			if err != nil {
				return nil, err
			}
			return newInteger(negateIf(neg, v)), nil
		case syntax.FLOAT:
			num, den, err := decimalLiteral(x)
			if err != nil {
				return nil, err
			}
			return newRational(negateIf(neg, num), den), nil
		}
		return nil, fmt.Errorf("%w: unsupported literal %s", errMalformed, x.Raw)

	case *syntax.CallExpr:
		fn, ok := x.Fn.(*syntax.Ident)
		if !ok || fn.Name != ratioFunc || len(x.Args) != 2 {
			return nil, fmt.Errorf("%w: unsupported call expression", errMalformed)
		}
		num, err := signedInt(x.Args[0])
		if err != nil {
			return nil, err
		}
		den, err := signedInt(x.Args[1])
		if err != nil {
			return nil, err
		}
		return newRational(negateIf(neg, num), den), nil
	}
	return nil, fmt.Errorf("%w: sign applied to a non-literal", errMalformed)
}

func signedInt(x syntax.Expr) (starlark.Int, error) {
	neg := false
	if u, ok := x.(*syntax.UnaryExpr); ok && (u.Op == syntax.MINUS || u.Op == syntax.PLUS) {
		neg = u.Op == syntax.MINUS
		x = u.X
	}
	lit, ok := x.(*syntax.Literal)
	if !ok || lit.Token != syntax.INT {
		return starlark.Int{}, fmt.Errorf("%w: fraction parts must be integers", errMalformed)
	}
	v, err := intLiteral(lit)
	if err != nil {
		return starlark.Int{}, err
	}
	return negateIf(neg, v), nil
}

func intLiteral(lit *syntax.Literal) (starlark.Int, error) {
	if !digitsRE.MatchString(lit.Raw) {
		return starlark.Int{}, fmt.Errorf("%w: unsupported integer literal %s", errMalformed, lit.Raw)
	}
	switch v := lit.Value.(type) {
	case int64:
		return starlark.MakeInt64(v), nil
	case *big.Int:
		return starlark.MakeBigInt(v), nil
	}
	return starlark.Int{}, fmt.Errorf("%w: unsupported integer literal %s", errMalformed, lit.Raw)
}

// decimalLiteral reads `12.34` as 1234 / 100 without going through a float.
func decimalLiteral(lit *syntax.Literal) (num, den starlark.Int, err error) {
	if !decimalRE.MatchString(lit.Raw) {
		return num, den, fmt.Errorf("%w: unsupported decimal literal %s", errMalformed, lit.Raw)
	}
	dot := strings.IndexByte(lit.Raw, '.')
	n, ok := new(big.Int).SetString(lit.Raw[:dot]+lit.Raw[dot+1:], 10)
	if !ok {
		return num, den, fmt.Errorf("%w: unsupported decimal literal %s", errMalformed, lit.Raw)
	}
	d := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(lit.Raw)-dot-1)), nil)
	return starlark.MakeBigInt(n), starlark.MakeBigInt(d), nil
}

func negateIf(neg bool, v starlark.Int) starlark.Int {
	if !neg {
		return v
	}
	return starlark.MakeBigInt(new(big.Int).Neg(v.BigInt()))
}

// isSkippable reports whether a line carries no instruction.
func isSkippable(line string) bool {
	src := strings.TrimSpace(line)
	return src == "" || strings.HasPrefix(src, "#")
}

// lineReader parses instructions lazily from a line-oriented source.
type lineReader struct {
	p        *parser
	scanner  *bufio.Scanner
	filename string
	lineno   int
}

func newLineReader(p *parser, filename string, r io.Reader) *lineReader {
	return &lineReader{p: p, scanner: bufio.NewScanner(r), filename: filename}
}

func (lr *lineReader) next() (instruction, error) {
	for lr.scanner.Scan() {
		lr.lineno++
		line := lr.scanner.Text()
		if isSkippable(line) {
			continue
		}
		return lr.p.parseLine(lr.filename, lr.lineno, line)
	}
	if err := lr.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// chainReader reads from each reader in turn.
type chainReader struct {
	readers []instructionReader
}

func (c *chainReader) next() (instruction, error) {
	for len(c.readers) > 0 {
		in, err := c.readers[0].next()
		if errors.Is(err, io.EOF) {
			c.readers = c.readers[1:]
			continue
		}
		return in, err
	}
	return nil, io.EOF
}
