package main

import (
	"errors"
	"io"
	"strings"
	"testing"
)

type sliceReader struct {
	instrs []instruction
}

// instructions returns a reader over a fixed instruction list.
func instructions(instrs ...instruction) instructionReader {
	return &sliceReader{instrs: instrs}
}

func (r *sliceReader) next() (instruction, error) {
	if len(r.instrs) == 0 {
		return nil, io.EOF
	}
	in := r.instrs[0]
	r.instrs = r.instrs[1:]
	return in, nil
}

// runLines runs a program given as source lines and collects its results.
func runLines(t *testing.T, lines ...string) ([]string, error) {
	t.Helper()
	src := newLineReader(newParser(), "test", strings.NewReader(strings.Join(lines, "\n")))
	var out []string
	rs := newInterpreter().run(src)
	for rs.Next() {
		out = append(out, rs.Result().String())
	}
	return out, rs.Err()
}

func TestEvaluateLiterals(t *testing.T) {
	for _, test := range []struct {
		src  string
		want string
	}{
		{">>> 3", "3"},
		{">>> -4", "-4"},
		{">>> 3:4", "3/4"},
		{">>> 3 : 4", "3/4"},
		{">>> 9:12", "3/4"},
		{">>> -9:12", "-3/4"},
		{">>> 9.12", "228/25"},
		{">>> 3/4", "3/4"},
		{">>> 3*4", "12"},
		{">>> 3-4", "-1"},
		{">>> 8:4", "2"},
		{">>> 1:3 + 2:3", "1"},
		{">>> 123456789012345678901234567890 * 10", "1234567890123456789012345678900"},
		{">>> 010 + 1", "11"},
		{">>> 0:010", "0"},
	} {
		got, err := runLines(t, test.src)
		if err != nil {
			t.Fatalf("%s: %v", test.src, err)
		}
		if len(got) != 1 || got[0] != test.want {
			t.Errorf("%s = %v, want %s", test.src, got, test.want)
		}
	}
}

func TestRunProgram(t *testing.T) {
	for _, test := range []struct {
		name  string
		lines []string
		want  []string
	}{
		{
			name:  "forward reference",
			lines: []string{"b := a + 2", "a := 30 + 10", ">>> b + a"},
			want:  []string{"82"},
		},
		{
			name:  "failure isolation",
			lines: []string{">>> nope + 1", ">>> 2 * 3"},
			want:  []string{"NameError: name 'nope' is not defined", "6"},
		},
		{
			name:  "division by zero",
			lines: []string{"z := 1 - 1", ">>> 5 / z", ">>> 5:0", ">>> z"},
			want:  []string{"ZeroDivisionError: division by zero", "ZeroDivisionError: division by zero", "0"},
		},
		{
			name:  "recursion",
			lines: []string{"a := a + 1", ">>> a", ">>> 1"},
			want:  []string{"RecursionError: name 'a' is defined in terms of itself", "1"},
		},
		{
			name:  "persistent namespace",
			lines: []string{"x := 1:2", ">>> x", "y := x * 4", ">>> x + y"},
			want:  []string{"1/2", "5/2"},
		},
		{
			name:  "bind-time specialization",
			lines: []string{"a := 1", "b := a + 1", "a := 10", ">>> b"},
			want:  []string{"2"},
		},
		{
			name:  "late binding of free names",
			lines: []string{"b := a * 2", "a := 1", ">>> b", "a := 5", ">>> b"},
			want:  []string{"2", "10"},
		},
		{
			name:  "comments and blank lines",
			lines: []string{"# setup", "", "a := 2 # two", "   ", ">>> a * a"},
			want:  []string{"4"},
		},
		{
			name:  "keywords as names",
			lines: []string{"in := 3", "or := in * 2", ">>> or - in"},
			want:  []string{"3"},
		},
		{
			name:  "no evaluations",
			lines: []string{"a := 1", "b := 2"},
			want:  nil,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, err := runLines(t, test.lines...)
			if err != nil {
				t.Fatal(err)
			}
			if !equalStrings(got, test.want) {
				t.Errorf("got %q, want %q", got, test.want)
			}
		})
	}
}

func TestRunStopsAtMalformedLine(t *testing.T) {
	got, err := runLines(t, ">>> 1", "oops", ">>> 2")
	if !equalStrings(got, []string{"1"}) {
		t.Errorf("results = %q, want [1]", got)
	}
	if !errors.Is(err, errMalformed) {
		t.Fatalf("err = %v, want malformed source", err)
	}
	if !strings.HasPrefix(err.Error(), "test:2:") {
		t.Errorf("err = %q, want a test:2: prefix", err)
	}
}

type countingReader struct {
	instructionReader
	reads int
}

func (c *countingReader) next() (instruction, error) {
	c.reads++
	return c.instructionReader.next()
}

func TestRunIsLazy(t *testing.T) {
	p := newParser()
	var instrs []instruction
	for _, line := range []string{"a := 1", ">>> a", ">>> a + 1", ">>> a + 2"} {
		in, err := p.parseInstruction(line)
		if err != nil {
			t.Fatal(err)
		}
		instrs = append(instrs, in)
	}
	src := &countingReader{instructionReader: instructions(instrs...)}
	rs := newInterpreter().run(src)
	if src.reads != 0 {
		t.Fatalf("run read %d instructions before Next", src.reads)
	}
	if !rs.Next() {
		t.Fatal(rs.Err())
	}
	if src.reads != 2 {
		t.Errorf("first result read %d instructions, want 2", src.reads)
	}
	if !rs.Next() || rs.Result().String() != "2" {
		t.Errorf("second result = %v", rs.Result())
	}
	if src.reads != 3 {
		t.Errorf("second result read %d instructions, want 3", src.reads)
	}
}

type bogusInstruction struct{}

func (bogusInstruction) isInstruction() {}

func TestUnknownInstructionIsFatal(t *testing.T) {
	for _, in := range []instruction{nil, bogusInstruction{}} {
		rs := newInterpreter().run(instructions(&evaluation{expr: integer(1)}, in, &evaluation{expr: integer(2)}))
		var got []string
		for rs.Next() {
			got = append(got, rs.Result().String())
		}
		if !equalStrings(got, []string{"1"}) {
			t.Errorf("results = %q, want [1]", got)
		}
		if err := rs.Err(); !errors.Is(err, errInternal) {
			t.Errorf("err = %v, want internal error", err)
		}
	}
}

func TestResultsAfterEnd(t *testing.T) {
	rs := newInterpreter().run(instructions())
	if rs.Next() || rs.Next() {
		t.Errorf("Next returned true on an empty program")
	}
	if rs.Err() != nil {
		t.Errorf("err = %v", rs.Err())
	}
}

func TestTracingDoesNotChangeResults(t *testing.T) {
	lines := []string{
		"b := a + 2",
		"a := 30 + 10",
		">>> b + a",
		">>> 9.12 * c",
		"c := 1:2",
		">>> (c + 1) / 0",
		">>> c * 4",
	}
	plain, err := runLines(t, lines...)
	if err != nil {
		t.Fatal(err)
	}
	traceAll(t)
	traced, err := runLines(t, lines...)
	if err != nil {
		t.Fatal(err)
	}
	if !equalStrings(plain, traced) {
		t.Errorf("traced run = %q, plain run = %q", traced, plain)
	}
}
