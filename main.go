package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/peterh/liner"
)

const (
	historyFile = ".ratline_history"
	prompt      = "ratline> "
	banner      = `I heard you like to eval
so we put an eval in your eval
so you can eval while you eval
Ctrl+D exits. Type :names to list bindings, :quit to exit.`
)

func main() {
	showParsing := flag.Bool("show-parsing", false, "show parsing details")
	showInterpret := flag.Bool("show-interpret", false, "show statement interpretation details")
	showCodegen := flag.Bool("show-codegen", false, "show generated code")
	residual := flag.Bool("residual", false, "print the specialized program instead of running it")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [INPUT...]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "Each INPUT is a file of statements or a statement itself.\n")
		fmt.Fprintf(os.Stderr, "Without INPUT, statements are read interactively.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	var chs []channel
	for _, sel := range []struct {
		on bool
		ch channel
	}{
		{*showParsing, chanParse},
		{*showInterpret, chanInterpret},
		{*showCodegen, chanCodegen},
	} {
		if sel.on {
			chs = append(chs, sel.ch)
		}
	}
	if err := setupTracing(gologadapter.GetAdapter(), chs...); err != nil {
		fmt.Fprintf(os.Stderr, "error setting up tracing: %v\n", err)
		os.Exit(1)
	}

	if flag.NArg() == 0 {
		os.Exit(repl())
	}

	src, err := inputSource(newParser(), flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
		os.Exit(1)
	}
	if *residual {
		os.Exit(printResidual(os.Stdout, src))
	}
	os.Exit(runBatch(os.Stdout, src))
}

// inputSource treats each argument as a file of statements if it names one,
// and as literal statements otherwise.
func inputSource(p *parser, args []string) (instructionReader, error) {
	var readers []instructionReader
	for i, arg := range args {
		data, err := os.ReadFile(arg)
		switch {
		case err == nil:
			readers = append(readers, newLineReader(p, arg, strings.NewReader(string(data))))
		case errors.Is(err, fs.ErrPermission):
			return nil, err
		default:
			readers = append(readers, newLineReader(p, fmt.Sprintf("<arg %d>", i+1), strings.NewReader(arg)))
		}
	}
	return &chainReader{readers: readers}, nil
}

func runBatch(w io.Writer, src instructionReader) int {
	rs := newInterpreter().run(src)
	for rs.Next() {
		fmt.Fprintln(w, rs.Result())
	}
	if err := rs.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func printResidual(w io.Writer, src instructionReader) int {
	instrs, err := residualize(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	for _, in := range instrs {
		fmt.Fprintln(w, unparseInstruction(in))
	}
	return 0
}

func repl() int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	p := newParser()
	it := newInterpreter()
	for lineno := 1; ; lineno++ {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
			return 1
		}
		switch strings.TrimSpace(line) {
		case ":quit":
			return 0
		case ":names":
			for _, name := range it.ns.identifiers() {
				e, _ := it.ns.lookup(name)
				fmt.Printf("%s := %s\n", name, unparse(e))
			}
			continue
		}
		if isSkippable(line) {
			continue
		}
		ln.AppendHistory(line)

		in, err := p.parseLine("<stdin>", lineno, line)
		if err != nil {
			// A bad line ends a batch run, but not an interactive session.
			fmt.Fprintf(os.Stderr, "%v\n", err)
			continue
		}
		res, ok, err := it.step(in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		if ok {
			fmt.Println(res)
		}
	}
}
