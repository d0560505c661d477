package main

import (
	"fmt"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// channel names a debug output stream. Channels are purely observational.
type channel uint8

const (
	chanParse channel = iota
	chanInterpret
	chanCodegen
)

func (ch channel) String() string {
	switch ch {
	case chanParse:
		return "parsing"
	case chanInterpret:
		return "interpretation"
	case chanCodegen:
		return "code-generation"
	}
	return "<unknown channel>"
}

// tracer maps a channel onto one of the global schuko tracers.
func tracer(ch channel) tracing.Trace {
	switch ch {
	case chanParse:
		return gtrace.SyntaxTracer
	case chanInterpret:
		return gtrace.InterpreterTracer
	default:
		return gtrace.CoreTracer
	}
}

func debugEnabled(ch channel) bool {
	return tracer(ch).GetTraceLevel() >= tracing.LevelDebug
}

func debugf(ch channel, format string, args ...interface{}) {
	if !debugEnabled(ch) {
		return
	}
	tracer(ch).Debugf("%-15s: %s", ch, fmt.Sprintf(format, args...))
}

// setupTracing installs tracers created by adapter and raises the given
// channels to debug level. All other tracers are muted.
func setupTracing(adapter tracing.Adapter, chs ...channel) error {
	if err := gtrace.CreateTracers(adapter); err != nil {
		return err
	}
	gtrace.Mute()
	for _, ch := range chs {
		tracer(ch).SetTraceLevel(tracing.LevelDebug)
	}
	return nil
}
