package main

import (
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// traceAll routes every debug channel into t.Log for the rest of the test.
func traceAll(t *testing.T) {
	t.Helper()
	if err := setupTracing(gotestingadapter.GetAdapter(t), chanParse, chanInterpret, chanCodegen); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = gtrace.CreateTracers(func() tracing.Trace { return gtrace.NoOpTrace })
	})
}

func TestSetupTracingSelectsChannels(t *testing.T) {
	if err := setupTracing(gotestingadapter.GetAdapter(t), chanCodegen); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = gtrace.CreateTracers(func() tracing.Trace { return gtrace.NoOpTrace })
	})
	for _, test := range []struct {
		ch   channel
		want bool
	}{
		{chanParse, false},
		{chanInterpret, false},
		{chanCodegen, true},
	} {
		if got := debugEnabled(test.ch); got != test.want {
			t.Errorf("%s enabled = %v, want %v", test.ch, got, test.want)
		}
	}
}

func TestChannelNames(t *testing.T) {
	for ch, want := range map[channel]string{
		chanParse:     "parsing",
		chanInterpret: "interpretation",
		chanCodegen:   "code-generation",
	} {
		if got := ch.String(); got != want {
			t.Errorf("channel %d = %q, want %q", ch, got, want)
		}
	}
}
