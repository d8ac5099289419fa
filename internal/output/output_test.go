package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func newTestOutput(opts Options) (*Output, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	opts.Stdout = &stdout
	opts.Stderr = &stderr
	opts.NoColor = true
	return New(opts), &stdout, &stderr
}

func TestQuietAndJSONSuppressText(t *testing.T) {
	for _, opts := range []Options{{Quiet: true}, {JSON: true}} {
		o, stdout, stderr := newTestOutput(opts)
		o.Info("info")
		o.Success("ok")
		o.Warn("warn")
		o.Print("print")
		o.Progress("Resolving", 50)
		if stdout.Len() != 0 {
			t.Fatalf("%+v: expected no stdout, got %q", opts, stdout.String())
		}
		o.Error("boom")
		if !strings.Contains(stderr.String(), "boom") {
			t.Fatalf("errors must always print, got %q", stderr.String())
		}
	}
}

func TestDebugNeedsVerbose(t *testing.T) {
	o, _, stderr := newTestOutput(Options{})
	o.Debug("hidden")
	if stderr.Len() != 0 {
		t.Fatalf("unexpected debug output: %q", stderr.String())
	}

	o, _, stderr = newTestOutput(Options{Verbose: true})
	o.Debug("shown")
	if !strings.Contains(stderr.String(), "shown") {
		t.Fatalf("expected debug output, got %q", stderr.String())
	}
}

func TestProgressLinesWhenNotInteractive(t *testing.T) {
	o, stdout, _ := newTestOutput(Options{})
	o.Progress("Resolving", 50)
	o.Progress("Resolving", 50)
	o.Progress("Resolving", 100)
	if got := stdout.String(); got != "Resolving 50%\nResolving 100%\n" {
		t.Fatalf("got %q", got)
	}
}

func TestProgressRedrawsWhenInteractive(t *testing.T) {
	o, stdout, _ := newTestOutput(Options{Interactive: true})
	o.Progress("Resolving", 25)
	o.Progress("Resolving", 100)
	got := stdout.String()
	if strings.Count(got, "\r") != 2 || !strings.HasSuffix(got, "100%\n") {
		t.Fatalf("got %q", got)
	}
}

func TestEmitJSON(t *testing.T) {
	o, stdout, _ := newTestOutput(Options{JSON: true})
	if err := o.EmitJSON(map[string]int{"resolved": 2}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if got := stdout.String(); got != "{\n  \"resolved\": 2\n}\n" {
		t.Fatalf("got %q", got)
	}
}

func TestHumanHelpers(t *testing.T) {
	t.Parallel()

	if got := Length(3*time.Minute + 5*time.Second); got != "3m 05s" {
		t.Fatalf("length: %q", got)
	}
	if got := Length(62 * time.Minute); got != "1h 02m" {
		t.Fatalf("length: %q", got)
	}
	if got := Count(12345); got != "12,345" {
		t.Fatalf("count: %q", got)
	}
	if got := Ago(time.Time{}); got != "never" {
		t.Fatalf("ago: %q", got)
	}
	if got := Ago(time.Now().Add(-3 * time.Hour)); got != "3 hours ago" {
		t.Fatalf("ago: %q", got)
	}
}
