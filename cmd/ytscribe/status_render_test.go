package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"ytscribe/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Log directory", statusError, "not writable", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Log directory:", "[ERROR] not writable")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("YouTube", statusOK, "reachable", true)
	if !strings.HasPrefix(got, ansiGreen) || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected green line, got %q", got)
	}
}

func TestPreflightLines(t *testing.T) {
	results := []preflight.Result{
		{Name: "Output directory", Passed: true, Detail: "/tmp/out"},
		{Name: "Window lock", Passed: false, Detail: "held by another ytscribe window"},
	}
	lines := preflightLines(results, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "[ERROR] 1 of 2 checks failed") {
		t.Fatalf("unexpected summary %q", lines[0])
	}
	if !strings.Contains(lines[1], "[OK] /tmp/out") {
		t.Fatalf("unexpected ok line %q", lines[1])
	}
	if !strings.Contains(lines[2], "[ERROR] held by another") {
		t.Fatalf("unexpected error line %q", lines[2])
	}

	if got := preflightLines(nil, false); len(got) != 1 || !strings.Contains(got[0], "No checks ran") {
		t.Fatalf("unexpected empty rendering %v", got)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatal("expected non-file writer to disable color")
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	spec := tableSpec{
		title:   "Translation languages (1)",
		headers: []string{"Code", "Language"},
		rows:    [][]string{{"fr"}},
		aligns:  []columnAlignment{alignLeft, alignRight},
	}
	out := spec.render()
	if !strings.Contains(strings.ToLower(out), "language") || !strings.Contains(out, "fr") {
		t.Fatalf("unexpected table %q", out)
	}
	if (tableSpec{}).render() != "" {
		t.Fatal("expected empty table for no headers")
	}
}
