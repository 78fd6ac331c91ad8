package main

import (
	"strings"
	"testing"
)

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]tableColumn{{title: "Quota"}, {title: "Value", right: true}},
		[][]string{{"Episodes"}, {"Minutes", "42"}},
	)
	if !strings.Contains(out, "Episodes") || !strings.Contains(out, "42") {
		t.Fatalf("missing cell content:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	if len(lines) < 4 {
		t.Fatalf("expected bordered table, got:\n%s", out)
	}
	width := len([]rune(lines[0]))
	for _, line := range lines {
		if len([]rune(line)) != width {
			t.Fatalf("ragged table output:\n%s", out)
		}
	}
}

func TestRenderTableWrapsWideColumns(t *testing.T) {
	long := strings.Repeat("x", 200)
	out := renderTable([]tableColumn{{title: "Context", width: 24}}, [][]string{{long}})
	if strings.Contains(out, strings.Repeat("x", 30)) {
		t.Fatalf("wide cell was not wrapped:\n%s", out)
	}
	if strings.Count(out, "x") != 200 {
		t.Fatalf("wrapped cell lost content:\n%s", out)
	}
}

func TestRenderTableWithoutColumns(t *testing.T) {
	if out := renderTable(nil, nil); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestRenderStatusLine(t *testing.T) {
	plain := renderStatusLine("Daemon", statusOK, "running", false)
	if !strings.Contains(plain, "Daemon:") || !strings.Contains(plain, "[OK] running") {
		t.Fatalf("unexpected line: %q", plain)
	}
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("plain output must not carry color codes: %q", plain)
	}
	colored := renderStatusLine("Daemon", statusError, "stopped", true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("expected red wrapping: %q", colored)
	}
}
