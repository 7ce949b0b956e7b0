package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/odvcencio/gotag/pkg/release"
)

func TestPrompterConfirm(t *testing.T) {
	plan := &release.Plan{
		Version: release.MustParseVersion("1.0.0"),
		Entries: []release.PlanEntry{{Repo: ".", Tag: "v1.0.0"}, {Repo: "lib", Tag: "lib-1.0.0"}},
	}
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := newPrompter(strings.NewReader(tt.input), &out).confirm(plan)
		if err != nil {
			t.Fatalf("confirm(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Fatalf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "lib-1.0.0") || !strings.Contains(out.String(), "[y/N]") {
			t.Fatalf("prompt = %q", out.String())
		}
	}
}

func TestRenderTextReport(t *testing.T) {
	report := &release.Report{
		Version: "2.0.0",
		State:   release.StatePartiallyCompleted,
		Results: []release.Result{
			{Repo: ".", Tag: "v2.0.0", Status: release.StatusCreated},
			{Repo: "core", Tag: "v2.0.0", Status: release.StatusFailed, Error: "disk full"},
			{Repo: "docs", Tag: "2.0.0", Status: release.StatusSkipped},
		},
	}
	var out bytes.Buffer
	if err := renderReport(&out, formatText, report); err != nil {
		t.Fatalf("renderReport: %v", err)
	}
	text := out.String()
	for _, want := range []string{"release 2.0.0 (recursive)", "partial", "created", "disk full", "skipped", "docs"} {
		if !strings.Contains(text, want) {
			t.Fatalf("report %q does not contain %q", text, want)
		}
	}
}
