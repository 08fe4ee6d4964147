package validate

import (
	"runtime"
	"strings"
	"testing"
)

func TestRunAllPassesOnCleanCommands(t *testing.T) {
	skipOnWindows(t)
	runner := NewRunner(t.TempDir())

	summary, err := runner.RunAll(map[string]string{
		"format": "true",
		"lint":   "echo lint ok",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.Passed || len(summary.FailedChecks) != 0 {
		t.Errorf("expected pass, got %+v", summary)
	}
	if len(summary.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(summary.Results))
	}
	if !strings.Contains(summary.Results[1].Output, "lint ok") {
		t.Errorf("output not captured: %q", summary.Results[1].Output)
	}
}

func TestRunAllReportsFailuresAndKeepsGoing(t *testing.T) {
	skipOnWindows(t)
	runner := NewRunner(t.TempDir())

	summary, err := runner.RunAll(map[string]string{
		"lint": "echo bad >&2; exit 1",
		"test": "echo test ran",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Passed {
		t.Error("expected failure")
	}
	if len(summary.FailedChecks) != 1 || summary.FailedChecks[0] != "lint" {
		t.Errorf("unexpected failed checks: %v", summary.FailedChecks)
	}
	// The failing command must not stop later ones.
	if len(summary.Results) != 2 || !strings.Contains(summary.Results[1].Output, "test ran") {
		t.Errorf("later command skipped: %+v", summary.Results)
	}
	// Stderr is captured alongside stdout.
	if !strings.Contains(summary.Results[0].Output, "bad") {
		t.Errorf("stderr not captured: %q", summary.Results[0].Output)
	}
}

func TestRunAllCanonicalOrder(t *testing.T) {
	skipOnWindows(t)
	runner := NewRunner(t.TempDir())

	summary, err := runner.RunAll(map[string]string{
		"zeta":   "true",
		"build":  "true",
		"alpha":  "true",
		"format": "true",
	})
	if err != nil {
		t.Fatal(err)
	}
	var order []string
	for _, r := range summary.Results {
		order = append(order, r.Command)
	}
	want := []string{"format", "build", "alpha", "zeta"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("order %v, want %v", order, want)
	}
}

func TestRunAllSkipsEmptyCommands(t *testing.T) {
	skipOnWindows(t)
	runner := NewRunner(t.TempDir())

	summary, err := runner.RunAll(map[string]string{
		"format": "",
		"lint":   "   ",
		"test":   "true",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Results) != 1 || summary.Results[0].Command != "test" {
		t.Errorf("empty commands should be skipped: %+v", summary.Results)
	}
	if !summary.Passed {
		t.Error("skipped commands must not count as failures")
	}
}

func TestRunAllBuildsSectionedLog(t *testing.T) {
	skipOnWindows(t)
	runner := NewRunner(t.TempDir())

	summary, err := runner.RunAll(map[string]string{
		"lint": "echo one",
		"test": "echo two",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(summary.AllOutput, "=== lint ===") ||
		!strings.Contains(summary.AllOutput, "=== test ===") {
		t.Errorf("section headers missing:\n%s", summary.AllOutput)
	}
	if strings.Index(summary.AllOutput, "one") > strings.Index(summary.AllOutput, "two") {
		t.Error("sections out of order")
	}
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell commands differ on windows")
	}
}
