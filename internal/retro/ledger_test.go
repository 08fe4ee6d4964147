package retro

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

func tempLedger(t *testing.T) (Ledger, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "retrospective.md")
	return NewLedgerAt(path), path
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	ledger, _ := tempLedger(t)

	entries, err := ledger.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty ledger, got %d entries", len(entries))
	}
}

func TestAppendAndLoadRoundTrip(t *testing.T) {
	ledger, _ := tempLedger(t)

	id, err := ledger.Append("TypeError", "TS2304", "Add the missing import", models.CriticalityHigh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 1 {
		t.Errorf("first id should be 1, got %d", id)
	}

	entries, err := ledger.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Pattern != "TS2304" || e.Solution != "Add the missing import" ||
		e.Count != 1 || e.Criticality != models.CriticalityHigh {
		t.Errorf("round trip lost data: %+v", e)
	}
}

func TestAppendEscapesPipes(t *testing.T) {
	ledger, path := tempLedger(t)

	if _, err := ledger.Append("Lint", "unexpected token |", "quote the | character", models.CriticalityLow); err != nil {
		t.Fatal(err)
	}

	entries, err := ledger.Load()
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Pattern != "unexpected token |" {
		t.Errorf("pipe not preserved: %q", entries[0].Pattern)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `\|`) {
		t.Error("pipe not escaped in the file")
	}
}

func TestAppendEscapesBackslashes(t *testing.T) {
	ledger, _ := tempLedger(t)

	// A regex pattern for a literal pipe: backslash followed by pipe. The
	// backslash must not be read back as an escape that splits the row.
	pattern := `expected \| separator`
	if _, err := ledger.Append("Lint", pattern, "quote the pipe", models.CriticalityLow); err != nil {
		t.Fatal(err)
	}

	entries, err := ledger.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Pattern != pattern {
		t.Errorf("backslash not preserved: %q", e.Pattern)
	}
	// The neighboring cells must not shift.
	if e.Solution != "quote the pipe" || e.Count != 1 || e.Criticality != models.CriticalityLow {
		t.Errorf("row fields shifted: %+v", e)
	}
}

func TestRecordMatchIncrementsCounts(t *testing.T) {
	ledger, _ := tempLedger(t)
	if _, err := ledger.Append("Test", "expected .* to equal", "Update the fixture", models.CriticalityMedium); err != nil {
		t.Fatal(err)
	}

	matched, err := ledger.RecordMatch("FAIL: expected 4 to equal 5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matched) != 1 || matched[0].Count != 2 {
		t.Fatalf("expected count bumped to 2, got %+v", matched)
	}

	// The bump must be persisted.
	entries, err := ledger.Load()
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Count != 2 {
		t.Errorf("count not persisted: %d", entries[0].Count)
	}
}

func TestMatchDoesNotMutate(t *testing.T) {
	ledger, _ := tempLedger(t)
	if _, err := ledger.Append("Runtime", "connection refused", "Start the dev server first", models.CriticalityMedium); err != nil {
		t.Fatal(err)
	}

	matched, err := ledger.Match("dial tcp: connection refused")
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 1 {
		t.Fatalf("expected a match, got %d", len(matched))
	}

	entries, _ := ledger.Load()
	if entries[0].Count != 1 {
		t.Errorf("Match must not change counts, got %d", entries[0].Count)
	}
}

func TestIDsNeverReusedAfterExternalDeletion(t *testing.T) {
	ledger, path := tempLedger(t)
	if _, err := ledger.Append("Lint", "no-unused-vars", "Remove the variable", models.CriticalityLow); err != nil {
		t.Fatal(err)
	}
	id2, err := ledger.Append("Lint", "no-console", "Use the logger", models.CriticalityLow)
	if err != nil {
		t.Fatal(err)
	}

	// Simulate a human deleting the highest-id row by hand.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, "no-console") {
			continue
		}
		kept = append(kept, line)
	}
	if err := os.WriteFile(path, []byte(strings.Join(kept, "\n")), 0o600); err != nil {
		t.Fatal(err)
	}

	id3, err := ledger.Append("Lint", "prefer-const", "Use const", models.CriticalityLow)
	if err != nil {
		t.Fatal(err)
	}
	if id3 <= id2 {
		t.Errorf("id %d reused after deletion of id %d", id3, id2)
	}
}

func TestMalformedRowsAreSkipped(t *testing.T) {
	_, path := tempLedger(t)
	content := `# Retrospective

<!-- last-id: 2 -->

| ID | Category | Pattern | Solution | Count | Criticality |
|---|---|---|---|---|---|
| 1 | Lint | no-var | Use let | 3 | Low |
| not-a-number | Lint | broken row | x | 1 | Low |
| 2 | Test | flaky | Retry | 1 | Medium |
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	entries, err := NewLedgerAt(path).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected malformed row skipped, got %d entries", len(entries))
	}
	if entries[0].ID != 1 || entries[1].ID != 2 {
		t.Errorf("unexpected entries: %+v", entries)
	}
}
