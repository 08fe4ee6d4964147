package retro

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

func TestExtractGroupsByCode(t *testing.T) {
	ledger, _ := tempLedger(t)
	errs := []models.ClassifiedError{
		{Code: "TS2304", Message: "Cannot find name 'foo'", Severity: models.SeverityError},
		{Code: "TS2304", Message: "Cannot find name 'bar'", Severity: models.SeverityError},
		{Code: "TS2345", Message: "Argument of type 'string'", Severity: models.SeverityError},
	}

	patterns, err := ExtractNewPatterns(errs, ledger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("expected one pattern per code, got %d", len(patterns))
	}
	if patterns[0].Pattern != "TS2304" || patterns[1].Pattern != "TS2345" {
		t.Errorf("patterns should be the error codes: %+v", patterns)
	}
}

func TestExtractSkipsKnownPatterns(t *testing.T) {
	ledger, _ := tempLedger(t)
	if _, err := ledger.Append("TypeError", "TS2304", "Add the missing import", models.CriticalityHigh); err != nil {
		t.Fatal(err)
	}

	errs := []models.ClassifiedError{
		{Code: "TS2304", Message: "error TS2304: Cannot find name 'foo'", Severity: models.SeverityError},
	}
	patterns, err := ExtractNewPatterns(errs, ledger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != 0 {
		t.Errorf("known pattern should not be re-extracted: %+v", patterns)
	}
}

func TestExtractInfersCategoryAndCriticality(t *testing.T) {
	ledger, _ := tempLedger(t)
	errs := []models.ClassifiedError{
		{Code: "TS2304", Message: "Cannot find name 'foo'", Severity: models.SeverityError},
		{Message: "eslint: no-unused-vars", Severity: models.SeverityWarning},
		{Message: "expect(received).toBe(expected)", Severity: models.SeverityInfo},
	}

	patterns, err := ExtractNewPatterns(errs, ledger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != 3 {
		t.Fatalf("expected 3 patterns, got %d", len(patterns))
	}
	if patterns[0].Category != models.CategoryTypeError || patterns[0].Criticality != models.CriticalityHigh {
		t.Errorf("TS error misclassified: %+v", patterns[0])
	}
	if patterns[1].Category != models.CategoryLint || patterns[1].Criticality != models.CriticalityLow {
		t.Errorf("lint warning misclassified: %+v", patterns[1])
	}
	if patterns[2].Category != models.CategoryTest || patterns[2].Criticality != models.CriticalityMedium {
		t.Errorf("test failure misclassified: %+v", patterns[2])
	}
}

func TestExtractTruncatesOnRuneBoundary(t *testing.T) {
	ledger, _ := tempLedger(t)
	// 40 three-byte runes = 120 bytes; the 80-byte cut lands mid-rune.
	msg := strings.Repeat("日", 40)
	errs := []models.ClassifiedError{
		{Message: msg, Severity: models.SeverityError},
	}

	patterns, err := ExtractNewPatterns(errs, ledger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(patterns))
	}
	p := patterns[0].Pattern
	if !utf8.ValidString(p) {
		t.Errorf("truncation split a rune: %q", p)
	}
	if len(p) > 80 {
		t.Errorf("pattern prefix exceeds 80 bytes: %d", len(p))
	}
	if !strings.HasPrefix(msg, p) {
		t.Errorf("pattern is not a prefix of the message: %q", p)
	}
}
