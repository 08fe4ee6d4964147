package retro

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

// NewPattern is a candidate ledger row produced from classified validation
// errors that no existing entry matched.
type NewPattern struct {
	Category    string
	Pattern     string
	Solution    string
	Criticality models.Criticality
}

const unresolvedSolution = "Unresolved - document the fix once found"

// ExtractNewPatterns groups classified errors by error code (or the first 50
// characters of the message when no code is present), keeps one
// representative per group, drops representatives the ledger already knows,
// and infers a category and criticality for the rest. This is the bridge
// from raw validation failures to ledger growth.
func ExtractNewPatterns(errs []models.ClassifiedError, ledger Ledger) ([]NewPattern, error) {
	seen := make(map[string]models.ClassifiedError)
	var order []string
	for _, e := range errs {
		key := e.Code
		if key == "" {
			key = firstN(e.Message, 50)
		}
		if _, ok := seen[key]; !ok {
			seen[key] = e
			order = append(order, key)
		}
	}

	var patterns []NewPattern
	for _, key := range order {
		rep := seen[key]
		matched, err := ledger.Match(rep.Message)
		if err != nil {
			return nil, fmt.Errorf("checking ledger for known pattern: %w", err)
		}
		if len(matched) > 0 {
			continue
		}
		patterns = append(patterns, NewPattern{
			Category:    inferCategory(rep),
			Pattern:     patternFor(rep),
			Solution:    unresolvedSolution,
			Criticality: inferCriticality(rep.Severity),
		})
	}
	return patterns, nil
}

// patternFor chooses the stored pattern text: the error code when present
// (stable across runs), otherwise a literal message prefix.
func patternFor(e models.ClassifiedError) string {
	if e.Code != "" {
		return e.Code
	}
	return strings.TrimSpace(firstN(e.Message, 80))
}

// firstN truncates s to at most n bytes without splitting a multi-byte rune,
// so stored prefixes stay valid UTF-8.
func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func inferCategory(e models.ClassifiedError) string {
	code := strings.ToUpper(e.Code)
	msg := strings.ToLower(e.Message)
	switch {
	case strings.HasPrefix(code, "TS") || strings.Contains(msg, "type error") || strings.Contains(msg, "typeerror"):
		return models.CategoryTypeError
	case strings.Contains(msg, "lint") || strings.Contains(msg, "eslint") || strings.HasPrefix(code, "LINT"):
		return models.CategoryLint
	case strings.Contains(msg, "test") || strings.Contains(msg, "expect") || strings.Contains(msg, "assert"):
		return models.CategoryTest
	default:
		return models.CategoryRuntime
	}
}

func inferCriticality(sev models.ErrorSeverity) models.Criticality {
	switch sev {
	case models.SeverityError:
		return models.CriticalityHigh
	case models.SeverityWarning:
		return models.CriticalityLow
	default:
		return models.CriticalityMedium
	}
}
