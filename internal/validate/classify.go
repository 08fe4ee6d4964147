// Package validate executes configured validation commands and turns their
// raw, noisy output into short, deduplicated, actionable summaries.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

// maxSummaryLines caps the emitted error summary; one truncation marker line
// is appended when the cap is hit.
const maxSummaryLines = 50

const truncationMarker = "...output truncated"

// errorIndicators are the case-insensitive substrings that mark a line as
// error-bearing.
var errorIndicators = []string{
	"error",
	"fail",
	"typeerror:",
	"syntaxerror:",
	"cannot find",
	"not found",
	"err!",
	"warning:",
	"✗",
	"✖",
	"×",
}

// isErrorLine reports whether a line matches any error indicator.
func isErrorLine(line string) bool {
	lower := strings.ToLower(line)
	for _, ind := range errorIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// ExtractErrorSummary scans raw command output line by line for
// error-indicator lines, keeps one line of leading and two lines of trailing
// context around each, deduplicates identical lines (first occurrence wins),
// and caps the result at maxSummaryLines plus a single truncation marker.
// When nothing matches, a fixed fallback naming commandLabel is returned so
// callers always get actionable text.
func ExtractErrorSummary(rawOutput, commandLabel string) string {
	lines := strings.Split(rawOutput, "\n")

	include := make([]bool, len(lines))
	matchedAny := false
	for i, line := range lines {
		if !isErrorLine(line) {
			continue
		}
		matchedAny = true
		for j := i - 1; j <= i+2; j++ {
			if j >= 0 && j < len(lines) {
				include[j] = true
			}
		}
	}

	if !matchedAny {
		return fmt.Sprintf("No specific errors extracted for %s. Review the full log for details.", commandLabel)
	}

	seen := make(map[string]struct{})
	var out []string
	truncated := false
	for i, line := range lines {
		if !include[i] {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		if len(out) >= maxSummaryLines {
			truncated = true
			break
		}
		out = append(out, line)
	}
	if truncated {
		out = append(out, truncationMarker)
	}
	return strings.Join(out, "\n")
}

// codePattern matches tool error codes such as TS2304, E0308, ESLINT101.
var codePattern = regexp.MustCompile(`\b([A-Z]{1,10}[0-9]{2,5})\b`)

// ClassifyErrors parses error-indicator lines into structured errors for the
// retrospective ledger's pattern extraction.
func ClassifyErrors(rawOutput, source string) []models.ClassifiedError {
	var errs []models.ClassifiedError
	for _, line := range strings.Split(rawOutput, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || !isErrorLine(trimmed) {
			continue
		}
		code := ""
		if m := codePattern.FindStringSubmatch(trimmed); m != nil {
			code = m[1]
		}
		errs = append(errs, models.ClassifiedError{
			Code:     code,
			Message:  trimmed,
			Severity: severityOf(trimmed),
			Source:   source,
		})
	}
	return errs
}

func severityOf(line string) models.ErrorSeverity {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "error") || strings.Contains(lower, "fail") ||
		strings.Contains(lower, "✗") || strings.Contains(lower, "✖"):
		return models.SeverityError
	case strings.Contains(lower, "warning"):
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}
