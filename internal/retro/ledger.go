package retro

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
)

// Ledger is the persistent retrospective knowledge base. All file access is
// serialized by an in-process mutex; there is no cross-process coordination
// (single-operator usage model).
type Ledger interface {
	// Load parses the ledger file. A missing file yields an empty ledger.
	Load() ([]models.RetroEntry, error)
	// Match returns every entry whose pattern is found in output, without
	// mutating the ledger.
	Match(output string) ([]models.RetroEntry, error)
	// RecordMatch behaves like Match but increments each matched entry's
	// count in place and rewrites the ledger file.
	RecordMatch(output string) ([]models.RetroEntry, error)
	// Append adds one new row with count 1 and returns its id (max+1).
	// The caller is responsible for having already confirmed via Match that
	// no equivalent pattern exists; the ledger does not de-duplicate.
	Append(category, pattern, solution string, criticality models.Criticality) (int, error)
}

type fileLedger struct {
	path string
	mu   sync.Mutex
}

// NewLedger creates a Ledger backed by the markdown table at
// <basePath>/.taskflow/ref/retrospective.md.
func NewLedger(basePath string) Ledger {
	return &fileLedger{path: filepath.Join(basePath, ".taskflow", "ref", "retrospective.md")}
}

// NewLedgerAt creates a Ledger backed by an explicit file path.
func NewLedgerAt(path string) Ledger {
	return &fileLedger{path: path}
}

const ledgerHeaderFmt = `# Retrospective

Known error patterns and their fixes. Rows are appended by the validation
workflow; counts increase each time a pattern is seen again.

<!-- last-id: %d -->

| ID | Category | Pattern | Solution | Count | Criticality |
|---|---|---|---|---|---|
`

// lastIDPattern matches the high-water id marker. It survives external row
// deletion so ids are never reused.
var lastIDPattern = regexp.MustCompile(`<!--\s*last-id:\s*(\d+)\s*-->`)

func (l *fileLedger) Load() ([]models.RetroEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, _, err := l.loadLocked()
	return entries, err
}

func (l *fileLedger) loadLocked() ([]models.RetroEntry, int, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("reading retrospective ledger: %w", err)
	}
	content := string(data)
	lastID := 0
	if m := lastIDPattern.FindStringSubmatch(content); m != nil {
		lastID, _ = strconv.Atoi(m[1])
	}
	return parseLedger(content), lastID, nil
}

// parseLedger extracts entry rows from the markdown table body. Header and
// separator rows are skipped; rows that do not parse are ignored rather than
// failing the whole load.
func parseLedger(content string) []models.RetroEntry {
	var entries []models.RetroEntry
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "|") {
			continue
		}
		if strings.Contains(trimmed, "|---") {
			continue
		}
		cells := splitRow(trimmed)
		if len(cells) < 6 {
			continue
		}
		id, err := strconv.Atoi(cells[0])
		if err != nil {
			continue // header row or malformed id
		}
		count, err := strconv.Atoi(cells[4])
		if err != nil {
			count = 1
		}
		entries = append(entries, models.RetroEntry{
			ID:          id,
			Category:    cells[1],
			Pattern:     unescapeCell(cells[2]),
			Solution:    unescapeCell(cells[3]),
			Count:       count,
			Criticality: models.Criticality(cells[5]),
		})
	}
	return entries
}

// splitRow splits a markdown table row on unescaped pipes.
func splitRow(row string) []string {
	row = strings.Trim(row, "|")
	var cells []string
	var cur strings.Builder
	escaped := false
	for _, r := range row {
		switch {
		case escaped:
			if r != '|' {
				cur.WriteRune('\\')
			}
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	cells = append(cells, strings.TrimSpace(cur.String()))
	return cells
}

// escapeCell makes arbitrary text safe as a table cell. Backslashes are
// escaped before pipes so a stored `\|` (regex for a literal pipe) survives
// the round trip instead of splitting the row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func unescapeCell(s string) string {
	s = strings.ReplaceAll(s, `\|`, "|")
	return strings.ReplaceAll(s, `\\`, `\`)
}

func (l *fileLedger) writeLocked(entries []models.RetroEntry, lastID int) error {
	for _, e := range entries {
		if e.ID > lastID {
			lastID = e.ID
		}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, ledgerHeaderFmt, lastID)
	for _, e := range entries {
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %d | %s |\n",
			e.ID, escapeCell(e.Category), escapeCell(e.Pattern),
			escapeCell(e.Solution), e.Count, e.Criticality)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}
	if err := os.WriteFile(l.path, []byte(sb.String()), 0o600); err != nil {
		return fmt.Errorf("writing retrospective ledger: %w", err)
	}
	return nil
}

func matchEntries(entries []models.RetroEntry, output string) []int {
	var idx []int
	for i, e := range entries {
		if NewMatcher(e.Pattern).Matches(output) {
			idx = append(idx, i)
		}
	}
	return idx
}

func (l *fileLedger) Match(output string) ([]models.RetroEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, _, err := l.loadLocked()
	if err != nil {
		return nil, err
	}
	var matched []models.RetroEntry
	for _, i := range matchEntries(entries, output) {
		matched = append(matched, entries[i])
	}
	return matched, nil
}

func (l *fileLedger) RecordMatch(output string) ([]models.RetroEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, lastID, err := l.loadLocked()
	if err != nil {
		return nil, err
	}
	idx := matchEntries(entries, output)
	if len(idx) == 0 {
		return nil, nil
	}
	var matched []models.RetroEntry
	for _, i := range idx {
		entries[i].Count++
		matched = append(matched, entries[i])
	}
	if err := l.writeLocked(entries, lastID); err != nil {
		return nil, err
	}
	return matched, nil
}

func (l *fileLedger) Append(category, pattern, solution string, criticality models.Criticality) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, lastID, err := l.loadLocked()
	if err != nil {
		return 0, err
	}
	// Next id is one past both the highest row id and the high-water marker,
	// so ids stay strictly increasing even when rows are removed externally.
	nextID := lastID + 1
	for _, e := range entries {
		if e.ID >= nextID {
			nextID = e.ID + 1
		}
	}
	entries = append(entries, models.RetroEntry{
		ID:          nextID,
		Category:    category,
		Pattern:     pattern,
		Solution:    solution,
		Count:       1,
		Criticality: criticality,
	})
	if err := l.writeLocked(entries, nextID); err != nil {
		return 0, err
	}
	return nextID, nil
}
