package models

// Criticality grades how severe a retrospective pattern is.
type Criticality string

const (
	CriticalityHigh   Criticality = "High"
	CriticalityMedium Criticality = "Medium"
	CriticalityLow    Criticality = "Low"
)

// Retrospective categories inferred from classified errors.
const (
	CategoryTypeError = "Type Error"
	CategoryLint      = "Lint"
	CategoryTest      = "Test"
	CategoryRuntime   = "Runtime"
)

// RetroEntry is one row of the retrospective ledger: a known error signature,
// its fix, and how often it has been seen. IDs are unique and monotonically
// increasing per ledger file; Count only ever increases.
type RetroEntry struct {
	ID          int         `json:"id"`
	Category    string      `json:"category"`
	Pattern     string      `json:"pattern"`
	Solution    string      `json:"solution"`
	Count       int         `json:"count"`
	Criticality Criticality `json:"criticality"`
}
