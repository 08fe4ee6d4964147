package models

// CommandResult is the outcome of one configured validation command.
type CommandResult struct {
	Command string `json:"command"`
	Passed  bool   `json:"passed"`
	Output  string `json:"output"`
}

// ValidationSummary is the ephemeral result of one validation run. It is not
// persisted except as a small last-status snapshot keyed by task id.
type ValidationSummary struct {
	Passed       bool            `json:"passed"`
	Results      []CommandResult `json:"results"`
	FailedChecks []string        `json:"failedChecks"`
	AllOutput    string          `json:"-"`
}

// ErrorSeverity grades a classified error line.
type ErrorSeverity string

const (
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
	SeverityInfo    ErrorSeverity = "info"
)

// ClassifiedError is one error extracted from raw validation output, the
// bridge between the log classifier and the retrospective ledger.
type ClassifiedError struct {
	Code     string
	Message  string
	Severity ErrorSeverity
	Source   string
}
