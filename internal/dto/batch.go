package dto

import "time"

// LoanFailure records a single loan that failed during a batch pass.
type LoanFailure struct {
	LoanID string `json:"loanID"`
	Error  string `json:"error"`
}

// DPDRunSummary is the result of one daily DPD/bucket batch run.
// Skipped is true when a run record already existed for the day and the
// batch produced no side effects.
type DPDRunSummary struct {
	RunDate          time.Time     `json:"runDate"`
	Skipped          bool          `json:"skipped"`
	Processed        int           `json:"processed"`
	BucketChanges    int           `json:"bucketChanges"`
	LegalCasesOpened int           `json:"legalCasesOpened"`
	Failures         []LoanFailure `json:"failures,omitempty"`
}
