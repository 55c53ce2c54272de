package domain

import "time"

// LegalCaseStatus is the state of a legal escalation case.
type LegalCaseStatus string

const (
	LegalCaseOpen   LegalCaseStatus = "OPEN"
	LegalCaseClosed LegalCaseStatus = "CLOSED"
)

// LegalCase records a loan's escalation to legal action. At most one case
// exists per loan, enforced by a unique constraint on LoanID; repeated daily
// runs observing the same condition must not create another.
type LegalCase struct {
	CaseID     string          `json:"caseID"` // Primary key (UUID)
	LoanID     string          `json:"loanID"` // Unique FK -> Loan.loanID
	DPDAtEntry int             `json:"dpdAtEntry"`
	Status     LegalCaseStatus `json:"status"`
	OpenedAt   time.Time       `json:"openedAt"`
}
