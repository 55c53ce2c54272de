package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the closed set of lifecycle states a loan can be in.
type LoanStatus string

const (
	StatusLead                 LoanStatus = "LEAD"
	StatusApplicationSubmitted LoanStatus = "APPLICATION_SUBMITTED"
	StatusCreditReview         LoanStatus = "CREDIT_REVIEW"
	StatusApproved             LoanStatus = "APPROVED"
	StatusRejected             LoanStatus = "REJECTED"
	StatusDisbursed            LoanStatus = "DISBURSED"
	StatusActive               LoanStatus = "ACTIVE"
	StatusDelinquent           LoanStatus = "DELINQUENT"
	StatusLegal                LoanStatus = "LEGAL"
	StatusClosed               LoanStatus = "CLOSED"
	StatusSettled              LoanStatus = "SETTLED"
)

// IsServiceable reports whether the loan participates in servicing batches
// (payment allocation and the daily DPD run).
func (s LoanStatus) IsServiceable() bool {
	return s == StatusActive || s == StatusDelinquent || s == StatusLegal
}

// IsTerminal reports whether the loan has reached a final state.
func (s LoanStatus) IsTerminal() bool {
	return s == StatusClosed || s == StatusSettled || s == StatusRejected
}

// Loan is the servicing core's owned representation of a lending contract.
// It is created by the application/approval collaborator and owned exclusively
// by this core once disbursed. Closed loans are terminal but never deleted.
type Loan struct {
	LoanID            string          `json:"loanID"` // Primary key (UUID)
	CustomerRef       string          `json:"customerRef"`
	ProductCode       string          `json:"productCode"`
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annualRatePercent"` // e.g. 12 means 12% p.a.
	TermMonths        int             `json:"termMonths"`
	DisbursementDate  *time.Time      `json:"disbursementDate"` // Nil until disbursed
	Status            LoanStatus      `json:"status"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"` // Sum of remaining dues across installments
	DPD               int             `json:"dpd"`
	Bucket            Bucket          `json:"bucket"`
	EscalationLevel   EscalationLevel `json:"escalationLevel"`
	AuditFields
}
