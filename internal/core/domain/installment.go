package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentStatus is the closed set of states for a scheduled installment.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "PENDING"
	InstallmentPartial InstallmentStatus = "PARTIAL"
	InstallmentPaid    InstallmentStatus = "PAID"
	InstallmentOverdue InstallmentStatus = "OVERDUE"
)

// Installment is one row of a loan's amortization schedule.
// Sequence numbers are contiguous starting at 1. Invariant: each paid
// component never exceeds its due component.
type Installment struct {
	InstallmentID   string            `json:"installmentID"` // Primary key (UUID)
	LoanID          string            `json:"loanID"`        // FK -> Loan.loanID
	Sequence        int               `json:"sequence"`
	DueDate         time.Time         `json:"dueDate"`
	PrincipalDue    decimal.Decimal   `json:"principalDue"`
	InterestDue     decimal.Decimal   `json:"interestDue"`
	PenaltyDue      decimal.Decimal   `json:"penaltyDue"`
	PrincipalPaid   decimal.Decimal   `json:"principalPaid"`
	InterestPaid    decimal.Decimal   `json:"interestPaid"`
	PenaltyPaid     decimal.Decimal   `json:"penaltyPaid"`
	PenaltyAssessed bool              `json:"penaltyAssessed"` // A penalty is charged at most once per installment
	Status          InstallmentStatus `json:"status"`
	AuditFields
}

// TotalDue returns principal + interest + penalty due for the installment.
func (i *Installment) TotalDue() decimal.Decimal {
	return i.PrincipalDue.Add(i.InterestDue).Add(i.PenaltyDue)
}

// TotalPaid returns the amount already allocated to the installment.
func (i *Installment) TotalPaid() decimal.Decimal {
	return i.PrincipalPaid.Add(i.InterestPaid).Add(i.PenaltyPaid)
}

// RemainingDue returns the unpaid portion of the installment.
func (i *Installment) RemainingDue() decimal.Decimal {
	return i.TotalDue().Sub(i.TotalPaid())
}

// IsSettled reports whether the installment has been fully covered.
func (i *Installment) IsSettled() bool {
	return i.RemainingDue().LessThanOrEqual(decimal.Zero)
}
