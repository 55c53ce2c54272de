package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a payment reached the business.
type PaymentMethod string

const (
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodCash         PaymentMethod = "CASH"
	MethodCheque       PaymentMethod = "CHEQUE"
	MethodGateway      PaymentMethod = "GATEWAY"
)

// PaymentStatus is the state of a recorded payment.
type PaymentStatus string

const (
	PaymentAllocated PaymentStatus = "ALLOCATED"
	PaymentReversed  PaymentStatus = "REVERSED"
)

// Payment is an immutable record of money received against a loan, together
// with its allocation breakdown. Only the Reconciled flag changes after
// allocation.
type Payment struct {
	PaymentID        string          `json:"paymentID"` // Primary key (UUID)
	LoanID           string          `json:"loanID"`    // FK -> Loan.loanID
	Amount           decimal.Decimal `json:"amount"`
	Method           PaymentMethod   `json:"method"`
	ExternalRef      string          `json:"externalRef"` // Settlement identifier, unique once allocated
	PaymentDate      time.Time       `json:"paymentDate"`
	PrincipalPortion decimal.Decimal `json:"principalPortion"`
	InterestPortion  decimal.Decimal `json:"interestPortion"`
	PenaltyPortion   decimal.Decimal `json:"penaltyPortion"`
	ExcessAmount     decimal.Decimal `json:"excessAmount"` // Unallocated remainder surfaced to the caller
	Status           PaymentStatus   `json:"status"`
	Reconciled       bool            `json:"reconciled"`
	AuditFields
}
