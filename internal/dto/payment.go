package dto

import (
	"time"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest is a raw payment-intent supplied by a collaborator.
type CreatePaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Method      string          `json:"method" binding:"required,paymentmethod"`
	ExternalRef string          `json:"externalRef" binding:"required"`
	PaymentDate time.Time       `json:"paymentDate" binding:"required"`
	// BackdateApproved marks that elevated approval was granted for a payment
	// dated beyond the configured backdating window.
	BackdateApproved bool `json:"backdateApproved"`
}

// PaymentResponse is the allocation outcome exposed to collaborators.
type PaymentResponse struct {
	PaymentID        string          `json:"paymentID"`
	LoanID           string          `json:"loanID"`
	Amount           decimal.Decimal `json:"amount"`
	Method           string          `json:"method"`
	ExternalRef      string          `json:"externalRef"`
	PaymentDate      time.Time       `json:"paymentDate"`
	PrincipalPortion decimal.Decimal `json:"principalPortion"`
	InterestPortion  decimal.Decimal `json:"interestPortion"`
	PenaltyPortion   decimal.Decimal `json:"penaltyPortion"`
	ExcessAmount     decimal.Decimal `json:"excessAmount"`
	Status           string          `json:"status"`
	Reconciled       bool            `json:"reconciled"`
}

// PaymentResult wraps the allocation outcome. Duplicate is true when the
// request was an idempotent resubmission and the original result is returned.
type PaymentResult struct {
	Payment   PaymentResponse `json:"payment"`
	Duplicate bool            `json:"duplicate"`
}

// ToPaymentResponse converts a domain.Payment to its API representation.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:        p.PaymentID,
		LoanID:           p.LoanID,
		Amount:           p.Amount,
		Method:           string(p.Method),
		ExternalRef:      p.ExternalRef,
		PaymentDate:      p.PaymentDate,
		PrincipalPortion: p.PrincipalPortion,
		InterestPortion:  p.InterestPortion,
		PenaltyPortion:   p.PenaltyPortion,
		ExcessAmount:     p.ExcessAmount,
		Status:           string(p.Status),
		Reconciled:       p.Reconciled,
	}
}
