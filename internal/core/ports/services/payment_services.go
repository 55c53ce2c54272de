package services

import (
	"context"

	"github.com/lendcraft/loan_servicing_app/internal/dto"
)

// PaymentSvcFacade allocates incoming payments against a loan's schedule.
type PaymentSvcFacade interface {
	// SubmitPayment validates and allocates one payment using the waterfall.
	// A resubmission with an identical external reference, loan and amount
	// returns the original result with Duplicate set; a conflicting reuse of
	// the reference returns apperrors.ErrDuplicateTransaction.
	SubmitPayment(ctx context.Context, loanID string, req dto.CreatePaymentRequest, submittedBy string) (*dto.PaymentResult, error)

	// GetPaymentsByLoanID lists payments recorded against a loan.
	GetPaymentsByLoanID(ctx context.Context, loanID string) ([]dto.PaymentResponse, error)
}
