package repositories

import (
	"context"
	"time"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PaymentReader defines read operations for payment data.
type PaymentReader interface {
	// FindPaymentByID retrieves a payment by its identifier.
	FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error)

	// FindPaymentByExternalRef retrieves a payment by its settlement reference.
	// Returns apperrors.ErrNotFound when no payment carries the reference.
	FindPaymentByExternalRef(ctx context.Context, externalRef string) (*domain.Payment, error)

	// ListPaymentsByLoanID retrieves all payments recorded against a loan,
	// oldest first.
	ListPaymentsByLoanID(ctx context.Context, loanID string) ([]domain.Payment, error)

	// FindCandidatePayments retrieves payments with the given amount whose
	// payment date falls within [from, to], for reconciliation matching.
	FindCandidatePayments(ctx context.Context, amount decimal.Decimal, from, to time.Time) ([]domain.Payment, error)
}

// PaymentWriter defines write operations for payment data.
type PaymentWriter interface {
	// SaveAllocation persists the payment, the installments it pays and the
	// loan's updated balances as one atomic transaction.
	SaveAllocation(ctx context.Context, payment domain.Payment, installments []domain.Installment, loan domain.Loan) error
}

// PaymentRepositoryFacade combines all payment-related repository interfaces.
type PaymentRepositoryFacade interface {
	PaymentReader
	PaymentWriter
}
