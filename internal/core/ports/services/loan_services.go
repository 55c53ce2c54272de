package services

import (
	"context"
	"time"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	"github.com/lendcraft/loan_servicing_app/internal/dto"
	"github.com/shopspring/decimal"
)

// ScheduleSvcFacade generates amortization schedules. The computation is pure;
// persistence happens through the lifecycle service at disbursement.
type ScheduleSvcFacade interface {
	// GenerateSchedule builds the reducing-balance schedule for the given
	// terms. It returns apperrors.ErrValidation for non-positive principal
	// or term, or a negative rate.
	GenerateSchedule(loanID string, principal decimal.Decimal, annualRatePercent decimal.Decimal, termMonths int, startDate time.Time) ([]domain.Installment, error)
}

// LoanSvcFacade covers loan intake and read access.
type LoanSvcFacade interface {
	// CreateLoan registers a new lead from an application event.
	CreateLoan(ctx context.Context, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error)

	// GetLoanByID retrieves the loan header.
	GetLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// GetLoanDetail retrieves the loan with its schedule and next-due projection.
	GetLoanDetail(ctx context.Context, loanID string) (*dto.LoanDetailResponse, error)
}

// LifecycleSvcFacade applies lifecycle actions against the closed transition table.
type LifecycleSvcFacade interface {
	// Apply executes a lifecycle action on a loan. An action absent from the
	// transition table, or one whose precondition fails, is rejected with
	// apperrors.ErrInvalidTransition and leaves the loan unchanged.
	Apply(ctx context.Context, loanID string, action domain.LifecycleAction, actedBy string) (*domain.Loan, error)
}
