package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendcraft/loan_servicing_app/internal/apperrors"
	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	portsrepo "github.com/lendcraft/loan_servicing_app/internal/core/ports/repositories"
	portssvc "github.com/lendcraft/loan_servicing_app/internal/core/ports/services"
	"github.com/lendcraft/loan_servicing_app/internal/dto"
	"github.com/lendcraft/loan_servicing_app/internal/middleware"
)

// loanService covers loan intake and read access.
type loanService struct {
	loanRepo portsrepo.LoanRepositoryFacade
}

// NewLoanService creates a new LoanService.
func NewLoanService(loanRepo portsrepo.LoanRepositoryFacade) portssvc.LoanSvcFacade {
	return &loanService{loanRepo: loanRepo}
}

var _ portssvc.LoanSvcFacade = (*loanService)(nil)

// CreateLoan registers a new lead from an application event. The loan starts
// in LEAD and moves through the lifecycle via explicit actions.
func (s *loanService) CreateLoan(ctx context.Context, req dto.CreateLoanRequest, creatorUserID string) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Principal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: principal must be positive", apperrors.ErrValidation)
	}
	if req.TermMonths <= 0 {
		return nil, fmt.Errorf("%w: term must be positive", apperrors.ErrValidation)
	}
	if req.AnnualRatePercent.IsNegative() {
		return nil, fmt.Errorf("%w: annual rate must be non-negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	loan := domain.Loan{
		LoanID:            uuid.NewString(),
		CustomerRef:       req.CustomerRef,
		ProductCode:       req.ProductCode,
		Principal:         req.Principal,
		AnnualRatePercent: req.AnnualRatePercent,
		TermMonths:        req.TermMonths,
		Status:            domain.StatusLead,
		OutstandingAmount: decimal.Zero,
		Bucket:            domain.BucketCurrent,
		EscalationLevel:   domain.EscalationNone,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.loanRepo.SaveLoan(ctx, loan); err != nil {
		logger.Error("Failed to save loan", slog.String("error", err.Error()), slog.String("customer_ref", req.CustomerRef))
		return nil, fmt.Errorf("failed to save loan: %w", err)
	}

	logger.Info("Loan created", slog.String("loan_id", loan.LoanID), slog.String("product_code", loan.ProductCode))
	return &loan, nil
}

// GetLoanByID retrieves the loan header.
func (s *loanService) GetLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	return loan, nil
}

// GetLoanDetail retrieves the loan with its schedule and the earliest
// installment still carrying a balance.
func (s *loanService) GetLoanDetail(ctx context.Context, loanID string) (*dto.LoanDetailResponse, error) {
	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}

	installments, err := s.loanRepo.FindInstallmentsByLoanID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule for loan %s: %w", loanID, err)
	}

	detail := &dto.LoanDetailResponse{
		Loan:         dto.ToLoanResponse(loan),
		Installments: dto.ToInstallmentResponses(installments),
	}
	for i := range installments {
		if !installments[i].IsSettled() {
			next := dto.ToInstallmentResponse(&installments[i])
			detail.NextDue = &next
			break
		}
	}
	return detail, nil
}
