package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendcraft/loan_servicing_app/internal/apperrors"
	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	portsrepo "github.com/lendcraft/loan_servicing_app/internal/core/ports/repositories"
	portssvc "github.com/lendcraft/loan_servicing_app/internal/core/ports/services"
	"github.com/lendcraft/loan_servicing_app/internal/middleware"
	"github.com/lendcraft/loan_servicing_app/internal/utils/dateutil"
	"github.com/lendcraft/loan_servicing_app/pkg/config"
)

// lifecycleService applies lifecycle actions against the closed transition table.
type lifecycleService struct {
	loanRepo    portsrepo.LoanRepositoryFacade
	scheduleSvc portssvc.ScheduleSvcFacade
	cfg         *config.Config
	now         func() time.Time
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(loanRepo portsrepo.LoanRepositoryFacade, scheduleSvc portssvc.ScheduleSvcFacade, cfg *config.Config) portssvc.LifecycleSvcFacade {
	return &lifecycleService{
		loanRepo:    loanRepo,
		scheduleSvc: scheduleSvc,
		cfg:         cfg,
		now:         time.Now,
	}
}

var _ portssvc.LifecycleSvcFacade = (*lifecycleService)(nil)

// Apply executes a lifecycle action on a loan. An action absent from the
// transition table for the current state, or one whose precondition fails, is
// rejected without mutating the loan; the first failing precondition is named.
func (s *lifecycleService) Apply(ctx context.Context, loanID string, action domain.LifecycleAction, actedBy string) (*domain.Loan, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}

	next, ok := domain.NextState(loan.Status, action)
	if !ok {
		return nil, fmt.Errorf("%w: action %s is not allowed from state %s", apperrors.ErrInvalidTransition, action, loan.Status)
	}
	for _, pc := range domain.PreconditionsFor(action) {
		if !pc.Check(loan) {
			return nil, fmt.Errorf("%w: precondition failed: %s", apperrors.ErrInvalidTransition, pc.Name)
		}
	}

	now := s.now().UTC()
	prev := loan.Status
	loan.Status = next
	loan.LastUpdatedAt = now
	loan.LastUpdatedBy = actedBy

	if action == domain.ActionDisburse {
		if err := s.disburse(ctx, loan, now); err != nil {
			return nil, err
		}
	} else {
		if action == domain.ActionSettle {
			// Settlement writes off whatever remains.
			loan.OutstandingAmount = decimal.Zero
		}
		if err := s.loanRepo.UpdateLoan(ctx, *loan); err != nil {
			logger.Error("Failed to update loan state", slog.String("error", err.Error()), slog.String("loan_id", loanID))
			return nil, fmt.Errorf("failed to update loan %s: %w", loanID, err)
		}
	}

	logger.Info("Lifecycle transition applied",
		slog.String("loan_id", loanID),
		slog.String("action", string(action)),
		slog.String("from", string(prev)),
		slog.String("to", string(next)))
	return loan, nil
}

// disburse generates the amortization schedule and persists it together with
// the disbursed loan as one atomic write.
func (s *lifecycleService) disburse(ctx context.Context, loan *domain.Loan, now time.Time) error {
	disbursedOn := dateutil.DayStart(now, s.cfg.Location)
	installments, err := s.scheduleSvc.GenerateSchedule(loan.LoanID, loan.Principal, loan.AnnualRatePercent, loan.TermMonths, disbursedOn)
	if err != nil {
		return fmt.Errorf("failed to generate schedule for loan %s: %w", loan.LoanID, err)
	}

	outstanding := decimal.Zero
	for i := range installments {
		outstanding = outstanding.Add(installments[i].TotalDue())
	}
	loan.DisbursementDate = &disbursedOn
	loan.OutstandingAmount = outstanding

	if err := s.loanRepo.SaveSchedule(ctx, *loan, installments); err != nil {
		return fmt.Errorf("failed to save schedule for loan %s: %w", loan.LoanID, err)
	}
	return nil
}
