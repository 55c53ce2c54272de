package services

import (
	"context"
	"errors"
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
	"github.com/lendcraft/loan_servicing_app/internal/utils/dateutil"
	"github.com/lendcraft/loan_servicing_app/pkg/config"
)

// paymentService allocates incoming payments using the waterfall.
type paymentService struct {
	loanRepo    portsrepo.LoanRepositoryFacade
	paymentRepo portsrepo.PaymentRepositoryFacade
	cfg         *config.Config
	now         func() time.Time
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(loanRepo portsrepo.LoanRepositoryFacade, paymentRepo portsrepo.PaymentRepositoryFacade, cfg *config.Config) portssvc.PaymentSvcFacade {
	return &paymentService{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		cfg:         cfg,
		now:         time.Now,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// SubmitPayment validates and allocates one payment against the loan's
// schedule. Recording the payment, updating the installments it pays and
// updating the loan outstanding commit as a single repository transaction.
func (s *paymentService) SubmitPayment(ctx context.Context, loanID string, req dto.CreatePaymentRequest, submittedBy string) (*dto.PaymentResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	if req.ExternalRef == "" {
		return nil, fmt.Errorf("%w: external reference is required", apperrors.ErrValidation)
	}
	method, err := parsePaymentMethod(req.Method)
	if err != nil {
		return nil, err
	}

	today := s.now()
	daysBack := dateutil.DaysBetween(req.PaymentDate, today, s.cfg.Location)
	if daysBack < 0 {
		return nil, fmt.Errorf("%w: payment date cannot be in the future", apperrors.ErrValidation)
	}
	if daysBack > s.cfg.BackdatedWindowDays && !req.BackdateApproved {
		return nil, fmt.Errorf("%w: payment is %d days old, window is %d", apperrors.ErrApprovalRequired, daysBack, s.cfg.BackdatedWindowDays)
	}

	// Duplicate settlement reference: an identical resubmission returns the
	// original allocation; a conflicting reuse is rejected.
	existing, err := s.paymentRepo.FindPaymentByExternalRef(ctx, req.ExternalRef)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check external reference %s: %w", req.ExternalRef, err)
	}
	if existing != nil {
		if existing.LoanID == loanID && existing.Amount.Equal(req.Amount) {
			logger.Info("Idempotent payment resubmission", slog.String("external_ref", req.ExternalRef), slog.String("payment_id", existing.PaymentID))
			return &dto.PaymentResult{Payment: dto.ToPaymentResponse(existing), Duplicate: true}, nil
		}
		return nil, fmt.Errorf("%w: reference %s already allocated to payment %s", apperrors.ErrDuplicateTransaction, req.ExternalRef, existing.PaymentID)
	}

	loan, err := s.loanRepo.FindLoanByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	if !loan.Status.IsServiceable() {
		return nil, fmt.Errorf("%w: loan %s is in state %s and cannot accept payments", apperrors.ErrValidation, loanID, loan.Status)
	}

	installments, err := s.loanRepo.FindInstallmentsByLoanID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule for loan %s: %w", loanID, err)
	}

	outcome := allocateWaterfall(installments, req.Amount, penaltyPolicy{
		strategy:         s.cfg.PenaltyStrategy,
		flatAmount:       s.cfg.FlatPenaltyAmount,
		dailyRatePercent: s.cfg.DailyPenaltyRatePercent,
	}, today, s.cfg.Location, s.cfg.AllowPrepayment)

	now := today.UTC()
	payment := domain.Payment{
		PaymentID:        uuid.NewString(),
		LoanID:           loanID,
		Amount:           req.Amount,
		Method:           method,
		ExternalRef:      req.ExternalRef,
		PaymentDate:      req.PaymentDate,
		PrincipalPortion: outcome.Principal,
		InterestPortion:  outcome.Interest,
		PenaltyPortion:   outcome.Penalty,
		ExcessAmount:     outcome.Excess,
		Status:           domain.PaymentAllocated,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     submittedBy,
			LastUpdatedAt: now,
			LastUpdatedBy: submittedBy,
		},
	}

	loan.OutstandingAmount = outcome.Outstanding
	loan.LastUpdatedAt = now
	loan.LastUpdatedBy = submittedBy

	for i := range outcome.Touched {
		outcome.Touched[i].LastUpdatedAt = now
		outcome.Touched[i].LastUpdatedBy = submittedBy
	}

	if err := s.paymentRepo.SaveAllocation(ctx, payment, outcome.Touched, *loan); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost a race to a concurrent submission with the same reference.
			return nil, fmt.Errorf("%w: reference %s", apperrors.ErrDuplicateTransaction, req.ExternalRef)
		}
		logger.Error("Failed to save payment allocation", slog.String("error", err.Error()), slog.String("loan_id", loanID))
		return nil, fmt.Errorf("failed to save allocation for loan %s: %w", loanID, err)
	}

	if payment.ExcessAmount.GreaterThan(decimal.Zero) {
		logger.Warn("Payment exceeds outstanding dues",
			slog.String("loan_id", loanID),
			slog.String("payment_id", payment.PaymentID),
			slog.String("excess", payment.ExcessAmount.String()))
	}
	logger.Info("Payment allocated",
		slog.String("loan_id", loanID),
		slog.String("payment_id", payment.PaymentID),
		slog.String("amount", payment.Amount.String()))

	return &dto.PaymentResult{Payment: dto.ToPaymentResponse(&payment)}, nil
}

// GetPaymentsByLoanID lists payments recorded against a loan, oldest first.
func (s *paymentService) GetPaymentsByLoanID(ctx context.Context, loanID string) ([]dto.PaymentResponse, error) {
	if _, err := s.loanRepo.FindLoanByID(ctx, loanID); err != nil {
		return nil, fmt.Errorf("failed to find loan %s: %w", loanID, err)
	}
	payments, err := s.paymentRepo.ListPaymentsByLoanID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for loan %s: %w", loanID, err)
	}
	responses := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = dto.ToPaymentResponse(&payments[i])
	}
	return responses, nil
}

func parsePaymentMethod(method string) (domain.PaymentMethod, error) {
	switch domain.PaymentMethod(method) {
	case domain.MethodBankTransfer, domain.MethodCash, domain.MethodCheque, domain.MethodGateway:
		return domain.PaymentMethod(method), nil
	default:
		return "", fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, method)
	}
}
