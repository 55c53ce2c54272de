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

// Matching windows for the SEMI and LOOSE tiers, in days either side of the
// statement's transaction date. EXACT uses the SEMI window plus the reference.
const (
	semiWindowDays  = 1
	looseWindowDays = 2
)

// reconciliationService matches bank-statement lines against recorded payments.
type reconciliationService struct {
	reconRepo   portsrepo.ReconciliationRepositoryFacade
	paymentRepo portsrepo.PaymentRepositoryFacade
	cfg         *config.Config
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(reconRepo portsrepo.ReconciliationRepositoryFacade, paymentRepo portsrepo.PaymentRepositoryFacade, cfg *config.Config) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		reconRepo:   reconRepo,
		paymentRepo: paymentRepo,
		cfg:         cfg,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// IngestStatementBatch matches each statement line in strict tier priority,
// stopping at the first tier that succeeds:
//
//	EXACT: reference + amount + date within ±1 day  -> MATCHED
//	SEMI:  amount + date within ±1 day              -> REVIEW
//	LOOSE: amount + date within ±2 days             -> FLAG
//	otherwise                                       -> UNMATCHED
//
// A payment is consumed by at most one line per batch.
func (s *reconciliationService) IngestStatementBatch(ctx context.Context, lines []domain.StatementLine, submittedBy string) (*dto.ReconciliationBatchSummary, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: statement batch is empty", apperrors.ErrValidation)
	}
	for i, line := range lines {
		if line.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: line %d amount must be positive", apperrors.ErrValidation, i+1)
		}
		if line.TransactionDate.IsZero() {
			return nil, fmt.Errorf("%w: line %d transaction date is required", apperrors.ErrValidation, i+1)
		}
	}

	batchID := uuid.NewString()
	now := time.Now().UTC()
	usedPayments := make(map[string]bool)
	records := make([]domain.ReconciliationRecord, 0, len(lines))
	summary := &dto.ReconciliationBatchSummary{BatchID: batchID, Total: len(lines)}

	for _, line := range lines {
		record := domain.ReconciliationRecord{
			RecordID:        uuid.NewString(),
			BatchID:         batchID,
			Amount:          line.Amount,
			ExternalRef:     line.ExternalRef,
			TransactionDate: line.TransactionDate,
			Narration:       line.Narration,
			Status:          domain.MatchUnmatched,
			Tier:            domain.TierNone,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     submittedBy,
				LastUpdatedAt: now,
				LastUpdatedBy: submittedBy,
			},
		}

		payment, tier, err := s.matchLine(ctx, line, usedPayments)
		if err != nil {
			return nil, err
		}
		if payment != nil {
			usedPayments[payment.PaymentID] = true
			record.MatchedPaymentID = payment.PaymentID
			record.Tier = tier
			switch tier {
			case domain.TierExact:
				record.Status = domain.MatchMatched
				summary.Matched++
			case domain.TierSemi:
				record.Status = domain.MatchReview
				summary.Review++
			case domain.TierLoose:
				record.Status = domain.MatchFlag
				summary.Flagged++
			}
		} else {
			summary.Unmatched++
		}
		records = append(records, record)
	}

	if err := s.reconRepo.SaveRecords(ctx, records); err != nil {
		logger.Error("Failed to save reconciliation batch", slog.String("error", err.Error()), slog.String("batch_id", batchID))
		return nil, fmt.Errorf("failed to save reconciliation batch %s: %w", batchID, err)
	}

	summary.Records = dto.ToReconciliationRecordResponses(records)
	logger.Info("Statement batch ingested",
		slog.String("batch_id", batchID),
		slog.Int("total", summary.Total),
		slog.Int("matched", summary.Matched),
		slog.Int("review", summary.Review),
		slog.Int("flagged", summary.Flagged),
		slog.Int("unmatched", summary.Unmatched))
	return summary, nil
}

// matchLine attempts the tiers in priority order and returns the first hit.
func (s *reconciliationService) matchLine(ctx context.Context, line domain.StatementLine, used map[string]bool) (*domain.Payment, domain.MatchTier, error) {
	if line.ExternalRef != "" {
		payment, err := s.paymentRepo.FindPaymentByExternalRef(ctx, line.ExternalRef)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, domain.TierNone, fmt.Errorf("failed to look up reference %s: %w", line.ExternalRef, err)
		}
		if payment != nil && !used[payment.PaymentID] && !payment.Reconciled &&
			payment.Amount.Equal(line.Amount) &&
			withinDays(payment.PaymentDate, line.TransactionDate, semiWindowDays, s.cfg.Location) {
			return payment, domain.TierExact, nil
		}
	}

	if payment, err := s.findCandidate(ctx, line, semiWindowDays, used); err != nil {
		return nil, domain.TierNone, err
	} else if payment != nil {
		return payment, domain.TierSemi, nil
	}

	if payment, err := s.findCandidate(ctx, line, looseWindowDays, used); err != nil {
		return nil, domain.TierNone, err
	} else if payment != nil {
		return payment, domain.TierLoose, nil
	}

	return nil, domain.TierNone, nil
}

// findCandidate returns the first unconsumed, unreconciled payment matching
// the line's amount within the given day window.
func (s *reconciliationService) findCandidate(ctx context.Context, line domain.StatementLine, windowDays int, used map[string]bool) (*domain.Payment, error) {
	from := dateutil.DayStart(line.TransactionDate, s.cfg.Location).AddDate(0, 0, -windowDays)
	to := dateutil.DayStart(line.TransactionDate, s.cfg.Location).AddDate(0, 0, windowDays+1)

	candidates, err := s.paymentRepo.FindCandidatePayments(ctx, line.Amount, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidate payments: %w", err)
	}
	for i := range candidates {
		if used[candidates[i].PaymentID] || candidates[i].Reconciled {
			continue
		}
		return &candidates[i], nil
	}
	return nil, nil
}

// withinDays reports whether two dates fall within the given number of whole
// calendar days of each other in the business timezone.
func withinDays(a, b time.Time, days int, loc *time.Location) bool {
	diff := dateutil.DaysBetween(a, b, loc)
	if diff < 0 {
		diff = -diff
	}
	return diff <= days
}

// ConfirmRecord promotes a MATCHED/REVIEW/FLAG record to RECONCILED and flags
// the matched payment, in one transaction.
func (s *reconciliationService) ConfirmRecord(ctx context.Context, recordID string, confirmedBy string) (*dto.ReconciliationRecordResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	record, err := s.reconRepo.FindRecordByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to find reconciliation record %s: %w", recordID, err)
	}
	if record.Status == domain.MatchLocked {
		return nil, fmt.Errorf("%w: record %s", apperrors.ErrLockedRecord, recordID)
	}
	if !record.Status.CanPromote() {
		return nil, fmt.Errorf("%w: record %s in status %s cannot be reconciled", apperrors.ErrValidation, recordID, record.Status)
	}

	promoted, err := s.reconRepo.PromoteToReconciled(ctx, recordID, confirmedBy, time.Now().UTC())
	if err != nil {
		logger.Error("Failed to promote reconciliation record", slog.String("error", err.Error()), slog.String("record_id", recordID))
		return nil, fmt.Errorf("failed to promote record %s: %w", recordID, err)
	}

	logger.Info("Reconciliation record confirmed", slog.String("record_id", recordID), slog.String("payment_id", promoted.MatchedPaymentID))
	resp := dto.ToReconciliationRecordResponse(promoted)
	return &resp, nil
}

// LockDay marks every RECONCILED record with a statement date on the given
// business-timezone calendar day as LOCKED.
func (s *reconciliationService) LockDay(ctx context.Context, day time.Time, lockedBy string) (int64, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	dayStart := dateutil.DayStart(day, s.cfg.Location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	locked, err := s.reconRepo.LockDay(ctx, dayStart, dayEnd, lockedBy, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to lock day %s: %w", dayStart.Format("2006-01-02"), err)
	}

	logger.Info("Reconciliation day locked", slog.Time("day", dayStart), slog.Int64("records_locked", locked))
	return locked, nil
}

// ListReviewQueue returns records awaiting human confirmation, REVIEW before FLAG.
func (s *reconciliationService) ListReviewQueue(ctx context.Context) ([]dto.ReconciliationRecordResponse, error) {
	review, err := s.reconRepo.ListRecordsByStatus(ctx, domain.MatchReview)
	if err != nil {
		return nil, fmt.Errorf("failed to list review records: %w", err)
	}
	flagged, err := s.reconRepo.ListRecordsByStatus(ctx, domain.MatchFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to list flagged records: %w", err)
	}
	return dto.ToReconciliationRecordResponses(append(review, flagged...)), nil
}
