package services

import (
	"context"
	"time"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	"github.com/lendcraft/loan_servicing_app/internal/dto"
)

// ReconciliationSvcFacade matches bank-statement lines against recorded payments.
type ReconciliationSvcFacade interface {
	// IngestStatementBatch matches each line in tier priority order
	// (EXACT, SEMI, LOOSE) and persists the resulting records.
	IngestStatementBatch(ctx context.Context, lines []domain.StatementLine, submittedBy string) (*dto.ReconciliationBatchSummary, error)

	// ConfirmRecord promotes a MATCHED/REVIEW/FLAG record to RECONCILED.
	ConfirmRecord(ctx context.Context, recordID string, confirmedBy string) (*dto.ReconciliationRecordResponse, error)

	// LockDay marks all RECONCILED records with a statement date on the given
	// calendar day as LOCKED and returns how many were locked.
	LockDay(ctx context.Context, day time.Time, lockedBy string) (int64, error)

	// ListReviewQueue returns records awaiting human confirmation.
	ListReviewQueue(ctx context.Context) ([]dto.ReconciliationRecordResponse, error)
}
