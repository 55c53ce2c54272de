package repositories

import (
	"context"
	"time"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
)

// ReconciliationReader defines read operations for reconciliation records.
type ReconciliationReader interface {
	// FindRecordByID retrieves a reconciliation record by its identifier.
	FindRecordByID(ctx context.Context, recordID string) (*domain.ReconciliationRecord, error)

	// ListRecordsByStatus retrieves records in the given status, oldest first.
	ListRecordsByStatus(ctx context.Context, status domain.MatchStatus) ([]domain.ReconciliationRecord, error)
}

// ReconciliationWriter defines write operations for reconciliation records.
type ReconciliationWriter interface {
	// SaveRecords persists a batch of matched statement lines in one transaction.
	SaveRecords(ctx context.Context, records []domain.ReconciliationRecord) error

	// PromoteToReconciled moves a record to RECONCILED and flags its matched
	// payment as reconciled within one transaction. Returns
	// apperrors.ErrLockedRecord when the record is LOCKED.
	PromoteToReconciled(ctx context.Context, recordID string, updatedBy string, updatedAt time.Time) (*domain.ReconciliationRecord, error)

	// LockDay marks every RECONCILED record whose statement date falls on the
	// given calendar day as LOCKED and returns the number of records locked.
	LockDay(ctx context.Context, dayStart, dayEnd time.Time, updatedBy string, updatedAt time.Time) (int64, error)
}

// ReconciliationRepositoryFacade combines all reconciliation repository interfaces.
type ReconciliationRepositoryFacade interface {
	ReconciliationReader
	ReconciliationWriter
}
