package repositories

import (
	"context"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
)

// JobRunRepositoryFacade persists batch idempotency records.
type JobRunRepositoryFacade interface {
	// TryInsertRunRecord atomically inserts a run record for (job, day).
	// It returns false with no error when a record for the pair already
	// exists, relying on the unique constraint rather than a read-then-write.
	TryInsertRunRecord(ctx context.Context, record domain.JobRunRecord) (bool, error)
}

// RepositoryProvider bundles the core's repositories for service wiring.
type RepositoryProvider struct {
	LoanRepo           LoanRepositoryFacade
	PaymentRepo        PaymentRepositoryFacade
	ReconciliationRepo ReconciliationRepositoryFacade
	JobRunRepo         JobRunRepositoryFacade
}
