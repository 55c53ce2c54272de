package repositories

import (
	"context"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
)

// LoanReader defines read operations for loan data.
type LoanReader interface {
	// FindLoanByID retrieves a specific loan by its unique identifier.
	FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error)

	// ListServiceableLoans retrieves all loans in a servicing state
	// (ACTIVE, DELINQUENT or LEGAL) for batch processing.
	ListServiceableLoans(ctx context.Context) ([]domain.Loan, error)
}

// LoanWriter defines write operations for loan data.
type LoanWriter interface {
	// SaveLoan persists a newly created loan.
	SaveLoan(ctx context.Context, loan domain.Loan) error

	// UpdateLoan persists mutations to an existing loan (status, outstanding,
	// DPD, bucket, escalation level, audit fields).
	UpdateLoan(ctx context.Context, loan domain.Loan) error

	// SaveSchedule persists the disbursed loan together with its generated
	// installments as one atomic write.
	SaveSchedule(ctx context.Context, loan domain.Loan, installments []domain.Installment) error

	// SaveDelinquencyState persists a loan's DPD/bucket/status change, an
	// optional bucket-history entry and an optional legal case in one
	// transaction. The returned flag reports whether a legal case was
	// actually created (false when one already existed for the loan).
	SaveDelinquencyState(ctx context.Context, loan domain.Loan, history *domain.BucketHistoryEntry, legalCase *domain.LegalCase) (bool, error)
}

// InstallmentReader defines read operations for schedule data.
type InstallmentReader interface {
	// FindInstallmentsByLoanID retrieves a loan's schedule ordered by sequence.
	FindInstallmentsByLoanID(ctx context.Context, loanID string) ([]domain.Installment, error)
}

// BucketHistoryReader defines read operations for the bucket audit trail.
type BucketHistoryReader interface {
	// ListBucketHistory retrieves a loan's bucket changes, oldest first.
	ListBucketHistory(ctx context.Context, loanID string) ([]domain.BucketHistoryEntry, error)
}

// LegalCaseReader defines read operations for legal cases.
type LegalCaseReader interface {
	// FindLegalCaseByLoanID retrieves the loan's legal case, if any.
	FindLegalCaseByLoanID(ctx context.Context, loanID string) (*domain.LegalCase, error)
}

// LoanRepositoryFacade combines all loan-related repository interfaces.
type LoanRepositoryFacade interface {
	LoanReader
	LoanWriter
	InstallmentReader
	BucketHistoryReader
	LegalCaseReader
}
