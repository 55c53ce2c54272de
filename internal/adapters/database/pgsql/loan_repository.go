package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lendcraft/loan_servicing_app/internal/apperrors"
	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	portsrepo "github.com/lendcraft/loan_servicing_app/internal/core/ports/repositories"
)

type PgxLoanRepository struct {
	pool *pgxpool.Pool
}

// NewPgxLoanRepository creates a new repository for loan, schedule, bucket
// history and legal case data.
func NewPgxLoanRepository(pool *pgxpool.Pool) portsrepo.LoanRepositoryFacade {
	return &PgxLoanRepository{pool: pool}
}

var _ portsrepo.LoanRepositoryFacade = (*PgxLoanRepository)(nil)

const loanColumns = `loan_id, customer_ref, product_code, principal, annual_rate_percent, term_months,
	disbursement_date, status, outstanding_amount, dpd, bucket, escalation_level,
	created_at, created_by, last_updated_at, last_updated_by`

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var loan domain.Loan
	err := row.Scan(
		&loan.LoanID,
		&loan.CustomerRef,
		&loan.ProductCode,
		&loan.Principal,
		&loan.AnnualRatePercent,
		&loan.TermMonths,
		&loan.DisbursementDate,
		&loan.Status,
		&loan.OutstandingAmount,
		&loan.DPD,
		&loan.Bucket,
		&loan.EscalationLevel,
		&loan.CreatedAt,
		&loan.CreatedBy,
		&loan.LastUpdatedAt,
		&loan.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan loan: %w", err)
	}
	return &loan, nil
}

// SaveLoan persists a newly created loan.
func (r *PgxLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.pool.Exec(ctx, query,
		loan.LoanID,
		loan.CustomerRef,
		loan.ProductCode,
		loan.Principal,
		loan.AnnualRatePercent,
		loan.TermMonths,
		loan.DisbursementDate,
		loan.Status,
		loan.OutstandingAmount,
		loan.DPD,
		loan.Bucket,
		loan.EscalationLevel,
		loan.CreatedAt,
		loan.CreatedBy,
		loan.LastUpdatedAt,
		loan.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert loan %s: %w", loan.LoanID, err)
	}
	return nil
}

// FindLoanByID retrieves a loan by its ID.
func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE loan_id = $1;`
	return scanLoan(r.pool.QueryRow(ctx, query, loanID))
}

// ListServiceableLoans retrieves all loans eligible for the daily batch.
func (r *PgxLoanRepository) ListServiceableLoans(ctx context.Context) ([]domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = ANY($1)
		ORDER BY loan_id;
	`
	statuses := []string{string(domain.StatusActive), string(domain.StatusDelinquent), string(domain.StatusLegal)}
	rows, err := r.pool.Query(ctx, query, statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to query serviceable loans: %w", err)
	}
	defer rows.Close()

	loans := []domain.Loan{}
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, *loan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate serviceable loans: %w", err)
	}
	return loans, nil
}

const updateLoanQuery = `
	UPDATE loans
	SET disbursement_date = $2, status = $3, outstanding_amount = $4, dpd = $5,
		bucket = $6, escalation_level = $7, last_updated_at = $8, last_updated_by = $9
	WHERE loan_id = $1;
`

func loanUpdateArgs(loan domain.Loan) []any {
	return []any{
		loan.LoanID,
		loan.DisbursementDate,
		loan.Status,
		loan.OutstandingAmount,
		loan.DPD,
		loan.Bucket,
		loan.EscalationLevel,
		loan.LastUpdatedAt,
		loan.LastUpdatedBy,
	}
}

// UpdateLoan persists mutations to an existing loan.
func (r *PgxLoanRepository) UpdateLoan(ctx context.Context, loan domain.Loan) error {
	tag, err := r.pool.Exec(ctx, updateLoanQuery, loanUpdateArgs(loan)...)
	if err != nil {
		return fmt.Errorf("failed to update loan %s: %w", loan.LoanID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// SaveSchedule persists the disbursed loan and its installments in one transaction.
func (r *PgxLoanRepository) SaveSchedule(ctx context.Context, loan domain.Loan, installments []domain.Installment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, updateLoanQuery, loanUpdateArgs(loan)...); err != nil {
		return fmt.Errorf("failed to update loan %s for disbursement: %w", loan.LoanID, err)
	}

	batch := &pgx.Batch{}
	instQuery := `
		INSERT INTO installments (installment_id, loan_id, sequence, due_date,
			principal_due, interest_due, penalty_due, principal_paid, interest_paid, penalty_paid,
			penalty_assessed, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	for _, inst := range installments {
		batch.Queue(instQuery,
			inst.InstallmentID,
			inst.LoanID,
			inst.Sequence,
			inst.DueDate,
			inst.PrincipalDue,
			inst.InterestDue,
			inst.PenaltyDue,
			inst.PrincipalPaid,
			inst.InterestPaid,
			inst.PenaltyPaid,
			inst.PenaltyAssessed,
			inst.Status,
			inst.CreatedAt,
			inst.CreatedBy,
			inst.LastUpdatedAt,
			inst.LastUpdatedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert schedule for loan %s: %w", loan.LoanID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit schedule for loan %s: %w", loan.LoanID, err)
	}
	return nil
}

// SaveDelinquencyState persists a loan's delinquency change, an optional
// bucket-history entry and an optional legal case in one transaction. The
// legal case insert is guarded by the unique constraint on loan_id so repeated
// daily runs never create a second case.
func (r *PgxLoanRepository) SaveDelinquencyState(ctx context.Context, loan domain.Loan, history *domain.BucketHistoryEntry, legalCase *domain.LegalCase) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, updateLoanQuery, loanUpdateArgs(loan)...); err != nil {
		return false, fmt.Errorf("failed to update loan %s delinquency: %w", loan.LoanID, err)
	}

	if history != nil {
		historyQuery := `
			INSERT INTO bucket_history (entry_id, loan_id, from_bucket, to_bucket, dpd, changed_at)
			VALUES ($1, $2, $3, $4, $5, $6);
		`
		if _, err := tx.Exec(ctx, historyQuery,
			history.EntryID, history.LoanID, history.FromBucket, history.ToBucket, history.DPD, history.ChangedAt,
		); err != nil {
			return false, fmt.Errorf("failed to insert bucket history for loan %s: %w", loan.LoanID, err)
		}
	}

	legalCreated := false
	if legalCase != nil {
		caseQuery := `
			INSERT INTO legal_cases (case_id, loan_id, dpd_at_entry, status, opened_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (loan_id) DO NOTHING;
		`
		tag, err := tx.Exec(ctx, caseQuery,
			legalCase.CaseID, legalCase.LoanID, legalCase.DPDAtEntry, legalCase.Status, legalCase.OpenedAt,
		)
		if err != nil {
			return false, fmt.Errorf("failed to insert legal case for loan %s: %w", loan.LoanID, err)
		}
		legalCreated = tag.RowsAffected() == 1
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit delinquency state for loan %s: %w", loan.LoanID, err)
	}
	return legalCreated, nil
}

// FindInstallmentsByLoanID retrieves a loan's schedule ordered by sequence.
func (r *PgxLoanRepository) FindInstallmentsByLoanID(ctx context.Context, loanID string) ([]domain.Installment, error) {
	query := `
		SELECT installment_id, loan_id, sequence, due_date,
			principal_due, interest_due, penalty_due, principal_paid, interest_paid, penalty_paid,
			penalty_assessed, status, created_at, created_by, last_updated_at, last_updated_by
		FROM installments
		WHERE loan_id = $1
		ORDER BY sequence;
	`
	rows, err := r.pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query installments for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	installments := []domain.Installment{}
	for rows.Next() {
		var inst domain.Installment
		if err := rows.Scan(
			&inst.InstallmentID,
			&inst.LoanID,
			&inst.Sequence,
			&inst.DueDate,
			&inst.PrincipalDue,
			&inst.InterestDue,
			&inst.PenaltyDue,
			&inst.PrincipalPaid,
			&inst.InterestPaid,
			&inst.PenaltyPaid,
			&inst.PenaltyAssessed,
			&inst.Status,
			&inst.CreatedAt,
			&inst.CreatedBy,
			&inst.LastUpdatedAt,
			&inst.LastUpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		installments = append(installments, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate installments for loan %s: %w", loanID, err)
	}
	return installments, nil
}

// ListBucketHistory retrieves a loan's bucket changes, oldest first.
func (r *PgxLoanRepository) ListBucketHistory(ctx context.Context, loanID string) ([]domain.BucketHistoryEntry, error) {
	query := `
		SELECT entry_id, loan_id, from_bucket, to_bucket, dpd, changed_at
		FROM bucket_history
		WHERE loan_id = $1
		ORDER BY changed_at;
	`
	rows, err := r.pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bucket history for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	entries := []domain.BucketHistoryEntry{}
	for rows.Next() {
		var entry domain.BucketHistoryEntry
		if err := rows.Scan(&entry.EntryID, &entry.LoanID, &entry.FromBucket, &entry.ToBucket, &entry.DPD, &entry.ChangedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bucket history entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bucket history for loan %s: %w", loanID, err)
	}
	return entries, nil
}

// FindLegalCaseByLoanID retrieves the loan's legal case, if any.
func (r *PgxLoanRepository) FindLegalCaseByLoanID(ctx context.Context, loanID string) (*domain.LegalCase, error) {
	query := `
		SELECT case_id, loan_id, dpd_at_entry, status, opened_at
		FROM legal_cases
		WHERE loan_id = $1;
	`
	var legalCase domain.LegalCase
	err := r.pool.QueryRow(ctx, query, loanID).Scan(
		&legalCase.CaseID, &legalCase.LoanID, &legalCase.DPDAtEntry, &legalCase.Status, &legalCase.OpenedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find legal case for loan %s: %w", loanID, err)
	}
	return &legalCase, nil
}
