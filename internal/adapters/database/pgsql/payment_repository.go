package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lendcraft/loan_servicing_app/internal/apperrors"
	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	portsrepo "github.com/lendcraft/loan_servicing_app/internal/core/ports/repositories"
)

type PgxPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPgxPaymentRepository creates a new repository for payment data.
func NewPgxPaymentRepository(pool *pgxpool.Pool) portsrepo.PaymentRepositoryFacade {
	return &PgxPaymentRepository{pool: pool}
}

var _ portsrepo.PaymentRepositoryFacade = (*PgxPaymentRepository)(nil)

const paymentColumns = `payment_id, loan_id, amount, method, external_ref, payment_date,
	principal_portion, interest_portion, penalty_portion, excess_amount, status, reconciled,
	created_at, created_by, last_updated_at, last_updated_by`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.PaymentID,
		&p.LoanID,
		&p.Amount,
		&p.Method,
		&p.ExternalRef,
		&p.PaymentDate,
		&p.PrincipalPortion,
		&p.InterestPortion,
		&p.PenaltyPortion,
		&p.ExcessAmount,
		&p.Status,
		&p.Reconciled,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}
	return &p, nil
}

// SaveAllocation persists the payment, the installments it pays and the loan's
// updated balances as one database transaction, so a crash cannot leave the
// ledger partially applied. A concurrent reuse of the external reference loses
// at the unique index and surfaces as apperrors.ErrDuplicate.
func (r *PgxPaymentRepository) SaveAllocation(ctx context.Context, payment domain.Payment, installments []domain.Installment, loan domain.Loan) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	paymentQuery := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err = tx.Exec(ctx, paymentQuery,
		payment.PaymentID,
		payment.LoanID,
		payment.Amount,
		payment.Method,
		payment.ExternalRef,
		payment.PaymentDate,
		payment.PrincipalPortion,
		payment.InterestPortion,
		payment.PenaltyPortion,
		payment.ExcessAmount,
		payment.Status,
		payment.Reconciled,
		payment.CreatedAt,
		payment.CreatedBy,
		payment.LastUpdatedAt,
		payment.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation on external_ref
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert payment %s: %w", payment.PaymentID, err)
	}

	batch := &pgx.Batch{}
	instQuery := `
		UPDATE installments
		SET penalty_due = $2, principal_paid = $3, interest_paid = $4, penalty_paid = $5,
			penalty_assessed = $6, status = $7, last_updated_at = $8, last_updated_by = $9
		WHERE installment_id = $1;
	`
	for _, inst := range installments {
		batch.Queue(instQuery,
			inst.InstallmentID,
			inst.PenaltyDue,
			inst.PrincipalPaid,
			inst.InterestPaid,
			inst.PenaltyPaid,
			inst.PenaltyAssessed,
			inst.Status,
			inst.LastUpdatedAt,
			inst.LastUpdatedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to update installments for payment %s: %w", payment.PaymentID, err)
	}

	loanQuery := `
		UPDATE loans
		SET outstanding_amount = $2, last_updated_at = $3, last_updated_by = $4
		WHERE loan_id = $1;
	`
	if _, err := tx.Exec(ctx, loanQuery, loan.LoanID, loan.OutstandingAmount, loan.LastUpdatedAt, loan.LastUpdatedBy); err != nil {
		return fmt.Errorf("failed to update loan %s outstanding: %w", loan.LoanID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit allocation for payment %s: %w", payment.PaymentID, err)
	}
	return nil
}

// FindPaymentByID retrieves a payment by its identifier.
func (r *PgxPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1;`
	return scanPayment(r.pool.QueryRow(ctx, query, paymentID))
}

// FindPaymentByExternalRef retrieves a payment by its settlement reference.
func (r *PgxPaymentRepository) FindPaymentByExternalRef(ctx context.Context, externalRef string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE external_ref = $1;`
	return scanPayment(r.pool.QueryRow(ctx, query, externalRef))
}

// ListPaymentsByLoanID retrieves all payments recorded against a loan, oldest first.
func (r *PgxPaymentRepository) ListPaymentsByLoanID(ctx context.Context, loanID string) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE loan_id = $1 ORDER BY payment_date, created_at;`
	rows, err := r.pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments for loan %s: %w", loanID, err)
	}
	return payments, nil
}

// FindCandidatePayments retrieves payments with the given amount dated within
// [from, to), for reconciliation matching.
func (r *PgxPaymentRepository) FindCandidatePayments(ctx context.Context, amount decimal.Decimal, from, to time.Time) ([]domain.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE amount = $1 AND payment_date >= $2 AND payment_date < $3
		ORDER BY payment_date, created_at;
	`
	rows, err := r.pool.Query(ctx, query, amount, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate payments: %w", err)
	}
	defer rows.Close()

	payments := []domain.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidate payments: %w", err)
	}
	return payments, nil
}
