package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lendcraft/loan_servicing_app/internal/apperrors"
	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	portsrepo "github.com/lendcraft/loan_servicing_app/internal/core/ports/repositories"
)

type PgxReconciliationRepository struct {
	pool *pgxpool.Pool
}

// NewPgxReconciliationRepository creates a new repository for reconciliation records.
func NewPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRepositoryFacade {
	return &PgxReconciliationRepository{pool: pool}
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

const reconColumns = `record_id, batch_id, amount, external_ref, transaction_date, narration,
	status, matched_payment_id, tier, created_at, created_by, last_updated_at, last_updated_by`

func scanReconRecord(row pgx.Row) (*domain.ReconciliationRecord, error) {
	var rec domain.ReconciliationRecord
	err := row.Scan(
		&rec.RecordID,
		&rec.BatchID,
		&rec.Amount,
		&rec.ExternalRef,
		&rec.TransactionDate,
		&rec.Narration,
		&rec.Status,
		&rec.MatchedPaymentID,
		&rec.Tier,
		&rec.CreatedAt,
		&rec.CreatedBy,
		&rec.LastUpdatedAt,
		&rec.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan reconciliation record: %w", err)
	}
	return &rec, nil
}

// SaveRecords persists a batch of matched statement lines in one transaction.
func (r *PgxReconciliationRepository) SaveRecords(ctx context.Context, records []domain.ReconciliationRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	query := `
		INSERT INTO reconciliation_records (` + reconColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	for _, rec := range records {
		batch.Queue(query,
			rec.RecordID,
			rec.BatchID,
			rec.Amount,
			rec.ExternalRef,
			rec.TransactionDate,
			rec.Narration,
			rec.Status,
			rec.MatchedPaymentID,
			rec.Tier,
			rec.CreatedAt,
			rec.CreatedBy,
			rec.LastUpdatedAt,
			rec.LastUpdatedBy,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert reconciliation records: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reconciliation batch: %w", err)
	}
	return nil
}

// FindRecordByID retrieves a reconciliation record by its identifier.
func (r *PgxReconciliationRepository) FindRecordByID(ctx context.Context, recordID string) (*domain.ReconciliationRecord, error) {
	query := `SELECT ` + reconColumns + ` FROM reconciliation_records WHERE record_id = $1;`
	return scanReconRecord(r.pool.QueryRow(ctx, query, recordID))
}

// ListRecordsByStatus retrieves records in the given status, oldest first.
func (r *PgxReconciliationRepository) ListRecordsByStatus(ctx context.Context, status domain.MatchStatus) ([]domain.ReconciliationRecord, error) {
	query := `SELECT ` + reconColumns + ` FROM reconciliation_records WHERE status = $1 ORDER BY transaction_date, created_at;`
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation records by status %s: %w", status, err)
	}
	defer rows.Close()

	records := []domain.ReconciliationRecord{}
	for rows.Next() {
		rec, err := scanReconRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reconciliation records: %w", err)
	}
	return records, nil
}

// PromoteToReconciled moves a record to RECONCILED and flags its matched
// payment in one transaction. The row is locked for the duration so a
// concurrent day-lock cannot slip between the check and the update.
func (r *PgxReconciliationRepository) PromoteToReconciled(ctx context.Context, recordID string, updatedBy string, updatedAt time.Time) (*domain.ReconciliationRecord, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	selectQuery := `SELECT ` + reconColumns + ` FROM reconciliation_records WHERE record_id = $1 FOR UPDATE;`
	record, err := scanReconRecord(tx.QueryRow(ctx, selectQuery, recordID))
	if err != nil {
		return nil, err
	}
	if record.Status == domain.MatchLocked {
		return nil, apperrors.ErrLockedRecord
	}
	if !record.Status.CanPromote() {
		return nil, fmt.Errorf("%w: record %s in status %s cannot be reconciled", apperrors.ErrValidation, recordID, record.Status)
	}

	updateRecord := `
		UPDATE reconciliation_records
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE record_id = $1;
	`
	if _, err := tx.Exec(ctx, updateRecord, recordID, domain.MatchReconciled, updatedAt, updatedBy); err != nil {
		return nil, fmt.Errorf("failed to promote record %s: %w", recordID, err)
	}

	if record.MatchedPaymentID != "" {
		updatePayment := `
			UPDATE payments
			SET reconciled = TRUE, last_updated_at = $2, last_updated_by = $3
			WHERE payment_id = $1;
		`
		if _, err := tx.Exec(ctx, updatePayment, record.MatchedPaymentID, updatedAt, updatedBy); err != nil {
			return nil, fmt.Errorf("failed to flag payment %s reconciled: %w", record.MatchedPaymentID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit promotion of record %s: %w", recordID, err)
	}

	record.Status = domain.MatchReconciled
	record.LastUpdatedAt = updatedAt
	record.LastUpdatedBy = updatedBy
	return record, nil
}

// LockDay marks every RECONCILED record with a statement date in
// [dayStart, dayEnd) as LOCKED and returns how many rows changed.
func (r *PgxReconciliationRepository) LockDay(ctx context.Context, dayStart, dayEnd time.Time, updatedBy string, updatedAt time.Time) (int64, error) {
	query := `
		UPDATE reconciliation_records
		SET status = $1, last_updated_at = $2, last_updated_by = $3
		WHERE status = $4 AND transaction_date >= $5 AND transaction_date < $6;
	`
	tag, err := r.pool.Exec(ctx, query, domain.MatchLocked, updatedAt, updatedBy, domain.MatchReconciled, dayStart, dayEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to lock reconciliation day: %w", err)
	}
	return tag.RowsAffected(), nil
}
