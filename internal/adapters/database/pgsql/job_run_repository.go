package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	portsrepo "github.com/lendcraft/loan_servicing_app/internal/core/ports/repositories"
)

type PgxJobRunRepository struct {
	pool *pgxpool.Pool
}

// NewPgxJobRunRepository creates a new repository for batch run records.
func NewPgxJobRunRepository(pool *pgxpool.Pool) portsrepo.JobRunRepositoryFacade {
	return &PgxJobRunRepository{pool: pool}
}

var _ portsrepo.JobRunRepositoryFacade = (*PgxJobRunRepository)(nil)

// TryInsertRunRecord claims the (job, day) pair atomically. The unique
// constraint arbitrates concurrent triggers: the loser sees zero rows
// affected and reports false without an error.
func (r *PgxJobRunRepository) TryInsertRunRecord(ctx context.Context, record domain.JobRunRecord) (bool, error) {
	query := `
		INSERT INTO job_runs (run_id, job_name, run_date, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (job_name, run_date) DO NOTHING;
	`
	tag, err := r.pool.Exec(ctx, query, record.RunID, record.JobName, record.RunDate, record.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to insert run record for job %s: %w", record.JobName, err)
	}
	return tag.RowsAffected() == 1, nil
}
