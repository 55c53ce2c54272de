package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	portsrepo "github.com/lendcraft/loan_servicing_app/internal/core/ports/repositories"
	portssvc "github.com/lendcraft/loan_servicing_app/internal/core/ports/services"
	"github.com/lendcraft/loan_servicing_app/internal/dto"
	"github.com/lendcraft/loan_servicing_app/internal/middleware"
	"github.com/lendcraft/loan_servicing_app/internal/utils/dateutil"
	"github.com/lendcraft/loan_servicing_app/pkg/config"
)

// dpdService runs the daily delinquency batch: DPD recomputation, bucket
// classification and legal escalation for every serviceable loan.
type dpdService struct {
	loanRepo    portsrepo.LoanRepositoryFacade
	jobRunRepo  portsrepo.JobRunRepositoryFacade
	bucketTable domain.BucketTable
	cfg         *config.Config
}

// NewDPDService creates a new DPDService.
func NewDPDService(loanRepo portsrepo.LoanRepositoryFacade, jobRunRepo portsrepo.JobRunRepositoryFacade, bucketTable domain.BucketTable, cfg *config.Config) portssvc.DPDSvcFacade {
	return &dpdService{
		loanRepo:    loanRepo,
		jobRunRepo:  jobRunRepo,
		bucketTable: bucketTable,
		cfg:         cfg,
	}
}

var _ portssvc.DPDSvcFacade = (*dpdService)(nil)

// loanRunResult is the outcome of processing one loan in the batch.
type loanRunResult struct {
	loanID        string
	bucketChanged bool
	legalOpened   bool
	err           error
}

// RunDailyUpdate executes one day's DPD pass. The day is claimed up front by
// atomically inserting the (job, day) run record; a concurrent or repeated
// trigger for the same day loses the insert and returns Skipped=true without
// touching any loan. Loans are processed independently across a bounded worker
// pool; each loan's mutation commits atomically, and per-loan failures are
// collected into the summary rather than aborting the pass.
func (s *dpdService) RunDailyUpdate(ctx context.Context, runDate time.Time, triggeredBy string) (*dto.DPDRunSummary, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	day := dateutil.DayStart(runDate, s.cfg.Location)

	inserted, err := s.jobRunRepo.TryInsertRunRecord(ctx, domain.JobRunRecord{
		RunID:     uuid.NewString(),
		JobName:   domain.JobDPDUpdate,
		RunDate:   day,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record run for %s: %w", day.Format("2006-01-02"), err)
	}
	if !inserted {
		logger.Info("DPD run already recorded for the day, skipping", slog.Time("run_date", day))
		return &dto.DPDRunSummary{RunDate: day, Skipped: true}, nil
	}

	loans, err := s.loanRepo.ListServiceableLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list serviceable loans: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.DPDTimeBudget)
	defer cancel()

	jobs := make(chan domain.Loan)
	results := make(chan loanRunResult, len(loans))

	var wg sync.WaitGroup
	for w := 0; w < s.cfg.DPDWorkerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for loan := range jobs {
				results <- s.processLoan(runCtx, loan, day, triggeredBy)
			}
		}()
	}

feed:
	for _, loan := range loans {
		select {
		case jobs <- loan:
		case <-runCtx.Done():
			logger.Warn("DPD run time budget exhausted, remaining loans deferred", slog.Int("remaining", len(loans)))
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	summary := &dto.DPDRunSummary{RunDate: day}
	for res := range results {
		summary.Processed++
		if res.err != nil {
			summary.Failures = append(summary.Failures, dto.LoanFailure{LoanID: res.loanID, Error: res.err.Error()})
			logger.Error("DPD update failed for loan", slog.String("loan_id", res.loanID), slog.String("error", res.err.Error()))
			continue
		}
		if res.bucketChanged {
			summary.BucketChanges++
		}
		if res.legalOpened {
			summary.LegalCasesOpened++
		}
	}

	logger.Info("DPD run completed",
		slog.Time("run_date", day),
		slog.Int("processed", summary.Processed),
		slog.Int("bucket_changes", summary.BucketChanges),
		slog.Int("legal_cases_opened", summary.LegalCasesOpened),
		slog.Int("failures", len(summary.Failures)))
	return summary, nil
}

// processLoan recomputes one loan's delinquency state and persists the change
// in a single transaction.
func (s *dpdService) processLoan(ctx context.Context, loan domain.Loan, day time.Time, triggeredBy string) loanRunResult {
	result := loanRunResult{loanID: loan.LoanID}

	installments, err := s.loanRepo.FindInstallmentsByLoanID(ctx, loan.LoanID)
	if err != nil {
		result.err = fmt.Errorf("load schedule: %w", err)
		return result
	}

	dpd := s.computeDPD(installments, day)
	bucket := s.bucketTable.BucketFor(dpd)
	if dpd >= s.cfg.LegalEscalationDPD {
		bucket = domain.BucketLegal
	}

	var history *domain.BucketHistoryEntry
	if bucket != loan.Bucket {
		history = &domain.BucketHistoryEntry{
			EntryID:    uuid.NewString(),
			LoanID:     loan.LoanID,
			FromBucket: loan.Bucket,
			ToBucket:   bucket,
			DPD:        dpd,
			ChangedAt:  time.Now().UTC(),
		}
		result.bucketChanged = true
	}

	var legalCase *domain.LegalCase
	switch {
	case dpd >= s.cfg.LegalEscalationDPD && loan.Status != domain.StatusLegal:
		if next, ok := domain.NextState(loan.Status, domain.ActionEscalateLegal); ok {
			loan.Status = next
		}
		legalCase = &domain.LegalCase{
			CaseID:     uuid.NewString(),
			LoanID:     loan.LoanID,
			DPDAtEntry: dpd,
			Status:     domain.LegalCaseOpen,
			OpenedAt:   time.Now().UTC(),
		}
	case dpd > 0 && loan.Status == domain.StatusActive:
		if next, ok := domain.NextState(loan.Status, domain.ActionMarkDelinquent); ok {
			loan.Status = next
		}
	case dpd == 0 && loan.Status == domain.StatusDelinquent:
		if next, ok := domain.NextState(loan.Status, domain.ActionCure); ok {
			loan.Status = next
		}
	}

	loan.DPD = dpd
	loan.Bucket = bucket
	loan.EscalationLevel = domain.EscalationFor(bucket)
	loan.LastUpdatedAt = time.Now().UTC()
	loan.LastUpdatedBy = triggeredBy

	created, err := s.loanRepo.SaveDelinquencyState(ctx, loan, history, legalCase)
	if err != nil {
		result.err = fmt.Errorf("save delinquency state: %w", err)
		return result
	}
	// The daily run may observe DPD>=threshold again after the case exists;
	// creation is idempotent at the unique constraint.
	result.legalOpened = created
	return result
}

// computeDPD derives days past due from the earliest installment still
// carrying a balance. No open installment means DPD 0.
func (s *dpdService) computeDPD(installments []domain.Installment, day time.Time) int {
	for i := range installments {
		if installments[i].IsSettled() {
			continue
		}
		dpd := dateutil.DaysBetween(installments[i].DueDate, day, s.cfg.Location)
		if dpd < 0 {
			return 0
		}
		return dpd
	}
	return 0
}
