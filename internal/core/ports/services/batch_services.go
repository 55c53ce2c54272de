package services

import (
	"context"
	"time"

	"github.com/lendcraft/loan_servicing_app/internal/dto"
)

// DPDSvcFacade runs the daily delinquency batch.
type DPDSvcFacade interface {
	// RunDailyUpdate recomputes DPD, bucket and escalation for every
	// serviceable loan. The run is guarded by a persisted (job, day) record:
	// a second invocation for the same day returns Skipped=true and performs
	// no mutation. Per-loan failures are collected in the summary; one bad
	// loan does not abort the pass.
	RunDailyUpdate(ctx context.Context, runDate time.Time, triggeredBy string) (*dto.DPDRunSummary, error)
}
