package domain

import "time"

// Job names for batch run records.
const (
	JobDPDUpdate      = "DPD_UPDATE"
	JobReconciliation = "RECONCILIATION"
)

// JobRunRecord is the persisted idempotency guard for daily batch jobs.
// Existence of a record for (JobName, RunDate) means the day's run already
// happened; the pair carries a unique constraint so concurrent triggers
// resolve atomically at insert time.
type JobRunRecord struct {
	RunID     string    `json:"runID"`   // Primary key (UUID)
	JobName   string    `json:"jobName"` // Unique with RunDate
	RunDate   time.Time `json:"runDate"` // Day granularity, business timezone
	CreatedAt time.Time `json:"createdAt"`
}
