package dto

import (
	"time"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StatementLineRequest is one raw bank-statement row in an ingest request.
type StatementLineRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	ExternalRef     string          `json:"externalRef"`
	TransactionDate time.Time       `json:"transactionDate" binding:"required"`
	Narration       string          `json:"narration"`
}

// StatementBatchRequest is an externally supplied batch of statement lines.
type StatementBatchRequest struct {
	Lines []StatementLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// LockDayRequest names the calendar day to lock, in YYYY-MM-DD form.
type LockDayRequest struct {
	Day string `json:"day" binding:"required"`
}

// ReconciliationRecordResponse is a matched statement line for operator review.
type ReconciliationRecordResponse struct {
	RecordID         string          `json:"recordID"`
	BatchID          string          `json:"batchID"`
	Amount           decimal.Decimal `json:"amount"`
	ExternalRef      string          `json:"externalRef"`
	TransactionDate  time.Time       `json:"transactionDate"`
	Narration        string          `json:"narration"`
	Status           string          `json:"status"`
	MatchedPaymentID string          `json:"matchedPaymentID,omitempty"`
	Tier             string          `json:"tier"`
}

// ReconciliationBatchSummary reports the tier counts of one ingested batch.
type ReconciliationBatchSummary struct {
	BatchID   string                         `json:"batchID"`
	Total     int                            `json:"total"`
	Matched   int                            `json:"matched"`
	Review    int                            `json:"review"`
	Flagged   int                            `json:"flagged"`
	Unmatched int                            `json:"unmatched"`
	Records   []ReconciliationRecordResponse `json:"records"`
}

// ToReconciliationRecordResponse converts a domain record to its API form.
func ToReconciliationRecordResponse(r *domain.ReconciliationRecord) ReconciliationRecordResponse {
	return ReconciliationRecordResponse{
		RecordID:         r.RecordID,
		BatchID:          r.BatchID,
		Amount:           r.Amount,
		ExternalRef:      r.ExternalRef,
		TransactionDate:  r.TransactionDate,
		Narration:        r.Narration,
		Status:           string(r.Status),
		MatchedPaymentID: r.MatchedPaymentID,
		Tier:             string(r.Tier),
	}
}

// ToReconciliationRecordResponses converts a record slice.
func ToReconciliationRecordResponses(records []domain.ReconciliationRecord) []ReconciliationRecordResponse {
	responses := make([]ReconciliationRecordResponse, len(records))
	for i := range records {
		responses[i] = ToReconciliationRecordResponse(&records[i])
	}
	return responses
}
