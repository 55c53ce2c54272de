package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MatchStatus is the review state of a bank-statement line.
type MatchStatus string

const (
	MatchUnmatched  MatchStatus = "UNMATCHED"
	MatchMatched    MatchStatus = "MATCHED" // exact match, auto-accepted
	MatchReview     MatchStatus = "REVIEW"  // semi match, needs human confirmation
	MatchFlag       MatchStatus = "FLAG"    // loose match, lower confidence
	MatchReconciled MatchStatus = "RECONCILED"
	MatchLocked     MatchStatus = "LOCKED"
)

// MatchTier is the confidence level of a statement-to-payment match.
type MatchTier string

const (
	TierExact MatchTier = "EXACT"
	TierSemi  MatchTier = "SEMI"
	TierLoose MatchTier = "LOOSE"
	TierNone  MatchTier = "NONE"
)

// CanPromote reports whether a record in this status may be promoted to RECONCILED.
func (s MatchStatus) CanPromote() bool {
	return s == MatchMatched || s == MatchReview || s == MatchFlag
}

// ReconciliationRecord holds one externally supplied bank-statement line and
// the outcome of matching it against recorded payments. Once LOCKED the record
// rejects all further edits.
type ReconciliationRecord struct {
	RecordID         string          `json:"recordID"` // Primary key (UUID)
	BatchID          string          `json:"batchID"`  // Statement batch this line arrived in
	Amount           decimal.Decimal `json:"amount"`
	ExternalRef      string          `json:"externalRef"`
	TransactionDate  time.Time       `json:"transactionDate"`
	Narration        string          `json:"narration"`
	Status           MatchStatus     `json:"status"`
	MatchedPaymentID string          `json:"matchedPaymentID"` // Empty when unmatched
	Tier             MatchTier       `json:"tier"`
	AuditFields
}

// StatementLine is a raw bank-statement row supplied by the bank feed collaborator.
type StatementLine struct {
	Amount          decimal.Decimal `json:"amount"`
	ExternalRef     string          `json:"externalRef"`
	TransactionDate time.Time       `json:"transactionDate"`
	Narration       string          `json:"narration"`
}
