package domain

import "time"

// Bucket is a discrete delinquency-severity classification derived from DPD.
type Bucket string

const (
	BucketCurrent Bucket = "CURRENT"
	Bucket1To7    Bucket = "1-7"
	Bucket8To15   Bucket = "8-15"
	Bucket16To22  Bucket = "16-22"
	Bucket23To29  Bucket = "23-29"
	Bucket30Plus  Bucket = "30+"
	Bucket60Plus  Bucket = "60+"
	BucketLegal   Bucket = "LEGAL"
)

// EscalationLevel is the collections treatment derived from the bucket.
type EscalationLevel string

const (
	EscalationNone  EscalationLevel = "NONE"
	EscalationSoft  EscalationLevel = "SOFT"  // reminder calls / messages
	EscalationField EscalationLevel = "FIELD" // field collection visit
	EscalationLegal EscalationLevel = "LEGAL"
)

// BucketThreshold is one row of an ordered bucket table: DPD values up to and
// including MaxDPD (inclusive) map to Bucket.
type BucketThreshold struct {
	MaxDPD int
	Bucket Bucket
}

// BucketTable is an ordered, first-match threshold table mapping DPD to a
// bucket. The final row acts as a catch-all for any higher DPD.
type BucketTable []BucketThreshold

// DefaultBucketTable returns the canonical collection-bucket scheme.
func DefaultBucketTable() BucketTable {
	return BucketTable{
		{MaxDPD: 0, Bucket: BucketCurrent},
		{MaxDPD: 7, Bucket: Bucket1To7},
		{MaxDPD: 15, Bucket: Bucket8To15},
		{MaxDPD: 22, Bucket: Bucket16To22},
		{MaxDPD: 29, Bucket: Bucket23To29},
		{MaxDPD: 59, Bucket: Bucket30Plus},
		{MaxDPD: 89, Bucket: Bucket60Plus},
	}
}

// BucketFor resolves a DPD value against the table, first match wins.
// DPD beyond the last threshold falls into the legal bucket.
func (t BucketTable) BucketFor(dpd int) Bucket {
	for _, row := range t {
		if dpd <= row.MaxDPD {
			return row.Bucket
		}
	}
	return BucketLegal
}

// EscalationFor maps a bucket to its collections escalation level.
func EscalationFor(b Bucket) EscalationLevel {
	switch b {
	case BucketCurrent:
		return EscalationNone
	case Bucket1To7, Bucket8To15, Bucket16To22, Bucket23To29:
		return EscalationSoft
	case Bucket30Plus, Bucket60Plus:
		return EscalationField
	case BucketLegal:
		return EscalationLegal
	default:
		return EscalationNone
	}
}

// BucketHistoryEntry is an append-only audit record of a bucket change.
// Entries are never mutated once written.
type BucketHistoryEntry struct {
	EntryID    string    `json:"entryID"` // Primary key (UUID)
	LoanID     string    `json:"loanID"`  // FK -> Loan.loanID
	FromBucket Bucket    `json:"fromBucket"`
	ToBucket   Bucket    `json:"toBucket"`
	DPD        int       `json:"dpd"` // DPD at the time of the change
	ChangedAt  time.Time `json:"changedAt"`
}
