package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID reference
}

// CurrencyPrecision is the fixed number of decimal places for all monetary values.
// Rounding is half-up, applied per installment rather than cumulatively.
const CurrencyPrecision int32 = 2
