package services

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendcraft/loan_servicing_app/internal/apperrors"
	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	portssvc "github.com/lendcraft/loan_servicing_app/internal/core/ports/services"
)

// scheduleService generates reducing-balance amortization schedules.
type scheduleService struct{}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService() portssvc.ScheduleSvcFacade {
	return &scheduleService{}
}

var _ portssvc.ScheduleSvcFacade = (*scheduleService)(nil)

// GenerateSchedule builds the full installment schedule for the given terms.
//
// With monthly rate m = rate/12/100 the level payment is
// E = P*m*(1+m)^n / ((1+m)^n - 1); per installment interest = balance*m and
// principal = E - interest. The final installment's principal is forced to the
// remaining balance so the principal components sum to P exactly regardless of
// per-installment rounding. Zero-rate loans split the principal evenly.
func (s *scheduleService) GenerateSchedule(loanID string, principal decimal.Decimal, annualRatePercent decimal.Decimal, termMonths int, startDate time.Time) ([]domain.Installment, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: principal must be positive", apperrors.ErrValidation)
	}
	if termMonths <= 0 {
		return nil, fmt.Errorf("%w: term must be positive", apperrors.ErrValidation)
	}
	if annualRatePercent.IsNegative() {
		return nil, fmt.Errorf("%w: annual rate must be non-negative", apperrors.ErrValidation)
	}

	monthlyRate := annualRatePercent.Div(decimal.NewFromInt(1200))
	levelPayment := computeLevelPayment(principal, monthlyRate, termMonths)

	now := time.Now().UTC()
	installments := make([]domain.Installment, 0, termMonths)
	balance := principal

	for k := 1; k <= termMonths; k++ {
		interest := balance.Mul(monthlyRate).Round(domain.CurrencyPrecision)

		var principalPart decimal.Decimal
		if k == termMonths {
			// Absorb rounding residue so the loan zeroes out exactly.
			principalPart = balance
		} else {
			principalPart = levelPayment.Sub(interest)
		}

		balance = balance.Sub(principalPart)

		installments = append(installments, domain.Installment{
			InstallmentID: uuid.NewString(),
			LoanID:        loanID,
			Sequence:      k,
			DueDate:       startDate.AddDate(0, k, 0),
			PrincipalDue:  principalPart,
			InterestDue:   interest,
			PenaltyDue:    decimal.Zero,
			PrincipalPaid: decimal.Zero,
			InterestPaid:  decimal.Zero,
			PenaltyPaid:   decimal.Zero,
			Status:        domain.InstallmentPending,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				LastUpdatedAt: now,
			},
		})
	}

	return installments, nil
}

// computeLevelPayment returns the rounded EMI for the terms. The power term is
// computed in float64 and converted back to decimal before any monetary use.
func computeLevelPayment(principal decimal.Decimal, monthlyRate decimal.Decimal, termMonths int) decimal.Decimal {
	if monthlyRate.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(termMonths))).Round(domain.CurrencyPrecision)
	}

	m := monthlyRate.InexactFloat64()
	factor := math.Pow(1+m, float64(termMonths))
	payment := principal.InexactFloat64() * m * factor / (factor - 1)
	return decimal.NewFromFloat(payment).Round(domain.CurrencyPrecision)
}
