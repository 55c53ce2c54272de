package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	"github.com/lendcraft/loan_servicing_app/internal/utils/dateutil"
	"github.com/lendcraft/loan_servicing_app/pkg/config"
)

// penaltyPolicy captures the configured late-payment charge strategy.
type penaltyPolicy struct {
	strategy         string
	flatAmount       decimal.Decimal
	dailyRatePercent decimal.Decimal
}

// allocationOutcome is the result of running the waterfall over a schedule.
// Installments holds the full schedule with mutations applied; Touched holds
// only the installments that changed and need persisting.
type allocationOutcome struct {
	Installments []domain.Installment
	Touched      []domain.Installment
	Principal    decimal.Decimal
	Interest     decimal.Decimal
	Penalty      decimal.Decimal
	Excess       decimal.Decimal
	Outstanding  decimal.Decimal
}

// allocateWaterfall applies a payment amount against the schedule, oldest due
// date first, splitting each installment in fixed component priority
// penalty -> interest -> principal.
//
// Installments due after asOf are skipped unless allowPrepayment is set; any
// remainder is surfaced as Excess, never silently discarded. Penalty for an
// overdue installment is assessed at most once, guarded by PenaltyAssessed,
// so re-running allocation never double-charges. The scan stops once the
// amount is exhausted: overdue installments the payment never reaches keep
// their state and get assessed by a later run.
func allocateWaterfall(installments []domain.Installment, amount decimal.Decimal, policy penaltyPolicy, asOf time.Time, loc *time.Location, allowPrepayment bool) allocationOutcome {
	outcome := allocationOutcome{
		Installments: installments,
		Principal:    decimal.Zero,
		Interest:     decimal.Zero,
		Penalty:      decimal.Zero,
	}

	remaining := amount
	for i := range installments {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		inst := &installments[i]
		if inst.Status == domain.InstallmentPaid {
			continue
		}
		daysOverdue := dateutil.DaysBetween(inst.DueDate, asOf, loc)
		if daysOverdue < 0 && !allowPrepayment {
			// Not yet due; the waterfall does not reach forward by default.
			continue
		}

		touched := false
		if daysOverdue > 0 && !inst.PenaltyAssessed {
			inst.PenaltyDue = inst.PenaltyDue.Add(assessPenalty(inst, policy, daysOverdue))
			inst.PenaltyAssessed = true
			inst.Status = domain.InstallmentOverdue
			touched = true
		}

		if remaining.GreaterThan(decimal.Zero) {
			paidPenalty := payComponent(&remaining, inst.PenaltyDue, &inst.PenaltyPaid)
			paidInterest := payComponent(&remaining, inst.InterestDue, &inst.InterestPaid)
			paidPrincipal := payComponent(&remaining, inst.PrincipalDue, &inst.PrincipalPaid)

			if paidPenalty.Add(paidInterest).Add(paidPrincipal).GreaterThan(decimal.Zero) {
				outcome.Penalty = outcome.Penalty.Add(paidPenalty)
				outcome.Interest = outcome.Interest.Add(paidInterest)
				outcome.Principal = outcome.Principal.Add(paidPrincipal)
				touched = true
			}

			if inst.IsSettled() {
				inst.Status = domain.InstallmentPaid
			} else if inst.TotalPaid().GreaterThan(decimal.Zero) {
				inst.Status = domain.InstallmentPartial
			}
		}

		if touched {
			outcome.Touched = append(outcome.Touched, *inst)
		}
	}

	outcome.Excess = remaining
	outcome.Outstanding = decimal.Zero
	for i := range installments {
		outcome.Outstanding = outcome.Outstanding.Add(installments[i].RemainingDue())
	}
	return outcome
}

// assessPenalty computes the one-time late charge for an overdue installment.
func assessPenalty(inst *domain.Installment, policy penaltyPolicy, daysOverdue int) decimal.Decimal {
	if policy.strategy == config.PenaltyStrategyDailyPercent {
		rate := policy.dailyRatePercent.Div(decimal.NewFromInt(100))
		return inst.PrincipalDue.Mul(rate).Mul(decimal.NewFromInt(int64(daysOverdue))).Round(domain.CurrencyPrecision)
	}
	return policy.flatAmount.Round(domain.CurrencyPrecision)
}

// payComponent moves up to (due - alreadyPaid) from the remaining amount into
// the paid component and returns how much was applied.
func payComponent(remaining *decimal.Decimal, due decimal.Decimal, paid *decimal.Decimal) decimal.Decimal {
	open := due.Sub(*paid)
	if open.LessThanOrEqual(decimal.Zero) || remaining.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	applied := decimal.Min(*remaining, open)
	*paid = paid.Add(applied)
	*remaining = remaining.Sub(applied)
	return applied
}
