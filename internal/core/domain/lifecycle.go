package domain

import "github.com/shopspring/decimal"

// LifecycleAction is a request to move a loan through its lifecycle.
type LifecycleAction string

const (
	ActionSubmitApplication LifecycleAction = "SUBMIT_APPLICATION"
	ActionStartReview       LifecycleAction = "START_REVIEW"
	ActionApprove           LifecycleAction = "APPROVE"
	ActionReject            LifecycleAction = "REJECT"
	ActionDisburse          LifecycleAction = "DISBURSE"
	ActionActivate          LifecycleAction = "ACTIVATE"
	ActionMarkDelinquent    LifecycleAction = "MARK_DELINQUENT"
	ActionCure              LifecycleAction = "CURE"
	ActionEscalateLegal     LifecycleAction = "ESCALATE_LEGAL"
	ActionClose             LifecycleAction = "CLOSE"
	ActionSettle            LifecycleAction = "SETTLE"
)

// lifecycleTransitions is the closed transition table. An action absent from
// the current state's row is rejected without mutating the loan.
var lifecycleTransitions = map[LoanStatus]map[LifecycleAction]LoanStatus{
	StatusLead: {
		ActionSubmitApplication: StatusApplicationSubmitted,
	},
	StatusApplicationSubmitted: {
		ActionStartReview: StatusCreditReview,
	},
	StatusCreditReview: {
		ActionApprove: StatusApproved,
		ActionReject:  StatusRejected,
	},
	StatusApproved: {
		ActionDisburse: StatusDisbursed,
		ActionReject:   StatusRejected,
	},
	StatusDisbursed: {
		ActionActivate: StatusActive,
	},
	StatusActive: {
		ActionMarkDelinquent: StatusDelinquent,
		ActionEscalateLegal:  StatusLegal,
		ActionClose:          StatusClosed,
	},
	StatusDelinquent: {
		ActionCure:          StatusActive,
		ActionEscalateLegal: StatusLegal,
		ActionClose:         StatusClosed,
	},
	StatusLegal: {
		ActionClose:  StatusClosed,
		ActionSettle: StatusSettled,
	},
}

// NextState resolves the target state for an action from the given state.
// The second return is false when the transition is not in the table.
func NextState(from LoanStatus, action LifecycleAction) (LoanStatus, bool) {
	row, ok := lifecycleTransitions[from]
	if !ok {
		return "", false
	}
	to, ok := row[action]
	return to, ok
}

// Precondition is a named check an action must satisfy before the transition
// is applied. The first failing precondition is reported to the caller.
type Precondition struct {
	Name  string
	Check func(loan *Loan) bool
}

var lifecyclePreconditions = map[LifecycleAction][]Precondition{
	ActionApprove: {
		{Name: "principal must be positive", Check: func(l *Loan) bool {
			return l.Principal.GreaterThan(decimal.Zero)
		}},
		{Name: "annual rate must be non-negative", Check: func(l *Loan) bool {
			return !l.AnnualRatePercent.IsNegative()
		}},
	},
	ActionDisburse: {
		{Name: "term must be positive", Check: func(l *Loan) bool {
			return l.TermMonths > 0
		}},
	},
	ActionClose: {
		{Name: "outstanding must be fully paid", Check: func(l *Loan) bool {
			return l.OutstandingAmount.LessThanOrEqual(decimal.Zero)
		}},
	},
}

// PreconditionsFor returns the checks attached to an action, in evaluation order.
func PreconditionsFor(action LifecycleAction) []Precondition {
	return lifecyclePreconditions[action]
}
