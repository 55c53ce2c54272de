package dto

import (
	"time"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLoanRequest carries the fields supplied by the application collaborator.
type CreateLoanRequest struct {
	CustomerRef       string          `json:"customerRef" binding:"required"`
	ProductCode       string          `json:"productCode" binding:"required"`
	Principal         decimal.Decimal `json:"principal" binding:"required"`
	AnnualRatePercent decimal.Decimal `json:"annualRatePercent"`
	TermMonths        int             `json:"termMonths" binding:"required,gt=0"`
}

// LifecycleActionRequest requests a lifecycle transition on a loan.
type LifecycleActionRequest struct {
	Action string `json:"action" binding:"required,lifecycleaction"`
}

// LoanResponse is the loan view exposed to collaborators.
type LoanResponse struct {
	LoanID            string          `json:"loanID"`
	CustomerRef       string          `json:"customerRef"`
	ProductCode       string          `json:"productCode"`
	Principal         decimal.Decimal `json:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annualRatePercent"`
	TermMonths        int             `json:"termMonths"`
	DisbursementDate  *time.Time      `json:"disbursementDate,omitempty"`
	Status            string          `json:"status"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	DPD               int             `json:"dpd"`
	Bucket            string          `json:"bucket"`
	EscalationLevel   string          `json:"escalationLevel"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// InstallmentResponse is one schedule row in API responses.
type InstallmentResponse struct {
	Sequence      int             `json:"sequence"`
	DueDate       time.Time       `json:"dueDate"`
	PrincipalDue  decimal.Decimal `json:"principalDue"`
	InterestDue   decimal.Decimal `json:"interestDue"`
	PenaltyDue    decimal.Decimal `json:"penaltyDue"`
	PrincipalPaid decimal.Decimal `json:"principalPaid"`
	InterestPaid  decimal.Decimal `json:"interestPaid"`
	PenaltyPaid   decimal.Decimal `json:"penaltyPaid"`
	RemainingDue  decimal.Decimal `json:"remainingDue"`
	Status        string          `json:"status"`
}

// LoanDetailResponse is a loan together with its schedule and the next due
// installment projection.
type LoanDetailResponse struct {
	Loan         LoanResponse          `json:"loan"`
	Installments []InstallmentResponse `json:"installments"`
	NextDue      *InstallmentResponse  `json:"nextDue,omitempty"`
}

// ToLoanResponse converts a domain.Loan to its API representation.
func ToLoanResponse(l *domain.Loan) LoanResponse {
	return LoanResponse{
		LoanID:            l.LoanID,
		CustomerRef:       l.CustomerRef,
		ProductCode:       l.ProductCode,
		Principal:         l.Principal,
		AnnualRatePercent: l.AnnualRatePercent,
		TermMonths:        l.TermMonths,
		DisbursementDate:  l.DisbursementDate,
		Status:            string(l.Status),
		OutstandingAmount: l.OutstandingAmount,
		DPD:               l.DPD,
		Bucket:            string(l.Bucket),
		EscalationLevel:   string(l.EscalationLevel),
		CreatedAt:         l.CreatedAt,
	}
}

// ToInstallmentResponse converts a domain.Installment to its API representation.
func ToInstallmentResponse(inst *domain.Installment) InstallmentResponse {
	return InstallmentResponse{
		Sequence:      inst.Sequence,
		DueDate:       inst.DueDate,
		PrincipalDue:  inst.PrincipalDue,
		InterestDue:   inst.InterestDue,
		PenaltyDue:    inst.PenaltyDue,
		PrincipalPaid: inst.PrincipalPaid,
		InterestPaid:  inst.InterestPaid,
		PenaltyPaid:   inst.PenaltyPaid,
		RemainingDue:  inst.RemainingDue(),
		Status:        string(inst.Status),
	}
}

// ToInstallmentResponses converts a schedule slice.
func ToInstallmentResponses(insts []domain.Installment) []InstallmentResponse {
	responses := make([]InstallmentResponse, len(insts))
	for i := range insts {
		responses[i] = ToInstallmentResponse(&insts[i])
	}
	return responses
}
