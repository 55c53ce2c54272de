package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	"github.com/lendcraft/loan_servicing_app/pkg/config"
)

// testConfig returns a deterministic servicing configuration for the suites.
func testConfig() *config.Config {
	return &config.Config{
		PenaltyStrategy:         config.PenaltyStrategyFlat,
		FlatPenaltyAmount:       decimal.NewFromInt(500),
		DailyPenaltyRatePercent: decimal.NewFromFloat(0.1),
		BackdatedWindowDays:     7,
		AllowPrepayment:         false,
		LegalEscalationDPD:      90,
		Location:                time.UTC,
		DPDWorkerCount:          4,
		DPDTimeBudget:           time.Minute,
	}
}

// --- Mock LoanRepository ---

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListServiceableLoans(ctx context.Context) ([]domain.Loan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) SaveLoan(ctx context.Context, loan domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) UpdateLoan(ctx context.Context, loan domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) SaveSchedule(ctx context.Context, loan domain.Loan, installments []domain.Installment) error {
	args := m.Called(ctx, loan, installments)
	return args.Error(0)
}

func (m *MockLoanRepository) SaveDelinquencyState(ctx context.Context, loan domain.Loan, history *domain.BucketHistoryEntry, legalCase *domain.LegalCase) (bool, error) {
	args := m.Called(ctx, loan, history, legalCase)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoanRepository) FindInstallmentsByLoanID(ctx context.Context, loanID string) ([]domain.Installment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Installment), args.Error(1)
}

func (m *MockLoanRepository) ListBucketHistory(ctx context.Context, loanID string) ([]domain.BucketHistoryEntry, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BucketHistoryEntry), args.Error(1)
}

func (m *MockLoanRepository) FindLegalCaseByLoanID(ctx context.Context, loanID string) (*domain.LegalCase, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LegalCase), args.Error(1)
}

// --- Mock PaymentRepository ---

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentByExternalRef(ctx context.Context, externalRef string) (*domain.Payment, error) {
	args := m.Called(ctx, externalRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPaymentsByLoanID(ctx context.Context, loanID string) ([]domain.Payment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindCandidatePayments(ctx context.Context, amount decimal.Decimal, from, to time.Time) ([]domain.Payment, error) {
	args := m.Called(ctx, amount, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SaveAllocation(ctx context.Context, payment domain.Payment, installments []domain.Installment, loan domain.Loan) error {
	args := m.Called(ctx, payment, installments, loan)
	return args.Error(0)
}

// --- Mock ReconciliationRepository ---

type MockReconciliationRepository struct {
	mock.Mock
}

func (m *MockReconciliationRepository) FindRecordByID(ctx context.Context, recordID string) (*domain.ReconciliationRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationRecord), args.Error(1)
}

func (m *MockReconciliationRepository) ListRecordsByStatus(ctx context.Context, status domain.MatchStatus) ([]domain.ReconciliationRecord, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationRecord), args.Error(1)
}

func (m *MockReconciliationRepository) SaveRecords(ctx context.Context, records []domain.ReconciliationRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockReconciliationRepository) PromoteToReconciled(ctx context.Context, recordID string, updatedBy string, updatedAt time.Time) (*domain.ReconciliationRecord, error) {
	args := m.Called(ctx, recordID, updatedBy, updatedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationRecord), args.Error(1)
}

func (m *MockReconciliationRepository) LockDay(ctx context.Context, dayStart, dayEnd time.Time, updatedBy string, updatedAt time.Time) (int64, error) {
	args := m.Called(ctx, dayStart, dayEnd, updatedBy, updatedAt)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock JobRunRepository ---

type MockJobRunRepository struct {
	mock.Mock
}

func (m *MockJobRunRepository) TryInsertRunRecord(ctx context.Context, record domain.JobRunRecord) (bool, error) {
	args := m.Called(ctx, record)
	return args.Bool(0), args.Error(1)
}

// --- Mock ScheduleService ---

type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) GenerateSchedule(loanID string, principal decimal.Decimal, annualRatePercent decimal.Decimal, termMonths int, startDate time.Time) ([]domain.Installment, error) {
	args := m.Called(loanID, principal, annualRatePercent, termMonths, startDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Installment), args.Error(1)
}
