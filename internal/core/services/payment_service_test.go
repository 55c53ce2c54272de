package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/lendcraft/loan_servicing_app/internal/apperrors"
	"github.com/lendcraft/loan_servicing_app/internal/core/domain"
	portssvc "github.com/lendcraft/loan_servicing_app/internal/core/ports/services"
	"github.com/lendcraft/loan_servicing_app/internal/core/services"
	"github.com/lendcraft/loan_servicing_app/internal/dto"
)

type PaymentServiceTestSuite struct {
	suite.Suite
	mockLoanRepo    *MockLoanRepository
	mockPaymentRepo *MockPaymentRepository
	service         portssvc.PaymentSvcFacade
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	suite.mockLoanRepo = new(MockLoanRepository)
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.service = services.NewPaymentService(suite.mockLoanRepo, suite.mockPaymentRepo, testConfig())
}

func (suite *PaymentServiceTestSuite) activeLoan(loanID string) *domain.Loan {
	return &domain.Loan{
		LoanID:            loanID,
		Status:            domain.StatusActive,
		Principal:         decimal.NewFromInt(100000),
		OutstandingAmount: decimal.NewFromInt(15000),
	}
}

func (suite *PaymentServiceTestSuite) dueSchedule(loanID string, count int) []domain.Installment {
	today := time.Now().UTC()
	installments := make([]domain.Installment, count)
	for i := 0; i < count; i++ {
		installments[i] = domain.Installment{
			InstallmentID: uuid.NewString(),
			LoanID:        loanID,
			Sequence:      i + 1,
			DueDate:       today,
			PrincipalDue:  decimal.NewFromInt(4000),
			InterestDue:   decimal.NewFromInt(1000),
			PenaltyDue:    decimal.Zero,
			PrincipalPaid: decimal.Zero,
			InterestPaid:  decimal.Zero,
			PenaltyPaid:   decimal.Zero,
			Status:        domain.InstallmentPending,
		}
	}
	return installments
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_Success() {
	ctx := context.Background()
	loanID := uuid.NewString()
	req := dto.CreatePaymentRequest{
		Amount:      decimal.NewFromInt(12000),
		Method:      string(domain.MethodBankTransfer),
		ExternalRef: "TXN-001",
		PaymentDate: time.Now().UTC(),
	}

	suite.mockPaymentRepo.On("FindPaymentByExternalRef", ctx, "TXN-001").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockLoanRepo.On("FindLoanByID", ctx, loanID).Return(suite.activeLoan(loanID), nil).Once()
	suite.mockLoanRepo.On("FindInstallmentsByLoanID", ctx, loanID).Return(suite.dueSchedule(loanID, 3), nil).Once()
	suite.mockPaymentRepo.On("SaveAllocation", ctx,
		mock.MatchedBy(func(p domain.Payment) bool {
			return p.LoanID == loanID &&
				p.Amount.Equal(req.Amount) &&
				p.PrincipalPortion.Equal(decimal.NewFromInt(9000)) &&
				p.InterestPortion.Equal(decimal.NewFromInt(3000)) &&
				p.ExcessAmount.IsZero()
		}),
		mock.AnythingOfType("[]domain.Installment"),
		mock.MatchedBy(func(l domain.Loan) bool {
			return l.OutstandingAmount.Equal(decimal.NewFromInt(3000))
		}),
	).Return(nil).Once()

	result, err := suite.service.SubmitPayment(ctx, loanID, req, "teller-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.False(result.Duplicate)
	suite.Equal("TXN-001", result.Payment.ExternalRef)
	suite.True(result.Payment.PrincipalPortion.Equal(decimal.NewFromInt(9000)))
	suite.mockLoanRepo.AssertExpectations(suite.T())
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_IdempotentResubmission() {
	ctx := context.Background()
	loanID := uuid.NewString()
	existing := &domain.Payment{
		PaymentID:   uuid.NewString(),
		LoanID:      loanID,
		Amount:      decimal.NewFromInt(5000),
		ExternalRef: "TXN-DUP",
		Status:      domain.PaymentAllocated,
	}
	req := dto.CreatePaymentRequest{
		Amount:      decimal.NewFromInt(5000),
		Method:      string(domain.MethodGateway),
		ExternalRef: "TXN-DUP",
		PaymentDate: time.Now().UTC(),
	}

	suite.mockPaymentRepo.On("FindPaymentByExternalRef", ctx, "TXN-DUP").Return(existing, nil).Once()

	result, err := suite.service.SubmitPayment(ctx, loanID, req, "teller-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.True(result.Duplicate)
	suite.Equal(existing.PaymentID, result.Payment.PaymentID)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "SaveAllocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_ConflictingReference() {
	ctx := context.Background()
	existing := &domain.Payment{
		PaymentID:   uuid.NewString(),
		LoanID:      uuid.NewString(),
		Amount:      decimal.NewFromInt(5000),
		ExternalRef: "TXN-CONFLICT",
	}
	req := dto.CreatePaymentRequest{
		Amount:      decimal.NewFromInt(7000), // differs from the original
		Method:      string(domain.MethodGateway),
		ExternalRef: "TXN-CONFLICT",
		PaymentDate: time.Now().UTC(),
	}

	suite.mockPaymentRepo.On("FindPaymentByExternalRef", ctx, "TXN-CONFLICT").Return(existing, nil).Once()

	result, err := suite.service.SubmitPayment(ctx, uuid.NewString(), req, "teller-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrDuplicateTransaction)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_FutureDateRejected() {
	ctx := context.Background()
	req := dto.CreatePaymentRequest{
		Amount:      decimal.NewFromInt(5000),
		Method:      string(domain.MethodCash),
		ExternalRef: "TXN-FUT",
		PaymentDate: time.Now().UTC().AddDate(0, 0, 2),
	}

	result, err := suite.service.SubmitPayment(ctx, uuid.NewString(), req, "teller-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_BackdatedBeyondWindow() {
	ctx := context.Background()
	req := dto.CreatePaymentRequest{
		Amount:      decimal.NewFromInt(5000),
		Method:      string(domain.MethodCheque),
		ExternalRef: "TXN-OLD",
		PaymentDate: time.Now().UTC().AddDate(0, 0, -10),
	}

	result, err := suite.service.SubmitPayment(ctx, uuid.NewString(), req, "teller-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrApprovalRequired)
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_BackdatedWithApproval() {
	ctx := context.Background()
	loanID := uuid.NewString()
	req := dto.CreatePaymentRequest{
		Amount:           decimal.NewFromInt(5000),
		Method:           string(domain.MethodCheque),
		ExternalRef:      "TXN-OLD-OK",
		PaymentDate:      time.Now().UTC().AddDate(0, 0, -10),
		BackdateApproved: true,
	}

	suite.mockPaymentRepo.On("FindPaymentByExternalRef", ctx, "TXN-OLD-OK").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockLoanRepo.On("FindLoanByID", ctx, loanID).Return(suite.activeLoan(loanID), nil).Once()
	suite.mockLoanRepo.On("FindInstallmentsByLoanID", ctx, loanID).Return(suite.dueSchedule(loanID, 1), nil).Once()
	suite.mockPaymentRepo.On("SaveAllocation", ctx, mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("[]domain.Installment"), mock.AnythingOfType("domain.Loan")).Return(nil).Once()

	result, err := suite.service.SubmitPayment(ctx, loanID, req, "supervisor-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_NonServiceableLoan() {
	ctx := context.Background()
	loanID := uuid.NewString()
	loan := &domain.Loan{LoanID: loanID, Status: domain.StatusApproved}
	req := dto.CreatePaymentRequest{
		Amount:      decimal.NewFromInt(5000),
		Method:      string(domain.MethodCash),
		ExternalRef: "TXN-NA",
		PaymentDate: time.Now().UTC(),
	}

	suite.mockPaymentRepo.On("FindPaymentByExternalRef", ctx, "TXN-NA").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockLoanRepo.On("FindLoanByID", ctx, loanID).Return(loan, nil).Once()

	result, err := suite.service.SubmitPayment(ctx, loanID, req, "teller-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPaymentRepo.AssertNotCalled(suite.T(), "SaveAllocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_UnknownMethod() {
	ctx := context.Background()
	req := dto.CreatePaymentRequest{
		Amount:      decimal.NewFromInt(5000),
		Method:      "CARRIER_PIGEON",
		ExternalRef: "TXN-PIGEON",
		PaymentDate: time.Now().UTC(),
	}

	result, err := suite.service.SubmitPayment(ctx, uuid.NewString(), req, "teller-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_RaceOnReference() {
	ctx := context.Background()
	loanID := uuid.NewString()
	req := dto.CreatePaymentRequest{
		Amount:      decimal.NewFromInt(5000),
		Method:      string(domain.MethodGateway),
		ExternalRef: "TXN-RACE",
		PaymentDate: time.Now().UTC(),
	}

	suite.mockPaymentRepo.On("FindPaymentByExternalRef", ctx, "TXN-RACE").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockLoanRepo.On("FindLoanByID", ctx, loanID).Return(suite.activeLoan(loanID), nil).Once()
	suite.mockLoanRepo.On("FindInstallmentsByLoanID", ctx, loanID).Return(suite.dueSchedule(loanID, 1), nil).Once()
	suite.mockPaymentRepo.On("SaveAllocation", ctx, mock.AnythingOfType("domain.Payment"), mock.AnythingOfType("[]domain.Installment"), mock.AnythingOfType("domain.Loan")).Return(apperrors.ErrDuplicate).Once()

	result, err := suite.service.SubmitPayment(ctx, loanID, req, "teller-1")

	suite.Require().Error(err)
	suite.Nil(result)
	suite.ErrorIs(err, apperrors.ErrDuplicateTransaction)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestSubmitPayment_ExcessSurfaced() {
	ctx := context.Background()
	loanID := uuid.NewString()
	req := dto.CreatePaymentRequest{
		Amount:      decimal.NewFromInt(8000),
		Method:      string(domain.MethodBankTransfer),
		ExternalRef: "TXN-EXCESS",
		PaymentDate: time.Now().UTC(),
	}

	suite.mockPaymentRepo.On("FindPaymentByExternalRef", ctx, "TXN-EXCESS").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockLoanRepo.On("FindLoanByID", ctx, loanID).Return(suite.activeLoan(loanID), nil).Once()
	suite.mockLoanRepo.On("FindInstallmentsByLoanID", ctx, loanID).Return(suite.dueSchedule(loanID, 1), nil).Once()
	suite.mockPaymentRepo.On("SaveAllocation", ctx,
		mock.MatchedBy(func(p domain.Payment) bool {
			return p.ExcessAmount.Equal(decimal.NewFromInt(3000))
		}),
		mock.AnythingOfType("[]domain.Installment"),
		mock.AnythingOfType("domain.Loan"),
	).Return(nil).Once()

	result, err := suite.service.SubmitPayment(ctx, loanID, req, "teller-1")

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.True(result.Payment.ExcessAmount.Equal(decimal.NewFromInt(3000)),
		"excess = %s", result.Payment.ExcessAmount)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *PaymentServiceTestSuite) TestGetPaymentsByLoanID() {
	ctx := context.Background()
	loanID := uuid.NewString()
	payments := []domain.Payment{
		{PaymentID: uuid.NewString(), LoanID: loanID, Amount: decimal.NewFromInt(5000)},
		{PaymentID: uuid.NewString(), LoanID: loanID, Amount: decimal.NewFromInt(3000)},
	}

	suite.mockLoanRepo.On("FindLoanByID", ctx, loanID).Return(suite.activeLoan(loanID), nil).Once()
	suite.mockPaymentRepo.On("ListPaymentsByLoanID", ctx, loanID).Return(payments, nil).Once()

	responses, err := suite.service.GetPaymentsByLoanID(ctx, loanID)

	suite.Require().NoError(err)
	suite.Len(responses, 2)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
