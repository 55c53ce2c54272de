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
)

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockReconRepo   *MockReconciliationRepository
	mockPaymentRepo *MockPaymentRepository
	service         portssvc.ReconciliationSvcFacade
	stmtDate        time.Time
}

func (suite *ReconciliationServiceTestSuite) SetupTest() {
	suite.mockReconRepo = new(MockReconciliationRepository)
	suite.mockPaymentRepo = new(MockPaymentRepository)
	suite.service = services.NewReconciliationService(suite.mockReconRepo, suite.mockPaymentRepo, testConfig())
	suite.stmtDate = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
}

func (suite *ReconciliationServiceTestSuite) payment(ref string, amount int64, date time.Time) *domain.Payment {
	return &domain.Payment{
		PaymentID:   uuid.NewString(),
		LoanID:      uuid.NewString(),
		Amount:      decimal.NewFromInt(amount),
		ExternalRef: ref,
		PaymentDate: date,
		Status:      domain.PaymentAllocated,
	}
}

func (suite *ReconciliationServiceTestSuite) expectSave() {
	suite.mockReconRepo.On("SaveRecords", mock.Anything, mock.AnythingOfType("[]domain.ReconciliationRecord")).Return(nil).Once()
}

func (suite *ReconciliationServiceTestSuite) TestIngest_ExactMatch() {
	ctx := context.Background()
	payment := suite.payment("TXN123", 5000, suite.stmtDate)
	lines := []domain.StatementLine{{
		Amount:          decimal.NewFromInt(5000),
		ExternalRef:     "TXN123",
		TransactionDate: suite.stmtDate,
		Narration:       "NEFT TXN123",
	}}

	suite.mockPaymentRepo.On("FindPaymentByExternalRef", mock.Anything, "TXN123").Return(payment, nil).Once()
	suite.expectSave()

	summary, err := suite.service.IngestStatementBatch(ctx, lines, "recon-op")

	suite.Require().NoError(err)
	suite.Equal(1, summary.Matched)
	suite.Zero(summary.Review)
	suite.Zero(summary.Unmatched)
	suite.Require().Len(summary.Records, 1)
	suite.Equal(string(domain.MatchMatched), summary.Records[0].Status)
	suite.Equal(string(domain.TierExact), summary.Records[0].Tier)
	suite.Equal(payment.PaymentID, summary.Records[0].MatchedPaymentID)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
	suite.mockReconRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestIngest_SemiMatchGoesToReview() {
	ctx := context.Background()
	payment := suite.payment("OTHER-REF", 5000, suite.stmtDate.AddDate(0, 0, -1))
	lines := []domain.StatementLine{{
		Amount:          decimal.NewFromInt(5000),
		TransactionDate: suite.stmtDate,
		Narration:       "cash deposit",
	}}

	// No reference on the line: the SEMI window (±1 day) finds the candidate.
	suite.mockPaymentRepo.On("FindCandidatePayments", mock.Anything, decimal.NewFromInt(5000),
		suite.stmtDate.AddDate(0, 0, -1), suite.stmtDate.AddDate(0, 0, 2)).
		Return([]domain.Payment{*payment}, nil).Once()
	suite.expectSave()

	summary, err := suite.service.IngestStatementBatch(ctx, lines, "recon-op")

	suite.Require().NoError(err)
	suite.Equal(1, summary.Review)
	suite.Equal(string(domain.MatchReview), summary.Records[0].Status)
	suite.Equal(string(domain.TierSemi), summary.Records[0].Tier)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestIngest_LooseMatchFlagged() {
	ctx := context.Background()
	payment := suite.payment("", 5000, suite.stmtDate.AddDate(0, 0, -2))
	lines := []domain.StatementLine{{
		Amount:          decimal.NewFromInt(5000),
		TransactionDate: suite.stmtDate,
	}}

	suite.mockPaymentRepo.On("FindCandidatePayments", mock.Anything, decimal.NewFromInt(5000),
		suite.stmtDate.AddDate(0, 0, -1), suite.stmtDate.AddDate(0, 0, 2)).
		Return([]domain.Payment{}, nil).Once()
	suite.mockPaymentRepo.On("FindCandidatePayments", mock.Anything, decimal.NewFromInt(5000),
		suite.stmtDate.AddDate(0, 0, -2), suite.stmtDate.AddDate(0, 0, 3)).
		Return([]domain.Payment{*payment}, nil).Once()
	suite.expectSave()

	summary, err := suite.service.IngestStatementBatch(ctx, lines, "recon-op")

	suite.Require().NoError(err)
	suite.Equal(1, summary.Flagged)
	suite.Equal(string(domain.MatchFlag), summary.Records[0].Status)
	suite.Equal(string(domain.TierLoose), summary.Records[0].Tier)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestIngest_Unmatched() {
	ctx := context.Background()
	lines := []domain.StatementLine{{
		Amount:          decimal.NewFromInt(9999),
		ExternalRef:     "TXN-GHOST",
		TransactionDate: suite.stmtDate,
	}}

	suite.mockPaymentRepo.On("FindPaymentByExternalRef", mock.Anything, "TXN-GHOST").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockPaymentRepo.On("FindCandidatePayments", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Payment{}, nil).Twice()
	suite.expectSave()

	summary, err := suite.service.IngestStatementBatch(ctx, lines, "recon-op")

	suite.Require().NoError(err)
	suite.Equal(1, summary.Unmatched)
	suite.Equal(string(domain.MatchUnmatched), summary.Records[0].Status)
	suite.Empty(summary.Records[0].MatchedPaymentID)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestIngest_PaymentConsumedOncePerBatch() {
	ctx := context.Background()
	payment := suite.payment("", 5000, suite.stmtDate)
	lines := []domain.StatementLine{
		{Amount: decimal.NewFromInt(5000), TransactionDate: suite.stmtDate},
		{Amount: decimal.NewFromInt(5000), TransactionDate: suite.stmtDate},
	}

	// Both lines see the same single candidate; only the first may take it.
	suite.mockPaymentRepo.On("FindCandidatePayments", mock.Anything, decimal.NewFromInt(5000), mock.Anything, mock.Anything).
		Return([]domain.Payment{*payment}, nil)
	suite.expectSave()

	summary, err := suite.service.IngestStatementBatch(ctx, lines, "recon-op")

	suite.Require().NoError(err)
	suite.Equal(1, summary.Review)
	suite.Equal(1, summary.Unmatched)
	suite.mockReconRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestIngest_ReconciledPaymentIgnoredForExact() {
	ctx := context.Background()
	payment := suite.payment("TXN-DONE", 5000, suite.stmtDate)
	payment.Reconciled = true
	lines := []domain.StatementLine{{
		Amount:          decimal.NewFromInt(5000),
		ExternalRef:     "TXN-DONE",
		TransactionDate: suite.stmtDate,
	}}

	suite.mockPaymentRepo.On("FindPaymentByExternalRef", mock.Anything, "TXN-DONE").Return(payment, nil).Once()
	suite.mockPaymentRepo.On("FindCandidatePayments", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Payment{}, nil).Twice()
	suite.expectSave()

	summary, err := suite.service.IngestStatementBatch(ctx, lines, "recon-op")

	suite.Require().NoError(err)
	suite.Equal(1, summary.Unmatched)
	suite.mockPaymentRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestIngest_ValidationFailures() {
	ctx := context.Background()

	_, err := suite.service.IngestStatementBatch(ctx, nil, "recon-op")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.IngestStatementBatch(ctx, []domain.StatementLine{
		{Amount: decimal.Zero, TransactionDate: suite.stmtDate},
	}, "recon-op")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.IngestStatementBatch(ctx, []domain.StatementLine{
		{Amount: decimal.NewFromInt(100)},
	}, "recon-op")
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.mockReconRepo.AssertNotCalled(suite.T(), "SaveRecords", mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestConfirmRecord_Success() {
	ctx := context.Background()
	recordID := uuid.NewString()
	record := &domain.ReconciliationRecord{RecordID: recordID, Status: domain.MatchReview, MatchedPaymentID: uuid.NewString()}
	promoted := &domain.ReconciliationRecord{RecordID: recordID, Status: domain.MatchReconciled, MatchedPaymentID: record.MatchedPaymentID}

	suite.mockReconRepo.On("FindRecordByID", mock.Anything, recordID).Return(record, nil).Once()
	suite.mockReconRepo.On("PromoteToReconciled", mock.Anything, recordID, "recon-op", mock.AnythingOfType("time.Time")).Return(promoted, nil).Once()

	resp, err := suite.service.ConfirmRecord(ctx, recordID, "recon-op")

	suite.Require().NoError(err)
	suite.Equal(string(domain.MatchReconciled), resp.Status)
	suite.mockReconRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestConfirmRecord_LockedRejected() {
	ctx := context.Background()
	recordID := uuid.NewString()
	record := &domain.ReconciliationRecord{RecordID: recordID, Status: domain.MatchLocked}

	suite.mockReconRepo.On("FindRecordByID", mock.Anything, recordID).Return(record, nil).Once()

	resp, err := suite.service.ConfirmRecord(ctx, recordID, "recon-op")

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrLockedRecord)
	suite.mockReconRepo.AssertNotCalled(suite.T(), "PromoteToReconciled", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ReconciliationServiceTestSuite) TestConfirmRecord_UnmatchedRejected() {
	ctx := context.Background()
	recordID := uuid.NewString()
	record := &domain.ReconciliationRecord{RecordID: recordID, Status: domain.MatchUnmatched}

	suite.mockReconRepo.On("FindRecordByID", mock.Anything, recordID).Return(record, nil).Once()

	resp, err := suite.service.ConfirmRecord(ctx, recordID, "recon-op")

	suite.Require().Error(err)
	suite.Nil(resp)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReconciliationServiceTestSuite) TestLockDay() {
	ctx := context.Background()
	day := time.Date(2025, 6, 15, 14, 45, 0, 0, time.UTC)
	dayStart := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	suite.mockReconRepo.On("LockDay", mock.Anything, dayStart, dayStart.AddDate(0, 0, 1), "recon-op", mock.AnythingOfType("time.Time")).
		Return(int64(3), nil).Once()

	locked, err := suite.service.LockDay(ctx, day, "recon-op")

	suite.Require().NoError(err)
	suite.Equal(int64(3), locked)
	suite.mockReconRepo.AssertExpectations(suite.T())
}

func (suite *ReconciliationServiceTestSuite) TestListReviewQueue_ReviewBeforeFlag() {
	ctx := context.Background()
	review := []domain.ReconciliationRecord{{RecordID: uuid.NewString(), Status: domain.MatchReview}}
	flagged := []domain.ReconciliationRecord{{RecordID: uuid.NewString(), Status: domain.MatchFlag}}

	suite.mockReconRepo.On("ListRecordsByStatus", mock.Anything, domain.MatchReview).Return(review, nil).Once()
	suite.mockReconRepo.On("ListRecordsByStatus", mock.Anything, domain.MatchFlag).Return(flagged, nil).Once()

	queue, err := suite.service.ListReviewQueue(ctx)

	suite.Require().NoError(err)
	suite.Require().Len(queue, 2)
	suite.Equal(string(domain.MatchReview), queue[0].Status)
	suite.Equal(string(domain.MatchFlag), queue[1].Status)
	suite.mockReconRepo.AssertExpectations(suite.T())
}

func TestReconciliationService(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
