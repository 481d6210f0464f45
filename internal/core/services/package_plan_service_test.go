package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/curasoft/hospital_billing_app/internal/apperrors"
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portssvc "github.com/curasoft/hospital_billing_app/internal/core/ports/services"
	"github.com/curasoft/hospital_billing_app/internal/core/services"
	"github.com/curasoft/hospital_billing_app/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PackagePlanTestSuite struct {
	suite.Suite
	mockTxManager  *MockGLRepository
	mockPlanRepo   *MockPlanRepository
	mockInvoice    *MockInvoiceRepository
	mockStateRepo  *MockPostingStateRepository
	mockCreditNote *MockCreditNoteService
	service        portssvc.PackagePlanSvcFacade
	actor          dto.Actor
	invoiceID      string
	lineItemID     string
}

func (suite *PackagePlanTestSuite) SetupTest() {
	suite.mockTxManager = new(MockGLRepository)
	suite.mockPlanRepo = new(MockPlanRepository)
	suite.mockInvoice = new(MockInvoiceRepository)
	suite.mockStateRepo = new(MockPostingStateRepository)
	suite.mockCreditNote = new(MockCreditNoteService)

	suite.service = services.NewPackagePlanService(
		suite.mockTxManager,
		suite.mockPlanRepo,
		suite.mockInvoice,
		suite.mockStateRepo,
		suite.mockCreditNote,
	)

	suite.actor = dto.Actor{
		HospitalID: uuid.NewString(),
		BranchID:   uuid.NewString(),
		UserID:     uuid.NewString(),
		Permissions: domain.Permissions{
			CanPostDocuments:    true,
			CanReplanPlans:      true,
			CanDiscontinuePlans: true,
		},
	}
	suite.invoiceID = uuid.NewString()
	suite.lineItemID = uuid.NewString()
}

func (suite *PackagePlanTestSuite) fundingInvoice(lineTotal decimal.Decimal) *domain.Invoice {
	return &domain.Invoice{
		InvoiceID:  suite.invoiceID,
		HospitalID: suite.actor.HospitalID,
		BranchID:   suite.actor.BranchID,
		PatientID:  uuid.NewString(),
		LineItems: []domain.InvoiceLineItem{
			{LineItemID: suite.lineItemID, InvoiceID: suite.invoiceID, ItemType: domain.ItemTypePackage, LineTotal: lineTotal},
		},
	}
}

func (suite *PackagePlanTestSuite) TestCreatePlan_InstallmentsSumExactly() {
	ctx := context.Background()
	req := dto.CreatePlanRequest{
		PatientID:            uuid.NewString(),
		InvoiceID:            suite.invoiceID,
		LineItemID:           suite.lineItemID,
		PackageID:            uuid.NewString(),
		TotalAmount:          d("10000.00"),
		TotalSessions:        12,
		InstallmentCount:     3,
		Frequency:            "monthly",
		FirstInstallmentDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}

	suite.mockInvoice.On("FindInvoiceByID", ctx, suite.invoiceID).Return(suite.fundingInvoice(d("10000.00")), nil).Once()
	suite.mockTxManager.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockTxManager.On("Rollback", ctx, nil).Return(nil).Once()
	suite.mockPlanRepo.On("FindPlanByLineItemInTx", ctx, nil, suite.lineItemID).Return(nil, apperrors.ErrNotFound).Once()

	var savedInstallments []domain.InstallmentPayment
	var savedSessions []domain.PackageSession
	suite.mockPlanRepo.On("SavePlanInTx", ctx, nil, mock.AnythingOfType("domain.PackagePaymentPlan"), mock.AnythingOfType("[]domain.InstallmentPayment"), mock.AnythingOfType("[]domain.PackageSession")).
		Run(func(args mock.Arguments) {
			savedInstallments = args.Get(3).([]domain.InstallmentPayment)
			savedSessions = args.Get(4).([]domain.PackageSession)
		}).Return(nil).Once()
	suite.mockTxManager.On("Commit", ctx, nil).Return(nil).Once()

	resp, err := suite.service.CreatePlan(ctx, req, suite.actor)

	suite.Require().NoError(err)
	suite.Equal(domain.PlanStatusActive, domain.PlanStatus(resp.Status))

	// 10000/3: two at 3333.33, the last absorbs the remainder.
	suite.Require().Len(savedInstallments, 3)
	suite.True(savedInstallments[0].Amount.Equal(d("3333.33")))
	suite.True(savedInstallments[1].Amount.Equal(d("3333.33")))
	suite.True(savedInstallments[2].Amount.Equal(d("3333.34")))
	sum := decimal.Zero
	for _, inst := range savedInstallments {
		sum = sum.Add(inst.Amount)
	}
	suite.True(sum.Equal(d("10000.00")))

	// monthly spacing, 30-day approximation
	suite.Equal(30, int(savedInstallments[1].DueDate.Sub(savedInstallments[0].DueDate).Hours()/24))

	suite.Require().Len(savedSessions, 12)
	suite.Equal(1, savedSessions[0].SessionNumber)
	suite.Equal(domain.SessionScheduled, savedSessions[11].Status)
}

func (suite *PackagePlanTestSuite) TestCreatePlan_NonPackageLineRejected() {
	ctx := context.Background()
	invoice := suite.fundingInvoice(d("500.00"))
	invoice.LineItems[0].ItemType = domain.ItemTypeService
	req := dto.CreatePlanRequest{
		PatientID:            uuid.NewString(),
		InvoiceID:            suite.invoiceID,
		LineItemID:           suite.lineItemID,
		PackageID:            uuid.NewString(),
		TotalAmount:          d("500.00"),
		TotalSessions:        5,
		InstallmentCount:     2,
		Frequency:            "weekly",
		FirstInstallmentDate: time.Now(),
	}

	suite.mockInvoice.On("FindInvoiceByID", ctx, suite.invoiceID).Return(invoice, nil).Once()

	_, err := suite.service.CreatePlan(ctx, req, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPlanRepo.AssertNotCalled(suite.T(), "SavePlanInTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PackagePlanTestSuite) TestCreatePlan_DuplicateFundingLine() {
	ctx := context.Background()
	req := dto.CreatePlanRequest{
		PatientID:            uuid.NewString(),
		InvoiceID:            suite.invoiceID,
		LineItemID:           suite.lineItemID,
		PackageID:            uuid.NewString(),
		TotalAmount:          d("10000.00"),
		TotalSessions:        10,
		InstallmentCount:     4,
		Frequency:            "weekly",
		FirstInstallmentDate: time.Now(),
	}

	suite.mockInvoice.On("FindInvoiceByID", ctx, suite.invoiceID).Return(suite.fundingInvoice(d("10000.00")), nil).Once()
	suite.mockTxManager.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockTxManager.On("Rollback", ctx, nil).Return(nil).Once()
	suite.mockPlanRepo.On("FindPlanByLineItemInTx", ctx, nil, suite.lineItemID).
		Return(&domain.PackagePaymentPlan{PlanID: uuid.NewString(), LineItemID: suite.lineItemID}, nil).Once()

	_, err := suite.service.CreatePlan(ctx, req, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *PackagePlanTestSuite) TestReplanPlan_BelowPaidCountRejected() {
	ctx := context.Background()
	planID := uuid.NewString()
	plan := &domain.PackagePaymentPlan{
		PlanID:           planID,
		TotalAmount:      d("10000.00"),
		TotalSessions:    10,
		InstallmentCount: 4,
		Frequency:        domain.FrequencyMonthly,
		Status:           domain.PlanStatusActive,
	}
	installments := []domain.InstallmentPayment{
		{InstallmentID: "i1", PlanID: planID, InstallmentNumber: 1, Amount: d("2500.00"), PaidAmount: d("2500.00"), Status: domain.InstallmentPaid},
		{InstallmentID: "i2", PlanID: planID, InstallmentNumber: 2, Amount: d("2500.00"), PaidAmount: d("2500.00"), Status: domain.InstallmentPaid},
		{InstallmentID: "i3", PlanID: planID, InstallmentNumber: 3, Amount: d("2500.00"), PaidAmount: d("1000.00"), Status: domain.InstallmentPartial},
		{InstallmentID: "i4", PlanID: planID, InstallmentNumber: 4, Amount: d("2500.00"), Status: domain.InstallmentPending},
	}

	suite.mockTxManager.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockTxManager.On("Rollback", ctx, nil).Return(nil).Once()
	suite.mockPlanRepo.On("FindPlanForUpdateInTx", ctx, nil, planID).Return(plan, nil).Once()
	suite.mockPlanRepo.On("FindInstallmentsInTx", ctx, nil, planID).Return(installments, nil).Once()

	// two paid plus one partial: shrinking to 2 must fail without touching rows
	_, err := suite.service.ReplanPlan(ctx, planID, dto.ReplanRequest{TotalSessions: 10, InstallmentCount: 2}, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPlanRepo.AssertNotCalled(suite.T(), "UpdateInstallmentInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockPlanRepo.AssertNotCalled(suite.T(), "UpdatePlanInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxManager.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *PackagePlanTestSuite) TestReplanPlan_UnpaidBalanceNeedsOpenInstallment() {
	ctx := context.Background()
	planID := uuid.NewString()
	plan := &domain.PackagePaymentPlan{
		PlanID:           planID,
		TotalAmount:      d("3000.00"),
		TotalSessions:    6,
		InstallmentCount: 3,
		Frequency:        domain.FrequencyMonthly,
		Status:           domain.PlanStatusActive,
	}
	installments := []domain.InstallmentPayment{
		{InstallmentID: "i1", PlanID: planID, InstallmentNumber: 1, Amount: d("1000.00"), PaidAmount: d("1000.00"), Status: domain.InstallmentPaid},
		{InstallmentID: "i2", PlanID: planID, InstallmentNumber: 2, Amount: d("1000.00"), Status: domain.InstallmentPending},
		{InstallmentID: "i3", PlanID: planID, InstallmentNumber: 3, Amount: d("1000.00"), Status: domain.InstallmentPending},
	}

	suite.mockTxManager.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockTxManager.On("Rollback", ctx, nil).Return(nil).Once()
	suite.mockPlanRepo.On("FindPlanForUpdateInTx", ctx, nil, planID).Return(plan, nil).Once()
	suite.mockPlanRepo.On("FindInstallmentsInTx", ctx, nil, planID).Return(installments, nil).Once()

	// one installment paid, 2000 still owed: shrinking to 1 would leave the
	// unpaid balance with no installment to land on
	_, err := suite.service.ReplanPlan(ctx, planID, dto.ReplanRequest{TotalSessions: 6, InstallmentCount: 1}, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockPlanRepo.AssertNotCalled(suite.T(), "DeleteInstallmentsInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockPlanRepo.AssertNotCalled(suite.T(), "InsertInstallmentsInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockPlanRepo.AssertNotCalled(suite.T(), "UpdatePlanInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxManager.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *PackagePlanTestSuite) TestReplanPlan_ReamortizesUnpaidBalance() {
	ctx := context.Background()
	planID := uuid.NewString()
	plan := &domain.PackagePaymentPlan{
		PlanID:           planID,
		HospitalID:       suite.actor.HospitalID,
		TotalAmount:      d("10000.00"),
		TotalSessions:    10,
		InstallmentCount: 4,
		Frequency:        domain.FrequencyMonthly,
		Status:           domain.PlanStatusActive,
	}
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	installments := []domain.InstallmentPayment{
		{InstallmentID: "i1", PlanID: planID, InstallmentNumber: 1, DueDate: start, Amount: d("2500.00"), PaidAmount: d("2500.00"), Status: domain.InstallmentPaid},
		{InstallmentID: "i2", PlanID: planID, InstallmentNumber: 2, DueDate: start.AddDate(0, 0, 30), Amount: d("2500.00"), Status: domain.InstallmentPending},
		{InstallmentID: "i3", PlanID: planID, InstallmentNumber: 3, DueDate: start.AddDate(0, 0, 60), Amount: d("2500.00"), Status: domain.InstallmentPending},
		{InstallmentID: "i4", PlanID: planID, InstallmentNumber: 4, DueDate: start.AddDate(0, 0, 90), Amount: d("2500.00"), Status: domain.InstallmentPending},
	}
	sessions := []domain.PackageSession{}
	for i := 1; i <= 10; i++ {
		sessions = append(sessions, domain.PackageSession{SessionID: uuid.NewString(), PlanID: planID, SessionNumber: i, Status: domain.SessionScheduled})
	}

	suite.mockTxManager.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockTxManager.On("Rollback", ctx, nil).Return(nil).Once()
	suite.mockPlanRepo.On("FindPlanForUpdateInTx", ctx, nil, planID).Return(plan, nil).Once()
	suite.mockPlanRepo.On("FindInstallmentsInTx", ctx, nil, planID).Return(installments, nil).Once()
	suite.mockPlanRepo.On("DeleteInstallmentsInTx", ctx, nil, []string{"i2", "i3", "i4"}).Return(nil).Once()

	var inserted []domain.InstallmentPayment
	suite.mockPlanRepo.On("InsertInstallmentsInTx", ctx, nil, mock.AnythingOfType("[]domain.InstallmentPayment")).
		Run(func(args mock.Arguments) { inserted = args.Get(2).([]domain.InstallmentPayment) }).
		Return(nil).Once()
	suite.mockPlanRepo.On("FindSessionsInTx", ctx, nil, planID).Return(sessions, nil).Twice()
	suite.mockPlanRepo.On("UpdatePlanInTx", ctx, nil, mock.AnythingOfType("domain.PackagePaymentPlan")).Return(nil).Once()
	// final re-reads for the response
	suite.mockPlanRepo.On("FindInstallmentsInTx", ctx, nil, planID).Return(installments, nil).Once()
	suite.mockTxManager.On("Commit", ctx, nil).Return(nil).Once()

	resp, err := suite.service.ReplanPlan(ctx, planID, dto.ReplanRequest{TotalSessions: 10, InstallmentCount: 3}, suite.actor)

	suite.Require().NoError(err)
	suite.Require().NotNil(resp)

	// 7500 unpaid over 2 fresh installments, numbered after the paid one
	suite.Require().Len(inserted, 2)
	suite.Equal(2, inserted[0].InstallmentNumber)
	suite.Equal(3, inserted[1].InstallmentNumber)
	suite.True(inserted[0].Amount.Equal(d("3750.00")))
	suite.True(inserted[1].Amount.Equal(d("3750.00")))
	suite.Equal(30, int(inserted[0].DueDate.Sub(start).Hours()/24))
}

func (suite *PackagePlanTestSuite) TestDiscontinuePlan_ComputesRefundAndCreditNote() {
	ctx := context.Background()
	planID := uuid.NewString()
	patientID := uuid.NewString()
	plan := &domain.PackagePaymentPlan{
		PlanID:            planID,
		HospitalID:        suite.actor.HospitalID,
		BranchID:          suite.actor.BranchID,
		PatientID:         patientID,
		InvoiceID:         suite.invoiceID,
		LineItemID:        suite.lineItemID,
		TotalAmount:       d("10000.00"),
		PaidAmount:        d("5000.00"),
		TotalSessions:     10,
		CompletedSessions: 3,
		Status:            domain.PlanStatusActive,
	}

	suite.mockTxManager.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockTxManager.On("Rollback", ctx, nil).Return(nil).Once()
	suite.mockPlanRepo.On("FindPlanForUpdateInTx", ctx, nil, planID).Return(plan, nil).Once()
	suite.mockPlanRepo.On("CancelScheduledSessionsInTx", ctx, nil, planID, suite.actor.UserID, mock.AnythingOfType("time.Time")).Return(7, nil).Once()
	suite.mockPlanRepo.On("WaivePendingInstallmentsInTx", ctx, nil, planID, suite.actor.UserID, mock.AnythingOfType("time.Time")).Return(2, nil).Once()

	glTxnID := uuid.NewString()
	var noteParams domain.CreateCreditNoteParams
	suite.mockCreditNote.On("CreateAndPost", ctx, nil, mock.AnythingOfType("domain.CreateCreditNoteParams")).
		Run(func(args mock.Arguments) { noteParams = args.Get(2).(domain.CreateCreditNoteParams) }).
		Return(&domain.PatientCreditNote{CreditNoteID: uuid.NewString(), CreditNoteNumber: "CN/2026-27/00001", GLTransactionID: &glTxnID}, nil).Once()
	suite.mockStateRepo.On("MarkPostedInTx", ctx, nil, domain.DocTypePlan, planID, glTxnID, suite.actor.UserID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	var updatedPlan domain.PackagePaymentPlan
	suite.mockPlanRepo.On("UpdatePlanInTx", ctx, nil, mock.AnythingOfType("domain.PackagePaymentPlan")).
		Run(func(args mock.Arguments) { updatedPlan = args.Get(2).(domain.PackagePaymentPlan) }).
		Return(nil).Once()
	suite.mockTxManager.On("Commit", ctx, nil).Return(nil).Once()

	resp, err := suite.service.DiscontinuePlan(ctx, planID, dto.DiscontinueRequest{ReasonCode: "plan_discontinued", ReasonDescription: "patient relocated"}, suite.actor)

	suite.Require().NoError(err)
	// 10000 over 10 sessions, 3 consumed: liability 3000, credit 7000,
	// refund = paid 5000 - liability 3000 = 2000
	suite.True(resp.SessionValue.Equal(d("1000.00")))
	suite.True(resp.PatientLiability.Equal(d("3000.00")))
	suite.True(resp.NetPosition.Equal(d("2000.00")))
	suite.True(resp.CreditNoteAmount.Equal(d("7000.00")))
	suite.True(resp.CashRefund.Equal(d("2000.00")))
	suite.Equal(7, resp.CancelledSessions)
	suite.Equal(2, resp.WaivedInstallments)
	suite.Equal("CN/2026-27/00001", resp.CreditNoteNumber)

	suite.True(noteParams.Amount.Equal(d("7000.00")))
	suite.True(noteParams.RefundAmount.Equal(d("2000.00")))
	suite.Equal(patientID, noteParams.PatientID)
	suite.Equal(domain.PlanStatusDiscontinued, updatedPlan.Status)
}

func (suite *PackagePlanTestSuite) TestDiscontinuePlan_PostingFailureRollsBackBeforeMarking() {
	ctx := context.Background()
	planID := uuid.NewString()
	plan := &domain.PackagePaymentPlan{
		PlanID:            planID,
		HospitalID:        suite.actor.HospitalID,
		BranchID:          suite.actor.BranchID,
		PatientID:         uuid.NewString(),
		InvoiceID:         suite.invoiceID,
		LineItemID:        suite.lineItemID,
		TotalAmount:       d("10000.00"),
		PaidAmount:        d("5000.00"),
		TotalSessions:     10,
		CompletedSessions: 3,
		Status:            domain.PlanStatusActive,
	}

	suite.mockTxManager.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockPlanRepo.On("FindPlanForUpdateInTx", ctx, nil, planID).Return(plan, nil).Once()
	suite.mockPlanRepo.On("CancelScheduledSessionsInTx", ctx, nil, planID, suite.actor.UserID, mock.AnythingOfType("time.Time")).Return(7, nil).Once()
	suite.mockPlanRepo.On("WaivePendingInstallmentsInTx", ctx, nil, planID, suite.actor.UserID, mock.AnythingOfType("time.Time")).Return(2, nil).Once()
	suite.mockCreditNote.On("CreateAndPost", ctx, nil, mock.AnythingOfType("domain.CreateCreditNoteParams")).
		Return(nil, errors.New("credit account not configured")).Once()

	// the explicit rollback on the failure path, then the deferred one
	rolledBack := false
	suite.mockTxManager.On("Rollback", ctx, nil).
		Run(func(mock.Arguments) { rolledBack = true }).
		Return(nil).Twice()

	// a failed discontinuation leaves a posting-error note keyed on the plan,
	// written only after the transaction has released its locks
	markedAfterRollback := false
	suite.mockStateRepo.On("MarkPostingFailed", ctx, domain.DocTypePlan, planID, mock.AnythingOfType("string"), suite.actor.UserID, mock.AnythingOfType("time.Time")).
		Run(func(mock.Arguments) { markedAfterRollback = rolledBack }).
		Return(nil).Once()

	_, err := suite.service.DiscontinuePlan(ctx, planID, dto.DiscontinueRequest{ReasonCode: "plan_discontinued", ReasonDescription: "patient relocated"}, suite.actor)

	suite.Require().Error(err)
	suite.True(markedAfterRollback)
	suite.mockPlanRepo.AssertNotCalled(suite.T(), "UpdatePlanInTx", mock.Anything, mock.Anything, mock.Anything)
	suite.mockTxManager.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.mockStateRepo.AssertExpectations(suite.T())
	suite.mockTxManager.AssertExpectations(suite.T())
}

func (suite *PackagePlanTestSuite) TestDiscontinuePlan_AlreadyDiscontinued() {
	ctx := context.Background()
	planID := uuid.NewString()
	plan := &domain.PackagePaymentPlan{PlanID: planID, Status: domain.PlanStatusDiscontinued}

	suite.mockTxManager.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockTxManager.On("Rollback", ctx, nil).Return(nil).Once()
	suite.mockPlanRepo.On("FindPlanForUpdateInTx", ctx, nil, planID).Return(plan, nil).Once()

	_, err := suite.service.DiscontinuePlan(ctx, planID, dto.DiscontinueRequest{ReasonCode: "plan_discontinued", ReasonDescription: "duplicate request"}, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockCreditNote.AssertNotCalled(suite.T(), "CreateAndPost", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PackagePlanTestSuite) TestDiscontinuePlan_WithoutPermission() {
	ctx := context.Background()
	actor := suite.actor
	actor.Permissions.CanDiscontinuePlans = false

	_, err := suite.service.DiscontinuePlan(ctx, uuid.NewString(), dto.DiscontinueRequest{ReasonCode: "plan_discontinued", ReasonDescription: "x"}, actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockTxManager.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *PackagePlanTestSuite) TestCompleteSession_CompletesPlanWhenSettled() {
	ctx := context.Background()
	planID := uuid.NewString()
	plan := &domain.PackagePaymentPlan{
		PlanID:            planID,
		TotalAmount:       d("2000.00"),
		PaidAmount:        d("2000.00"),
		TotalSessions:     2,
		CompletedSessions: 1,
		Status:            domain.PlanStatusActive,
	}
	done := time.Now().Add(-time.Hour)
	sessions := []domain.PackageSession{
		{SessionID: "s1", PlanID: planID, SessionNumber: 1, Status: domain.SessionCompleted, CompletionDate: &done},
		{SessionID: "s2", PlanID: planID, SessionNumber: 2, Status: domain.SessionScheduled},
	}
	installments := []domain.InstallmentPayment{
		{InstallmentID: "i1", PlanID: planID, InstallmentNumber: 1, Amount: d("2000.00"), PaidAmount: d("2000.00"), Status: domain.InstallmentPaid},
	}

	suite.mockTxManager.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockTxManager.On("Rollback", ctx, nil).Return(nil).Once()
	suite.mockPlanRepo.On("FindPlanForUpdateInTx", ctx, nil, planID).Return(plan, nil).Once()
	suite.mockPlanRepo.On("FindSessionsInTx", ctx, nil, planID).Return(sessions, nil).Once()
	suite.mockPlanRepo.On("UpdateSessionInTx", ctx, nil, mock.AnythingOfType("domain.PackageSession")).Return(nil).Once()
	suite.mockPlanRepo.On("FindInstallmentsInTx", ctx, nil, planID).Return(installments, nil).Twice()

	var updatedPlan domain.PackagePaymentPlan
	suite.mockPlanRepo.On("UpdatePlanInTx", ctx, nil, mock.AnythingOfType("domain.PackagePaymentPlan")).
		Run(func(args mock.Arguments) { updatedPlan = args.Get(2).(domain.PackagePaymentPlan) }).
		Return(nil).Once()
	suite.mockTxManager.On("Commit", ctx, nil).Return(nil).Once()

	resp, err := suite.service.CompleteSession(ctx, planID, 2, suite.actor)

	suite.Require().NoError(err)
	suite.Equal(2, updatedPlan.CompletedSessions)
	suite.Equal(domain.PlanStatusCompleted, updatedPlan.Status)
	suite.Equal(string(domain.PlanStatusCompleted), resp.Status)
}

func (suite *PackagePlanTestSuite) TestCompleteSession_AlreadyCompleted() {
	ctx := context.Background()
	planID := uuid.NewString()
	plan := &domain.PackagePaymentPlan{PlanID: planID, TotalSessions: 2, CompletedSessions: 1, Status: domain.PlanStatusActive}
	done := time.Now()
	sessions := []domain.PackageSession{
		{SessionID: "s1", PlanID: planID, SessionNumber: 1, Status: domain.SessionCompleted, CompletionDate: &done},
	}

	suite.mockTxManager.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockTxManager.On("Rollback", ctx, nil).Return(nil).Once()
	suite.mockPlanRepo.On("FindPlanForUpdateInTx", ctx, nil, planID).Return(plan, nil).Once()
	suite.mockPlanRepo.On("FindSessionsInTx", ctx, nil, planID).Return(sessions, nil).Once()

	_, err := suite.service.CompleteSession(ctx, planID, 1, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockPlanRepo.AssertNotCalled(suite.T(), "UpdateSessionInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestPackagePlanService(t *testing.T) {
	suite.Run(t, new(PackagePlanTestSuite))
}
