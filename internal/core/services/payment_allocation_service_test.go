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

type PaymentAllocationTestSuite struct {
	suite.Suite
	mockTxManager *MockGLRepository
	mockStateRepo *MockPostingStateRepository
	mockInvoice   *MockInvoiceRepository
	mockSubRepo   *MockSubledgerRepository
	mockPlanRepo  *MockPlanRepository
	mockPoster    *MockLedgerPoster
	mockWriter    *MockSubledgerWriter
	service       portssvc.PaymentAllocationSvcFacade
	actor         dto.Actor
	invoiceID     string
}

func (suite *PaymentAllocationTestSuite) SetupTest() {
	suite.mockTxManager = new(MockGLRepository)
	suite.mockStateRepo = new(MockPostingStateRepository)
	suite.mockInvoice = new(MockInvoiceRepository)
	suite.mockSubRepo = new(MockSubledgerRepository)
	suite.mockPlanRepo = new(MockPlanRepository)
	suite.mockPoster = new(MockLedgerPoster)
	suite.mockWriter = new(MockSubledgerWriter)

	suite.service = services.NewPaymentAllocationService(
		suite.mockTxManager,
		suite.mockStateRepo,
		suite.mockInvoice,
		suite.mockSubRepo,
		suite.mockPlanRepo,
		suite.mockPoster,
		suite.mockWriter,
	)

	suite.actor = dto.Actor{
		HospitalID:  uuid.NewString(),
		BranchID:    uuid.NewString(),
		UserID:      uuid.NewString(),
		Permissions: domain.Permissions{CanPostDocuments: true},
	}
	suite.invoiceID = uuid.NewString()
}

// mixedLineItems models one invoice carrying two services, a medicine and a
// package line, deliberately listed out of settlement order.
func (suite *PaymentAllocationTestSuite) mixedLineItems() []domain.InvoiceLineItem {
	return []domain.InvoiceLineItem{
		{LineItemID: "li-package", InvoiceID: suite.invoiceID, ItemType: domain.ItemTypePackage, LineTotal: d("5900.00"), AllocatedAmount: decimal.Zero},
		{LineItemID: "li-service-a", InvoiceID: suite.invoiceID, ItemType: domain.ItemTypeService, LineTotal: d("2000.00"), AllocatedAmount: decimal.Zero},
		{LineItemID: "li-medicine", InvoiceID: suite.invoiceID, ItemType: domain.ItemTypeMedicine, LineTotal: d("300.00"), AllocatedAmount: decimal.Zero},
		{LineItemID: "li-service-b", InvoiceID: suite.invoiceID, ItemType: domain.ItemTypeService, LineTotal: d("1500.00"), AllocatedAmount: decimal.Zero},
	}
}

func (suite *PaymentAllocationTestSuite) expectHappyPathScaffolding(ctx context.Context, paymentID string, lineItems []domain.InvoiceLineItem) {
	suite.mockTxManager.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockTxManager.On("Rollback", ctx, nil).Return(nil).Once()
	suite.mockStateRepo.On("FindForUpdateInTx", ctx, nil, domain.DocTypePayment, paymentID).
		Return(&domain.DocumentPostingState{DocumentType: domain.DocTypePayment, DocumentID: paymentID}, nil).Once()
	suite.mockSubRepo.On("LockCounterpartyInTx", ctx, nil, suite.actor.HospitalID, domain.CounterpartyPatient, mock.AnythingOfType("string")).
		Return(decimal.Zero, nil).Once()
	suite.mockInvoice.On("FindOutstandingLineItemsInTx", ctx, nil, []string{suite.invoiceID}).Return(lineItems, nil).Once()
}

func (suite *PaymentAllocationTestSuite) TestPostPayment_PriorityOrder() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	req := dto.PostPaymentRequest{
		PaymentID:   paymentID,
		PatientID:   uuid.NewString(),
		Amount:      d("4000.00"),
		Mode:        "bank",
		PaymentDate: time.Now(),
		InvoiceIDs:  []string{suite.invoiceID},
	}

	suite.expectHappyPathScaffolding(ctx, paymentID, suite.mixedLineItems())

	glTxnID := uuid.NewString()
	var posted domain.PostingInstruction
	suite.mockPoster.On("Post", ctx, nil, mock.AnythingOfType("domain.PostingInstruction"), suite.actor.UserID).
		Run(func(args mock.Arguments) { posted = args.Get(2).(domain.PostingInstruction) }).
		Return(glTxnID, nil).Once()

	var appended []domain.AppendEntryParams
	suite.mockWriter.On("AppendEntry", ctx, nil, mock.AnythingOfType("domain.AppendEntryParams")).
		Run(func(args mock.Arguments) { appended = append(appended, args.Get(2).(domain.AppendEntryParams)) }).
		Return(&domain.SubledgerEntry{}, nil).Times(4)

	// Only the package allocation funds a plan in this scenario.
	suite.mockPlanRepo.On("FindPlanByLineItemInTx", ctx, nil, "li-package").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockTxManager.On("Commit", ctx, nil).Return(nil).Once()

	resp, err := suite.service.PostPayment(ctx, req, suite.actor)

	suite.Require().NoError(err)
	suite.Equal(glTxnID, resp.GLTransactionID)
	suite.True(resp.AdvanceAmount.IsZero())

	// Services first, then medicine, then the package takes the remainder.
	suite.Require().Len(resp.Allocations, 4)
	suite.Equal("li-service-a", resp.Allocations[0].LineItemID)
	suite.True(resp.Allocations[0].Amount.Equal(d("2000.00")))
	suite.Equal("li-service-b", resp.Allocations[1].LineItemID)
	suite.True(resp.Allocations[1].Amount.Equal(d("1500.00")))
	suite.Equal("li-medicine", resp.Allocations[2].LineItemID)
	suite.True(resp.Allocations[2].Amount.Equal(d("300.00")))
	suite.Equal("li-package", resp.Allocations[3].LineItemID)
	suite.True(resp.Allocations[3].Amount.Equal(d("200.00")))

	// GL moved the full amount through the control account.
	suite.Require().Len(posted.Entries, 2)
	suite.Equal(domain.RoleBank, posted.Entries[0].Role)
	suite.True(posted.Entries[0].Debit.Equal(d("4000.00")))
	suite.Equal(domain.RoleAccountsReceivable, posted.Entries[1].Role)
	suite.True(posted.Entries[1].Credit.Equal(d("4000.00")))

	// Every AR entry carries its line item reference.
	suite.Require().Len(appended, 4)
	for i, p := range appended {
		suite.Equal(domain.SubledgerEntryPayment, p.EntryType)
		suite.Require().NotNil(p.ReferenceLineItemID)
		suite.Equal(resp.Allocations[i].LineItemID, *p.ReferenceLineItemID)
		suite.Equal(glTxnID, p.GLTransactionID)
	}
	suite.mockWriter.AssertExpectations(suite.T())
}

func (suite *PaymentAllocationTestSuite) TestPostPayment_ResidualBecomesAdvance() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	patientID := uuid.NewString()
	req := dto.PostPaymentRequest{
		PaymentID:   paymentID,
		PatientID:   patientID,
		Amount:      d("3000.00"),
		Mode:        "cash",
		PaymentDate: time.Now(),
		InvoiceIDs:  []string{suite.invoiceID},
	}
	lineItems := []domain.InvoiceLineItem{
		{LineItemID: "li-service", InvoiceID: suite.invoiceID, ItemType: domain.ItemTypeService, LineTotal: d("2000.00"), AllocatedAmount: decimal.Zero},
	}

	suite.expectHappyPathScaffolding(ctx, paymentID, lineItems)

	glTxnID := uuid.NewString()
	var posted domain.PostingInstruction
	suite.mockPoster.On("Post", ctx, nil, mock.AnythingOfType("domain.PostingInstruction"), suite.actor.UserID).
		Run(func(args mock.Arguments) { posted = args.Get(2).(domain.PostingInstruction) }).
		Return(glTxnID, nil).Once()

	var appended []domain.AppendEntryParams
	suite.mockWriter.On("AppendEntry", ctx, nil, mock.AnythingOfType("domain.AppendEntryParams")).
		Run(func(args mock.Arguments) { appended = append(appended, args.Get(2).(domain.AppendEntryParams)) }).
		Return(&domain.SubledgerEntry{}, nil).Times(2)
	suite.mockTxManager.On("Commit", ctx, nil).Return(nil).Once()

	resp, err := suite.service.PostPayment(ctx, req, suite.actor)

	suite.Require().NoError(err)
	suite.True(resp.AdvanceAmount.Equal(d("1000.00")))
	suite.Require().Len(resp.Allocations, 1)
	suite.True(resp.Allocations[0].Amount.Equal(d("2000.00")))

	// The control account still moves by the full 3000; the residual lands on
	// the patient ledger as an advance credit, not in limbo.
	suite.True(posted.Entries[0].Debit.Equal(d("3000.00")))
	suite.Equal(domain.RoleCash, posted.Entries[0].Role)
	suite.Require().Len(appended, 2)
	suite.Equal(domain.SubledgerEntryAdvance, appended[1].EntryType)
	suite.True(appended[1].Credit.Equal(d("1000.00")))
	suite.Equal(patientID, appended[1].CounterpartyID)
}

func (suite *PaymentAllocationTestSuite) TestPostPayment_SyncsFundedPlan() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	planID := uuid.NewString()
	req := dto.PostPaymentRequest{
		PaymentID:   paymentID,
		PatientID:   uuid.NewString(),
		Amount:      d("3333.00"),
		Mode:        "bank",
		PaymentDate: time.Now(),
		InvoiceIDs:  []string{suite.invoiceID},
	}
	lineItems := []domain.InvoiceLineItem{
		{LineItemID: "li-package", InvoiceID: suite.invoiceID, ItemType: domain.ItemTypePackage, LineTotal: d("9999.00"), AllocatedAmount: decimal.Zero},
	}

	suite.expectHappyPathScaffolding(ctx, paymentID, lineItems)
	suite.mockPoster.On("Post", ctx, nil, mock.Anything, suite.actor.UserID).Return(uuid.NewString(), nil).Once()
	suite.mockWriter.On("AppendEntry", ctx, nil, mock.Anything).Return(&domain.SubledgerEntry{}, nil).Once()

	plan := &domain.PackagePaymentPlan{PlanID: planID, LineItemID: "li-package", TotalAmount: d("9999.00")}
	installments := []domain.InstallmentPayment{
		{InstallmentID: "inst-1", PlanID: planID, InstallmentNumber: 1, Amount: d("3333.00"), PaidAmount: decimal.Zero, Status: domain.InstallmentPending},
		{InstallmentID: "inst-2", PlanID: planID, InstallmentNumber: 2, Amount: d("3333.00"), PaidAmount: decimal.Zero, Status: domain.InstallmentPending},
		{InstallmentID: "inst-3", PlanID: planID, InstallmentNumber: 3, Amount: d("3333.00"), PaidAmount: decimal.Zero, Status: domain.InstallmentPending},
	}
	suite.mockPlanRepo.On("FindPlanByLineItemInTx", ctx, nil, "li-package").Return(plan, nil).Once()
	suite.mockSubRepo.On("SumCreditsByLineItemInTx", ctx, nil, "li-package").Return(d("3333.00"), nil).Once()
	suite.mockPlanRepo.On("SetPaidAmountInTx", ctx, nil, planID, d("3333.00"), suite.actor.UserID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPlanRepo.On("FindInstallmentsInTx", ctx, nil, planID).Return(installments, nil).Once()

	var updated domain.InstallmentPayment
	suite.mockPlanRepo.On("UpdateInstallmentInTx", ctx, nil, mock.AnythingOfType("domain.InstallmentPayment")).
		Run(func(args mock.Arguments) { updated = args.Get(2).(domain.InstallmentPayment) }).
		Return(nil).Once()
	suite.mockTxManager.On("Commit", ctx, nil).Return(nil).Once()

	_, err := suite.service.PostPayment(ctx, req, suite.actor)

	suite.Require().NoError(err)
	// exactly the first installment flips to paid
	suite.Equal("inst-1", updated.InstallmentID)
	suite.Equal(domain.InstallmentPaid, updated.Status)
	suite.True(updated.PaidAmount.Equal(d("3333.00")))
	suite.mockPlanRepo.AssertExpectations(suite.T())
}

func (suite *PaymentAllocationTestSuite) TestPostPayment_LocksPatientLedgerBeforeReadingLines() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	patientID := uuid.NewString()
	req := dto.PostPaymentRequest{
		PaymentID:   paymentID,
		PatientID:   patientID,
		Amount:      d("500.00"),
		Mode:        "cash",
		PaymentDate: time.Now(),
		InvoiceIDs:  []string{suite.invoiceID},
	}
	lineItems := []domain.InvoiceLineItem{
		{LineItemID: "li-service", InvoiceID: suite.invoiceID, ItemType: domain.ItemTypeService, LineTotal: d("500.00"), AllocatedAmount: decimal.Zero},
	}

	suite.mockTxManager.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockTxManager.On("Rollback", ctx, nil).Return(nil).Once()
	suite.mockStateRepo.On("FindForUpdateInTx", ctx, nil, domain.DocTypePayment, paymentID).
		Return(&domain.DocumentPostingState{DocumentType: domain.DocTypePayment, DocumentID: paymentID}, nil).Once()

	locked := false
	suite.mockSubRepo.On("LockCounterpartyInTx", ctx, nil, suite.actor.HospitalID, domain.CounterpartyPatient, patientID).
		Run(func(mock.Arguments) { locked = true }).
		Return(decimal.Zero, nil).Once()

	// reading outstanding amounts without the patient lock lets two
	// concurrent payments settle the same lines
	lockedWhenRead := false
	suite.mockInvoice.On("FindOutstandingLineItemsInTx", ctx, nil, []string{suite.invoiceID}).
		Run(func(mock.Arguments) { lockedWhenRead = locked }).
		Return(lineItems, nil).Once()

	suite.mockPoster.On("Post", ctx, nil, mock.Anything, suite.actor.UserID).Return(uuid.NewString(), nil).Once()
	suite.mockWriter.On("AppendEntry", ctx, nil, mock.Anything).Return(&domain.SubledgerEntry{}, nil).Once()
	suite.mockTxManager.On("Commit", ctx, nil).Return(nil).Once()

	_, err := suite.service.PostPayment(ctx, req, suite.actor)

	suite.Require().NoError(err)
	suite.True(lockedWhenRead)
	suite.mockSubRepo.AssertExpectations(suite.T())
}

func (suite *PaymentAllocationTestSuite) TestPostPayment_PostingFailureRollsBackBeforeMarking() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	req := dto.PostPaymentRequest{
		PaymentID:   paymentID,
		PatientID:   uuid.NewString(),
		Amount:      d("500.00"),
		Mode:        "cash",
		PaymentDate: time.Now(),
		InvoiceIDs:  []string{suite.invoiceID},
	}
	lineItems := []domain.InvoiceLineItem{
		{LineItemID: "li-service", InvoiceID: suite.invoiceID, ItemType: domain.ItemTypeService, LineTotal: d("500.00"), AllocatedAmount: decimal.Zero},
	}

	suite.mockTxManager.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockStateRepo.On("FindForUpdateInTx", ctx, nil, domain.DocTypePayment, paymentID).
		Return(&domain.DocumentPostingState{DocumentType: domain.DocTypePayment, DocumentID: paymentID}, nil).Once()
	suite.mockSubRepo.On("LockCounterpartyInTx", ctx, nil, suite.actor.HospitalID, domain.CounterpartyPatient, req.PatientID).
		Return(decimal.Zero, nil).Once()
	suite.mockInvoice.On("FindOutstandingLineItemsInTx", ctx, nil, []string{suite.invoiceID}).Return(lineItems, nil).Once()
	suite.mockPoster.On("Post", ctx, nil, mock.Anything, suite.actor.UserID).
		Return("", errors.New("account mapping missing")).Once()

	// the explicit rollback on the failure path, then the deferred one
	rolledBack := false
	suite.mockTxManager.On("Rollback", ctx, nil).
		Run(func(mock.Arguments) { rolledBack = true }).
		Return(nil).Twice()

	markedAfterRollback := false
	suite.mockStateRepo.On("MarkPostingFailed", ctx, domain.DocTypePayment, paymentID, mock.AnythingOfType("string"), suite.actor.UserID, mock.AnythingOfType("time.Time")).
		Run(func(mock.Arguments) { markedAfterRollback = rolledBack }).
		Return(nil).Once()

	_, err := suite.service.PostPayment(ctx, req, suite.actor)

	suite.Require().Error(err)
	suite.True(markedAfterRollback)
	suite.mockTxManager.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.mockStateRepo.AssertExpectations(suite.T())
	suite.mockTxManager.AssertExpectations(suite.T())
}

func (suite *PaymentAllocationTestSuite) TestPostPayment_AlreadyPostedIsNoOp() {
	ctx := context.Background()
	paymentID := uuid.NewString()
	existingTxnID := uuid.NewString()
	req := dto.PostPaymentRequest{
		PaymentID:   paymentID,
		PatientID:   uuid.NewString(),
		Amount:      d("100.00"),
		Mode:        "cash",
		PaymentDate: time.Now(),
		InvoiceIDs:  []string{suite.invoiceID},
	}

	suite.mockTxManager.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockTxManager.On("Rollback", ctx, nil).Return(nil).Once()
	suite.mockStateRepo.On("FindForUpdateInTx", ctx, nil, domain.DocTypePayment, paymentID).
		Return(&domain.DocumentPostingState{DocumentType: domain.DocTypePayment, DocumentID: paymentID, GLPosted: true, GLTransactionID: &existingTxnID}, nil).Once()

	resp, err := suite.service.PostPayment(ctx, req, suite.actor)

	suite.Require().NoError(err)
	suite.True(resp.AlreadyPosted)
	suite.Equal(existingTxnID, resp.GLTransactionID)
	suite.mockPoster.AssertNotCalled(suite.T(), "Post", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PaymentAllocationTestSuite) TestPostPayment_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.PostPaymentRequest{
		PaymentID:   uuid.NewString(),
		PatientID:   uuid.NewString(),
		Amount:      decimal.Zero,
		Mode:        "cash",
		PaymentDate: time.Now(),
		InvoiceIDs:  []string{suite.invoiceID},
	}

	_, err := suite.service.PostPayment(ctx, req, suite.actor)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockTxManager.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func TestPaymentAllocation(t *testing.T) {
	suite.Run(t, new(PaymentAllocationTestSuite))
}
