package services_test

import (
	"context"
	"time"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portsrepo "github.com/curasoft/hospital_billing_app/internal/core/ports/repositories"
	portssvc "github.com/curasoft/hospital_billing_app/internal/core/ports/services"
	"github.com/curasoft/hospital_billing_app/internal/dto"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// Shared mocks for the service tests in this package. In-transaction methods
// accept a nil pgx.Tx from tests; the services only pass the handle through.

// --- Mock GL repository (with transaction manager) ---
type MockGLRepository struct {
	mock.Mock
}

var _ portsrepo.GLRepositoryWithTx = (*MockGLRepository)(nil)

func (m *MockGLRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockGLRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockGLRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockGLRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.GLTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GLTransaction), args.Error(1)
}

func (m *MockGLRepository) FindEntriesByTransactionID(ctx context.Context, transactionID string) ([]domain.GLEntry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GLEntry), args.Error(1)
}

func (m *MockGLRepository) ListTransactionsByHospital(ctx context.Context, hospitalID string, limit int, nextToken *string) ([]domain.GLTransaction, *string, error) {
	args := m.Called(ctx, hospitalID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.GLTransaction), returnedNextToken, args.Error(2)
}

func (m *MockGLRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.GLTransaction, entries []domain.GLEntry) error {
	args := m.Called(ctx, tx, txn, entries)
	return args.Error(0)
}

func (m *MockGLRepository) LinkReversalInTx(ctx context.Context, tx pgx.Tx, transactionID, reversalTransactionID string, userID string, now time.Time) error {
	args := m.Called(ctx, tx, transactionID, reversalTransactionID, userID, now)
	return args.Error(0)
}

// --- Mock posting state repository ---
type MockPostingStateRepository struct {
	mock.Mock
}

var _ portsrepo.PostingStateRepositoryFacade = (*MockPostingStateRepository)(nil)

func (m *MockPostingStateRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, docType domain.SourceDocumentType, docID string) (*domain.DocumentPostingState, error) {
	args := m.Called(ctx, tx, docType, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentPostingState), args.Error(1)
}

func (m *MockPostingStateRepository) MarkPostedInTx(ctx context.Context, tx pgx.Tx, docType domain.SourceDocumentType, docID string, glTransactionID string, userID string, now time.Time) error {
	args := m.Called(ctx, tx, docType, docID, glTransactionID, userID, now)
	return args.Error(0)
}

func (m *MockPostingStateRepository) MarkPostingFailed(ctx context.Context, docType domain.SourceDocumentType, docID string, note string, userID string, now time.Time) error {
	args := m.Called(ctx, docType, docID, note, userID, now)
	return args.Error(0)
}

// --- Mock invoice repository ---
type MockInvoiceRepository struct {
	mock.Mock
}

var _ portsrepo.InvoiceRepositoryFacade = (*MockInvoiceRepository)(nil)

func (m *MockInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindPurchaseInvoiceByID(ctx context.Context, invoiceID string) (*domain.PurchaseInvoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOutstandingLineItemsInTx(ctx context.Context, tx pgx.Tx, invoiceIDs []string) ([]domain.InvoiceLineItem, error) {
	args := m.Called(ctx, tx, invoiceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoiceLineItem), args.Error(1)
}

// --- Mock subledger repository (with transaction manager) ---
type MockSubledgerRepository struct {
	mock.Mock
}

var _ portsrepo.SubledgerRepositoryWithTx = (*MockSubledgerRepository)(nil)

func (m *MockSubledgerRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockSubledgerRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockSubledgerRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockSubledgerRepository) LockCounterpartyInTx(ctx context.Context, tx pgx.Tx, hospitalID string, cpType domain.CounterpartyType, cpID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, hospitalID, cpType, cpID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSubledgerRepository) ComputeBalanceInTx(ctx context.Context, tx pgx.Tx, hospitalID string, cpType domain.CounterpartyType, cpID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, hospitalID, cpType, cpID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSubledgerRepository) InsertEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.SubledgerEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockSubledgerRepository) UpdateCounterpartyBalanceInTx(ctx context.Context, tx pgx.Tx, hospitalID string, cpType domain.CounterpartyType, cpID string, balance decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, hospitalID, cpType, cpID, balance, userID, now)
	return args.Error(0)
}

func (m *MockSubledgerRepository) SumCreditsByLineItemInTx(ctx context.Context, tx pgx.Tx, lineItemID string) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, lineItemID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSubledgerRepository) FindEntriesByCounterparty(ctx context.Context, hospitalID string, cpType domain.CounterpartyType, cpID string) ([]domain.SubledgerEntry, error) {
	args := m.Called(ctx, hospitalID, cpType, cpID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SubledgerEntry), args.Error(1)
}

func (m *MockSubledgerRepository) ListEntriesByCounterparty(ctx context.Context, hospitalID string, cpType domain.CounterpartyType, cpID string, limit int, nextToken *string) ([]domain.SubledgerEntry, *string, error) {
	args := m.Called(ctx, hospitalID, cpType, cpID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.SubledgerEntry), returnedNextToken, args.Error(2)
}

// --- Mock chart of accounts repository ---
type MockCoARepository struct {
	mock.Mock
}

var _ portsrepo.ChartOfAccountsRepositoryFacade = (*MockCoARepository)(nil)

func (m *MockCoARepository) FindAccountIDByRole(ctx context.Context, hospitalID string, role domain.AccountRole) (string, error) {
	args := m.Called(ctx, hospitalID, role)
	return args.String(0), args.Error(1)
}

func (m *MockCoARepository) FindMappingsByHospital(ctx context.Context, hospitalID string) (map[domain.AccountRole]string, error) {
	args := m.Called(ctx, hospitalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.AccountRole]string), args.Error(1)
}

// --- Mock plan repository (with transaction manager) ---
type MockPlanRepository struct {
	mock.Mock
}

var _ portsrepo.PlanRepositoryWithTx = (*MockPlanRepository)(nil)

func (m *MockPlanRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockPlanRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockPlanRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockPlanRepository) FindPlanByID(ctx context.Context, planID string) (*domain.PackagePaymentPlan, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackagePaymentPlan), args.Error(1)
}

func (m *MockPlanRepository) FindInstallmentsByPlan(ctx context.Context, planID string) ([]domain.InstallmentPayment, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstallmentPayment), args.Error(1)
}

func (m *MockPlanRepository) FindSessionsByPlan(ctx context.Context, planID string) ([]domain.PackageSession, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PackageSession), args.Error(1)
}

func (m *MockPlanRepository) SavePlanInTx(ctx context.Context, tx pgx.Tx, plan domain.PackagePaymentPlan, installments []domain.InstallmentPayment, sessions []domain.PackageSession) error {
	args := m.Called(ctx, tx, plan, installments, sessions)
	return args.Error(0)
}

func (m *MockPlanRepository) FindPlanForUpdateInTx(ctx context.Context, tx pgx.Tx, planID string) (*domain.PackagePaymentPlan, error) {
	args := m.Called(ctx, tx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackagePaymentPlan), args.Error(1)
}

func (m *MockPlanRepository) FindPlanByLineItemInTx(ctx context.Context, tx pgx.Tx, lineItemID string) (*domain.PackagePaymentPlan, error) {
	args := m.Called(ctx, tx, lineItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackagePaymentPlan), args.Error(1)
}

func (m *MockPlanRepository) UpdatePlanInTx(ctx context.Context, tx pgx.Tx, plan domain.PackagePaymentPlan) error {
	args := m.Called(ctx, tx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) FindInstallmentsInTx(ctx context.Context, tx pgx.Tx, planID string) ([]domain.InstallmentPayment, error) {
	args := m.Called(ctx, tx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InstallmentPayment), args.Error(1)
}

func (m *MockPlanRepository) FindSessionsInTx(ctx context.Context, tx pgx.Tx, planID string) ([]domain.PackageSession, error) {
	args := m.Called(ctx, tx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PackageSession), args.Error(1)
}

func (m *MockPlanRepository) InsertInstallmentsInTx(ctx context.Context, tx pgx.Tx, installments []domain.InstallmentPayment) error {
	args := m.Called(ctx, tx, installments)
	return args.Error(0)
}

func (m *MockPlanRepository) InsertSessionsInTx(ctx context.Context, tx pgx.Tx, sessions []domain.PackageSession) error {
	args := m.Called(ctx, tx, sessions)
	return args.Error(0)
}

func (m *MockPlanRepository) UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, installment domain.InstallmentPayment) error {
	args := m.Called(ctx, tx, installment)
	return args.Error(0)
}

func (m *MockPlanRepository) DeleteInstallmentsInTx(ctx context.Context, tx pgx.Tx, installmentIDs []string) error {
	args := m.Called(ctx, tx, installmentIDs)
	return args.Error(0)
}

func (m *MockPlanRepository) DeleteSessionsInTx(ctx context.Context, tx pgx.Tx, sessionIDs []string) error {
	args := m.Called(ctx, tx, sessionIDs)
	return args.Error(0)
}

func (m *MockPlanRepository) UpdateSessionInTx(ctx context.Context, tx pgx.Tx, session domain.PackageSession) error {
	args := m.Called(ctx, tx, session)
	return args.Error(0)
}

func (m *MockPlanRepository) WaivePendingInstallmentsInTx(ctx context.Context, tx pgx.Tx, planID string, userID string, now time.Time) (int, error) {
	args := m.Called(ctx, tx, planID, userID, now)
	return args.Int(0), args.Error(1)
}

func (m *MockPlanRepository) CancelScheduledSessionsInTx(ctx context.Context, tx pgx.Tx, planID string, userID string, now time.Time) (int, error) {
	args := m.Called(ctx, tx, planID, userID, now)
	return args.Int(0), args.Error(1)
}

func (m *MockPlanRepository) SetPaidAmountInTx(ctx context.Context, tx pgx.Tx, planID string, paid decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, planID, paid, userID, now)
	return args.Error(0)
}

// --- Mock credit note repository ---
type MockCreditNoteRepository struct {
	mock.Mock
}

var _ portsrepo.CreditNoteRepositoryFacade = (*MockCreditNoteRepository)(nil)

func (m *MockCreditNoteRepository) NextSequenceInTx(ctx context.Context, tx pgx.Tx, hospitalID string, financialYear string) (int64, error) {
	args := m.Called(ctx, tx, hospitalID, financialYear)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCreditNoteRepository) InsertCreditNoteInTx(ctx context.Context, tx pgx.Tx, note domain.PatientCreditNote) error {
	args := m.Called(ctx, tx, note)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) MarkPostedInTx(ctx context.Context, tx pgx.Tx, creditNoteID string, glTransactionID string, userID string, now time.Time) error {
	args := m.Called(ctx, tx, creditNoteID, glTransactionID, userID, now)
	return args.Error(0)
}

func (m *MockCreditNoteRepository) FindCreditNoteByID(ctx context.Context, creditNoteID string) (*domain.PatientCreditNote, error) {
	args := m.Called(ctx, creditNoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatientCreditNote), args.Error(1)
}

// --- Mock ledger poster (in-transaction interface only) ---
type MockLedgerPoster struct {
	mock.Mock
}

var _ portssvc.LedgerPoster = (*MockLedgerPoster)(nil)

func (m *MockLedgerPoster) Post(ctx context.Context, tx pgx.Tx, inst domain.PostingInstruction, userID string) (string, error) {
	args := m.Called(ctx, tx, inst, userID)
	return args.String(0), args.Error(1)
}

// --- Mock subledger writer service ---
type MockSubledgerWriter struct {
	mock.Mock
}

var _ portssvc.SubledgerWriterSvc = (*MockSubledgerWriter)(nil)

func (m *MockSubledgerWriter) AppendEntry(ctx context.Context, tx pgx.Tx, p domain.AppendEntryParams) (*domain.SubledgerEntry, error) {
	args := m.Called(ctx, tx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubledgerEntry), args.Error(1)
}

func (m *MockSubledgerWriter) ReplayBalance(ctx context.Context, hospitalID string, cpType domain.CounterpartyType, cpID string) (decimal.Decimal, error) {
	args := m.Called(ctx, hospitalID, cpType, cpID)
	if args.Get(0) == nil {
		return decimal.Zero, args.Error(1)
	}
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSubledgerWriter) ListEntries(ctx context.Context, hospitalID string, cpType domain.CounterpartyType, cpID string, limit int, nextToken *string) (*dto.ListSubledgerResponse, error) {
	args := m.Called(ctx, hospitalID, cpType, cpID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListSubledgerResponse), args.Error(1)
}

// --- Mock credit note service ---
type MockCreditNoteService struct {
	mock.Mock
}

var _ portssvc.CreditNoteSvcFacade = (*MockCreditNoteService)(nil)

func (m *MockCreditNoteService) CreateAndPost(ctx context.Context, tx pgx.Tx, p domain.CreateCreditNoteParams) (*domain.PatientCreditNote, error) {
	args := m.Called(ctx, tx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatientCreditNote), args.Error(1)
}

func (m *MockCreditNoteService) GetCreditNote(ctx context.Context, creditNoteID string) (*domain.PatientCreditNote, error) {
	args := m.Called(ctx, creditNoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PatientCreditNote), args.Error(1)
}
