package repositories

import (
	"context"
	"time"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// PlanReader defines read operations for package payment plans.
type PlanReader interface {
	// FindPlanByID retrieves a plan header.
	FindPlanByID(ctx context.Context, planID string) (*domain.PackagePaymentPlan, error)

	// FindInstallmentsByPlan retrieves the plan's installments ordered by
	// installment number.
	FindInstallmentsByPlan(ctx context.Context, planID string) ([]domain.InstallmentPayment, error)

	// FindSessionsByPlan retrieves the plan's sessions ordered by session
	// number.
	FindSessionsByPlan(ctx context.Context, planID string) ([]domain.PackageSession, error)
}

// PlanTransactionSupport defines the in-transaction operations for plan
// lifecycle changes. A plan exclusively owns its installments and sessions.
type PlanTransactionSupport interface {
	// SavePlanInTx persists a new plan with its generated installments and
	// sessions.
	SavePlanInTx(ctx context.Context, tx pgx.Tx, plan domain.PackagePaymentPlan, installments []domain.InstallmentPayment, sessions []domain.PackageSession) error

	// FindPlanForUpdateInTx loads and row-locks a plan for a lifecycle change.
	FindPlanForUpdateInTx(ctx context.Context, tx pgx.Tx, planID string) (*domain.PackagePaymentPlan, error)

	// FindPlanByLineItemInTx finds the plan funded by the given invoice line
	// item, if any. Returns apperrors.ErrNotFound when the line has no plan.
	FindPlanByLineItemInTx(ctx context.Context, tx pgx.Tx, lineItemID string) (*domain.PackagePaymentPlan, error)

	// UpdatePlanInTx persists header changes (status, paid amount, counts).
	UpdatePlanInTx(ctx context.Context, tx pgx.Tx, plan domain.PackagePaymentPlan) error

	// FindInstallmentsInTx retrieves installments inside the transaction,
	// ordered by installment number.
	FindInstallmentsInTx(ctx context.Context, tx pgx.Tx, planID string) ([]domain.InstallmentPayment, error)

	// FindSessionsInTx retrieves sessions inside the transaction, ordered by
	// session number.
	FindSessionsInTx(ctx context.Context, tx pgx.Tx, planID string) ([]domain.PackageSession, error)

	// InsertInstallmentsInTx appends installment rows.
	InsertInstallmentsInTx(ctx context.Context, tx pgx.Tx, installments []domain.InstallmentPayment) error

	// InsertSessionsInTx appends session rows.
	InsertSessionsInTx(ctx context.Context, tx pgx.Tx, sessions []domain.PackageSession) error

	// UpdateInstallmentInTx persists amount/status/paid changes on one
	// installment.
	UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, installment domain.InstallmentPayment) error

	// DeleteInstallmentsInTx removes not-yet-paid installments by id. Paid or
	// partial installments are never deleted, only waived.
	DeleteInstallmentsInTx(ctx context.Context, tx pgx.Tx, installmentIDs []string) error

	// DeleteSessionsInTx removes not-yet-completed sessions by id.
	DeleteSessionsInTx(ctx context.Context, tx pgx.Tx, sessionIDs []string) error

	// UpdateSessionInTx persists status/completion changes on one session.
	UpdateSessionInTx(ctx context.Context, tx pgx.Tx, session domain.PackageSession) error

	// WaivePendingInstallmentsInTx marks all pending/partial installments of a
	// plan waived and returns how many rows changed.
	WaivePendingInstallmentsInTx(ctx context.Context, tx pgx.Tx, planID string, userID string, now time.Time) (int, error)

	// CancelScheduledSessionsInTx marks all scheduled sessions of a plan
	// cancelled and returns how many rows changed.
	CancelScheduledSessionsInTx(ctx context.Context, tx pgx.Tx, planID string, userID string, now time.Time) (int, error)

	// SetPaidAmountInTx stores the derived paid amount on the plan header.
	SetPaidAmountInTx(ctx context.Context, tx pgx.Tx, planID string, paid decimal.Decimal, userID string, now time.Time) error
}

// PlanRepositoryFacade combines all plan repository interfaces.
type PlanRepositoryFacade interface {
	PlanReader
	PlanTransactionSupport
}

// PlanRepositoryWithTx extends PlanRepositoryFacade with transaction
// capabilities.
type PlanRepositoryWithTx interface {
	PlanRepositoryFacade
	TransactionManager
}
