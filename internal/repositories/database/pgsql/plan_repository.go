package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/curasoft/hospital_billing_app/internal/apperrors"
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portsrepo "github.com/curasoft/hospital_billing_app/internal/core/ports/repositories"
	"github.com/curasoft/hospital_billing_app/internal/models"
	"github.com/curasoft/hospital_billing_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxPlanRepository struct {
	BaseRepository
}

// newPgxPlanRepository creates a new repository for package payment plans.
func newPgxPlanRepository(pool *pgxpool.Pool) portsrepo.PlanRepositoryWithTx {
	return &PgxPlanRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxPlanRepository implements portsrepo.PlanRepositoryWithTx
var _ portsrepo.PlanRepositoryWithTx = (*PgxPlanRepository)(nil)

const planSelectColumns = `
	SELECT plan_id, hospital_id, branch_id, patient_id, invoice_id, line_item_id,
	       package_id, total_amount, paid_amount, total_sessions,
	       completed_sessions, installment_count, frequency, status,
	       created_at, created_by, last_updated_at, last_updated_by
	FROM package_payment_plans
`

const installmentSelectColumns = `
	SELECT installment_id, plan_id, installment_number, due_date, amount,
	       paid_amount, status,
	       created_at, created_by, last_updated_at, last_updated_by
	FROM installment_payments
`

const sessionSelectColumns = `
	SELECT session_id, plan_id, session_number, session_date, completion_date,
	       status,
	       created_at, created_by, last_updated_at, last_updated_by
	FROM package_sessions
`

// FindPlanByID retrieves a plan header.
func (r *PgxPlanRepository) FindPlanByID(ctx context.Context, planID string) (*domain.PackagePaymentPlan, error) {
	query := planSelectColumns + ` WHERE plan_id = $1;`
	return r.scanPlanRow(r.Pool.QueryRow(ctx, query, planID), planID)
}

// FindInstallmentsByPlan retrieves the plan's installments ordered by
// installment number.
func (r *PgxPlanRepository) FindInstallmentsByPlan(ctx context.Context, planID string) ([]domain.InstallmentPayment, error) {
	query := installmentSelectColumns + ` WHERE plan_id = $1 ORDER BY installment_number;`
	rows, err := r.Pool.Query(ctx, query, planID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query installments for plan "+planID, err)
	}
	defer rows.Close()
	return scanInstallments(rows, planID)
}

// FindSessionsByPlan retrieves the plan's sessions ordered by session number.
func (r *PgxPlanRepository) FindSessionsByPlan(ctx context.Context, planID string) ([]domain.PackageSession, error) {
	query := sessionSelectColumns + ` WHERE plan_id = $1 ORDER BY session_number;`
	rows, err := r.Pool.Query(ctx, query, planID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query sessions for plan "+planID, err)
	}
	defer rows.Close()
	return scanSessions(rows, planID)
}

// SavePlanInTx persists a new plan with its generated installments and
// sessions.
func (r *PgxPlanRepository) SavePlanInTx(ctx context.Context, tx pgx.Tx, plan domain.PackagePaymentPlan, installments []domain.InstallmentPayment, sessions []domain.PackageSession) error {
	modelPlan := mapping.ToModelPlan(plan)
	planQuery := `
		INSERT INTO package_payment_plans (
			plan_id, hospital_id, branch_id, patient_id, invoice_id, line_item_id,
			package_id, total_amount, paid_amount, total_sessions,
			completed_sessions, installment_count, frequency, status,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err := tx.Exec(ctx, planQuery,
		modelPlan.PlanID,
		modelPlan.HospitalID,
		modelPlan.BranchID,
		modelPlan.PatientID,
		modelPlan.InvoiceID,
		modelPlan.LineItemID,
		modelPlan.PackageID,
		modelPlan.TotalAmount,
		modelPlan.PaidAmount,
		modelPlan.TotalSessions,
		modelPlan.CompletedSessions,
		modelPlan.InstallmentCount,
		modelPlan.Frequency,
		modelPlan.Status,
		modelPlan.CreatedAt,
		modelPlan.CreatedBy,
		modelPlan.LastUpdatedAt,
		modelPlan.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError("failed to insert plan "+modelPlan.PlanID, err)
	}

	if err := r.InsertInstallmentsInTx(ctx, tx, installments); err != nil {
		return err
	}
	return r.InsertSessionsInTx(ctx, tx, sessions)
}

// FindPlanForUpdateInTx loads and row-locks a plan for a lifecycle change.
func (r *PgxPlanRepository) FindPlanForUpdateInTx(ctx context.Context, tx pgx.Tx, planID string) (*domain.PackagePaymentPlan, error) {
	query := planSelectColumns + ` WHERE plan_id = $1 FOR UPDATE;`
	return r.scanPlanRow(tx.QueryRow(ctx, query, planID), planID)
}

// FindPlanByLineItemInTx finds the plan funded by the given invoice line item.
func (r *PgxPlanRepository) FindPlanByLineItemInTx(ctx context.Context, tx pgx.Tx, lineItemID string) (*domain.PackagePaymentPlan, error) {
	query := planSelectColumns + ` WHERE line_item_id = $1;`
	return r.scanPlanRow(tx.QueryRow(ctx, query, lineItemID), lineItemID)
}

// UpdatePlanInTx persists header changes (status, paid amount, counts).
func (r *PgxPlanRepository) UpdatePlanInTx(ctx context.Context, tx pgx.Tx, plan domain.PackagePaymentPlan) error {
	modelPlan := mapping.ToModelPlan(plan)
	query := `
		UPDATE package_payment_plans
		SET total_amount = $2, paid_amount = $3, total_sessions = $4,
		    completed_sessions = $5, installment_count = $6, frequency = $7,
		    status = $8, last_updated_at = $9, last_updated_by = $10
		WHERE plan_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		modelPlan.PlanID,
		modelPlan.TotalAmount,
		modelPlan.PaidAmount,
		modelPlan.TotalSessions,
		modelPlan.CompletedSessions,
		modelPlan.InstallmentCount,
		modelPlan.Frequency,
		modelPlan.Status,
		modelPlan.LastUpdatedAt,
		modelPlan.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError("failed to update plan "+modelPlan.PlanID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("plan " + modelPlan.PlanID + " not found")
	}
	return nil
}

// FindInstallmentsInTx retrieves installments inside the transaction, ordered
// by installment number.
func (r *PgxPlanRepository) FindInstallmentsInTx(ctx context.Context, tx pgx.Tx, planID string) ([]domain.InstallmentPayment, error) {
	query := installmentSelectColumns + ` WHERE plan_id = $1 ORDER BY installment_number;`
	rows, err := tx.Query(ctx, query, planID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query installments for plan "+planID, err)
	}
	defer rows.Close()
	return scanInstallments(rows, planID)
}

// FindSessionsInTx retrieves sessions inside the transaction, ordered by
// session number.
func (r *PgxPlanRepository) FindSessionsInTx(ctx context.Context, tx pgx.Tx, planID string) ([]domain.PackageSession, error) {
	query := sessionSelectColumns + ` WHERE plan_id = $1 ORDER BY session_number;`
	rows, err := tx.Query(ctx, query, planID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query sessions for plan "+planID, err)
	}
	defer rows.Close()
	return scanSessions(rows, planID)
}

// InsertInstallmentsInTx appends installment rows via a batch.
func (r *PgxPlanRepository) InsertInstallmentsInTx(ctx context.Context, tx pgx.Tx, installments []domain.InstallmentPayment) error {
	if len(installments) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `
		INSERT INTO installment_payments (
			installment_id, plan_id, installment_number, due_date, amount,
			paid_amount, status,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	for _, inst := range installments {
		m := mapping.ToModelInstallment(inst)
		batch.Queue(query,
			m.InstallmentID,
			m.PlanID,
			m.InstallmentNumber,
			m.DueDate,
			m.Amount,
			m.PaidAmount,
			m.Status,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapPgError("failed to execute installment insert batch", err)
	}
	return nil
}

// InsertSessionsInTx appends session rows via a batch.
func (r *PgxPlanRepository) InsertSessionsInTx(ctx context.Context, tx pgx.Tx, sessions []domain.PackageSession) error {
	if len(sessions) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	query := `
		INSERT INTO package_sessions (
			session_id, plan_id, session_number, session_date, completion_date,
			status,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, session := range sessions {
		m := mapping.ToModelSession(session)
		batch.Queue(query,
			m.SessionID,
			m.PlanID,
			m.SessionNumber,
			m.SessionDate,
			m.CompletionDate,
			m.Status,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapPgError("failed to execute session insert batch", err)
	}
	return nil
}

// UpdateInstallmentInTx persists amount/status/paid changes on one installment.
func (r *PgxPlanRepository) UpdateInstallmentInTx(ctx context.Context, tx pgx.Tx, installment domain.InstallmentPayment) error {
	m := mapping.ToModelInstallment(installment)
	query := `
		UPDATE installment_payments
		SET installment_number = $2, due_date = $3, amount = $4, paid_amount = $5,
		    status = $6, last_updated_at = $7, last_updated_by = $8
		WHERE installment_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.InstallmentID,
		m.InstallmentNumber,
		m.DueDate,
		m.Amount,
		m.PaidAmount,
		m.Status,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError("failed to update installment "+m.InstallmentID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("installment " + m.InstallmentID + " not found")
	}
	return nil
}

// DeleteInstallmentsInTx removes not-yet-paid installments by id. The status
// guard is a safety net against deleting settled money.
func (r *PgxPlanRepository) DeleteInstallmentsInTx(ctx context.Context, tx pgx.Tx, installmentIDs []string) error {
	if len(installmentIDs) == 0 {
		return nil
	}
	query := `
		DELETE FROM installment_payments
		WHERE installment_id = ANY($1) AND status = 'pending';
	`
	tag, err := tx.Exec(ctx, query, installmentIDs)
	if err != nil {
		return mapPgError("failed to delete pending installments", err)
	}
	if int(tag.RowsAffected()) != len(installmentIDs) {
		return apperrors.NewAppError(409, "some installments were not pending anymore", apperrors.ErrConflict)
	}
	return nil
}

// DeleteSessionsInTx removes not-yet-completed sessions by id.
func (r *PgxPlanRepository) DeleteSessionsInTx(ctx context.Context, tx pgx.Tx, sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	query := `
		DELETE FROM package_sessions
		WHERE session_id = ANY($1) AND status = 'scheduled';
	`
	tag, err := tx.Exec(ctx, query, sessionIDs)
	if err != nil {
		return mapPgError("failed to delete scheduled sessions", err)
	}
	if int(tag.RowsAffected()) != len(sessionIDs) {
		return apperrors.NewAppError(409, "some sessions were not scheduled anymore", apperrors.ErrConflict)
	}
	return nil
}

// UpdateSessionInTx persists status/completion changes on one session.
func (r *PgxPlanRepository) UpdateSessionInTx(ctx context.Context, tx pgx.Tx, session domain.PackageSession) error {
	m := mapping.ToModelSession(session)
	query := `
		UPDATE package_sessions
		SET session_number = $2, session_date = $3, completion_date = $4,
		    status = $5, last_updated_at = $6, last_updated_by = $7
		WHERE session_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.SessionID,
		m.SessionNumber,
		m.SessionDate,
		m.CompletionDate,
		m.Status,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError("failed to update session "+m.SessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("session " + m.SessionID + " not found")
	}
	return nil
}

// WaivePendingInstallmentsInTx marks all pending/partial installments of a
// plan waived and returns how many rows changed.
func (r *PgxPlanRepository) WaivePendingInstallmentsInTx(ctx context.Context, tx pgx.Tx, planID string, userID string, now time.Time) (int, error) {
	query := `
		UPDATE installment_payments
		SET status = 'waived', last_updated_at = $2, last_updated_by = $3
		WHERE plan_id = $1 AND status IN ('pending', 'partial', 'overdue');
	`
	tag, err := tx.Exec(ctx, query, planID, now, userID)
	if err != nil {
		return 0, mapPgError("failed to waive installments for plan "+planID, err)
	}
	return int(tag.RowsAffected()), nil
}

// CancelScheduledSessionsInTx marks all scheduled sessions of a plan cancelled
// and returns how many rows changed.
func (r *PgxPlanRepository) CancelScheduledSessionsInTx(ctx context.Context, tx pgx.Tx, planID string, userID string, now time.Time) (int, error) {
	query := `
		UPDATE package_sessions
		SET status = 'cancelled', last_updated_at = $2, last_updated_by = $3
		WHERE plan_id = $1 AND status = 'scheduled';
	`
	tag, err := tx.Exec(ctx, query, planID, now, userID)
	if err != nil {
		return 0, mapPgError("failed to cancel sessions for plan "+planID, err)
	}
	return int(tag.RowsAffected()), nil
}

// SetPaidAmountInTx stores the derived paid amount on the plan header.
func (r *PgxPlanRepository) SetPaidAmountInTx(ctx context.Context, tx pgx.Tx, planID string, paid decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE package_payment_plans
		SET paid_amount = $2, last_updated_at = $3, last_updated_by = $4
		WHERE plan_id = $1;
	`
	tag, err := tx.Exec(ctx, query, planID, paid, now, userID)
	if err != nil {
		return mapPgError("failed to set paid amount on plan "+planID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("plan " + planID + " not found")
	}
	return nil
}

func (r *PgxPlanRepository) scanPlanRow(row pgx.Row, lookupID string) (*domain.PackagePaymentPlan, error) {
	var m models.PackagePaymentPlan
	err := row.Scan(
		&m.PlanID,
		&m.HospitalID,
		&m.BranchID,
		&m.PatientID,
		&m.InvoiceID,
		&m.LineItemID,
		&m.PackageID,
		&m.TotalAmount,
		&m.PaidAmount,
		&m.TotalSessions,
		&m.CompletedSessions,
		&m.InstallmentCount,
		&m.Frequency,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find plan ("+lookupID+")", err)
	}
	domainPlan := mapping.ToDomainPlan(m)
	return &domainPlan, nil
}

func scanInstallments(rows pgx.Rows, planID string) ([]domain.InstallmentPayment, error) {
	installments := []models.InstallmentPayment{}
	for rows.Next() {
		var m models.InstallmentPayment
		err := rows.Scan(
			&m.InstallmentID,
			&m.PlanID,
			&m.InstallmentNumber,
			&m.DueDate,
			&m.Amount,
			&m.PaidAmount,
			&m.Status,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan installment row for plan "+planID, err)
		}
		installments = append(installments, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating installment rows for plan "+planID, err)
	}
	return mapping.ToDomainInstallmentSlice(installments), nil
}

func scanSessions(rows pgx.Rows, planID string) ([]domain.PackageSession, error) {
	sessions := []models.PackageSession{}
	for rows.Next() {
		var m models.PackageSession
		err := rows.Scan(
			&m.SessionID,
			&m.PlanID,
			&m.SessionNumber,
			&m.SessionDate,
			&m.CompletionDate,
			&m.Status,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan session row for plan "+planID, err)
		}
		sessions = append(sessions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating session rows for plan "+planID, err)
	}
	return mapping.ToDomainSessionSlice(sessions), nil
}
