package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/curasoft/hospital_billing_app/internal/apperrors"
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portsrepo "github.com/curasoft/hospital_billing_app/internal/core/ports/repositories"
	portssvc "github.com/curasoft/hospital_billing_app/internal/core/ports/services"
	"github.com/curasoft/hospital_billing_app/internal/dto"
	"github.com/curasoft/hospital_billing_app/internal/middleware"
	"github.com/curasoft/hospital_billing_app/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// packagePlanService owns the package payment plan lifecycle: schedule
// generation, replanning, session completion and discontinuation. Every
// lifecycle change locks the plan row first; two concurrent changes to the
// same plan serialize or fail with a conflict, never interleave.
type packagePlanService struct {
	txManager        portsrepo.TransactionManager
	planRepo         portsrepo.PlanRepositoryFacade
	invoiceRepo      portsrepo.InvoiceRepositoryFacade
	postingStateRepo portsrepo.PostingStateRepositoryFacade
	creditNoteSvc    portssvc.CreditNoteSvcFacade
}

// NewPackagePlanService creates a new PackagePlan service.
func NewPackagePlanService(
	txManager portsrepo.TransactionManager,
	planRepo portsrepo.PlanRepositoryFacade,
	invoiceRepo portsrepo.InvoiceRepositoryFacade,
	postingStateRepo portsrepo.PostingStateRepositoryFacade,
	creditNoteSvc portssvc.CreditNoteSvcFacade,
) portssvc.PackagePlanSvcFacade {
	return &packagePlanService{
		txManager:        txManager,
		planRepo:         planRepo,
		invoiceRepo:      invoiceRepo,
		postingStateRepo: postingStateRepo,
		creditNoteSvc:    creditNoteSvc,
	}
}

var _ portssvc.PackagePlanSvcFacade = (*packagePlanService)(nil)

// CreatePlan creates a plan funded by a package invoice line item and
// generates its installment and session schedule. Installment amounts sum
// exactly to the plan total; the rounding remainder sits on the last
// installment.
func (s *packagePlanService) CreatePlan(ctx context.Context, req dto.CreatePlanRequest, actor dto.Actor) (*dto.PlanResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	frequency := domain.InstallmentFrequency(req.Frequency)
	if !frequency.Valid() {
		return nil, fmt.Errorf("%w: unknown installment frequency %q", apperrors.ErrValidation, req.Frequency)
	}
	if !req.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: plan total must be positive", apperrors.ErrValidation)
	}

	invoice, err := s.invoiceRepo.FindInvoiceByID(ctx, req.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load funding invoice %s: %w", req.InvoiceID, err)
	}
	var fundingLine *domain.InvoiceLineItem
	for i := range invoice.LineItems {
		if invoice.LineItems[i].LineItemID == req.LineItemID {
			fundingLine = &invoice.LineItems[i]
			break
		}
	}
	if fundingLine == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("line item %s on invoice %s", req.LineItemID, req.InvoiceID))
	}
	if fundingLine.ItemType != domain.ItemTypePackage {
		return nil, fmt.Errorf("%w: line item %s is a %s, only package lines fund plans", apperrors.ErrValidation, req.LineItemID, fundingLine.ItemType)
	}
	if !accounting.WithinTolerance(req.TotalAmount, fundingLine.LineTotal) {
		return nil, fmt.Errorf("%w: plan total %s does not match line total %s", apperrors.ErrValidation, req.TotalAmount.String(), fundingLine.LineTotal.String())
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	if existing, err := s.planRepo.FindPlanByLineItemInTx(ctx, tx, req.LineItemID); err == nil {
		return nil, fmt.Errorf("%w: line item %s already funds plan %s", apperrors.ErrDuplicate, req.LineItemID, existing.PlanID)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: actor.UserID, LastUpdatedAt: now, LastUpdatedBy: actor.UserID}
	plan := domain.PackagePaymentPlan{
		PlanID:           uuid.NewString(),
		HospitalID:       actor.HospitalID,
		BranchID:         actor.BranchID,
		PatientID:        req.PatientID,
		InvoiceID:        req.InvoiceID,
		LineItemID:       req.LineItemID,
		PackageID:        req.PackageID,
		TotalAmount:      accounting.Round2(req.TotalAmount),
		PaidAmount:       decimal.Zero,
		TotalSessions:    req.TotalSessions,
		InstallmentCount: req.InstallmentCount,
		Frequency:        frequency,
		Status:           domain.PlanStatusActive,
		AuditFields:      audit,
	}

	installments := buildInstallments(plan.PlanID, plan.TotalAmount, req.InstallmentCount, req.FirstInstallmentDate, frequency, 1, audit)
	sessions := buildSessions(plan.PlanID, req.TotalSessions, req.InstallmentCount, req.FirstInstallmentDate, frequency, audit)

	if err := s.planRepo.SavePlanInTx(ctx, tx, plan, installments, sessions); err != nil {
		return nil, fmt.Errorf("failed to save plan for line %s: %w", req.LineItemID, err)
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Package plan created",
		slog.String("plan_id", plan.PlanID),
		slog.String("patient_id", plan.PatientID),
		slog.Int("installments", req.InstallmentCount),
		slog.Int("sessions", req.TotalSessions),
	)
	resp := dto.ToPlanResponse(&plan, installments, sessions)
	return &resp, nil
}

// buildInstallments splits the amount evenly across count installments due at
// frequency intervals from firstDue, numbering from startNumber.
func buildInstallments(planID string, amount decimal.Decimal, count int, firstDue time.Time, frequency domain.InstallmentFrequency, startNumber int, audit domain.AuditFields) []domain.InstallmentPayment {
	parts := accounting.SplitEvenly(amount, count)
	installments := make([]domain.InstallmentPayment, count)
	for i := 0; i < count; i++ {
		installments[i] = domain.InstallmentPayment{
			InstallmentID:     uuid.NewString(),
			PlanID:            planID,
			InstallmentNumber: startNumber + i,
			DueDate:           firstDue.AddDate(0, 0, i*frequency.StepDays()),
			Amount:            parts[i],
			PaidAmount:        decimal.Zero,
			Status:            domain.InstallmentPending,
			AuditFields:       audit,
		}
	}
	return installments
}

// buildSessions spreads the sessions evenly over the plan's payment horizon so
// delivery roughly tracks collection.
func buildSessions(planID string, totalSessions, installmentCount int, start time.Time, frequency domain.InstallmentFrequency, audit domain.AuditFields) []domain.PackageSession {
	horizonDays := installmentCount * frequency.StepDays()
	sessions := make([]domain.PackageSession, totalSessions)
	for i := 0; i < totalSessions; i++ {
		sessions[i] = domain.PackageSession{
			SessionID:     uuid.NewString(),
			PlanID:        planID,
			SessionNumber: i + 1,
			SessionDate:   start.AddDate(0, 0, i*horizonDays/totalSessions),
			Status:        domain.SessionScheduled,
			AuditFields:   audit,
		}
	}
	return sessions
}

// GetPlan retrieves a plan with its schedule.
func (s *packagePlanService) GetPlan(ctx context.Context, planID string) (*dto.PlanResponse, error) {
	plan, err := s.planRepo.FindPlanByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	installments, err := s.planRepo.FindInstallmentsByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.planRepo.FindSessionsByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToPlanResponse(plan, installments, sessions)
	return &resp, nil
}

// ReplanPlan changes the session and installment counts of an active plan.
// Paid installments and completed sessions are untouched; the unpaid balance
// is re-amortized over the remaining installments. Shrinking below what is
// already paid or delivered fails validation without mutating anything.
func (s *packagePlanService) ReplanPlan(ctx context.Context, planID string, req dto.ReplanRequest, actor dto.Actor) (*dto.PlanResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !actor.Permissions.CanReplanPlans {
		return nil, fmt.Errorf("%w: replanning plans", apperrors.ErrForbidden)
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	plan, err := s.planRepo.FindPlanForUpdateInTx(ctx, tx, planID)
	if err != nil {
		return nil, err
	}
	if plan.Status != domain.PlanStatusActive {
		return nil, fmt.Errorf("%w: plan %s is %s, only active plans can be replanned", apperrors.ErrConflict, planID, plan.Status)
	}
	if req.TotalSessions < plan.CompletedSessions {
		return nil, fmt.Errorf("%w: cannot reduce sessions to %d, %d already completed", apperrors.ErrValidation, req.TotalSessions, plan.CompletedSessions)
	}

	installments, err := s.planRepo.FindInstallmentsInTx(ctx, tx, planID)
	if err != nil {
		return nil, err
	}

	var paid, partial, pending []domain.InstallmentPayment
	for _, inst := range installments {
		switch inst.Status {
		case domain.InstallmentPaid:
			paid = append(paid, inst)
		case domain.InstallmentPartial:
			partial = append(partial, inst)
		case domain.InstallmentWaived:
			// never reached on an active plan
		default:
			pending = append(pending, inst)
		}
	}

	openSlots := req.InstallmentCount - len(paid)
	if openSlots < len(partial) {
		return nil, fmt.Errorf("%w: cannot reduce installments to %d, %d already settled or started", apperrors.ErrValidation, req.InstallmentCount, len(paid)+len(partial))
	}

	// Re-amortize: the unpaid balance spreads over the open slots. A partial
	// installment keeps what was paid into it and takes its share on top, so
	// the non-waived amounts still sum to the plan total.
	unpaid := plan.TotalAmount
	for _, inst := range paid {
		unpaid = unpaid.Sub(inst.Amount)
	}
	for _, inst := range partial {
		unpaid = unpaid.Sub(inst.PaidAmount)
	}
	if unpaid.IsNegative() {
		unpaid = decimal.Zero
	}
	if openSlots == 0 && unpaid.IsPositive() {
		// non-waived installment amounts must keep summing to the plan total
		return nil, fmt.Errorf("%w: cannot reduce installments to %d, %s of the plan is unpaid with no installment left to carry it", apperrors.ErrValidation, req.InstallmentCount, unpaid.String())
	}

	now := time.Now().UTC()
	shares := accounting.SplitEvenly(unpaid, openSlots)

	number := 0
	lastDue := time.Time{}
	for i := range paid {
		number++
		if paid[i].InstallmentNumber != number {
			paid[i].InstallmentNumber = number
			paid[i].LastUpdatedAt = now
			paid[i].LastUpdatedBy = actor.UserID
			if err := s.planRepo.UpdateInstallmentInTx(ctx, tx, paid[i]); err != nil {
				return nil, err
			}
		}
		if paid[i].DueDate.After(lastDue) {
			lastDue = paid[i].DueDate
		}
	}
	for i := range partial {
		number++
		partial[i].InstallmentNumber = number
		partial[i].Amount = accounting.Round2(partial[i].PaidAmount.Add(shares[i]))
		partial[i].LastUpdatedAt = now
		partial[i].LastUpdatedBy = actor.UserID
		if err := s.planRepo.UpdateInstallmentInTx(ctx, tx, partial[i]); err != nil {
			return nil, err
		}
		if partial[i].DueDate.After(lastDue) {
			lastDue = partial[i].DueDate
		}
	}

	if lastDue.IsZero() {
		// nothing kept: anchor the new schedule where the old one started
		if len(pending) > 0 {
			lastDue = pending[0].DueDate.AddDate(0, 0, -plan.Frequency.StepDays())
		} else {
			lastDue = now
		}
	}
	pendingIDs := make([]string, 0, len(pending))
	for _, inst := range pending {
		pendingIDs = append(pendingIDs, inst.InstallmentID)
	}
	if len(pendingIDs) > 0 {
		if err := s.planRepo.DeleteInstallmentsInTx(ctx, tx, pendingIDs); err != nil {
			return nil, err
		}
	}

	newCount := openSlots - len(partial)
	if newCount > 0 {
		audit := domain.AuditFields{CreatedAt: now, CreatedBy: actor.UserID, LastUpdatedAt: now, LastUpdatedBy: actor.UserID}
		fresh := make([]domain.InstallmentPayment, newCount)
		for i := 0; i < newCount; i++ {
			number++
			fresh[i] = domain.InstallmentPayment{
				InstallmentID:     uuid.NewString(),
				PlanID:            planID,
				InstallmentNumber: number,
				DueDate:           lastDue.AddDate(0, 0, (i+1)*plan.Frequency.StepDays()),
				Amount:            shares[len(partial)+i],
				PaidAmount:        decimal.Zero,
				Status:            domain.InstallmentPending,
				AuditFields:       audit,
			}
		}
		if err := s.planRepo.InsertInstallmentsInTx(ctx, tx, fresh); err != nil {
			return nil, err
		}
	}

	if err := s.resizeSessions(ctx, tx, plan, req.TotalSessions, actor.UserID, now); err != nil {
		return nil, err
	}

	plan.TotalSessions = req.TotalSessions
	plan.InstallmentCount = req.InstallmentCount
	plan.LastUpdatedAt = now
	plan.LastUpdatedBy = actor.UserID
	if err := s.planRepo.UpdatePlanInTx(ctx, tx, *plan); err != nil {
		return nil, err
	}

	finalInstallments, err := s.planRepo.FindInstallmentsInTx(ctx, tx, planID)
	if err != nil {
		return nil, err
	}
	finalSessions, err := s.planRepo.FindSessionsInTx(ctx, tx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Plan replanned",
		slog.String("plan_id", planID),
		slog.Int("sessions", req.TotalSessions),
		slog.Int("installments", req.InstallmentCount),
	)
	resp := dto.ToPlanResponse(plan, finalInstallments, finalSessions)
	return &resp, nil
}

// resizeSessions grows or shrinks the scheduled sessions to the target count.
// Completed sessions are never touched; shrinking removes the latest
// scheduled sessions first.
func (s *packagePlanService) resizeSessions(ctx context.Context, tx pgx.Tx, plan *domain.PackagePaymentPlan, target int, userID string, now time.Time) error {
	sessions, err := s.planRepo.FindSessionsInTx(ctx, tx, plan.PlanID)
	if err != nil {
		return err
	}

	current := len(sessions)
	switch {
	case target > current:
		lastDate := now
		maxNumber := 0
		for _, sess := range sessions {
			if sess.SessionNumber > maxNumber {
				maxNumber = sess.SessionNumber
			}
			if sess.SessionDate.After(lastDate) {
				lastDate = sess.SessionDate
			}
		}
		audit := domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}
		step := plan.Frequency.StepDays()
		fresh := make([]domain.PackageSession, 0, target-current)
		for i := 1; i <= target-current; i++ {
			fresh = append(fresh, domain.PackageSession{
				SessionID:     uuid.NewString(),
				PlanID:        plan.PlanID,
				SessionNumber: maxNumber + i,
				SessionDate:   lastDate.AddDate(0, 0, i*step),
				Status:        domain.SessionScheduled,
				AuditFields:   audit,
			})
		}
		return s.planRepo.InsertSessionsInTx(ctx, tx, fresh)

	case target < current:
		// drop the highest-numbered scheduled sessions
		remove := current - target
		var removeIDs []string
		for i := len(sessions) - 1; i >= 0 && remove > 0; i-- {
			if sessions[i].Status == domain.SessionScheduled {
				removeIDs = append(removeIDs, sessions[i].SessionID)
				remove--
			}
		}
		if remove > 0 {
			return fmt.Errorf("%w: not enough scheduled sessions to remove", apperrors.ErrValidation)
		}
		return s.planRepo.DeleteSessionsInTx(ctx, tx, removeIDs)
	}
	return nil
}

// DiscontinuePlan terminates an active plan in one unit of work: scheduled
// sessions are cancelled, open installments waived, and a credit note posted
// for the undelivered session value. The patient's cash refund is whatever
// they paid beyond the value of the sessions already consumed.
func (s *packagePlanService) DiscontinuePlan(ctx context.Context, planID string, req dto.DiscontinueRequest, actor dto.Actor) (*dto.DiscontinuationResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !actor.Permissions.CanDiscontinuePlans {
		return nil, fmt.Errorf("%w: discontinuing plans", apperrors.ErrForbidden)
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	plan, err := s.planRepo.FindPlanForUpdateInTx(ctx, tx, planID)
	if err != nil {
		return nil, err
	}
	if plan.Status != domain.PlanStatusActive {
		return nil, fmt.Errorf("%w: plan %s is already %s", apperrors.ErrConflict, planID, plan.Status)
	}

	// Valuation: each session is worth total/sessions. The patient owes for
	// consumed sessions; everything undelivered comes back as a credit note,
	// and cash paid beyond the liability is refundable.
	sessionValue := plan.TotalAmount.Div(decimal.NewFromInt(int64(plan.TotalSessions)))
	liability := sessionValue.Mul(decimal.NewFromInt(int64(plan.CompletedSessions)))
	creditAmount := plan.TotalAmount.Sub(liability)
	netPosition := plan.PaidAmount.Sub(liability)
	cashRefund := decimal.Max(netPosition, decimal.Zero)

	now := time.Now().UTC()
	cancelled, err := s.planRepo.CancelScheduledSessionsInTx(ctx, tx, planID, actor.UserID, now)
	if err != nil {
		return nil, err
	}
	waived, err := s.planRepo.WaivePendingInstallmentsInTx(ctx, tx, planID, actor.UserID, now)
	if err != nil {
		return nil, err
	}

	result := domain.DiscontinuationResult{
		PlanID:             planID,
		SessionValue:       accounting.Round2(sessionValue),
		PatientLiability:   accounting.Round2(liability),
		NetPosition:        accounting.Round2(netPosition),
		CreditNoteAmount:   accounting.Round2(creditAmount),
		CashRefund:         accounting.Round2(cashRefund),
		CancelledSessions:  cancelled,
		WaivedInstallments: waived,
	}

	if creditAmount.IsPositive() {
		note, err := s.creditNoteSvc.CreateAndPost(ctx, tx, domain.CreateCreditNoteParams{
			HospitalID:        plan.HospitalID,
			BranchID:          plan.BranchID,
			OriginalInvoiceID: plan.InvoiceID,
			PlanID:            &plan.PlanID,
			PatientID:         plan.PatientID,
			Amount:            result.CreditNoteAmount,
			RefundAmount:      result.CashRefund,
			ReasonCode:        domain.CreditNoteReason(req.ReasonCode),
			ReasonDescription: req.ReasonDescription,
			NoteDate:          now,
			UserID:            actor.UserID,
		})
		if err != nil {
			s.recordPostingFailure(ctx, tx, planID, err, actor.UserID)
			return nil, err
		}
		result.CreditNoteID = note.CreditNoteID
		result.CreditNoteNumber = note.CreditNoteNumber
		if note.GLTransactionID != nil {
			// clears any posting-error marker a failed earlier attempt left
			if err := s.postingStateRepo.MarkPostedInTx(ctx, tx, domain.DocTypePlan, planID, *note.GLTransactionID, actor.UserID, now); err != nil {
				return nil, err
			}
		}
	}

	plan.Status = domain.PlanStatusDiscontinued
	plan.LastUpdatedAt = now
	plan.LastUpdatedBy = actor.UserID
	if err := s.planRepo.UpdatePlanInTx(ctx, tx, *plan); err != nil {
		return nil, err
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Plan discontinued",
		slog.String("plan_id", planID),
		slog.String("credit_note_number", result.CreditNoteNumber),
		slog.String("credit_note_amount", result.CreditNoteAmount.String()),
		slog.String("cash_refund", result.CashRefund.String()),
	)
	resp := dto.ToDiscontinuationResponse(&result)
	return &resp, nil
}

// recordPostingFailure rolls the failed unit of work back, then writes the
// posting-error note on its own connection so a failed discontinuation is
// marked rather than silently retriable. Rollback first: the note's upsert
// must not wait on locks this transaction still holds.
func (s *packagePlanService) recordPostingFailure(ctx context.Context, tx pgx.Tx, planID string, cause error, userID string) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := s.txManager.Rollback(ctx, tx); err != nil {
		logger.Error("Failed to roll back before recording posting failure",
			slog.String("plan_id", planID),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := s.postingStateRepo.MarkPostingFailed(ctx, domain.DocTypePlan, planID, cause.Error(), userID, time.Now().UTC()); err != nil {
		logger.Error("Failed to record posting failure",
			slog.String("plan_id", planID),
			slog.String("error", err.Error()),
		)
	}
}

// CompleteSession marks a scheduled session completed. When every session is
// delivered and every non-waived installment settled, the plan moves to
// completed.
func (s *packagePlanService) CompleteSession(ctx context.Context, planID string, sessionNumber int, actor dto.Actor) (*dto.PlanResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txManager.Rollback(ctx, tx)

	plan, err := s.planRepo.FindPlanForUpdateInTx(ctx, tx, planID)
	if err != nil {
		return nil, err
	}
	if plan.Status != domain.PlanStatusActive {
		return nil, fmt.Errorf("%w: plan %s is %s, sessions can only be completed on active plans", apperrors.ErrConflict, planID, plan.Status)
	}

	sessions, err := s.planRepo.FindSessionsInTx(ctx, tx, planID)
	if err != nil {
		return nil, err
	}
	var target *domain.PackageSession
	for i := range sessions {
		if sessions[i].SessionNumber == sessionNumber {
			target = &sessions[i]
			break
		}
	}
	if target == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("session %d of plan %s", sessionNumber, planID))
	}
	if target.Status != domain.SessionScheduled {
		return nil, fmt.Errorf("%w: session %d is already %s", apperrors.ErrConflict, sessionNumber, target.Status)
	}

	now := time.Now().UTC()
	target.Status = domain.SessionCompleted
	target.CompletionDate = &now
	target.LastUpdatedAt = now
	target.LastUpdatedBy = actor.UserID
	if err := s.planRepo.UpdateSessionInTx(ctx, tx, *target); err != nil {
		return nil, err
	}

	plan.CompletedSessions++
	if plan.CompletedSessions >= plan.TotalSessions {
		settled, err := s.allInstallmentsSettled(ctx, tx, planID)
		if err != nil {
			return nil, err
		}
		if settled {
			plan.Status = domain.PlanStatusCompleted
		}
	}
	plan.LastUpdatedAt = now
	plan.LastUpdatedBy = actor.UserID
	if err := s.planRepo.UpdatePlanInTx(ctx, tx, *plan); err != nil {
		return nil, err
	}

	installments, err := s.planRepo.FindInstallmentsInTx(ctx, tx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.txManager.Commit(ctx, tx); err != nil {
		return nil, err
	}

	logger.Info("Session completed",
		slog.String("plan_id", planID),
		slog.Int("session_number", sessionNumber),
		slog.Int("completed_sessions", plan.CompletedSessions),
		slog.String("plan_status", string(plan.Status)),
	)
	resp := dto.ToPlanResponse(plan, installments, sessions)
	return &resp, nil
}

func (s *packagePlanService) allInstallmentsSettled(ctx context.Context, tx pgx.Tx, planID string) (bool, error) {
	installments, err := s.planRepo.FindInstallmentsInTx(ctx, tx, planID)
	if err != nil {
		return false, err
	}
	for _, inst := range installments {
		if inst.Status != domain.InstallmentPaid && inst.Status != domain.InstallmentWaived {
			return false, nil
		}
	}
	return true, nil
}
