package services

import (
	"context"

	"github.com/curasoft/hospital_billing_app/internal/dto"
)

// PackagePlanSvcFacade owns the package payment plan lifecycle.
type PackagePlanSvcFacade interface {
	// CreatePlan creates a plan and generates its installment and session
	// schedule. Installment amounts sum exactly to the plan total.
	CreatePlan(ctx context.Context, req dto.CreatePlanRequest, actor dto.Actor) (*dto.PlanResponse, error)

	// GetPlan retrieves a plan with its schedule.
	GetPlan(ctx context.Context, planID string) (*dto.PlanResponse, error)

	// ReplanPlan changes session/installment counts. Decreasing below the
	// completed/paid count is rejected with a validation error and nothing is
	// mutated. Remaining installments are re-amortized over the unpaid
	// balance.
	ReplanPlan(ctx context.Context, planID string, req dto.ReplanRequest, actor dto.Actor) (*dto.PlanResponse, error)

	// DiscontinuePlan terminates an active plan: cancels scheduled sessions,
	// waives pending installments, and posts a credit note for the unused
	// session value, all in one unit of work.
	DiscontinuePlan(ctx context.Context, planID string, req dto.DiscontinueRequest, actor dto.Actor) (*dto.DiscontinuationResponse, error)

	// CompleteSession marks a scheduled session completed and moves the plan
	// to completed when all sessions are done and all installments settled.
	CompleteSession(ctx context.Context, planID string, sessionNumber int, actor dto.Actor) (*dto.PlanResponse, error)
}
