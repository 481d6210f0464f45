package services

import (
	"context"

	"github.com/curasoft/hospital_billing_app/internal/dto"
)

// PaymentAllocationSvcFacade distributes one payment across outstanding
// receivables in a deterministic priority order and drives the GL/AR writes.
type PaymentAllocationSvcFacade interface {
	// PostPayment allocates and posts a payment in one unit of work.
	// Idempotent on the payment id. Any amount beyond the total outstanding is
	// recorded as an advance credit, never dropped.
	PostPayment(ctx context.Context, req dto.PostPaymentRequest, actor dto.Actor) (*dto.PaymentPostingResponse, error)
}
