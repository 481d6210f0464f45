package services

import (
	"context"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
)

// ChartOfAccountsResolverSvc maps semantic account roles to concrete ledger
// account ids per hospital. Pure lookup, no mutation.
type ChartOfAccountsResolverSvc interface {
	// Resolve returns the ledger account id for a role, or an error wrapping
	// apperrors.ErrAccountNotConfigured when the hospital has no mapping.
	Resolve(ctx context.Context, hospitalID string, role domain.AccountRole) (string, error)

	// ResolveAll resolves every requested role, failing on the first missing
	// mapping.
	ResolveAll(ctx context.Context, hospitalID string, roles []domain.AccountRole) (map[domain.AccountRole]string, error)
}
