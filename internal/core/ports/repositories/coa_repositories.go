package repositories

import (
	"context"

	"github.com/curasoft/hospital_billing_app/internal/core/domain"
)

// ChartOfAccountsRepositoryFacade defines the read-only per-hospital mapping
// from semantic account roles to concrete ledger account ids. Maintained by a
// configuration collaborator outside this core.
type ChartOfAccountsRepositoryFacade interface {
	// FindAccountIDByRole resolves one role for a hospital. Returns
	// apperrors.ErrNotFound when no mapping exists.
	FindAccountIDByRole(ctx context.Context, hospitalID string, role domain.AccountRole) (string, error)

	// FindMappingsByHospital loads every configured role mapping for a
	// hospital.
	FindMappingsByHospital(ctx context.Context, hospitalID string) (map[domain.AccountRole]string, error)
}
