package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/curasoft/hospital_billing_app/internal/apperrors"
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portsrepo "github.com/curasoft/hospital_billing_app/internal/core/ports/repositories"
	portssvc "github.com/curasoft/hospital_billing_app/internal/core/ports/services"
)

// coaResolverService resolves semantic account roles to ledger account ids
// through the hospital's chart-of-accounts configuration.
type coaResolverService struct {
	coaRepo portsrepo.ChartOfAccountsRepositoryFacade
}

// NewChartOfAccountsResolver creates a new ChartOfAccountsResolver.
func NewChartOfAccountsResolver(coaRepo portsrepo.ChartOfAccountsRepositoryFacade) portssvc.ChartOfAccountsResolverSvc {
	return &coaResolverService{coaRepo: coaRepo}
}

var _ portssvc.ChartOfAccountsResolverSvc = (*coaResolverService)(nil)

// Resolve returns the ledger account id for a role. A missing mapping is a
// loud ErrAccountNotConfigured, never a silent skip: posting to an incomplete
// chart would strand money in limbo.
func (s *coaResolverService) Resolve(ctx context.Context, hospitalID string, role domain.AccountRole) (string, error) {
	accountID, err := s.coaRepo.FindAccountIDByRole(ctx, hospitalID, role)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: role %q, hospital %s", apperrors.ErrAccountNotConfigured, role, hospitalID)
		}
		return "", fmt.Errorf("failed to resolve account role %q: %w", role, err)
	}
	return accountID, nil
}

// ResolveAll resolves every requested role from one mapping load, failing on
// the first missing one.
func (s *coaResolverService) ResolveAll(ctx context.Context, hospitalID string, roles []domain.AccountRole) (map[domain.AccountRole]string, error) {
	mappings, err := s.coaRepo.FindMappingsByHospital(ctx, hospitalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account mappings for hospital %s: %w", hospitalID, err)
	}

	resolved := make(map[domain.AccountRole]string, len(roles))
	for _, role := range roles {
		accountID, ok := mappings[role]
		if !ok {
			return nil, fmt.Errorf("%w: role %q, hospital %s", apperrors.ErrAccountNotConfigured, role, hospitalID)
		}
		resolved[role] = accountID
	}
	return resolved, nil
}
