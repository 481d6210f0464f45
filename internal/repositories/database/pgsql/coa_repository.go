package pgsql

import (
	"context"
	"errors"

	"github.com/curasoft/hospital_billing_app/internal/apperrors"
	"github.com/curasoft/hospital_billing_app/internal/core/domain"
	portsrepo "github.com/curasoft/hospital_billing_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCoARepository struct {
	BaseRepository
}

// newPgxCoARepository creates a new repository for chart-of-accounts role mappings.
func newPgxCoARepository(pool *pgxpool.Pool) portsrepo.ChartOfAccountsRepositoryFacade {
	return &PgxCoARepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxCoARepository implements portsrepo.ChartOfAccountsRepositoryFacade
var _ portsrepo.ChartOfAccountsRepositoryFacade = (*PgxCoARepository)(nil)

// FindAccountIDByRole resolves one role for a hospital. Only mappings to
// active ledger accounts resolve.
func (r *PgxCoARepository) FindAccountIDByRole(ctx context.Context, hospitalID string, role domain.AccountRole) (string, error) {
	query := `
		SELECT m.account_id
		FROM account_mappings m
		JOIN ledger_accounts a ON m.account_id = a.account_id
		WHERE m.hospital_id = $1 AND m.role = $2 AND a.is_active;
	`
	var accountID string
	err := r.Pool.QueryRow(ctx, query, hospitalID, string(role)).Scan(&accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrNotFound
		}
		return "", apperrors.NewAppError(500, "failed to resolve account role "+string(role)+" for hospital "+hospitalID, err)
	}
	return accountID, nil
}

// FindMappingsByHospital loads every configured role mapping for a hospital.
func (r *PgxCoARepository) FindMappingsByHospital(ctx context.Context, hospitalID string) (map[domain.AccountRole]string, error) {
	query := `
		SELECT m.role, m.account_id
		FROM account_mappings m
		JOIN ledger_accounts a ON m.account_id = a.account_id
		WHERE m.hospital_id = $1 AND a.is_active;
	`
	rows, err := r.Pool.Query(ctx, query, hospitalID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query account mappings for hospital "+hospitalID, err)
	}
	defer rows.Close()

	mappings := make(map[domain.AccountRole]string)
	for rows.Next() {
		var role, accountID string
		if err := rows.Scan(&role, &accountID); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan account mapping row for hospital "+hospitalID, err)
		}
		mappings[domain.AccountRole(role)] = accountID
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating account mapping rows for hospital "+hospitalID, err)
	}

	return mappings, nil
}
