package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	"github.com/finkit/gl_ledger_app/internal/core/domain"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

const accountColumns = `tenant_id, company_code, account_code, name, account_type,
	is_active, blocked_for_posting, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.GLAccount, error) {
	var a domain.GLAccount
	err := row.Scan(
		&a.TenantID, &a.CompanyCode, &a.AccountCode, &a.Name, &a.AccountType,
		&a.IsActive, &a.BlockedForPosting,
		&a.CreatedAt, &a.CreatedBy, &a.LastUpdatedAt, &a.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan GL account: %w", err)
	}
	return &a, nil
}

func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.GLAccount) error {
	now := time.Now().UTC()
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO gl_accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		account.TenantID, account.CompanyCode, account.AccountCode, account.Name, account.AccountType,
		account.IsActive, account.BlockedForPosting, now, account.CreatedBy, now, account.CreatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperrors.NewConflict("duplicate_account",
				fmt.Sprintf("account %s already exists for company %s", account.AccountCode, account.CompanyCode))
		}
		return fmt.Errorf("failed to insert GL account %s: %w", account.AccountCode, err)
	}
	return nil
}

func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.GLAccount) error {
	tag, err := r.Pool.Exec(ctx, `
		UPDATE gl_accounts
		SET name = $1, is_active = $2, blocked_for_posting = $3, last_updated_at = $4, last_updated_by = $5
		WHERE tenant_id = $6 AND company_code = $7 AND account_code = $8`,
		account.Name, account.IsActive, account.BlockedForPosting, time.Now().UTC(), account.LastUpdatedBy,
		account.TenantID, account.CompanyCode, account.AccountCode,
	)
	if err != nil {
		return fmt.Errorf("failed to update GL account %s: %w", account.AccountCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, tenantID, companyCode, accountCode string) (*domain.GLAccount, error) {
	return scanAccount(r.Pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM gl_accounts
		WHERE tenant_id = $1 AND company_code = $2 AND account_code = $3`,
		tenantID, companyCode, accountCode))
}

// FindAccountsByCodes batch-resolves accounts in one round trip; codes with
// no row are absent from the result.
func (r *PgxAccountRepository) FindAccountsByCodes(ctx context.Context, tenantID, companyCode string, accountCodes []string) (map[string]domain.GLAccount, error) {
	if len(accountCodes) == 0 {
		return map[string]domain.GLAccount{}, nil
	}
	rows, err := r.Pool.Query(ctx, `
		SELECT `+accountColumns+` FROM gl_accounts
		WHERE tenant_id = $1 AND company_code = $2 AND account_code = ANY($3)`,
		tenantID, companyCode, accountCodes)
	if err != nil {
		return nil, fmt.Errorf("failed to query GL accounts: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]domain.GLAccount, len(accountCodes))
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts[account.AccountCode] = *account
	}
	return accounts, rows.Err()
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tenantID, companyCode string, limit int, nextToken *string) ([]domain.GLAccount, *string, error) {
	query := `SELECT ` + accountColumns + ` FROM gl_accounts WHERE tenant_id = $1 AND company_code = $2`
	args := []any{tenantID, companyCode}
	if nextToken != nil && *nextToken != "" {
		args = append(args, *nextToken)
		query += fmt.Sprintf(` AND account_code > $%d`, len(args))
	}
	args = append(args, limit+1)
	query += fmt.Sprintf(` ORDER BY account_code LIMIT $%d`, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list GL accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.GLAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, nil, err
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *string
	if len(accounts) > limit {
		accounts = accounts[:limit]
		token := accounts[len(accounts)-1].AccountCode
		next = &token
	}
	return accounts, next, nil
}

type PgxCostCenterRepository struct {
	BaseRepository
}

func newPgxCostCenterRepository(pool *pgxpool.Pool) portsrepo.CostCenterRepository {
	return &PgxCostCenterRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CostCenterRepository = (*PgxCostCenterRepository)(nil)

func (r *PgxCostCenterRepository) SaveCostCenter(ctx context.Context, cc domain.CostCenter) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO cost_centers (tenant_id, company_code, code, name, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id, company_code, code)
		DO UPDATE SET name = EXCLUDED.name, is_active = EXCLUDED.is_active`,
		cc.TenantID, cc.CompanyCode, cc.Code, cc.Name, cc.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cost center %s: %w", cc.Code, err)
	}
	return nil
}

func (r *PgxCostCenterRepository) FindCostCentersByCodes(ctx context.Context, tenantID, companyCode string, codes []string) (map[string]domain.CostCenter, error) {
	if len(codes) == 0 {
		return map[string]domain.CostCenter{}, nil
	}
	rows, err := r.Pool.Query(ctx, `
		SELECT tenant_id, company_code, code, name, is_active FROM cost_centers
		WHERE tenant_id = $1 AND company_code = $2 AND code = ANY($3)`,
		tenantID, companyCode, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to query cost centers: %w", err)
	}
	defer rows.Close()

	centers := make(map[string]domain.CostCenter, len(codes))
	for rows.Next() {
		var cc domain.CostCenter
		if err := rows.Scan(&cc.TenantID, &cc.CompanyCode, &cc.Code, &cc.Name, &cc.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan cost center: %w", err)
		}
		centers[cc.Code] = cc
	}
	return centers, rows.Err()
}
