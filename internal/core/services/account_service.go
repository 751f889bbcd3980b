package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	"github.com/finkit/gl_ledger_app/internal/core/domain"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finkit/gl_ledger_app/internal/core/ports/services"
	"github.com/finkit/gl_ledger_app/internal/dto"
	"github.com/finkit/gl_ledger_app/internal/middleware"
)

type accountService struct {
	accountRepo portsrepo.AccountRepository
}

// NewAccountService creates the chart-of-accounts service.
func NewAccountService(accountRepo portsrepo.AccountRepository) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func authorizeMasterData(principal domain.Principal) error {
	if principal.HasAnyRole(domain.RoleFinanceAdmin, domain.RoleAccountant) {
		return nil
	}
	return apperrors.NewForbidden("missing_role", "master data changes require an admin role")
}

func (s *accountService) CreateAccount(ctx context.Context, principal domain.Principal, req dto.CreateAccountRequest) (*domain.GLAccount, error) {
	if err := authorizeMasterData(principal); err != nil {
		return nil, err
	}

	account := domain.GLAccount{
		TenantID:    principal.TenantID,
		CompanyCode: req.CompanyCode,
		AccountCode: req.AccountCode,
		Name:        req.Name,
		AccountType: domain.AccountType(req.AccountType),
		IsActive:    true,
	}
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}
	middleware.GetLoggerFromCtx(ctx).Info("GL account created",
		slog.String("company_code", account.CompanyCode),
		slog.String("account_code", account.AccountCode))
	return &account, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, principal domain.Principal, companyCode, accountCode string, req dto.UpdateAccountRequest) (*domain.GLAccount, error) {
	if err := authorizeMasterData(principal); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByCode(ctx, principal.TenantID, companyCode, accountCode)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}
	if req.BlockedForPosting != nil {
		account.BlockedForPosting = *req.BlockedForPosting
	}
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

func (s *accountService) GetAccount(ctx context.Context, principal domain.Principal, companyCode, accountCode string) (*domain.GLAccount, error) {
	return s.accountRepo.FindAccountByCode(ctx, principal.TenantID, companyCode, accountCode)
}

func (s *accountService) ListAccounts(ctx context.Context, principal domain.Principal, companyCode string, limit int, nextToken *string) ([]domain.GLAccount, *string, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.accountRepo.ListAccounts(ctx, principal.TenantID, companyCode, limit, nextToken)
}

func (s *accountService) GetAccountsByCodes(ctx context.Context, tenantID, companyCode string, accountCodes []string) (map[string]domain.GLAccount, error) {
	return s.accountRepo.FindAccountsByCodes(ctx, tenantID, companyCode, accountCodes)
}
