package services

import (
	"context"
	"fmt"
	"time"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	"github.com/finkit/gl_ledger_app/internal/core/domain"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
)

// entryTransition names the state transition being validated.
type entryTransition string

const (
	transitionCreate  entryTransition = "create"
	transitionPost    entryTransition = "post"
	transitionReverse entryTransition = "reverse"
)

// authorizeTransition checks the actor's roles for the attempted transition.
// The admin roles satisfy any transition check.
func authorizeTransition(principal domain.Principal, transition entryTransition) error {
	var required string
	switch transition {
	case transitionCreate:
		required = domain.RoleFinanceWrite
	case transitionPost:
		required = domain.RoleFinancePost
	case transitionReverse:
		required = domain.RoleFinanceReverse
	default:
		return apperrors.NewInternal(fmt.Sprintf("unknown transition %q", transition), nil)
	}
	if principal.HasRole(required) ||
		principal.HasAnyRole(domain.RoleFinanceAdmin, domain.RoleAccountant) {
		return nil
	}
	return apperrors.NewForbidden("missing_role",
		fmt.Sprintf("actor lacks role %s required for %s", required, transition))
}

// accountResolver is the read-only master-data lookup the pipeline depends
// on. Implementations may cache.
type accountResolver interface {
	GetAccountsByCodes(ctx context.Context, tenantID, companyCode string, accountCodes []string) (map[string]domain.GLAccount, error)
}

// entryValidator runs the ordered validation phases for post and reverse:
// structural, authorization, master data, fiscal period, balance. The first
// failure aborts the pipeline.
type entryValidator struct {
	accounts         accountResolver
	costCenters      portsrepo.CostCenterRepository
	periods          portsrepo.FiscalPeriodRepository
	maxHeaderTextLen int
}

func newEntryValidator(accounts accountResolver, costCenters portsrepo.CostCenterRepository, periods portsrepo.FiscalPeriodRepository, maxHeaderTextLen int) *entryValidator {
	return &entryValidator{
		accounts:         accounts,
		costCenters:      costCenters,
		periods:          periods,
		maxHeaderTextLen: maxHeaderTextLen,
	}
}

// Validate runs all phases against the entry at the given posting date.
func (v *entryValidator) Validate(ctx context.Context, entry *domain.JournalEntry, principal domain.Principal, transition entryTransition, postingDate time.Time) error {
	if err := entry.ValidateStructure(v.maxHeaderTextLen); err != nil {
		return err
	}
	if err := authorizeTransition(principal, transition); err != nil {
		return err
	}
	if err := v.validateMasterData(ctx, entry, postingDate); err != nil {
		return err
	}
	if err := v.validatePeriod(ctx, entry, postingDate); err != nil {
		return err
	}
	return validateBalance(entry)
}

func (v *entryValidator) validateMasterData(ctx context.Context, entry *domain.JournalEntry, postingDate time.Time) error {
	accountCodes := make([]string, 0, len(entry.Lines))
	costCenterCodes := make([]string, 0)
	seenAccounts := make(map[string]struct{}, len(entry.Lines))
	seenCostCenters := make(map[string]struct{})
	for _, line := range entry.Lines {
		if _, ok := seenAccounts[line.AccountCode]; !ok {
			seenAccounts[line.AccountCode] = struct{}{}
			accountCodes = append(accountCodes, line.AccountCode)
		}
		if line.CostCenter != "" {
			if _, ok := seenCostCenters[line.CostCenter]; !ok {
				seenCostCenters[line.CostCenter] = struct{}{}
				costCenterCodes = append(costCenterCodes, line.CostCenter)
			}
		}
	}

	accountsMap, err := v.accounts.GetAccountsByCodes(ctx, entry.TenantID, entry.CompanyCode, accountCodes)
	if err != nil {
		return fmt.Errorf("failed to resolve accounts: %w", err)
	}
	for _, code := range accountCodes {
		account, found := accountsMap[code]
		if !found {
			return apperrors.NewValidation("unknown_account",
				fmt.Sprintf("account %s does not exist for company %s", code, entry.CompanyCode))
		}
		if !account.IsActive {
			return apperrors.NewPrecondition("account_inactive",
				fmt.Sprintf("account %s is inactive", code))
		}
		if account.BlockedForPosting {
			return apperrors.NewPrecondition("account_blocked",
				fmt.Sprintf("account %s is blocked for posting on %s", code, postingDate.Format("2006-01-02")))
		}
	}

	if len(costCenterCodes) == 0 || v.costCenters == nil {
		return nil
	}
	costCentersMap, err := v.costCenters.FindCostCentersByCodes(ctx, entry.TenantID, entry.CompanyCode, costCenterCodes)
	if err != nil {
		return fmt.Errorf("failed to resolve cost centers: %w", err)
	}
	for _, code := range costCenterCodes {
		cc, found := costCentersMap[code]
		if !found {
			return apperrors.NewValidation("unknown_cost_center",
				fmt.Sprintf("cost center %s does not exist for company %s", code, entry.CompanyCode))
		}
		if !cc.IsActive {
			return apperrors.NewPrecondition("cost_center_inactive",
				fmt.Sprintf("cost center %s is inactive", code))
		}
	}
	return nil
}

func (v *entryValidator) validatePeriod(ctx context.Context, entry *domain.JournalEntry, postingDate time.Time) error {
	year, period := domain.PeriodOf(postingDate)
	if year != entry.FiscalYear {
		return apperrors.NewValidation("fiscal_year_mismatch",
			fmt.Sprintf("posting date %s falls in year %d, entry fiscal year is %d",
				postingDate.Format("2006-01-02"), year, entry.FiscalYear))
	}
	open, err := v.periods.IsPeriodOpen(ctx, entry.TenantID, entry.CompanyCode, year, period)
	if err != nil {
		return fmt.Errorf("failed to check fiscal period: %w", err)
	}
	if !open {
		return apperrors.NewPrecondition("period_closed",
			fmt.Sprintf("fiscal period %d/%02d is not open for company %s", year, period, entry.CompanyCode))
	}
	return nil
}

// validateBalance enforces exact debit/credit equality in minor units and
// reports the difference on failure.
func validateBalance(entry *domain.JournalEntry) error {
	if diff := entry.BalanceDifference(); diff != 0 {
		return apperrors.NewValidation("unbalanced",
			fmt.Sprintf("debits and credits differ by %d minor units of %s", diff, entry.CurrencyCode))
	}
	return nil
}
