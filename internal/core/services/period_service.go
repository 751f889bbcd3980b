package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	"github.com/finkit/gl_ledger_app/internal/core/domain"
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finkit/gl_ledger_app/internal/core/ports/services"
	"github.com/finkit/gl_ledger_app/internal/middleware"
)

type periodService struct {
	periodRepo portsrepo.FiscalPeriodRepository
	auditRepo  portsrepo.AuditRepository
	now        func() time.Time
}

// NewPeriodService creates the fiscal period service.
func NewPeriodService(periodRepo portsrepo.FiscalPeriodRepository, auditRepo portsrepo.AuditRepository) portssvc.PeriodSvcFacade {
	return &periodService{
		periodRepo: periodRepo,
		auditRepo:  auditRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// SetPeriodStatus opens or closes one fiscal period. Closing takes effect
// for every post that starts after the write lands; posts already holding
// their transaction complete under the old state.
func (s *periodService) SetPeriodStatus(ctx context.Context, principal domain.Principal, companyCode string, fiscalYear, period int, status domain.PeriodStatus) (*domain.FiscalPeriod, error) {
	if !principal.HasAnyRole(domain.RoleFinanceAdmin, domain.RoleAccountant) {
		return nil, apperrors.NewForbidden("missing_role", "fiscal period changes require an admin role")
	}
	if err := domain.ValidatePeriod(period); err != nil {
		return nil, apperrors.NewValidation("invalid_period", err.Error())
	}
	if status != domain.PeriodOpen && status != domain.PeriodClosed {
		return nil, apperrors.NewValidation("invalid_status", fmt.Sprintf("unknown period status %q", status))
	}

	now := s.now()
	fp := domain.FiscalPeriod{
		TenantID:    principal.TenantID,
		CompanyCode: companyCode,
		FiscalYear:  fiscalYear,
		Period:      period,
		Status:      status,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     principal.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: principal.UserID,
		},
	}
	if err := s.periodRepo.UpsertPeriod(ctx, fp); err != nil {
		return nil, fmt.Errorf("failed to upsert fiscal period: %w", err)
	}

	action := domain.AuditOpenPeriod
	if status == domain.PeriodClosed {
		action = domain.AuditClosePeriod
	}
	record := domain.AuditRecord{
		At:         now,
		TenantID:   principal.TenantID,
		Actor:      principal.UserID,
		Action:     action,
		EntityKind: "fiscal_period",
		EntityID:   fmt.Sprintf("%s/%d/%02d", companyCode, fiscalYear, period),
		Outcome:    domain.AuditSuccess,
	}
	if err := s.auditRepo.InsertAuditRecord(ctx, record); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to write audit record",
			slog.String("action", string(action)), slog.String("error", err.Error()))
	}

	middleware.GetLoggerFromCtx(ctx).Info("Fiscal period status changed",
		slog.String("company_code", companyCode),
		slog.Int("fiscal_year", fiscalYear),
		slog.Int("period", period),
		slog.String("status", string(status)))
	return &fp, nil
}

func (s *periodService) ListPeriods(ctx context.Context, principal domain.Principal, companyCode string, fiscalYear int) ([]domain.FiscalPeriod, error) {
	return s.periodRepo.ListPeriods(ctx, principal.TenantID, companyCode, fiscalYear)
}
