package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finkit/gl_ledger_app/internal/apperrors"
	"github.com/finkit/gl_ledger_app/internal/core/domain"
	"github.com/finkit/gl_ledger_app/internal/core/services"
)

func TestSetPeriodStatus(t *testing.T) {
	periodRepo := &stubPeriodRepo{open: map[string]bool{}}
	auditRepo := &recordingAuditRepo{}
	svc := services.NewPeriodService(periodRepo, auditRepo)
	admin := domain.Principal{TenantID: "tenant-1", UserID: "admin-1", Roles: []string{domain.RoleFinanceAdmin}}

	fp, err := svc.SetPeriodStatus(context.Background(), admin, "1000", 2026, 3, domain.PeriodOpen)
	require.NoError(t, err)
	assert.Equal(t, domain.PeriodOpen, fp.Status)

	open, err := periodRepo.IsPeriodOpen(context.Background(), "tenant-1", "1000", 2026, 3)
	require.NoError(t, err)
	assert.True(t, open)

	// Closing flips the flag and is audited.
	_, err = svc.SetPeriodStatus(context.Background(), admin, "1000", 2026, 3, domain.PeriodClosed)
	require.NoError(t, err)
	open, _ = periodRepo.IsPeriodOpen(context.Background(), "tenant-1", "1000", 2026, 3)
	assert.False(t, open)
	assert.Equal(t, domain.AuditClosePeriod, auditRepo.last().Action)
}

func TestSetPeriodStatus_Validation(t *testing.T) {
	svc := services.NewPeriodService(&stubPeriodRepo{open: map[string]bool{}}, &recordingAuditRepo{})
	admin := domain.Principal{TenantID: "tenant-1", UserID: "admin-1", Roles: []string{domain.RoleFinanceAdmin}}

	_, err := svc.SetPeriodStatus(context.Background(), admin, "1000", 2026, 17, domain.PeriodOpen)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	clerk := domain.Principal{TenantID: "tenant-1", UserID: "user-1", Roles: []string{domain.RoleFinanceWrite}}
	_, err = svc.SetPeriodStatus(context.Background(), clerk, "1000", 2026, 3, domain.PeriodOpen)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
