package services

import (
	portsrepo "github.com/finkit/gl_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/finkit/gl_ledger_app/internal/core/ports/services"
)

// NewServiceContainer wires the repositories into the service facades.
func NewServiceContainer(repos portsrepo.RepositoryProvider, maxHeaderTextLen int, journalOpts ...JournalServiceOption) *portssvc.ServiceContainer {
	accountSvc := NewAccountService(repos.AccountRepo)
	journalSvc := NewJournalService(
		repos.JournalRepo,
		accountSvc,
		repos.CostCenterRepo,
		repos.PeriodRepo,
		repos.AuditRepo,
		repos.IdempotencyRepo,
		maxHeaderTextLen,
		journalOpts...,
	)
	return &portssvc.ServiceContainer{
		Journal:   journalSvc,
		Account:   accountSvc,
		Period:    NewPeriodService(repos.PeriodRepo, repos.AuditRepo),
		Reporting: NewReportingService(repos.ReportingRepo),
	}
}
