package repositories

// RepositoryProvider bundles the repository implementations handed to the
// service container.
type RepositoryProvider struct {
	JournalRepo     JournalEntryRepositoryWithTx
	AccountRepo     AccountRepository
	CostCenterRepo  CostCenterRepository
	PeriodRepo      FiscalPeriodRepository
	AuditRepo       AuditRepository
	IdempotencyRepo IdempotencyStore
	ReportingRepo   ReportingRepository
}
