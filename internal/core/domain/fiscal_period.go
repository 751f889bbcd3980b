package domain

import (
	"fmt"
	"time"
)

// PeriodStatus indicates whether postings are allowed in a fiscal period.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "OPEN"
	PeriodClosed PeriodStatus = "CLOSED"
)

const (
	// MinPeriod is the first normal period of a fiscal year.
	MinPeriod = 1
	// MaxNormalPeriod is the last calendar-month period.
	MaxNormalPeriod = 12
	// MaxSpecialPeriod is the last year-end adjustment period.
	MaxSpecialPeriod = 16
)

// FiscalPeriod is one posting period of a fiscal year for a company code.
// The fiscal year variant here is the calendar year: periods 1..12 map to
// months, 13..16 are year-end adjustment periods.
type FiscalPeriod struct {
	TenantID    string       `json:"tenantID"`
	CompanyCode string       `json:"companyCode"`
	FiscalYear  int          `json:"fiscalYear"`
	Period      int          `json:"period"` // 1..16
	Status      PeriodStatus `json:"status"`
	AuditFields
}

// IsSpecial reports whether the period is a year-end adjustment period.
func (p FiscalPeriod) IsSpecial() bool {
	return p.Period > MaxNormalPeriod
}

// ValidatePeriod checks the period number range.
func ValidatePeriod(period int) error {
	if period < MinPeriod || period > MaxSpecialPeriod {
		return fmt.Errorf("period %d outside %d..%d", period, MinPeriod, MaxSpecialPeriod)
	}
	return nil
}

// PeriodOf derives the (fiscal year, period) a posting date falls into.
func PeriodOf(postingDate time.Time) (int, int) {
	return postingDate.Year(), int(postingDate.Month())
}
